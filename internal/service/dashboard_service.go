package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/repository"
)

// DashboardService aggregates headline numbers across modules
type DashboardService struct {
	leadRepo    *repository.LeadRepository
	dealRepo    *repository.DealRepository
	projectRepo *repository.ProjectRepository
	invoiceRepo *repository.InvoiceRepository
	logger      *zap.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	leadRepo *repository.LeadRepository,
	dealRepo *repository.DealRepository,
	projectRepo *repository.ProjectRepository,
	invoiceRepo *repository.InvoiceRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		leadRepo:    leadRepo,
		dealRepo:    dealRepo,
		projectRepo: projectRepo,
		invoiceRepo: invoiceRepo,
		logger:      logger,
	}
}

// Stats computes the dashboard snapshot. Every count honors the caller's
// regional scope through the repository filters.
func (s *DashboardService) Stats(ctx context.Context) (*domain.DashboardStatsDTO, error) {
	now := time.Now()

	leadCounts, err := s.leadRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}
	var totalLeads int64
	for _, count := range leadCounts {
		totalLeads += count
	}

	staleLeads, err := s.countStaleLeads(ctx)
	if err != nil {
		return nil, err
	}

	dealCounts, err := s.dealRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count deals: %w", err)
	}
	dealValues, err := s.dealRepo.SumValueByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum deal values: %w", err)
	}

	var openDeals, wonDeals, lostDeals int64
	var openValue, wonValue float64
	for status, count := range dealCounts {
		switch {
		case status == domain.DealStatusWon:
			wonDeals = count
		case status == domain.DealStatusLost:
			lostDeals = count
		default:
			openDeals += count
		}
	}
	for status, value := range dealValues {
		switch {
		case status == domain.DealStatusWon:
			wonValue = value
		case status == domain.DealStatusLost:
		default:
			openValue += value
		}
	}

	lossReasons, err := s.dealRepo.CountLossReasons(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count loss reasons: %w", err)
	}

	activeProjects, err := s.projectRepo.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}

	unpaidCount, unpaidAmount, err := s.invoiceRepo.UnpaidTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to total unpaid invoices: %w", err)
	}

	return &domain.DashboardStatsDTO{
		TotalLeads:     totalLeads,
		StaleLeads:     staleLeads,
		OpenDeals:      openDeals,
		OpenDealValue:  openValue,
		WonDeals:       wonDeals,
		WonDealValue:   wonValue,
		LostDeals:      lostDeals,
		ActiveProjects: activeProjects,
		UnpaidInvoices: unpaidCount,
		UnpaidAmount:   unpaidAmount,
		DealsByStage:   dealCounts,
		LossReasons:    lossReasons,
		GeneratedAt:    domain.FormatTime(now),
	}, nil
}

func (s *DashboardService) countStaleLeads(ctx context.Context) (int64, error) {
	stale := true
	_, total, err := s.leadRepo.List(ctx, 1, 1, &repository.LeadFilters{Stale: &stale})
	if err != nil {
		return 0, fmt.Errorf("failed to count stale leads: %w", err)
	}
	return total, nil
}
