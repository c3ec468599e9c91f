package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/mapper"
	"github.com/saqrcrm/sales-api/internal/repository"
)

// Working hours for bookable meeting slots
const (
	workDayStartHour = 9
	workDayEndHour   = 17
)

// ScheduleService computes meeting availability from booked deals
type ScheduleService struct {
	dealRepo *repository.DealRepository
	logger   *zap.Logger
}

// NewScheduleService creates a new schedule service
func NewScheduleService(dealRepo *repository.DealRepository, logger *zap.Logger) *ScheduleService {
	return &ScheduleService{dealRepo: dealRepo, logger: logger}
}

// Slots returns the hourly slots of a working day with booked ones marked
// unavailable
func (s *ScheduleService) Slots(ctx context.Context, day time.Time) ([]domain.ScheduleSlotDTO, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), workDayStartHour, 0, 0, 0, time.UTC)
	dayEnd := time.Date(day.Year(), day.Month(), day.Day(), workDayEndHour, 0, 0, 0, time.UTC)

	booked, err := s.dealRepo.ListMeetingsBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list booked meetings: %w", err)
	}

	taken := make(map[int]bool, len(booked))
	for i := range booked {
		if booked[i].MeetingAt != nil {
			taken[booked[i].MeetingAt.UTC().Hour()] = true
		}
	}

	slots := make([]domain.ScheduleSlotDTO, 0, workDayEndHour-workDayStartHour)
	for hour := workDayStartHour; hour < workDayEndHour; hour++ {
		start := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.UTC)
		slots = append(slots, domain.ScheduleSlotDTO{
			Start:     domain.FormatTime(start),
			End:       domain.FormatTime(start.Add(time.Hour)),
			Available: !taken[hour],
		})
	}
	return slots, nil
}

// Meetings returns the deals with meetings booked in a window
func (s *ScheduleService) Meetings(ctx context.Context, from, to time.Time) ([]domain.DealDTO, error) {
	deals, err := s.dealRepo.ListMeetingsBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}

	return mapper.ToDealDTOs(deals), nil
}
