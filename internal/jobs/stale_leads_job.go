package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/repository"
)

// StaleLeadsJobName is the name of the stale lead sweep job
const StaleLeadsJobName = "stale_leads_sweep"

// staleNotifyDedupWindow suppresses repeat notifications for a lead that
// stays stale across consecutive sweeps
const staleNotifyDedupWindow = 24 * time.Hour

// StaleLeadsJob notifies lead owners about leads with no recent activity.
// The sweep is advisory: it never mutates the leads themselves.
type StaleLeadsJob struct {
	leadRepo         *repository.LeadRepository
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
	timeout          time.Duration
}

// NewStaleLeadsJob creates a new stale lead sweep job
func NewStaleLeadsJob(
	leadRepo *repository.LeadRepository,
	notificationRepo *repository.NotificationRepository,
	logger *zap.Logger,
	timeout time.Duration,
) *StaleLeadsJob {
	return &StaleLeadsJob{
		leadRepo:         leadRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
		timeout:          timeout,
	}
}

// Run executes one sweep. Called by the scheduler.
func (j *StaleLeadsJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	cutoff := start.Add(-domain.StaleLeadThreshold)

	leads, err := j.leadRepo.ListStale(ctx, cutoff)
	if err != nil {
		j.logger.Error("stale lead sweep failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	var notified, skipped int
	for i := range leads {
		lead := &leads[i]

		exists, err := j.notificationRepo.ExistsRecent(ctx, lead.OwnerID,
			domain.NotificationTypeStaleLead, lead.ID, start.Add(-staleNotifyDedupWindow))
		if err != nil {
			j.logger.Warn("failed to check notification dedup",
				zap.String("lead_id", lead.ID.String()),
				zap.Error(err))
			continue
		}
		if exists {
			skipped++
			continue
		}

		notification := &domain.Notification{
			UserID:     lead.OwnerID,
			Type:       domain.NotificationTypeStaleLead,
			Title:      "Lead going stale",
			Message:    "No activity on " + lead.CompanyName + " for over a week",
			EntityType: "lead",
			EntityID:   &lead.ID,
		}
		if err := j.notificationRepo.Create(ctx, notification); err != nil {
			j.logger.Warn("failed to create stale lead notification",
				zap.String("lead_id", lead.ID.String()),
				zap.Error(err))
			continue
		}
		notified++
	}

	j.logger.Info("stale lead sweep completed",
		zap.Int("stale", len(leads)),
		zap.Int("notified", notified),
		zap.Int("skipped", skipped),
		zap.Duration("duration", time.Since(start)))
}
