package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/saqrcrm/sales-api/internal/domain"
)

func TestIsLeadStale(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("idle past threshold", func(t *testing.T) {
		lead := &domain.Lead{
			Status:         domain.LeadStatusContacted,
			LastActivityAt: now.Add(-domain.StaleLeadThreshold - time.Hour),
		}
		assert.True(t, domain.IsLeadStale(lead, now))
	})

	t.Run("exactly at threshold is not stale", func(t *testing.T) {
		lead := &domain.Lead{
			Status:         domain.LeadStatusNew,
			LastActivityAt: now.Add(-domain.StaleLeadThreshold),
		}
		assert.False(t, domain.IsLeadStale(lead, now))
	})

	t.Run("recent activity", func(t *testing.T) {
		lead := &domain.Lead{
			Status:         domain.LeadStatusQualified,
			LastActivityAt: now.Add(-24 * time.Hour),
		}
		assert.False(t, domain.IsLeadStale(lead, now))
	})

	t.Run("terminal leads are never stale", func(t *testing.T) {
		old := now.Add(-90 * 24 * time.Hour)
		converted := &domain.Lead{Status: domain.LeadStatusConverted, LastActivityAt: old}
		dismissed := &domain.Lead{Status: domain.LeadStatusNotInterested, LastActivityAt: old}
		assert.False(t, domain.IsLeadStale(converted, now))
		assert.False(t, domain.IsLeadStale(dismissed, now))
	})
}
