package jobs_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/jobs"
	"github.com/saqrcrm/sales-api/internal/repository"
	"github.com/saqrcrm/sales-api/internal/testutil"
)

func setLastActivity(t *testing.T, db *gorm.DB, lead *domain.Lead, at time.Time) {
	t.Helper()
	require.NoError(t, db.Model(&domain.Lead{}).
		Where("id = ?", lead.ID).
		Update("last_activity_at", at).Error)
}

func TestStaleLeadsJob_Run(t *testing.T) {
	db := testutil.SetupTestDB(t)
	owner := testutil.CreateTestUser(t, db, "Omar", domain.RoleSales, domain.ScopeKSA)
	job := jobs.NewStaleLeadsJob(
		repository.NewLeadRepository(db),
		repository.NewNotificationRepository(db),
		zap.NewNop(),
		time.Minute,
	)

	eightDaysAgo := time.Now().UTC().Add(-8 * 24 * time.Hour)

	stale := testutil.CreateTestLead(t, db, owner, domain.LeadStatusContacted)
	setLastActivity(t, db, stale, eightDaysAgo)

	// Fresh activity and closed leads are left alone
	testutil.CreateTestLead(t, db, owner, domain.LeadStatusContacted)
	dismissed := testutil.CreateTestLead(t, db, owner, domain.LeadStatusNotInterested)
	setLastActivity(t, db, dismissed, eightDaysAgo)

	job.Run()

	var notifications []domain.Notification
	require.NoError(t, db.Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, owner.ID, notifications[0].UserID)
	assert.Equal(t, domain.NotificationTypeStaleLead, notifications[0].Type)
	require.NotNil(t, notifications[0].EntityID)
	assert.Equal(t, stale.ID, *notifications[0].EntityID)
	assert.False(t, notifications[0].Read)

	// A second sweep inside the dedup window stays quiet
	job.Run()

	var count int64
	require.NoError(t, db.Model(&domain.Notification{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestOverdueInvoicesJob_Run(t *testing.T) {
	db := testutil.SetupTestDB(t)
	owner := testutil.CreateTestUser(t, db, "Omar", domain.RoleSales, domain.ScopeKSA)
	job := jobs.NewOverdueInvoicesJob(
		repository.NewInvoiceRepository(db),
		zap.NewNop(),
		time.Minute,
	)

	yesterday := time.Now().UTC().Add(-24 * time.Hour)
	tomorrow := time.Now().UTC().Add(24 * time.Hour)

	pastDue := testutil.CreateTestInvoice(t, db, owner, domain.InvoiceStatusSent)
	require.NoError(t, db.Model(&domain.Invoice{}).
		Where("id = ?", pastDue.ID).
		Update("due_date", yesterday).Error)

	notDue := testutil.CreateTestInvoice(t, db, owner, domain.InvoiceStatusSent)
	require.NoError(t, db.Model(&domain.Invoice{}).
		Where("id = ?", notDue.ID).
		Update("due_date", tomorrow).Error)

	// Drafts never go overdue regardless of the due date
	draft := testutil.CreateTestInvoice(t, db, owner, domain.InvoiceStatusDraft)
	require.NoError(t, db.Model(&domain.Invoice{}).
		Where("id = ?", draft.ID).
		Update("due_date", yesterday).Error)

	job.Run()

	statuses := map[string]domain.InvoiceStatus{}
	for _, id := range []string{pastDue.ID.String(), notDue.ID.String(), draft.ID.String()} {
		var invoice domain.Invoice
		require.NoError(t, db.First(&invoice, "id = ?", id).Error)
		statuses[id] = invoice.Status
	}
	assert.Equal(t, domain.InvoiceStatusOverdue, statuses[pastDue.ID.String()])
	assert.Equal(t, domain.InvoiceStatusSent, statuses[notDue.ID.String()])
	assert.Equal(t, domain.InvoiceStatusDraft, statuses[draft.ID.String()])
}
