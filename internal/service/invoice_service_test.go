package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/repository"
	"github.com/saqrcrm/sales-api/internal/service"
	"github.com/saqrcrm/sales-api/internal/testutil"
)

func newInvoiceService(db *gorm.DB) *service.InvoiceService {
	logger := zap.NewNop()
	return service.NewInvoiceService(
		repository.NewInvoiceRepository(db),
		repository.NewDealRepository(db),
		repository.NewProjectRepository(db),
		repository.NewUserRepository(db),
		repository.NewNumberSequenceRepository(db),
		repository.NewActivityLogRepository(db),
		logger,
	)
}

func TestInvoiceService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newInvoiceService(db)
	owner := testutil.CreateTestUser(t, db, "Huda", domain.RoleFinance, domain.ScopeAll)
	ctx := context.Background()

	invoice, err := svc.Create(ctx, testutil.ActorFor(owner), owner.Name, &domain.CreateInvoiceRequest{
		ClientName: "Almasa Holdings",
		Amount:     12000,
		IssueDate:  time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusDraft, invoice.Status)
	assert.Regexp(t, `^INV-\d{6}$`, invoice.InvoiceNumber)
	assert.Equal(t, owner.ID, invoice.OwnerID)

	t.Run("due date cannot precede the issue date", func(t *testing.T) {
		issueDate := time.Now()
		dueDate := issueDate.Add(-24 * time.Hour)
		_, err := svc.Create(ctx, testutil.ActorFor(owner), owner.Name, &domain.CreateInvoiceRequest{
			ClientName: "Almasa Holdings",
			Amount:     5000,
			IssueDate:  issueDate,
			DueDate:    &dueDate,
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestInvoiceService_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newInvoiceService(db)
	owner := testutil.CreateTestUser(t, db, "Huda", domain.RoleFinance, domain.ScopeAll)
	actor := testutil.ActorFor(owner)
	ctx := context.Background()

	t.Run("draft to sent", func(t *testing.T) {
		invoice := testutil.CreateTestInvoice(t, db, owner, domain.InvoiceStatusDraft)
		sent := domain.InvoiceStatusSent
		updated, err := svc.Update(ctx, actor, owner.Name, invoice.ID, &domain.UpdateInvoiceRequest{Status: &sent})
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusSent, updated.Status)
	})

	t.Run("sent cannot go back to draft", func(t *testing.T) {
		invoice := testutil.CreateTestInvoice(t, db, owner, domain.InvoiceStatusSent)
		draft := domain.InvoiceStatusDraft
		_, err := svc.Update(ctx, actor, owner.Name, invoice.ID, &domain.UpdateInvoiceRequest{Status: &draft})
		assert.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("overdue can still be paid", func(t *testing.T) {
		invoice := testutil.CreateTestInvoice(t, db, owner, domain.InvoiceStatusOverdue)
		paid := domain.InvoiceStatusPaid
		updated, err := svc.Update(ctx, actor, owner.Name, invoice.ID, &domain.UpdateInvoiceRequest{Status: &paid})
		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusPaid, updated.Status)
	})

	t.Run("content edits only on drafts", func(t *testing.T) {
		invoice := testutil.CreateTestInvoice(t, db, owner, domain.InvoiceStatusSent)
		amount := 9000.0
		_, err := svc.Update(ctx, actor, owner.Name, invoice.ID, &domain.UpdateInvoiceRequest{Amount: &amount})
		assert.ErrorIs(t, err, service.ErrInvoiceNotDraft)
	})

	t.Run("due date cannot be moved before the issue date", func(t *testing.T) {
		invoice := testutil.CreateTestInvoice(t, db, owner, domain.InvoiceStatusDraft)
		dueDate := invoice.IssueDate.Add(-48 * time.Hour)
		_, err := svc.Update(ctx, actor, owner.Name, invoice.ID, &domain.UpdateInvoiceRequest{DueDate: &dueDate})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestInvoiceService_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newInvoiceService(db)
	owner := testutil.CreateTestUser(t, db, "Huda", domain.RoleFinance, domain.ScopeAll)
	actor := testutil.ActorFor(owner)
	ctx := context.Background()

	t.Run("drafts can be deleted", func(t *testing.T) {
		invoice := testutil.CreateTestInvoice(t, db, owner, domain.InvoiceStatusDraft)
		require.NoError(t, svc.Delete(ctx, actor, owner.Name, invoice.ID))

		var count int64
		require.NoError(t, db.Model(&domain.Invoice{}).Where("id = ?", invoice.ID).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("sent invoices are kept", func(t *testing.T) {
		invoice := testutil.CreateTestInvoice(t, db, owner, domain.InvoiceStatusSent)
		err := svc.Delete(ctx, actor, owner.Name, invoice.ID)
		assert.ErrorIs(t, err, service.ErrInvoiceNotDraft)
	})
}

func TestMarkOverdueSweep(t *testing.T) {
	db := testutil.SetupTestDB(t)
	owner := testutil.CreateTestUser(t, db, "Huda", domain.RoleFinance, domain.ScopeAll)
	repo := repository.NewInvoiceRepository(db)
	ctx := context.Background()

	past := time.Now().Add(-72 * time.Hour)
	future := time.Now().Add(72 * time.Hour)

	overdue := testutil.CreateTestInvoice(t, db, owner, domain.InvoiceStatusSent)
	require.NoError(t, db.Model(overdue).Update("due_date", past).Error)
	current := testutil.CreateTestInvoice(t, db, owner, domain.InvoiceStatusSent)
	require.NoError(t, db.Model(current).Update("due_date", future).Error)
	draft := testutil.CreateTestInvoice(t, db, owner, domain.InvoiceStatusDraft)
	require.NoError(t, db.Model(draft).Update("due_date", past).Error)

	flipped, err := repo.MarkOverdue(ctx, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, flipped)

	var stored domain.Invoice
	require.NoError(t, db.First(&stored, "id = ?", overdue.ID).Error)
	assert.Equal(t, domain.InvoiceStatusOverdue, stored.Status)
	require.NoError(t, db.First(&stored, "id = ?", current.ID).Error)
	assert.Equal(t, domain.InvoiceStatusSent, stored.Status)
	require.NoError(t, db.First(&stored, "id = ?", draft.ID).Error)
	assert.Equal(t, domain.InvoiceStatusDraft, stored.Status)
}
