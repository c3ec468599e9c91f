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

func newQuoteService(db *gorm.DB) *service.QuoteService {
	logger := zap.NewNop()
	return service.NewQuoteService(
		repository.NewQuoteRepository(db),
		repository.NewInvoiceRepository(db),
		repository.NewDealRepository(db),
		repository.NewUserRepository(db),
		repository.NewNumberSequenceRepository(db),
		repository.NewActivityLogRepository(db),
		db,
		logger,
	)
}

func quoteItems() []domain.QuoteItemRequest {
	return []domain.QuoteItemRequest{
		{Description: "Design", Quantity: 2, UnitPrice: 100},
		{Description: "Hosting", Quantity: 1, UnitPrice: 50},
	}
}

func TestQuoteService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newQuoteService(db)
	owner := testutil.CreateTestUser(t, db, "Huda", domain.RoleFinance, domain.ScopeAll)
	actor := testutil.ActorFor(owner)
	ctx := context.Background()

	t.Run("computes totals", func(t *testing.T) {
		quote, err := svc.Create(ctx, actor, owner.Name, &domain.CreateQuoteRequest{
			ClientName: "Almasa Holdings",
			IssueDate:  time.Now(),
			Items:      quoteItems(),
			Discount:   50,
			TaxPercent: 10,
		})
		require.NoError(t, err)

		assert.Equal(t, domain.QuoteStatusDraft, quote.Status)
		assert.InDelta(t, 250, quote.Subtotal, 0.001)
		// (250 - 50) * 1.10
		assert.InDelta(t, 220, quote.Total, 0.001)
		require.Len(t, quote.Items, 2)
		assert.Equal(t, 0, quote.Items[0].Position)
		assert.Equal(t, 1, quote.Items[1].Position)
	})

	t.Run("numbers are sequential", func(t *testing.T) {
		first, err := svc.Create(ctx, actor, owner.Name, &domain.CreateQuoteRequest{
			ClientName: "Client A",
			IssueDate:  time.Now(),
			Items:      quoteItems(),
		})
		require.NoError(t, err)
		second, err := svc.Create(ctx, actor, owner.Name, &domain.CreateQuoteRequest{
			ClientName: "Client B",
			IssueDate:  time.Now(),
			Items:      quoteItems(),
		})
		require.NoError(t, err)
		assert.NotEqual(t, first.QuoteNumber, second.QuoteNumber)
		assert.Regexp(t, `^Q-\d{6}$`, first.QuoteNumber)
	})

	t.Run("oversized discount goes negative", func(t *testing.T) {
		quote, err := svc.Create(ctx, actor, owner.Name, &domain.CreateQuoteRequest{
			ClientName: "Client C",
			IssueDate:  time.Now(),
			Items:      quoteItems(),
			Discount:   300,
			TaxPercent: 10,
		})
		require.NoError(t, err)
		// The total is not clamped at zero
		assert.InDelta(t, -55, quote.Total, 0.001)
	})
}

func TestQuoteService_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newQuoteService(db)
	owner := testutil.CreateTestUser(t, db, "Huda", domain.RoleFinance, domain.ScopeAll)
	actor := testutil.ActorFor(owner)
	ctx := context.Background()

	quote, err := svc.Create(ctx, actor, owner.Name, &domain.CreateQuoteRequest{
		ClientName: "Almasa Holdings",
		IssueDate:  time.Now(),
		Items:      quoteItems(),
	})
	require.NoError(t, err)

	t.Run("draft edits recompute totals", func(t *testing.T) {
		discount := 25.0
		updated, err := svc.Update(ctx, actor, owner.Name, quote.ID, &domain.UpdateQuoteRequest{
			Discount: &discount,
		})
		require.NoError(t, err)
		assert.InDelta(t, 225, updated.Total, 0.001)
	})

	t.Run("sent quotes are immutable", func(t *testing.T) {
		_, err := svc.UpdateStatus(ctx, actor, owner.Name, quote.ID, domain.QuoteStatusSent)
		require.NoError(t, err)

		name := "New Client"
		_, err = svc.Update(ctx, actor, owner.Name, quote.ID, &domain.UpdateQuoteRequest{
			ClientName: &name,
		})
		assert.ErrorIs(t, err, service.ErrQuoteNotEditable)

		// Even an admin cannot delete a quote past draft
		admin := testutil.CreateTestUser(t, db, "Admin", domain.RoleAdmin, domain.ScopeAll)
		err = svc.Delete(ctx, testutil.ActorFor(admin), admin.Name, quote.ID)
		assert.ErrorIs(t, err, service.ErrQuoteNotEditable)
	})

	t.Run("deleting is reserved for admins", func(t *testing.T) {
		draft, err := svc.Create(ctx, actor, owner.Name, &domain.CreateQuoteRequest{
			ClientName: "Scratch",
			IssueDate:  time.Now(),
			Items:      quoteItems(),
		})
		require.NoError(t, err)

		err = svc.Delete(ctx, actor, owner.Name, draft.ID)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})
}

func TestQuoteService_UpdateStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newQuoteService(db)
	owner := testutil.CreateTestUser(t, db, "Huda", domain.RoleFinance, domain.ScopeAll)
	actor := testutil.ActorFor(owner)
	ctx := context.Background()

	createSent := func(t *testing.T) *domain.QuoteDTO {
		quote, err := svc.Create(ctx, actor, owner.Name, &domain.CreateQuoteRequest{
			ClientName: "Almasa Holdings",
			IssueDate:  time.Now(),
			Items:      quoteItems(),
			Discount:   50,
			TaxPercent: 10,
		})
		require.NoError(t, err)
		sent, err := svc.UpdateStatus(ctx, actor, owner.Name, quote.ID, domain.QuoteStatusSent)
		require.NoError(t, err)
		return sent
	}

	t.Run("a draft can be accepted on the spot", func(t *testing.T) {
		quote, err := svc.Create(ctx, actor, owner.Name, &domain.CreateQuoteRequest{
			ClientName: "Client",
			IssueDate:  time.Now(),
			Items:      quoteItems(),
		})
		require.NoError(t, err)

		accepted, err := svc.UpdateStatus(ctx, actor, owner.Name, quote.ID, domain.QuoteStatusAccepted)
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatusAccepted, accepted.Status)

		// Acceptance still drafts the invoice
		var invoice domain.Invoice
		require.NoError(t, db.Where("quote_id = ?", quote.ID).First(&invoice).Error)
		assert.Equal(t, domain.InvoiceStatusDraft, invoice.Status)
	})

	t.Run("accept creates one draft invoice", func(t *testing.T) {
		quote := createSent(t)

		accepted, err := svc.UpdateStatus(ctx, actor, owner.Name, quote.ID, domain.QuoteStatusAccepted)
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatusAccepted, accepted.Status)

		var invoice domain.Invoice
		require.NoError(t, db.Where("quote_id = ?", quote.ID).First(&invoice).Error)
		assert.Equal(t, domain.InvoiceStatusDraft, invoice.Status)
		assert.InDelta(t, quote.Total, invoice.Amount, 0.001)
		assert.Equal(t, quote.ClientName, invoice.ClientName)
		assert.Regexp(t, `^INV-\d{6}$`, invoice.InvoiceNumber)

		// Payable net 30 from acceptance
		require.NotNil(t, invoice.DueDate)
		assert.WithinDuration(t, invoice.IssueDate.AddDate(0, 0, 30), *invoice.DueDate, time.Minute)

		// Re-accepting does not mint a second invoice
		_, err = svc.UpdateStatus(ctx, actor, owner.Name, quote.ID, domain.QuoteStatusAccepted)
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.Model(&domain.Invoice{}).Where("quote_id = ?", quote.ID).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("terminal states are frozen", func(t *testing.T) {
		quote := createSent(t)
		_, err := svc.UpdateStatus(ctx, actor, owner.Name, quote.ID, domain.QuoteStatusRejected)
		require.NoError(t, err)

		_, err = svc.UpdateStatus(ctx, actor, owner.Name, quote.ID, domain.QuoteStatusAccepted)
		assert.ErrorIs(t, err, service.ErrConflict)
	})
}
