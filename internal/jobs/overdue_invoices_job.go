package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/saqrcrm/sales-api/internal/repository"
)

// OverdueInvoicesJobName is the name of the overdue invoice sweep job
const OverdueInvoicesJobName = "overdue_invoices_sweep"

// OverdueInvoicesJob flips sent invoices past their due date to overdue
type OverdueInvoicesJob struct {
	invoiceRepo *repository.InvoiceRepository
	logger      *zap.Logger
	timeout     time.Duration
}

// NewOverdueInvoicesJob creates a new overdue invoice sweep job
func NewOverdueInvoicesJob(invoiceRepo *repository.InvoiceRepository, logger *zap.Logger, timeout time.Duration) *OverdueInvoicesJob {
	return &OverdueInvoicesJob{
		invoiceRepo: invoiceRepo,
		logger:      logger,
		timeout:     timeout,
	}
}

// Run executes one sweep. Called by the scheduler.
func (j *OverdueInvoicesJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	flipped, err := j.invoiceRepo.MarkOverdue(ctx, start)
	if err != nil {
		j.logger.Error("overdue invoice sweep failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("overdue invoice sweep completed",
		zap.Int64("flipped", flipped),
		zap.Duration("duration", time.Since(start)))
}
