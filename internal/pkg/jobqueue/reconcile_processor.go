package jobqueue

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ricardofreitas-dev/PagBem/app/repository"
	"github.com/ricardofreitas-dev/PagBem/internal/pkg/database"
	"github.com/ricardofreitas-dev/PagBem/internal/pkg/payments"
)

const (
	reconcileMinAge    = 15 * time.Minute
	reconcileBatchSize = 50
)

// processReconcileJob re-polls the provider for payments stuck in pending.
// A crash between the gateway call and the local write, or a missed webhook,
// heals here on the next sweep.
func (q *Queue) processReconcileJob(ctx context.Context, job *Job) error {
	_ = job

	db := database.GetDB()
	repo := repository.NewPaymentRepository(db)
	svc := payments.NewServiceFromDB(db)

	cutoff := time.Now().Add(-reconcileMinAge)
	rows, err := repo.ListPendingOlderThan(cutoff, reconcileBatchSize)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	log.Infof("[JobQueue] Reconciling %d pending payments", len(rows))
	for _, row := range rows {
		outcome, err := svc.CheckTransactionStatus(ctx, row.TransactionID)
		if err != nil {
			log.Errorf("[JobQueue] Reconcile of %s failed: %v", row.TransactionID, err)
			continue
		}
		if !outcome.Success && outcome.Status == "" {
			// Provider unreachable for this transaction; try again next sweep.
			log.Warnf("[JobQueue] Reconcile of %s: %s", row.TransactionID, outcome.Message)
			continue
		}
		if outcome.Status != row.Status {
			log.Infof("[JobQueue] Payment %s reconciled %s -> %s", row.TransactionID, row.Status, outcome.Status)
		}
	}

	return nil
}
