package jobqueue

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ricardofreitas-dev/PagBem/app/models"
	"github.com/ricardofreitas-dev/PagBem/app/repository"
	"github.com/ricardofreitas-dev/PagBem/internal/pkg/database"
	"github.com/ricardofreitas-dev/PagBem/internal/pkg/payments"
)

// processWebhookJob applies the status transition carried by a stored
// webhook event. Transient failures are returned for retry; events that can
// never succeed (bad payload, unknown transaction) are marked processed with
// the error so they are not retried forever.
func (q *Queue) processWebhookJob(ctx context.Context, job *Job) error {
	payload, err := WebhookProcessJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid webhook job payload: %w", err)
	}

	db := database.GetDB()
	repo := repository.NewPaymentRepository(db)

	event, err := repo.GetWebhookEventByID(payload.WebhookEventID)
	if err != nil {
		return fmt.Errorf("load webhook event %d: %w", payload.WebhookEventID, err)
	}
	if event.ProcessedAt != nil {
		log.Infof("[JobQueue] Webhook event %d already processed, skipping", event.ID)
		return nil
	}

	svc := payments.NewServiceFromDB(db)

	ev, err := payments.ParseWebhookEvent([]byte(event.PayloadJSON))
	if err != nil {
		_ = svc.MarkWebhookProcessed(event.ID, err)
		return nil
	}

	record, err := svc.ApplyProviderStatus(ctx, ev.TransactionID, ev.Status, event.PayloadJSON)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = svc.MarkWebhookProcessed(event.ID, fmt.Errorf("no payment for transaction %s", ev.TransactionID))
			return nil
		}
		return fmt.Errorf("apply webhook status: %w", err)
	}

	if record.Status == models.PaymentStatusCompleted && record.PaidAt != nil {
		q.enqueueReceiptForPayment(record)
	}

	return svc.MarkWebhookProcessed(event.ID, nil)
}

// enqueueReceiptForPayment queues the receipt mail for a settled payment.
// Best effort: a lost receipt never fails the webhook.
func (q *Queue) enqueueReceiptForPayment(record *models.PaymentHistory) {
	user, err := repository.NewUserRepository(database.GetDB()).GetByID(record.UserID)
	if err != nil {
		log.Warnf("[JobQueue] receipt skipped, user %d not loadable: %v", record.UserID, err)
		return
	}
	payload := ReceiptEmailJobPayload{
		TransactionID: record.TransactionID,
		Email:         user.Email,
		Name:          user.Name,
		AmountCents:   record.AmountCents,
		Method:        record.Method,
	}
	if _, err := q.EnqueueJob(JobTypeReceiptEmail, payload.ToMap()); err != nil {
		log.Warnf("[JobQueue] failed to enqueue receipt for %s: %v", record.TransactionID, err)
	}
}
