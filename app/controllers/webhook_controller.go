package controllers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/ricardofreitas-dev/PagBem/app/models"
	"github.com/ricardofreitas-dev/PagBem/internal/pkg/env"
	"github.com/ricardofreitas-dev/PagBem/internal/pkg/jobqueue"
	"github.com/ricardofreitas-dev/PagBem/internal/pkg/payments"
)

// HandleLytexWebhook receives Lytex status-change notifications. The raw
// payload is stored first (idempotently, keyed by provider event id) and the
// state transition happens in a background job, so the provider always gets
// a fast answer and retries never double-apply.
func HandleLytexWebhook(c *fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return jsonError(c, fiber.StatusBadRequest, ErrCodeValidation, "empty webhook body")
	}

	secret := env.GetEnv("LYTEX_WEBHOOK_SECRET", "")
	signatureValid := payments.VerifyWebhookSignature(body, c.Get("X-Lytex-Signature"), secret)

	eventID := c.Get("X-Lytex-Event-Id")
	if eventID == "" {
		// Old-style deliveries carry no event id; hash the body so retries
		// of the same payload still dedupe.
		sum := sha256.Sum256(body)
		eventID = hex.EncodeToString(sum[:])
	}

	eventType := ""
	var envelope struct {
		EventType string `json:"event_type"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		eventType = envelope.EventType
	}

	created, event, err := paymentService().RecordWebhookEvent(
		models.PaymentProviderLytex, eventID, eventType, string(body), signatureValid,
	)
	if err != nil {
		log.Printf("webhook store failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, ErrCodeUnexpected, "could not store webhook")
	}
	if !created {
		return c.JSON(fiber.Map{"success": true, "duplicate": true})
	}

	if !signatureValid {
		// Keep the payload for forensics but never act on it.
		if err := paymentService().MarkWebhookProcessed(event.ID, errInvalidSignature); err != nil {
			log.Printf("failed to mark unsigned webhook %d: %v", event.ID, err)
		}
		return jsonError(c, fiber.StatusUnauthorized, ErrCodeUnauthorized, "invalid webhook signature")
	}

	enqueueJob(jobqueue.JobTypeWebhookProcess, jobqueue.WebhookProcessJobPayload{
		WebhookEventID: event.ID,
	}.ToMap())
	enqueueJob(jobqueue.JobTypePayloadArchive, jobqueue.PayloadArchiveJobPayload{
		TransactionID: webhookTransactionID(body),
		Kind:          "webhook",
		Body:          string(body),
	}.ToMap())

	return c.JSON(fiber.Map{"success": true})
}

var errInvalidSignature = errors.New("invalid webhook signature")

func webhookTransactionID(body []byte) string {
	ev, err := payments.ParseWebhookEvent(body)
	if err != nil {
		return "unknown"
	}
	return ev.TransactionID
}
