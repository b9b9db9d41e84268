package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ricardofreitas-dev/PagBem/app/models"
	"github.com/ricardofreitas-dev/PagBem/app/repository"
	"github.com/ricardofreitas-dev/PagBem/internal/pkg/cache"
)

const idempotencyKeyTTL = 24 * time.Hour

// Service executes payment flows against the Lytex client and keeps the
// invoice and payment-history tables consistent with provider state.
type Service struct {
	client   *LytexClient
	invoices repository.InvoiceRepository
	payments repository.PaymentRepository
}

// NewService creates a payment service from injected dependencies.
func NewService(client *LytexClient, invoices repository.InvoiceRepository, payments repository.PaymentRepository) *Service {
	return &Service{client: client, invoices: invoices, payments: payments}
}

// NewServiceFromDB creates a payment service from a GORM DB handle, using the
// Lytex client configured through the environment.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(
		NewLytexClientFromEnv(),
		repository.NewInvoiceRepository(db),
		repository.NewPaymentRepository(db),
	)
}

// ProcessCreditCardPayment charges a card for an invoice. A provider-declined
// charge is recorded as a failed payment attempt; transport failures produce
// a failure outcome without a history row because no transaction exists yet.
func (s *Service) ProcessCreditCardPayment(ctx context.Context, in CardPaymentInput) (*Outcome, error) {
	if dup, err := s.checkIdempotency(in.IdempotencyKey); dup != nil || err != nil {
		return dup, err
	}

	if !ValidateLuhn(in.Card.Number) {
		releaseIdempotencyKey(in.IdempotencyKey)
		return &Outcome{Success: false, Message: "invalid card number"}, nil
	}

	charge, err := s.client.CreateCreditCardPayment(ctx, in.AmountCents, in.Description, in.Card, in.Installments, in.SaveCard, in.Metadata)
	if err != nil {
		releaseIdempotencyKey(in.IdempotencyKey)
		return gatewayFailure(err), nil
	}

	status := MapProviderStatus(charge.Status)
	record := &models.PaymentHistory{
		InvoiceID:       in.InvoiceID,
		UserID:          in.UserID,
		TransactionID:   charge.TransactionID,
		IdempotencyKey:  idempotencyKeyPtr(in.IdempotencyKey),
		Method:          models.PaymentMethodCreditCard,
		AmountCents:     in.AmountCents,
		Status:          status,
		GatewayResponse: charge.Raw,
	}
	if status == models.PaymentStatusCompleted {
		now := time.Now()
		record.PaidAt = &now
	}
	if err := s.payments.CreateHistory(record); err != nil {
		releaseIdempotencyKey(in.IdempotencyKey)
		return nil, fmt.Errorf("persist payment history: %w", err)
	}

	if status == models.PaymentStatusCompleted {
		if err := s.invoices.MarkPaid(in.InvoiceID, in.AmountCents, *record.PaidAt); err != nil {
			return nil, fmt.Errorf("mark invoice paid: %w", err)
		}
		if in.SaveCard {
			s.saveCardMethod(in, charge.CardToken)
		}
	}

	return &Outcome{
		Success:         status != models.PaymentStatusFailed,
		TransactionID:   charge.TransactionID,
		Status:          status,
		Message:         charge.Message,
		GatewayResponse: charge.Raw,
	}, nil
}

// GenerateBoleto requests a boleto document. Boletos always start pending;
// settlement arrives later through the webhook or the reconciliation sweep.
func (s *Service) GenerateBoleto(ctx context.Context, in BoletoInput) (*Outcome, error) {
	if dup, err := s.checkIdempotency(in.IdempotencyKey); dup != nil || err != nil {
		return dup, err
	}

	charge, err := s.client.CreateBoleto(ctx, in.AmountCents, in.Description, in.Customer, in.DueDate, in.Metadata)
	if err != nil {
		releaseIdempotencyKey(in.IdempotencyKey)
		return gatewayFailure(err), nil
	}

	record := &models.PaymentHistory{
		InvoiceID:       in.InvoiceID,
		UserID:          in.UserID,
		TransactionID:   charge.TransactionID,
		IdempotencyKey:  idempotencyKeyPtr(in.IdempotencyKey),
		Method:          models.PaymentMethodBoleto,
		AmountCents:     in.AmountCents,
		Status:          models.PaymentStatusPending,
		GatewayResponse: charge.Raw,
		PaymentURL:      charge.PaymentURL,
		Barcode:         charge.Barcode,
		ExpiresAt:       parseProviderTime(charge.ExpiresAt),
	}
	if err := s.payments.CreateHistory(record); err != nil {
		releaseIdempotencyKey(in.IdempotencyKey)
		return nil, fmt.Errorf("persist payment history: %w", err)
	}

	return &Outcome{
		Success:         true,
		TransactionID:   charge.TransactionID,
		Status:          models.PaymentStatusPending,
		PaymentURL:      charge.PaymentURL,
		Barcode:         charge.Barcode,
		GatewayResponse: charge.Raw,
	}, nil
}

// GeneratePix requests a PIX charge with an expiring QR code.
func (s *Service) GeneratePix(ctx context.Context, in PixInput) (*Outcome, error) {
	if dup, err := s.checkIdempotency(in.IdempotencyKey); dup != nil || err != nil {
		return dup, err
	}

	charge, err := s.client.CreatePix(ctx, in.AmountCents, in.Description, in.Customer, in.ExpiresIn, in.Metadata)
	if err != nil {
		releaseIdempotencyKey(in.IdempotencyKey)
		return gatewayFailure(err), nil
	}

	record := &models.PaymentHistory{
		InvoiceID:       in.InvoiceID,
		UserID:          in.UserID,
		TransactionID:   charge.TransactionID,
		IdempotencyKey:  idempotencyKeyPtr(in.IdempotencyKey),
		Method:          models.PaymentMethodPix,
		AmountCents:     in.AmountCents,
		Status:          models.PaymentStatusPending,
		GatewayResponse: charge.Raw,
		PaymentURL:      charge.PaymentURL,
		PixQRCode:       charge.QRCode,
		ExpiresAt:       parseProviderTime(charge.ExpiresAt),
	}
	if err := s.payments.CreateHistory(record); err != nil {
		releaseIdempotencyKey(in.IdempotencyKey)
		return nil, fmt.Errorf("persist payment history: %w", err)
	}

	return &Outcome{
		Success:         true,
		TransactionID:   charge.TransactionID,
		Status:          models.PaymentStatusPending,
		PaymentURL:      charge.PaymentURL,
		PixQRCode:       charge.QRCode,
		GatewayResponse: charge.Raw,
	}, nil
}

// CheckTransactionStatus polls the provider and writes the mapped status
// back to the local tables.
func (s *Service) CheckTransactionStatus(ctx context.Context, transactionID string) (*Outcome, error) {
	charge, err := s.client.GetTransaction(ctx, transactionID)
	if err != nil {
		return gatewayFailure(err), nil
	}

	record, err := s.ApplyProviderStatus(ctx, transactionID, charge.Status, charge.Raw)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Success:         record.Status != models.PaymentStatusFailed,
		TransactionID:   transactionID,
		Status:          record.Status,
		GatewayResponse: charge.Raw,
	}, nil
}

// RequestRefund refunds a completed payment. amountCents nil means full
// refund; the amount field is then omitted from the provider request.
func (s *Service) RequestRefund(ctx context.Context, transactionID string, amountCents *int64, reason string) (*Outcome, error) {
	record, err := s.payments.GetHistoryByTransactionID(transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Outcome{Success: false, Message: "transaction not found"}, nil
		}
		return nil, err
	}
	if record.Status != models.PaymentStatusCompleted {
		return &Outcome{Success: false, Message: "only completed payments can be refunded"}, nil
	}
	if amountCents != nil && (*amountCents <= 0 || *amountCents > record.AmountCents) {
		return &Outcome{Success: false, Message: "refund amount out of range"}, nil
	}

	charge, err := s.client.RefundTransaction(ctx, transactionID, amountCents, reason)
	if err != nil {
		return gatewayFailure(err), nil
	}

	now := time.Now()
	record.Status = models.PaymentStatusRefunded
	record.RefundedAt = &now
	record.GatewayResponse = charge.Raw
	if err := s.payments.UpdateHistory(record); err != nil {
		return nil, fmt.Errorf("persist refund: %w", err)
	}
	if err := s.invoices.MarkVoid(record.InvoiceID, now); err != nil {
		return nil, fmt.Errorf("void invoice: %w", err)
	}

	return &Outcome{
		Success:         true,
		TransactionID:   transactionID,
		Status:          models.PaymentStatusRefunded,
		GatewayResponse: charge.Raw,
	}, nil
}

// ApplyProviderStatus maps a provider status onto the history row identified
// by transaction id and keeps the owning invoice in step. This is the single
// write path shared by status checks, webhooks and the reconciliation sweep.
func (s *Service) ApplyProviderStatus(ctx context.Context, transactionID, providerStatus, raw string) (*models.PaymentHistory, error) {
	_ = ctx
	record, err := s.payments.GetHistoryByTransactionID(transactionID)
	if err != nil {
		return nil, err
	}

	status := MapProviderStatus(providerStatus)
	if status == record.Status {
		return record, nil
	}

	// Terminal states never regress to pending on a late provider poll.
	if record.IsFinal() && status == models.PaymentStatusPending {
		return record, nil
	}

	now := time.Now()
	record.Status = status
	if raw != "" {
		record.GatewayResponse = raw
	}

	switch status {
	case models.PaymentStatusCompleted:
		record.PaidAt = &now
		if err := s.payments.UpdateHistory(record); err != nil {
			return nil, err
		}
		if err := s.invoices.MarkPaid(record.InvoiceID, record.AmountCents, now); err != nil {
			return nil, err
		}
	case models.PaymentStatusRefunded:
		record.RefundedAt = &now
		if err := s.payments.UpdateHistory(record); err != nil {
			return nil, err
		}
		if err := s.invoices.MarkVoid(record.InvoiceID, now); err != nil {
			return nil, err
		}
	default:
		if err := s.payments.UpdateHistory(record); err != nil {
			return nil, err
		}
	}

	return record, nil
}

// RecordWebhookEvent persists webhook payloads idempotently.
func (s *Service) RecordWebhookEvent(provider, providerEventID, eventType, payloadJSON string, signatureValid bool) (bool, *models.PaymentWebhookEvent, error) {
	event := &models.PaymentWebhookEvent{
		Provider:        strings.ToLower(strings.TrimSpace(provider)),
		ProviderEventID: strings.TrimSpace(providerEventID),
		EventType:       strings.TrimSpace(eventType),
		PayloadJSON:     payloadJSON,
		SignatureValid:  signatureValid,
	}
	if event.Provider == "" {
		return false, nil, errors.New("provider is required")
	}
	return s.payments.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(webhookEventID uint, processingErr error) error {
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.payments.MarkWebhookProcessed(webhookEventID, errMsg)
}

// checkIdempotency returns a duplicate outcome when the client-supplied key
// was already used. The redis SETNX guard catches racing double-submits; the
// unique column on payment_history is the durable backstop.
func (s *Service) checkIdempotency(key string) (*Outcome, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}

	acquired, err := cache.SetNX("idem:payment:"+key, "1", idempotencyKeyTTL)
	if err != nil {
		// Cache down: fall through to the DB unique constraint.
		log.Warnf("[Payments] idempotency guard unavailable: %v", err)
		return nil, nil
	}
	if acquired {
		return nil, nil
	}

	existing, err := s.payments.GetHistoryByIdempotencyKey(key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Outcome{Success: false, Duplicate: true, Message: "payment with this idempotency key is already in progress"}, nil
		}
		return nil, err
	}

	return &Outcome{
		Success:       existing.Status != models.PaymentStatusFailed,
		Duplicate:     true,
		TransactionID: existing.TransactionID,
		Status:        existing.Status,
		PaymentURL:    existing.PaymentURL,
		Barcode:       existing.Barcode,
		PixQRCode:     existing.PixQRCode,
	}, nil
}

// releaseIdempotencyKey frees the SETNX guard when a payment attempt ends
// without a history row. Without this a failed attempt would block retries
// under the same key for the full TTL even though no payment exists.
func releaseIdempotencyKey(key string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	if err := cache.Delete("idem:payment:" + key); err != nil {
		log.Warnf("[Payments] could not release idempotency key: %v", err)
	}
}

func (s *Service) saveCardMethod(in CardPaymentInput, cardToken string) {
	method := &models.PaymentMethod{
		UserID:      in.UserID,
		LastFour:    CardLastFour(in.Card.Number),
		Brand:       DetectCardBrand(in.Card.Number),
		ExpiryMonth: in.Card.ExpiryMonth,
		ExpiryYear:  in.Card.ExpiryYear,
		CardToken:   cardToken,
	}
	// Saving the card is best effort; the charge already settled.
	if err := s.payments.CreateMethod(method); err != nil {
		log.Errorf("[Payments] failed to save card for user %d: %v", in.UserID, err)
	}
}

func gatewayFailure(err error) *Outcome {
	out := &Outcome{Success: false, Message: err.Error()}
	var apiErr *LytexAPIError
	if errors.As(err, &apiErr) {
		out.GatewayResponse = apiErr.Body
	}
	return out
}

func idempotencyKeyPtr(key string) *string {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	return &key
}

func parseProviderTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

// ParseWebhookEvent decodes a Lytex status-change notification body.
func ParseWebhookEvent(payload []byte) (*WebhookEvent, error) {
	var ev WebhookEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, err
	}
	if strings.TrimSpace(ev.TransactionID) == "" {
		return nil, errors.New("webhook payload missing transaction_id")
	}
	if strings.TrimSpace(ev.Status) == "" {
		return nil, errors.New("webhook payload missing status")
	}
	return &ev, nil
}
