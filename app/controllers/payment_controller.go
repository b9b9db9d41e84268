package controllers

import (
	"errors"
	"log"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ricardofreitas-dev/PagBem/app/models"
	"github.com/ricardofreitas-dev/PagBem/app/repository"
	"github.com/ricardofreitas-dev/PagBem/internal/pkg/jobqueue"
	"github.com/ricardofreitas-dev/PagBem/internal/pkg/payments"
)

type cardPaymentRequest struct {
	InvoiceID    uint                 `json:"invoice_id" validate:"required"`
	Card         payments.CardDetails `json:"card" validate:"required"`
	Installments int                  `json:"installments" validate:"omitempty,min=1,max=12"`
	SaveCard     bool                 `json:"save_card"`
}

type boletoRequest struct {
	InvoiceID uint                     `json:"invoice_id" validate:"required"`
	Customer  payments.CustomerDetails `json:"customer" validate:"required"`
	DueDate   string                   `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

type pixRequest struct {
	InvoiceID uint                     `json:"invoice_id" validate:"required"`
	Customer  payments.CustomerDetails `json:"customer" validate:"required"`
	ExpiresIn int                      `json:"expires_in" validate:"omitempty,min=60,max=86400"`
}

type refundRequest struct {
	Amount *float64 `json:"amount" validate:"omitempty,gt=0"` // BRL, converted to cents
	Reason string   `json:"reason" validate:"omitempty,max=255"`
}

func paymentService() *payments.Service {
	repos := repository.GetGlobalRepositories()
	return payments.NewService(payments.NewLytexClientFromEnv(), repos.Invoice, repos.Payment)
}

// loadPayableInvoice resolves an invoice and enforces ownership before any
// call leaves for the provider.
func loadPayableInvoice(c *fiber.Ctx, invoiceID uint) (*models.Invoice, error) {
	userID := currentUserID(c)
	invoice, err := repository.GetGlobalFactory().GetInvoiceRepository().GetByID(invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, jsonError(c, fiber.StatusNotFound, ErrCodeNotFound, "invoice not found")
		}
		log.Printf("invoice lookup failed: %v", err)
		return nil, jsonError(c, fiber.StatusInternalServerError, ErrCodeUnexpected, "could not load invoice")
	}
	if invoice.UserID != userID && !isAdmin(c) {
		return nil, jsonError(c, fiber.StatusForbidden, ErrCodeUnauthorized, "invoice does not belong to the authenticated user")
	}
	if !invoice.IsPayable() {
		return nil, jsonError(c, fiber.StatusUnprocessableEntity, ErrCodeValidation, "invoice is not payable")
	}
	return invoice, nil
}

// paymentMetadata tags the provider charge with the local records it settles,
// so webhook payloads and archived responses can be traced back.
func paymentMetadata(invoice *models.Invoice) map[string]string {
	md := map[string]string{
		"invoice_id": strconv.FormatUint(uint64(invoice.ID), 10),
	}
	if invoice.SubscriptionID != 0 {
		md["subscription_id"] = strconv.FormatUint(uint64(invoice.SubscriptionID), 10)
	}
	return md
}

// HandleCardPayment charges a credit card against an open invoice.
func HandleCardPayment(c *fiber.Ctx) error {
	var req cardPaymentRequest
	if err := parseAndValidate(c, &req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, ErrCodeValidation, err.Error())
	}

	invoice, err := loadPayableInvoice(c, req.InvoiceID)
	if err != nil {
		return err
	}

	outcome, err := paymentService().ProcessCreditCardPayment(c.Context(), payments.CardPaymentInput{
		InvoiceID:      invoice.ID,
		UserID:         invoice.UserID,
		AmountCents:    invoice.AmountRemaining,
		Description:    invoice.Description,
		Card:           req.Card,
		Installments:   req.Installments,
		SaveCard:       req.SaveCard,
		IdempotencyKey: c.Get("Idempotency-Key"),
		Metadata:       paymentMetadata(invoice),
	})
	if err != nil {
		log.Printf("card payment failed for invoice %d: %v", invoice.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, ErrCodeUnexpected, "payment could not be processed")
	}

	return respondPaymentOutcome(c, invoice, outcome, models.PaymentMethodCreditCard)
}

// HandleBoletoPayment issues a boleto for an open invoice.
func HandleBoletoPayment(c *fiber.Ctx) error {
	var req boletoRequest
	if err := parseAndValidate(c, &req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, ErrCodeValidation, err.Error())
	}

	invoice, err := loadPayableInvoice(c, req.InvoiceID)
	if err != nil {
		return err
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, perr := time.Parse("2006-01-02", req.DueDate)
		if perr != nil {
			return jsonError(c, fiber.StatusBadRequest, ErrCodeValidation, "due_date must be YYYY-MM-DD")
		}
		dueDate = &parsed
	}

	outcome, err := paymentService().GenerateBoleto(c.Context(), payments.BoletoInput{
		InvoiceID:      invoice.ID,
		UserID:         invoice.UserID,
		AmountCents:    invoice.AmountRemaining,
		Description:    invoice.Description,
		Customer:       req.Customer,
		DueDate:        dueDate,
		IdempotencyKey: c.Get("Idempotency-Key"),
		Metadata:       paymentMetadata(invoice),
	})
	if err != nil {
		log.Printf("boleto generation failed for invoice %d: %v", invoice.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, ErrCodeUnexpected, "boleto could not be generated")
	}

	return respondPaymentOutcome(c, invoice, outcome, models.PaymentMethodBoleto)
}

// HandlePixPayment creates a PIX charge with an expiring QR code.
func HandlePixPayment(c *fiber.Ctx) error {
	var req pixRequest
	if err := parseAndValidate(c, &req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, ErrCodeValidation, err.Error())
	}

	invoice, err := loadPayableInvoice(c, req.InvoiceID)
	if err != nil {
		return err
	}

	expiresIn := req.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 3600
	}

	outcome, err := paymentService().GeneratePix(c.Context(), payments.PixInput{
		InvoiceID:      invoice.ID,
		UserID:         invoice.UserID,
		AmountCents:    invoice.AmountRemaining,
		Description:    invoice.Description,
		Customer:       req.Customer,
		ExpiresIn:      expiresIn,
		IdempotencyKey: c.Get("Idempotency-Key"),
		Metadata:       paymentMetadata(invoice),
	})
	if err != nil {
		log.Printf("pix generation failed for invoice %d: %v", invoice.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, ErrCodeUnexpected, "pix charge could not be created")
	}

	return respondPaymentOutcome(c, invoice, outcome, models.PaymentMethodPix)
}

// HandleCheckPaymentStatus polls the provider for the current transaction
// status and syncs the local record.
func HandleCheckPaymentStatus(c *fiber.Ctx) error {
	transactionID := c.Params("transaction_id")
	record, err := loadOwnedTransaction(c, transactionID)
	if err != nil {
		return err
	}

	outcome, err := paymentService().CheckTransactionStatus(c.Context(), record.TransactionID)
	if err != nil {
		log.Printf("status check failed for %s: %v", transactionID, err)
		return jsonError(c, fiber.StatusInternalServerError, ErrCodeUnexpected, "status check failed")
	}
	if !outcome.Success && outcome.Status == "" {
		return jsonError(c, fiber.StatusBadGateway, ErrCodePaymentFailed, outcome.Message)
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"transaction_id": record.TransactionID,
		"status":         outcome.Status,
	})
}

// HandleRefundPayment refunds a completed payment, fully or partially.
func HandleRefundPayment(c *fiber.Ctx) error {
	transactionID := c.Params("transaction_id")
	record, err := loadOwnedTransaction(c, transactionID)
	if err != nil {
		return err
	}

	var req refundRequest
	if err := parseAndValidate(c, &req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, ErrCodeValidation, err.Error())
	}

	var amountCents *int64
	if req.Amount != nil {
		cents := int64(math.Round(*req.Amount * 100))
		amountCents = &cents
	}

	outcome, err := paymentService().RequestRefund(c.Context(), record.TransactionID, amountCents, req.Reason)
	if err != nil {
		log.Printf("refund failed for %s: %v", transactionID, err)
		return jsonError(c, fiber.StatusInternalServerError, ErrCodeUnexpected, "refund could not be processed")
	}
	if !outcome.Success {
		return jsonError(c, fiber.StatusUnprocessableEntity, ErrCodeRefundFailed, outcome.Message)
	}

	enqueueJob(jobqueue.JobTypePayloadArchive, jobqueue.PayloadArchiveJobPayload{
		TransactionID: record.TransactionID,
		Kind:          "refund",
		Body:          outcome.GatewayResponse,
	}.ToMap())

	return c.JSON(fiber.Map{
		"success":        true,
		"transaction_id": record.TransactionID,
		"status":         outcome.Status,
	})
}

// HandleListInvoices lists the authenticated user's invoices.
func HandleListInvoices(c *fiber.Ctx) error {
	userID := currentUserID(c)
	offset, limit := pagination(c)

	invoices, err := repository.GetGlobalFactory().GetInvoiceRepository().GetByUserID(userID, offset, limit)
	if err != nil {
		log.Printf("invoice list failed for user %d: %v", userID, err)
		return jsonError(c, fiber.StatusInternalServerError, ErrCodeUnexpected, "could not load invoices")
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"invoices": invoices,
	})
}

// HandleGetInvoice returns one invoice with its payment attempts.
func HandleGetInvoice(c *fiber.Ctx) error {
	invoiceID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, ErrCodeValidation, "invalid invoice id")
	}

	invoice, err := repository.GetGlobalFactory().GetInvoiceRepository().GetByID(uint(invoiceID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, ErrCodeNotFound, "invoice not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, ErrCodeUnexpected, "could not load invoice")
	}
	if invoice.UserID != currentUserID(c) && !isAdmin(c) {
		return jsonError(c, fiber.StatusForbidden, ErrCodeUnauthorized, "invoice does not belong to the authenticated user")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"invoice": invoice,
	})
}

// HandleListPaymentHistory lists the authenticated user's payment attempts.
func HandleListPaymentHistory(c *fiber.Ctx) error {
	userID := currentUserID(c)
	offset, limit := pagination(c)

	history, err := repository.GetGlobalFactory().GetPaymentRepository().ListHistoryByUserID(userID, offset, limit)
	if err != nil {
		log.Printf("payment history list failed for user %d: %v", userID, err)
		return jsonError(c, fiber.StatusInternalServerError, ErrCodeUnexpected, "could not load payment history")
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"payments": history,
	})
}

// HandleListPaymentMethods lists the user's saved cards.
func HandleListPaymentMethods(c *fiber.Ctx) error {
	userID := currentUserID(c)
	methods, err := repository.GetGlobalFactory().GetPaymentRepository().ListMethodsByUserID(userID)
	if err != nil {
		log.Printf("payment method list failed for user %d: %v", userID, err)
		return jsonError(c, fiber.StatusInternalServerError, ErrCodeUnexpected, "could not load payment methods")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"methods": methods,
	})
}

// HandleDeletePaymentMethod removes a saved card.
func HandleDeletePaymentMethod(c *fiber.Ctx) error {
	methodID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, ErrCodeValidation, "invalid payment method id")
	}

	repo := repository.GetGlobalFactory().GetPaymentRepository()
	method, err := repo.GetMethodByID(uint(methodID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, ErrCodeNotFound, "payment method not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, ErrCodeUnexpected, "could not load payment method")
	}
	if method.UserID != currentUserID(c) && !isAdmin(c) {
		return jsonError(c, fiber.StatusForbidden, ErrCodeUnauthorized, "payment method does not belong to the authenticated user")
	}

	if err := repo.DeleteMethod(method.ID); err != nil {
		log.Printf("payment method delete failed for %d: %v", method.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, ErrCodeUnexpected, "could not delete payment method")
	}

	return c.JSON(fiber.Map{"success": true})
}

// loadOwnedTransaction resolves a payment history row and enforces ownership.
func loadOwnedTransaction(c *fiber.Ctx, transactionID string) (*models.PaymentHistory, error) {
	if transactionID == "" {
		return nil, jsonError(c, fiber.StatusBadRequest, ErrCodeValidation, "transaction id is required")
	}

	record, err := repository.GetGlobalFactory().GetPaymentRepository().GetHistoryByTransactionID(transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, jsonError(c, fiber.StatusNotFound, ErrCodeNotFound, "transaction not found")
		}
		log.Printf("transaction lookup failed: %v", err)
		return nil, jsonError(c, fiber.StatusInternalServerError, ErrCodeUnexpected, "could not load transaction")
	}
	if record.UserID != currentUserID(c) && !isAdmin(c) {
		return nil, jsonError(c, fiber.StatusForbidden, ErrCodeUnauthorized, "transaction does not belong to the authenticated user")
	}
	return record, nil
}

// respondPaymentOutcome converts a service outcome into the API response and
// fires the follow-up jobs for settled payments.
func respondPaymentOutcome(c *fiber.Ctx, invoice *models.Invoice, outcome *payments.Outcome, method string) error {
	if outcome.Duplicate {
		return c.JSON(fiber.Map{
			"success":        outcome.Success,
			"duplicate":      true,
			"transaction_id": outcome.TransactionID,
			"status":         outcome.Status,
			"payment_url":    outcome.PaymentURL,
			"barcode":        outcome.Barcode,
			"pix_qr_code":    outcome.PixQRCode,
			"message":        outcome.Message,
		})
	}
	if !outcome.Success {
		return jsonError(c, fiber.StatusUnprocessableEntity, ErrCodePaymentFailed, outcome.Message)
	}

	if outcome.GatewayResponse != "" {
		enqueueJob(jobqueue.JobTypePayloadArchive, jobqueue.PayloadArchiveJobPayload{
			TransactionID: outcome.TransactionID,
			Kind:          "charge",
			Body:          outcome.GatewayResponse,
		}.ToMap())
	}
	if outcome.Status == models.PaymentStatusCompleted {
		enqueueReceiptEmail(invoice, outcome, method)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":        true,
		"transaction_id": outcome.TransactionID,
		"status":         outcome.Status,
		"payment_url":    outcome.PaymentURL,
		"barcode":        outcome.Barcode,
		"pix_qr_code":    outcome.PixQRCode,
		"message":        outcome.Message,
	})
}

func enqueueReceiptEmail(invoice *models.Invoice, outcome *payments.Outcome, method string) {
	user, err := repository.GetGlobalFactory().GetUserRepository().GetByID(invoice.UserID)
	if err != nil {
		log.Printf("receipt lookup failed for user %d: %v", invoice.UserID, err)
		return
	}
	enqueueJob(jobqueue.JobTypeReceiptEmail, jobqueue.ReceiptEmailJobPayload{
		TransactionID: outcome.TransactionID,
		Email:         user.Email,
		Name:          user.Name,
		AmountCents:   invoice.AmountRemaining,
		Method:        method,
	}.ToMap())
}

// enqueueJob pushes a background job, logging instead of failing the request.
func enqueueJob(jobType jobqueue.JobType, payload map[string]interface{}) {
	if _, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobType, payload); err != nil {
		log.Printf("failed to enqueue %s job: %v", jobType, err)
	}
}

// pagination reads offset/limit query params with sane bounds.
func pagination(c *fiber.Ctx) (int, int) {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 50)
	if offset < 0 {
		offset = 0
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return offset, limit
}
