package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to the controllers so the session-authenticated routes and the
	// API-key routes share one implementation.
	"github.com/ricardofreitas-dev/PagBem/app/controllers"
)

// APIServer exposes the v1 payment endpoints.
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ping": "pong"})
}

// PostCardPayment charges a credit card for an invoice.
func (s *APIServer) PostCardPayment(c *fiber.Ctx) error {
	return controllers.HandleCardPayment(c)
}

// PostBoletoPayment issues a boleto for an invoice.
func (s *APIServer) PostBoletoPayment(c *fiber.Ctx) error {
	return controllers.HandleBoletoPayment(c)
}

// PostPixPayment creates a PIX charge for an invoice.
func (s *APIServer) PostPixPayment(c *fiber.Ctx) error {
	return controllers.HandlePixPayment(c)
}

// GetPaymentStatus polls the provider for the current transaction status.
func (s *APIServer) GetPaymentStatus(c *fiber.Ctx) error {
	return controllers.HandleCheckPaymentStatus(c)
}

// PostRefund refunds a completed payment.
func (s *APIServer) PostRefund(c *fiber.Ctx) error {
	return controllers.HandleRefundPayment(c)
}

// GetInvoices lists the authenticated user's invoices.
func (s *APIServer) GetInvoices(c *fiber.Ctx) error {
	return controllers.HandleListInvoices(c)
}

// GetInvoice returns one invoice.
func (s *APIServer) GetInvoice(c *fiber.Ctx) error {
	return controllers.HandleGetInvoice(c)
}

// GetPayments lists the authenticated user's payment attempts.
func (s *APIServer) GetPayments(c *fiber.Ctx) error {
	return controllers.HandleListPaymentHistory(c)
}

// GetPaymentMethods lists the user's saved cards.
func (s *APIServer) GetPaymentMethods(c *fiber.Ctx) error {
	return controllers.HandleListPaymentMethods(c)
}

// DeletePaymentMethod removes a saved card.
func (s *APIServer) DeletePaymentMethod(c *fiber.Ctx) error {
	return controllers.HandleDeletePaymentMethod(c)
}

// RegisterHandlers attaches the v1 routes onto the given router group. The
// caller is responsible for attaching authentication middleware first.
func RegisterHandlers(router fiber.Router, s *APIServer) {
	router.Get("/ping", s.GetPing)

	router.Post("/payments/card", s.PostCardPayment)
	router.Post("/payments/boleto", s.PostBoletoPayment)
	router.Post("/payments/pix", s.PostPixPayment)
	router.Get("/payments", s.GetPayments)
	router.Get("/payments/:transaction_id/status", s.GetPaymentStatus)
	router.Post("/payments/:transaction_id/refund", s.PostRefund)

	router.Get("/invoices", s.GetInvoices)
	router.Get("/invoices/:id", s.GetInvoice)

	router.Get("/payment-methods", s.GetPaymentMethods)
	router.Delete("/payment-methods/:id", s.DeletePaymentMethod)
}
