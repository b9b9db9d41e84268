package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ricardofreitas-dev/PagBem/app/models"
	"github.com/ricardofreitas-dev/PagBem/app/repository"
	"github.com/ricardofreitas-dev/PagBem/internal/pkg/usercontext"
)

type stubInvoiceRepo struct {
	invoices map[uint]*models.Invoice
}

func (s *stubInvoiceRepo) Create(*models.Invoice) error { return nil }

func (s *stubInvoiceRepo) GetByID(id uint) (*models.Invoice, error) {
	inv, ok := s.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return inv, nil
}

func (s *stubInvoiceRepo) GetByUserID(uint, int, int) ([]models.Invoice, error) { return nil, nil }
func (s *stubInvoiceRepo) Update(*models.Invoice) error { return nil }
func (s *stubInvoiceRepo) MarkPaid(uint, int64, time.Time) error { return nil }
func (s *stubInvoiceRepo) MarkVoid(uint, time.Time) error { return nil }

// newPaymentTestApp wires the card payment route with a fixed user context
// and a stubbed invoice repository.
func newPaymentTestApp(user usercontext.UserContext, invoices map[uint]*models.Invoice) *fiber.App {
	repository.SetGlobalRepositories(&repository.Repositories{
		Invoice: &stubInvoiceRepo{invoices: invoices},
	})

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("USER_CONTEXT", user)
		return c.Next()
	})
	app.Post("/payments/card", HandleCardPayment)
	return app
}

func postCardPayment(t *testing.T, app *fiber.App, invoiceID string) *http.Response {
	t.Helper()
	body := `{
		"invoice_id": ` + invoiceID + `,
		"card": {
			"number": "4111111111111111",
			"holder_name": "Maria Silva",
			"expiry_month": 12,
			"expiry_year": 2030,
			"cvv": "123"
		}
	}`
	req := httptest.NewRequest("POST", "/payments/card", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeErrorBody(t *testing.T, resp *http.Response) (bool, string) {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body.Success, body.Error.Code
}

func TestHandleCardPayment_RejectsForeignInvoice(t *testing.T) {
	providerCalled := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		providerCalled = true
	}))
	defer ts.Close()
	t.Setenv("LYTEX_API_TOKEN", "token")
	t.Setenv("LYTEX_API_SECRET", "secret")
	t.Setenv("LYTEX_API_BASE_URL", ts.URL)

	invoice := &models.Invoice{
		ID:              4,
		UserID:          1,
		AmountDue:       5000,
		AmountRemaining: 5000,
		Status:          models.InvoiceStatusOpen,
	}
	app := newPaymentTestApp(
		usercontext.UserContext{UserID: 2, IsLoggedIn: true},
		map[uint]*models.Invoice{4: invoice},
	)

	resp := postCardPayment(t, app, "4")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	success, code := decodeErrorBody(t, resp)
	assert.False(t, success)
	assert.Equal(t, ErrCodeUnauthorized, code)
	assert.False(t, providerCalled, "foreign invoice must be rejected before any provider call")
}

func TestHandleCardPayment_AdminBypassesOwnership(t *testing.T) {
	invoice := &models.Invoice{
		ID:              4,
		UserID:          1,
		AmountDue:       5000,
		AmountRemaining: 0,
		Status:          models.InvoiceStatusPaid,
	}
	app := newPaymentTestApp(
		usercontext.UserContext{UserID: 9, IsLoggedIn: true, IsAdmin: true},
		map[uint]*models.Invoice{4: invoice},
	)

	// Admin clears the ownership gate and fails on payability instead.
	resp := postCardPayment(t, app, "4")
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	_, code := decodeErrorBody(t, resp)
	assert.Equal(t, ErrCodeValidation, code)
}

func TestHandleCardPayment_UnknownInvoice(t *testing.T) {
	app := newPaymentTestApp(
		usercontext.UserContext{UserID: 2, IsLoggedIn: true},
		map[uint]*models.Invoice{},
	)

	resp := postCardPayment(t, app, "99")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	_, code := decodeErrorBody(t, resp)
	assert.Equal(t, ErrCodeNotFound, code)
}

func TestPaymentMetadata(t *testing.T) {
	md := paymentMetadata(&models.Invoice{ID: 42, SubscriptionID: 7})
	assert.Equal(t, "42", md["invoice_id"])
	assert.Equal(t, "7", md["subscription_id"])

	md = paymentMetadata(&models.Invoice{ID: 42})
	assert.Equal(t, "42", md["invoice_id"])
	assert.NotContains(t, md, "subscription_id")
}
