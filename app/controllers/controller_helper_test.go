package controllers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJsonErrorShape(t *testing.T) {
	app := fiber.New()
	app.Get("/fail", func(c *fiber.Ctx) error {
		return jsonError(c, fiber.StatusNotFound, ErrCodeNotFound, "invoice not found")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/fail", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.False(t, body.Success)
	assert.Equal(t, ErrCodeNotFound, body.Error.Code)
	assert.Equal(t, "invoice not found", body.Error.Message)
}

func TestParseAndValidate_CardRequest(t *testing.T) {
	app := fiber.New()
	app.Post("/pay", func(c *fiber.Ctx) error {
		var req cardPaymentRequest
		if err := parseAndValidate(c, &req); err != nil {
			return jsonError(c, fiber.StatusBadRequest, ErrCodeValidation, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	// missing card details
	req := httptest.NewRequest("POST", "/pay", strings.NewReader(`{"invoice_id":1}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	payload := `{
		"invoice_id": 1,
		"card": {
			"number": "4111111111111111",
			"holder_name": "Maria Silva",
			"expiry_month": 12,
			"expiry_year": 2030,
			"cvv": "123"
		},
		"installments": 3
	}`
	req = httptest.NewRequest("POST", "/pay", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	// installments above the provider maximum
	req = httptest.NewRequest("POST", "/pay", strings.NewReader(strings.Replace(payload, `"installments": 3`, `"installments": 13`, 1)))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestPagination(t *testing.T) {
	app := fiber.New()
	var offset, limit int
	app.Get("/list", func(c *fiber.Ctx) error {
		offset, limit = pagination(c)
		return c.SendStatus(fiber.StatusNoContent)
	})

	_, err := app.Test(httptest.NewRequest("GET", "/list", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 0, offset)
	assert.Equal(t, 50, limit)

	_, err = app.Test(httptest.NewRequest("GET", "/list?offset=20&limit=10", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 20, offset)
	assert.Equal(t, 10, limit)

	_, err = app.Test(httptest.NewRequest("GET", "/list?offset=-5&limit=9999", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 0, offset)
	assert.Equal(t, 50, limit)
}

func TestFormatTimePtr(t *testing.T) {
	assert.Nil(t, formatTimePtr(nil))

	ts := time.Date(2026, 8, 31, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-08-31T10:30:00Z", formatTimePtr(&ts))
}

func TestWebhookTransactionID(t *testing.T) {
	assert.Equal(t, "tx_1", webhookTransactionID([]byte(`{"transaction_id":"tx_1","status":"paid"}`)))
	assert.Equal(t, "unknown", webhookTransactionID([]byte(`not-json`)))
	assert.Equal(t, "unknown", webhookTransactionID([]byte(`{"status":"paid"}`)))
}
