package payments

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(ts *httptest.Server) *LytexClient {
	return &LytexClient{
		APIToken:   "token",
		APISecret:  "secret",
		APIBaseURL: ts.URL,
		HTTPClient: ts.Client(),
	}
}

func TestCreateCreditCardPayment(t *testing.T) {
	var gotPath, gotAuth, gotSecret string
	var gotBody map[string]interface{}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotSecret = r.Header.Get("X-Api-Secret")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"transaction_id":"tx_123","status":"approved","card_token":"ct_9"}`))
	}))
	defer ts.Close()

	client := newTestClient(ts)
	card := CardDetails{
		Number:      "4111 1111 1111 1111",
		HolderName:  "Maria Silva",
		ExpiryMonth: 12,
		ExpiryYear:  2030,
		CVV:         "123",
	}
	charge, err := client.CreateCreditCardPayment(context.Background(), 12990, "Assinatura mensal", card, 0, true, map[string]string{"invoice_id": "42"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/payments/credit-card" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer token" || gotSecret != "secret" {
		t.Fatalf("auth headers not set: auth=%q secret=%q", gotAuth, gotSecret)
	}
	if gotBody["card_number"] != "4111111111111111" {
		t.Fatalf("expected normalized card number, got %v", gotBody["card_number"])
	}
	if gotBody["installments"] != float64(1) {
		t.Fatalf("expected installments to default to 1, got %v", gotBody["installments"])
	}
	if charge.TransactionID != "tx_123" || charge.Status != "approved" || charge.CardToken != "ct_9" {
		t.Fatalf("unexpected charge: %+v", charge)
	}
	if charge.Raw == "" {
		t.Fatalf("expected raw body to be preserved")
	}
}

func TestCreateBoleto_DueDateFormat(t *testing.T) {
	var gotBody map[string]interface{}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`{"transaction_id":"tx_b1","status":"waiting_payment","payment_url":"https://pay","barcode":"123"}`))
	}))
	defer ts.Close()

	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	customer := CustomerDetails{Name: "Maria", Email: "maria@example.com", Document: "12345678909"}
	charge, err := newTestClient(ts).CreateBoleto(context.Background(), 5000, "Fatura", customer, &due, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotBody["due_date"] != "2026-09-15" {
		t.Fatalf("unexpected due_date %v", gotBody["due_date"])
	}
	if charge.PaymentURL != "https://pay" || charge.Barcode != "123" {
		t.Fatalf("unexpected charge: %+v", charge)
	}
}

func TestRefundTransaction_AmountOmittedForFullRefund(t *testing.T) {
	var gotBody map[string]interface{}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`{"transaction_id":"tx_123","status":"refunded"}`))
	}))
	defer ts.Close()

	client := newTestClient(ts)

	if _, err := client.RefundTransaction(context.Background(), "tx_123", nil, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, present := gotBody["amount"]; present {
		t.Fatalf("full refund must not carry an amount field, got %v", gotBody)
	}

	amount := int64(2500)
	if _, err := client.RefundTransaction(context.Background(), "tx_123", &amount, "duplicate charge"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotBody["amount"] != float64(2500) {
		t.Fatalf("partial refund should carry cents amount, got %v", gotBody["amount"])
	}
	if gotBody["reason"] != "duplicate charge" {
		t.Fatalf("unexpected reason %v", gotBody["reason"])
	}
}

func TestGetTransaction_Path(t *testing.T) {
	var gotPath, gotMethod string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		_, _ = w.Write([]byte(`{"transaction_id":"tx_42","status":"paid"}`))
	}))
	defer ts.Close()

	charge, err := newTestClient(ts).GetTransaction(context.Background(), "tx_42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodGet || gotPath != "/transactions/tx_42" {
		t.Fatalf("unexpected request %s %s", gotMethod, gotPath)
	}
	if charge.Status != "paid" {
		t.Fatalf("unexpected status %q", charge.Status)
	}
}

func TestClientErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":"insufficient_funds"}`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts).GetTransaction(context.Background(), "tx_402")
	var apiErr *LytexAPIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected LytexAPIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("unexpected status code %d", apiErr.StatusCode)
	}
	if apiErr.Body != `{"error":"insufficient_funds"}` {
		t.Fatalf("expected provider body to be preserved, got %q", apiErr.Body)
	}

	unconfigured := &LytexClient{HTTPClient: ts.Client(), APIBaseURL: ts.URL}
	if _, err := unconfigured.GetTransaction(context.Background(), "tx_1"); err == nil {
		t.Fatalf("expected error for missing credentials")
	}

	if _, err := newTestClient(ts).GetTransaction(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for empty transaction id")
	}
}

func TestParseWebhookEvent(t *testing.T) {
	ev, err := ParseWebhookEvent([]byte(`{"transaction_id":"tx_9","status":"paid","event_type":"payment.updated"}`))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.TransactionID != "tx_9" || ev.Status != "paid" || ev.EventType != "payment.updated" {
		t.Fatalf("unexpected event: %+v", ev)
	}

	if _, err := ParseWebhookEvent([]byte(`{"status":"paid"}`)); err == nil {
		t.Fatalf("expected error for missing transaction_id")
	}
	if _, err := ParseWebhookEvent([]byte(`{"transaction_id":"tx_9"}`)); err == nil {
		t.Fatalf("expected error for missing status")
	}
	if _, err := ParseWebhookEvent([]byte(`not-json`)); err == nil {
		t.Fatalf("expected error for invalid json")
	}
}
