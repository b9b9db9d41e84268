package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ricardofreitas-dev/PagBem/internal/pkg/env"
)

const defaultLytexAPIBaseURL = "https://api.lytex.com.br/v2"

// LytexClient talks to the Lytex payment REST API. Authentication is a
// bearer token plus a secret header on every request.
type LytexClient struct {
	APIToken  string
	APISecret string

	APIBaseURL string

	HTTPClient *http.Client
}

// LytexCharge is the provider response shape shared by the three payment
// creation endpoints and the transaction lookup.
type LytexCharge struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	PaymentURL    string `json:"payment_url,omitempty"`
	Barcode       string `json:"barcode,omitempty"`
	QRCode        string `json:"qr_code,omitempty"`
	CardToken     string `json:"card_token,omitempty"`
	ExpiresAt     string `json:"expires_at,omitempty"`
	Message       string `json:"message,omitempty"`

	// Raw holds the unparsed body for audit storage.
	Raw string `json:"-"`
}

type lytexCardRequest struct {
	Amount       int64             `json:"amount"`
	Description  string            `json:"description"`
	CardNumber   string            `json:"card_number"`
	HolderName   string            `json:"holder_name"`
	ExpiryMonth  int               `json:"expiry_month"`
	ExpiryYear   int               `json:"expiry_year"`
	CVV          string            `json:"cvv"`
	Installments int               `json:"installments"`
	SaveCard     bool              `json:"save_card,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type lytexBoletoRequest struct {
	Amount      int64             `json:"amount"`
	Description string            `json:"description"`
	Name        string            `json:"payer_name"`
	Email       string            `json:"payer_email"`
	Document    string            `json:"payer_document"`
	DueDate     string            `json:"due_date,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type lytexPixRequest struct {
	Amount      int64             `json:"amount"`
	Description string            `json:"description"`
	Name        string            `json:"payer_name"`
	Email       string            `json:"payer_email"`
	Document    string            `json:"payer_document"`
	ExpiresIn   int               `json:"expires_in,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// lytexRefundRequest omits the amount field entirely for full refunds; the
// provider treats a missing amount as "refund everything".
type lytexRefundRequest struct {
	Amount *int64 `json:"amount,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func NewLytexClientFromEnv() *LytexClient {
	return &LytexClient{
		APIToken:   strings.TrimSpace(env.GetEnv("LYTEX_API_TOKEN", "")),
		APISecret:  strings.TrimSpace(env.GetEnv("LYTEX_API_SECRET", "")),
		APIBaseURL: strings.TrimSpace(env.GetEnv("LYTEX_API_BASE_URL", defaultLytexAPIBaseURL)),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreateCreditCardPayment charges a card. Installments default to 1.
func (c *LytexClient) CreateCreditCardPayment(ctx context.Context, amountCents int64, description string, card CardDetails, installments int, saveCard bool, metadata map[string]string) (*LytexCharge, error) {
	if installments <= 0 {
		installments = 1
	}
	body := lytexCardRequest{
		Amount:       amountCents,
		Description:  description,
		CardNumber:   normalizeCardNumber(card.Number),
		HolderName:   strings.TrimSpace(card.HolderName),
		ExpiryMonth:  card.ExpiryMonth,
		ExpiryYear:   card.ExpiryYear,
		CVV:          card.CVV,
		Installments: installments,
		SaveCard:     saveCard,
		Metadata:     metadata,
	}
	return c.postCharge(ctx, "/payments/credit-card", body)
}

// CreateBoleto requests a boleto document for the given payer.
func (c *LytexClient) CreateBoleto(ctx context.Context, amountCents int64, description string, customer CustomerDetails, dueDate *time.Time, metadata map[string]string) (*LytexCharge, error) {
	body := lytexBoletoRequest{
		Amount:      amountCents,
		Description: description,
		Name:        strings.TrimSpace(customer.Name),
		Email:       strings.TrimSpace(customer.Email),
		Document:    strings.TrimSpace(customer.Document),
		Metadata:    metadata,
	}
	if dueDate != nil {
		body.DueDate = dueDate.Format("2006-01-02")
	}
	return c.postCharge(ctx, "/payments/boleto", body)
}

// CreatePix requests a PIX charge with an expiring QR code.
func (c *LytexClient) CreatePix(ctx context.Context, amountCents int64, description string, customer CustomerDetails, expiresIn int, metadata map[string]string) (*LytexCharge, error) {
	body := lytexPixRequest{
		Amount:      amountCents,
		Description: description,
		Name:        strings.TrimSpace(customer.Name),
		Email:       strings.TrimSpace(customer.Email),
		Document:    strings.TrimSpace(customer.Document),
		ExpiresIn:   expiresIn,
		Metadata:    metadata,
	}
	return c.postCharge(ctx, "/payments/pix", body)
}

// GetTransaction fetches the current provider state of a transaction.
func (c *LytexClient) GetTransaction(ctx context.Context, transactionID string) (*LytexCharge, error) {
	id := strings.TrimSpace(transactionID)
	if id == "" {
		return nil, errors.New("transaction id is required")
	}
	return c.do(ctx, http.MethodGet, "/transactions/"+id, nil)
}

// RefundTransaction refunds a transaction. A nil amount requests a full
// refund; a non-nil amount is the partial refund value in cents.
func (c *LytexClient) RefundTransaction(ctx context.Context, transactionID string, amountCents *int64, reason string) (*LytexCharge, error) {
	id := strings.TrimSpace(transactionID)
	if id == "" {
		return nil, errors.New("transaction id is required")
	}
	body := lytexRefundRequest{
		Amount: amountCents,
		Reason: strings.TrimSpace(reason),
	}
	return c.do(ctx, http.MethodPost, "/transactions/"+id+"/refund", body)
}

func (c *LytexClient) postCharge(ctx context.Context, path string, body interface{}) (*LytexCharge, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

func (c *LytexClient) do(ctx context.Context, method, path string, body interface{}) (*LytexCharge, error) {
	if strings.TrimSpace(c.APIToken) == "" || strings.TrimSpace(c.APISecret) == "" {
		return nil, errors.New("LYTEX_API_TOKEN/LYTEX_API_SECRET are not configured")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	url := strings.TrimRight(c.APIBaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIToken)
	req.Header.Set("X-Api-Secret", c.APISecret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &LytexAPIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out LytexCharge
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("lytex response parse failed: %w", err)
	}
	if strings.TrimSpace(out.TransactionID) == "" {
		return nil, fmt.Errorf("lytex response missing transaction_id: %s", string(raw))
	}
	out.Raw = string(raw)
	return &out, nil
}

// LytexAPIError is a non-2xx provider response. The body is preserved so the
// caller can store it as the gateway response of a failed attempt.
type LytexAPIError struct {
	StatusCode int
	Body       string
}

func (e *LytexAPIError) Error() string {
	return fmt.Sprintf("lytex request failed: status=%d body=%s", e.StatusCode, e.Body)
}
