package jobqueue

import (
	"fmt"

	"github.com/ricardofreitas-dev/PagBem/internal/pkg/env"
	"github.com/ricardofreitas-dev/PagBem/internal/pkg/mail"
)

var methodLabels = map[string]string{
	"credit_card": "Cartão de crédito",
	"boleto":      "Boleto bancário",
	"pix":         "PIX",
}

// processReceiptEmailJob sends the payment receipt for a completed charge.
func (q *Queue) processReceiptEmailJob(job *Job) error {
	payload, err := ReceiptEmailJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid receipt job payload: %w", err)
	}
	if payload.Email == "" {
		return nil
	}

	method := methodLabels[payload.Method]
	if method == "" {
		method = payload.Method
	}

	appName := env.GetEnv("APP_NAME", "PagBem")
	subject := fmt.Sprintf("%s - Recibo de pagamento", appName)
	body := fmt.Sprintf(
		"<p>Olá %s,</p>"+
			"<p>Recebemos seu pagamento de <strong>R$ %.2f</strong> via %s.</p>"+
			"<p>Transação: %s</p>"+
			"<p>Equipe %s</p>",
		payload.Name,
		float64(payload.AmountCents)/100,
		method,
		payload.TransactionID,
		appName,
	)

	return mail.SendMail(payload.Email, subject, body)
}
