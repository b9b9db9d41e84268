package jobqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobTypeConstants(t *testing.T) {
	assert.Equal(t, "webhook_process", string(JobTypeWebhookProcess))
	assert.Equal(t, "reconcile_pending", string(JobTypeReconcilePending))
	assert.Equal(t, "payload_archive", string(JobTypePayloadArchive))
	assert.Equal(t, "receipt_email", string(JobTypeReceiptEmail))
}

func TestJobStatusConstants(t *testing.T) {
	assert.Equal(t, "pending", string(JobStatusPending))
	assert.Equal(t, "processing", string(JobStatusProcessing))
	assert.Equal(t, "completed", string(JobStatusCompleted))
	assert.Equal(t, "failed", string(JobStatusFailed))
	assert.Equal(t, "retrying", string(JobStatusRetrying))
}

func TestJob_StatusTransitions(t *testing.T) {
	job := &Job{
		Status:     JobStatusFailed,
		RetryCount: 1,
		MaxRetries: 3,
	}

	assert.True(t, job.IsRetryable())

	job.RetryCount = 3
	assert.False(t, job.IsRetryable())

	beforeTime := time.Now()

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	assert.NotNil(t, job.ProcessedAt)
	assert.True(t, job.UpdatedAt.After(beforeTime) || job.UpdatedAt.Equal(beforeTime))

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.NotNil(t, job.CompletedAt)
	assert.Empty(t, job.ErrorMsg)

	job.MarkAsFailed("provider timeout")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "provider timeout", job.ErrorMsg)
	assert.Equal(t, 4, job.RetryCount)
}

func TestWebhookProcessJobPayload_RoundTrip(t *testing.T) {
	payload := WebhookProcessJobPayload{WebhookEventID: 42}

	got, err := WebhookProcessJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, uint(42), got.WebhookEventID)
}

func TestPayloadArchiveJobPayload_RoundTrip(t *testing.T) {
	payload := PayloadArchiveJobPayload{
		TransactionID: "tx_1",
		Kind:          "webhook",
		Body:          `{"status":"paid"}`,
	}

	got, err := PayloadArchiveJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, payload, *got)
}

func TestReceiptEmailJobPayload_RoundTrip(t *testing.T) {
	payload := ReceiptEmailJobPayload{
		TransactionID: "tx_1",
		Email:         "maria@example.com",
		Name:          "Maria",
		AmountCents:   12990,
		Method:        "pix",
	}

	got, err := ReceiptEmailJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, payload, *got)
}
