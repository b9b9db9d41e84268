package jobqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ricardofreitas-dev/PagBem/internal/pkg/s3archive"
)

// processPayloadArchiveJob uploads one raw provider payload to S3. When the
// archive is disabled the job completes as a no-op so environments without
// object storage keep working.
func (q *Queue) processPayloadArchiveJob(ctx context.Context, job *Job) error {
	payload, err := PayloadArchiveJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid archive job payload: %w", err)
	}

	cfg, err := s3archive.LoadConfig()
	if err != nil {
		return fmt.Errorf("load archive config: %w", err)
	}
	if !cfg.IsEnabled() {
		log.Debugf("[JobQueue] S3 archive disabled, dropping payload for %s", payload.TransactionID)
		return nil
	}

	client, err := s3archive.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("create archive client: %w", err)
	}

	key := cfg.GetObjectKey(payload.TransactionID, payload.Kind, time.Now())
	return client.PutPayload(ctx, key, []byte(payload.Body))
}
