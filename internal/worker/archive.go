// Package worker runs background jobs popped from the Redis queue.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/guestdesk/backend/internal/metrics"
	"github.com/guestdesk/backend/internal/models"
	"github.com/guestdesk/backend/pkg/apperr"
	"github.com/guestdesk/backend/pkg/queue"
	"github.com/guestdesk/backend/pkg/storage"
)

const retryTimeout = 5 * time.Second

// DocumentSource reads stored guest documents.
type DocumentSource interface {
	GetDocument(ctx context.Context, id int64) ([]byte, *models.GuestSubmission, error)
}

// ObjectStore is the archive destination.
type ObjectStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	Upload(ctx context.Context, key string, data []byte) (string, error)
}

// JobQueue delivers and retries jobs.
type JobQueue interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// ArchiveProcessor copies guest book documents to object storage.
type ArchiveProcessor struct {
	docs    DocumentSource
	store   ObjectStore
	queue   JobQueue
	metrics *metrics.Metrics
	backoff time.Duration
	logger  *zap.Logger
}

// NewArchiveProcessor creates a document archive processor.
func NewArchiveProcessor(docs DocumentSource, store ObjectStore, q JobQueue, m *metrics.Metrics, logger *zap.Logger) *ArchiveProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArchiveProcessor{docs: docs, store: store, queue: q, metrics: m, backoff: queue.RetryBackoff, logger: logger}
}

// Process executes one archive job. Already archived documents are skipped.
func (p *ArchiveProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeDocumentArchive {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.DocumentArchivePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	pdf, sub, err := p.docs.GetDocument(ctx, payload.SubmissionID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			p.logger.Warn("archive source missing, dropping job", zap.Int64("submission_id", payload.SubmissionID))
			p.metrics.IncrementArchiveJob(metrics.ResultMissing, 0)
			return nil
		}
		return fmt.Errorf("load document: %w", err)
	}

	key := storage.DocumentKey(sub.ID, sub.CreatedAt)
	exists, err := p.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("head object: %w", err)
	}
	if exists {
		p.logger.Info("document already archived", zap.Int64("submission_id", sub.ID), zap.String("s3_key", key))
		p.metrics.IncrementArchiveJob(metrics.ResultSkipped, 0)
		return nil
	}

	url, err := p.store.Upload(ctx, key, pdf)
	if err != nil {
		return fmt.Errorf("s3 upload: %w", err)
	}
	p.metrics.IncrementArchiveJob(metrics.ResultOK, len(pdf))
	p.logger.Info("document archived",
		zap.Int64("submission_id", sub.ID),
		zap.String("s3_key", key),
		zap.String("url", url),
		zap.Int("bytes", len(pdf)))
	return nil
}

// Run pops and processes jobs until ctx is cancelled. Failed jobs are retried and end in the DLQ.
func (p *ArchiveProcessor) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			p.logger.Info("archive worker stopping")
			return
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.metrics.IncrementArchiveJob(metrics.ResultStorageError, 0)
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
			if reErr := p.retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.String("job_id", job.ID), zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

// retry re-enqueues job even when shutdown has cancelled ctx.
func (p *ArchiveProcessor) retry(ctx context.Context, job *queue.Job) error {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), retryTimeout)
	defer cancel()
	return p.queue.Retry(rctx, job)
}

func (p *ArchiveProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
