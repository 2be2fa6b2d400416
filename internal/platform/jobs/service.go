package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"nomina/internal/domain/directory"
	cryptoutil "nomina/internal/platform/crypto"
)

const JobEncryptionBackfill = "encryption_backfill"

// Service runs maintenance work off the request path on a single
// in-process queue.
type Service struct {
	DB     *pgxpool.Pool
	Crypto *cryptoutil.Service
	queue  chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, crypto *cryptoutil.Service) *Service {
	return &Service{
		DB:     db,
		Crypto: crypto,
		queue:  make(chan job, 128),
	}
}

// Start launches the worker and, when an interval is configured and an
// encryption key is present, the periodic salary-encryption backfill.
func (s *Service) Start(ctx context.Context, backfillInterval time.Duration) {
	go s.worker(ctx)
	if backfillInterval > 0 && s.Crypto != nil && s.Crypto.Configured() {
		go s.scheduleBackfill(ctx, backfillInterval)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

// EncryptionBackfill encrypts any plaintext salaries immediately and
// reports how many rows were rewritten.
func (s *Service) EncryptionBackfill(ctx context.Context) (any, error) {
	return s.RunNow(ctx, JobEncryptionBackfill, func(ctx context.Context) (any, error) {
		updated, err := directory.BackfillSalaryEncryption(ctx, s.DB, s.Crypto)
		return map[string]any{"updated": updated}, err
	})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	started := time.Now()
	details, err := j.Run(ctx)
	if err != nil {
		slog.Warn("job failed", "jobType", j.Type, "durationMs", time.Since(started).Milliseconds(), "err", err)
		return details, err
	}
	slog.Info("job completed", "jobType", j.Type, "durationMs", time.Since(started).Milliseconds(), "details", details)
	return details, nil
}

func (s *Service) scheduleBackfill(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobEncryptionBackfill, func(ctx context.Context) (any, error) {
				updated, err := directory.BackfillSalaryEncryption(ctx, s.DB, s.Crypto)
				return map[string]any{"updated": updated}, err
			})
		}
	}
}
