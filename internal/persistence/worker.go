package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	"OutcomeBook/internal/observability"
)

// JournalWorker drains the journal channel and batch-writes to Postgres.
// The command loop uses BLOCKING sends into this channel, so if the
// worker falls behind, command processing stalls — guaranteeing no
// accepted operation is lost.
type JournalWorker struct {
	writer       *JournalWriter
	inputChan    <-chan OperationRow
	batchSize    int
	flushTimeout time.Duration
	log          zerolog.Logger
	metrics      *observability.Metrics
}

func NewJournalWorker(
	db *sql.DB,
	inputChan <-chan OperationRow,
	batchSize int,
	flushTimeout time.Duration,
	log zerolog.Logger,
	metrics *observability.Metrics,
) *JournalWorker {
	return &JournalWorker{
		writer:       NewJournalWriter(db),
		inputChan:    inputChan,
		batchSize:    batchSize,
		flushTimeout: flushTimeout,
		log:          log,
		metrics:      metrics,
	}
}

// Run starts the worker loop. It batches incoming rows and flushes when
// the batch is full or the flush timeout expires. Blocks until ctx is
// cancelled or the channel closes.
func (w *JournalWorker) Run(ctx context.Context) error {
	batch := make([]OperationRow, 0, w.batchSize)

	timer := time.NewTimer(w.flushTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			if len(batch) > 0 {
				if err := w.flush(context.Background(), batch); err != nil {
					w.log.Error().Err(err).Msg("final journal flush failed")
				}
			}
			return ctx.Err()

		case op, ok := <-w.inputChan:
			if !ok {
				if len(batch) > 0 {
					if err := w.flush(context.Background(), batch); err != nil {
						w.log.Error().Err(err).Msg("final journal flush failed")
					}
				}
				return nil
			}

			batch = append(batch, op)
			if len(batch) >= w.batchSize {
				w.flushWithRetry(ctx, batch)
				batch = batch[:0]
				timer.Reset(w.flushTimeout)
			}

		case <-timer.C:
			if len(batch) > 0 {
				w.flushWithRetry(ctx, batch)
				batch = batch[:0]
			}
			timer.Reset(w.flushTimeout)
		}
	}
}

// flushWithRetry retries with exponential backoff. The worker never
// drops operations: it retries until the write succeeds or shutdown
// forces one final attempt.
func (w *JournalWorker) flushWithRetry(ctx context.Context, batch []OperationRow) {
	backoff := 100 * time.Millisecond
	const maxBackoff = 30 * time.Second

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			w.log.Warn().
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Int("ops", len(batch)).
				Msg("journal write retry")
			select {
			case <-ctx.Done():
				if err := w.flush(context.Background(), batch); err != nil {
					w.log.Error().Err(err).Msg("final journal flush on shutdown failed")
				}
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}

		if err := w.flush(ctx, batch); err == nil {
			if attempt > 0 {
				w.log.Info().Int("attempts", attempt).Msg("journal flush recovered")
			}
			return
		}
	}
}

func (w *JournalWorker) flush(ctx context.Context, batch []OperationRow) error {
	start := time.Now()

	if err := w.writer.WriteBatch(ctx, batch); err != nil {
		if w.metrics != nil {
			w.metrics.JournalErrors.WithLabelValues("write").Inc()
		}
		return err
	}

	if w.metrics != nil {
		w.metrics.JournalBatchDur.Observe(time.Since(start).Seconds())
		w.metrics.JournalOpsWritten.Add(float64(len(batch)))
		w.metrics.JournalLastSeq.Set(float64(batch[len(batch)-1].Sequence))
	}
	return nil
}
