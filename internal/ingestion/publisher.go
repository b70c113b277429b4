package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"OutcomeBook/internal/event"
)

const (
	eventStream  = "CLOB_EVENTS"
	eventSubject = "clob.events.>"
)

// OutboundPublisher publishes the engine's audit records to NATS for
// downstream consumers. Subjects follow clob.events.{type}.{market_id}.
// Publish failures are non-fatal: consumers can rebuild from the
// operation journal.
type OutboundPublisher struct {
	js    jetstream.JetStream
	input <-chan event.Record
	log   zerolog.Logger
}

// publishedRecord is the JSON envelope around one audit record.
type publishedRecord struct {
	Type     string       `json:"type"`
	MarketID uint64       `json:"market_id"`
	Payload  event.Record `json:"payload"`
}

func NewOutboundPublisher(js jetstream.JetStream, input <-chan event.Record, log zerolog.Logger) *OutboundPublisher {
	return &OutboundPublisher{
		js:    js,
		input: input,
		log:   log,
	}
}

// Run starts the publisher loop.
func (op *OutboundPublisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case rec, ok := <-op.input:
			if !ok {
				return nil
			}
			if err := op.publish(ctx, rec); err != nil {
				op.log.Warn().
					Err(err).
					Str("type", rec.Type().String()).
					Uint64("market", rec.Market()).
					Msg("outbound publish failed")
			}
		}
	}
}

func (op *OutboundPublisher) publish(ctx context.Context, rec event.Record) error {
	data, err := json.Marshal(publishedRecord{
		Type:     rec.Type().String(),
		MarketID: rec.Market(),
		Payload:  rec,
	})
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	subject := fmt.Sprintf("clob.events.%s.%d", rec.Type(), rec.Market())
	_, err = op.js.Publish(ctx, subject, data)
	return err
}

// EnsureEventStream creates the outbound events stream.
func EnsureEventStream(ctx context.Context, js jetstream.JetStream) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      eventStream,
		Subjects:  []string{eventSubject},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    72 * time.Hour,
		Replicas:  1,
	})
	if err != nil {
		return fmt.Errorf("create event stream: %w", err)
	}
	return nil
}
