package ingestion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"
)

const (
	commandStream  = "CLOB_CMDS"
	commandSubject = "clob.cmd.>"
	subjectPrefix  = "clob.cmd."
)

// RawCommand is a received-but-unparsed command. Op is derived from the
// subject suffix; the command loop parses, executes, and then acks.
// Unparseable and rejected commands are acked too — redelivery cannot
// fix them. Crash recovery relies on unacked redelivery plus the op_id
// dedup window.
type RawCommand struct {
	Op      string
	Data    []byte
	AckFunc func()
}

// CommandSubscriber feeds NATS commands into the single command loop.
// One durable consumer covers every clob.cmd.* subject: commands must
// reach the engine in stream order, and fanning out across per-subject
// consumers would break cross-operation ordering within a market.
type CommandSubscriber struct {
	js       jetstream.JetStream
	cmdChan  chan<- RawCommand
	consumer jetstream.ConsumeContext
	log      zerolog.Logger
}

func NewCommandSubscriber(js jetstream.JetStream, cmdChan chan<- RawCommand, log zerolog.Logger) *CommandSubscriber {
	return &CommandSubscriber{
		js:      js,
		cmdChan: cmdChan,
		log:     log,
	}
}

// EnsureCommandStream creates the inbound command stream.
func EnsureCommandStream(ctx context.Context, js jetstream.JetStream) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      commandStream,
		Subjects:  []string{commandSubject},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    72 * time.Hour,
		Replicas:  1,
	})
	if err != nil {
		return fmt.Errorf("create command stream: %w", err)
	}
	return nil
}

// Subscribe creates the durable consumer and starts delivery.
// Explicit ACK, max_deliver=5, ack_wait=30s.
func (s *CommandSubscriber) Subscribe(ctx context.Context) error {
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, commandStream, jetstream.ConsumerConfig{
		Durable:       "clob-engine",
		FilterSubject: commandSubject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       30 * time.Second,
		MaxDeliver:    5,
		DeliverPolicy: jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return fmt.Errorf("create command consumer: %w", err)
	}

	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		s.cmdChan <- RawCommand{
			Op:      strings.TrimPrefix(msg.Subject(), subjectPrefix),
			Data:    msg.Data(),
			AckFunc: func() { msg.Ack() },
		}
	})
	if err != nil {
		return fmt.Errorf("start command consumer: %w", err)
	}

	s.consumer = consumeCtx
	s.log.Info().Str("stream", commandStream).Msg("command subscriber started")
	return nil
}

// Drain stops delivery.
func (s *CommandSubscriber) Drain() {
	if s.consumer != nil {
		s.consumer.Drain()
	}
}
