package ingestion

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"OutcomeBook/internal/engine"
	"OutcomeBook/internal/ledger"
	"OutcomeBook/internal/observability"
	"OutcomeBook/internal/persistence"
)

// Dispatcher routes parsed commands into the engine and journals the
// accepted ones. It runs on a single goroutine — the command loop — so
// journal sequencing needs no locking.
type Dispatcher struct {
	eng      *engine.Engine
	funds    *ledger.MemoryLedger
	dedup    *CommandDedup
	journal  chan<- persistence.OperationRow
	sequence int64
	log      zerolog.Logger
	metrics  *observability.Metrics
}

// NewDispatcher builds a dispatcher. funds may be nil when the deployed
// collateral ledger has its own deposit surface; journal may be nil in
// tests and during replay.
func NewDispatcher(
	eng *engine.Engine,
	funds *ledger.MemoryLedger,
	dedup *CommandDedup,
	journal chan<- persistence.OperationRow,
	log zerolog.Logger,
	metrics *observability.Metrics,
) *Dispatcher {
	return &Dispatcher{
		eng:     eng,
		funds:   funds,
		dedup:   dedup,
		journal: journal,
		log:     log,
		metrics: metrics,
	}
}

// SetSequence resumes journal numbering after replay.
func (d *Dispatcher) SetSequence(seq int64) {
	d.sequence = seq
}

// Apply executes one command against the engine without journaling.
// Replay uses this directly.
func (d *Dispatcher) Apply(cmd *Command) error {
	switch cmd.Op {
	case OpLimitBuy:
		_, err := d.eng.LimitBuy(cmd.Caller, cmd.MarketID, cmd.Price, cmd.Size, cmd.Outcome)
		return err
	case OpLimitSell:
		_, err := d.eng.LimitSell(cmd.Caller, cmd.MarketID, cmd.Price, cmd.Size, cmd.Outcome)
		return err
	case OpMarketBuy:
		_, err := d.eng.MarketBuy(cmd.Caller, cmd.MarketID, cmd.Size, cmd.Outcome)
		return err
	case OpMarketSell:
		_, err := d.eng.MarketSell(cmd.Caller, cmd.MarketID, cmd.Size, cmd.Outcome)
		return err
	case OpCancel:
		return d.eng.Cancel(cmd.Caller, cmd.MarketID, cmd.Price, cmd.Index, cmd.Side, cmd.Outcome)
	case OpCreateMarket:
		_, err := d.eng.CreateMarket(cmd.Caller)
		return err
	case OpResolveMarket:
		return d.eng.ResolveMarket(cmd.Caller, cmd.MarketID, cmd.Outcome)
	case OpClaim:
		_, err := d.eng.Claim(cmd.Caller, cmd.MarketID)
		return err
	case OpDeposit:
		// Deposits arrive confirmed from the collateral boundary; the
		// caller is the beneficiary.
		if d.funds == nil {
			return fmt.Errorf("deposit command on a non-memory ledger")
		}
		d.funds.Deposit(cmd.Caller, cmd.Amount)
		return nil
	default:
		return fmt.Errorf("unknown operation: %s", cmd.Op)
	}
}

// Execute runs one live command: dedup, apply, journal, mark. A
// rejected command is not journaled — the journal holds accepted
// operations only.
func (d *Dispatcher) Execute(cmd *Command) error {
	if d.metrics != nil {
		d.metrics.CommandsReceived.WithLabelValues(cmd.Op).Inc()
	}

	if d.dedup != nil && d.dedup.Seen(cmd.OpID) {
		d.log.Debug().
			Str("op", cmd.Op).
			Str("op_id", cmd.OpID.String()).
			Msg("duplicate command skipped")
		return nil
	}

	if err := d.Apply(cmd); err != nil {
		if d.metrics != nil {
			d.metrics.CommandErrors.WithLabelValues(cmd.Op, "rejected").Inc()
		}
		return err
	}

	d.sequence++
	if d.journal != nil {
		// Blocking send: the command loop stalls rather than lose a row.
		d.journal <- persistence.OperationRow{
			Sequence:   d.sequence,
			Kind:       cmd.Op,
			Caller:     cmd.Caller.String(),
			MarketID:   int64(cmd.MarketID),
			Payload:    EncodeCommand(cmd),
			AcceptedAt: time.Now().UTC(),
		}
	}

	if d.dedup != nil {
		d.dedup.Mark(cmd.OpID)
	}
	return nil
}
