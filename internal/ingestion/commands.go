package ingestion

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/holiman/uint256"

	"OutcomeBook/internal/book"
)

// Operation kinds accepted over the command surface. The same strings
// name NATS subject suffixes and journal rows, so a replayed journal
// decodes through the same path as live traffic.
const (
	OpLimitBuy      = "limit_buy"
	OpLimitSell     = "limit_sell"
	OpMarketBuy     = "market_buy"
	OpMarketSell    = "market_sell"
	OpCancel        = "cancel"
	OpCreateMarket  = "create_market"
	OpResolveMarket = "resolve_market"
	OpClaim         = "claim"
	OpDeposit       = "deposit"
)

// Command is a parsed, validated request for one engine operation.
type Command struct {
	Op       string
	OpID     uuid.UUID
	Caller   uuid.UUID
	MarketID uint64
	Price    uint16
	Size     uint64
	Outcome  book.Outcome
	Side     book.Side
	Index    int
	Amount   *uint256.Int // deposit only
}

// commandJSON is the wire format received from NATS and stored in the
// operation journal. Field names use snake_case to match upstream
// producers.
type commandJSON struct {
	OpID     string `json:"op_id"`
	Caller   string `json:"caller"`
	MarketID uint64 `json:"market_id"`
	Price    uint16 `json:"price"`
	Size     uint64 `json:"size"`
	Outcome  string `json:"outcome"`
	Side     string `json:"side"`
	Index    int    `json:"index"`
	Amount   string `json:"amount"`
}

// ParseCommand converts raw JSON into a typed Command for the given
// operation kind. Validation here covers only decoding; business rules
// (price bounds, balances, lifecycle) are the engine's.
func ParseCommand(op string, data []byte) (*Command, error) {
	var j commandJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse %s: %w", op, err)
	}

	opID, err := uuid.Parse(j.OpID)
	if err != nil {
		return nil, fmt.Errorf("parse %s op_id: %w", op, err)
	}
	caller, err := uuid.Parse(j.Caller)
	if err != nil {
		return nil, fmt.Errorf("parse %s caller: %w", op, err)
	}

	cmd := &Command{
		Op:       op,
		OpID:     opID,
		Caller:   caller,
		MarketID: j.MarketID,
		Price:    j.Price,
		Size:     j.Size,
		Index:    j.Index,
	}

	switch op {
	case OpLimitBuy, OpLimitSell, OpMarketBuy, OpMarketSell, OpResolveMarket, OpClaim:
		if op != OpClaim {
			cmd.Outcome, err = parseOutcome(j.Outcome)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", op, err)
			}
		}
	case OpCancel:
		cmd.Outcome, err = parseOutcome(j.Outcome)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", op, err)
		}
		cmd.Side, err = parseSide(j.Side)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", op, err)
		}
	case OpCreateMarket:
		// No payload beyond caller.
	case OpDeposit:
		amount, err := uint256.FromDecimal(j.Amount)
		if err != nil {
			return nil, fmt.Errorf("parse %s amount: %w", op, err)
		}
		cmd.Amount = amount
	default:
		return nil, fmt.Errorf("unknown operation: %s", op)
	}

	return cmd, nil
}

// EncodeCommand renders a Command back to the wire format, used when
// journaling accepted operations.
func EncodeCommand(cmd *Command) []byte {
	j := commandJSON{
		OpID:     cmd.OpID.String(),
		Caller:   cmd.Caller.String(),
		MarketID: cmd.MarketID,
		Price:    cmd.Price,
		Size:     cmd.Size,
		Outcome:  cmd.Outcome.String(),
		Side:     cmd.Side.String(),
		Index:    cmd.Index,
	}
	if cmd.Amount != nil {
		j.Amount = cmd.Amount.Dec()
	}
	data, err := json.Marshal(j)
	if err != nil {
		panic(fmt.Sprintf("FATAL: encode command %s: %v", cmd.Op, err))
	}
	return data
}

func parseOutcome(s string) (book.Outcome, error) {
	switch s {
	case "yes":
		return book.OutcomeYes, nil
	case "no":
		return book.OutcomeNo, nil
	default:
		return 0, fmt.Errorf("unknown outcome %q", s)
	}
}

func parseSide(s string) (book.Side, error) {
	switch s {
	case "bid":
		return book.SideBid, nil
	case "ask":
		return book.SideAsk, nil
	default:
		return 0, fmt.Errorf("unknown side %q", s)
	}
}
