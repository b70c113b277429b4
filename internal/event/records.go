package event

import (
	"github.com/google/uuid"

	"OutcomeBook/internal/book"
)

// Type discriminates audit records.
type Type int32

const (
	TypeUnknown Type = iota
	TypeMarketCreated
	TypeMarketResolved
	TypeLimitOrderPlaced
	TypeMarketOrderExecuted
	TypeOrderFilled
	TypePriceLevelCleared
	TypeSharesTransferred
	TypeOrderCancelled
	TypeRewardsClaimed
)

func (t Type) String() string {
	switch t {
	case TypeMarketCreated:
		return "MarketCreated"
	case TypeMarketResolved:
		return "MarketResolved"
	case TypeLimitOrderPlaced:
		return "LimitOrderPlaced"
	case TypeMarketOrderExecuted:
		return "MarketOrderExecuted"
	case TypeOrderFilled:
		return "OrderFilled"
	case TypePriceLevelCleared:
		return "PriceLevelCleared"
	case TypeSharesTransferred:
		return "SharesTransferred"
	case TypeOrderCancelled:
		return "OrderCancelled"
	case TypeRewardsClaimed:
		return "RewardsClaimed"
	default:
		return "Unknown"
	}
}

// Record is an audit record emitted by the engine. Every record carries
// the market it belongs to.
type Record interface {
	Type() Type
	Market() uint64
}

// MarketCreated announces a new market ID.
type MarketCreated struct {
	MarketID uint64
}

func (e *MarketCreated) Type() Type     { return TypeMarketCreated }
func (e *MarketCreated) Market() uint64 { return e.MarketID }

// MarketResolved records the admin's final outcome for a market.
type MarketResolved struct {
	MarketID uint64
	Outcome  book.Outcome
}

func (e *MarketResolved) Type() Type     { return TypeMarketResolved }
func (e *MarketResolved) Market() uint64 { return e.MarketID }

// LimitOrderPlaced records a maker order resting on the book. Price is
// the price the maker quoted, not the internal storage tick.
type LimitOrderPlaced struct {
	MarketID uint64
	Maker    uuid.UUID
	OrderID  book.OrderID
	Price    uint16
	Size     uint64
	Outcome  book.Outcome
	Side     book.Side
}

func (e *LimitOrderPlaced) Type() Type     { return TypeLimitOrderPlaced }
func (e *LimitOrderPlaced) Market() uint64 { return e.MarketID }

// MarketOrderExecuted summarizes a taker sweep. Side is Bid for a market
// buy and Ask for a market sell.
type MarketOrderExecuted struct {
	MarketID  uint64
	Taker     uuid.UUID
	Fulfilled uint64
	Outcome   book.Outcome
	Side      book.Side
}

func (e *MarketOrderExecuted) Type() Type     { return TypeMarketOrderExecuted }
func (e *MarketOrderExecuted) Market() uint64 { return e.MarketID }

// OrderFilled records size consumed from one resting order.
type OrderFilled struct {
	MarketID uint64
	Maker    uuid.UUID
	OrderID  book.OrderID
	Size     uint64
	Taker    uuid.UUID
}

func (e *OrderFilled) Type() Type     { return TypeOrderFilled }
func (e *OrderFilled) Market() uint64 { return e.MarketID }

// PriceLevelCleared records a level's total size reaching zero during a
// market buy sweep. Price is the internal tick of the cleared level.
type PriceLevelCleared struct {
	MarketID uint64
	Price    uint16
	Outcome  book.Outcome
}

func (e *PriceLevelCleared) Type() Type     { return TypePriceLevelCleared }
func (e *PriceLevelCleared) Market() uint64 { return e.MarketID }

// SharesTransferred records share movement. From is nil for shares a
// market buy credits: a bid maker's freshly minted shares and the taker's
// aggregate credit, which also covers shares bought from asks. From is
// the seller for a market sell's per-fill transfers.
type SharesTransferred struct {
	MarketID uint64
	From     *uuid.UUID
	To       uuid.UUID
	Amount   uint64
	Outcome  book.Outcome
}

func (e *SharesTransferred) Type() Type     { return TypeSharesTransferred }
func (e *SharesTransferred) Market() uint64 { return e.MarketID }

// OrderCancelled records a maker cancelling the residual of their order.
type OrderCancelled struct {
	MarketID uint64
	Maker    uuid.UUID
	OrderID  book.OrderID
}

func (e *OrderCancelled) Type() Type     { return TypeOrderCancelled }
func (e *OrderCancelled) Market() uint64 { return e.MarketID }

// RewardsClaimed records a winning-share payout. Shares is the number of
// shares burned; the collateral paid is Shares * MULT.
type RewardsClaimed struct {
	MarketID uint64
	User     uuid.UUID
	Shares   uint64
}

func (e *RewardsClaimed) Type() Type     { return TypeRewardsClaimed }
func (e *RewardsClaimed) Market() uint64 { return e.MarketID }
