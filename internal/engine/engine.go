package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	"OutcomeBook/internal/auth"
	"OutcomeBook/internal/book"
	"OutcomeBook/internal/event"
	"OutcomeBook/internal/ledger"
	"OutcomeBook/internal/num"
	"OutcomeBook/internal/observability"
)

// Engine is the matching engine over all markets. Each mutating
// operation executes atomically under the owning market's mutex: all
// balance moves, ledger calls, and audit records of one operation are
// serialized against every other operation on that market.
type Engine struct {
	markets *registry

	ledger  ledger.CollateralLedger
	sink    event.Sink
	admin   auth.AdminAuthority
	mult    *uint256.Int

	log     zerolog.Logger
	metrics *observability.Metrics
}

// New builds an engine. collateralDecimals fixes MULT = 10^decimals for
// the engine's lifetime; one winning share pays exactly MULT collateral
// units. metrics may be nil.
func New(
	led ledger.CollateralLedger,
	sink event.Sink,
	admin auth.AdminAuthority,
	collateralDecimals uint8,
	log zerolog.Logger,
	metrics *observability.Metrics,
) *Engine {
	return &Engine{
		markets: newRegistry(),
		ledger:  led,
		sink:    sink,
		admin:   admin,
		mult:    num.Mult(collateralDecimals),
		log:     log,
		metrics: metrics,
	}
}

// Mult returns a copy of the collateral unit multiplier.
func (e *Engine) Mult() *uint256.Int {
	return new(uint256.Int).Set(e.mult)
}

// LimitBuy rests a bid for size shares of outcome at price. The bid's
// collateral, size * price * MULT / BPS, is debited to escrow up front.
// Limit orders never cross the book: a crossable bid simply rests and is
// swept by a later market order.
func (e *Engine) LimitBuy(caller uuid.UUID, marketID uint64, price uint16, size uint64, outcome book.Outcome) (book.OrderID, error) {
	const op = "limit_buy"
	start := time.Now()

	if err := validatePrice(price); err != nil {
		return book.OrderID{}, e.reject(op, err)
	}
	if size == 0 {
		return book.OrderID{}, e.reject(op, ErrInvalidSize)
	}

	ms, err := e.markets.get(marketID)
	if err != nil {
		return book.OrderID{}, e.reject(op, err)
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	m := ms.m
	if err := tradable(m); err != nil {
		return book.OrderID{}, e.reject(op, err)
	}

	cost := num.Cost(size, price, e.mult)
	if err := e.ledger.Debit(caller, cost); err != nil {
		return book.OrderID{}, e.reject(op, err)
	}

	lvl := m.LevelOrCreate(outcome, price)
	index := lvl.Append(book.LimitOrder{Maker: caller, Size: size, Side: book.SideBid})
	m.Unified(outcome).Set(price)
	m.BidOnly(outcome).Set(price)

	id := book.ComputeOrderID(marketID, price, uint64(index))
	e.sink.Publish(&event.LimitOrderPlaced{
		MarketID: marketID,
		Maker:    caller,
		OrderID:  id,
		Price:    price,
		Size:     size,
		Outcome:  outcome,
		Side:     book.SideBid,
	})

	e.log.Debug().
		Uint64("market", marketID).
		Str("maker", caller.String()).
		Uint16("price", price).
		Uint64("size", size).
		Str("outcome", outcome.String()).
		Msg("limit buy rested")

	e.accept(op, start)
	return id, nil
}

// LimitSell rests an ask for size shares of outcome at price. The shares
// are escrowed (the caller's balance drops immediately); the order is
// stored inverted at tick BPS - price on the OPPOSITE outcome, where a
// market buyer of that outcome scanning its unified index finds it
// ranked with the bids it competes against. Only the unified tick is
// set: asks are invisible to market sells.
func (e *Engine) LimitSell(caller uuid.UUID, marketID uint64, price uint16, size uint64, outcome book.Outcome) (book.OrderID, error) {
	const op = "limit_sell"
	start := time.Now()

	if err := validatePrice(price); err != nil {
		return book.OrderID{}, e.reject(op, err)
	}
	if size == 0 {
		return book.OrderID{}, e.reject(op, ErrInvalidSize)
	}

	ms, err := e.markets.get(marketID)
	if err != nil {
		return book.OrderID{}, e.reject(op, err)
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	m := ms.m
	if err := tradable(m); err != nil {
		return book.OrderID{}, e.reject(op, err)
	}
	if m.Shares(outcome, caller) < size {
		return book.OrderID{}, e.reject(op, fmt.Errorf("limit sell of %d: %w", size, ErrInsufficientShares))
	}

	m.DebitShares(outcome, caller, size)

	tick := uint16(book.BPS - price)
	opp := outcome.Opposite()
	lvl := m.LevelOrCreate(opp, tick)
	index := lvl.Append(book.LimitOrder{Maker: caller, Size: size, Side: book.SideAsk})
	m.Unified(opp).Set(tick)

	id := book.ComputeOrderID(marketID, tick, uint64(index))
	e.sink.Publish(&event.LimitOrderPlaced{
		MarketID: marketID,
		Maker:    caller,
		OrderID:  id,
		Price:    price,
		Size:     size,
		Outcome:  outcome,
		Side:     book.SideAsk,
	})

	e.log.Debug().
		Uint64("market", marketID).
		Str("maker", caller.String()).
		Uint16("price", price).
		Uint16("tick", tick).
		Uint64("size", size).
		Str("outcome", outcome.String()).
		Msg("limit sell rested")

	e.accept(op, start)
	return id, nil
}

// Cancel zeroes the residual of the caller's resting order and returns
// its escrow: bid collateral for bids, shares for asks. The (price,
// outcome) pair is given in the caller's natural frame — the price they
// quoted — and ask cancels are mapped to the inverted tick on the
// opposite outcome internally. The FIFO slot stays in place with size 0
// so later indexes remain stable.
func (e *Engine) Cancel(caller uuid.UUID, marketID uint64, price uint16, index int, side book.Side, outcome book.Outcome) error {
	const op = "cancel"
	start := time.Now()

	if err := validatePrice(price); err != nil {
		return e.reject(op, err)
	}

	ms, err := e.markets.get(marketID)
	if err != nil {
		return e.reject(op, err)
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	m := ms.m
	if err := tradable(m); err != nil {
		return e.reject(op, err)
	}

	// Map to the storage frame.
	storeOutcome := outcome
	tick := price
	if side == book.SideAsk {
		storeOutcome = outcome.Opposite()
		tick = uint16(book.BPS - price)
	}

	lvl := m.Level(storeOutcome, tick)
	if lvl == nil {
		return e.reject(op, ErrOrderNotFound)
	}
	order := lvl.Order(index)
	if order == nil || order.Side != side {
		return e.reject(op, ErrOrderNotFound)
	}
	if order.Maker != caller {
		return e.reject(op, fmt.Errorf("cancel by %s: %w", caller, ErrUnauthorized))
	}

	// Refund the CURRENT size: a partially filled order is cancellable
	// only for its residual.
	size := order.Size
	order.Size = 0
	lvl.TotalSize -= size

	if side == book.SideBid {
		e.ledger.Credit(caller, num.Cost(size, price, e.mult))
	} else {
		m.CreditShares(outcome, caller, size)
	}

	if lvl.TotalSize == 0 {
		m.Unified(storeOutcome).Unset(tick)
		m.BidOnly(storeOutcome).Unset(tick)
	}

	e.sink.Publish(&event.OrderCancelled{
		MarketID: marketID,
		Maker:    caller,
		OrderID:  book.ComputeOrderID(marketID, tick, uint64(index)),
	})

	e.log.Debug().
		Uint64("market", marketID).
		Str("maker", caller.String()).
		Uint16("price", price).
		Int("index", index).
		Uint64("refund_size", size).
		Msg("order cancelled")

	e.accept(op, start)
	return nil
}

// --- shared guards ---

func validatePrice(price uint16) error {
	if price == 0 {
		return ErrInvalidPrice
	}
	if price >= book.BPS {
		return ErrPriceTooHigh
	}
	return nil
}

func tradable(m *book.Market) error {
	if !m.Active {
		return ErrMarketNotActive
	}
	if m.Resolved {
		return ErrMarketAlreadyResolved
	}
	return nil
}

// --- metrics helpers ---

func (e *Engine) accept(op string, start time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.OpsAccepted.WithLabelValues(op).Inc()
	e.metrics.OpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (e *Engine) reject(op string, err error) error {
	if e.metrics != nil {
		e.metrics.OpsRejected.WithLabelValues(op, reasonLabel(err)).Inc()
	}
	return err
}
