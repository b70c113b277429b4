package engine

import (
	"sync"

	"github.com/google/uuid"
	"github.com/holiman/uint256"

	"OutcomeBook/internal/book"
)

// marketState pairs a market with the mutex that serializes every
// mutating operation on it.
type marketState struct {
	mu sync.Mutex
	m  *book.Market
}

// registry owns all markets, indexed by the monotonically increasing
// market ID assigned at creation. Markets are never removed.
type registry struct {
	mu      sync.RWMutex
	markets []*marketState
}

func newRegistry() *registry {
	return &registry{}
}

// get returns the market's state. Operations on a never-created market
// fail the same way as on an inactive one.
func (r *registry) get(id uint64) (*marketState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id >= uint64(len(r.markets)) {
		return nil, ErrMarketNotActive
	}
	return r.markets[id], nil
}

// create allocates the next market ID.
func (r *registry) create() *marketState {
	r.mu.Lock()
	defer r.mu.Unlock()
	ms := &marketState{m: book.NewMarket(uint64(len(r.markets)))}
	r.markets = append(r.markets, ms)
	return ms
}

func (r *registry) count() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return uint64(len(r.markets))
}

// --- read-only views ---

// MarketInfo is a committed-state snapshot of one market's lifecycle and
// collateral.
type MarketInfo struct {
	ID              uint64
	Active          bool
	Resolved        bool
	Winner          book.Outcome
	TotalCollateral *uint256.Int
}

// TickDepth is the aggregate resting size at one tick.
type TickDepth struct {
	Tick      uint16
	TotalSize uint64
}

// MarketCount returns the number of created markets.
func (e *Engine) MarketCount() uint64 {
	return e.markets.count()
}

// Info snapshots a market's lifecycle state.
func (e *Engine) Info(marketID uint64) (MarketInfo, error) {
	ms, err := e.markets.get(marketID)
	if err != nil {
		return MarketInfo{}, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return MarketInfo{
		ID:              ms.m.ID,
		Active:          ms.m.Active,
		Resolved:        ms.m.Resolved,
		Winner:          ms.m.Winner,
		TotalCollateral: new(uint256.Int).Set(ms.m.TotalCollateral),
	}, nil
}

// ShareBalance returns a participant's holdings of one outcome.
func (e *Engine) ShareBalance(marketID uint64, outcome book.Outcome, p uuid.UUID) (uint64, error) {
	ms, err := e.markets.get(marketID)
	if err != nil {
		return 0, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.m.Shares(outcome, p), nil
}

// Depth walks an outcome's unified index from the top and returns the
// occupied ticks with their aggregate sizes, best first.
func (e *Engine) Depth(marketID uint64, outcome book.Outcome) ([]TickDepth, error) {
	ms, err := e.markets.get(marketID)
	if err != nil {
		return nil, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	var out []TickDepth
	upper := uint16(book.BPS)
	for {
		tick, ok := ms.m.Unified(outcome).FindLastSet(upper)
		if !ok {
			return out, nil
		}
		if lvl := ms.m.Level(outcome, tick); lvl != nil {
			out = append(out, TickDepth{Tick: tick, TotalSize: lvl.TotalSize})
		}
		upper = tick
	}
}
