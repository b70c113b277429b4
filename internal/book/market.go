package book

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
)

// Market holds the full per-market book and share state.
//
// Each outcome has two tick indexes: the unified index contains every tick
// with ANY resting order (bids on the outcome plus inverted asks from the
// opposite outcome), the bid-only index contains ticks with at least one
// resting bid. Market buys scan the opposite outcome's unified index;
// market sells scan the same outcome's bid-only index. The two indexes are
// maintained independently.
type Market struct {
	ID uint64

	unified [2]PriceIndex
	bidOnly [2]PriceIndex
	levels  [2]map[uint16]*PriceLevel
	shares  [2]map[uuid.UUID]uint64

	// TotalCollateral is the collateral backing minted pairs, MULT per
	// pair. Monotone non-decreasing while the market trades.
	TotalCollateral *uint256.Int

	Active   bool
	Resolved bool
	Winner   Outcome
}

// NewMarket creates an active, unresolved market.
func NewMarket(id uint64) *Market {
	return &Market{
		ID: id,
		levels: [2]map[uint16]*PriceLevel{
			make(map[uint16]*PriceLevel),
			make(map[uint16]*PriceLevel),
		},
		shares: [2]map[uuid.UUID]uint64{
			make(map[uuid.UUID]uint64),
			make(map[uuid.UUID]uint64),
		},
		TotalCollateral: uint256.NewInt(0),
		Active:          true,
	}
}

// Unified returns the unified tick index for an outcome.
func (m *Market) Unified(o Outcome) *PriceIndex {
	return &m.unified[o]
}

// BidOnly returns the bid-only tick index for an outcome.
func (m *Market) BidOnly(o Outcome) *PriceIndex {
	return &m.bidOnly[o]
}

// Level returns the level at tick for an outcome, or nil when absent.
func (m *Market) Level(o Outcome, tick uint16) *PriceLevel {
	return m.levels[o][tick]
}

// LevelOrCreate returns the level at tick, allocating it on first use.
func (m *Market) LevelOrCreate(o Outcome, tick uint16) *PriceLevel {
	l := m.levels[o][tick]
	if l == nil {
		l = &PriceLevel{}
		m.levels[o][tick] = l
	}
	return l
}

// Shares returns a participant's share balance for an outcome.
func (m *Market) Shares(o Outcome, p uuid.UUID) uint64 {
	return m.shares[o][p]
}

// CreditShares adds n shares of an outcome to a participant.
func (m *Market) CreditShares(o Outcome, p uuid.UUID, n uint64) {
	m.shares[o][p] += n
}

// DebitShares removes n shares. Callers validate the balance first; an
// underflow here means the engine's share accounting broke.
func (m *Market) DebitShares(o Outcome, p uuid.UUID, n uint64) {
	held := m.shares[o][p]
	if held < n {
		panic(fmt.Sprintf("FATAL: share underflow market=%d outcome=%s participant=%s held=%d debit=%d",
			m.ID, o, p, held, n))
	}
	m.shares[o][p] = held - n
}

// ShareTotals sums balances over all participants for both outcomes.
// Prior to any claim the two totals are equal: shares are only created in
// matched pairs.
func (m *Market) ShareTotals() (yes, no uint64) {
	for _, n := range m.shares[OutcomeYes] {
		yes += n
	}
	for _, n := range m.shares[OutcomeNo] {
		no += n
	}
	return yes, no
}

// SharesSnapshot returns a copy of the share balances for an outcome.
func (m *Market) SharesSnapshot(o Outcome) map[uuid.UUID]uint64 {
	out := make(map[uuid.UUID]uint64, len(m.shares[o]))
	for p, n := range m.shares[o] {
		out[p] = n
	}
	return out
}
