package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"OutcomeBook/internal/book"
	"OutcomeBook/internal/event"
	"OutcomeBook/internal/num"
)

// CreateMarket allocates the next market ID and opens it for trading.
// Admin-only.
func (e *Engine) CreateMarket(caller uuid.UUID) (uint64, error) {
	const op = "create_market"
	start := time.Now()

	if err := e.admin.RequireAdmin(caller); err != nil {
		return 0, e.reject(op, err)
	}

	ms := e.markets.create()
	id := ms.m.ID

	e.sink.Publish(&event.MarketCreated{MarketID: id})
	if e.metrics != nil {
		e.metrics.MarketsOpen.Inc()
	}

	e.log.Info().
		Uint64("market", id).
		Str("admin", caller.String()).
		Msg("market created")

	e.accept(op, start)
	return id, nil
}

// ResolveMarket records the final outcome. Resting orders are neither
// refunded nor matched; their collateral stays in escrow behind winning
// claims. Resolution happens exactly once.
func (e *Engine) ResolveMarket(caller uuid.UUID, marketID uint64, outcome book.Outcome) error {
	const op = "resolve_market"
	start := time.Now()

	if err := e.admin.RequireAdmin(caller); err != nil {
		return e.reject(op, err)
	}

	ms, err := e.markets.get(marketID)
	if err != nil {
		return e.reject(op, err)
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	m := ms.m
	if !m.Active {
		return e.reject(op, ErrMarketNotActive)
	}
	if m.Resolved {
		return e.reject(op, ErrMarketAlreadyResolved)
	}

	m.Resolved = true
	m.Winner = outcome

	e.sink.Publish(&event.MarketResolved{MarketID: marketID, Outcome: outcome})
	if e.metrics != nil {
		e.metrics.MarketsOpen.Dec()
	}

	e.log.Info().
		Uint64("market", marketID).
		Str("admin", caller.String()).
		Str("outcome", outcome.String()).
		Msg("market resolved")

	e.accept(op, start)
	return nil
}

// Claim pays the caller MULT collateral units per winning share and
// burns the shares. Losing-side balances are untouched. Fails when the
// caller holds no winning shares.
func (e *Engine) Claim(caller uuid.UUID, marketID uint64) (uint64, error) {
	const op = "claim"
	start := time.Now()

	ms, err := e.markets.get(marketID)
	if err != nil {
		return 0, e.reject(op, err)
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	m := ms.m
	if !m.Active {
		return 0, e.reject(op, ErrMarketNotActive)
	}
	if !m.Resolved {
		return 0, e.reject(op, ErrMarketNotResolved)
	}

	shares := m.Shares(m.Winner, caller)
	if shares == 0 {
		return 0, e.reject(op, fmt.Errorf("claim on market %d: %w", marketID, ErrInsufficientShares))
	}

	m.DebitShares(m.Winner, caller, shares)
	e.ledger.Credit(caller, num.Payout(shares, e.mult))

	e.sink.Publish(&event.RewardsClaimed{
		MarketID: marketID,
		User:     caller,
		Shares:   shares,
	})
	if e.metrics != nil {
		e.metrics.SharesClaimed.Add(float64(shares))
	}

	e.log.Info().
		Uint64("market", marketID).
		Str("user", caller.String()).
		Uint64("shares", shares).
		Msg("rewards claimed")

	e.accept(op, start)
	return shares, nil
}
