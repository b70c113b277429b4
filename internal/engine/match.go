package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"

	"OutcomeBook/internal/book"
	"OutcomeBook/internal/event"
	"OutcomeBook/internal/num"
)

// A market buy sweeps the opposite outcome's unified index top-down. It
// runs in two phases: a read-only walk that plans every fill and totals
// the taker's cost, then a commit that debits the taker once and applies
// the plan. The single debit is the only fallible ledger call, so a
// rejected operation leaves the book untouched.

type plannedFill struct {
	index   int
	consume uint64
	maker   uuid.UUID
	side    book.Side
	askCost *uint256.Int // transfer path only; the taker pays the ask maker
}

type plannedLevel struct {
	tick         uint16
	cleared      uint64
	fullyCleared bool
	fills        []plannedFill
	mintCount    uint64
	advanceTo    int // new NextOrderIndex, -1 when unchanged
}

// MarketBuy fills up to size shares of outcome against the opposite
// outcome's book, descending the unified index. Resting bids on the
// opposite outcome mint new share pairs; inverted asks transfer existing
// shares. Either way the taker pays (BPS - tick) * MULT / BPS per share.
// Returns the fulfilled size, which may be less than requested.
func (e *Engine) MarketBuy(caller uuid.UUID, marketID uint64, size uint64, outcome book.Outcome) (uint64, error) {
	const op = "market_buy"
	start := time.Now()

	if size == 0 {
		return 0, e.reject(op, ErrInvalidSize)
	}

	ms, err := e.markets.get(marketID)
	if err != nil {
		return 0, e.reject(op, err)
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	m := ms.m
	if err := tradable(m); err != nil {
		return 0, e.reject(op, err)
	}
	opp := outcome.Opposite()

	// Phase 1: plan.
	remaining := size
	totalCost := uint256.NewInt(0)
	var plans []plannedLevel

	upper := uint16(book.BPS)
	for remaining > 0 {
		tick, ok := m.Unified(opp).FindLastSet(upper)
		if !ok {
			break
		}
		lvl := m.Level(opp, tick)
		if lvl == nil {
			panic(fmt.Sprintf("FATAL: unified index set at tick %d with no level (market=%d outcome=%s)",
				tick, marketID, opp))
		}

		price := uint16(book.BPS) - tick
		p := plannedLevel{tick: tick, advanceTo: -1}
		p.cleared = min(remaining, lvl.TotalSize)
		p.fullyCleared = lvl.TotalSize == p.cleared

		for i := lvl.NextOrderIndex; i < len(lvl.Orders); i++ {
			o := lvl.Orders[i]
			if o.Size == 0 {
				continue
			}
			c := min(o.Size, remaining)
			f := plannedFill{index: i, consume: c, maker: o.Maker, side: o.Side}
			if o.Side == book.SideBid {
				// Mint path: the maker's collateral is already escrowed at
				// tick price; the taker's share accumulates per tick.
				p.mintCount += c
			} else {
				f.askCost = num.Cost(c, price, e.mult)
				totalCost.Add(totalCost, f.askCost)
			}
			p.fills = append(p.fills, f)
			remaining -= c
			if remaining == 0 {
				break
			}
			// The head is provably consumed only here, with demand left over.
			p.advanceTo = i + 1
		}

		if p.mintCount > 0 {
			// One truncating division per tick, not per order.
			totalCost.Add(totalCost, num.Cost(p.mintCount, price, e.mult))
		}
		plans = append(plans, p)
		upper = tick
	}

	fulfilled := size - remaining

	// Phase 2: commit. The taker settles the whole sweep in one debit.
	if !totalCost.IsZero() {
		if err := e.ledger.Debit(caller, totalCost); err != nil {
			return 0, e.reject(op, err)
		}
	}

	for pi := range plans {
		p := &plans[pi]
		lvl := m.Level(opp, p.tick)
		lvl.TotalSize -= p.cleared

		if p.fullyCleared {
			m.Unified(opp).Unset(p.tick)
			m.BidOnly(opp).Unset(p.tick)
			e.sink.Publish(&event.PriceLevelCleared{
				MarketID: marketID,
				Price:    p.tick,
				Outcome:  opp,
			})
			if e.metrics != nil {
				e.metrics.LevelsCleared.Inc()
			}
		}

		for _, f := range p.fills {
			lvl.Order(f.index).Size -= f.consume
			id := book.ComputeOrderID(marketID, p.tick, uint64(f.index))

			if f.side == book.SideBid {
				m.CreditShares(opp, f.maker, f.consume)
			} else {
				// Transfer path: the ask maker receives the proceeds the
				// taker just escrowed.
				e.ledger.Credit(f.maker, f.askCost)
			}

			e.sink.Publish(&event.OrderFilled{
				MarketID: marketID,
				Maker:    f.maker,
				OrderID:  id,
				Size:     f.consume,
				Taker:    caller,
			})
			if f.side == book.SideBid {
				e.sink.Publish(&event.SharesTransferred{
					MarketID: marketID,
					To:       f.maker,
					Amount:   f.consume,
					Outcome:  opp,
				})
			}
			if e.metrics != nil {
				e.metrics.FillsTotal.Inc()
			}
		}

		if p.advanceTo > lvl.NextOrderIndex {
			lvl.NextOrderIndex = p.advanceTo
		}
		if p.mintCount > 0 {
			// Each minted pair is backed by exactly MULT escrowed units
			// regardless of the mint price.
			m.TotalCollateral.Add(m.TotalCollateral, num.Payout(p.mintCount, e.mult))
			if e.metrics != nil {
				e.metrics.SharesMinted.Add(float64(p.mintCount))
			}
		}
	}

	if fulfilled > 0 {
		m.CreditShares(outcome, caller, fulfilled)
		e.sink.Publish(&event.MarketOrderExecuted{
			MarketID:  marketID,
			Taker:     caller,
			Fulfilled: fulfilled,
			Outcome:   outcome,
			Side:      book.SideBid,
		})
		e.sink.Publish(&event.SharesTransferred{
			MarketID: marketID,
			To:       caller,
			Amount:   fulfilled,
			Outcome:  outcome,
		})
	}

	e.log.Debug().
		Uint64("market", marketID).
		Str("taker", caller.String()).
		Uint64("requested", size).
		Uint64("fulfilled", fulfilled).
		Str("outcome", outcome.String()).
		Msg("market buy executed")

	e.accept(op, start)
	return fulfilled, nil
}

// MarketSell transfers up to size existing shares of outcome to resting
// same-outcome bids, descending the bid-only index. Asks interleaved in
// a level are skipped, never consumed: a market sell moves shares, it
// does not unwind asks. Every ledger call in the loop is an infallible
// escrow credit, so no plan phase is needed.
func (e *Engine) MarketSell(caller uuid.UUID, marketID uint64, size uint64, outcome book.Outcome) (uint64, error) {
	const op = "market_sell"
	start := time.Now()

	if size == 0 {
		return 0, e.reject(op, ErrInvalidSize)
	}

	ms, err := e.markets.get(marketID)
	if err != nil {
		return 0, e.reject(op, err)
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	m := ms.m
	if err := tradable(m); err != nil {
		return 0, e.reject(op, err)
	}
	if m.Shares(outcome, caller) < size {
		return 0, e.reject(op, fmt.Errorf("market sell of %d: %w", size, ErrInsufficientShares))
	}

	taker := caller
	remaining := size
	var fulfilled uint64

	for remaining > 0 {
		tick, ok := m.BidOnly(outcome).FindLastSet(book.BPS)
		if !ok {
			break
		}
		lvl := m.Level(outcome, tick)
		if lvl == nil {
			panic(fmt.Sprintf("FATAL: bid-only index set at tick %d with no level (market=%d outcome=%s)",
				tick, marketID, outcome))
		}

		sawAsk := false
		for i := lvl.NextOrderIndex; i < len(lvl.Orders); i++ {
			o := &lvl.Orders[i]
			if o.Size == 0 {
				continue
			}
			if o.Side == book.SideAsk {
				sawAsk = true
				continue
			}

			c := min(o.Size, remaining)
			o.Size -= c
			lvl.TotalSize -= c
			e.ledger.Credit(caller, num.Cost(c, tick, e.mult))
			m.CreditShares(outcome, o.Maker, c)
			remaining -= c
			fulfilled += c

			e.sink.Publish(&event.OrderFilled{
				MarketID: marketID,
				Maker:    o.Maker,
				OrderID:  book.ComputeOrderID(marketID, tick, uint64(i)),
				Size:     c,
				Taker:    caller,
			})
			e.sink.Publish(&event.SharesTransferred{
				MarketID: marketID,
				From:     &taker,
				To:       o.Maker,
				Amount:   c,
				Outcome:  outcome,
			})
			if e.metrics != nil {
				e.metrics.FillsTotal.Inc()
			}

			if remaining == 0 {
				break
			}
			// Lazy head: never advance past a still-resting ask. The ask
			// will be re-scanned by the next call; market buys remain able
			// to consume it.
			if !sawAsk {
				lvl.NextOrderIndex = i + 1
			}
		}

		if remaining == 0 {
			// Demand satisfied mid-level: a residual bid may still rest
			// here, so the tick stays set.
			break
		}

		// Bids at this level are exhausted: drop the bid-only tick even
		// when residual asks keep TotalSize above zero, or an ask-only
		// level would be re-entered forever. The unified tick stays set —
		// those asks are still matchable by market buys.
		m.BidOnly(outcome).Unset(tick)
	}

	if fulfilled > 0 {
		m.DebitShares(outcome, caller, fulfilled)
		e.sink.Publish(&event.MarketOrderExecuted{
			MarketID:  marketID,
			Taker:     caller,
			Fulfilled: fulfilled,
			Outcome:   outcome,
			Side:      book.SideAsk,
		})
	}

	e.log.Debug().
		Uint64("market", marketID).
		Str("taker", caller.String()).
		Uint64("requested", size).
		Uint64("fulfilled", fulfilled).
		Str("outcome", outcome.String()).
		Msg("market sell executed")

	e.accept(op, start)
	return fulfilled, nil
}
