package query

import (
	"github.com/google/uuid"

	"OutcomeBook/internal/book"
	"OutcomeBook/internal/engine"
	"OutcomeBook/internal/ledger"
)

// Service answers read-only queries over committed engine state. Every
// read takes the owning market's lock, so callers observe whole
// operations, never a partial match.
type Service struct {
	eng *engine.Engine
	led *ledger.MemoryLedger
}

func NewService(eng *engine.Engine, led *ledger.MemoryLedger) *Service {
	return &Service{eng: eng, led: led}
}

// MarketStatus is the lifecycle view of one market.
type MarketStatus struct {
	ID              uint64 `json:"id"`
	Active          bool   `json:"active"`
	Resolved        bool   `json:"resolved"`
	Winner          string `json:"winner,omitempty"`
	TotalCollateral string `json:"total_collateral"`
}

// DepthLevel is one occupied tick of a book side.
type DepthLevel struct {
	Tick      uint16 `json:"tick"`
	TotalSize uint64 `json:"total_size"`
}

// BookDepth lists an outcome's occupied ticks, best first.
type BookDepth struct {
	MarketID uint64       `json:"market_id"`
	Outcome  string       `json:"outcome"`
	Levels   []DepthLevel `json:"levels"`
}

// ShareBalance is a participant's holdings of one outcome.
type ShareBalance struct {
	MarketID    uint64 `json:"market_id"`
	Outcome     string `json:"outcome"`
	Participant string `json:"participant"`
	Shares      uint64 `json:"shares"`
}

// CollateralBalance is a participant's spendable collateral.
type CollateralBalance struct {
	Participant string `json:"participant"`
	Balance     string `json:"balance"`
}

func (s *Service) MarketStatus(marketID uint64) (MarketStatus, error) {
	info, err := s.eng.Info(marketID)
	if err != nil {
		return MarketStatus{}, err
	}
	status := MarketStatus{
		ID:              info.ID,
		Active:          info.Active,
		Resolved:        info.Resolved,
		TotalCollateral: info.TotalCollateral.Dec(),
	}
	if info.Resolved {
		status.Winner = info.Winner.String()
	}
	return status, nil
}

func (s *Service) Depth(marketID uint64, outcome book.Outcome) (BookDepth, error) {
	ticks, err := s.eng.Depth(marketID, outcome)
	if err != nil {
		return BookDepth{}, err
	}
	depth := BookDepth{
		MarketID: marketID,
		Outcome:  outcome.String(),
		Levels:   make([]DepthLevel, 0, len(ticks)),
	}
	for _, t := range ticks {
		depth.Levels = append(depth.Levels, DepthLevel{Tick: t.Tick, TotalSize: t.TotalSize})
	}
	return depth, nil
}

func (s *Service) ShareBalance(marketID uint64, outcome book.Outcome, p uuid.UUID) (ShareBalance, error) {
	shares, err := s.eng.ShareBalance(marketID, outcome, p)
	if err != nil {
		return ShareBalance{}, err
	}
	return ShareBalance{
		MarketID:    marketID,
		Outcome:     outcome.String(),
		Participant: p.String(),
		Shares:      shares,
	}, nil
}

// CollateralBalance reads the participant's spendable balance. Only
// available when the service fronts the in-process ledger.
func (s *Service) CollateralBalance(p uuid.UUID) (CollateralBalance, bool) {
	if s.led == nil {
		return CollateralBalance{}, false
	}
	return CollateralBalance{
		Participant: p.String(),
		Balance:     s.led.Balance(p).Dec(),
	}, true
}
