package book

import (
	"github.com/google/uuid"
)

// BPS is the basis-points denominator for prices. Valid ticks are [1, BPS-1].
const BPS = 1000

// Outcome is one of the two complementary settlements of a binary market.
type Outcome uint8

const (
	OutcomeYes Outcome = iota
	OutcomeNo
)

// Opposite returns the complementary outcome.
func (o Outcome) Opposite() Outcome {
	if o == OutcomeYes {
		return OutcomeNo
	}
	return OutcomeYes
}

func (o Outcome) String() string {
	if o == OutcomeYes {
		return "yes"
	}
	return "no"
}

// MarshalText renders the outcome for JSON payloads.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Side is the resting order's direction. A bid buys shares at its tick;
// an ask sells shares and is stored inverted on the opposite outcome.
type Side uint8

const (
	SideBid Side = iota
	SideAsk
)

func (s Side) String() string {
	if s == SideBid {
		return "bid"
	}
	return "ask"
}

// MarshalText renders the side for JSON payloads.
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// LimitOrder is a resting order inside a price level's FIFO queue.
// A Size of 0 means cancelled or fully consumed; such entries are skipped
// during matching but never removed, so FIFO indexes stay stable.
type LimitOrder struct {
	Maker uuid.UUID
	Size  uint64
	Side  Side
}
