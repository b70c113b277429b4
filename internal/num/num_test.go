package num_test

import (
	"testing"

	"github.com/holiman/uint256"

	"OutcomeBook/internal/num"
)

func TestMult(t *testing.T) {
	if got := num.Mult(0); !got.Eq(uint256.NewInt(1)) {
		t.Errorf("Mult(0): got %s, want 1", got)
	}
	if got := num.Mult(6); !got.Eq(uint256.NewInt(1_000_000)) {
		t.Errorf("Mult(6): got %s, want 1000000", got)
	}
	want := uint256.MustFromDecimal("1000000000000000000")
	if got := num.Mult(18); !got.Eq(want) {
		t.Errorf("Mult(18): got %s, want %s", got, want)
	}
}

func TestCost(t *testing.T) {
	mult := num.Mult(18)

	// 100 shares at 400 bps: 100 * 400 * 1e18 / 1000 = 40e18
	want := uint256.MustFromDecimal("40000000000000000000")
	if got := num.Cost(100, 400, mult); !got.Eq(want) {
		t.Errorf("Cost(100, 400): got %s, want %s", got, want)
	}
}

func TestCost_TruncatesTowardZero(t *testing.T) {
	// 7 * 3 * 1 = 21; 21 / 1000 truncates to 0.
	if got := num.Cost(7, 3, num.Mult(0)); !got.IsZero() {
		t.Errorf("got %s, want 0", got)
	}

	// 3 * 500 * 10 = 15000; 15000 / 1000 = 15 exactly.
	if got := num.Cost(3, 500, num.Mult(1)); !got.Eq(uint256.NewInt(15)) {
		t.Errorf("got %s, want 15", got)
	}

	// 1 * 999 * 10 = 9990; 9990 / 1000 truncates to 9.
	if got := num.Cost(1, 999, num.Mult(1)); !got.Eq(uint256.NewInt(9)) {
		t.Errorf("got %s, want 9", got)
	}
}

func TestCost_LargeSizeNoOverflow(t *testing.T) {
	mult := num.Mult(18)

	// max uint64 size * 999 * 1e18 overflows 64 and 128 bits; the result
	// must still be exact.
	size := ^uint64(0)
	got := num.Cost(size, 999, mult)

	want := new(uint256.Int).SetUint64(size)
	want.Mul(want, uint256.NewInt(999))
	want.Mul(want, mult)
	want.Div(want, uint256.NewInt(1000))
	if !got.Eq(want) {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestPayout(t *testing.T) {
	mult := num.Mult(18)
	want := uint256.MustFromDecimal("100000000000000000000")
	if got := num.Payout(100, mult); !got.Eq(want) {
		t.Errorf("Payout(100): got %s, want %s", got, want)
	}
}
