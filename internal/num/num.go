package num

import (
	"github.com/holiman/uint256"

	"OutcomeBook/internal/book"
)

// Collateral amounts are 256-bit: size * price * MULT does not fit 64 bits
// for large sizes, and truncation must happen only at the final division
// by BPS.

// Mult returns 10^decimals, the collateral units paid per winning share.
func Mult(decimals uint8) *uint256.Int {
	m := uint256.NewInt(1)
	ten := uint256.NewInt(10)
	for i := uint8(0); i < decimals; i++ {
		m.Mul(m, ten)
	}
	return m
}

// Cost returns size * price * mult / BPS with truncating division.
// Dust from a product not divisible by BPS stays in escrow.
func Cost(size uint64, price uint16, mult *uint256.Int) *uint256.Int {
	v := new(uint256.Int).SetUint64(size)
	v.Mul(v, uint256.NewInt(uint64(price)))
	v.Mul(v, mult)
	return v.Div(v, uint256.NewInt(book.BPS))
}

// Payout returns shares * mult, the claim value of winning shares.
func Payout(shares uint64, mult *uint256.Int) *uint256.Int {
	v := new(uint256.Int).SetUint64(shares)
	return v.Mul(v, mult)
}
