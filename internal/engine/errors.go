package engine

import (
	"errors"

	"OutcomeBook/internal/auth"
	"OutcomeBook/internal/ledger"
)

// Typed error kinds. Every check runs before any balance or book
// mutation, so a rejected operation has exactly zero side effects.
var (
	ErrInvalidPrice          = errors.New("invalid price")
	ErrPriceTooHigh          = errors.New("price exceeds book range")
	ErrInvalidSize           = errors.New("invalid size")
	ErrMarketNotActive       = errors.New("market not active")
	ErrMarketAlreadyResolved = errors.New("market already resolved")
	ErrMarketNotResolved     = errors.New("market not resolved")
	ErrInsufficientShares    = errors.New("insufficient shares")
	ErrOrderNotFound         = errors.New("order not found")

	// ErrUnauthorized covers non-owner cancels and non-admin
	// create/resolve calls.
	ErrUnauthorized = auth.ErrUnauthorized
)

// reasonLabel maps an error to a low-cardinality metrics label.
func reasonLabel(err error) string {
	switch {
	case errors.Is(err, ErrInvalidPrice):
		return "invalid_price"
	case errors.Is(err, ErrPriceTooHigh):
		return "price_too_high"
	case errors.Is(err, ErrInvalidSize):
		return "invalid_size"
	case errors.Is(err, ErrMarketNotActive):
		return "market_not_active"
	case errors.Is(err, ErrMarketAlreadyResolved):
		return "market_already_resolved"
	case errors.Is(err, ErrMarketNotResolved):
		return "market_not_resolved"
	case errors.Is(err, ErrInsufficientShares):
		return "insufficient_shares"
	case errors.Is(err, ErrOrderNotFound):
		return "order_not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ledger.ErrInsufficientCollateral):
		return "insufficient_collateral"
	default:
		return "other"
	}
}
