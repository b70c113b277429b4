package ledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
)

// ErrInsufficientCollateral is returned when a debit exceeds the
// participant's spendable balance.
var ErrInsufficientCollateral = errors.New("insufficient collateral")

// CollateralLedger moves collateral between participant accounts and the
// engine's escrow pool. Calls are synchronous: a failed debit leaves both
// sides untouched, so the engine can fail an operation before mutating
// any book state.
type CollateralLedger interface {
	// Debit moves amount from a participant's spendable balance into
	// escrow. Fails with ErrInsufficientCollateral when underfunded.
	Debit(from uuid.UUID, amount *uint256.Int) error

	// Credit moves amount from escrow to a participant.
	Credit(to uuid.UUID, amount *uint256.Int)

	// TransferWithin moves amount directly between two participants.
	TransferWithin(from, to uuid.UUID, amount *uint256.Int) error
}

// MemoryLedger is the in-process CollateralLedger. Balances live in a
// single map keyed by participant; escrow is a dedicated pool owned by
// the engine.
type MemoryLedger struct {
	balances map[uuid.UUID]*uint256.Int
	escrow   *uint256.Int
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances: make(map[uuid.UUID]*uint256.Int),
		escrow:   uint256.NewInt(0),
	}
}

// Deposit tops up a participant from outside the system.
func (l *MemoryLedger) Deposit(to uuid.UUID, amount *uint256.Int) {
	l.account(to).Add(l.account(to), amount)
}

// Debit moves amount from a participant into escrow.
func (l *MemoryLedger) Debit(from uuid.UUID, amount *uint256.Int) error {
	bal := l.account(from)
	if bal.Lt(amount) {
		return fmt.Errorf("debit %s: %w (have=%s, need=%s)",
			from, ErrInsufficientCollateral, bal, amount)
	}
	bal.Sub(bal, amount)
	l.escrow.Add(l.escrow, amount)
	return nil
}

// Credit moves amount from escrow to a participant. Escrow underflow is
// not a caller error: the engine only credits collateral it escrowed, so
// running dry means the accounting broke.
func (l *MemoryLedger) Credit(to uuid.UUID, amount *uint256.Int) {
	if l.escrow.Lt(amount) {
		panic(fmt.Sprintf("FATAL: escrow underflow: have=%s, credit=%s to=%s",
			l.escrow, amount, to))
	}
	l.escrow.Sub(l.escrow, amount)
	l.account(to).Add(l.account(to), amount)
}

// TransferWithin moves amount between two participants without touching
// escrow.
func (l *MemoryLedger) TransferWithin(from, to uuid.UUID, amount *uint256.Int) error {
	bal := l.account(from)
	if bal.Lt(amount) {
		return fmt.Errorf("transfer %s -> %s: %w (have=%s, need=%s)",
			from, to, ErrInsufficientCollateral, bal, amount)
	}
	bal.Sub(bal, amount)
	l.account(to).Add(l.account(to), amount)
	return nil
}

// Balance returns a copy of a participant's spendable balance.
func (l *MemoryLedger) Balance(p uuid.UUID) *uint256.Int {
	return new(uint256.Int).Set(l.account(p))
}

// Escrow returns a copy of the escrow pool.
func (l *MemoryLedger) Escrow() *uint256.Int {
	return new(uint256.Int).Set(l.escrow)
}

func (l *MemoryLedger) account(p uuid.UUID) *uint256.Int {
	bal := l.balances[p]
	if bal == nil {
		bal = uint256.NewInt(0)
		l.balances[p] = bal
	}
	return bal
}
