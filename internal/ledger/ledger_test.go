package ledger_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/holiman/uint256"

	"OutcomeBook/internal/ledger"
)

func TestMemoryLedger_InitialBalanceZero(t *testing.T) {
	l := ledger.NewMemoryLedger()
	if !l.Balance(uuid.New()).IsZero() {
		t.Error("fresh account should have zero balance")
	}
	if !l.Escrow().IsZero() {
		t.Error("fresh ledger should have zero escrow")
	}
}

func TestMemoryLedger_DepositDebitCredit(t *testing.T) {
	l := ledger.NewMemoryLedger()
	alice := uuid.New()

	l.Deposit(alice, uint256.NewInt(1000))
	if !l.Balance(alice).Eq(uint256.NewInt(1000)) {
		t.Fatalf("balance after deposit: got %s, want 1000", l.Balance(alice))
	}

	if err := l.Debit(alice, uint256.NewInt(400)); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if !l.Balance(alice).Eq(uint256.NewInt(600)) {
		t.Errorf("balance after debit: got %s, want 600", l.Balance(alice))
	}
	if !l.Escrow().Eq(uint256.NewInt(400)) {
		t.Errorf("escrow after debit: got %s, want 400", l.Escrow())
	}

	l.Credit(alice, uint256.NewInt(150))
	if !l.Balance(alice).Eq(uint256.NewInt(750)) {
		t.Errorf("balance after credit: got %s, want 750", l.Balance(alice))
	}
	if !l.Escrow().Eq(uint256.NewInt(250)) {
		t.Errorf("escrow after credit: got %s, want 250", l.Escrow())
	}
}

func TestMemoryLedger_DebitInsufficient(t *testing.T) {
	l := ledger.NewMemoryLedger()
	alice := uuid.New()
	l.Deposit(alice, uint256.NewInt(100))

	err := l.Debit(alice, uint256.NewInt(101))
	if !errors.Is(err, ledger.ErrInsufficientCollateral) {
		t.Fatalf("got %v, want ErrInsufficientCollateral", err)
	}

	// Failed debit leaves both sides untouched.
	if !l.Balance(alice).Eq(uint256.NewInt(100)) {
		t.Error("balance changed on failed debit")
	}
	if !l.Escrow().IsZero() {
		t.Error("escrow changed on failed debit")
	}
}

func TestMemoryLedger_CreditBeyondEscrowPanics(t *testing.T) {
	l := ledger.NewMemoryLedger()
	alice := uuid.New()

	defer func() {
		if recover() == nil {
			t.Error("expected panic on escrow underflow")
		}
	}()
	l.Credit(alice, uint256.NewInt(1))
}

func TestMemoryLedger_TransferWithin(t *testing.T) {
	l := ledger.NewMemoryLedger()
	alice := uuid.New()
	bob := uuid.New()
	l.Deposit(alice, uint256.NewInt(500))

	if err := l.TransferWithin(alice, bob, uint256.NewInt(200)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if !l.Balance(alice).Eq(uint256.NewInt(300)) {
		t.Errorf("alice: got %s, want 300", l.Balance(alice))
	}
	if !l.Balance(bob).Eq(uint256.NewInt(200)) {
		t.Errorf("bob: got %s, want 200", l.Balance(bob))
	}

	err := l.TransferWithin(bob, alice, uint256.NewInt(201))
	if !errors.Is(err, ledger.ErrInsufficientCollateral) {
		t.Fatalf("got %v, want ErrInsufficientCollateral", err)
	}
}
