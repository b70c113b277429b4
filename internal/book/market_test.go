package book_test

import (
	"testing"

	"github.com/google/uuid"

	"OutcomeBook/internal/book"
)

func TestOutcome_Opposite(t *testing.T) {
	if book.OutcomeYes.Opposite() != book.OutcomeNo {
		t.Error("opposite of yes should be no")
	}
	if book.OutcomeNo.Opposite() != book.OutcomeYes {
		t.Error("opposite of no should be yes")
	}
}

func TestPriceLevel_Append(t *testing.T) {
	var lvl book.PriceLevel
	maker := uuid.New()

	idx := lvl.Append(book.LimitOrder{Maker: maker, Size: 50, Side: book.SideBid})
	if idx != 0 {
		t.Errorf("first index: got %d, want 0", idx)
	}
	idx = lvl.Append(book.LimitOrder{Maker: maker, Size: 30, Side: book.SideAsk})
	if idx != 1 {
		t.Errorf("second index: got %d, want 1", idx)
	}
	if lvl.TotalSize != 80 {
		t.Errorf("total size: got %d, want 80", lvl.TotalSize)
	}
	if lvl.Order(2) != nil {
		t.Error("out-of-range order should be nil")
	}
}

func TestMarket_ShareAccounting(t *testing.T) {
	m := book.NewMarket(0)
	alice := uuid.New()
	bob := uuid.New()

	m.CreditShares(book.OutcomeYes, alice, 100)
	m.CreditShares(book.OutcomeNo, bob, 100)

	yes, no := m.ShareTotals()
	if yes != 100 || no != 100 {
		t.Errorf("share totals: got (%d, %d), want (100, 100)", yes, no)
	}

	m.DebitShares(book.OutcomeYes, alice, 40)
	if m.Shares(book.OutcomeYes, alice) != 60 {
		t.Errorf("alice yes: got %d, want 60", m.Shares(book.OutcomeYes, alice))
	}
}

func TestMarket_DebitShares_UnderflowPanics(t *testing.T) {
	m := book.NewMarket(0)
	alice := uuid.New()
	m.CreditShares(book.OutcomeYes, alice, 10)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on share underflow")
		}
	}()
	m.DebitShares(book.OutcomeYes, alice, 11)
}

func TestComputeOrderID_Deterministic(t *testing.T) {
	a := book.ComputeOrderID(0, 400, 0)
	b := book.ComputeOrderID(0, 400, 0)
	if a != b {
		t.Error("same triple should give same ID")
	}

	distinct := []book.OrderID{
		book.ComputeOrderID(0, 400, 0),
		book.ComputeOrderID(0, 400, 1),
		book.ComputeOrderID(0, 401, 0),
		book.ComputeOrderID(1, 400, 0),
	}
	seen := make(map[book.OrderID]bool)
	for _, id := range distinct {
		if seen[id] {
			t.Errorf("duplicate ID %s across differing triples", id)
		}
		seen[id] = true
	}
}
