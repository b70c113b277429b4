package book_test

import (
	"testing"

	"OutcomeBook/internal/book"
)

func TestPriceIndex_EmptyFindLastSet(t *testing.T) {
	var ix book.PriceIndex

	if _, ok := ix.FindLastSet(book.BPS); ok {
		t.Error("empty index should find nothing")
	}
	if _, ok := ix.FindLastSet(0); ok {
		t.Error("upper bound 0 should find nothing")
	}
}

func TestPriceIndex_SetUnsetHas(t *testing.T) {
	var ix book.PriceIndex

	ix.Set(400)
	if !ix.Has(400) {
		t.Error("400 should be set")
	}
	if ix.Has(399) || ix.Has(401) {
		t.Error("neighbours should not be set")
	}

	ix.Unset(400)
	if ix.Has(400) {
		t.Error("400 should be unset")
	}
}

func TestPriceIndex_FindLastSet_Descending(t *testing.T) {
	var ix book.PriceIndex
	for _, tick := range []uint16{400, 500, 600} {
		ix.Set(tick)
	}

	want := []uint16{600, 500, 400}
	upper := uint16(book.BPS)
	for _, w := range want {
		got, ok := ix.FindLastSet(upper)
		if !ok {
			t.Fatalf("expected tick %d, found none", w)
		}
		if got != w {
			t.Fatalf("got tick %d, want %d", got, w)
		}
		upper = got
	}
	if _, ok := ix.FindLastSet(upper); ok {
		t.Error("expected exhausted index")
	}
}

func TestPriceIndex_FindLastSet_StrictBound(t *testing.T) {
	var ix book.PriceIndex
	ix.Set(500)

	// Upper bound is exclusive.
	if _, ok := ix.FindLastSet(500); ok {
		t.Error("tick 500 should not be found with upper bound 500")
	}
	if got, ok := ix.FindLastSet(501); !ok || got != 500 {
		t.Errorf("got (%d, %v), want (500, true)", got, ok)
	}
}

func TestPriceIndex_FindLastSet_WordBoundaries(t *testing.T) {
	// Ticks straddling 64-bit word edges.
	for _, tick := range []uint16{1, 63, 64, 127, 128, 640, book.BPS - 1} {
		var ix book.PriceIndex
		ix.Set(tick)

		got, ok := ix.FindLastSet(book.BPS)
		if !ok || got != tick {
			t.Errorf("tick %d: got (%d, %v), want (%d, true)", tick, got, ok, tick)
		}
	}
}

func TestPriceIndex_FindLastSet_UpperBoundClamped(t *testing.T) {
	var ix book.PriceIndex
	ix.Set(book.BPS - 1)

	if got, ok := ix.FindLastSet(65535); !ok || got != book.BPS-1 {
		t.Errorf("got (%d, %v), want (%d, true)", got, ok, book.BPS-1)
	}
}
