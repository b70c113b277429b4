package ingestion_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/holiman/uint256"

	"OutcomeBook/internal/book"
	"OutcomeBook/internal/ingestion"
)

func TestParseCommand_LimitBuy(t *testing.T) {
	data := []byte(`{
		"op_id": "550e8400-e29b-41d4-a716-446655440000",
		"caller": "550e8400-e29b-41d4-a716-446655440001",
		"market_id": 3,
		"price": 400,
		"size": 100,
		"outcome": "no"
	}`)

	cmd, err := ingestion.ParseCommand(ingestion.OpLimitBuy, data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd.Op != ingestion.OpLimitBuy {
		t.Errorf("op: got %s", cmd.Op)
	}
	if cmd.MarketID != 3 || cmd.Price != 400 || cmd.Size != 100 {
		t.Errorf("fields: %+v", cmd)
	}
	if cmd.Outcome != book.OutcomeNo {
		t.Errorf("outcome: got %s, want no", cmd.Outcome)
	}
}

func TestParseCommand_Cancel(t *testing.T) {
	data := []byte(`{
		"op_id": "550e8400-e29b-41d4-a716-446655440000",
		"caller": "550e8400-e29b-41d4-a716-446655440001",
		"market_id": 0,
		"price": 600,
		"index": 2,
		"outcome": "yes",
		"side": "ask"
	}`)

	cmd, err := ingestion.ParseCommand(ingestion.OpCancel, data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cmd.Side != book.SideAsk || cmd.Outcome != book.OutcomeYes || cmd.Index != 2 {
		t.Errorf("fields: %+v", cmd)
	}
}

func TestParseCommand_Deposit(t *testing.T) {
	data := []byte(`{
		"op_id": "550e8400-e29b-41d4-a716-446655440000",
		"caller": "550e8400-e29b-41d4-a716-446655440001",
		"amount": "1000000000000000000000"
	}`)

	cmd, err := ingestion.ParseCommand(ingestion.OpDeposit, data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := uint256.MustFromDecimal("1000000000000000000000")
	if !cmd.Amount.Eq(want) {
		t.Errorf("amount: got %s, want %s", cmd.Amount, want)
	}
}

func TestParseCommand_Errors(t *testing.T) {
	valid := `{
		"op_id": "550e8400-e29b-41d4-a716-446655440000",
		"caller": "550e8400-e29b-41d4-a716-446655440001",
		"outcome": "yes"
	}`

	cases := []struct {
		name string
		op   string
		data string
	}{
		{"bad json", ingestion.OpLimitBuy, `{`},
		{"bad op_id", ingestion.OpLimitBuy, strings.Replace(valid, "550e8400-e29b-41d4-a716-446655440000", "nope", 1)},
		{"bad caller", ingestion.OpLimitBuy, strings.Replace(valid, "550e8400-e29b-41d4-a716-446655440001", "nope", 1)},
		{"bad outcome", ingestion.OpLimitBuy, strings.Replace(valid, `"yes"`, `"maybe"`, 1)},
		{"unknown op", "warp_speed", valid},
		{"bad amount", ingestion.OpDeposit, strings.Replace(valid, `"outcome": "yes"`, `"amount": "12x"`, 1)},
	}

	for _, tc := range cases {
		if _, err := ingestion.ParseCommand(tc.op, []byte(tc.data)); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestEncodeCommand_RoundTrip(t *testing.T) {
	cmd := &ingestion.Command{
		Op:       ingestion.OpCancel,
		OpID:     uuid.New(),
		Caller:   uuid.New(),
		MarketID: 7,
		Price:    600,
		Index:    3,
		Outcome:  book.OutcomeYes,
		Side:     book.SideAsk,
	}

	decoded, err := ingestion.ParseCommand(ingestion.OpCancel, ingestion.EncodeCommand(cmd))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.OpID != cmd.OpID || decoded.Caller != cmd.Caller ||
		decoded.MarketID != cmd.MarketID || decoded.Price != cmd.Price ||
		decoded.Index != cmd.Index || decoded.Outcome != cmd.Outcome ||
		decoded.Side != cmd.Side {
		t.Errorf("round trip mismatch: %+v vs %+v", decoded, cmd)
	}
}

func TestCommandDedup(t *testing.T) {
	d := ingestion.NewCommandDedup(2)

	a, b, c := uuid.New(), uuid.New(), uuid.New()

	if d.Seen(a) {
		t.Error("fresh id should not be seen")
	}
	d.Mark(a)
	d.Mark(b)
	if !d.Seen(a) || !d.Seen(b) {
		t.Error("marked ids should be seen")
	}

	// a was just promoted by Seen; adding c evicts b.
	d.Mark(c)
	if d.Seen(b) {
		t.Error("b should have been evicted")
	}
	if !d.Seen(a) || !d.Seen(c) {
		t.Error("a and c should remain")
	}
}
