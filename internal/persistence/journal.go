package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// The operation journal is the durable record of every accepted mutating
// operation, in engine order. Replaying it against a fresh engine yields
// identical state, which is the whole recovery story: no snapshots of
// book internals, just the inputs.

// OperationRow is a row in clob.operations.
type OperationRow struct {
	Sequence   int64
	Kind       string
	Caller     string
	MarketID   int64
	Payload    []byte // JSON command payload
	AcceptedAt time.Time
}

// JournalWriter batch-writes accepted operations to Postgres using
// multi-row INSERT. Writes are idempotent on sequence, so a retried
// batch never duplicates rows.
type JournalWriter struct {
	db *sql.DB
}

func NewJournalWriter(db *sql.DB) *JournalWriter {
	return &JournalWriter{db: db}
}

// WriteBatch inserts a batch of operations.
func (w *JournalWriter) WriteBatch(ctx context.Context, ops []OperationRow) error {
	if len(ops) == 0 {
		return nil
	}

	query := `INSERT INTO clob.operations
		(sequence, kind, caller, market_id, payload, accepted_at)
		VALUES `

	values := make([]string, 0, len(ops))
	args := make([]interface{}, 0, len(ops)*6)

	for i, op := range ops {
		base := i * 6
		values = append(values, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6,
		))
		args = append(args,
			op.Sequence, op.Kind, op.Caller, op.MarketID, op.Payload, op.AcceptedAt,
		)
	}

	query += strings.Join(values, ", ")
	query += " ON CONFLICT (sequence) DO NOTHING"

	_, err := w.db.ExecContext(ctx, query, args...)
	return err
}

// MaxSequence returns the highest journaled sequence, or 0 when empty.
func (w *JournalWriter) MaxSequence(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	err := w.db.QueryRowContext(ctx,
		`SELECT MAX(sequence) FROM clob.operations`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("max sequence: %w", err)
	}
	return seq.Int64, nil
}
