package persistence

import (
	"context"
	"database/sql"
	"fmt"
)

// Replayer streams the operation journal in sequence order and hands
// each row to an apply callback. Applying the full journal to a fresh
// engine reproduces the pre-shutdown state exactly: every journaled
// operation was accepted once, so it must be accepted again.
type Replayer struct {
	db *sql.DB
}

func NewReplayer(db *sql.DB) *Replayer {
	return &Replayer{db: db}
}

// Replay applies all journaled operations in order and returns the
// count and the highest sequence seen. A rejected replayed operation
// means the journal and engine disagree, which is unrecoverable.
func (r *Replayer) Replay(ctx context.Context, apply func(OperationRow) error) (int64, int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT sequence, kind, caller, market_id, payload, accepted_at
		FROM clob.operations
		ORDER BY sequence ASC
	`)
	if err != nil {
		return 0, 0, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var count, lastSeq int64
	for rows.Next() {
		var op OperationRow
		if err := rows.Scan(
			&op.Sequence, &op.Kind, &op.Caller, &op.MarketID, &op.Payload, &op.AcceptedAt,
		); err != nil {
			return count, lastSeq, fmt.Errorf("scan journal row: %w", err)
		}

		if err := apply(op); err != nil {
			panic(fmt.Sprintf("FATAL: journal replay diverged at seq %d (%s): %v",
				op.Sequence, op.Kind, err))
		}

		count++
		lastSeq = op.Sequence
	}

	return count, lastSeq, rows.Err()
}
