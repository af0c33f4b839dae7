package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/gitjot/internal/model"
)

// AppendSubmission inserts a history record and prunes the oldest
// records beyond keep in the same transaction.
func (s *SQLiteStore) AppendSubmission(
	ctx context.Context,
	rec model.SubmissionRecord,
	keep int,
) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO submissions (id, timestamp, preview, success)
			VALUES (?, ?, ?, ?)`,
			rec.ID, rec.Timestamp.UTC(), rec.Preview, boolToInt(rec.Success),
		)
		if err != nil {
			return fmt.Errorf("inserting submission: %w", err)
		}

		if keep <= 0 {
			return nil
		}
		_, err = tx.ExecContext(ctx, `
			DELETE FROM submissions WHERE id NOT IN (
				SELECT id FROM submissions
				ORDER BY timestamp DESC, rowid DESC
				LIMIT ?
			)`, keep,
		)
		if err != nil {
			return fmt.Errorf("pruning submissions: %w", err)
		}
		return nil
	})
}

// GetRecentSubmissions returns up to limit records, newest first.
// A non-positive limit returns all records.
func (s *SQLiteStore) GetRecentSubmissions(
	ctx context.Context,
	limit int,
) ([]model.SubmissionRecord, error) {
	query := `
		SELECT id, timestamp, preview, success
		FROM submissions
		ORDER BY timestamp DESC, rowid DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	var records []model.SubmissionRecord
	if err := s.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("querying submissions: %w", err)
	}
	return records, nil
}

// DeleteAllSubmissions clears the history log.
func (s *SQLiteStore) DeleteAllSubmissions(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM submissions"); err != nil {
		return fmt.Errorf("deleting submissions: %w", err)
	}
	return nil
}
