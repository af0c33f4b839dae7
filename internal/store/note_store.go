package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nhle/gitjot/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// EnqueueNote inserts a pending note. A zero status is stored as pending.
func (s *SQLiteStore) EnqueueNote(
	ctx context.Context,
	note model.PendingNote,
) (int64, error) {
	if note.Status == "" {
		note.Status = model.NoteStatusPending
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO pending_notes (text, filename, status, created_at)
		VALUES (?, ?, ?, ?)`,
		note.Text, note.Filename, string(note.Status), note.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("enqueueing note %s: %w", note.Filename, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading note id: %w", err)
	}
	return id, nil
}

// GetPendingNotes returns every queued note in creation order, whatever
// its status.
func (s *SQLiteStore) GetPendingNotes(
	ctx context.Context,
) ([]model.PendingNote, error) {
	var notes []model.PendingNote
	err := s.db.SelectContext(ctx, &notes, `
		SELECT id, text, filename, status, created_at
		FROM pending_notes
		ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying pending notes: %w", err)
	}
	return notes, nil
}

// GetNoteByID retrieves a single queued note.
func (s *SQLiteStore) GetNoteByID(
	ctx context.Context,
	id int64,
) (*model.PendingNote, error) {
	var note model.PendingNote
	err := s.db.GetContext(ctx, &note, `
		SELECT id, text, filename, status, created_at
		FROM pending_notes WHERE id = ?`, id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting note %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting note %d: %w", id, err)
	}
	return &note, nil
}

// UpdateNoteStatus sets the status of a queued note.
func (s *SQLiteStore) UpdateNoteStatus(
	ctx context.Context,
	id int64,
	status model.NoteStatus,
) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE pending_notes SET status = ? WHERE id = ?", string(status), id,
	)
	if err != nil {
		return fmt.Errorf("updating note %d status: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("updating note %d status: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteNote removes a delivered note from the queue.
func (s *SQLiteStore) DeleteNote(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM pending_notes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting note %d: %w", id, err)
	}
	return nil
}

// CountPendingNotes returns the number of notes still awaiting delivery.
func (s *SQLiteStore) CountPendingNotes(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM pending_notes"); err != nil {
		return 0, fmt.Errorf("counting pending notes: %w", err)
	}
	return count, nil
}

// DeleteAllNotes empties the queue.
func (s *SQLiteStore) DeleteAllNotes(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM pending_notes"); err != nil {
		return fmt.Errorf("deleting pending notes: %w", err)
	}
	return nil
}
