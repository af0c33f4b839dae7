package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nhle/gitjot/internal/model"
)

// SaveOAuthSession stores the single in-progress OAuth session, replacing
// any earlier one.
func (s *SQLiteStore) SaveOAuthSession(
	ctx context.Context,
	sess model.OAuthSession,
) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO oauth_sessions (id, code_verifier, state, created_at)
		VALUES (1, ?, ?, ?)`,
		sess.CodeVerifier, sess.State, sess.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving oauth session: %w", err)
	}
	return nil
}

// GetOAuthSession returns the stored session, or nil if there is none.
func (s *SQLiteStore) GetOAuthSession(
	ctx context.Context,
) (*model.OAuthSession, error) {
	var sess model.OAuthSession
	err := s.db.GetContext(ctx, &sess, `
		SELECT code_verifier, state, created_at
		FROM oauth_sessions WHERE id = 1`,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting oauth session: %w", err)
	}
	return &sess, nil
}

// DeleteOAuthSession removes the stored session, if any.
func (s *SQLiteStore) DeleteOAuthSession(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM oauth_sessions"); err != nil {
		return fmt.Errorf("deleting oauth session: %w", err)
	}
	return nil
}
