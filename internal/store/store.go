package store

import (
	"context"

	"github.com/nhle/gitjot/internal/model"
)

// Store defines the local persistence for the delivery queue, the
// submission history and the in-progress OAuth session.
type Store interface {
	// === Pending notes ===

	// EnqueueNote inserts note and returns its assigned ID. IDs increase
	// monotonically, so ascending ID order is creation order.
	EnqueueNote(ctx context.Context, note model.PendingNote) (int64, error)
	GetPendingNotes(ctx context.Context) ([]model.PendingNote, error)
	GetNoteByID(ctx context.Context, id int64) (*model.PendingNote, error)
	UpdateNoteStatus(ctx context.Context, id int64, status model.NoteStatus) error
	DeleteNote(ctx context.Context, id int64) error
	CountPendingNotes(ctx context.Context) (int, error)
	DeleteAllNotes(ctx context.Context) error

	// === Submission history ===

	// AppendSubmission inserts rec and prunes all but the newest keep
	// records. A non-positive keep disables pruning.
	AppendSubmission(ctx context.Context, rec model.SubmissionRecord, keep int) error
	GetRecentSubmissions(ctx context.Context, limit int) ([]model.SubmissionRecord, error)
	DeleteAllSubmissions(ctx context.Context) error

	// === OAuth session ===

	SaveOAuthSession(ctx context.Context, s model.OAuthSession) error
	// GetOAuthSession returns nil without error when no session exists.
	GetOAuthSession(ctx context.Context) (*model.OAuthSession, error)
	DeleteOAuthSession(ctx context.Context) error
}
