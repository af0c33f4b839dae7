// Package sync drains the local note queue into the repository, either on
// demand or on a schedule with backoff.
package sync

import (
	"context"
	"log/slog"
	"time"

	"github.com/nhle/gitjot/internal/model"
	"github.com/nhle/gitjot/internal/notes"
)

// Outcome is what a drain run reports to its scheduler.
type Outcome int

const (
	// Success means the queue was empty or fully delivered.
	Success Outcome = iota
	// Retry means some notes remain and the run should be repeated later.
	Retry
)

func (o Outcome) String() string {
	if o == Success {
		return "success"
	}
	return "retry"
}

// Credentials supplies the current credential snapshot.
type Credentials interface {
	Get() *model.Credential
}

// reloader is implemented by credential stores that can pick up a
// sign-in or sign-out made by another process.
type reloader interface {
	Reload() (*model.Credential, error)
}

// Worker delivers queued notes in creation order.
type Worker struct {
	api     notes.ContentAPI
	creds   Credentials
	queue   *notes.Queue
	history *notes.History
	logger  *slog.Logger
	now     func() time.Time
}

// NewWorker creates a drain worker.
func NewWorker(api notes.ContentAPI, creds Credentials, queue *notes.Queue, history *notes.History, logger *slog.Logger) *Worker {
	return &Worker{
		api:     api,
		creds:   creds,
		queue:   queue,
		history: history,
		logger:  logger,
		now:     time.Now,
	}
}

// Run performs one drain. The first note that fails is marked failed and
// ends the run, so later notes are never delivered ahead of it. The queue
// rows are the only checkpoint: a repeated run resumes from the first
// note still queued.
func (w *Worker) Run(ctx context.Context) Outcome {
	cred := w.credential()
	if cred == nil || cred.AccessToken == "" || !cred.HasRepo() {
		w.logger.Info("drain skipped, not signed in")
		return Retry
	}

	pending, err := w.queue.Notes(ctx)
	if err != nil {
		w.logger.Error("loading queued notes", "error", err)
		return Retry
	}
	if len(pending) == 0 {
		return Success
	}

	w.logger.Info("draining queue", "notes", len(pending))

	for _, note := range pending {
		if !w.deliver(ctx, cred, note) {
			return Retry
		}
	}
	return Success
}

// credential returns the credential as currently stored, falling back to
// the cached copy when the keyring cannot be read.
func (w *Worker) credential() *model.Credential {
	r, ok := w.creds.(reloader)
	if !ok {
		return w.creds.Get()
	}
	cred, err := r.Reload()
	if err != nil {
		w.logger.Warn("reloading credential", "error", err)
		return w.creds.Get()
	}
	return cred
}

// deliver sends one note and reports whether the drain may continue.
func (w *Worker) deliver(ctx context.Context, cred *model.Credential, note model.PendingNote) bool {
	logger := w.logger.With("note", note.ID, "filename", note.Filename)

	if err := w.queue.MarkUploading(ctx, note.ID); err != nil {
		logger.Error("marking note uploading", "error", err)
		return false
	}

	path, err := notes.Deliver(ctx, w.api, cred, note.Filename, note.Text)

	// Bookkeeping must land even when ctx was cancelled mid-request.
	bg := context.WithoutCancel(ctx)

	if err != nil {
		logger.Warn("delivering queued note", "error", err)
		if mErr := w.queue.MarkFailed(bg, note.ID); mErr != nil {
			logger.Error("marking note failed", "error", mErr)
		}
		return false
	}

	if err := w.history.Record(bg, note.Text, true, w.now()); err != nil {
		logger.Warn("recording submission", "error", err)
	}
	if err := w.queue.Remove(bg, note.ID); err != nil {
		logger.Error("removing delivered note", "error", err)
		return false
	}

	logger.Info("queued note sent", "path", path)
	return ctx.Err() == nil
}
