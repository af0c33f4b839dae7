package notes

import (
	"context"
	"fmt"
	"time"

	"github.com/nhle/gitjot/internal/model"
	"github.com/nhle/gitjot/internal/observe"
)

// QueueStore is the persistence behind Queue.
type QueueStore interface {
	EnqueueNote(ctx context.Context, note model.PendingNote) (int64, error)
	GetPendingNotes(ctx context.Context) ([]model.PendingNote, error)
	UpdateNoteStatus(ctx context.Context, id int64, status model.NoteStatus) error
	DeleteNote(ctx context.Context, id int64) error
	CountPendingNotes(ctx context.Context) (int, error)
	DeleteAllNotes(ctx context.Context) error
}

// Queue is the durable FIFO of notes awaiting delivery. The store is the
// source of truth; Queue keeps an observable count of its rows.
type Queue struct {
	store QueueStore
	count *observe.Value[int]
}

// NewQueue loads the current queue size from st.
func NewQueue(ctx context.Context, st QueueStore) (*Queue, error) {
	n, err := st.CountPendingNotes(ctx)
	if err != nil {
		return nil, err
	}
	return &Queue{store: st, count: observe.NewValue(n)}, nil
}

// Enqueue stores text for later delivery under filename.
func (q *Queue) Enqueue(ctx context.Context, text, filename string, createdAt time.Time) (*model.PendingNote, error) {
	note := model.PendingNote{
		Text:      text,
		Filename:  filename,
		Status:    model.NoteStatusPending,
		CreatedAt: createdAt,
	}
	id, err := q.store.EnqueueNote(ctx, note)
	if err != nil {
		return nil, fmt.Errorf("enqueueing note: %w", err)
	}
	note.ID = id

	q.refresh(ctx)
	return &note, nil
}

// Notes returns every queued note in creation order.
func (q *Queue) Notes(ctx context.Context) ([]model.PendingNote, error) {
	return q.store.GetPendingNotes(ctx)
}

// MarkUploading flags a note as being delivered.
func (q *Queue) MarkUploading(ctx context.Context, id int64) error {
	return q.store.UpdateNoteStatus(ctx, id, model.NoteStatusUploading)
}

// MarkFailed flags a note whose delivery failed; it stays queued.
func (q *Queue) MarkFailed(ctx context.Context, id int64) error {
	return q.store.UpdateNoteStatus(ctx, id, model.NoteStatusFailed)
}

// Remove deletes a delivered note.
func (q *Queue) Remove(ctx context.Context, id int64) error {
	if err := q.store.DeleteNote(ctx, id); err != nil {
		return err
	}
	q.refresh(ctx)
	return nil
}

// Clear deletes every queued note.
func (q *Queue) Clear(ctx context.Context) error {
	if err := q.store.DeleteAllNotes(ctx); err != nil {
		return err
	}
	q.count.Set(0)
	return nil
}

// Count returns the number of queued notes.
func (q *Queue) Count() int { return q.count.Get() }

// ObserveCount emits the queue size now and after every change.
func (q *Queue) ObserveCount(ctx context.Context) <-chan int {
	return q.count.Subscribe(ctx)
}

// refresh re-reads the count. A failed read keeps the last known value.
func (q *Queue) refresh(ctx context.Context) {
	if n, err := q.store.CountPendingNotes(ctx); err == nil {
		q.count.Set(n)
	}
}
