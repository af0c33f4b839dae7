package notes

import (
	"context"
	"fmt"
	"time"

	"github.com/nhle/gitjot/internal/model"
	"github.com/nhle/gitjot/internal/observe"
)

// DefaultRetention is the number of history records kept when none is
// configured.
const DefaultRetention = 100

// HistoryStore is the persistence behind History.
type HistoryStore interface {
	AppendSubmission(ctx context.Context, rec model.SubmissionRecord, keep int) error
	GetRecentSubmissions(ctx context.Context, limit int) ([]model.SubmissionRecord, error)
	DeleteAllSubmissions(ctx context.Context) error
}

// History is the bounded log of delivery outcomes, newest first.
type History struct {
	store     HistoryStore
	retention int
	records   *observe.Value[[]model.SubmissionRecord]
}

// NewHistory loads the log from st, keeping at most retention records.
func NewHistory(ctx context.Context, st HistoryStore, retention int) (*History, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	recs, err := st.GetRecentSubmissions(ctx, retention)
	if err != nil {
		return nil, err
	}
	return &History{
		store:     st,
		retention: retention,
		records:   observe.NewValue(recs),
	}, nil
}

// Record appends the outcome of delivering text.
func (h *History) Record(ctx context.Context, text string, success bool, at time.Time) error {
	err := h.store.AppendSubmission(ctx, model.SubmissionRecord{
		Timestamp: at,
		Preview:   model.Preview(text),
		Success:   success,
	}, h.retention)
	if err != nil {
		return fmt.Errorf("recording submission: %w", err)
	}
	return h.reload(ctx)
}

// Recent returns the log, newest first. The slice must not be modified.
func (h *History) Recent() []model.SubmissionRecord {
	return h.records.Get()
}

// Observe emits the log now and after every change.
func (h *History) Observe(ctx context.Context) <-chan []model.SubmissionRecord {
	return h.records.Subscribe(ctx)
}

// Clear deletes the whole log.
func (h *History) Clear(ctx context.Context) error {
	if err := h.store.DeleteAllSubmissions(ctx); err != nil {
		return err
	}
	h.records.Set(nil)
	return nil
}

func (h *History) reload(ctx context.Context) error {
	recs, err := h.store.GetRecentSubmissions(ctx, h.retention)
	if err != nil {
		return err
	}
	h.records.Set(recs)
	return nil
}
