package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/gitjot/internal/model"
	"github.com/nhle/gitjot/internal/store"
	"github.com/nhle/gitjot/tests/testutil"
)

func TestPendingNotes_FIFOAndStatus(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	var ids []int64
	for i, name := range []string{"a", "b", "c"} {
		id, err := s.EnqueueNote(ctx, model.PendingNote{
			Text:      "note " + name,
			Filename:  name,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	assert.Less(t, ids[0], ids[1])
	assert.Less(t, ids[1], ids[2])

	notes, err := s.GetPendingNotes(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{notes[0].Filename, notes[1].Filename, notes[2].Filename})
	assert.Equal(t, model.NoteStatusPending, notes[0].Status)
	assert.True(t, base.Equal(notes[0].CreatedAt))

	require.NoError(t, s.UpdateNoteStatus(ctx, ids[1], model.NoteStatusFailed))
	got, err := s.GetNoteByID(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, model.NoteStatusFailed, got.Status)

	require.NoError(t, s.DeleteNote(ctx, ids[0]))
	count, err := s.CountPendingNotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = s.GetNoteByID(ctx, ids[0])
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.UpdateNoteStatus(ctx, ids[0], model.NoteStatusUploading), store.ErrNotFound)

	require.NoError(t, s.DeleteAllNotes(ctx))
	count, err = s.CountPendingNotes(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPendingNotes_TextPreservedVerbatim(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	text := "línea uno\n\tdos 🚀 'quoted' \"double\""

	id, err := s.EnqueueNote(ctx, model.PendingNote{Text: text, Filename: "f", CreatedAt: time.Now()})
	require.NoError(t, err)

	got, err := s.GetNoteByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, text, got.Text)
}

func TestSubmissions_NewestFirstAndPruned(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		err := s.AppendSubmission(ctx, model.SubmissionRecord{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Preview:   string(rune('a' + i)),
			Success:   i%2 == 0,
		}, 3)
		require.NoError(t, err)
	}

	all, err := s.GetRecentSubmissions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "e", all[0].Preview)
	assert.Equal(t, "d", all[1].Preview)
	assert.Equal(t, "c", all[2].Preview)
	assert.True(t, all[0].Success)
	assert.False(t, all[1].Success)
	assert.NotEmpty(t, all[0].ID)

	two, err := s.GetRecentSubmissions(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)

	require.NoError(t, s.DeleteAllSubmissions(ctx))
	all, err = s.GetRecentSubmissions(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestOAuthSession_SingleUse(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	got, err := s.GetOAuthSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveOAuthSession(ctx, model.OAuthSession{CodeVerifier: "v1", State: "s1", CreatedAt: created}))
	require.NoError(t, s.SaveOAuthSession(ctx, model.OAuthSession{CodeVerifier: "v2", State: "s2", CreatedAt: created}))

	got, err = s.GetOAuthSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "v2", got.CodeVerifier)
	assert.Equal(t, "s2", got.State)

	require.NoError(t, s.DeleteOAuthSession(ctx))
	got, err = s.GetOAuthSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "gitjot.db")

	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	_, err = s.EnqueueNote(ctx, model.PendingNote{Text: "x", Filename: "f", CreatedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, s.SaveOAuthSession(ctx, model.OAuthSession{CodeVerifier: "v", State: "s", CreatedAt: time.Now()}))
	require.NoError(t, s.Close())

	s, err = store.NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	count, err := s.CountPendingNotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	sess, err := s.GetOAuthSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "v", sess.CodeVerifier)
}
