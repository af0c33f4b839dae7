package credential

import (
	"context"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/gitjot/internal/model"
)

func newTestStore(t *testing.T) (*Store, *keyring.ArrayKeyring) {
	t.Helper()
	ring := keyring.NewArrayKeyring(nil)
	s, err := NewStore(ring)
	require.NoError(t, err)
	return s, ring
}

func sample() model.Credential {
	return model.Credential{
		AccessToken: "tok",
		Username:    "octo",
		RepoOwner:   "octo",
		RepoName:    "notes",
		AuthType:    model.AuthTypePAT,
	}
}

func TestStore_EmptyKeyring(t *testing.T) {
	s, _ := newTestStore(t)
	assert.Nil(t, s.Get())
}

func TestStore_SetPersistsSingleItem(t *testing.T) {
	s, ring := newTestStore(t)

	got, err := s.Set(Full(sample()))
	require.NoError(t, err)
	assert.Equal(t, "notes", got.RepoName)

	keys, err := ring.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{itemKey}, keys)

	reopened, err := NewStore(ring)
	require.NoError(t, err)
	assert.Equal(t, sample(), *reopened.Get())
}

func TestStore_PartialUpdateKeepsOtherFields(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Set(Full(sample()))
	require.NoError(t, err)

	name := "journal"
	_, err = s.Set(Update{RepoName: &name})
	require.NoError(t, err)

	got := s.Get()
	assert.Equal(t, "journal", got.RepoName)
	assert.Equal(t, "tok", got.AccessToken)
}

func TestStore_RejectsIncompleteCredential(t *testing.T) {
	s, ring := newTestStore(t)

	tok := "tok"
	_, err := s.Set(Update{AccessToken: &tok})
	require.ErrorIs(t, err, ErrIncomplete)

	assert.Nil(t, s.Get())
	keys, _ := ring.Keys()
	assert.Empty(t, keys)
}

func TestStore_ClearRemovesEverything(t *testing.T) {
	s, ring := newTestStore(t)
	_, err := s.Set(Full(sample()))
	require.NoError(t, err)

	require.NoError(t, s.Clear())
	assert.Nil(t, s.Get())

	_, err = ring.Get(itemKey)
	assert.ErrorIs(t, err, keyring.ErrKeyNotFound)

	// Clearing twice is fine.
	require.NoError(t, s.Clear())
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Set(Full(sample()))
	require.NoError(t, err)

	got := s.Get()
	got.AccessToken = "mutated"
	assert.Equal(t, "tok", s.Get().AccessToken)
}

func TestStore_ObserveEmitsSnapshots(t *testing.T) {
	s, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := s.Observe(ctx)
	next := func() *model.Credential {
		select {
		case c := <-ch:
			return c
		case <-time.After(time.Second):
			t.Fatal("timed out")
			return nil
		}
	}

	assert.Nil(t, next())

	_, err := s.Set(Full(sample()))
	require.NoError(t, err)
	assert.Equal(t, "notes", next().RepoName)

	require.NoError(t, s.Clear())
	assert.Nil(t, next())
}

func TestStore_ReloadSeesOtherWriters(t *testing.T) {
	ring := keyring.NewArrayKeyring(nil)
	watcher, err := NewStore(ring)
	require.NoError(t, err)
	other, err := NewStore(ring)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := watcher.Observe(ctx)
	assert.Nil(t, <-ch)

	_, err = other.Set(Full(sample()))
	require.NoError(t, err)
	assert.Nil(t, watcher.Get(), "cached until reloaded")

	got, err := watcher.Reload()
	require.NoError(t, err)
	assert.Equal(t, "tok", got.AccessToken)
	assert.Equal(t, "tok", watcher.Get().AccessToken)
	assert.Equal(t, "tok", (<-ch).AccessToken)

	require.NoError(t, other.Clear())
	got, err = watcher.Reload()
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Nil(t, watcher.Get())
	assert.Nil(t, <-ch)
}

func TestStore_ReloadUnchangedDoesNotNotify(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Set(Full(sample()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := s.Observe(ctx)
	<-ch

	_, err = s.Reload()
	require.NoError(t, err)

	select {
	case c := <-ch:
		t.Fatalf("unexpected notification: %+v", c)
	case <-time.After(50 * time.Millisecond):
	}
}
