// Package credential persists the single active credential in the host
// keyring and publishes it to observers.
package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/99designs/keyring"

	"github.com/nhle/gitjot/internal/model"
	"github.com/nhle/gitjot/internal/observe"
)

// itemKey is the keyring key holding the JSON-encoded credential.
const itemKey = "credential"

// ErrIncomplete is returned by Set when an update would leave the access
// token, repository owner and repository name partially populated.
var ErrIncomplete = errors.New("credential: token, repo owner and repo name must be set together")

// Update describes a partial change to the credential. Nil fields keep
// their current value.
type Update struct {
	AccessToken    *string
	Username       *string
	RepoOwner      *string
	RepoName       *string
	AuthType       *model.AuthType
	InstallationID *string
}

// Full builds an Update that replaces every field of the credential.
func Full(c model.Credential) Update {
	return Update{
		AccessToken:    &c.AccessToken,
		Username:       &c.Username,
		RepoOwner:      &c.RepoOwner,
		RepoName:       &c.RepoName,
		AuthType:       &c.AuthType,
		InstallationID: &c.InstallationID,
	}
}

// Store is the credential store. All fields are written as one keyring
// item, so a reader never sees a half-applied update.
type Store struct {
	ring keyring.Keyring

	// mu serialises writers; readers go through value.
	mu    sync.Mutex
	value *observe.Value[*model.Credential]
}

// NewStore loads the current credential from ring.
func NewStore(ring keyring.Keyring) (*Store, error) {
	cred, err := load(ring)
	if err != nil {
		return nil, err
	}
	return &Store{
		ring:  ring,
		value: observe.NewValue(cred),
	}, nil
}

// load reads the credential item, returning nil when none is stored.
func load(ring keyring.Keyring) (*model.Credential, error) {
	item, err := ring.Get(itemKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting credential: %w", err)
	}

	var cred model.Credential
	if err := json.Unmarshal(item.Data, &cred); err != nil {
		return nil, fmt.Errorf("decoding credential: %w", err)
	}
	return &cred, nil
}

// Get returns a copy of the current credential, or nil when signed out.
func (s *Store) Get() *model.Credential {
	return clone(s.value.Get())
}

// Reload re-reads the keyring and publishes the stored credential if it
// differs from the cached one. Another process (a second gitjot, or a
// logout run while `watch` is open) may have changed it.
func (s *Store) Reload() (*model.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, err := load(s.ring)
	if err != nil {
		return nil, err
	}
	if !equal(s.value.Get(), cred) {
		s.value.Set(cred)
	}
	return clone(cred), nil
}

// Observe emits the current credential immediately and then every change
// until ctx is done. Received values must not be modified.
func (s *Store) Observe(ctx context.Context) <-chan *model.Credential {
	return s.value.Subscribe(ctx)
}

// Set merges u into the current credential and persists the result.
func (s *Store) Set(u Update) (*model.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := model.Credential{}
	if cur := s.value.Get(); cur != nil {
		next = *cur
	}
	apply(&next, u)

	if err := validate(next); err != nil {
		return nil, err
	}

	data, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("encoding credential: %w", err)
	}

	err = s.ring.Set(keyring.Item{
		Key:         itemKey,
		Data:        data,
		Label:       "gitjot credential",
		Description: "GitHub access token and target repository",
	})
	if err != nil {
		return nil, fmt.Errorf("setting credential: %w", err)
	}

	s.value.Set(&next)
	return clone(&next), nil
}

// Clear removes the stored credential.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.ring.Remove(itemKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential: %w", err)
	}

	s.value.Set(nil)
	return nil
}

func apply(c *model.Credential, u Update) {
	if u.AccessToken != nil {
		c.AccessToken = *u.AccessToken
	}
	if u.Username != nil {
		c.Username = *u.Username
	}
	if u.RepoOwner != nil {
		c.RepoOwner = *u.RepoOwner
	}
	if u.RepoName != nil {
		c.RepoName = *u.RepoName
	}
	if u.AuthType != nil {
		c.AuthType = *u.AuthType
	}
	if u.InstallationID != nil {
		c.InstallationID = *u.InstallationID
	}
}

func validate(c model.Credential) error {
	set := 0
	for _, f := range []string{c.AccessToken, c.RepoOwner, c.RepoName} {
		if f != "" {
			set++
		}
	}
	if set != 0 && set != 3 {
		return ErrIncomplete
	}
	return nil
}

func equal(a, b *model.Credential) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func clone(c *model.Credential) *model.Credential {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
