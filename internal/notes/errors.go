package notes

import "errors"

var (
	// ErrNotAuthenticated is returned when no credential is stored.
	ErrNotAuthenticated = errors.New("not signed in")

	// ErrNoRepoConfigured is returned when the credential has no target
	// repository.
	ErrNoRepoConfigured = errors.New("no repository configured")

	// ErrEmptyNote is returned for a note with no visible text.
	ErrEmptyNote = errors.New("note is empty")
)
