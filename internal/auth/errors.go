package auth

import (
	"errors"
	"fmt"
)

// Errors surfaced to the caller for display; each needs user action.
var (
	ErrTokenRequired        = errors.New("personal access token is required")
	ErrInvalidToken         = errors.New("personal access token is invalid")
	ErrInvalidRepoFormat    = errors.New("enter the repository as owner/repo or paste the full GitHub URL")
	ErrRepoNotFound         = errors.New("repository not found: check the name and token permissions")
	ErrOAuthSessionExpired  = errors.New("OAuth session expired, please try again")
	ErrStateMismatch        = errors.New("OAuth state does not match the pending session")
	ErrDeviceCodeExpired    = errors.New("device code expired, please start again")
	ErrInstallationNotFound = errors.New("no GitHub App installation found: install the app on a repository")
	ErrNoRepositoriesFound  = errors.New("no repositories found: select a repository when installing the app")
	ErrNoRepoSelected       = errors.New("no repository selected")
)

// DeviceFlowError is a terminal error reported by the token endpoint
// while polling a device code.
type DeviceFlowError struct {
	Code        string
	Description string
}

func (e *DeviceFlowError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("device authorization failed: %s", e.Description)
	}
	return fmt.Sprintf("device authorization failed: %s", e.Code)
}
