package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nhle/gitjot/internal/credential"
	"github.com/nhle/gitjot/internal/github"
	"github.com/nhle/gitjot/internal/model"
)

// PATFlow validates a personal access token against a repository.
type PATFlow struct {
	stateMachine
	api    API
	creds  CredentialStore
	logger *slog.Logger
}

// NewPATFlow creates the personal-access-token strategy.
func NewPATFlow(api API, creds CredentialStore, logger *slog.Logger) *PATFlow {
	return &PATFlow{
		stateMachine: newStateMachine(StateEnteringInput),
		api:          api,
		creds:        creds,
		logger:       logger,
	}
}

// Authorize validates in.Token and in.Repo and stores the credential.
// On failure the flow returns to StateEnteringInput.
func (f *PATFlow) Authorize(ctx context.Context, in Input) (*model.Credential, error) {
	cred, err := f.authorize(ctx, in)
	if err != nil {
		f.to(StateEnteringInput)
		return nil, err
	}
	f.to(StateDone)
	return cred, nil
}

func (f *PATFlow) authorize(ctx context.Context, in Input) (*model.Credential, error) {
	token := strings.TrimSpace(in.Token)
	if token == "" {
		return nil, ErrTokenRequired
	}

	owner, repo, err := ParseRepo(in.Repo)
	if err != nil {
		return nil, err
	}

	f.to(StateValidating)

	user, err := f.api.GetUser(ctx, token)
	if github.IsUnauthorized(err) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("validating token: %w", err)
	}

	if _, err := f.api.GetRepository(ctx, token, owner, repo); err != nil {
		if github.IsNotFound(err) {
			return nil, ErrRepoNotFound
		}
		return nil, fmt.Errorf("validating repository %s/%s: %w", owner, repo, err)
	}

	cred, err := f.creds.Set(credential.Full(model.Credential{
		AccessToken: token,
		Username:    user.Login,
		RepoOwner:   owner,
		RepoName:    repo,
		AuthType:    model.AuthTypePAT,
	}))
	if err != nil {
		return nil, fmt.Errorf("saving credential: %w", err)
	}

	f.logger.Info("signed in with personal access token",
		"user", user.Login, "repo", owner+"/"+repo)
	return cred, nil
}
