package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nhle/gitjot/internal/credential"
	"github.com/nhle/gitjot/internal/github"
	"github.com/nhle/gitjot/internal/model"
)

const (
	// minPollInterval is the floor for the device token poll interval.
	minPollInterval = 5 * time.Second

	// slowDownStep is added to the interval on each slow_down response.
	slowDownStep = 5 * time.Second

	// defaultDeviceCodeTTL bounds polling when the code carries no
	// expires_in; GitHub issues codes valid for 15 minutes.
	defaultDeviceCodeTTL = 15 * time.Minute
)

// Device token endpoint error codes.
const (
	errAuthorizationPending = "authorization_pending"
	errSlowDown             = "slow_down"
	errExpiredToken         = "expired_token"
)

// DeviceGrant is the result of a successful poll: the token, its owner
// and the repositories the user can choose from.
type DeviceGrant struct {
	Token string
	User  github.User
	Repos []github.Repository
}

// DeviceFlow runs the OAuth device authorization grant.
type DeviceFlow struct {
	stateMachine
	api      API
	creds    CredentialStore
	clientID string
	scope    string
	logger   *slog.Logger

	after func(time.Duration) <-chan time.Time
	now   func() time.Time
}

// NewDeviceFlow creates the device-code strategy.
func NewDeviceFlow(api API, creds CredentialStore, clientID, scope string, logger *slog.Logger) *DeviceFlow {
	if scope == "" {
		scope = "repo"
	}
	return &DeviceFlow{
		stateMachine: newStateMachine(StateWelcome),
		api:          api,
		creds:        creds,
		clientID:     clientID,
		scope:        scope,
		logger:       logger,
		after:        time.After,
		now:          time.Now,
	}
}

// RequestCode asks for a new device and user code.
func (f *DeviceFlow) RequestCode(ctx context.Context) (*github.DeviceCode, error) {
	code, err := f.api.RequestDeviceCode(ctx, f.clientID, f.scope)
	if err != nil {
		f.to(StateWelcome)
		return nil, fmt.Errorf("requesting device code: %w", err)
	}
	f.to(StateCodeRequested)
	return code, nil
}

// Poll waits for the user to approve code, polling the token endpoint
// every max(interval, 5s). It returns once a token is issued, the code
// is rejected or expires, or ctx is cancelled. No credential is stored;
// see Confirm.
func (f *DeviceFlow) Poll(ctx context.Context, code *github.DeviceCode) (*DeviceGrant, error) {
	grant, err := f.poll(ctx, code)
	if err != nil {
		f.to(StateWelcome)
		return nil, err
	}
	f.to(StateRepoSelection)
	return grant, nil
}

func (f *DeviceFlow) poll(ctx context.Context, code *github.DeviceCode) (*DeviceGrant, error) {
	f.to(StatePolling)

	interval := time.Duration(code.Interval) * time.Second
	if interval < minPollInterval {
		interval = minPollInterval
	}

	ttl := defaultDeviceCodeTTL
	if code.ExpiresIn > 0 {
		ttl = time.Duration(code.ExpiresIn) * time.Second
	}
	deadline := f.now().Add(ttl)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-f.after(interval):
		}

		if f.now().After(deadline) {
			return nil, ErrDeviceCodeExpired
		}

		resp, err := f.api.PollDeviceToken(ctx, f.clientID, code.DeviceCode)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			if github.IsRetryable(err) {
				f.logger.Warn("device token poll failed, retrying", "error", err)
				continue
			}
			return nil, fmt.Errorf("polling device token: %w", err)
		}

		switch {
		case resp.AccessToken != "":
			return f.grant(ctx, resp.AccessToken)
		case resp.Error == errAuthorizationPending:
			continue
		case resp.Error == errSlowDown:
			interval += slowDownStep
			if suggested := time.Duration(resp.Interval) * time.Second; suggested > interval {
				interval = suggested
			}
			f.logger.Debug("device token poll slowed down", "interval", interval)
		case resp.Error == errExpiredToken:
			return nil, ErrDeviceCodeExpired
		default:
			return nil, &DeviceFlowError{Code: resp.Error, Description: resp.ErrorDescription}
		}
	}
}

// grant fetches the identity and repository list for a fresh token.
func (f *DeviceFlow) grant(ctx context.Context, token string) (*DeviceGrant, error) {
	user, err := f.api.GetUser(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("fetching user: %w", err)
	}

	repos, err := f.api.ListUserRepos(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("listing repositories: %w", err)
	}

	return &DeviceGrant{Token: token, User: *user, Repos: repos}, nil
}

// Confirm stores the credential for the repository the user picked.
func (f *DeviceFlow) Confirm(grant *DeviceGrant, repo github.Repository) (*model.Credential, error) {
	owner, name, ok := splitFullName(repo.FullName)
	if !ok {
		owner, name = repo.Owner.Login, repo.Name
	}
	if owner == "" || name == "" {
		return nil, ErrNoRepoSelected
	}

	cred, err := f.creds.Set(credential.Full(model.Credential{
		AccessToken: grant.Token,
		Username:    grant.User.Login,
		RepoOwner:   owner,
		RepoName:    name,
		AuthType:    model.AuthTypeOAuth,
	}))
	if err != nil {
		return nil, fmt.Errorf("saving credential: %w", err)
	}

	f.to(StateDone)
	f.logger.Info("signed in with device code",
		"user", grant.User.Login, "repo", owner+"/"+name)
	return cred, nil
}

// Authorize runs the whole flow: request a code, report it through
// in.OnDeviceCode, poll, then let in.SelectRepo choose the repository.
func (f *DeviceFlow) Authorize(ctx context.Context, in Input) (*model.Credential, error) {
	if in.SelectRepo == nil {
		return nil, errors.New("device flow requires a repository selector")
	}

	code, err := f.RequestCode(ctx)
	if err != nil {
		return nil, err
	}
	if in.OnDeviceCode != nil {
		in.OnDeviceCode(code)
	}

	grant, err := f.Poll(ctx, code)
	if err != nil {
		return nil, err
	}

	repo, err := in.SelectRepo(grant.Repos)
	if err != nil {
		f.to(StateWelcome)
		return nil, err
	}
	return f.Confirm(grant, repo)
}

// PollSession is a background Poll bound to the lifetime of one
// authorization attempt.
type PollSession struct {
	cancel context.CancelFunc
	done   chan struct{}
	grant  *DeviceGrant
	err    error
}

// StartPolling runs Poll in the background.
func (f *DeviceFlow) StartPolling(ctx context.Context, code *github.DeviceCode) *PollSession {
	ctx, cancel := context.WithCancel(ctx)
	s := &PollSession{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(s.done)
		defer cancel()
		s.grant, s.err = f.Poll(ctx, code)
	}()

	return s
}

// Done is closed when polling has stopped.
func (s *PollSession) Done() <-chan struct{} { return s.done }

// Result blocks until polling stops and returns its outcome.
func (s *PollSession) Result() (*DeviceGrant, error) {
	<-s.done
	return s.grant, s.err
}

// Cancel stops polling. It returns only after the loop has exited, so no
// request is issued after Cancel returns.
func (s *PollSession) Cancel() {
	s.cancel()
	<-s.done
}
