// Package auth acquires the credential used by the note pipeline through
// one of three strategies: personal access token, OAuth device code, and
// OAuth authorization code with PKCE (GitHub App install).
package auth

import (
	"context"

	"github.com/nhle/gitjot/internal/credential"
	"github.com/nhle/gitjot/internal/github"
	"github.com/nhle/gitjot/internal/model"
	"github.com/nhle/gitjot/internal/observe"
)

// State is a step of an authorization strategy's state machine.
type State string

// PAT strategy states.
const (
	StateEnteringInput State = "entering_input"
	StateValidating    State = "validating"
)

// Device-code strategy states.
const (
	StateWelcome       State = "welcome"
	StateCodeRequested State = "code_requested"
	StatePolling       State = "polling"
	StateRepoSelection State = "repo_selection"
)

// Web (PKCE) strategy states.
const (
	StateIdle             State = "idle"
	StateAwaitingCallback State = "awaiting_callback"
	StateExchanging       State = "exchanging"
	StateRepoDiscovery    State = "repo_discovery"
)

// StateDone is the terminal state shared by every strategy.
const StateDone State = "done"

// Input carries what a strategy needs from the user. Each strategy reads
// only its own fields.
type Input struct {
	// Token and Repo are used by the PAT strategy.
	Token string
	Repo  string

	// Code and State are the parameters of the web callback.
	Code  string
	State string

	// OnDeviceCode is called once the device code is known so the user
	// code and verification URI can be shown.
	OnDeviceCode func(*github.DeviceCode)

	// SelectRepo picks the target repository from the user's list.
	SelectRepo func([]github.Repository) (github.Repository, error)
}

// Authorizer produces a stored credential. Callers depend only on this
// capability; the resulting credential is tagged with its AuthType.
type Authorizer interface {
	Authorize(ctx context.Context, in Input) (*model.Credential, error)
	State() State
}

// API is the slice of the GitHub client used by the strategies.
type API interface {
	GetUser(ctx context.Context, token string) (*github.User, error)
	GetRepository(ctx context.Context, token, owner, repo string) (*github.Repository, error)
	ListUserRepos(ctx context.Context, token string) ([]github.Repository, error)
	ListInstallations(ctx context.Context, token string) (*github.InstallationList, error)
	ListInstallationRepos(ctx context.Context, token string, id int64) (*github.InstallationRepos, error)
	RequestDeviceCode(ctx context.Context, clientID, scope string) (*github.DeviceCode, error)
	PollDeviceToken(ctx context.Context, clientID, deviceCode string) (*github.AccessTokenResponse, error)
	ExchangeCode(ctx context.Context, in github.CodeExchange) (*github.AccessTokenResponse, error)
	RevokeToken(ctx context.Context, clientID, clientSecret, token string) error
	AuthorizeURL(clientID, redirectURI, state, codeChallenge string) string
}

// CredentialStore is where a successful authorization lands.
type CredentialStore interface {
	Get() *model.Credential
	Set(u credential.Update) (*model.Credential, error)
	Clear() error
}

// SessionStore persists the in-progress OAuth session.
type SessionStore interface {
	SaveOAuthSession(ctx context.Context, s model.OAuthSession) error
	GetOAuthSession(ctx context.Context) (*model.OAuthSession, error)
	DeleteOAuthSession(ctx context.Context) error
}

// stateMachine tracks the current State of a strategy.
type stateMachine struct {
	value *observe.Value[State]
}

func newStateMachine(initial State) stateMachine {
	return stateMachine{value: observe.NewValue(initial)}
}

// State returns the current state.
func (m stateMachine) State() State { return m.value.Get() }

// ObserveState emits the current state and every transition until ctx
// is done.
func (m stateMachine) ObserveState(ctx context.Context) <-chan State {
	return m.value.Subscribe(ctx)
}

func (m stateMachine) to(s State) { m.value.Set(s) }
