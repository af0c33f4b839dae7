package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/nhle/gitjot/internal/credential"
	"github.com/nhle/gitjot/internal/github"
	"github.com/nhle/gitjot/internal/model"
)

// WebConfig holds the OAuth app settings of the browser flow.
type WebConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// AppInstallURL, when set, is returned by Begin instead of the
	// authorize URL; installing the app then chains into authorization.
	AppInstallURL string

	// SessionTTL bounds how long a started attempt waits for its callback.
	SessionTTL time.Duration
}

// WebFlow runs the authorization-code flow with PKCE, discovering the
// target repository through the GitHub App installation.
type WebFlow struct {
	stateMachine
	api      API
	creds    CredentialStore
	sessions SessionStore
	cfg      WebConfig
	logger   *slog.Logger

	rand io.Reader
	now  func() time.Time
}

// NewWebFlow creates the PKCE strategy.
func NewWebFlow(api API, creds CredentialStore, sessions SessionStore, cfg WebConfig, logger *slog.Logger) *WebFlow {
	return &WebFlow{
		stateMachine: newStateMachine(StateIdle),
		api:          api,
		creds:        creds,
		sessions:     sessions,
		cfg:          cfg,
		logger:       logger,
		rand:         rand.Reader,
		now:          time.Now,
	}
}

// GenerateCodeVerifier returns 32 random bytes as unpadded base64url.
func GenerateCodeVerifier(r io.Reader) (string, error) {
	b := make([]byte, 32)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", fmt.Errorf("generating code verifier: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// CodeChallenge derives the S256 challenge of verifier.
func CodeChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// GenerateState returns 16 random bytes as lowercase hex.
func GenerateState(r io.Reader) (string, error) {
	b := make([]byte, 16)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", fmt.Errorf("generating state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Begin starts an attempt: it persists a fresh OAuth session and returns
// the URL the user must open.
func (f *WebFlow) Begin(ctx context.Context) (string, error) {
	verifier, err := GenerateCodeVerifier(f.rand)
	if err != nil {
		return "", err
	}
	state, err := GenerateState(f.rand)
	if err != nil {
		return "", err
	}

	err = f.sessions.SaveOAuthSession(ctx, model.OAuthSession{
		CodeVerifier: verifier,
		State:        state,
		CreatedAt:    f.now(),
	})
	if err != nil {
		return "", err
	}

	f.to(StateAwaitingCallback)

	if f.cfg.AppInstallURL != "" {
		u, err := url.Parse(f.cfg.AppInstallURL)
		if err != nil {
			return "", fmt.Errorf("parsing app install URL: %w", err)
		}
		q := u.Query()
		q.Set("state", state)
		u.RawQuery = q.Encode()
		return u.String(), nil
	}

	return f.api.AuthorizeURL(f.cfg.ClientID, f.cfg.RedirectURI, state, CodeChallenge(verifier)), nil
}

// Cancel abandons the pending attempt and clears its session.
func (f *WebFlow) Cancel(ctx context.Context) error {
	if err := f.sessions.DeleteOAuthSession(ctx); err != nil {
		return err
	}
	f.to(StateIdle)
	return nil
}

// Authorize completes the attempt with the callback's code and state.
func (f *WebFlow) Authorize(ctx context.Context, in Input) (*model.Credential, error) {
	return f.Complete(ctx, in.Code, in.State)
}

// Complete handles the redirect back from GitHub. The state parameter is
// only checked when the callback carries one: installation-driven
// redirects omit it, and possession of the code verifier binds the code.
func (f *WebFlow) Complete(ctx context.Context, code, state string) (*model.Credential, error) {
	cred, err := f.complete(ctx, code, state)
	if err != nil {
		f.to(StateIdle)
		return nil, err
	}
	f.to(StateDone)
	return cred, nil
}

func (f *WebFlow) complete(ctx context.Context, code, state string) (*model.Credential, error) {
	sess, err := f.sessions.GetOAuthSession(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrOAuthSessionExpired
	}
	if sess.Expired(f.now(), f.cfg.SessionTTL) {
		if err := f.sessions.DeleteOAuthSession(ctx); err != nil {
			f.logger.Warn("deleting expired oauth session", "error", err)
		}
		return nil, ErrOAuthSessionExpired
	}
	if state != "" && state != sess.State {
		return nil, ErrStateMismatch
	}

	f.to(StateExchanging)

	tok, err := f.api.ExchangeCode(ctx, github.CodeExchange{
		ClientID:     f.cfg.ClientID,
		ClientSecret: f.cfg.ClientSecret,
		Code:         code,
		RedirectURI:  f.cfg.RedirectURI,
		CodeVerifier: sess.CodeVerifier,
	})
	if err != nil {
		return nil, err
	}

	f.to(StateRepoDiscovery)

	user, err := f.api.GetUser(ctx, tok.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("fetching user: %w", err)
	}

	installs, err := f.api.ListInstallations(ctx, tok.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("listing installations: %w", err)
	}
	if len(installs.Installations) == 0 {
		return nil, ErrInstallationNotFound
	}
	install := installs.Installations[0]

	repos, err := f.api.ListInstallationRepos(ctx, tok.AccessToken, install.ID)
	if err != nil {
		return nil, fmt.Errorf("listing installation repositories: %w", err)
	}
	if len(repos.Repositories) == 0 {
		return nil, ErrNoRepositoriesFound
	}
	repo := repos.Repositories[0]

	owner, name := repo.Owner.Login, repo.Name
	if owner == "" {
		owner, name, _ = splitFullName(repo.FullName)
	}

	cred, err := f.creds.Set(credential.Full(model.Credential{
		AccessToken:    tok.AccessToken,
		Username:       user.Login,
		RepoOwner:      owner,
		RepoName:       name,
		AuthType:       model.AuthTypeOAuth,
		InstallationID: strconv.FormatInt(install.ID, 10),
	}))
	if err != nil {
		return nil, fmt.Errorf("saving credential: %w", err)
	}

	if err := f.sessions.DeleteOAuthSession(ctx); err != nil {
		f.logger.Warn("clearing oauth session", "error", err)
	}

	f.logger.Info("signed in with GitHub App",
		"user", user.Login, "repo", owner+"/"+name, "installation", install.ID)
	return cred, nil
}
