package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nhle/gitjot/internal/model"
)

// RevokeTimeout bounds the best-effort token revocation at sign-out.
const RevokeTimeout = 5 * time.Second

// RunCanceller aborts any in-flight background sync run.
type RunCanceller interface {
	CancelRuns()
}

// Wiper deletes locally held user data.
type Wiper interface {
	Clear(ctx context.Context) error
}

// Method names an authorization strategy.
type Method string

const (
	MethodPAT    Method = "pat"
	MethodDevice Method = "device"
	MethodWeb    Method = "web"
)

// ManagerConfig wires the Manager to its collaborators.
type ManagerConfig struct {
	API         API
	Credentials CredentialStore
	Sessions    SessionStore

	ClientID     string
	ClientSecret string
	Scope        string
	Web          WebConfig

	// Runs is cancelled on sign-out; may be nil.
	Runs RunCanceller

	// Queue and History are cleared on sign-out with WipeData.
	Queue   Wiper
	History Wiper

	Logger *slog.Logger
}

// Manager owns the authorization strategies and the sign-out sequence.
type Manager struct {
	cfg    ManagerConfig
	pat    *PATFlow
	device *DeviceFlow
	web    *WebFlow
}

// NewManager builds one instance of each strategy.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Web.ClientID == "" {
		cfg.Web.ClientID = cfg.ClientID
	}
	if cfg.Web.ClientSecret == "" {
		cfg.Web.ClientSecret = cfg.ClientSecret
	}
	return &Manager{
		cfg:    cfg,
		pat:    NewPATFlow(cfg.API, cfg.Credentials, cfg.Logger),
		device: NewDeviceFlow(cfg.API, cfg.Credentials, cfg.ClientID, cfg.Scope, cfg.Logger),
		web:    NewWebFlow(cfg.API, cfg.Credentials, cfg.Sessions, cfg.Web, cfg.Logger),
	}
}

// PAT returns the personal-access-token strategy.
func (m *Manager) PAT() *PATFlow { return m.pat }

// Device returns the device-code strategy.
func (m *Manager) Device() *DeviceFlow { return m.device }

// Web returns the PKCE strategy.
func (m *Manager) Web() *WebFlow { return m.web }

// Authorizer returns the strategy registered for method.
func (m *Manager) Authorizer(method Method) (Authorizer, error) {
	switch method {
	case MethodPAT:
		return m.pat, nil
	case MethodDevice:
		return m.device, nil
	case MethodWeb:
		return m.web, nil
	}
	return nil, fmt.Errorf("unknown sign-in method %q", method)
}

// SignedIn reports whether a credential is stored.
func (m *Manager) SignedIn() bool {
	return m.cfg.Credentials.Get() != nil
}

// SignOutOptions controls what sign-out removes besides the credential.
type SignOutOptions struct {
	// WipeData also deletes queued notes and the submission history.
	WipeData bool
}

// SignOut revokes an OAuth token (best effort), stops background work,
// optionally wipes local data and clears the credential. Only local
// storage failures are returned.
func (m *Manager) SignOut(ctx context.Context, opts SignOutOptions) error {
	logger := m.cfg.Logger
	cred := m.cfg.Credentials.Get()

	if cred != nil && cred.AuthType == model.AuthTypeOAuth {
		m.revoke(ctx, cred)
	}

	if m.cfg.Runs != nil {
		m.cfg.Runs.CancelRuns()
	}

	if opts.WipeData {
		if m.cfg.Queue != nil {
			if err := m.cfg.Queue.Clear(ctx); err != nil {
				return fmt.Errorf("clearing pending notes: %w", err)
			}
		}
		if m.cfg.History != nil {
			if err := m.cfg.History.Clear(ctx); err != nil {
				return fmt.Errorf("clearing submission history: %w", err)
			}
		}
	}

	if m.cfg.Sessions != nil {
		if err := m.cfg.Sessions.DeleteOAuthSession(ctx); err != nil {
			logger.Warn("clearing oauth session", "error", err)
		}
	}

	if err := m.cfg.Credentials.Clear(); err != nil {
		return fmt.Errorf("clearing credential: %w", err)
	}

	logger.Info("signed out", "wipe", opts.WipeData)
	return nil
}

// revoke invalidates the token with the OAuth app that issued it. Tokens
// from the browser flow carry an installation id and belong to the web
// app; device-flow tokens belong to the default client.
func (m *Manager) revoke(ctx context.Context, cred *model.Credential) {
	clientID, secret := m.cfg.ClientID, m.cfg.ClientSecret
	if cred.InstallationID != "" {
		clientID, secret = m.cfg.Web.ClientID, m.cfg.Web.ClientSecret
	}
	if clientID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), RevokeTimeout)
	defer cancel()

	if err := m.cfg.API.RevokeToken(ctx, clientID, secret, cred.AccessToken); err != nil {
		m.cfg.Logger.Warn("revoking token", "error", err, "client_id", clientID)
	}
}
