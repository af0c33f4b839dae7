package auth

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/gitjot/internal/model"
	"github.com/nhle/gitjot/internal/store"
	"github.com/nhle/gitjot/tests/testutil"
)

type webFixture struct {
	installations string
	repos         string
	exchanges     int
	verifier      string
}

func (f *webFixture) mux(t *testing.T) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.exchanges++
		f.verifier = r.PostForm.Get("code_verifier")
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "notetaker://callback", r.PostForm.Get("redirect_uri"))
		writeJSON(w, http.StatusOK, `{"access_token":"tok","token_type":"bearer"}`)
	})
	mux.HandleFunc("GET /user", userHandler)
	mux.HandleFunc("GET /user/installations", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, f.installations)
	})
	mux.HandleFunc("GET /user/installations/42/repositories", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, f.repos)
	})
	return mux
}

func newWebFlow(t *testing.T, f *webFixture, cfg WebConfig) (*WebFlow, *store.SQLiteStore) {
	t.Helper()
	sessions := testutil.NewTestStore(t)
	cfg.ClientID = "cid"
	cfg.ClientSecret = "secret"
	cfg.RedirectURI = "notetaker://callback"
	flow := NewWebFlow(newFakeGitHub(t, f.mux(t)), newCredentialStore(t), sessions, cfg, discardLogger())
	return flow, sessions
}

func TestCodeChallenge(t *testing.T) {
	// RFC 7636 appendix B.
	assert.Equal(t,
		"E9Melhoa2OwvFrEMTJguCQaoeSRdFXT5VKNhNqjl1A8",
		CodeChallenge("dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"))
}

func TestGenerateVerifierAndState(t *testing.T) {
	r := bytes.NewReader(bytes.Repeat([]byte{0xff}, 48))

	verifier, err := GenerateCodeVerifier(r)
	require.NoError(t, err)
	assert.Len(t, verifier, 43)
	assert.NotContains(t, verifier, "=")

	state, err := GenerateState(r)
	require.NoError(t, err)
	assert.Equal(t, "ffffffffffffffffffffffffffffffff", state)

	_, err = GenerateState(r)
	assert.Error(t, err)
}

func TestWebFlow_Begin(t *testing.T) {
	t.Run("authorize url", func(t *testing.T) {
		flow, sessions := newWebFlow(t, &webFixture{}, WebConfig{})

		raw, err := flow.Begin(context.Background())
		require.NoError(t, err)
		assert.Equal(t, StateAwaitingCallback, flow.State())

		sess, err := sessions.GetOAuthSession(context.Background())
		require.NoError(t, err)
		require.NotNil(t, sess)

		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "/login/oauth/authorize", u.Path)
		assert.Equal(t, sess.State, u.Query().Get("state"))
		assert.Equal(t, CodeChallenge(sess.CodeVerifier), u.Query().Get("code_challenge"))
		assert.Equal(t, "S256", u.Query().Get("code_challenge_method"))
	})

	t.Run("install url", func(t *testing.T) {
		flow, sessions := newWebFlow(t, &webFixture{}, WebConfig{
			AppInstallURL: "https://github.com/apps/gitjot/installations/new",
		})

		raw, err := flow.Begin(context.Background())
		require.NoError(t, err)

		sess, err := sessions.GetOAuthSession(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "https://github.com/apps/gitjot/installations/new?state="+sess.State, raw)
	})
}

func TestWebFlow_Complete(t *testing.T) {
	ctx := context.Background()
	fx := &webFixture{
		installations: `{"total_count":1,"installations":[{"id":42,"account":{"login":"octo"}}]}`,
		repos:         `{"total_count":1,"repositories":[{"name":"notes","full_name":"octo/notes","owner":{"login":"octo"}}]}`,
	}
	flow, sessions := newWebFlow(t, fx, WebConfig{})

	_, err := flow.Begin(ctx)
	require.NoError(t, err)
	sess, err := sessions.GetOAuthSession(ctx)
	require.NoError(t, err)

	cred, err := flow.Complete(ctx, "the-code", sess.State)
	require.NoError(t, err)
	assert.Equal(t, StateDone, flow.State())
	assert.Equal(t, sess.CodeVerifier, fx.verifier)
	assert.Equal(t, model.Credential{
		AccessToken:    "tok",
		Username:       "octo",
		RepoOwner:      "octo",
		RepoName:       "notes",
		AuthType:       model.AuthTypeOAuth,
		InstallationID: "42",
	}, *cred)

	left, err := sessions.GetOAuthSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, left)

	// The session is single-use.
	_, err = flow.Complete(ctx, "the-code", sess.State)
	require.ErrorIs(t, err, ErrOAuthSessionExpired)
	assert.Equal(t, 1, fx.exchanges)
}

func TestWebFlow_CompleteWithoutState(t *testing.T) {
	ctx := context.Background()
	fx := &webFixture{
		installations: `{"total_count":1,"installations":[{"id":42}]}`,
		repos:         `{"total_count":1,"repositories":[{"name":"notes","full_name":"octo/notes"}]}`,
	}
	flow, _ := newWebFlow(t, fx, WebConfig{})

	_, err := flow.Begin(ctx)
	require.NoError(t, err)

	cred, err := flow.Complete(ctx, "the-code", "")
	require.NoError(t, err)
	assert.Equal(t, "octo/notes", cred.RepoFullName())
}

func TestWebFlow_CompleteErrors(t *testing.T) {
	oneInstall := `{"total_count":1,"installations":[{"id":42}]}`

	tests := []struct {
		name  string
		fx    webFixture
		begin bool
		state string
		want  error
	}{
		{name: "no session", want: ErrOAuthSessionExpired},
		{name: "state mismatch", begin: true, state: "forged", want: ErrStateMismatch},
		{
			name:  "no installations",
			fx:    webFixture{installations: `{"total_count":0,"installations":[]}`},
			begin: true,
			want:  ErrInstallationNotFound,
		},
		{
			name:  "no repositories",
			fx:    webFixture{installations: oneInstall, repos: `{"total_count":0,"repositories":[]}`},
			begin: true,
			want:  ErrNoRepositoriesFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			flow, _ := newWebFlow(t, &tt.fx, WebConfig{})
			if tt.begin {
				_, err := flow.Begin(ctx)
				require.NoError(t, err)
			}

			_, err := flow.Complete(ctx, "the-code", tt.state)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, StateIdle, flow.State())
			assert.Nil(t, flow.creds.Get())
		})
	}
}

func TestWebFlow_ExpiredSession(t *testing.T) {
	ctx := context.Background()
	flow, sessions := newWebFlow(t, &webFixture{}, WebConfig{SessionTTL: 10 * time.Minute})

	_, err := flow.Begin(ctx)
	require.NoError(t, err)

	flow.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = flow.Complete(ctx, "the-code", "")
	require.ErrorIs(t, err, ErrOAuthSessionExpired)

	sess, err := sessions.GetOAuthSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestWebFlow_Cancel(t *testing.T) {
	ctx := context.Background()
	flow, sessions := newWebFlow(t, &webFixture{}, WebConfig{})

	_, err := flow.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, flow.Cancel(ctx))
	assert.Equal(t, StateIdle, flow.State())

	sess, err := sessions.GetOAuthSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)
}
