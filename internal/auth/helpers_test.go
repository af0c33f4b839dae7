package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/require"

	"github.com/nhle/gitjot/internal/credential"
	"github.com/nhle/gitjot/internal/github"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newFakeGitHub serves mux as both the REST and OAuth host.
func newFakeGitHub(t *testing.T, mux *http.ServeMux) *github.Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return github.NewClient(srv.URL, srv.URL, 5*time.Second)
}

func newCredentialStore(t *testing.T) *credential.Store {
	t.Helper()
	s, err := credential.NewStore(keyring.NewArrayKeyring(nil))
	require.NoError(t, err)
	return s
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// userHandler answers GET /user for token "tok" with login octo.
func userHandler(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer tok" {
		writeJSON(w, http.StatusUnauthorized, `{"message":"Bad credentials"}`)
		return
	}
	writeJSON(w, http.StatusOK, `{"login":"octo"}`)
}
