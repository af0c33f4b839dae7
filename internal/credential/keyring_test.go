package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/gitjot/internal/model"
)

func TestBackends(t *testing.T) {
	all, err := backends("")
	require.NoError(t, err)
	assert.Equal(t, platformBackends, all)

	file, err := backends(" File ")
	require.NoError(t, err)
	assert.Equal(t, []keyring.BackendType{keyring.FileBackend}, file)

	_, err = backends("floppy")
	assert.Error(t, err)
}

func TestOpenKeyring_FileBackendPersists(t *testing.T) {
	opts := KeyringOptions{Backend: "file", FileDir: t.TempDir(), FilePassword: "secret"}

	ring, err := OpenKeyring(opts)
	require.NoError(t, err)
	s, err := NewStore(ring)
	require.NoError(t, err)
	_, err = s.Set(Full(model.Credential{
		AccessToken: "tok",
		Username:    "octo",
		RepoOwner:   "octo",
		RepoName:    "notes",
		AuthType:    model.AuthTypePAT,
	}))
	require.NoError(t, err)

	reopened, err := OpenKeyring(opts)
	require.NoError(t, err)
	s2, err := NewStore(reopened)
	require.NoError(t, err)
	require.NotNil(t, s2.Get())
	assert.Equal(t, "octo/notes", s2.Get().RepoFullName())
}
