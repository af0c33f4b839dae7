package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/gitjot/internal/auth"
	"github.com/nhle/gitjot/internal/github"
)

func TestValidators(t *testing.T) {
	assert.Error(t, validateRequired("Token")("  "))
	assert.NoError(t, validateRequired("Token")("ghp_x"))

	assert.NoError(t, validateRepo("octo/notes"))
	assert.NoError(t, validateRepo("https://github.com/octo/notes.git"))
	assert.ErrorIs(t, validateRepo("notes"), auth.ErrInvalidRepoFormat)
}

func TestRepoOptions(t *testing.T) {
	opts := repoOptions([]github.Repository{
		{FullName: "octo/notes"},
		{FullName: "octo/private", Private: true},
	})
	require.Len(t, opts, 2)
	assert.Equal(t, "octo/notes", opts[0].Key)
	assert.Equal(t, "octo/private (private)", opts[1].Key)
	assert.Equal(t, 1, opts[1].Value)
}

func TestSelectRepo_WithoutPrompt(t *testing.T) {
	_, err := SelectRepo(nil)
	assert.ErrorIs(t, err, auth.ErrNoRepoSelected)

	only := github.Repository{FullName: "octo/notes"}
	got, err := SelectRepo([]github.Repository{only})
	require.NoError(t, err)
	assert.Equal(t, only, got)
}
