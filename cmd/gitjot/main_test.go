package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCallback(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantCode  string
		wantState string
		wantErr   string
	}{
		{name: "code and state", raw: "notetaker://callback?code=abc&state=xyz", wantCode: "abc", wantState: "xyz"},
		{name: "code only", raw: "notetaker://callback?code=abc", wantCode: "abc"},
		{name: "denied", raw: "notetaker://callback?error=access_denied&error_description=nope", wantErr: "access_denied: nope"},
		{name: "no code", raw: "notetaker://callback?state=xyz", wantErr: "no code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, state, err := parseCallback(tt.raw)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantState, state)
		})
	}
}

func TestRun_Usage(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"help"}, &out))

	for name := range commands {
		assert.Contains(t, out.String(), name)
	}
	assert.Contains(t, out.String(), "--config")
}

func TestRun_UnknownCommand(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	err := run(context.Background(), []string{"--config", cfg, "frobnicate"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestRun_ConfigInit(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "gitjot", "config.yaml")
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), []string{"--config", cfg, "config", "init"}, &out))
	assert.Contains(t, out.String(), cfg)

	err := run(context.Background(), []string{"--config", cfg, "config", "init"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, run(context.Background(), []string{"--config", cfg, "config", "init", "--force"}, &out))
}

func TestNoteText(t *testing.T) {
	text, err := noteText(context.Background(), nil, []string{"buy", "milk"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "buy milk", text)

	text, err = noteText(context.Background(), nil, []string{"-"}, strings.NewReader("from\nstdin\n"))
	require.NoError(t, err)
	assert.Equal(t, "from\nstdin\n", text)
}
