package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/Flowgraph/internal/engine"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "flowgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FLOWGRAPH_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.APIAddr())
	assert.Equal(t, ":8082", cfg.WorkerAddr())
	assert.Equal(t, int64(10<<20), cfg.API.MaxUploadBytes)

	opts, err := cfg.CompilerOptions()
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultOptions(), opts)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, `
version: 1
api:
  port: "9000"
compiler:
  duplicates: rename
  display: table
  trailing_sink: false
`)
	t.Setenv("API_PORT", "9100")
	t.Setenv("FLOWGRAPH_STRICT", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.APIAddr())

	opts, err := cfg.CompilerOptions()
	require.NoError(t, err)
	assert.Equal(t, engine.Options{
		Strict:         true,
		Duplicates:     engine.DuplicateRename,
		Merge:          engine.MergeLastWriteWins,
		Display:        engine.DisplayTable,
		NoTrailingSink: true,
	}, opts)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		wantErr error
	}{
		{
			name:    "bad version",
			file:    "version: 2\n",
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "bad strict",
			env:     map[string]string{"FLOWGRAPH_STRICT": "maybe"},
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "bad upload size",
			env:     map[string]string{"MAX_UPLOAD_BYTES": "-1"},
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "unknown policy",
			env:     map[string]string{"FLOWGRAPH_DUPLICATES": "ignore"},
			wantErr: engine.ErrUnknownOption,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("FLOWGRAPH_CONFIG", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeFile(t, tt.file)
			}

			_, err := Load(path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
