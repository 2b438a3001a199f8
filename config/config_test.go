package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
source:
  contentServer:
    url: http://contentserver:8080
    rootId: home
    mimeTypes: [page, List]
    timeout: 2s
sse:
  keepaliveInterval: 5s
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://contentserver:8080", cfg.Source.ContentServer.URL)
	assert.Equal(t, []string{"page", "List"}, cfg.Source.ContentServer.MimeTypes)
	assert.Equal(t, 2*time.Second, cfg.Source.ContentServer.Timeout)
	assert.Equal(t, 5*time.Second, cfg.SSE.KeepaliveInterval)
	// defaults survive
	assert.Equal(t, "Root", cfg.Source.ContentServer.RootKey)
	assert.Equal(t, 100, cfg.SSE.BufferSize)
	assert.Equal(t, "/mcp", cfg.HTTP.Endpoint)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "source: [broken"))
	require.Error(t, err)

}

func TestValidate(t *testing.T) {
	cfg, err := Load(writeConfig(t, "document:\n  contentSelector: main\n"))
	require.NoError(t, err)
	assert.Equal(t, "main", cfg.Document.ContentSelector)
	require.Error(t, cfg.Validate())

	cfg, err = Load(writeConfig(t, "source:\n  contentServer:\n    url: http://cs\n"))
	require.NoError(t, err)
	require.Error(t, cfg.Validate())

	cfg.Source.File = "topics.yaml"
	require.NoError(t, cfg.Validate())

	cfg.SSE.BufferSize = -1
	require.Error(t, cfg.Validate())
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
