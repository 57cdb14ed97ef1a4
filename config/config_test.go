package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aigent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
storage:
  backend: file
  data_dir: /tmp/aigent
llm:
  provider: gemini
  breaker_open_for: 10s
`), 0o644))

	t.Setenv("DATA_DIR", "/var/lib/aigent")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:5173, http://localhost:3000")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "/var/lib/aigent", cfg.Storage.DataDir)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 10*time.Second, cfg.LLM.BreakerOpenFor)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.Server.AllowedOrigins)
	// untouched defaults survive
	assert.Equal(t, "base-sepolia", cfg.Wallet.Network)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "mongo")
	t.Setenv("AIGENT_CONFIG", "")
	_, err := Load("")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad provider", func(c *Config) { c.LLM.Provider = "ollama" }},
		{"bad network", func(c *Config) { c.Wallet.Network = "goerli" }},
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"no turns", func(c *Config) { c.LLM.MaxTurns = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestInvalidEnvNumberIgnored(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}
