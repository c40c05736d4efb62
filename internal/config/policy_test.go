package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/caarlos0/env/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPolicy_EmptyPathUsesDefaults(t *testing.T) {
	p, err := LoadPolicy("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy(), p)
}

func TestLoadPolicy_MissingFileUsesDefaults(t *testing.T) {
	p, err := LoadPolicy(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy(), p)
}

func TestLoadPolicy_OverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
suggested_reasons:
  - "Wrong file format"
  - "Other"
`), 0o600))

	p, err := LoadPolicy(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Wrong file format", "Other"}, p.SuggestedReasons)
	assert.Equal(t, DefaultPolicy().Summary, p.Summary)
}

func TestLoadPolicy_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("summary: [unterminated"), 0o600))

	_, err := LoadPolicy(path)
	require.Error(t, err)
}

func TestConfig_EnvParsing(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("AUDIT_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("PAYPAL_CLIENT_ID", "id")
	t.Setenv("PAYPAL_CLIENT_SECRET", "secret")
	t.Setenv("S3_BUCKET", "assets")

	cfg := &Config{}
	require.NoError(t, env.Parse(cfg))

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Audit.KafkaBrokers)
	assert.True(t, cfg.Paypal.Enabled())
	assert.False(t, cfg.BrainTree.Enabled())
	assert.Equal(t, "assets", cfg.Storage.Bucket)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, "log", cfg.Audit.Sink)
	assert.True(t, cfg.Environment.IsDevelopment())
}
