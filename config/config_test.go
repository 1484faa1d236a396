package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/homerec/catalog"
	"github.com/rushteam/homerec/rank"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "homerec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, rank.DefaultWeights(), cfg.Rank.Weights())
	assert.Equal(t, rank.DefaultTopK, cfg.Rank.TopK)
	assert.Equal(t, catalog.SourceJSON, cfg.Catalog.Source)
	assert.Equal(t, BehaviorNone, cfg.Behavior.Source)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout)
	assert.Greater(t, cfg.Session.HistoryLimit, 0)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
  read_timeout: 3s
rank:
  w_image: 0.5
  w_user: 0
  top_k: 8
embedding:
  format: parquet
  embeddings_path: data/emb.parquet
logging:
  level: debug
`)
	t.Setenv("HOMEREC_RANK__W_IMAGE", "0.7")
	t.Setenv("HOMEREC_SERVER__RATE_LIMIT", "0")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 0, cfg.Server.RateLimit)
	assert.InDelta(t, 0.7, cfg.Rank.WImage, 1e-9, "env overrides file")
	assert.InDelta(t, 0.2, cfg.Rank.WCatBrand, 1e-9, "default kept")
	assert.Zero(t, cfg.Rank.WUser)
	assert.Equal(t, 8, cfg.Rank.TopK)
	assert.Equal(t, "parquet", cfg.Embedding.Format)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults ok", mutate: func(*Config) {}},
		{
			name:    "negative weight",
			mutate:  func(c *Config) { c.Rank.WHistory = -0.1 },
			wantErr: "rank.w_history",
		},
		{
			name:    "zero top_k",
			mutate:  func(c *Config) { c.Rank.TopK = 0 },
			wantErr: "rank.top_k",
		},
		{
			name:    "unknown embedding format",
			mutate:  func(c *Config) { c.Embedding.Format = "hdf5" },
			wantErr: "embedding.format",
		},
		{
			name:    "postgres catalog without dsn",
			mutate:  func(c *Config) { c.Catalog.Source = catalog.SourcePostgres },
			wantErr: "postgres.dsn",
		},
		{
			name:    "redis behavior without addr",
			mutate:  func(c *Config) { c.Behavior.Source = BehaviorRedis },
			wantErr: "redis.addr",
		},
		{
			name:    "unknown behavior source",
			mutate:  func(c *Config) { c.Behavior.Source = "kafka" },
			wantErr: "behavior.source",
		},
		{
			name: "redis behavior with addr",
			mutate: func(c *Config) {
				c.Behavior.Source = BehaviorRedis
				c.Redis.Addr = "localhost:6379"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "rank.w_image", envKey("HOMEREC_RANK__W_IMAGE"))
	assert.Equal(t, "server.addr", envKey("HOMEREC_SERVER__ADDR"))
}
