package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/catalog.yaml")
	require.NoError(t, err)

	assert.Equal(t, 8084, cfg.Server.Port)
	assert.Equal(t, "none", cfg.Archive.Type)
	assert.False(t, cfg.Snapshot.DailyRunEnabled)
	assert.Equal(t, "02:00", cfg.Snapshot.DailyRunTime)
	assert.False(t, cfg.Cache.Enabled)
	assert.False(t, cfg.Catalog.AcceptRejectsOthers)
}

func TestLoadConfigOverlaysFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	content := `
server:
  port: 9000
archive:
  type: mysql
  mysql:
    host: db.internal
    port: 3306
    user: catalog
    database: catalog_db
snapshot:
  daily_run_enabled: true
  daily_run_time: "03:30"
cache:
  enabled: true
  addr: redis.internal:6379
  ttl_seconds: 120
catalog:
  accept_rejects_others: true
  seed_file: config/seed.yaml
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Archive.Type)
	assert.Equal(t, "db.internal", cfg.Archive.MySQL.Host)
	assert.True(t, cfg.Snapshot.DailyRunEnabled)
	assert.Equal(t, "03:30", cfg.Snapshot.DailyRunTime)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, float64(120), cfg.Cache.GetTTL().Seconds())
	assert.True(t, cfg.Catalog.AcceptRejectsOthers)
	assert.Equal(t, "config/seed.yaml", cfg.Catalog.SeedFile)

	// Untouched sections keep their defaults
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowOrigins)
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}
