package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "pathfinder", cfg.Auth.JWTIssuer)
	assert.Equal(t, 24*time.Hour, cfg.Auth.JWTDuration)
	assert.Empty(t, cfg.Colleges.SourceURL)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "pathfinder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":9090"
db:
  path: /tmp/pf.db
colleges:
  source_url: https://example.test/colleges.json
`), 0o644))

	t.Setenv("PATHFINDER_DB_PATH", "/var/lib/pf.db")
	t.Setenv("PATHFINDER_JWT_TTL_HOURS", "2")
	t.Setenv("PATHFINDER_CORS_ORIGINS", "https://a.test, https://b.test,")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "/var/lib/pf.db", cfg.DB.Path)
	assert.Equal(t, "https://example.test/colleges.json", cfg.Colleges.SourceURL)
	assert.Equal(t, 2*time.Hour, cfg.Auth.JWTDuration)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.HTTP.CORSOrigins)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PATHFINDER_GRPC_ADDR=:7071\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("PATHFINDER_GRPC_ADDR") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7071", cfg.GRPC.Addr)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (stand-in for testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
