package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Setenv("ORS_API_KEY", "key")
	t.Setenv("DATABASE_URL", "postgres://localhost/zust")
	t.Setenv("ORS_MAX_DURATION_SECONDS", "7200")
	t.Setenv("ORS_SNAP_TIMEOUT", "3s")

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, "key", c.ORS.APIKey)
	assert.Equal(t, 7200, c.ORS.MaxDurationSeconds)
	assert.Equal(t, 3*time.Second, c.ORS.SnapTimeout)
	assert.Equal(t, 100, c.ORS.SnapRadiusMeters)
	assert.Equal(t, "Optimised routes", c.RoutesDir)
	assert.Equal(t, 15*time.Minute, c.HTTPWriteTimeout)
	assert.Equal(t, 5*time.Minute, c.ZoneLockTTL)
}

func TestLoadYAMLThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
port: "9090"
database_url: postgres://file/zust
ors:
  api_key: from-file
  timeout: 45s
  max_duration_seconds: 18000
routes_dir: /var/lib/routes
http_write_timeout: 30m
zone_lock_ttl: 20m
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("ORS_API_KEY", "from-env")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, "from-env", c.ORS.APIKey)
	assert.Equal(t, 45*time.Second, c.ORS.Timeout)
	assert.Equal(t, 18000, c.ORS.MaxDurationSeconds)
	assert.Equal(t, "/var/lib/routes", c.RoutesDir)
	assert.Equal(t, 30*time.Minute, c.HTTPWriteTimeout)
	assert.Equal(t, 20*time.Minute, c.ZoneLockTTL)
}

func TestLoadWriteTimeoutFromEnv(t *testing.T) {
	t.Setenv("ORS_API_KEY", "key")
	t.Setenv("DATABASE_URL", "postgres://localhost/zust")
	t.Setenv("HTTP_WRITE_TIMEOUT", "45m")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, c.HTTPWriteTimeout)

	t.Setenv("HTTP_WRITE_TIMEOUT", "0s")
	_, err = Load("")
	assert.ErrorContains(t, err, "http write timeout")
}

func TestLoadRequiresKeys(t *testing.T) {
	t.Setenv("ORS_API_KEY", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/zust")

	_, err := Load("")
	assert.ErrorContains(t, err, "ORS_API_KEY")
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	t.Setenv("ORS_API_KEY", "key")
	t.Setenv("DATABASE_URL", "postgres://localhost/zust")
	t.Setenv("SNAP_CONCURRENCY", "many")

	_, err := Load("")
	assert.ErrorContains(t, err, "SNAP_CONCURRENCY")
}

func TestGet(t *testing.T) {
	t.Setenv("ZUST_TEST_KEY", "")
	assert.Equal(t, "fallback", Get("ZUST_TEST_KEY", "fallback"))
	t.Setenv("ZUST_TEST_KEY", "set")
	assert.Equal(t, "set", Get("ZUST_TEST_KEY", "fallback"))
}
