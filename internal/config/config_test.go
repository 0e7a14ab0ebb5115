package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".mcpdex.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("full config", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `
[api]
addr = "127.0.0.1:9000"
shutdown_timeout = "10s"

[api.cors]
enable = true
allow_origins = ["https://agents.example.com"]
max_age = "10m"

[store]
path = "/var/lib/mcpdex/store.db"

[health]
interval = "1m"
probe_timeout = "3s"
concurrency = 8

[verify]
lookup_timeout = "2s"
challenge_ttl = "48h"
`)

		loader := &DefaultLoader{}
		cfg, err := loader.Load(path)
		require.NoError(t, err)

		require.NotNil(t, cfg.API)
		require.Equal(t, "127.0.0.1:9000", *cfg.API.Addr)
		require.Equal(t, 10*time.Second, cfg.API.ShutdownTimeout.Value(0))
		require.NotNil(t, cfg.API.CORS)
		require.True(t, *cfg.API.CORS.Enable)
		require.Equal(t, []string{"https://agents.example.com"}, cfg.API.CORS.Origins)
		require.Equal(t, 10*time.Minute, cfg.API.CORS.MaxAge.Value(0))

		require.NotNil(t, cfg.Store)
		require.Equal(t, "/var/lib/mcpdex/store.db", *cfg.Store.Path)

		require.NotNil(t, cfg.Health)
		require.Equal(t, time.Minute, cfg.Health.Interval.Value(0))
		require.Equal(t, 3*time.Second, cfg.Health.ProbeTimeout.Value(0))
		require.Equal(t, int64(8), *cfg.Health.Concurrency)

		require.NotNil(t, cfg.Verify)
		require.Equal(t, 2*time.Second, cfg.Verify.LookupTimeout.Value(0))
		require.Equal(t, 48*time.Hour, cfg.Verify.ChallengeTTL.Value(0))
	})

	t.Run("missing file yields empty config", func(t *testing.T) {
		t.Parallel()

		loader := &DefaultLoader{}
		cfg, err := loader.Load(filepath.Join(t.TempDir(), "absent.toml"))
		require.NoError(t, err)
		require.Nil(t, cfg.API)
		require.Nil(t, cfg.Store)
		require.Nil(t, cfg.Health)
		require.Nil(t, cfg.Verify)
	})

	t.Run("empty path is rejected", func(t *testing.T) {
		t.Parallel()

		loader := &DefaultLoader{}
		_, err := loader.Load("   ")
		require.ErrorContains(t, err, "config path cannot be empty")
	})

	t.Run("malformed toml is rejected", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `[api`)
		loader := &DefaultLoader{}
		_, err := loader.Load(path)
		require.ErrorContains(t, err, "failed to decode config")
	})

	t.Run("bad duration is rejected", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `
[health]
interval = "soon"
`)
		loader := &DefaultLoader{}
		_, err := loader.Load(path)
		require.Error(t, err)
	})
}

func TestDurationValue(t *testing.T) {
	t.Parallel()

	var d *Duration
	require.Equal(t, 5*time.Second, d.Value(5*time.Second))

	set := Duration(time.Minute)
	require.Equal(t, time.Minute, set.Value(5*time.Second))
}
