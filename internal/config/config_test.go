package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/progressive/internal/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestNew(t *testing.T) {
	cfg := New()

	assert.Equal(t, DefaultHost, cfg.Server.Host)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultShutdownTimeout, cfg.Server.ShutdownTimeout)
	assert.Equal(t, DefaultMetricsPath, cfg.Server.MetricsPath)
	assert.Equal(t, DefaultPoolSize, cfg.Render.PoolSize)
	assert.Equal(t, "adler32", cfg.Render.Checksum)
	assert.False(t, cfg.Render.Static)
	assert.False(t, cfg.Publishing())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `{
		"server": {"host": "0.0.0.0", "port": 8080, "shutdown_timeout": "3s"},
		"render": {"pool_size": 4, "checksum": "XXHash", "header": "<!DOCTYPE html>"},
		"publish": {"bucket": "pages", "prefix": "site/"}
	}`)

	cfg, err := Load(nil, path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 4, cfg.Render.PoolSize)
	assert.Equal(t, "xxhash", cfg.Render.Checksum)
	assert.Equal(t, "<!DOCTYPE html>", cfg.Render.Header)
	assert.True(t, cfg.Publishing())
	assert.Equal(t, "site/", cfg.Publish.Prefix)

	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultMetricsPath, cfg.Server.MetricsPath)
	assert.Equal(t, DefaultWSBufferSize, cfg.Server.ReadBufferSize)
	assert.Equal(t, DefaultPublishRegion, cfg.Publish.Region)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	path := writeConfig(t, `{"server": {"port": 8080}}`)
	t.Setenv("PROGRESSIVE_SERVER_PORT", "9100")
	t.Setenv("PROGRESSIVE_RENDER_STATIC", "true")
	t.Setenv("PROGRESSIVE_PUBLISH_BUCKET", "from-env")

	cfg, err := Load(nil, path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.True(t, cfg.Render.Static)
	assert.Equal(t, "from-env", cfg.Publish.Bucket)
}

func TestLoadSetOverridesFile(t *testing.T) {
	path := writeConfig(t, `{"render": {"pool_size": 4}}`)

	v := NewViper()
	v.Set("render.pool_size", 0)

	cfg, err := Load(v, path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Render.PoolSize)
}

func TestLoadWithoutFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Path())
	assert.Equal(t, DefaultPort, cfg.Server.Port)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		code string
	}{
		{"missing file", func(t *testing.T) string {
			return filepath.Join(t.TempDir(), "nope.json")
		}, "C001"},
		{"invalid json", func(t *testing.T) string {
			return writeConfig(t, "not valid json")
		}, "C001"},
		{"port out of range", func(t *testing.T) string {
			return writeConfig(t, `{"server": {"port": 70000}}`)
		}, "C002"},
		{"unknown checksum", func(t *testing.T) string {
			return writeConfig(t, `{"render": {"checksum": "md5"}}`)
		}, "C002"},
		{"negative pool", func(t *testing.T) string {
			return writeConfig(t, `{"render": {"pool_size": -1}}`)
		}, "C002"},
		{"relative metrics path", func(t *testing.T) string {
			return writeConfig(t, `{"server": {"metrics_path": "metrics"}}`)
		}, "C002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(nil, tt.path(t))
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.New(tt.code))
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := New()
	cfg.Server.MetricsPath = ""
	assert.NoError(t, cfg.Validate(), "empty metrics path disables the endpoint")

	cfg.Server.ShutdownTimeout = -time.Second
	assert.Error(t, cfg.Validate())
}
