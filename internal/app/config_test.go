package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	f := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(f, []byte(body), 0644))
	return f
}

func TestLoadConfig_Defaults(t *testing.T) {
	f := writeConfig(t, "server:\n  run-mode: debug\n")

	c, path, err := LoadConfig(f)
	require.NoError(t, err)
	assert.Equal(t, f, path)
	assert.Equal(t, "debug", c.Server.RunMode)
	assert.Equal(t, ":9100", c.Server.HttpPort)
	assert.Equal(t, "sqlite", c.Database.Type)
	assert.True(t, c.Database.AutoMigrate)
	assert.Equal(t, "X-Trace-ID", c.Tracer.Header)
	assert.Equal(t, 30*24*time.Hour, c.GetTokenExpiry())
	assert.True(t, c.GetDatabaseConfig().Debug)
	assert.False(t, c.GetDatabaseConfig().Tracing)
}

func TestLoadConfig_ExplicitFalseKept(t *testing.T) {
	f := writeConfig(t, "tracer:\n  enabled: false\nrate-limit:\n  enabled: false\n")

	c, _, err := LoadConfig(f)
	require.NoError(t, err)
	assert.False(t, c.Tracer.Enabled)
	assert.False(t, c.RateLimit.Enabled)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv(EnvAuthTokenKey, "from-env")
	t.Setenv(EnvDatabaseType, "postgres")
	t.Setenv(EnvHttpPort, "8080")

	c, _, err := LoadConfig(writeConfig(t, "security:\n  auth-token-key: from-file\n"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.Security.AuthTokenKey)
	assert.Equal(t, "postgres", c.Database.Type)
	assert.Equal(t, ":8080", c.Server.HttpPort)
	assert.False(t, c.GetWriteQueueConfig().Shared)
}

func TestLoadConfig_Missing(t *testing.T) {
	_, _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfigSave(t *testing.T) {
	f := writeConfig(t, "app:\n  default-lang: en\n")
	c, _, err := LoadConfig(f)
	require.NoError(t, err)

	c.App.DefaultLang = "zh-cn"
	require.NoError(t, c.Save())

	data, err := os.ReadFile(f)
	require.NoError(t, err)
	var saved AppConfig
	require.NoError(t, yaml.Unmarshal(data, &saved))
	assert.Equal(t, "zh-cn", saved.App.DefaultLang)
}

func TestGetWriteQueueConfig(t *testing.T) {
	c := &AppConfig{}
	c.Database.Type = "sqlite"
	c.WriteQueue.Timeout = "5s"
	c.WriteQueue.IdleTime = "bogus"

	wq := c.GetWriteQueueConfig()
	assert.True(t, wq.Shared)
	assert.Equal(t, 5*time.Second, wq.WriteTimeout)
	assert.Equal(t, 10*time.Minute, wq.IdleTimeout)
	assert.Equal(t, 100, wq.QueueCapacity)
}
