package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "127.0.0.1:7677", cfg.Control.ListenAddr)
	assert.Equal(t, 15*time.Second, cfg.Server.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Session.RecheckInterval)
	assert.Equal(t, 900*time.Millisecond, cfg.Panic.HoldDuration)
	assert.True(t, cfg.Session.AllowLegacyAccessWithoutLicense)
}

func TestLoadEnvOverridesNestedKeys(t *testing.T) {
	t.Setenv("VIGIA_SERVER_BASEURL", "https://staging.example.com:5001")
	t.Setenv("VIGIA_SESSION_RECHECKINTERVAL", "90s")
	t.Setenv("VIGIA_PANIC_OPERATORNUMBER", "3519998877")
	t.Setenv("VIGIA_SESSION_ALLOWLEGACYACCESSWITHOUTLICENSE", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://staging.example.com:5001", cfg.Server.BaseURL)
	assert.Equal(t, 90*time.Second, cfg.Session.RecheckInterval)
	assert.Equal(t, "3519998877", cfg.Panic.OperatorNumber)
	assert.False(t, cfg.Session.AllowLegacyAccessWithoutLicense)
}
