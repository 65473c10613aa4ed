package config_test

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildgate/guildgate/config"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AAD_CLIENT_ID", "client-id")
	t.Setenv("AAD_CLIENT_SECRET", "client-secret")
	t.Setenv("AAD_ALLOWED_TENANT", "tenant-id")
	t.Setenv("BOT_TOKEN", "bot-token")
}

func TestAppConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	var cfg config.AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, 3000, cfg.HTTP.Port)
	assert.Equal(t, ":3000", cfg.HTTP.Addr())
	assert.Equal(t, "http://localhost:3000", cfg.HTTP.BaseURL)
	assert.Equal(t, "http://localhost:3000/redirect", cfg.HTTP.RedirectURL())
	assert.Equal(t, 15*time.Minute, cfg.TokenWindow)
	assert.Equal(t, config.StoreModeMemory, cfg.Session.Store)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, "Verified", cfg.Bot.VerifiedRoleName)
	assert.Empty(t, cfg.TokenPassphrase)
}

func TestAppConfig_MissingRequired(t *testing.T) {
	t.Setenv("AAD_CLIENT_ID", "client-id")
	// AAD_CLIENT_SECRET, AAD_ALLOWED_TENANT and BOT_TOKEN deliberately unset.
	t.Setenv("AAD_CLIENT_SECRET", "")
	t.Setenv("AAD_ALLOWED_TENANT", "")
	t.Setenv("BOT_TOKEN", "")

	var cfg config.AppConfig
	err := env.Parse(&cfg)
	require.Error(t, err)
}

func TestAppConfig_EmptyRequiredIsFatal(t *testing.T) {
	setRequiredEnv(t)
	// Set but empty must be rejected the same as unset.
	t.Setenv("BOT_TOKEN", "")

	var cfg config.AppConfig
	err := env.Parse(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOT_TOKEN")
}

func TestAzureConfig_Authority(t *testing.T) {
	azure := config.AzureConfig{AllowedTenant: "11111111-2222-3333-4444-555555555555"}
	assert.Equal(t,
		"https://login.microsoftonline.com/11111111-2222-3333-4444-555555555555/v2.0",
		azure.Authority())
}

func TestStoreMode_UnmarshalText(t *testing.T) {
	var m config.StoreMode
	require.NoError(t, m.UnmarshalText([]byte("REDIS")))
	assert.Equal(t, config.StoreModeRedis, m)

	require.NoError(t, m.UnmarshalText([]byte("memory")))
	assert.Equal(t, config.StoreModeMemory, m)

	err := m.UnmarshalText([]byte("postgres"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid StoreMode")
}

func TestSanitize_Guardrails(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "-1")
	t.Setenv("BASE_URL", "https://verify.example.com/")
	t.Setenv("SESSION_TTL", "0s")
	t.Setenv("TOKEN_WINDOW", "0s")

	var cfg config.AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, 3000, cfg.HTTP.Port)
	assert.Equal(t, "https://verify.example.com", cfg.HTTP.BaseURL)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, 15*time.Minute, cfg.TokenWindow)
}
