package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteConfig_IsConfigured(t *testing.T) {
	cases := []struct {
		name string
		cfg  RemoteConfig
		want bool
	}{
		{"completo", RemoteConfig{DatabaseURL: "postgres://u:p@h/db", ProjectID: "tarifas"}, true},
		{"sin url", RemoteConfig{ProjectID: "tarifas"}, false},
		{"sin proyecto", RemoteConfig{DatabaseURL: "postgres://u:p@h/db"}, false},
		{"url undefined", RemoteConfig{DatabaseURL: "undefined", ProjectID: "tarifas"}, false},
		{"proyecto undefined", RemoteConfig{DatabaseURL: "postgres://u:p@h/db", ProjectID: "undefined"}, false},
		{"solo espacios", RemoteConfig{DatabaseURL: "  ", ProjectID: " "}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.cfg.IsConfigured())
		})
	}
}

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, CacheDriverSQLite, cfg.Cache.Driver)
	assert.Equal(t, "ConsultaTarifasDB_v11", cfg.Cache.StoreName)
	assert.Equal(t, 15*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.InDelta(t, 0.7, cfg.AI.Temperature, 0.0001)
	assert.Equal(t, AIProviderGemini, cfg.AI.Provider)
	assert.False(t, cfg.Remote.IsConfigured())
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_ValoresDesdeEnv(t *testing.T) {
	v := viper.New()
	v.Set("HTTP_PORT", "9090")
	v.Set("AI_TEMPERATURE", "0.2")
	v.Set("REMOTE_TIMEOUT_SECONDS", "5")
	v.Set("CACHE_DRIVER", "REDIS")
	v.Set("REDIS_URL", "redis://localhost:6379/0")
	v.Set("AI_PROVIDER", "Anthropic")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, AIProviderAnthropic, cfg.AI.Provider)
	assert.Equal(t, "claude-3-5-haiku-20241022", cfg.AI.AnthropicModel)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.InDelta(t, 0.2, cfg.AI.Temperature, 0.0001)
	assert.Equal(t, 5*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, CacheDriverRedis, cfg.Cache.Driver)
}

func TestFromViper_RedisSinURL_Error(t *testing.T) {
	v := viper.New()
	v.Set("CACHE_DRIVER", "redis")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestFromViper_DriverDesconocido_Error(t *testing.T) {
	v := viper.New()
	v.Set("CACHE_DRIVER", "indexeddb")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestFromViper_ProveedorIADesconocido_Error(t *testing.T) {
	v := viper.New()
	v.Set("AI_PROVIDER", "openai")

	_, err := fromViper(v)
	assert.ErrorContains(t, err, "AI_PROVIDER")
}
