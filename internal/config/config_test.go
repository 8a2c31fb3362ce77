package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"virtualvault/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(overrides map[string]any) *viper.Viper {
	v := viper.New()
	config.SetDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := config.FromViper(newViper(map[string]any{"JWT_SECRET": "secret"}))
	require.NoError(t, err)

	assert.Equal(t, ":6060", cfg.AppPort)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, config.StoreSQLite, cfg.StoreDriver)
	assert.Equal(t, config.EventsNone, cfg.EventsDriver)
	assert.Equal(t, "order_queue", cfg.RabbitMQQueue)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.True(t, cfg.IsDevelopment())
}

func TestFromViper_Validation(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
		wantErr   string
	}{
		{"missing secret", map[string]any{}, "JWT_SECRET"},
		{"bad store", map[string]any{"JWT_SECRET": "s", "STORE_DRIVER": "redis"}, "STORE_DRIVER"},
		{"bad events", map[string]any{"JWT_SECRET": "s", "EVENTS_DRIVER": "kafka"}, "EVENTS_DRIVER"},
		{"zero ttl", map[string]any{"JWT_SECRET": "s", "JWT_TTL": "0s"}, "JWT_TTL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.FromViper(newViper(tt.overrides))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vault.yaml")
	content := "JWT_SECRET: from-file\nSTORE_DRIVER: postgres\nAPP_ENV: production\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("STORE_DRIVER", "mongo")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	// Environment wins over the file.
	assert.Equal(t, config.StoreMongo, cfg.StoreDriver)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
