package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// emptyEnvFile points Load at an empty file so a developer .env never leaks into tests.
func emptyEnvFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(emptyEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, StoreSQLite, cfg.Storage.Type)
	assert.Equal(t, WeatherSimulated, cfg.Weather.Provider)
	assert.Equal(t, 0.2, cfg.Sensor.TempJitter)
	assert.Equal(t, 1.0, cfg.Sensor.HumidityJitter)
	assert.Equal(t, "@every 1m", cfg.Scheduler.SensorSchedule)
	assert.Equal(t, 100, cfg.History.Window)
	assert.Equal(t, 1000, cfg.History.Keep)

	th := cfg.Rules.Thresholds()
	assert.Equal(t, 30.0, th.HotExternal)
	assert.Equal(t, 10.0, th.ColdExternal)
	assert.Equal(t, 1.0, th.Bias)
	assert.Equal(t, 10.0, th.HumidityTolerance)

	assert.False(t, cfg.WhatsApp.Enabled())
	assert.False(t, cfg.Sheets.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_TYPE", "MEMORY")
	t.Setenv("RECOMMEND_HOT_THRESHOLD", "35")
	t.Setenv("HUMIDITY_TOLERANCE", "5.5")
	t.Setenv("HISTORY_WINDOW", "12")
	t.Setenv("WHATSAPP_TOKEN", "token")
	t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "12345")

	cfg, err := Load(emptyEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Storage.Type)
	assert.Equal(t, 35.0, cfg.Rules.HotThreshold)
	assert.Equal(t, 5.5, cfg.Rules.HumidityTolerance)
	assert.Equal(t, 12, cfg.History.Window)
	assert.True(t, cfg.WhatsApp.Enabled())
}

func TestLoad_MalformedNumber(t *testing.T) {
	t.Setenv("SENSOR_TEMP_JITTER", "lots")

	_, err := Load(emptyEnvFile(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SENSOR_TEMP_JITTER")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:    ServerConfig{Port: "8080"},
			Storage:   StorageConfig{Type: StoreMemory},
			Weather:   WeatherConfig{Provider: WeatherSimulated},
			Sensor:    SensorConfig{TempJitter: 0.2, HumidityJitter: 1},
			Scheduler: SchedulerConfig{Timezone: "UTC"},
			History:   HistoryConfig{Window: 24, Keep: 100},
			Rules:     RulesConfig{HotThreshold: 30, ColdThreshold: 10, Bias: 1, HumidityTolerance: 10},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown store", mutate: func(c *Config) { c.Storage.Type = "redis" }, wantErr: "STORE_TYPE"},
		{name: "mongo without uri", mutate: func(c *Config) { c.Storage.Type = StoreMongo }, wantErr: "MONGODB_URI"},
		{name: "unknown weather", mutate: func(c *Config) { c.Weather.Provider = "radar" }, wantErr: "WEATHER_PROVIDER"},
		{name: "negative jitter", mutate: func(c *Config) { c.Sensor.TempJitter = -1 }, wantErr: "SENSOR_TEMP_JITTER"},
		{name: "inverted thresholds", mutate: func(c *Config) { c.Rules.ColdThreshold = 30 }, wantErr: "RECOMMEND_COLD_THRESHOLD"},
		{name: "keep below window", mutate: func(c *Config) { c.History.Keep = 10 }, wantErr: "HISTORY_KEEP"},
		{name: "token without phone", mutate: func(c *Config) { c.WhatsApp.AccessToken = "t" }, wantErr: "WHATSAPP_PHONE_NUMBER_ID"},
		{name: "half sheets config", mutate: func(c *Config) { c.Sheets.SpreadsheetID = "sheet" }, wantErr: "GOOGLE_SHEETS_CREDENTIALS_PATH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
