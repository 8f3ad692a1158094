package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mamadbah2/coldroom/internal/domain/rules"
)

// Store backends accepted by STORE_TYPE.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

// Weather providers accepted by WEATHER_PROVIDER.
const (
	WeatherSimulated = "simulated"
	WeatherOpenMeteo = "openmeteo"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	LogLevel  string
	Storage   StorageConfig
	MongoDB   MongoDBConfig
	Weather   WeatherConfig
	Sensor    SensorConfig
	Scheduler SchedulerConfig
	History   HistoryConfig
	Rules     RulesConfig
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// StorageConfig selects and locates the backing store.
type StorageConfig struct {
	Type       string
	SQLitePath string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// WeatherConfig selects the external weather source.
type WeatherConfig struct {
	Provider  string
	Location  string
	Latitude  float64
	Longitude float64
	BaseURL   string
}

// SensorConfig bounds the simulated per-sample drift.
type SensorConfig struct {
	TempJitter     float64
	HumidityJitter float64
}

// SchedulerConfig holds the cron expressions of the background jobs.
type SchedulerConfig struct {
	SensorSchedule  string
	WeatherSchedule string
	PruneSchedule   string
	ReportSchedule  string
	Timezone        string
}

// HistoryConfig sizes the trend window and the retention of sensor samples.
type HistoryConfig struct {
	Window int
	Keep   int
}

// RulesConfig carries the recommendation and alert thresholds.
type RulesConfig struct {
	HotThreshold      float64
	ColdThreshold     float64
	Bias              float64
	HumidityTolerance float64
}

// Thresholds converts the configured values into rule thresholds.
func (r RulesConfig) Thresholds() rules.Thresholds {
	return rules.Thresholds{
		HotExternal:       r.HotThreshold,
		ColdExternal:      r.ColdThreshold,
		Bias:              r.Bias,
		HumidityTolerance: r.HumidityTolerance,
	}
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
type WhatsAppConfig struct {
	AccessToken    string
	PhoneNumberID  string
	VerifyToken    string
	BaseURL        string
	APIVersion     string
	AlertRecipient string
}

// Enabled reports whether outbound messaging is configured.
func (w WhatsAppConfig) Enabled() bool {
	return w.AccessToken != "" && w.PhoneNumberID != ""
}

// SheetsConfig contains configuration required to mirror the audit log to Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the Sheets audit mirror is configured.
func (s SheetsConfig) Enabled() bool {
	return s.CredentialsPath != "" && s.SpreadsheetID != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	defaults := rules.DefaultThresholds()
	p := &parser{}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		Storage: StorageConfig{
			Type:       strings.ToLower(getenvWithDefault("STORE_TYPE", StoreSQLite)),
			SQLitePath: getenvWithDefault("SQLITE_PATH", "coldroom.db"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "coldroom"),
		},
		Weather: WeatherConfig{
			Provider:  strings.ToLower(getenvWithDefault("WEATHER_PROVIDER", WeatherSimulated)),
			Location:  getenvWithDefault("WEATHER_LOCATION", "Ahmedabad"),
			Latitude:  p.float("WEATHER_LATITUDE", 23.0225),
			Longitude: p.float("WEATHER_LONGITUDE", 72.5714),
			BaseURL:   getenvWithDefault("OPEN_METEO_BASE_URL", "https://api.open-meteo.com"),
		},
		Sensor: SensorConfig{
			TempJitter:     p.float("SENSOR_TEMP_JITTER", 0.2),
			HumidityJitter: p.float("SENSOR_HUMIDITY_JITTER", 1.0),
		},
		Scheduler: SchedulerConfig{
			SensorSchedule:  getenvWithDefault("SENSOR_CRON_SCHEDULE", "@every 1m"),
			WeatherSchedule: getenvWithDefault("WEATHER_CRON_SCHEDULE", "@every 15m"),
			PruneSchedule:   getenvWithDefault("PRUNE_CRON_SCHEDULE", "@daily"),
			ReportSchedule:  getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:        getenvWithDefault("TIMEZONE", "Asia/Kolkata"),
		},
		History: HistoryConfig{
			Window: p.int("HISTORY_WINDOW", 100),
			Keep:   p.int("HISTORY_KEEP", 1000),
		},
		Rules: RulesConfig{
			HotThreshold:      p.float("RECOMMEND_HOT_THRESHOLD", defaults.HotExternal),
			ColdThreshold:     p.float("RECOMMEND_COLD_THRESHOLD", defaults.ColdExternal),
			Bias:              p.float("RECOMMEND_BIAS", defaults.Bias),
			HumidityTolerance: p.float("HUMIDITY_TOLERANCE", defaults.HumidityTolerance),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:    os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID:  os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			VerifyToken:    os.Getenv("META_VERIFY_TOKEN"),
			BaseURL:        getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:     getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			AlertRecipient: os.Getenv("WHATSAPP_ALERT_RECIPIENT"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_AUDIT_ID"),
		},
	}

	if p.err != nil {
		return nil, p.err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated and consistent.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Storage.Type {
	case StoreMemory:
	case StoreSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("SQLITE_PATH must be provided when STORE_TYPE=sqlite")
		}
	case StoreMongo:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided when STORE_TYPE=mongo")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
	default:
		return fmt.Errorf("unsupported STORE_TYPE %q", c.Storage.Type)
	}

	switch c.Weather.Provider {
	case WeatherSimulated:
	case WeatherOpenMeteo:
		if c.Weather.BaseURL == "" {
			return errors.New("OPEN_METEO_BASE_URL must not be empty")
		}
	default:
		return fmt.Errorf("unsupported WEATHER_PROVIDER %q", c.Weather.Provider)
	}

	if c.Sensor.TempJitter < 0 || c.Sensor.HumidityJitter < 0 {
		return errors.New("SENSOR_TEMP_JITTER and SENSOR_HUMIDITY_JITTER must not be negative")
	}

	if c.Rules.ColdThreshold >= c.Rules.HotThreshold {
		return errors.New("RECOMMEND_COLD_THRESHOLD must be below RECOMMEND_HOT_THRESHOLD")
	}
	if c.Rules.Bias < 0 || c.Rules.HumidityTolerance < 0 {
		return errors.New("RECOMMEND_BIAS and HUMIDITY_TOLERANCE must not be negative")
	}

	if c.History.Window <= 0 {
		return errors.New("HISTORY_WINDOW must be positive")
	}
	if c.History.Keep < c.History.Window {
		return errors.New("HISTORY_KEEP must not be smaller than HISTORY_WINDOW")
	}

	if c.Scheduler.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	switch {
	case c.WhatsApp.AccessToken != "" && c.WhatsApp.PhoneNumberID == "":
		return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided with WHATSAPP_TOKEN")
	case c.WhatsApp.AccessToken == "" && c.WhatsApp.PhoneNumberID != "":
		return errors.New("WHATSAPP_TOKEN must be provided with WHATSAPP_PHONE_NUMBER_ID")
	}
	if c.WhatsApp.Enabled() {
		if c.WhatsApp.BaseURL == "" {
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		}
		if c.WhatsApp.APIVersion == "" {
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_AUDIT_ID must be provided together")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parser remembers the first malformed numeric variable.
type parser struct {
	err error
}

func (p *parser) float(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		if p.err == nil {
			p.err = fmt.Errorf("%s must be a number: %w", key, err)
		}
		return fallback
	}
	return v
}

func (p *parser) int(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		if p.err == nil {
			p.err = fmt.Errorf("%s must be an integer: %w", key, err)
		}
		return fallback
	}
	return v
}
