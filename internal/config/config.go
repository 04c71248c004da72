package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	API       APIConfig
	Session   SessionConfig
	Weather   WeatherConfig
	Reporting ReportingConfig
	MongoDB   MongoDBConfig
	Sheets    SheetsConfig
	WhatsApp  WhatsAppConfig
}

// ServerConfig holds options of the local dashboard HTTP server.
type ServerConfig struct {
	Port     string
	LogLevel string
}

// APIConfig points at the remote BarnMonitor REST API.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig controls where the authenticated session is persisted.
type SessionConfig struct {
	FilePath string
}

// WeatherConfig holds the Open-Meteo endpoint and the farm coordinates.
type WeatherConfig struct {
	BaseURL   string
	Latitude  float64
	Longitude float64
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	SnapshotSchedule     string
	SessionCheckSchedule string
	WeeklyReportSchedule string
	Timezone             string
}

// MongoDBConfig holds settings for the dashboard snapshot store. Empty URI disables it.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SheetsConfig contains configuration required to export records to Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// WhatsAppConfig contains credentials for the Meta WhatsApp Cloud API used for weekly reports.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
}

// Enabled reports whether a snapshot database is configured.
func (c MongoDBConfig) Enabled() bool { return c.URI != "" }

// Enabled reports whether the Sheets export is configured.
func (c SheetsConfig) Enabled() bool { return c.CredentialsPath != "" && c.SpreadsheetID != "" }

// Enabled reports whether WhatsApp notifications are configured.
func (c WhatsAppConfig) Enabled() bool { return c.AccessToken != "" && c.PhoneNumberID != "" }

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
		// Missing .env files are acceptable when configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	timeout, err := time.ParseDuration(getenvWithDefault("BARN_API_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("BARN_API_TIMEOUT: %w", err)
	}
	latitude, err := strconv.ParseFloat(getenvWithDefault("WEATHER_LATITUDE", "-1.286389"), 64)
	if err != nil {
		return nil, fmt.Errorf("WEATHER_LATITUDE: %w", err)
	}
	longitude, err := strconv.ParseFloat(getenvWithDefault("WEATHER_LONGITUDE", "36.817223"), 64)
	if err != nil {
		return nil, fmt.Errorf("WEATHER_LONGITUDE: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getenvWithDefault("APP_PORT", "8080"),
			LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		},
		API: APIConfig{
			BaseURL: getenvWithDefault("BARN_API_BASE_URL", "https://barnmonitor.onrender.com"),
			Timeout: timeout,
		},
		Session: SessionConfig{
			FilePath: getenvWithDefault("SESSION_FILE", defaultSessionFile()),
		},
		Weather: WeatherConfig{
			BaseURL:   getenvWithDefault("WEATHER_BASE_URL", "https://api.open-meteo.com"),
			Latitude:  latitude,
			Longitude: longitude,
		},
		Reporting: ReportingConfig{
			SnapshotSchedule:     getenvWithDefault("SNAPSHOT_CRON_SCHEDULE", "0 20 * * *"),
			SessionCheckSchedule: getenvWithDefault("SESSION_CHECK_CRON_SCHEDULE", "@every 30m"),
			WeeklyReportSchedule: getenvWithDefault("WEEKLY_REPORT_CRON_SCHEDULE", "0 20 * * 5"),
			Timezone:             getenvWithDefault("TIMEZONE", "Africa/Nairobi"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "barnmonitor"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.API.BaseURL == "":
		return errors.New("BARN_API_BASE_URL must not be empty")
	case c.API.Timeout <= 0:
		return errors.New("BARN_API_TIMEOUT must be positive")
	case c.Session.FilePath == "":
		return errors.New("SESSION_FILE must not be empty")
	case c.Weather.BaseURL == "":
		return errors.New("WEATHER_BASE_URL must not be empty")
	}

	if c.Weather.Latitude < -90 || c.Weather.Latitude > 90 {
		return errors.New("WEATHER_LATITUDE must be within [-90, 90]")
	}
	if c.Weather.Longitude < -180 || c.Weather.Longitude > 180 {
		return errors.New("WEATHER_LONGITUDE must be within [-180, 180]")
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}
	if _, err := time.LoadLocation(c.Reporting.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.Reporting.Timezone, err)
	}

	if c.MongoDB.Enabled() && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided when MONGODB_URI is set")
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}

	if c.WhatsApp.Enabled() {
		if c.WhatsApp.BaseURL == "" {
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		}
		if c.WhatsApp.APIVersion == "" {
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".barnmonitor", "session.json")
	}
	return filepath.Join(dir, "barnmonitor", "session.json")
}
