package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// supported values
const (
	ProviderGemini = "gemini"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the service configuration, read from the environment.
type Config struct {
	Provider string `validate:"required"`
	Port     string `validate:"required,numeric"`

	DatabaseDriver string `validate:"oneof=postgres sqlite"`
	DatabaseDSN    string
	SQLitePath     string
	Postgres       PostgresConfig

	RedisAddr string
	JWTSecret string `validate:"required"`

	InterviewDuration time.Duration `validate:"gt=0"`
	GenerationTimeout time.Duration `validate:"gt=0"`
	LockTTL           time.Duration `validate:"gt=0"`
	LockWaitTimeout   time.Duration `validate:"gt=0"`

	TranscriptExportEnabled  bool
	TranscriptExportSchedule string
	TranscriptExportDir      string

	CORSAllowedOrigins []string

	LogJSON  bool
	LogDebug bool
}

type PostgresConfig struct {
	Host     string
	User     string
	Password string
	DB       string
	Port     string
	SSLMode  string
}

var defaults = map[string]interface{}{
	"AI_PROVIDER":                ProviderGemini,
	"PORT":                       "8080",
	"DATABASE_DRIVER":            DriverPostgres,
	"SQLITE_PATH":                "interview.db",
	"POSTGRES_HOST":              "localhost",
	"POSTGRES_USER":              "postgres",
	"POSTGRES_DB":                "interview",
	"POSTGRES_PORT":              "5432",
	"POSTGRES_SSLMODE":           "disable",
	"INTERVIEW_DURATION":         "5m",
	"GENERATION_TIMEOUT":         "30s",
	"LOCK_TTL":                   "45s",
	"LOCK_WAIT_TIMEOUT":          "35s",
	"TRANSCRIPT_EXPORT_ENABLED":  false,
	"TRANSCRIPT_EXPORT_SCHEDULE": "0 2 * * *",
	"TRANSCRIPT_EXPORT_DIR":      "./exports",
	"CORS_ALLOWED_ORIGINS":       "http://localhost:3000",
	"LOG_JSON":                   true,
	"LOG_DEBUG":                  false,
}

// loads configuration from environment variables
func LoadConfig() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	// keys without defaults still need binding for AutomaticEnv lookups
	for _, key := range []string{"DATABASE_DSN", "REDIS_ADDR", "JWT_SECRET", "POSTGRES_PASSWORD"} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}
	v.AutomaticEnv()

	config := &Config{
		Provider:       strings.ToLower(strings.TrimSpace(v.GetString("AI_PROVIDER"))),
		Port:           strings.TrimSpace(v.GetString("PORT")),
		DatabaseDriver: strings.ToLower(strings.TrimSpace(v.GetString("DATABASE_DRIVER"))),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		SQLitePath:     v.GetString("SQLITE_PATH"),
		Postgres: PostgresConfig{
			Host:     v.GetString("POSTGRES_HOST"),
			User:     v.GetString("POSTGRES_USER"),
			Password: v.GetString("POSTGRES_PASSWORD"),
			DB:       v.GetString("POSTGRES_DB"),
			Port:     v.GetString("POSTGRES_PORT"),
			SSLMode:  v.GetString("POSTGRES_SSLMODE"),
		},
		RedisAddr:                strings.TrimSpace(v.GetString("REDIS_ADDR")),
		JWTSecret:                v.GetString("JWT_SECRET"),
		InterviewDuration:        v.GetDuration("INTERVIEW_DURATION"),
		GenerationTimeout:        v.GetDuration("GENERATION_TIMEOUT"),
		LockTTL:                  v.GetDuration("LOCK_TTL"),
		LockWaitTimeout:          v.GetDuration("LOCK_WAIT_TIMEOUT"),
		TranscriptExportEnabled:  v.GetBool("TRANSCRIPT_EXPORT_ENABLED"),
		TranscriptExportSchedule: strings.TrimSpace(v.GetString("TRANSCRIPT_EXPORT_SCHEDULE")),
		TranscriptExportDir:      v.GetString("TRANSCRIPT_EXPORT_DIR"),
		CORSAllowedOrigins:       splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		LogJSON:                  v.GetBool("LOG_JSON"),
		LogDebug:                 v.GetBool("LOG_DEBUG"),
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Provider != ProviderGemini {
		return errors.New("unsupported AI provider: " + config.Provider + ". Currently supported: gemini")
	}
	// Gemini validation is handled by gemini.NewConfig()

	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if config.LockTTL <= config.GenerationTimeout {
		return errors.New("LOCK_TTL must be longer than GENERATION_TIMEOUT")
	}
	if config.TranscriptExportEnabled && config.TranscriptExportSchedule == "" {
		return errors.New("TRANSCRIPT_EXPORT_SCHEDULE is required when the exporter is enabled")
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DatabaseDSN != "" {
		return c.DatabaseDSN
	}
	if c.DatabaseDriver == DriverSQLite {
		return c.SQLitePath
	}
	p := c.Postgres
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		p.Host, p.User, p.Password, p.DB, p.Port, p.SSLMode)
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
