// Package config loads the runtime configuration once, in main, and hands it
// down explicitly to the router and services.
package config

import (
	"fmt"
	"time"

	"salon_backend/pkg/utils"

	"github.com/joho/godotenv"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	SchemaPath   string
	MaxOpenConns int
	MaxIdleConns int
}

// DSN renders the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// ScheduleConfig controls the appointment grid and the opening hours used
// when no salon setting overrides them.
type ScheduleConfig struct {
	OpeningTime         string // HH:MM
	ClosingTime         string // HH:MM
	SlotIntervalMinutes int
	MaxRecurrences      int
}

// Config is the application configuration.
type Config struct {
	Port               string
	Environment        string
	LogLevel           string
	LogPretty          bool
	CORSAllowedOrigins []string
	JWTSecret          string
	JWTTTL             time.Duration
	Location           *time.Location
	ExpirySweepCron    string
	Database           DatabaseConfig
	Schedule           ScheduleConfig
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	tzName := utils.Getenv("TIMEZONE", "America/Sao_Paulo")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tzName, err)
	}

	cfg := &Config{
		Port:               utils.Getenv("PORT", "8080"),
		Environment:        utils.Getenv("APP_ENV", "development"),
		LogLevel:           utils.Getenv("LOG_LEVEL", "info"),
		LogPretty:          utils.GetenvBool("LOG_PRETTY", true),
		CORSAllowedOrigins: utils.GetenvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		JWTSecret:          utils.Getenv("JWT_SECRET", ""),
		JWTTTL:             utils.GetenvDuration("JWT_TTL", 12*time.Hour),
		Location:           loc,
		ExpirySweepCron:    utils.Getenv("EXPIRY_SWEEP_CRON", "5 0 * * *"),
		Database: DatabaseConfig{
			Host:         utils.Getenv("DB_HOST", "localhost"),
			Port:         utils.Getenv("DB_PORT", "5432"),
			User:         utils.Getenv("DB_USER", "salon_user"),
			Password:     utils.Getenv("DB_PASSWORD", "salon_password"),
			Name:         utils.Getenv("DB_NAME", "salon_db"),
			SSLMode:      utils.Getenv("DB_SSLMODE", "disable"),
			SchemaPath:   utils.Getenv("DB_SCHEMA_PATH", ""),
			MaxOpenConns: utils.GetenvInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns: utils.GetenvInt("DB_MAX_IDLE_CONNS", 5),
		},
		Schedule: ScheduleConfig{
			OpeningTime:         utils.Getenv("SCHEDULE_OPENING_TIME", "09:00"),
			ClosingTime:         utils.Getenv("SCHEDULE_CLOSING_TIME", "19:00"),
			SlotIntervalMinutes: utils.GetenvInt("SLOT_INTERVAL_MINUTES", 30),
			MaxRecurrences:      utils.GetenvInt("MAX_RECURRENCES", 52),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		if c.Environment == "production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		c.JWTSecret = "dev-only-salon-secret-change-me"
	}
	if c.Schedule.SlotIntervalMinutes <= 0 {
		return fmt.Errorf("SLOT_INTERVAL_MINUTES must be positive, got %d", c.Schedule.SlotIntervalMinutes)
	}
	if c.Schedule.MaxRecurrences <= 0 {
		return fmt.Errorf("MAX_RECURRENCES must be positive, got %d", c.Schedule.MaxRecurrences)
	}
	if _, err := time.Parse("15:04", c.Schedule.OpeningTime); err != nil {
		return fmt.Errorf("invalid SCHEDULE_OPENING_TIME: %w", err)
	}
	if _, err := time.Parse("15:04", c.Schedule.ClosingTime); err != nil {
		return fmt.Errorf("invalid SCHEDULE_CLOSING_TIME: %w", err)
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	return nil
}

// Today returns midnight of the current day in the salon's timezone.
func (c *Config) Today() time.Time {
	now := time.Now().In(c.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.Location)
}
