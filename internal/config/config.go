package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Attendance AttendanceConfig
	Notifier   NotifierConfig
	SMTP       SMTPConfig
	AWS        AWSConfig
	Telemetry  TelemetryConfig
	Bootstrap  BootstrapConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string
	Version        string
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// AttendanceConfig holds the business rules the attendance ledger is evaluated against.
type AttendanceConfig struct {
	Timezone           string
	GracePeriodWindow  time.Duration
	OvertimeThreshold  time.Duration
	UndertimeThreshold time.Duration
	// SweepAt is the "HH:MM" local time the absence sweep runs at.
	SweepAt string

	GeofenceLatitude     float64
	GeofenceLongitude    float64
	GeofenceRadiusMeters float64
}

type NotifierConfig struct {
	// Backend is one of log, smtp, ses, sqs.
	Backend        string
	OvertimeStrict bool
	BreakerTimeout time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type AWSConfig struct {
	Region      string
	Endpoint    string
	SESSender   string
	SQSQueueURL string
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

// BootstrapConfig names the admin account created on startup when it does not exist.
type BootstrapConfig struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Name:           getEnv("APP_NAME", "attendance-backend"),
		Version:        getEnv("APP_VERSION", "dev"),
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// JWT configuration
	accessExpiration, err := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRATION_TIME", "8h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: accessExpiration,
	}

	// Attendance rules
	config.Attendance, err = loadAttendance()
	if err != nil {
		return nil, err
	}

	// Notifications
	breakerTimeout, err := time.ParseDuration(getEnv("NOTIFY_BREAKER_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_BREAKER_TIMEOUT: %w", err)
	}
	config.Notifier = NotifierConfig{
		Backend:        strings.ToLower(getEnv("NOTIFY_BACKEND", "log")),
		OvertimeStrict: getEnvBool("NOTIFY_OVERTIME_STRICT", true),
		BreakerTimeout: breakerTimeout,
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", ""),
		FromName: getEnv("SMTP_FROM_NAME", "Attendance"),
	}

	config.AWS = AWSConfig{
		Region:      getEnv("AWS_REGION", "ap-southeast-1"),
		Endpoint:    getEnv("AWS_ENDPOINT_URL", ""),
		SESSender:   getEnv("SES_SENDER", ""),
		SQSQueueURL: getEnv("SQS_QUEUE_URL", ""),
	}

	config.Telemetry = TelemetryConfig{
		Enabled:      getEnvBool("OTEL_ENABLED", false),
		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:  getEnv("OTEL_SERVICE_NAME", config.App.Name),
	}

	config.Bootstrap = BootstrapConfig{
		AdminEmail:    getEnv("BOOTSTRAP_ADMIN_EMAIL", ""),
		AdminPassword: getEnv("BOOTSTRAP_ADMIN_PASSWORD", ""),
		AdminName:     getEnv("BOOTSTRAP_ADMIN_NAME", ""),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadAttendance() (AttendanceConfig, error) {
	cfg := AttendanceConfig{
		Timezone: getEnv("BUSINESS_TIMEZONE", "Asia/Manila"),
		SweepAt:  getEnv("ABSENCE_SWEEP_AT", "22:00"),
	}

	var err error
	if cfg.GracePeriodWindow, err = getEnvDuration("GRACE_PERIOD_WINDOW", "5m"); err != nil {
		return AttendanceConfig{}, err
	}
	if cfg.OvertimeThreshold, err = getEnvDuration("OVERTIME_THRESHOLD", "20m"); err != nil {
		return AttendanceConfig{}, err
	}
	if cfg.UndertimeThreshold, err = getEnvDuration("UNDERTIME_THRESHOLD", "5m"); err != nil {
		return AttendanceConfig{}, err
	}

	if cfg.GeofenceLatitude, err = getEnvFloat("GEOFENCE_LATITUDE"); err != nil {
		return AttendanceConfig{}, err
	}
	if cfg.GeofenceLongitude, err = getEnvFloat("GEOFENCE_LONGITUDE"); err != nil {
		return AttendanceConfig{}, err
	}
	if cfg.GeofenceRadiusMeters, err = getEnvFloat("GEOFENCE_RADIUS_METERS"); err != nil {
		return AttendanceConfig{}, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.LoadLocation(c.Attendance.Timezone); err != nil {
		return fmt.Errorf("BUSINESS_TIMEZONE is invalid: %w", err)
	}
	if _, err := time.Parse("15:04", c.Attendance.SweepAt); err != nil {
		return fmt.Errorf("ABSENCE_SWEEP_AT must be HH:MM: %w", err)
	}

	if c.Bootstrap.AdminEmail != "" && c.Bootstrap.AdminPassword == "" {
		return fmt.Errorf("BOOTSTRAP_ADMIN_PASSWORD is required when BOOTSTRAP_ADMIN_EMAIL is set")
	}

	switch c.Notifier.Backend {
	case "log":
	case "smtp":
		if c.SMTP.Host == "" || c.SMTP.From == "" {
			return fmt.Errorf("SMTP_HOST and SMTP_FROM are required for the smtp notifier")
		}
	case "ses":
		if c.AWS.SESSender == "" {
			return fmt.Errorf("SES_SENDER is required for the ses notifier")
		}
	case "sqs":
		if c.AWS.SQSQueueURL == "" {
			return fmt.Errorf("SQS_QUEUE_URL is required for the sqs notifier")
		}
	default:
		return fmt.Errorf("NOTIFY_BACKEND must be one of log, smtp, ses, sqs")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvFloat(key string) (float64, error) {
	f, err := strconv.ParseFloat(getEnv(key, "0"), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
