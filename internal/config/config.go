// Package config loads service settings from environment variables, with
// optional .env file support for local development. Provider credentials
// and the relay password are only ever supplied through the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Transport names accepted for DISPATCH_TRANSPORT.
const (
	TransportRelay   = "relay"
	TransportWebhook = "webhook"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	CWBAPIKey         string
	OpenWeatherAPIKey string

	HTTPAddr  string
	LogLevel  string
	LogFormat string

	ClientTimeout   time.Duration
	ShutdownTimeout time.Duration
	ClientRPS       float64
	ClientBurst     int

	// Notification dispatch. Exactly one transport is active.
	DispatchTransport string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	SMTPFrom          string
	SMTPDialTimeout   time.Duration
	WebhookURL        string
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is honored if present.
func Load() (*Config, error) {
	godotenv.Load() //nolint:errcheck // a missing .env file is fine

	clientTimeout, err := parseDuration("CLIENT_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	smtpDialTimeout, err := parseDuration("SMTP_DIAL_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	smtpPort, err := parseInt("SMTP_PORT", 465)
	if err != nil {
		return nil, err
	}
	clientBurst, err := parseInt("CLIENT_BURST", 3)
	if err != nil {
		return nil, err
	}
	clientRPS, err := parseFloat("CLIENT_RPS", 1)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		CWBAPIKey:         os.Getenv("CWB_API_KEY"),
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),

		HTTPAddr:  envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "json"),

		ClientTimeout:   clientTimeout,
		ShutdownTimeout: shutdownTimeout,
		ClientRPS:       clientRPS,
		ClientBurst:     clientBurst,

		DispatchTransport: envOrDefault("DISPATCH_TRANSPORT", TransportRelay),
		SMTPHost:          envOrDefault("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:          smtpPort,
		SMTPUsername:      os.Getenv("SMTP_USERNAME"),
		SMTPPassword:      os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:          os.Getenv("SMTP_FROM"),
		SMTPDialTimeout:   smtpDialTimeout,
		WebhookURL:        os.Getenv("WEBHOOK_URL"),
	}

	if cfg.CWBAPIKey == "" {
		return nil, errors.New("CWB_API_KEY is required")
	}
	if cfg.OpenWeatherAPIKey == "" {
		return nil, errors.New("OPENWEATHER_API_KEY is required")
	}

	switch cfg.DispatchTransport {
	case TransportRelay:
		if cfg.SMTPUsername == "" || cfg.SMTPPassword == "" {
			return nil, errors.New("SMTP_USERNAME and SMTP_PASSWORD are required for the relay transport")
		}
	case TransportWebhook:
		if cfg.WebhookURL == "" {
			return nil, errors.New("WEBHOOK_URL is required for the webhook transport")
		}
	default:
		return nil, fmt.Errorf("invalid DISPATCH_TRANSPORT %q (want %q or %q)", cfg.DispatchTransport, TransportRelay, TransportWebhook)
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return f, nil
}
