package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/healthsurge/backend/internal/domain"
)

// Scorer strategies accepted by SCORER_VARIANT.
const (
	ScorerLinear   = "linear"
	ScorerWeighted = "weighted"
)

// DefaultHistoricalPath is the dataset location relative to the working directory.
const DefaultHistoricalPath = "public/hospital_daily_1996_2024_indian_holidays.csv"

// Config holds all service settings, populated from environment variables.
type Config struct {
	Port            string
	Env             string
	DatabaseURL     string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	AllowOrigins    string

	ScorerVariant  string
	IDPolicy       domain.IDPolicy
	ContactsFile   string
	HistoricalPath string

	Twilio Twilio
	SMTP   SMTP

	VoiceCallsEnabled bool
	NotifyTimeout     time.Duration
}

// Twilio holds messaging and voice provider credentials.
type Twilio struct {
	AccountSID          string
	AuthToken           string
	PhoneNumber         string
	MessagingServiceSID string
}

// HasCredentials reports whether a REST client can be built.
func (t Twilio) HasCredentials() bool {
	return t.AccountSID != "" && t.AuthToken != ""
}

// SMTP holds mail submission settings.
type SMTP struct {
	Host     string
	Port     int
	User     string
	Password string
}

// HasCredentials reports whether both login fields are set.
func (s SMTP) HasCredentials() bool {
	return s.User != "" && s.Password != ""
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	notifyTimeout, err := parseDuration("NOTIFY_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil || smtpPort <= 0 || smtpPort > 65535 {
		return nil, errors.New("invalid SMTP_PORT")
	}

	voice, err := strconv.ParseBool(getEnv("VOICE_CALLS_ENABLED", "true"))
	if err != nil {
		return nil, errors.New("invalid VOICE_CALLS_ENABLED")
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8000"),
		Env:             getEnv("GO_ENV", "development"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(getEnv("LOG_FORMAT", "json")),
		ShutdownTimeout: shutdownTimeout,
		AllowOrigins:    getEnv("CORS_ALLOW_ORIGINS", "*"),

		ScorerVariant:  strings.ToLower(getEnv("SCORER_VARIANT", ScorerLinear)),
		IDPolicy:       domain.IDPolicy(strings.ToLower(getEnv("CONTACT_ID_POLICY", string(domain.IDPolicyLength)))),
		ContactsFile:   getEnv("CONTACTS_FILE", ""),
		HistoricalPath: getEnv("HISTORICAL_CSV_PATH", DefaultHistoricalPath),

		Twilio: Twilio{
			AccountSID:          os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:           os.Getenv("TWILIO_AUTH_TOKEN"),
			PhoneNumber:         os.Getenv("TWILIO_PHONE_NUMBER"),
			MessagingServiceSID: os.Getenv("TWILIO_MESSAGING_SERVICE_SID"),
		},
		SMTP: SMTP{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     smtpPort,
			User:     os.Getenv("EMAIL_USER"),
			Password: os.Getenv("EMAIL_PASSWORD"),
		},

		VoiceCallsEnabled: voice,
		NotifyTimeout:     notifyTimeout,
	}

	switch cfg.ScorerVariant {
	case ScorerLinear, ScorerWeighted:
	default:
		return nil, fmt.Errorf("invalid SCORER_VARIANT %q: want %s or %s", cfg.ScorerVariant, ScorerLinear, ScorerWeighted)
	}
	switch cfg.IDPolicy {
	case domain.IDPolicyLength, domain.IDPolicySequence:
	default:
		return nil, fmt.Errorf("invalid CONTACT_ID_POLICY %q", cfg.IDPolicy)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", cfg.LogFormat)
	}

	return cfg, nil
}

func parseDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
