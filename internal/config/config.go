package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var ErrEmptyEnvironmentVariable = errors.New("empty environment variable")

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Twilio   TwilioConfig
	OpenAI   OpenAIConfig
	GoogleAI GoogleAIConfig
	Oscar    OscarConfig
	Voice    VoiceConfig
	Server   ServerConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Username string
	Password string
	Name     string
}

// TwilioConfig holds telephony provider credentials and call-control settings
type TwilioConfig struct {
	AccountSID     string
	AuthToken      string
	TransferNumber string // staff line for transfer_to_staff; empty disables transfer
}

// OpenAIConfig holds OpenAI API settings for the realtime engine and transcription
type OpenAIConfig struct {
	APIKey        string
	RealtimeModel string
}

// GoogleAIConfig holds Google AI settings for the Gemini Live engine
type GoogleAIConfig struct {
	APIKey    string
	LiveModel string
}

// OscarConfig holds clinic EMR API settings
type OscarConfig struct {
	BaseURL            string
	ConsumerKey        string
	ConsumerSecret     string
	InsecureSkipVerify bool // self-signed OSCAR deployments
}

// VoiceConfig holds audio bridge tuning
type VoiceConfig struct {
	Engine           string        // "openai" or "googleai"
	Name             string        // engine voice; empty picks the adapter default
	HandshakeTimeout time.Duration // bound on the realtime engine bootstrap
	SilenceThreshold float64       // dB threshold for the batch transcription path
	SilenceDuration  time.Duration // silence run that flushes a buffered phrase
	PublicHost       string        // externally reachable host for TwiML stream URLs
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int
}

// Load reads and validates all required environment variables
func Load() (*Config, error) {
	// Load env.local in non-production environments
	if os.Getenv("GO_ENV") != "production" {
		if err := godotenv.Load("env.local"); err != nil {
			return nil, fmt.Errorf("failed to load env.local: %w", err)
		}
	}

	cfg := &Config{}

	// Database configuration
	var err error
	if cfg.Database.Host, err = requireEnv("DB_HOST"); err != nil {
		return nil, err
	}
	if cfg.Database.Username, err = requireEnv("DB_USERNAME"); err != nil {
		return nil, err
	}
	if cfg.Database.Password, err = requireEnv("DB_PASSWORD"); err != nil {
		return nil, err
	}
	if cfg.Database.Name, err = requireEnv("DB_NAME"); err != nil {
		return nil, err
	}

	// Twilio configuration. Account credentials are optional: without them the
	// transfer/end-call tools report themselves unavailable instead of failing the call.
	cfg.Twilio.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	cfg.Twilio.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	cfg.Twilio.TransferNumber = os.Getenv("TRANSFER_PHONE_NUMBER")

	// Engine configuration
	if cfg.OpenAI.APIKey, err = requireEnv("OPENAI_API_KEY"); err != nil {
		return nil, err
	}
	cfg.OpenAI.RealtimeModel = getEnvWithDefault("OPENAI_REALTIME_MODEL", "gpt-4o-realtime-preview")
	cfg.GoogleAI.APIKey = os.Getenv("GOOGLE_AI_API_KEY")
	cfg.GoogleAI.LiveModel = getEnvWithDefault("GOOGLE_AI_LIVE_MODEL", "gemini-2.5-flash-preview-native-audio-dialog")

	// Oscar configuration
	if cfg.Oscar.BaseURL, err = requireEnv("OSCAR_URL"); err != nil {
		return nil, err
	}
	if cfg.Oscar.ConsumerKey, err = requireEnv("OSCAR_CONSUMER_KEY"); err != nil {
		return nil, err
	}
	if cfg.Oscar.ConsumerSecret, err = requireEnv("OSCAR_CONSUMER_SECRET"); err != nil {
		return nil, err
	}
	cfg.Oscar.InsecureSkipVerify = getEnvWithDefault("OSCAR_INSECURE_SKIP_VERIFY", "false") == "true"

	// Voice configuration
	cfg.Voice.Engine = getEnvWithDefault("VOICE_ENGINE", "openai")
	cfg.Voice.Name = getEnvWithDefault("VOICE_NAME", "")
	if cfg.Voice.Engine == "googleai" && cfg.GoogleAI.APIKey == "" {
		return nil, fmt.Errorf("GOOGLE_AI_API_KEY is not set: %w", ErrEmptyEnvironmentVariable)
	}
	handshakeSeconds := getEnvWithDefault("ENGINE_HANDSHAKE_TIMEOUT_SECONDS", "10")
	seconds, err := strconv.Atoi(handshakeSeconds)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ENGINE_HANDSHAKE_TIMEOUT_SECONDS: %w", err)
	}
	cfg.Voice.HandshakeTimeout = time.Duration(seconds) * time.Second

	silenceThreshold := getEnvWithDefault("SILENCE_THRESHOLD_DB", "-35")
	cfg.Voice.SilenceThreshold, err = strconv.ParseFloat(silenceThreshold, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SILENCE_THRESHOLD_DB: %w", err)
	}
	silenceMs := getEnvWithDefault("SILENCE_DURATION_MS", "500")
	ms, err := strconv.Atoi(silenceMs)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SILENCE_DURATION_MS: %w", err)
	}
	cfg.Voice.SilenceDuration = time.Duration(ms) * time.Millisecond

	if cfg.Voice.PublicHost, err = requireEnv("PUBLIC_HOST"); err != nil {
		return nil, err
	}

	// Server configuration
	serverPort, err := requireEnv("SERVER_PORT")
	if err != nil {
		return nil, err
	}
	cfg.Server.Port, err = strconv.Atoi(serverPort)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SERVER_PORT: %w", err)
	}

	return cfg, nil
}

// ConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s",
		c.Username, c.Password, c.Host, c.Name)
}

// requireEnv retrieves an environment variable or returns an error if empty
func requireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set: %w", key, ErrEmptyEnvironmentVariable)
	}
	return value, nil
}

// getEnvWithDefault retrieves an environment variable or returns a default value
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
