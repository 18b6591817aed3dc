package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration values.
type Config struct {
	APIBaseURL        string
	AppPort           string
	DatabaseURL       string
	JWTSecret         string
	TokenExpires      time.Duration
	RazorpayKeyID     string
	RazorpayKeySecret string
	TelegramBotToken  string
	TelegramAdminChat string
	SessionFile       string
}

// Load reads environment variables and returns a populated Config.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:        getEnv("API_BASE_URL", "http://localhost:5001"),
		AppPort:           getEnv("APP_PORT", "5001"),
		DatabaseURL:       getEnv("DATABASE_URL", "file:entebhoomi.db"),
		JWTSecret:         getEnv("JWT_SECRET", "2c8f1a6d9be3475fb02c5d41c7a98de6f13b6a07d85429cc1e4f0b3a57d2961c"),
		TokenExpires:      getEnvDuration("JWT_TTL_HOURS", 24) * time.Hour,
		RazorpayKeyID:     getEnv("RAZORPAY_KEY_ID", "rzp_test_sandbox"),
		RazorpayKeySecret: getEnv("RAZORPAY_KEY_SECRET", "sandbox_secret"),
		TelegramBotToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramAdminChat: getEnv("TELEGRAM_ADMIN_CHAT_ID", ""),
		SessionFile:       getEnv("SESSION_FILE", defaultSessionFile()),
	}

	if cfg.APIBaseURL == "" {
		log.Fatal("API_BASE_URL must be set")
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	return cfg
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".entebhoomi-session.json"
	}
	return filepath.Join(dir, "entebhoomi", "session.json")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback int) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return time.Duration(parsed)
		}
	}
	return time.Duration(fallback)
}
