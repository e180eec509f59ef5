// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Google sign-in
	GoogleClientID string

	// Session
	SessionMaxAge int

	// Push (FCM)
	FCMEndpoint  string
	FCMServerKey string

	// Mail (Brevo)
	BrevoAPIKey     string
	MailSenderName  string
	MailSenderEmail string

	// Ingest worker
	IngestInterval      time.Duration
	IngestTimeout       time.Duration
	IngestMaxConcurrent int
	IngestMaxSize       int64

	// Notification fan-out
	FanoutMaxConcurrent int

	// Rate Limit（req/min/user）
	RateLimitGeneral int
	RateLimitSearch  int

	// Avatar storage
	AvatarDir     string
	AvatarBaseURL string

	// Server
	ServerPort  string
	MetricsPort string
	BaseURL     string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envがあれば先に読み込む（未設定の変数のみ反映）。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	// .envはローカル開発用。存在しなくてもエラーにしない。
	_ = godotenv.Load()

	cfg := &Config{}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	if cfg.GoogleClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 30*86400)

	cfg.FCMEndpoint = getEnvString("FCM_ENDPOINT", "https://fcm.googleapis.com/fcm/send")
	cfg.FCMServerKey = os.Getenv("FCM_SERVER_KEY")

	cfg.BrevoAPIKey = os.Getenv("BREVO_API_KEY")
	cfg.MailSenderName = getEnvString("MAIL_SENDER_NAME", "FirstSportz")
	cfg.MailSenderEmail = getEnvString("MAIL_SENDER_EMAIL", "no-reply@firstsportz.com")

	cfg.IngestInterval = getEnvDuration("INGEST_INTERVAL", 5*time.Minute)
	cfg.IngestTimeout = getEnvDuration("INGEST_TIMEOUT", 10*time.Second)
	cfg.IngestMaxConcurrent = getEnvInt("INGEST_MAX_CONCURRENT", 5)
	cfg.IngestMaxSize = getEnvInt64("INGEST_MAX_SIZE", 5242880)

	cfg.FanoutMaxConcurrent = getEnvInt("FANOUT_MAX_CONCURRENT", 20)

	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitSearch = getEnvInt("RATE_LIMIT_SEARCH", 30)

	cfg.AvatarDir = getEnvString("AVATAR_DIR", "/var/lib/newsapi/avatars")
	cfg.AvatarBaseURL = getEnvString("AVATAR_BASE_URL", "/static/avatars")

	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.MetricsPort = getEnvString("METRICS_PORT", "9090")
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "*")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
