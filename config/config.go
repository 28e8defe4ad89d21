package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	// Платформенная комиссия, фиксируемая при завершении матча.
	PlatformFee int
	// Окно блокировки экстренной заявки.
	EmergencyLockDuration time.Duration
	// Интервал фоновой чистки истёкших экстренных заявок.
	EmergencySweepInterval time.Duration
	// База для публичных ссылок-приглашений.
	InviteBaseURL string

	OTPExpiry       time.Duration
	OTPMaxAttempts  int
	OTPRateWindow   time.Duration
	OTPMaxPerWindow int

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Cloudflare R2 (логотипы команд). Пустой AccountID отключает загрузку.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// .env может отсутствовать, это не ошибка.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	platformFee, err := intEnv("PLATFORM_FEE", 100)
	if err != nil {
		return nil, err
	}
	lockMinutes, err := intEnv("EMERGENCY_LOCK_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	sweepMinutes, err := intEnv("EMERGENCY_SWEEP_MINUTES", 5)
	if err != nil {
		return nil, err
	}
	otpExpiryMinutes, err := intEnv("OTP_EXPIRY_MINUTES", 5)
	if err != nil {
		return nil, err
	}
	otpMaxAttempts, err := intEnv("OTP_MAX_ATTEMPTS", 5)
	if err != nil {
		return nil, err
	}
	otpRateWindowMinutes, err := intEnv("OTP_RATE_WINDOW_MINUTES", 10)
	if err != nil {
		return nil, err
	}
	otpMaxPerWindow, err := intEnv("OTP_MAX_PER_WINDOW", 3)
	if err != nil {
		return nil, err
	}
	accessTTLHours, err := intEnv("ACCESS_TOKEN_TTL_HOURS", 24)
	if err != nil {
		return nil, err
	}
	refreshTTLHours, err := intEnv("REFRESH_TOKEN_TTL_HOURS", 720)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:  dbURL,
		JWTSecretKey: jwtKey,
		ServerPort:   port,

		PlatformFee:            platformFee,
		EmergencyLockDuration:  time.Duration(lockMinutes) * time.Minute,
		EmergencySweepInterval: time.Duration(sweepMinutes) * time.Minute,
		InviteBaseURL:          envOrDefault("INVITE_BASE_URL", "https://playmatch.app/invites"),

		OTPExpiry:       time.Duration(otpExpiryMinutes) * time.Minute,
		OTPMaxAttempts:  otpMaxAttempts,
		OTPRateWindow:   time.Duration(otpRateWindowMinutes) * time.Minute,
		OTPMaxPerWindow: otpMaxPerWindow,

		AccessTokenTTL:  time.Duration(accessTTLHours) * time.Hour,
		RefreshTokenTTL: time.Duration(refreshTTLHours) * time.Hour,

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}

// R2Configured сообщает, заданы ли все параметры объектного хранилища.
func (c *Config) R2Configured() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return value, nil
}
