package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"food_marketplace/internal/guard"
)

// Session storage backends
const (
	SessionBackendFile     = "file"
	SessionBackendMemory   = "memory"
	SessionBackendRedis    = "redis"
	SessionBackendPostgres = "postgres"
)

// AppConfig configures the app shell
type AppConfig struct {
	Port           string
	APIBaseURL     string
	APITimeout     time.Duration
	SessionBackend string
	SessionFile    string
	Redis          RedisConfig
	LoginPath      string
	FallbackPath   string
}

// LoadAppConfig reads the app shell configuration from the environment
func LoadAppConfig() (AppConfig, error) {
	cfg := AppConfig{
		Port:           fallback(os.Getenv("APP_PORT"), "8081"),
		APIBaseURL:     strings.TrimRight(fallback(os.Getenv("API_BASE_URL"), "http://localhost:8080/api/v1"), "/"),
		APITimeout:     time.Duration(positiveInt(os.Getenv("API_TIMEOUT_SECONDS"), 15)) * time.Second,
		SessionBackend: strings.ToLower(fallback(os.Getenv("SESSION_BACKEND"), SessionBackendFile)),
		SessionFile:    fallback(os.Getenv("SESSION_FILE"), "session.json"),
		Redis: RedisConfig{
			Addr:      fallback(os.Getenv("REDIS_ADDR"), "localhost:6379"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			KeyPrefix: fallback(os.Getenv("REDIS_KEY_PREFIX"), "marketplace:"),
		},
		LoginPath:    fallback(os.Getenv("GUARD_LOGIN_PATH"), "/login"),
		FallbackPath: fallback(os.Getenv("GUARD_FALLBACK_PATH"), "/"),
	}

	if raw := strings.TrimSpace(os.Getenv("REDIS_DB")); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil || db < 0 {
			return AppConfig{}, fmt.Errorf("invalid REDIS_DB %q", raw)
		}
		cfg.Redis.DB = db
	}

	switch cfg.SessionBackend {
	case SessionBackendFile, SessionBackendMemory, SessionBackendRedis, SessionBackendPostgres:
	default:
		return AppConfig{}, fmt.Errorf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}
	if !strings.HasPrefix(cfg.LoginPath, "/") || !strings.HasPrefix(cfg.FallbackPath, "/") {
		return AppConfig{}, errors.New("GUARD_LOGIN_PATH and GUARD_FALLBACK_PATH must be absolute paths")
	}

	return cfg, nil
}

// Address returns the listen address of the app shell
func (c AppConfig) Address() string {
	return ":" + c.Port
}

// GuardConfig returns the default route table with the configured redirect targets
func (c AppConfig) GuardConfig() guard.Config {
	g := guard.DefaultConfig()
	g.LoginPath = c.LoginPath
	g.FallbackPath = c.FallbackPath
	g.PublicPaths[c.LoginPath] = struct{}{}
	return g
}

// MockAPIConfig configures the development backend
type MockAPIConfig struct {
	Port                   string
	JWTSecret              string
	JWTIssuer              string
	JWTExpirationHours     int64
	UploadsDir             string
	OTPTTL                 time.Duration
	EchoOTP                bool
	InitialAdminPhone      string
	InitialSuperAdminPhone string
}

// LoadMockAPIConfig reads the development backend configuration from the environment
func LoadMockAPIConfig() (MockAPIConfig, error) {
	cfg := MockAPIConfig{
		Port:                   fallback(os.Getenv("SERVER_PORT"), "8080"),
		JWTSecret:              strings.TrimSpace(os.Getenv("JWT_SECRET_KEY")),
		JWTIssuer:              fallback(os.Getenv("JWT_ISSUER"), "food-marketplace"),
		JWTExpirationHours:     int64(positiveInt(os.Getenv("JWT_EXPIRATION_HOURS"), 24)),
		UploadsDir:             fallback(os.Getenv("UPLOADS_DIR"), "uploads"),
		OTPTTL:                 time.Duration(positiveInt(os.Getenv("OTP_TTL_MINUTES"), 5)) * time.Minute,
		InitialAdminPhone:      strings.TrimSpace(os.Getenv("INITIAL_ADMIN_PHONE")),
		InitialSuperAdminPhone: strings.TrimSpace(os.Getenv("INITIAL_SUPERADMIN_PHONE")),
	}
	cfg.EchoOTP, _ = strconv.ParseBool(strings.TrimSpace(os.Getenv("OTP_ECHO")))

	if cfg.JWTSecret == "" {
		return MockAPIConfig{}, errors.New("JWT_SECRET_KEY not set in environment")
	}
	return cfg, nil
}

// Address returns the listen address of the development backend
func (c MockAPIConfig) Address() string {
	return ":" + c.Port
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func positiveInt(value string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
