package config

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"food_marketplace/internal/guard"
	"food_marketplace/internal/model"
	"food_marketplace/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearAppEnv(t *testing.T) {
	for _, key := range []string{
		"APP_PORT", "API_BASE_URL", "API_TIMEOUT_SECONDS", "SESSION_BACKEND", "SESSION_FILE",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "REDIS_KEY_PREFIX",
		"GUARD_LOGIN_PATH", "GUARD_FALLBACK_PATH",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadAppConfig_Defaults(t *testing.T) {
	clearAppEnv(t)

	cfg, err := LoadAppConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.Address())
	assert.Equal(t, "http://localhost:8080/api/v1", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.APITimeout)
	assert.Equal(t, SessionBackendFile, cfg.SessionBackend)
	assert.Equal(t, "session.json", cfg.SessionFile)
	assert.Equal(t, "marketplace:", cfg.Redis.KeyPrefix)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, "/login", cfg.LoginPath)
	assert.Equal(t, "/", cfg.FallbackPath)
}

func TestLoadAppConfig_Overrides(t *testing.T) {
	clearAppEnv(t)
	t.Setenv("APP_PORT", "9000")
	t.Setenv("API_BASE_URL", "https://api.example.com/v1/")
	t.Setenv("API_TIMEOUT_SECONDS", "3")
	t.Setenv("SESSION_BACKEND", "Redis")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("GUARD_LOGIN_PATH", "/welcome")

	cfg, err := LoadAppConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Address())
	assert.Equal(t, "https://api.example.com/v1", cfg.APIBaseURL)
	assert.Equal(t, 3*time.Second, cfg.APITimeout)
	assert.Equal(t, SessionBackendRedis, cfg.SessionBackend)
	assert.Equal(t, 2, cfg.Redis.DB)

	g := cfg.GuardConfig()
	assert.Equal(t, "/welcome", g.LoginPath)
	d := guard.Decide("/orders", session.Session{}, g)
	assert.Equal(t, guard.Decision{Action: guard.Redirect, Target: "/welcome"}, d)
}

func TestLoadAppConfig_InvalidTimeoutFallsBack(t *testing.T) {
	clearAppEnv(t)
	t.Setenv("API_TIMEOUT_SECONDS", "soon")

	cfg, err := LoadAppConfig()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.APITimeout)
}

func TestLoadAppConfig_Rejects(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown backend", "SESSION_BACKEND", "sqlite"},
		{"bad redis db", "REDIS_DB", "-1"},
		{"relative login path", "GUARD_LOGIN_PATH", "login"},
		{"relative fallback path", "GUARD_FALLBACK_PATH", "home"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearAppEnv(t)
			t.Setenv(tt.key, tt.val)
			_, err := LoadAppConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadMockAPIConfig(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")
	_, err := LoadMockAPIConfig()
	assert.EqualError(t, err, "JWT_SECRET_KEY not set in environment")

	t.Setenv("JWT_SECRET_KEY", "s3cret")
	t.Setenv("JWT_EXPIRATION_HOURS", "abc")
	t.Setenv("OTP_TTL_MINUTES", "10")
	t.Setenv("OTP_ECHO", "true")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("INITIAL_ADMIN_PHONE", " +15550001 ")

	cfg, err := LoadMockAPIConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Address())
	assert.Equal(t, int64(24), cfg.JWTExpirationHours)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.True(t, cfg.EchoOTP)
	assert.Equal(t, "+15550001", cfg.InitialAdminPhone)
}

func TestLoadDBConfig(t *testing.T) {
	t.Setenv("DB_HOST", "")
	_, err := LoadDBConfig()
	assert.Error(t, err)

	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "marketplace")
	cfg, err := LoadDBConfig()
	require.NoError(t, err)
	assert.Equal(t, "host=db port=5432 user=app password=pw dbname=marketplace sslmode=disable", cfg.DSN)
}

func TestAutoMigrate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS kv_store")).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	require.NoError(t, AutoMigrate(context.Background(), mock))

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))
	err = AutoMigrate(context.Background(), mock)
	assert.ErrorContains(t, err, "unable to apply migrations")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenSessionRepository(t *testing.T) {
	ctx := context.Background()
	user := model.UserProfile{ID: "u1", Role: model.RoleUser}

	t.Run("file", func(t *testing.T) {
		cfg := AppConfig{SessionBackend: SessionBackendFile, SessionFile: filepath.Join(t.TempDir(), "session.json")}
		kv, closeFn, err := OpenSessionRepository(ctx, cfg)
		require.NoError(t, err)
		defer closeFn()

		store := session.NewStore(kv)
		<-store.Ready()
		require.NoError(t, store.Login(ctx, "tok", user))

		reopened, closeAgain, err := OpenSessionRepository(ctx, cfg)
		require.NoError(t, err)
		defer closeAgain()
		assert.True(t, session.NewStore(reopened).Load(ctx).IsAuthenticated())
	})

	t.Run("memory", func(t *testing.T) {
		kv, closeFn, err := OpenSessionRepository(ctx, AppConfig{SessionBackend: SessionBackendMemory})
		require.NoError(t, err)
		defer closeFn()
		require.NoError(t, kv.Set(ctx, session.TokenKey, "tok"))
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := AppConfig{SessionBackend: SessionBackendRedis, Redis: RedisConfig{Addr: mr.Addr(), KeyPrefix: "test:"}}
		kv, closeFn, err := OpenSessionRepository(ctx, cfg)
		require.NoError(t, err)
		defer closeFn()

		require.NoError(t, kv.Set(ctx, session.TokenKey, "tok"))
		got, err := mr.Get("test:" + session.TokenKey)
		require.NoError(t, err)
		assert.Equal(t, "tok", got)
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()
		_, _, err := OpenSessionRepository(ctx, AppConfig{SessionBackend: SessionBackendRedis, Redis: RedisConfig{Addr: addr}})
		assert.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := OpenSessionRepository(ctx, AppConfig{SessionBackend: "etcd"})
		assert.Error(t, err)
	})
}
