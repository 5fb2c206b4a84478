package config

import (
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション設定を表す
type Config struct {
	App     AppConfig
	Server  ServerConfig
	Auth    AuthConfig
	Redis   RedisConfig
	Ledger  LedgerConfig
	Metrics MetricsConfig
}

// AppConfig は実行環境とデモデータの設定
type AppConfig struct {
	Env         string
	LogLevel    string
	SeedEnabled bool
	// 空の場合は埋め込みのデモデータを使う
	SeedFile string
}

// ServerConfig はサーバー設定
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// AuthConfig はトークン発行の設定
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// RedisConfig はRedis設定
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// LedgerConfig は台帳の設定
type LedgerConfig struct {
	FeaturedLimit int
}

// MetricsConfig は /metrics エンドポイントとメトリクス収集の設定
type MetricsConfig struct {
	User              string
	Password          string
	CollectorInterval time.Duration
}

// Load は .env と環境変数から設定を読み込む
func Load() *Config {
	// .env は任意
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Env:         getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", ""),
			SeedEnabled: getBoolEnv("SEED_ENABLED", true),
			SeedFile:    getEnv("SEED_FILE", ""),
		},
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-me"),
			TokenTTL:  getDurationEnv("JWT_TTL", 24*time.Hour),
		},
		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			CacheTTL: getDurationEnv("REDIS_CACHE_TTL", 30*time.Second),
		},
		Ledger: LedgerConfig{
			FeaturedLimit: getIntEnv("FEATURED_LIMIT", 3),
		},
		Metrics: MetricsConfig{
			User:              getEnv("METRICS_USER", ""),
			Password:          getEnv("METRICS_PASSWORD", ""),
			CollectorInterval: getPositiveDurationEnv("METRICS_COLLECTOR_INTERVAL", 15*time.Second),
		},
	}

	// REDIS_URL（redis://:password@host:port/db）が設定されていれば個別設定より優先する
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Redis.applyURL(redisURL)
	}

	return cfg
}

// Addr はRedis接続アドレスを返す
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// IsProduction は本番環境かどうかを返す
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// MetricsAuthEnabled は /metrics にBasic認証をかけるかどうかを返す
func (c *MetricsConfig) MetricsAuthEnabled() bool {
	return c.User != "" && c.Password != ""
}

func (c *RedisConfig) applyURL(raw string) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		// パースに失敗した場合は個別設定を使う
		return
	}
	c.Enabled = true
	if host := u.Hostname(); host != "" {
		c.Host = host
	}
	if port := u.Port(); port != "" {
		c.Port = port
	}
	if password, ok := u.User.Password(); ok {
		c.Password = password
	}
	if len(u.Path) > 1 {
		if db, err := strconv.Atoi(u.Path[1:]); err == nil {
			c.DB = db
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getPositiveDurationEnv は0以下の値をデフォルトに置き換える
func getPositiveDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if d := getDurationEnv(key, defaultValue); d > 0 {
		return d
	}
	return defaultValue
}
