package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/NeNorvalls/Secure-Notes-App/internal/infra/setup"
)

// 会话存储后端
const (
	SessionBackendCookie = "cookie"
	SessionBackendRedis  = "redis"
)

const envProduction = "production"

// Config 结构体用于存储从环境变量加载的配置
type Config struct {
	AppEnv     string
	LogLevel   string
	ServerPort string

	SecretKey            string
	SessionEncryptionKey string
	SessionBackend       string
	SessionMaxAge        time.Duration
	SessionCookieSecure  bool

	DBDriver   string
	DBDSN      string
	SQLitePath string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string

	CSRFEnabled   bool
	CSRFTimeLimit time.Duration

	// BcryptCost 不从环境变量读取，测试中会调低
	BcryptCost int
}

// IsProduction 判断 APP_ENV 是否为 production
func (c *Config) IsProduction() bool { return c.AppEnv == envProduction }

// LoadConfig 从环境变量加载配置，存在 .env 文件时优先加载
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // 忽略错误，允许只使用环境变量

	cfg := &Config{
		AppEnv:               os.Getenv("APP_ENV"),
		LogLevel:             os.Getenv("LOG_LEVEL"),
		ServerPort:           os.Getenv("SERVER_PORT"),
		SecretKey:            os.Getenv("SECRET_KEY"),
		SessionEncryptionKey: os.Getenv("SESSION_ENCRYPTION_KEY"),
		SessionBackend:       strings.ToLower(os.Getenv("SESSION_BACKEND")),
		DBDriver:             strings.ToLower(os.Getenv("DB_DRIVER")),
		DBDSN:                os.Getenv("DB_DSN"),
		SQLitePath:           os.Getenv("SQLITE_PATH"),
		DBHost:               os.Getenv("DB_HOST"),
		DBPort:               os.Getenv("DB_PORT"),
		DBUser:               os.Getenv("DB_USER"),
		DBPassword:           os.Getenv("DB_PASSWORD"),
		DBName:               os.Getenv("DB_NAME"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		KeyPrefix:            os.Getenv("REDIS_KEY_PREFIX"),
	}

	// 设置默认值
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.SessionBackend == "" {
		cfg.SessionBackend = SessionBackendCookie
	}
	if cfg.DBDriver == "" {
		cfg.DBDriver = setup.DriverSQLite
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = "notes.db"
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "notes:"
	}

	var err error
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		return nil, err
	}
	maxAgeHours, err := intEnv("SESSION_MAX_AGE_HOURS", 744)
	if err != nil {
		return nil, err
	}
	cfg.SessionMaxAge = time.Duration(maxAgeHours) * time.Hour
	if cfg.SessionCookieSecure, err = boolEnv("SESSION_COOKIE_SECURE", cfg.IsProduction()); err != nil {
		return nil, err
	}
	if cfg.CSRFEnabled, err = boolEnv("CSRF_ENABLED", true); err != nil {
		return nil, err
	}
	csrfMinutes, err := intEnv("CSRF_TIME_LIMIT_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	cfg.CSRFTimeLimit = time.Duration(csrfMinutes) * time.Minute

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查必填项和枚举值
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("environment variable SECRET_KEY must be set")
	}
	switch len(c.SessionEncryptionKey) {
	case 0, 16, 24, 32:
	default:
		return fmt.Errorf("SESSION_ENCRYPTION_KEY must be 16, 24 or 32 bytes, got %d", len(c.SessionEncryptionKey))
	}
	switch c.SessionBackend {
	case SessionBackendCookie:
	case SessionBackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("environment variable REDIS_ADDR must be set when SESSION_BACKEND is redis")
		}
	default:
		return fmt.Errorf("unsupported SESSION_BACKEND %q", c.SessionBackend)
	}
	switch c.DBDriver {
	case setup.DriverSQLite, setup.DriverMySQL, setup.DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE_HOURS must be positive")
	}
	if c.CSRFTimeLimit <= 0 {
		return fmt.Errorf("CSRF_TIME_LIMIT_MINUTES must be positive")
	}
	return nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s must be an integer: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("environment variable %s must be a boolean: %w", key, err)
	}
	return b, nil
}
