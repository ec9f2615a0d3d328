// Пакет config — загрузка и валидация конфигурации Inspection Module
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sakthiauto/inspection-module/internal/domain/workflow"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Inspection Module.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- PostgreSQL ---

	// Хост PostgreSQL
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Имя пользователя PostgreSQL
	DBUser string
	// Пароль пользователя PostgreSQL
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string

	// --- Аутентификация ---

	// Секрет подписи JWT (HS256)
	JWTSecret string
	// Срок жизни выданного токена
	TokenTTL time.Duration
	// Коды регистрации по ролям: код предъявляется при signup
	// и определяет роль учётной записи
	RoleCodes map[workflow.Role]string

	// --- Кэш сводных таблиц ---

	// Максимальное число записей в LRU-кэше
	CacheMaxSize int
	// Время жизни записи кэша
	CacheTTL time.Duration

	// --- Мониторинг зависимостей ---

	// Интервал проверки зависимостей topologymetrics
	DephealthCheckInterval time.Duration
	// Имя группы в метриках topologymetrics
	DephealthGroup string

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// IM_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("IM_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("IM_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("IM_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// IM_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("IM_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("IM_LOG_LEVEL: %w", err)
	}

	// IM_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("IM_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("IM_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- PostgreSQL ---

	// IM_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("IM_DB_HOST")
	if err != nil {
		return nil, err
	}

	// IM_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("IM_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("IM_DB_PORT: %w", err)
	}

	// IM_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("IM_DB_NAME")
	if err != nil {
		return nil, err
	}

	// IM_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("IM_DB_USER")
	if err != nil {
		return nil, err
	}

	// IM_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("IM_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// IM_DB_SSL_MODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("IM_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("IM_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// --- Аутентификация ---

	// IM_JWT_SECRET — обязательный
	cfg.JWTSecret, err = getEnvRequired("IM_JWT_SECRET")
	if err != nil {
		return nil, err
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("IM_JWT_SECRET: длина %d, требуется не менее 32 символов", len(cfg.JWTSecret))
	}

	// IM_TOKEN_TTL — срок жизни токена (по умолчанию 24h)
	cfg.TokenTTL, err = getEnvDuration("IM_TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("IM_TOKEN_TTL: %w", err)
	}

	// IM_ROLE_CODE_* — коды регистрации по ролям. Значения по умолчанию —
	// коды dev-среды, в эксплуатации задаются явно.
	cfg.RoleCodes = map[workflow.Role]string{
		workflow.RoleAuditor:         getEnvDefault("IM_ROLE_CODE_AUDITOR", "AUDITOR123"),
		workflow.RoleTeamLeaderAudit: getEnvDefault("IM_ROLE_CODE_TEAM_LEADER_AUDIT", "TLA456"),
		workflow.RoleHOFAudit:        getEnvDefault("IM_ROLE_CODE_HOF_AUDIT", "HOF789"),
		workflow.RoleQualityHead:     getEnvDefault("IM_ROLE_CODE_QUALITY_HEAD", "QH0101"),
	}

	// --- Кэш сводных таблиц ---

	// IM_CACHE_MAX_SIZE — размер LRU-кэша (по умолчанию 128)
	cfg.CacheMaxSize, err = getEnvInt("IM_CACHE_MAX_SIZE", 128)
	if err != nil {
		return nil, fmt.Errorf("IM_CACHE_MAX_SIZE: %w", err)
	}
	if cfg.CacheMaxSize < 1 {
		return nil, fmt.Errorf("IM_CACHE_MAX_SIZE: значение %d, требуется положительное", cfg.CacheMaxSize)
	}

	// IM_CACHE_TTL — время жизни записи кэша (по умолчанию 5m)
	cfg.CacheTTL, err = getEnvDuration("IM_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("IM_CACHE_TTL: %w", err)
	}

	// --- Мониторинг зависимостей ---

	// IM_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("IM_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("IM_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// IM_DEPHEALTH_GROUP — имя группы в метриках (по умолчанию "quality")
	cfg.DephealthGroup = getEnvDefault("IM_DEPHEALTH_GROUP", "quality")

	// --- Graceful shutdown ---

	// IM_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("IM_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("IM_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в форме key=value.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL подключения к PostgreSQL. Используется
// для лейблов метрик topologymetrics.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.DBUser), url.QueryEscape(c.DBPassword),
		c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
