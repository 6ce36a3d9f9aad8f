package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config конфигурация сервиса
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Redis     RedisConfig     `toml:"redis"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	CORS      CORSConfig      `toml:"cors"`
	Freetime  FreetimeConfig  `toml:"freetime"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"` // пусто - stdout
	Level string `toml:"level"`
}

// MetricsConfig настройки prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// RedisConfig настройки Redis (используется лимитером запросов)
type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// RateLimitConfig ограничение запросов на IP
type RateLimitConfig struct {
	Enabled       bool `toml:"enabled"`
	Requests      int  `toml:"requests"`       // запросов в окне
	WindowSeconds int  `toml:"window_seconds"` // длина окна

	// TrustedProxies IP или CIDR балансировщиков, от которых принимается X-Forwarded-For
	TrustedProxies []string `toml:"trusted_proxies"`
}

// Window длина окна лимитера
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// CORSConfig настройки CORS для фронтенда календаря
type CORSConfig struct {
	AllowedOrigins []string `toml:"allowed_origins"`
}

// FreetimeConfig настройки движка доступности
type FreetimeConfig struct {
	Timezone            string `toml:"timezone"`
	QueryTimeoutSeconds int    `toml:"query_timeout"`
	MaxRangeDays        int    `toml:"max_range_days"`
	Workers             int    `toml:"workers"`
	Ownership           string `toml:"ownership"` // provisional | organization
}

// QueryTimeout таймаут одного запроса доступности
func (c FreetimeConfig) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutSeconds) * time.Second
}

// Location часовой пояс, в котором интерпретируются даты запроса
func (c FreetimeConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Load загружает конфигурацию из TOML файла
// Перед этим подхватывается .env (если есть), переменные окружения перекрывают значения файла
func Load(path string) (*Config, error) {
	// .env опционален
	_ = godotenv.Load()

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default значения по умолчанию, поверх которых декодируется файл
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    30,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "freetime_service",
		},
		RateLimit: RateLimitConfig{
			Requests:      120,
			WindowSeconds: 60,
		},
		Freetime: FreetimeConfig{
			Timezone:            "Europe/Oslo",
			QueryTimeoutSeconds: 10,
			MaxRangeDays:        93,
			Workers:             8,
			Ownership:           "provisional",
		},
	}
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("DB_HOST"); ok {
		c.Database.Host = v
	}
	if v, ok := os.LookupEnv("DB_PASSWORD"); ok {
		c.Database.Password = v
	}
	if v, ok := os.LookupEnv("DB_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DB_PORT %q: %w", v, err)
		}
		c.Database.Port = port
	}
	if v, ok := os.LookupEnv("REDIS_ADDR"); ok {
		c.Redis.Addr = v
	}
	if v, ok := os.LookupEnv("FREETIME_TIMEZONE"); ok {
		c.Freetime.Timezone = v
	}
	return nil
}

// Validate проверяет непротиворечивость конфигурации
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid server.http_port: %d", c.Server.HTTPPort)
	}
	if c.Database.DBName == "" {
		return errors.New("database.dbname is required")
	}
	if _, err := c.Freetime.Location(); err != nil {
		return fmt.Errorf("invalid freetime.timezone %q: %w", c.Freetime.Timezone, err)
	}
	if c.Freetime.MaxRangeDays <= 0 {
		return fmt.Errorf("freetime.max_range_days must be positive, got %d", c.Freetime.MaxRangeDays)
	}
	if c.Freetime.Workers <= 0 {
		return fmt.Errorf("freetime.workers must be positive, got %d", c.Freetime.Workers)
	}
	if c.Freetime.QueryTimeoutSeconds <= 0 {
		return fmt.Errorf("freetime.query_timeout must be positive, got %d", c.Freetime.QueryTimeoutSeconds)
	}
	if c.Freetime.Ownership != "provisional" && c.Freetime.Ownership != "organization" {
		return fmt.Errorf("unknown freetime.ownership %q", c.Freetime.Ownership)
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.WindowSeconds <= 0) {
		return errors.New("rate_limit.requests and rate_limit.window_seconds must be positive")
	}
	for _, proxy := range c.RateLimit.TrustedProxies {
		if net.ParseIP(proxy) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(proxy); err != nil {
			return fmt.Errorf("invalid rate_limit.trusted_proxies entry %q", proxy)
		}
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("redis.addr is required when redis is enabled")
	}
	return nil
}
