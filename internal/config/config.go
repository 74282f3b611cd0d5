// Package config загружает конфигурацию сервиса из TOML файла.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config корневая конфигурация сервиса
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Redis         RedisConfig         `toml:"redis"`
	Logs          LogsConfig          `toml:"logs"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Gateway       GatewayConfig       `toml:"gateway"`
	Mailer        MailerConfig        `toml:"mailer"`
	Pushgate      PushgateConfig      `toml:"pushgate"`
	Notifications NotificationsConfig `toml:"notifications"`
	Booking       BookingConfig       `toml:"booking"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int    `toml:"http_port"`
	ReadTimeout     int    `toml:"read_timeout"`     // Секунды
	WriteTimeout    int    `toml:"write_timeout"`    // Секунды
	IdleTimeout     int    `toml:"idle_timeout"`     // Секунды
	ShutdownTimeout int    `toml:"shutdown_timeout"` // Секунды
	PublicBaseURL   string `toml:"public_base_url"`  // База для ссылок клиенту
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
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // Секунды
}

// DSN возвращает строку подключения к PostgreSQL
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// RedisConfig настройки Redis для окна защиты от дублей.
// При Enabled=false защита работает только по БД.
type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки Prometheus метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// GatewayConfig настройки клиента платежного шлюза.
// Учетные данные шлюза хранятся у каждого бизнеса, здесь только транспорт.
type GatewayConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // Секунды
}

// MailerConfig настройки почтового сервиса
type MailerConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // Секунды
}

// PushgateConfig настройки сервиса шаблонных push-сообщений
type PushgateConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // Секунды
}

// NotificationsConfig настройки диспетчера уведомлений
type NotificationsConfig struct {
	Workers      int `toml:"workers"`
	QueueSize    int `toml:"queue_size"`
	MaxAttempts  int `toml:"max_attempts"`
	RetryBackoff int `toml:"retry_backoff"` // Миллисекунды
	SendTimeout  int `toml:"send_timeout"`  // Секунды
}

// BookingConfig настройки движка бронирований
type BookingConfig struct {
	ReservationMinutes int `toml:"reservation_minutes"` // Окно удержания слота
	FingerprintWindow  int `toml:"fingerprint_window"`  // Секунды
	SweepInterval      int `toml:"sweep_interval"`      // Секунды
}

// Load читает и парсит конфигурацию из TOML файла
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 {
		return fmt.Errorf("config: server.http_port must be positive")
	}
	if cfg.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if cfg.Database.DBName == "" {
		return fmt.Errorf("config: database.dbname is required")
	}
	if cfg.Redis.Enabled && cfg.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when redis is enabled")
	}
	return nil
}
