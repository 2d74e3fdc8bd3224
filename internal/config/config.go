// Package config содержит конфигурацию и загрузчик настроек.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultAPIURL - адрес публичного сервиса объявлений.
	DefaultAPIURL = "https://anbo-salesitems.azurewebsites.net/api/"

	defaultConfigPath = "config.yaml"
)

// Config содержит конфигурацию приложения
type Config struct {
	API       APIConfig       `yaml:"api"`
	Auth      AuthConfig      `yaml:"auth"`
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// APIConfig содержит настройки клиента удаленного сервиса.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	// Timeout 0 означает отсутствие таймаута.
	Timeout     time.Duration `yaml:"timeout"`
	LogRequests bool          `yaml:"log_requests"`
}

// AuthConfig содержит настройки Firebase Authentication.
type AuthConfig struct {
	APIKey string `yaml:"api_key"`
	// Endpoint переопределяет адрес Identity Toolkit (эмулятор, тесты).
	Endpoint        string `yaml:"endpoint"`
	ProjectID       string `yaml:"project_id"`
	VerifyTokens    bool   `yaml:"verify_tokens"`
	CredentialsFile string `yaml:"credentials_file"`
	SessionFile     string `yaml:"session_file"`
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// TelemetryConfig содержит настройки трассировки и метрик.
type TelemetryConfig struct {
	ServiceName      string  `yaml:"service_name"`
	Environment      string  `yaml:"environment"`
	OTLPEndpoint     string  `yaml:"otlp_endpoint"`
	OTLPInsecure     bool    `yaml:"otlp_insecure"`
	TracesEnabled    bool    `yaml:"traces_enabled"`
	MetricsEnabled   bool    `yaml:"metrics_enabled"`
	TraceSampleRatio float64 `yaml:"trace_sample_ratio"`
	MetricsPath      string  `yaml:"metrics_path"`
}

// LoadConfig загружает .env, файл конфигурации из CONFIG_PATH и переменные окружения.
// Отсутствие файла по умолчанию не является ошибкой.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	path := os.Getenv("CONFIG_PATH")
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	cfg, err := loadFile(path, explicit)
	if err != nil {
		return nil, err
	}

	applyEnv(cfg)
	normalizeConfig(cfg)
	return cfg, nil
}

func loadFile(path string, required bool) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SALESITEMS_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("FIREBASE_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("FIREBASE_PROJECT_ID"); v != "" {
		cfg.Auth.ProjectID = v
	}
	if v := os.Getenv("FIREBASE_AUTH_EMULATOR_HOST"); v != "" && cfg.Auth.Endpoint == "" {
		cfg.Auth.Endpoint = "http://" + v + "/www.googleapis.com/identitytoolkit/v3/relyingparty/"
	}
}

// Address возвращает адрес сервера в формате host:port
func (s *ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: DefaultAPIURL,
		},
		Auth: AuthConfig{
			SessionFile: ".salesitems-session.json",
		},
		Server: ServerConfig{
			Host:         "",
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Telemetry: TelemetryConfig{
			ServiceName:      "salesitems",
			Environment:      "local",
			OTLPEndpoint:     "localhost:4318",
			OTLPInsecure:     true,
			TracesEnabled:    false,
			MetricsEnabled:   true,
			TraceSampleRatio: 1.0,
			MetricsPath:      "/metrics",
		},
	}
}

func normalizeConfig(cfg *Config) {
	cfg.API.BaseURL = strings.TrimSpace(cfg.API.BaseURL)
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultAPIURL
	}
	if !strings.HasSuffix(cfg.API.BaseURL, "/") {
		cfg.API.BaseURL += "/"
	}
	if cfg.API.Timeout < 0 {
		cfg.API.Timeout = 0
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60 * time.Second
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "salesitems"
	}
	if cfg.Telemetry.OTLPEndpoint == "" {
		cfg.Telemetry.OTLPEndpoint = "localhost:4318"
	}
	if cfg.Telemetry.TraceSampleRatio <= 0 || cfg.Telemetry.TraceSampleRatio > 1 {
		cfg.Telemetry.TraceSampleRatio = 1.0
	}
	if cfg.Telemetry.MetricsPath == "" {
		cfg.Telemetry.MetricsPath = "/metrics"
	}
}
