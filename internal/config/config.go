package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port            string        `yaml:"port"`
	RecordStoreURL  string        `yaml:"record_store_url"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	NotificationTTL time.Duration `yaml:"notification_ttl"`
	DatabaseURL     string        `yaml:"database_url"`
	DBDriver        string        `yaml:"db_driver"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

// Load reads .env when present, then the environment, then the YAML file
// named by DIRECTORY_CONFIG. Values set in the file win.
func Load() (AppConfig, error) {
	_ = godotenv.Load() // load .env if present

	cfg := AppConfig{
		Port:           getenvDefault("PORT", "8080"),
		RecordStoreURL: os.Getenv("RECORD_STORE_URL"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DBDriver:       getenvDefault("DB_DRIVER", "pgx"),
		CORSOrigins:    splitCSV(os.Getenv("CORS_ORIGINS")),
	}

	var err error
	if cfg.RequestTimeout, err = durationEnv("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return cfg, err
	}
	if cfg.NotificationTTL, err = durationEnv("NOTIFICATION_TTL", 3*time.Second); err != nil {
		return cfg, err
	}

	if path := os.Getenv("DIRECTORY_CONFIG"); path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// ValidateDirectory checks what the directory service needs.
func (c AppConfig) ValidateDirectory() error {
	if c.RecordStoreURL == "" {
		return errors.New("config: missing required value RECORD_STORE_URL")
	}
	if c.RequestTimeout <= 0 || c.NotificationTTL <= 0 {
		return errors.New("config: timeouts must be positive")
	}
	return nil
}

// ValidateRecordStore checks what the record store server needs.
func (c AppConfig) ValidateRecordStore() error {
	if c.DatabaseURL == "" {
		return errors.New("config: missing required value DATABASE_URL")
	}
	return nil
}

func overlayFile(cfg *AppConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var file AppConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	if file.Port != "" {
		cfg.Port = file.Port
	}
	if file.RecordStoreURL != "" {
		cfg.RecordStoreURL = file.RecordStoreURL
	}
	if file.RequestTimeout != 0 {
		cfg.RequestTimeout = file.RequestTimeout
	}
	if file.NotificationTTL != 0 {
		cfg.NotificationTTL = file.NotificationTTL
	}
	if file.DatabaseURL != "" {
		cfg.DatabaseURL = file.DatabaseURL
	}
	if file.DBDriver != "" {
		cfg.DBDriver = file.DBDriver
	}
	if len(file.CORSOrigins) > 0 {
		cfg.CORSOrigins = file.CORSOrigins
	}
	return nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func splitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
