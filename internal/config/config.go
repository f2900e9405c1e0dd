package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"fwork_backend/internal/logger"
)

// Config - вся конфигурация приложения. Загружается один раз при старте и
// передается явно, без глобального состояния.
type Config struct {
	Server struct {
		Host        string   `yaml:"host"`
		Port        int      `yaml:"port"`
		Env         string   `yaml:"env"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	JWT struct {
		AccessSecret     string `yaml:"access_secret"`
		AccessTTLMinutes int    `yaml:"access_ttl_minutes"`
		RefreshSecret    string `yaml:"refresh_secret"`
		RefreshTTLHours  int    `yaml:"refresh_ttl_hours"`
	} `yaml:"jwt"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		BaseURL      string `yaml:"base_url"` // основа для ссылок в письмах
	} `yaml:"email"`
}

const (
	defaultAccessTTLMinutes = 60     // 1 час
	defaultRefreshTTLHours  = 7 * 24 // 7 дней

	// Используется только вне production и только с явным предупреждением
	devFallbackSecret = "dev-secret-do-not-use-in-production"
)

// Load читает конфигурацию: сначала config.yaml (путь в CONFIG_PATH),
// затем переменные окружения поверх файла.
func Load() (*Config, error) {
	// .env подхватывается как в локальной разработке, так и в CI;
	// отсутствие файла не является ошибкой.
	_ = godotenv.Load()

	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	if f, err := os.Open(configPath); err == nil {
		decoder := yaml.NewDecoder(f)
		decodeErr := decoder.Decode(&cfg)
		f.Close()
		if decodeErr != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, decodeErr)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := checkSecrets(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		cfg.Server.Port, _ = strconv.Atoi(v)
	}
	if v := os.Getenv("SERVER_ENV"); v != "" {
		cfg.Server.Env = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("ACCESS_TOKEN_SECRET"); v != "" {
		cfg.JWT.AccessSecret = v
	}
	if v := os.Getenv("ACCESS_TOKEN_TTL_MINUTES"); v != "" {
		cfg.JWT.AccessTTLMinutes, _ = strconv.Atoi(v)
	}
	if v := os.Getenv("REFRESH_TOKEN_SECRET"); v != "" {
		cfg.JWT.RefreshSecret = v
	}
	if v := os.Getenv("REFRESH_TOKEN_TTL_HOURS"); v != "" {
		cfg.JWT.RefreshTTLHours, _ = strconv.Atoi(v)
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.Email.SMTPHost = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		cfg.Email.SMTPPort, _ = strconv.Atoi(v)
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		cfg.Email.SMTPUsername = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Email.SMTPPassword = v
	}
	if v := os.Getenv("EMAIL_FROM"); v != "" {
		cfg.Email.FromEmail = v
	}
	if v := os.Getenv("EMAIL_BASE_URL"); v != "" {
		cfg.Email.BaseURL = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 4000
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.JWT.AccessTTLMinutes <= 0 {
		cfg.JWT.AccessTTLMinutes = defaultAccessTTLMinutes
	}
	if cfg.JWT.RefreshTTLHours <= 0 {
		cfg.JWT.RefreshTTLHours = defaultRefreshTTLHours
	}
	if cfg.Email.BaseURL == "" {
		cfg.Email.BaseURL = "http://localhost:3000"
	}
}

// checkSecrets не позволяет молча уйти в production с дефолтным секретом.
func checkSecrets(cfg *Config) error {
	if cfg.JWT.AccessSecret == "" {
		if cfg.IsProduction() {
			return fmt.Errorf("ACCESS_TOKEN_SECRET is required in production")
		}
		logger.Warn("ACCESS_TOKEN_SECRET is not set, using insecure development fallback")
		cfg.JWT.AccessSecret = devFallbackSecret
	}
	if cfg.JWT.RefreshSecret == "" {
		if cfg.IsProduction() {
			return fmt.Errorf("REFRESH_TOKEN_SECRET is required in production")
		}
		logger.Warn("REFRESH_TOKEN_SECRET is not set, using insecure development fallback")
		cfg.JWT.RefreshSecret = devFallbackSecret + "-refresh"
	}
	return nil
}

// IsProduction сообщает, работает ли приложение в production-окружении
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// AccessTTL - время жизни access-токена
func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.JWT.AccessTTLMinutes) * time.Minute
}

// RefreshTTL - время жизни refresh-токена
func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.JWT.RefreshTTLHours) * time.Hour
}
