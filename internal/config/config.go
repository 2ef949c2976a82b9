package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// devSecret solo se usa si APP_ENV=development se declara explícitamente.
const devSecret = "dev-secret-change-me"

type (
	Config struct {
		App      AppConfig
		HTTP     HTTPConfig
		DB       DBConfig
		Token    TokenConfig
		Security SecurityConfig
		Log      LogConfig
	}

	AppConfig struct {
		Name string `env:"APP_NAME" env-default:"gestion-bovina"`
		Env  string `env:"APP_ENV" env-default:"production"`
	}

	HTTPConfig struct {
		Port            int           `env:"HTTP_PORT" env-default:"3000"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"5s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
	}

	// DBConfig: memory (default) no requiere DSN.
	DBConfig struct {
		Driver string `env:"DB_DRIVER" env-default:"memory"`
		DSN    string `env:"DB_DSN"`
	}

	// TokenConfig: TTL 0 = tokens sin expiración.
	TokenConfig struct {
		Secret string        `env:"JWT_SECRET"`
		TTL    time.Duration `env:"TOKEN_TTL" env-default:"0s"`
	}

	SecurityConfig struct {
		BcryptCost int `env:"BCRYPT_COST" env-default:"10"`
	}

	LogConfig struct {
		Level  string `env:"LOG_LEVEL" env-default:"info"`
		Format string `env:"LOG_FORMAT" env-default:"text"`
	}
)

func (a AppConfig) IsDevelopment() bool {
	return strings.EqualFold(strings.TrimSpace(a.Env), "development")
}

// Addr devuelve ":<port>" para http.Server.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf(":%d", h.Port)
}

// Load lee .env (si existe) y luego variables de entorno.
func Load() (*Config, error) {
	// .env es opcional: en contenedores todo viene por env.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if strings.TrimSpace(cfg.Token.Secret) == "" && cfg.App.IsDevelopment() {
		cfg.Token.Secret = devSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	c.DB.Driver = strings.ToLower(strings.TrimSpace(c.DB.Driver))
	switch c.DB.Driver {
	case DriverMemory:
	case DriverPostgres, DriverSQLite:
		if strings.TrimSpace(c.DB.DSN) == "" {
			errs = append(errs, fmt.Errorf("DB_DSN is required for driver %q", c.DB.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DB.Driver))
	}

	if strings.TrimSpace(c.Token.Secret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required outside development"))
	}
	if c.Token.TTL < 0 {
		errs = append(errs, errors.New("TOKEN_TTL must not be negative"))
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d", c.HTTP.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
