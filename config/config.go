package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DefaultEnv                = "development"
	DefaultPort               = "5000"
	DefaultSessionTokenTTL    = time.Hour
	DefaultResetTokenTTL      = 15 * time.Minute
	DefaultResetLinkBaseURL   = "http://localhost:3000/reset-password"
	DefaultPasswordHashScheme = "argon2id"
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "json"
	DefaultDBMaxConns         = 10
	DefaultDBConnectAttempts  = 3
)

// Dir is where the per-environment .env files live, relative to the working directory.
var Dir = "config"

type Config struct {
	Env  string `env:"ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"5000"`

	DBURL                  string        `env:"DB_URL,required,notEmpty"`
	DBMaxConns             int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMaxConnLifetime      time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBConnectAttempts      int           `env:"DB_CONNECT_ATTEMPTS" envDefault:"3"`
	DBConnectRetryInterval time.Duration `env:"DB_CONNECT_RETRY_INTERVAL" envDefault:"2s"`

	JWTSecret        string        `env:"JWT_SECRET,required,notEmpty"`
	SessionTokenTTL  time.Duration `env:"SESSION_TOKEN_TTL" envDefault:"1h"`
	ResetTokenTTL    time.Duration `env:"RESET_TOKEN_TTL" envDefault:"15m"`
	ResetLinkBaseURL string        `env:"RESET_LINK_BASE_URL" envDefault:"http://localhost:3000/reset-password"`

	PasswordHashScheme  string `env:"PASSWORD_HASH_SCHEME" envDefault:"argon2id"`
	ListExposeSensitive bool   `env:"LIST_EXPOSE_SENSITIVE" envDefault:"false"`

	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string `env:"LOG_FORMAT" envDefault:"json"`
	CORSAllowOrigins string `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
}

// Load reads the configuration and exits the process if it is incomplete.
func Load() *Config {
	cfg, err := LoadE()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return cfg
}

// LoadE merges the environment's .env file with the process environment.
// Process variables win over file values.
func LoadE() (*Config, error) {
	appEnv := os.Getenv("ENV")
	if appEnv == "" {
		appEnv = DefaultEnv
	}

	vars, err := readEnvFile(filepath.Join(Dir, envFileName(appEnv)))
	if err != nil {
		return nil, err
	}
	for k, v := range env.ToMap(os.Environ()) {
		vars[k] = v
	}

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.SessionTokenTTL <= 0 || cfg.ResetTokenTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}
	return cfg, nil
}

func envFileName(appEnv string) string {
	switch appEnv {
	case "development":
		return ".env.dev"
	case "production":
		return ".env.prod"
	default:
		return ".env." + appEnv
	}
}

func readEnvFile(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return vars, nil
}
