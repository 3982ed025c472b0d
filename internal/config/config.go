package config

import (
	"errors"
	"log/slog"
	"time"

	"github.com/joho/godotenv"

	pkgconfig "github.com/Skotchmaster/zefir_shop/pkg/config"
)

type Config struct {
	ServerPort int
	LogLevel   string

	DBDriver    string
	DatabaseURL string

	JWTSecret      []byte
	AccessTokenTTL time.Duration
	DefaultRole    string

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string
}

func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		slog.Info("no .env file, using process environment", "error", err)
	}

	cfg := &Config{
		ServerPort: pkgconfig.EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:   pkgconfig.EnvDefault("LOG_LEVEL", "info"),

		DBDriver:    pkgconfig.EnvDefault("DB_DRIVER", "postgres"),
		DatabaseURL: pkgconfig.EnvDefault("DATABASE_URL", ""),

		JWTSecret:      []byte(pkgconfig.EnvDefault("JWT_SECRET", "")),
		AccessTokenTTL: pkgconfig.EnvDurationDefault("ACCESS_TOKEN_TTL", 15*time.Minute),
		DefaultRole:    pkgconfig.EnvDefault("DEFAULT_ROLE", "user"),

		KafkaBrokers: pkgconfig.CSV(pkgconfig.EnvDefault("KAFKA_BROKERS", "")),

		ESURL:      pkgconfig.EnvDefault("ES_URL", ""),
		ESUser:     pkgconfig.EnvDefault("ES_USER", ""),
		ESPassword: pkgconfig.EnvDefault("ES_PASSWORD", ""),
		ESIndex:    pkgconfig.EnvDefault("ES_INDEX", "products"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	errs = append(errs, pkgconfig.NonEmptyBytes(c.JWTSecret, "JWT_SECRET"))
	errs = append(errs, pkgconfig.NonEmpty(c.DatabaseURL, "DATABASE_URL"))
	switch c.DBDriver {
	case "postgres", "pq", "sqlite":
	default:
		errs = append(errs, errors.New("DB_DRIVER must be one of postgres, pq, sqlite"))
	}
	switch c.DefaultRole {
	case "user", "admin":
	default:
		errs = append(errs, errors.New("DEFAULT_ROLE must be user or admin"))
	}
	return errors.Join(errs...)
}
