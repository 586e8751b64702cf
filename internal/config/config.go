package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env  string `env:"APP_ENV" env-default:"dev"`
	Port int    `env:"PORT" env-default:"8080"`

	// Store selects the persistence backend: postgres or memory.
	Store      string `env:"STORE" env-default:"postgres"`
	DBURL      string `env:"DATABASE_URL"`
	DBHost     string `env:"DB_HOST" env-default:"127.0.0.1"`
	DBPort     string `env:"DB_PORT" env-default:"5432"`
	DBUser     string `env:"DB_USER" env-default:"taskmanager"`
	DBPassword string `env:"DB_PASSWORD" env-default:"taskmanager"`
	DBName     string `env:"DB_NAME" env-default:"taskmanager"`
	DBSSLMode  string `env:"DB_SSLMODE" env-default:"disable"`
	DBMaxConns int32  `env:"DB_MAX_CONNS" env-default:"5"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `env:"OTEL_SERVICE_NAME" env-default:"taskmanager-api"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:5173,https://mk-task-manager.vercel.app,https://taskmanager.kaplanmehmet.com"`

	// requests per RateLimitWindow per client on login and registration
	AuthRateLimit   int           `env:"RATE_LIMIT_AUTH" env-default:"20"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" env-default:"1m"`

	BcryptCost   int   `env:"BCRYPT_COST" env-default:"10"`
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" env-default:"1048576"`

	SeedUserEmail    string `env:"SEED_USER_EMAIL"`
	SeedUserPassword string `env:"SEED_USER_PASSWORD"`
	SeedUserName     string `env:"SEED_USER_NAME" env-default:"Demo User"`
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	// a missing .env file is normal outside local dev
	_ = godotenv.Load()

	var cfg Config

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}

	if cfg.DBURL == "" {
		cfg.DBURL = cfg.buildDBURL()
	}

	if cfg.Store != "postgres" && cfg.Store != "memory" {
		return Config{}, fmt.Errorf("unknown STORE %q", cfg.Store)
	}

	return cfg, nil
}

func (c Config) buildDBURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}

	return u.String()
}
