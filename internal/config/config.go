package config

import (
	"errors"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultSecretKey signs session cookies when SECRET_KEY is unset.
// It is only acceptable for local development; Validate rejects it in prod.
const DefaultSecretKey = "dev-secret-key-change-in-production"

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Port string

	// Env is "dev" (default) or "prod". When "prod", SECRET_KEY must be set and not the default.
	Env string

	// Store selects the persistence backend: "postgres" (default) or "memory".
	Store string

	DBHost    string
	DBPort    string
	DBName    string
	DBUser    string
	DBPass    string
	DBSSLMode string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int

	// AutoMigrate applies embedded migrations on startup (default true).
	AutoMigrate bool

	SecretKey string

	// SessionTTLHours is the session cookie lifetime in hours (default 24).
	SessionTTLHours int

	// BcryptCost is the bcrypt work factor. Zero means bcrypt.DefaultCost.
	BcryptCost int

	// CookieSecure marks the session cookie Secure. Forced on when TLS is configured.
	CookieSecure bool

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string

	// MaxBodyBytes caps form submissions (default 1 MiB).
	MaxBodyBytes int64
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("config: .env not loaded", "error", err)
	}

	return Config{
		Port:  getEnv("PORT", "5000"),
		Env:   getEnv("ENV", "dev"),
		Store: getEnv("STORE", StorePostgres),

		DBHost:    getEnv("DB_HOST", "localhost"),
		DBPort:    getEnv("DB_PORT", "5432"),
		DBName:    getEnv("DB_NAME", "cpetracker"),
		DBUser:    getEnv("DB_USER", "cpeuser"),
		DBPass:    getEnv("DB_PASS", "cpepass"),
		DBSSLMode: getEnv("DB_SSLMODE", "disable"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
		AutoMigrate:    getEnvBool("AUTO_MIGRATE", true),

		SecretKey:       getEnv("SECRET_KEY", DefaultSecretKey),
		SessionTTLHours: getEnvInt("SESSION_TTL_HOURS", 24),
		BcryptCost:      getEnvInt("BCRYPT_COST", 0),
		CookieSecure:    getEnvBool("COOKIE_SECURE", false),

		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		LogFormat: getEnv("LOG_FORMAT", "text"),

		MaxBodyBytes: int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
	}
}

// Validate reports settings that must not reach production.
func (c Config) Validate() error {
	if c.Store != StorePostgres && c.Store != StoreMemory {
		return errors.New("STORE must be postgres or memory")
	}
	if c.Env != "prod" {
		return nil
	}
	if c.SecretKey == "" || c.SecretKey == DefaultSecretKey {
		return errors.New("SECRET_KEY must be set in prod")
	}
	if c.Store == StoreMemory {
		return errors.New("STORE=memory is not allowed in prod")
	}
	return nil
}

// TLSEnabled reports whether both certificate and key are configured.
func (c Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// DatabaseURL returns the postgres URL form used by golang-migrate.
func (c Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPass),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
