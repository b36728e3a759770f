package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPHost string
	HTTPPort string
	GRPCHost string
	GRPCPort string

	MySQLDSN     string
	MySQLMaxOpen int
	MySQLMaxIdle int
	MySQLMaxLife time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LockBackend string
	LockTTL     time.Duration

	EmailProvider  string
	AWSRegion      string
	SESSourceEmail string
	SMTPTimeout    time.Duration

	MaxAttachmentBytes int64
	DedupeContacts     bool

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment, after an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	p := &parser{}
	cfg := &Config{
		HTTPHost: getEnv("HTTP_HOST", "0.0.0.0"),
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		GRPCHost: getEnv("GRPC_HOST", "0.0.0.0"),
		GRPCPort: getEnv("GRPC_PORT", "9090"),

		MySQLDSN:     getEnv("MYSQL_DSN", ""),
		MySQLMaxOpen: p.int("MYSQL_MAX_OPEN", 10),
		MySQLMaxIdle: p.int("MYSQL_MAX_IDLE", 5),
		MySQLMaxLife: p.duration("MYSQL_MAX_LIFETIME", 30*time.Minute),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       p.int("REDIS_DB", 0),

		LockBackend: strings.ToLower(getEnv("LOCK_BACKEND", "")),
		LockTTL:     p.duration("LOCK_TTL", time.Minute),

		EmailProvider:  strings.ToLower(getEnv("EMAIL_PROVIDER", "smtp")),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		SESSourceEmail: getEnv("SES_SOURCE_EMAIL", ""),
		SMTPTimeout:    p.duration("SMTP_TIMEOUT", 30*time.Second),

		MaxAttachmentBytes: int64(p.int("MAX_ATTACHMENT_BYTES", 10<<20)),
		DedupeContacts:     p.bool("DEDUPE_CONTACTS", false),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
	if p.err != nil {
		return nil, p.err
	}

	if cfg.LockBackend == "" {
		cfg.LockBackend = defaultLockBackend(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LockBackend {
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("LOCK_BACKEND=redis requires REDIS_ADDR")
		}
	case "mysql":
		if c.MySQLDSN == "" {
			return fmt.Errorf("LOCK_BACKEND=mysql requires MYSQL_DSN")
		}
	case "none":
	default:
		return fmt.Errorf("unsupported LOCK_BACKEND: %s", c.LockBackend)
	}

	switch c.EmailProvider {
	case "smtp", "ses", "noop":
	default:
		return fmt.Errorf("unsupported EMAIL_PROVIDER: %s", c.EmailProvider)
	}

	if c.LockTTL < 3*time.Second {
		return fmt.Errorf("LOCK_TTL must be at least 3s")
	}
	if c.MaxAttachmentBytes < 0 {
		return fmt.Errorf("MAX_ATTACHMENT_BYTES must not be negative")
	}
	return nil
}

func defaultLockBackend(c *Config) string {
	switch {
	case c.RedisAddr != "":
		return "redis"
	case c.MySQLDSN != "":
		return "mysql"
	default:
		return "none"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parser keeps the first conversion error so Load can report it once.
type parser struct {
	err error
}

func (p *parser) int(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, raw, err)
		return defaultValue
	}
	return v
}

func (p *parser) bool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, raw, err)
		return defaultValue
	}
	return v
}

func (p *parser) duration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.fail(key, raw, err)
		return defaultValue
	}
	return v
}

func (p *parser) fail(key, raw string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
}
