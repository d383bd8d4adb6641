// Package config reads the service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	LogLevel        string

	CatalogURL      string
	CatalogCacheTTL time.Duration
	CatalogTimeout  time.Duration

	RedisAddr     string
	RedisPassword string
	CartTTL       time.Duration
	SecureCookies bool

	DBDriver       string
	SQLitePath     string
	DBHost         string
	DBPort         int
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	MigrationsPath string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPTimeout  time.Duration
	MailFrom     string
	OwnerEmail   string
	ShopName     string

	KafkaBrokers []string
	KafkaTopic   string

	ReserveLimit  int
	ReserveWindow time.Duration

	BoxCapacity decimal.Decimal
	RatePerBox  decimal.Decimal
}

// Load reads the configuration. Unset variables fall back to defaults;
// set but malformed ones are an error.
func Load() (*Config, error) {
	p := &parser{}
	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RequestTimeout:  p.duration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: p.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		LogLevel:        getEnv("LOG_LEVEL", "info"),

		CatalogURL:      getEnv("CATALOG_URL", ""),
		CatalogCacheTTL: p.duration("CATALOG_CACHE_TTL", 60*time.Second),
		CatalogTimeout:  p.duration("CATALOG_TIMEOUT", 10*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		CartTTL:       p.duration("CART_TTL", 7*24*time.Hour),
		SecureCookies: p.boolean("SECURE_COOKIES", false),

		DBDriver:       getEnv("DB_DRIVER", "sqlite"),
		SQLitePath:     getEnv("SQLITE_PATH", "storefront.db"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         p.integer("DB_PORT", 5432),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "storefront"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./internal/repository/migrations"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     p.integer("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASS", ""),
		SMTPTimeout:  p.duration("SMTP_TIMEOUT", 15*time.Second),
		MailFrom:     getEnv("MAIL_FROM", ""),
		OwnerEmail:   getEnv("OWNER_EMAIL", ""),
		ShopName:     getEnv("SHOP_NAME", "Storefront"),

		KafkaBrokers: list(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "reservations-outbox"),

		ReserveLimit:  p.integer("RESERVE_RATE_LIMIT", 8),
		ReserveWindow: p.duration("RESERVE_RATE_WINDOW", 10*time.Minute),

		BoxCapacity: p.decimal("BOX_CAPACITY_LITERS", decimal.NewFromInt(20)),
		RatePerBox:  p.decimal("SHIPPING_RATE_PER_BOX", decimal.NewFromInt(20)),
	}
	if p.err != nil {
		return nil, p.err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver)
	}
	if !c.BoxCapacity.IsPositive() {
		return fmt.Errorf("BOX_CAPACITY_LITERS must be positive")
	}
	if c.RatePerBox.IsNegative() {
		return fmt.Errorf("SHIPPING_RATE_PER_BOX must not be negative")
	}
	if c.ReserveLimit <= 0 || c.ReserveWindow <= 0 {
		return fmt.Errorf("RESERVE_RATE_LIMIT and RESERVE_RATE_WINDOW must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.SMTPHost != "" && c.OwnerEmail == "" {
		return fmt.Errorf("OWNER_EMAIL is required when SMTP_HOST is set")
	}
	return nil
}

// SMTPEnabled reports whether real emails should be sent.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
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

func (p *parser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s=%q: %w", key, value, err)
	}
}

func (p *parser) integer(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return defaultValue
	}
	return n
}

func (p *parser) duration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return defaultValue
	}
	return d
}

func (p *parser) boolean(key string, defaultValue bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return defaultValue
	}
	return b
}

func (p *parser) decimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		p.fail(key, v, err)
		return defaultValue
	}
	return d
}

func list(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
