package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Auth     AuthConfig     `koanf:"auth"`
	Paging   PagingConfig   `koanf:"paging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host      string          `koanf:"host"`
	Port      int             `koanf:"port"`
	Mode      string          `koanf:"mode"`
	Timeout   string          `koanf:"timeout"`
	CORS      CORSConfig      `koanf:"cors"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Cache     CacheConfig     `koanf:"cache"`
}

// CORSConfig holds CORS middleware settings.
type CORSConfig struct {
	AllowOrigins     []string `koanf:"allow_origins"`
	AllowMethods     []string `koanf:"allow_methods"`
	AllowHeaders     []string `koanf:"allow_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           string   `koanf:"max_age"`
}

// RateLimitConfig holds per-client-IP rate limiting settings. RPS is the
// steady refill rate and Burst the number of requests admitted at once.
type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps"`
	Burst   int     `koanf:"burst"`
}

// CacheConfig holds settings for the server-side cache of GET responses.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	TTL     string `koanf:"ttl"`
	MaxSize int    `koanf:"max_size"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver   string         `koanf:"driver"`
	SQLite   SQLiteConfig   `koanf:"sqlite"`
	Postgres PostgresConfig `koanf:"postgres"`
	Pool     PoolConfig     `koanf:"pool"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	SSLMode  string `koanf:"sslmode"`
}

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime string `koanf:"conn_max_lifetime"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// AuthConfig holds authentication and authorization settings.
type AuthConfig struct {
	Enabled     bool     `koanf:"enabled"`
	JWTSecret   string   `koanf:"jwt_secret"`
	TokenExpiry string   `koanf:"token_expiry"`
	Issuer      string   `koanf:"issuer"`
	Audience    string   `koanf:"audience"`
	PublicPaths []string `koanf:"public_paths"`
}

// PagingConfig holds the page size policy for list endpoints.
type PagingConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// Paging defaults applied when the paging section is absent.
const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// RequiredPublicPaths lists the routes that must stay reachable without a token.
var RequiredPublicPaths = []string{"/api/v1/authentication", "/api/v1/authentication/login"}

const envPrefix = "APP__"

// Load reads configuration from a YAML file and overlays environment variables.
// Environment variables use the prefix "APP__" and a double underscore as the
// hierarchy separator, so APP__SERVER__RATE_LIMIT__BURST=5 overrides
// server.rate_limit.burst.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
}

// Validate checks supported values and cross-field constraints, trimming
// and defaulting fields in place.
func (c *Config) Validate() error {
	for _, validate := range []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateDurations,
		c.validateRateLimitAndCache,
		c.validateAuth,
		c.validatePaging,
		c.validateLog,
	} {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	c.Server.Mode = strings.TrimSpace(c.Server.Mode)
	if err := oneOf("server.mode", c.Server.Mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode); err != nil {
		return err
	}
	if err := checkPort("server.port", c.Server.Port); err != nil {
		return err
	}
	return required("server.host", &c.Server.Host)
}

func (c *Config) validateDatabase() error {
	db := &c.Database
	switch db.Driver {
	case "sqlite":
		return required("database.sqlite.path", &db.SQLite.Path)
	case "postgres":
	default:
		return oneOf("database.driver", db.Driver, "sqlite", "postgres")
	}

	pg := &db.Postgres
	if err := required("database.postgres.host", &pg.Host); err != nil {
		return err
	}
	if err := checkPort("database.postgres.port", pg.Port); err != nil {
		return err
	}
	if err := required("database.postgres.user", &pg.User); err != nil {
		return err
	}
	if err := required("database.postgres.dbname", &pg.DBName); err != nil {
		return err
	}
	pg.SSLMode = strings.TrimSpace(pg.SSLMode)
	if err := oneOf("database.postgres.sslmode", pg.SSLMode, "disable", "allow", "prefer", "require", "verify-ca", "verify-full"); err != nil {
		return err
	}
	if c.Server.Mode == gin.ReleaseMode {
		if err := oneOf("database.postgres.sslmode", pg.SSLMode, "require", "verify-ca", "verify-full"); err != nil {
			return fmt.Errorf("%w (server.mode %q)", err, gin.ReleaseMode)
		}
	}
	return nil
}

// validateDurations checks the optional duration fields; blank means unset.
func (c *Config) validateDurations() error {
	fields := []struct {
		name  string
		value *string
	}{
		{"server.timeout", &c.Server.Timeout},
		{"server.cors.max_age", &c.Server.CORS.MaxAge},
		{"database.pool.conn_max_lifetime", &c.Database.Pool.ConnMaxLifetime},
		{"server.cache.ttl", &c.Server.Cache.TTL},
	}
	for _, f := range fields {
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" || f.name == "server.cache.ttl" {
			continue
		}
		if err := positiveDuration(f.name, *f.value); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateRateLimitAndCache() error {
	if rl := c.Server.RateLimit; rl.Enabled {
		if rl.RPS <= 0 {
			return fmt.Errorf("invalid server.rate_limit.rps %v: must be positive when rate limiting is enabled", rl.RPS)
		}
		if rl.Burst <= 0 {
			return fmt.Errorf("invalid server.rate_limit.burst %d: must be positive when rate limiting is enabled", rl.Burst)
		}
	}
	if cc := c.Server.Cache; cc.Enabled {
		if err := positiveDuration("server.cache.ttl", cc.TTL); err != nil {
			return err
		}
		if cc.MaxSize <= 0 {
			return fmt.Errorf("invalid server.cache.max_size %d: must be positive when caching is enabled", cc.MaxSize)
		}
	}
	return nil
}

func (c *Config) validateAuth() error {
	a := &c.Auth
	if !a.Enabled {
		return nil
	}

	if err := required("auth.jwt_secret", &a.JWTSecret); err != nil {
		return err
	}
	if len(a.JWTSecret) < 32 {
		return fmt.Errorf("invalid auth.jwt_secret: must be at least 32 characters")
	}
	if c.Server.Mode == gin.ReleaseMode && CountSecretClasses(a.JWTSecret) < 3 {
		return fmt.Errorf("auth.jwt_secret must include at least 3 character classes (lowercase, uppercase, digit, symbol) in release mode")
	}

	if err := required("auth.token_expiry", &a.TokenExpiry); err != nil {
		return err
	}
	if err := positiveDuration("auth.token_expiry", a.TokenExpiry); err != nil {
		return err
	}

	paths := make([]string, 0, len(a.PublicPaths))
	for i, p := range a.PublicPaths {
		p = strings.TrimSpace(p)
		if p == "" {
			return fmt.Errorf("auth.public_paths[%d] cannot be empty when auth is enabled", i)
		}
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("invalid auth.public_paths[%d] %q: must start with '/'", i, p)
		}
		if !slices.Contains(paths, p) {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return fmt.Errorf("auth.public_paths is required when auth is enabled")
	}
	for _, p := range RequiredPublicPaths {
		if !slices.Contains(paths, p) {
			return fmt.Errorf("auth.public_paths must include %q when auth is enabled", p)
		}
	}
	a.PublicPaths = paths
	a.Issuer = strings.TrimSpace(a.Issuer)
	a.Audience = strings.TrimSpace(a.Audience)
	return nil
}

// validatePaging fills zero sizes with the defaults.
func (c *Config) validatePaging() error {
	p := &c.Paging
	if p.DefaultPageSize == 0 {
		p.DefaultPageSize = DefaultPageSize
	}
	if p.MaxPageSize == 0 {
		p.MaxPageSize = MaxPageSize
	}
	switch {
	case p.DefaultPageSize < 0:
		return fmt.Errorf("invalid paging.default_page_size %d: must be positive", p.DefaultPageSize)
	case p.MaxPageSize < 0:
		return fmt.Errorf("invalid paging.max_page_size %d: must be positive", p.MaxPageSize)
	case p.DefaultPageSize > p.MaxPageSize:
		return fmt.Errorf("invalid paging.default_page_size %d: must not exceed paging.max_page_size %d", p.DefaultPageSize, p.MaxPageSize)
	}
	return nil
}

func (c *Config) validateLog() error {
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if err := oneOf("log.level", c.Log.Level, "debug", "info", "warn", "error"); err != nil {
		return err
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	return oneOf("log.format", c.Log.Format, "text", "json")
}

// required trims *v and rejects an empty result.
func required(name string, v *string) error {
	*v = strings.TrimSpace(*v)
	if *v == "" {
		return fmt.Errorf("%s is required", name)
	}
	return nil
}

func oneOf(name, v string, allowed ...string) error {
	if slices.Contains(allowed, v) {
		return nil
	}
	return fmt.Errorf("invalid %s %q: must be one of %s", name, v, strings.Join(allowed, ", "))
}

func checkPort(name string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid %s %d: must be between 1 and 65535", name, port)
	}
	return nil
}

func positiveDuration(name, v string) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid %s %q: must be greater than 0", name, v)
	}
	return nil
}

// CountSecretClasses reports how many of the classes lowercase, uppercase,
// digit and symbol occur in secret.
func CountSecretClasses(secret string) int {
	var seen [4]bool
	for _, r := range secret {
		switch {
		case unicode.IsLower(r):
			seen[0] = true
		case unicode.IsUpper(r):
			seen[1] = true
		case unicode.IsDigit(r):
			seen[2] = true
		default:
			seen[3] = true
		}
	}
	n := 0
	for _, ok := range seen {
		if ok {
			n++
		}
	}
	return n
}
