// Package config loads the application settings.
//
// Sources are layered, later ones winning:
//
//  1. built-in defaults
//  2. an optional YAML file (YATUBE_CONFIG, or config.yaml in the working directory)
//  3. the legacy variables ENV, JWT_SECRET, ADDRESS_LISTEN, DB_DRIVER, DB_URL,
//     ENABLE_SIGNUP and WHITELIST_HOST
//  4. YATUBE_* variables, with "__" separating nested keys
//     (YATUBE_CACHE__BACKEND=redis sets cache.backend)
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	DevEnv = "dev"
	ProEnv = "pro"

	EnvPrefix     = "YATUBE_"
	ConfigPathEnv = "YATUBE_CONFIG"
)

type Config struct {
	Env      string         `koanf:"env"`
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Feed     FeedConfig     `koanf:"feed"`
	Cache    CacheConfig    `koanf:"cache"`
	Media    MediaConfig    `koanf:"media"`
	Mail     MailConfig     `koanf:"mail"`
	Log      LogConfig      `koanf:"log"`
	Groups   []GroupSeed    `koanf:"groups"`
}

type ServerConfig struct {
	// Address to listen on. Empty outside dev means AutoTLS on :443.
	Address string `koanf:"address"`
	TLSHost string `koanf:"tls_host"`
	// BaseURL is the public origin used in links that leave the site.
	BaseURL      string        `koanf:"base_url"`
	CertCacheDir string        `koanf:"cert_cache_dir"`
	StaticDir    string        `koanf:"static_dir"`
	ShutdownWait time.Duration `koanf:"shutdown_wait"`
}

type DatabaseConfig struct {
	Driver string `koanf:"driver"`
	URL    string `koanf:"url"`
}

type AuthConfig struct {
	JWTSecret    string        `koanf:"jwt_secret"`
	EnableSignup bool          `koanf:"enable_signup"`
	TokenTTL     time.Duration `koanf:"token_ttl"`
}

type FeedConfig struct {
	PageSize int           `koanf:"page_size"`
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

type CacheConfig struct {
	// Backend is memory or redis.
	Backend         string        `koanf:"backend"`
	RedisAddr       string        `koanf:"redis_addr"`
	RedisPassword   string        `koanf:"redis_password"`
	RedisDB         int           `koanf:"redis_db"`
	Prefix          string        `koanf:"prefix"`
	JanitorInterval time.Duration `koanf:"janitor_interval"`
}

type MediaConfig struct {
	// Backend is disk or minio.
	Backend   string        `koanf:"backend"`
	Dir       string        `koanf:"dir"`
	BaseURL   string        `koanf:"base_url"`
	Endpoint  string        `koanf:"endpoint"`
	AccessKey string        `koanf:"access_key"`
	SecretKey string        `koanf:"secret_key"`
	Bucket    string        `koanf:"bucket"`
	UseSSL    bool          `koanf:"use_ssl"`
	URLTTL    time.Duration `koanf:"url_ttl"`
}

type MailConfig struct {
	// Backend is log or smtp.
	Backend  string `koanf:"backend"`
	From     string `koanf:"from"`
	SMTPAddr string `koanf:"smtp_addr"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// GroupSeed is a group created or refreshed at startup.
type GroupSeed struct {
	Slug        string `koanf:"slug"`
	Title       string `koanf:"title"`
	Description string `koanf:"description"`
}

func defaultConfig() *Config {
	return &Config{
		Env: ProEnv,
		Server: ServerConfig{
			CertCacheDir: "/var/www/.cache",
			StaticDir:    "assets",
			ShutdownWait: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			URL:    "./yatube.db",
		},
		Auth: AuthConfig{
			TokenTTL: 7 * 24 * time.Hour,
		},
		Feed: FeedConfig{
			PageSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Cache: CacheConfig{
			Backend:         "memory",
			RedisAddr:       "localhost:6379",
			Prefix:          "yatube:page:",
			JanitorInterval: 5 * time.Minute,
		},
		Media: MediaConfig{
			Backend: "disk",
			Dir:     "media",
			BaseURL: "/media/",
			Bucket:  "yatube",
			URLTTL:  time.Hour,
		},
		Mail: MailConfig{
			Backend: "log",
			From:    "noreply@yatube.local",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

var legacyEnv = map[string]string{
	"ENV":            "env",
	"JWT_SECRET":     "auth.jwt_secret",
	"ADDRESS_LISTEN": "server.address",
	"DB_DRIVER":      "database.driver",
	"DB_URL":         "database.url",
	"ENABLE_SIGNUP":  "auth.enable_signup",
	"WHITELIST_HOST": "server.tls_host",
}

// Load builds the configuration from every source and validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	legacy := env.Provider("", ".", func(key string) string {
		return legacyEnv[key]
	})
	if err := k.Load(legacy, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	prefixed := env.Provider(EnvPrefix, ".", func(key string) string {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if key == "config" {
			return ""
		}
		return strings.ReplaceAll(key, "__", ".")
	})
	if err := k.Load(prefixed, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnv); path != "" {
		return path
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	return ""
}

func (c *Config) IsDev() bool {
	return c.Env == DevEnv
}

// Validate checks the configuration and fills in the dev fallbacks:
// an insecure JWT secret and :8080 as listen address. An empty base URL
// is derived from the TLS host, or from the listen address in dev.
func (c *Config) Validate() error {
	var errs []error

	switch c.Env {
	case DevEnv, ProEnv:
	default:
		errs = append(errs, fmt.Errorf("env must be %q or %q, got %q", DevEnv, ProEnv, c.Env))
	}

	if c.Auth.JWTSecret == "" {
		if c.IsDev() {
			c.Auth.JWTSecret = "unsecure"
		} else {
			errs = append(errs, errors.New("no secret defined"))
		}
	}
	if c.IsDev() && c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Server.BaseURL == "" {
		switch {
		case c.Server.TLSHost != "":
			c.Server.BaseURL = "https://" + c.Server.TLSHost
		case c.IsDev():
			_, port, _ := net.SplitHostPort(c.Server.Address)
			c.Server.BaseURL = "http://localhost"
			if port != "" {
				c.Server.BaseURL += ":" + port
			}
		default:
			errs = append(errs, errors.New("server.base_url is required when server.tls_host is empty"))
		}
	}
	c.Server.BaseURL = strings.TrimSuffix(c.Server.BaseURL, "/")

	if c.Feed.PageSize < 1 {
		errs = append(errs, fmt.Errorf("feed.page_size must be positive, got %d", c.Feed.PageSize))
	}
	if c.Feed.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("feed.cache_ttl must be positive, got %s", c.Feed.CacheTTL))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("auth.token_ttl must be positive, got %s", c.Auth.TokenTTL))
	}

	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Cache.RedisAddr == "" {
			errs = append(errs, errors.New("cache.redis_addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache backend %q", c.Cache.Backend))
	}

	switch c.Media.Backend {
	case "disk":
		if c.Media.Dir == "" {
			errs = append(errs, errors.New("media.dir is required for the disk backend"))
		}
	case "minio":
		if c.Media.Endpoint == "" || c.Media.Bucket == "" {
			errs = append(errs, errors.New("media.endpoint and media.bucket are required for the minio backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown media backend %q", c.Media.Backend))
	}

	switch c.Mail.Backend {
	case "log":
	case "smtp":
		if c.Mail.SMTPAddr == "" {
			errs = append(errs, errors.New("mail.smtp_addr is required for the smtp backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown mail backend %q", c.Mail.Backend))
	}

	for i, g := range c.Groups {
		if g.Slug == "" || g.Title == "" {
			errs = append(errs, fmt.Errorf("groups[%d] needs a slug and a title", i))
		}
	}

	return errors.Join(errs...)
}
