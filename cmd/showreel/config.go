package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/eringen/showreel"
	"github.com/eringen/showreel/docstore"
	"github.com/eringen/showreel/imagehost"
)

// config is the file and environment configuration of the CLI. Every key can
// be set in the YAML config file or as SHOWREEL_<KEY> with dots replaced by
// underscores, for example SHOWREEL_REDIS_URL.
type config struct {
	Name          string        `mapstructure:"name"`
	URL           string        `mapstructure:"url"`
	Description   string        `mapstructure:"description"`
	Author        string        `mapstructure:"author"`
	Addr          string        `mapstructure:"addr"`
	DatabaseURL   string        `mapstructure:"database_url"`
	StaticDir     string        `mapstructure:"static_dir"`
	UploadsDir    string        `mapstructure:"uploads_dir"`
	SessionSecret string        `mapstructure:"session_secret"`
	CookieSecure  bool          `mapstructure:"cookie_secure"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`

	Redis struct {
		URL     string `mapstructure:"url"`
		Channel string `mapstructure:"channel"`
	} `mapstructure:"redis"`

	Images struct {
		Backend string `mapstructure:"backend"`
		S3      struct {
			Endpoint  string `mapstructure:"endpoint"`
			AccessKey string `mapstructure:"access_key"`
			SecretKey string `mapstructure:"secret_key"`
			Bucket    string `mapstructure:"bucket"`
			UseSSL    bool   `mapstructure:"use_ssl"`
			PublicURL string `mapstructure:"public_url"`
		} `mapstructure:"s3"`
	} `mapstructure:"images"`

	Login struct {
		MaxAttempts int           `mapstructure:"max_attempts"`
		Window      time.Duration `mapstructure:"window"`
	} `mapstructure:"login"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

func loadConfig(cfgFile string) (config, error) {
	v := viper.New()

	v.SetDefault("name", "Showreel")
	v.SetDefault("url", "http://localhost:3000")
	v.SetDefault("description", "")
	v.SetDefault("author", "")
	v.SetDefault("addr", ":3000")
	v.SetDefault("database_url", "data/showreel.db")
	v.SetDefault("static_dir", "public")
	v.SetDefault("uploads_dir", "")
	v.SetDefault("session_secret", "")
	v.SetDefault("cookie_secure", false)
	v.SetDefault("cache_ttl", 5*time.Minute)
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.channel", docstore.DefaultChannel)
	v.SetDefault("images.backend", showreel.ImageBackendLocal)
	v.SetDefault("images.s3.endpoint", "")
	v.SetDefault("images.s3.access_key", "")
	v.SetDefault("images.s3.secret_key", "")
	v.SetDefault("images.s3.bucket", "")
	v.SetDefault("images.s3.use_ssl", true)
	v.SetDefault("images.s3.public_url", "")
	v.SetDefault("login.max_attempts", 5)
	v.SetDefault("login.window", time.Minute)
	v.SetDefault("log.level", "info")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("showreel")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("SHOWREEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func (c config) siteConfig() showreel.SiteConfig {
	return showreel.SiteConfig{
		Name:             c.Name,
		URL:              c.URL,
		Description:      c.Description,
		Author:           c.Author,
		Addr:             c.Addr,
		DatabaseURL:      c.DatabaseURL,
		RedisURL:         c.Redis.URL,
		RedisChannel:     c.Redis.Channel,
		SessionSecret:    c.SessionSecret,
		CookieSecure:     c.CookieSecure,
		SnapshotCacheTTL: c.CacheTTL,
		UploadsDir:       c.UploadsDir,
		ImageBackend:     c.Images.Backend,
		S3: imagehost.S3Config{
			Endpoint:  c.Images.S3.Endpoint,
			AccessKey: c.Images.S3.AccessKey,
			SecretKey: c.Images.S3.SecretKey,
			Bucket:    c.Images.S3.Bucket,
			UseSSL:    c.Images.S3.UseSSL,
			PublicURL: c.Images.S3.PublicURL,
		},
		LoginMaxAttempts: c.Login.MaxAttempts,
		LoginWindow:      c.Login.Window,
	}
}

func newLogger(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}))
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
