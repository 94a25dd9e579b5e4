package showreel

import (
	"log/slog"
	"time"

	"github.com/eringen/showreel/auth"
	"github.com/eringen/showreel/imagehost"
)

// Image backends selectable in SiteConfig.ImageBackend.
const (
	ImageBackendLocal = "local"
	ImageBackendS3    = "s3"
)

// SiteConfig holds all configuration for a showreel site.
type SiteConfig struct {
	Name        string // Site name (default "Showreel")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Meta description
	Author      string // Videographer name for JSON-LD

	Addr        string // Listen address (default ":3000")
	DatabaseURL string // sqlite path or postgres:// URL (default "data/showreel.db")

	RedisURL     string // Optional; enables cross-instance change notification
	RedisChannel string // Pub/sub channel (default docstore.DefaultChannel)

	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	SnapshotCacheTTL time.Duration // Collection snapshot cache TTL (default 5min)

	UploadsDir   string // Local image directory (default "<static>/uploads")
	ImageBackend string // "local" (default) or "s3"
	S3           imagehost.S3Config

	LoginMaxAttempts int           // Failed logins allowed per window (default 5)
	LoginWindow      time.Duration // Login limiter window (default 1min)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Showreel"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = "data/showreel.db"
	}
	if c.SnapshotCacheTTL == 0 {
		c.SnapshotCacheTTL = 5 * time.Minute
	}
	if c.ImageBackend == "" {
		c.ImageBackend = ImageBackendLocal
	}
	if c.LoginMaxAttempts == 0 {
		c.LoginMaxAttempts = 5
	}
	if c.LoginWindow == 0 {
		c.LoginWindow = time.Minute
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLogger sets the logger handed to the store hub, editor and notifier.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.Logger = logger
	}
}

// WithImageHost replaces the configured image backend.
func WithImageHost(h imagehost.Host) Option {
	return func(a *App) {
		a.Images = h
	}
}

// WithProvider replaces the local identity provider.
func WithProvider(p auth.Provider) Option {
	return func(a *App) {
		a.Auth = p
	}
}

// WithViews overrides the default page components.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}
