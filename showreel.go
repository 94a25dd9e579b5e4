// Package showreel is a videographer portfolio site built with Go, Echo and
// templ. A public one-page site and a session-gated admin console share one
// document store whose changes are pushed live to every open page.
//
// Page components are supplied through ViewFuncs; DefaultViews wires the
// components of the views package.
package showreel

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/showreel/auth"
	"github.com/eringen/showreel/content"
	"github.com/eringen/showreel/docstore"
	"github.com/eringen/showreel/imagehost"
	"github.com/eringen/showreel/views"
)

// ViewFuncs holds the page components the handlers render.
type ViewFuncs struct {
	Home          func(d views.HomeData, meta views.PageMeta) templ.Component
	HomeSection   func(name string, d views.HomeData) templ.Component
	Login         func(d views.LoginData) templ.Component
	Admin         func(d views.AdminData) templ.Component
	AdminSection  func(name string, d views.AdminData) templ.Component
	ConfirmDelete func(d views.ConfirmData) templ.Component
	NotFound      func() templ.Component
	ServerError   func() templ.Component
}

// DefaultViews returns the built-in components.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:          views.Home,
		HomeSection:   views.Section,
		Login:         views.Login,
		Admin:         views.Admin,
		AdminSection:  views.AdminSection,
		ConfirmDelete: views.ConfirmDelete,
		NotFound:      views.NotFound,
		ServerError:   views.ServerError,
	}
}

// App is the central showreel application. It wires together the store,
// hub, editor, session gate, image host, handlers and middleware.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *docstore.Store
	Hub    *docstore.Hub
	Editor *content.Editor
	Auth   auth.Provider
	Images imagehost.Host
	Views  ViewFuncs
	Logger *slog.Logger

	loginLimiter *LoginLimiter
	live         *liveStreams
	shutdown     chan struct{}
	shutdownOnce sync.Once
	notifier     *docstore.RedisNotifier
	stopListen   func()
	customRoutes []func(*App)
	staticDir    string
	initialized  bool
}

// New creates a new App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     DefaultViews(),
		live:      newLiveStreams(),
		shutdown:  make(chan struct{}),
		staticDir: "public",
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}
	if a.Logger == nil {
		a.Logger = slog.Default()
	}
	return a
}

// Init opens the store and change notifier, then registers middleware and
// routes. Start calls it when it has not run yet; tests call it directly and
// drive a.Echo with httptest.
func (a *App) Init(ctx context.Context) error {
	if a.initialized {
		return nil
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("showreel: SessionSecret is required")
	}

	store, err := docstore.Open(a.Config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("showreel: init store: %w", err)
	}
	a.Store = store

	hubOpts := []docstore.HubOption{docstore.WithCacheTTL(a.Config.SnapshotCacheTTL)}
	if a.Config.RedisURL != "" {
		n, err := docstore.NewRedisNotifier(a.Config.RedisURL, a.Config.RedisChannel, a.Logger)
		if err != nil {
			a.Close()
			return fmt.Errorf("showreel: init notifier: %w", err)
		}
		a.notifier = n
		hubOpts = append(hubOpts, docstore.WithNotifier(n))
	}
	a.Hub = docstore.NewHub(store, a.Logger, hubOpts...)
	if a.notifier != nil {
		stop, err := a.notifier.Listen(context.WithoutCancel(ctx), a.Hub.Refresh)
		if err != nil {
			a.Close()
			return fmt.Errorf("showreel: listen for changes: %w", err)
		}
		a.stopListen = stop
	}

	a.Editor = content.NewEditor(a.Hub, a.Logger)
	if a.Auth == nil {
		a.Auth = auth.NewLocalProvider(a.Hub)
	}
	if a.Images == nil {
		host, err := a.newImageHost(ctx)
		if err != nil {
			a.Close()
			return err
		}
		a.Images = host
	}

	a.loginLimiter = NewLoginLimiter(a.Config.LoginMaxAttempts, a.Config.LoginWindow)
	a.Echo.Server.RegisterOnShutdown(a.endStreams)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.initialized = true
	return nil
}

func (a *App) newImageHost(ctx context.Context) (imagehost.Host, error) {
	switch a.Config.ImageBackend {
	case ImageBackendLocal:
		dir := a.Config.UploadsDir
		if dir == "" {
			dir = filepath.Join(a.staticDir, "uploads")
		}
		return imagehost.NewLocal(dir, "/public/uploads"), nil
	case ImageBackendS3:
		host, err := imagehost.NewS3(ctx, a.Config.S3)
		if err != nil {
			return nil, fmt.Errorf("showreel: init s3 image host: %w", err)
		}
		return host, nil
	}
	return nil, fmt.Errorf("showreel: unknown image backend %q", a.Config.ImageBackend)
}

// Start initializes the app if needed and serves HTTP until the server is
// shut down.
func (a *App) Start() error {
	if err := a.Init(context.Background()); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and releases
// every resource.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	if cerr := a.Close(); err == nil {
		err = cerr
	}
	return err
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Framework assets are served under /public/ ahead of the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.StripPrefix("/public/", http.FileServer(http.FS(embeddedFS)))
	e.GET("/public/live.js", echo.WrapHandler(embeddedHandler))
	e.GET("/public/style.css", echo.WrapHandler(embeddedHandler))

	if a.Config.UploadsDir != "" {
		e.Static("/public/uploads", a.Config.UploadsDir)
	}
	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)

	// Public routes
	e.GET("/", a.handleHome)
	e.GET("/lang/:code/", a.handleLanguage)
	e.GET("/theme/", a.handleTheme)
	e.POST("/booking/", a.handleBooking)
	e.GET("/live/", a.handleLive)

	// Session gate
	e.GET("/login/", a.handleLoginPage)
	e.POST("/login/", a.handleLogin)
	e.POST("/logout/", a.handleLogout)

	// Admin routes
	g := e.Group("/admin", requireSession)
	g.GET("/", a.handleAdmin)
	g.GET("/live/", a.handleAdminLive)
	g.POST("/upload/", a.handleImageUpload)
	g.POST("/content/:lang/", a.handleSaveContent)
	g.POST("/bookings/:id/toggle/", a.handleToggleBooking)
	g.POST("/:collection/", a.handleAdminSave)
	g.POST("/:collection/:id/", a.handleAdminSave)
	g.GET("/:collection/:id/delete/", a.handleAdminConfirmDelete)
	g.POST("/:collection/:id/delete/", a.handleAdminDelete)
}

// endStreams makes every open live stream return so a graceful shutdown does
// not wait on them.
func (a *App) endStreams() {
	a.shutdownOnce.Do(func() { close(a.shutdown) })
}

// Close ends the live streams and releases the change listener, hub and
// store.
func (a *App) Close() error {
	a.endStreams()
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.stopListen != nil {
		a.stopListen()
		a.stopListen = nil
	}
	if a.Hub != nil {
		a.Hub.Close()
	}
	var err error
	if a.notifier != nil {
		err = a.notifier.Close()
		a.notifier = nil
	}
	if a.Store != nil {
		if cerr := a.Store.Close(); err == nil {
			err = cerr
		}
		a.Store = nil
	}
	return err
}
