// Package birdblog is a small photo-gallery web application: editors upload
// animal photographs tagged with species and an optional uploader profile,
// and visitors browse posts filtered by species. Storage is a relational
// database behind gorm (postgres or local sqlite) plus a local directory for
// the image files themselves.
package birdblog

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rhit-weinrea/moms-bird-blog/views"
)

// App is the central application. It wires together the store, middleware,
// session handling, and route handlers.
type App struct {
	Config Config
	Echo   *echo.Echo
	Store  *Store

	mu    sync.Mutex
	ready bool
}

// New creates an App with the given configuration. Call Start (or Setup, in
// tests) before serving requests.
func New(cfg Config) *App {
	cfg.setDefaults()
	return &App{
		Config: cfg,
		Echo:   echo.New(),
	}
}

// Setup opens the store and wires middleware and routes without starting the
// listener. Tests drive the Echo instance directly after calling it.
func (a *App) Setup() error {
	store, err := NewStore(a.Config.DatabaseURL, a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("birdblog: open store: %w", err)
	}
	a.Store = store
	a.setupMiddleware()
	a.setupRoutes()
	return nil
}

// Start sets the app up and serves until the listener stops.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases the database pool. Call when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// ensureReady lazily bootstraps storage on the first browsing request: make
// sure the upload directory exists, wait for the database to answer, create
// missing tables, and repair schema drift. Failure is logged and swallowed so
// the site keeps serving and later queries fail on their own terms; the flag
// latches only on success, so the next request retries.
func (a *App) ensureReady() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ready {
		return
	}
	if err := os.MkdirAll(a.Config.UploadDir, 0o755); err != nil {
		a.Echo.Logger.Errorf("create upload dir: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.BootstrapTimeout+time.Second)
	defer cancel()
	if err := a.Store.WaitForDB(ctx, a.Config.BootstrapTimeout, time.Second); err != nil {
		a.Echo.Logger.Errorf("bootstrap: %v", err)
		return
	}
	if err := a.Store.Migrate(); err != nil {
		a.Echo.Logger.Errorf("bootstrap: %v", err)
		return
	}
	a.ready = true
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/healthz", a.handleHealthz)
	e.GET("/", a.handleHome)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/uploads/:filename", a.handleUploadedFile)

	e.GET("/login", a.handleLoginForm)
	e.POST("/login", a.handleLogin)
	e.GET("/logout", a.handleLogout)

	e.GET("/species", a.handleSpeciesList)
	e.GET("/species/new", a.handleNewSpeciesForm, a.requireEditor)
	e.POST("/species/new", a.handleNewSpecies, a.requireEditor)
	e.GET("/species/:id", a.handleSpeciesProfile)
	e.GET("/species/:id/edit", a.handleEditSpeciesForm, a.requireEditor)
	e.POST("/species/:id/edit", a.handleEditSpecies, a.requireEditor)
	e.POST("/species/:id/delete", a.handleDeleteSpecies, a.requireEditor)
	e.GET("/species/:id/animals", a.handleAnimalsForSpecies)
	e.POST("/species/:id/animals/new", a.handleNewAnimal, a.requireEditor)

	e.GET("/animals/:id/edit", a.handleEditAnimalForm, a.requireEditor)
	e.POST("/animals/:id/edit", a.handleEditAnimal, a.requireEditor)

	e.GET("/post/new", a.handleNewPostForm, a.requireEditor)
	e.POST("/post/new", a.handleNewPost, a.requireEditor)
	e.POST("/post/:id/delete", a.handleDeletePost, a.requireEditor)

	e.GET("/users", a.handleUsersList)
	e.GET("/users/new", a.handleNewUserForm, a.requireEditor)
	e.POST("/users/new", a.handleNewUser, a.requireEditor)
}

func (a *App) siteConfig() views.SiteConfig {
	return views.SiteConfig{
		Name: a.Config.SiteName,
		URL:  a.Config.SiteURL,
	}
}
