package birdblog

import (
	"os"
	"strings"
	"time"
)

// Config holds all settings for a gallery instance, populated from the
// environment. Every field has a working default so a bare `go run` serves a
// local sqlite-backed site.
type Config struct {
	SiteName string // SITE_NAME (default "Mom's Bird Blog")
	SiteURL  string // SITE_URL, canonical base used by the feed

	Addr         string // Listen address (default ":3000")
	DatabaseURL  string // DATABASE_URL; postgres DSN, empty means local sqlite
	DatabasePath string // DATABASE_PATH, sqlite file (default "data/gallery.db")
	UploadDir    string // UPLOAD_DIR (default "static/uploads")

	EditorUser    string // EDITOR_USER, the shared editor username
	EditorPass    string // EDITOR_PASS, the shared editor password
	SessionSecret string // SESSION_SECRET (legacy alias: FLASK_SECRET)

	SessionCookieSecure  bool // SESSION_COOKIE_SECURE, default on
	RememberCookieSecure bool // REMEMBER_COOKIE_SECURE, default on

	MaxUploadSize    string        // global request body cap (default "16M")
	BootstrapTimeout time.Duration // database reachability budget (default 30s)
}

// ConfigFromEnv builds a Config from the process environment. The variable
// names match the original deployment so existing service definitions keep
// working unchanged.
func ConfigFromEnv() Config {
	return Config{
		SiteName:     os.Getenv("SITE_NAME"),
		SiteURL:      strings.TrimSuffix(os.Getenv("SITE_URL"), "/"),
		Addr:         os.Getenv("ADDR"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabasePath: os.Getenv("DATABASE_PATH"),
		UploadDir:    os.Getenv("UPLOAD_DIR"),
		EditorUser:   os.Getenv("EDITOR_USER"),
		EditorPass:   os.Getenv("EDITOR_PASS"),
		// FLASK_SECRET is the name the previous deployment used.
		SessionSecret:        EnvOr("SESSION_SECRET", os.Getenv("FLASK_SECRET")),
		SessionCookieSecure:  envBool("SESSION_COOKIE_SECURE", true),
		RememberCookieSecure: envBool("REMEMBER_COOKIE_SECURE", true),
	}
}

func (c *Config) setDefaults() {
	if c.SiteName == "" {
		c.SiteName = "Mom's Bird Blog"
	}
	if c.SiteURL == "" {
		c.SiteURL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/gallery.db"
	}
	if c.UploadDir == "" {
		c.UploadDir = "static/uploads"
	}
	if c.EditorUser == "" {
		c.EditorUser = "editor"
	}
	if c.EditorPass == "" {
		c.EditorPass = "password"
	}
	if c.SessionSecret == "" {
		c.SessionSecret = "dev_secret_key"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "16M"
	}
	if c.BootstrapTimeout == 0 {
		c.BootstrapTimeout = 30 * time.Second
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
