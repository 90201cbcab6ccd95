package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Config holds process-wide settings. It is constructed once at startup and
// shared read-only by every handler and the purge scheduler.
type Config struct {
	Addr          string
	Port          int
	CreateDirs    bool
	DB            string
	MainSite      string
	AppName       string
	Domain        string
	AdminEmail    string
	TokenLifetime time.Duration

	// Secrets and delivery settings come from the environment only,
	// never from the config file.
	CookieSecret string
	SMTPAddr     string
	SMTPFrom     string
}

// ListenAddr returns the host:port pair to bind.
func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Addr, c.Port)
}

// fileConfig mirrors the on-disk JSON shape. The token lifetime is stored
// as milliseconds in the file and converted on load.
type fileConfig struct {
	Addr              string `json:"ip"`
	Port              int    `json:"port"`
	CreateDirs        bool   `json:"createdirs"`
	DB                string `json:"db"`
	MainSite          string `json:"mainsite"`
	AppName           string `json:"appname"`
	Domain            string `json:"domain"`
	AdminEmail        string `json:"admin_email"`
	TokenExpirationMs int64  `json:"token_expiration_ms"`
}

// Defaults returns the compiled-in fallback configuration.
func Defaults() Config {
	return Config{
		Addr:          "127.0.0.1",
		Port:          8000,
		CreateDirs:    false,
		DB:            "./zknotes.db",
		MainSite:      "http://localhost:8000",
		AppName:       "zknotes",
		Domain:        "localhost",
		AdminEmail:    "admin@localhost",
		TokenLifetime: 7 * 24 * time.Hour,
	}
}

// Load builds the runtime configuration: defaults, then the JSON config
// file (path from ZKNOTES_CONFIG, default config.json), then environment
// overrides. A missing or malformed file is logged and ignored — startup
// never fails because configuration is absent.
func Load() Config {
	cfg := Defaults()

	path := getEnv("ZKNOTES_CONFIG", "config.json")
	if err := overlayFile(&cfg, path); err != nil {
		slog.Warn("config file not loaded, using defaults", "path", path, "error", err)
	}

	cfg.CookieSecret = getEnv("COOKIE_SECRET", "dev-secret-change-in-production")
	cfg.SMTPAddr = os.Getenv("SMTP_ADDR")
	cfg.SMTPFrom = getEnv("SMTP_FROM", "no-reply@"+cfg.Domain)

	return cfg
}

// overlayFile reads path and copies its non-zero fields onto cfg.
func overlayFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := json.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if fc.Addr != "" {
		cfg.Addr = fc.Addr
	}
	if fc.Port != 0 {
		cfg.Port = fc.Port
	}
	cfg.CreateDirs = fc.CreateDirs
	if fc.DB != "" {
		cfg.DB = fc.DB
	}
	if fc.MainSite != "" {
		cfg.MainSite = fc.MainSite
	}
	if fc.AppName != "" {
		cfg.AppName = fc.AppName
	}
	if fc.Domain != "" {
		cfg.Domain = fc.Domain
	}
	if fc.AdminEmail != "" {
		cfg.AdminEmail = fc.AdminEmail
	}
	if fc.TokenExpirationMs != 0 {
		cfg.TokenLifetime = time.Duration(fc.TokenExpirationMs) * time.Millisecond
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
