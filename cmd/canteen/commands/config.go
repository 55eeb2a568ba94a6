package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"canteen-backend/internal/configutil"
	"canteen-backend/internal/db"
	"canteen-backend/internal/menu"

	"dario.cat/mergo"
)

type MenuConfig struct {
	Url            string `json:"url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	// the minimum amount of seconds between two requests to the menu page,
	// an explicit 0 disables the limit
	MinIntervalSeconds *int   `json:"min_interval_seconds"`
	CloudflareBypass   bool   `json:"cloudflare_bypass"`
	UserAgent          string `json:"user_agent"`
}

type ExtraConfig struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Category string `json:"category"`
}

type Config struct {
	// a local sqlite path or a libsql:// url
	Database string     `json:"database"`
	Menu     MenuConfig `json:"menu"`

	// evaluated in Europe/Warsaw
	RefreshCron    string `json:"refresh_cron"`
	RefreshOnStart bool   `json:"refresh_on_start"`

	HttpPort int `json:"http_port"`
	// the bearer token required by POST /menu/refresh, refreshing over http
	// is disabled when this is empty
	AdminToken string `json:"admin_token"`

	StandardExtras []ExtraConfig `json:"standard_extras"`
}

var defaultConfig = Config{
	Database: ".dev/canteen.db",
	Menu: MenuConfig{
		Url:                menu.DefaultMenuUrl,
		TimeoutSeconds:     30,
		MinIntervalSeconds: ptr(5),
	},
	RefreshCron: "0 6 * * 1",
	HttpPort:    8000,
}

func ptr[T any](value T) *T {
	return &value
}

// readConfig reads the config file, missing files and fields fall back to
// defaultConfig.
func readConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("config file not found, using defaults", "path", path)
	} else if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	// set pointers are kept even when they point to a zero value
	err = mergo.Merge(&cfg, defaultConfig, mergo.WithoutDereference)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

func (c Config) FetcherOptions() menu.FetcherOptions {
	opts := menu.FetcherOptions{
		Url:              c.Menu.Url,
		Timeout:          time.Duration(c.Menu.TimeoutSeconds) * time.Second,
		CloudflareBypass: c.Menu.CloudflareBypass,
		UserAgent:        c.Menu.UserAgent,
	}
	if c.Menu.MinIntervalSeconds != nil {
		opts.MinInterval = time.Duration(*c.Menu.MinIntervalSeconds) * time.Second
	}
	return opts
}

// SeedExtras returns the configured standard extras, or the built in ones
// when none are configured.
func (c Config) SeedExtras() []db.InsertExtraParams {
	if len(c.StandardExtras) == 0 {
		return menu.DefaultStandardExtras
	}
	extras := make([]db.InsertExtraParams, 0, len(c.StandardExtras))
	for _, e := range c.StandardExtras {
		extras = append(extras, db.InsertExtraParams{
			Name:     e.Name,
			Price:    e.Price,
			Image:    menu.ImageSlug(e.Name),
			Category: e.Category,
		})
	}
	return extras
}
