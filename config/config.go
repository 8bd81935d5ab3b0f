// Package config loads the reelkeeper configuration: a YAML file, a .env
// file and REELKEEPER_* environment overrides, in that order. Every field
// has a default so no file is needed.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/reelkeeper/domwatch"
	"github.com/hazyhaar/reelkeeper/overlay"
	"github.com/hazyhaar/reelkeeper/resolver"
)

// Environment variables that override the file.
const (
	EnvConfig      = "REELKEEPER_CONFIG"
	EnvDownloadDir = "REELKEEPER_DOWNLOAD_DIR"
	EnvSessionID   = "REELKEEPER_SESSIONID"
	EnvResolverURL = "REELKEEPER_RESOLVER_URL"
)

// DefaultListen is the serve address. Loopback only.
const DefaultListen = "127.0.0.1:8765"

// Config is the top-level configuration.
type Config struct {
	DownloadDir string `yaml:"download_dir"`
	Naming      string `yaml:"naming"` // shortcode | timestamp
	DBPath      string `yaml:"db_path"`
	// ResolverURL points watch at a running serve instance. Empty resolves
	// in-process.
	ResolverURL string `yaml:"resolver_url"`
	Listen      string `yaml:"listen"`
	// PrefsPoll is how often watch checks for preference writes from other
	// processes.
	PrefsPoll time.Duration `yaml:"prefs_poll"`

	Overlay  OverlayConfig   `yaml:"overlay"`
	Resolver resolver.Config `yaml:"resolver"`
	Browser  domwatch.Config `yaml:"browser"`

	// SessionID comes from the environment only, never from the file.
	SessionID string `yaml:"-"`

	// Path is the file the configuration was read from, if any.
	Path string `yaml:"-"`
}

// OverlayConfig tunes the page overlay.
type OverlayConfig struct {
	RouteMarker  string         `yaml:"route_marker"`
	EnforceLimit int            `yaml:"enforce_limit"`
	Frame        time.Duration  `yaml:"frame"`
	RevertAfter  time.Duration  `yaml:"revert_after"`
	Labels       overlay.Labels `yaml:"labels"`
}

// Session converts to the overlay's own configuration.
func (o OverlayConfig) Session() overlay.Config {
	return overlay.Config{
		RouteMarker:  o.RouteMarker,
		EnforceLimit: o.EnforceLimit,
		Frame:        o.Frame,
		RevertAfter:  o.RevertAfter,
		Labels:       o.Labels,
	}
}

// Load reads path, or $REELKEEPER_CONFIG, or the default file under the
// user config dir. A missing default file is not an error; a missing
// explicit one is.
func Load(path string) (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	explicit := path != ""
	if !explicit {
		if p := os.Getenv(EnvConfig); p != "" {
			path, explicit = p, true
		} else {
			path = filepath.Join(baseDir(), "config.yaml")
		}
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		cfg.Path = path
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used with no file and no environment.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDownloadDir); v != "" {
		c.DownloadDir = v
	}
	if v := os.Getenv(EnvResolverURL); v != "" {
		c.ResolverURL = v
	}
	c.SessionID = os.Getenv(EnvSessionID)
}

func (c *Config) applyDefaults() {
	if c.DownloadDir == "" {
		c.DownloadDir = defaultDownloadDir()
	}
	if c.Naming == "" {
		c.Naming = "shortcode"
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(baseDir(), "prefs.db")
	}
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.PrefsPoll <= 0 {
		c.PrefsPoll = time.Second
	}
	if c.Browser.Profile == "" && c.Browser.Remote == "" {
		c.Browser.Profile = filepath.Join(baseDir(), "chrome")
	}
	c.Browser.ApplyDefaults()
}

// baseDir is $XDG_CONFIG_HOME/reelkeeper or its platform equivalent.
func baseDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".reelkeeper"
	}
	return filepath.Join(dir, "reelkeeper")
}

func defaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "downloads"
	}
	return filepath.Join(home, "Downloads", "reelkeeper")
}
