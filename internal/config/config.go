package config

import (
	"fmt"
	"time"

	"github.com/icybits-lab/Blog/internal/ingest"
)

type Config struct {
	SiteTitle string `mapstructure:"siteTitle"`
	BaseURL   string `mapstructure:"baseURL"`
	OutputDir string `mapstructure:"outputDir"`

	ContentDir string `mapstructure:"contentDir"`
	Manifest   string `mapstructure:"manifest"`
	PostsDir   string `mapstructure:"postsDir"`
	RemoteURL  string `mapstructure:"remoteURL"`
	LayoutsDir string `mapstructure:"layoutsDir"`
	StaticDir  string `mapstructure:"staticDir"`
	AboutFile  string `mapstructure:"aboutFile"`

	RecentLimit  int           `mapstructure:"recentLimit"`
	TieBreak     string        `mapstructure:"tieBreak"`
	EscapeText   bool          `mapstructure:"escapeText"`
	SanitizeHTML bool          `mapstructure:"sanitizeHTML"`
	FetchTimeout time.Duration `mapstructure:"fetchTimeout"`
	Concurrency  int           `mapstructure:"concurrency"`

	LogLevel string `mapstructure:"logLevel"`
	LogDev   bool   `mapstructure:"logDev"`
}

// Defaults are applied to viper before any config file or environment
// variable is read.
var Defaults = map[string]any{
	"siteTitle":    "My Blog",
	"baseURL":      "",
	"outputDir":    "public",
	"contentDir":   "content",
	"manifest":     "posts.json",
	"postsDir":     "post",
	"remoteURL":    "",
	"layoutsDir":   "layouts",
	"staticDir":    "static",
	"aboutFile":    "about.md",
	"recentLimit":  5,
	"tieBreak":     string(ingest.TieBreakFilename),
	"escapeText":   true,
	"sanitizeHTML": false,
	"fetchTimeout": "10s",
	"concurrency":  0,
	"logLevel":     "info",
	"logDev":       false,
}

// Validate checks values that cannot be caught by decoding alone.
func (c Config) Validate() error {
	if _, err := ingest.ParseTieBreak(c.TieBreak); err != nil {
		return fmt.Errorf("invalid tieBreak: %w", err)
	}
	if c.RecentLimit < 0 {
		return fmt.Errorf("recentLimit must not be negative, got %d", c.RecentLimit)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("fetchTimeout must not be negative, got %s", c.FetchTimeout)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("outputDir must be set")
	}
	return nil
}
