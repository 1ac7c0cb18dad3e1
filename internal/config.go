package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// SitePrefix is the URL prefix under which the local site directory is served.
const SitePrefix = "/site/"

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Catalog CatalogConfig     `yaml:"catalog"`
	Site    SiteConfig        `yaml:"site"`
	Views   ViewsConfig       `yaml:"views"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Site.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	if c.Catalog.BaseURL == "" && c.Site.Root == "" {
		return fmt.Errorf("catalog: base_url is required when site.root is not set")
	}
	return c.Views.Validate()
}

// CatalogBaseURL returns the URL catalog resources resolve against. Without
// an explicit base URL the locally served site directory is used.
func (c *Config) CatalogBaseURL() string {
	if c.Catalog.BaseURL != "" {
		return c.Catalog.BaseURL
	}
	return fmt.Sprintf("http://127.0.0.1:%d%s", c.App.HTTP.Port, SitePrefix)
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	Title    string     `yaml:"title"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// CatalogConfig describes where the catalog resources live.
//
// Manifest and Rules are resolved against BaseURL, as are relative file URLs
// inside the manifest. Every resource fetch is bounded by FetchTimeout and
// every file probe by ProbeTimeout.
type CatalogConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Manifest     string        `yaml:"manifest"`
	Rules        string        `yaml:"rules"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, is.URL),
		validation.Field(&c.Manifest, validation.Required),
		validation.Field(&c.Rules, validation.Required),
		validation.Field(&c.FetchTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.ProbeTimeout, validation.Required, validation.Min(time.Millisecond)),
	)
}

// SiteConfig holds the optional local site directory.
type SiteConfig struct {
	Root  string `yaml:"root"`
	Watch bool   `yaml:"watch"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.When(c.Watch, validation.Required.Error("is required when watch is enabled"))),
	)
}

// ViewsConfig controls how long page loads keep their search state.
type ViewsConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// Validate validates the views configuration.
func (c *ViewsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Second)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			Title:    "Downloads",
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Catalog: CatalogConfig{
			Manifest:     "files.json",
			Rules:        "emoji.json",
			FetchTimeout: 10 * time.Second,
			ProbeTimeout: 5 * time.Second,
		},
		Site: SiteConfig{
			Root: "./site",
		},
		Views: ViewsConfig{
			TTL: 30 * time.Minute,
		},
	}
}
