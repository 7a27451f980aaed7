package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/tilog/internal/content"
	"github.com/starford/tilog/internal/pagination"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Notes  NotesConfig       `yaml:"notes"`
	Cache  CacheConfig       `yaml:"cache"`
	Fetch  FetchConfig       `yaml:"fetch"`
	Site   SiteConfig        `yaml:"site"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{&c.App, &c.Notes, &c.Cache, &c.Fetch, &c.Site, &c.SQLite, &c.Auth} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
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

// NotesConfig holds the path to the flat notes directory.
type NotesConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the notes configuration.
func (c *NotesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// CacheConfig controls the build-time cache shared by concurrent workers.
type CacheConfig struct {
	Enabled      bool          `yaml:"enabled"`
	TTL          time.Duration `yaml:"ttl"`
	Path         string        `yaml:"path"`
	LockPath     string        `yaml:"lock_path"`
	LockStale    time.Duration `yaml:"lock_stale"`
	LockWait     time.Duration `yaml:"lock_wait"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Validate validates the cache configuration. Paths and durations are only
// required when the cache is on.
func (c *CacheConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.LockPath, validation.Required, validation.NotIn(c.Path).Error("must differ from cache path")),
		validation.Field(&c.LockStale, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.LockWait, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.PollInterval, validation.Required, validation.Min(time.Millisecond)),
	)
}

// FetchConfig tunes the directory scan.
type FetchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// Validate validates the fetch configuration.
func (c *FetchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Concurrency, validation.Required, validation.Min(1), validation.Max(1024)),
	)
}

// SiteConfig holds static generation settings.
type SiteConfig struct {
	Title     string `yaml:"title"`
	PageSize  int    `yaml:"page_size"`
	OutputDir string `yaml:"output_dir"`
	BasePath  string `yaml:"base_path"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Title, validation.Required),
		validation.Field(&c.PageSize, validation.Required, validation.Min(1)),
		validation.Field(&c.OutputDir, validation.Required),
	)
}

// SQLiteConfig holds the search index database location.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Notes: NotesConfig{
			Path: "./notes",
		},
		Cache: CacheConfig{
			Enabled:      true,
			TTL:          content.DefaultCacheTTL,
			Path:         "./.tilog/notes-cache.json",
			LockPath:     "./.tilog/notes-cache.lock",
			LockStale:    content.DefaultLockStale,
			LockWait:     content.DefaultLockWait,
			PollInterval: content.DefaultPollInterval,
		},
		Fetch: FetchConfig{
			Concurrency: content.DefaultConcurrency,
		},
		Site: SiteConfig{
			Title:     "Today I Learned",
			PageSize:  pagination.DefaultPageSize,
			OutputDir: "./public",
		},
		SQLite: SQLiteConfig{
			Path: "./.tilog/index.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
