package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/hyprtext/internal/controller"
	"github.com/starford/hyprtext/internal/snapshot"
	"github.com/starford/hyprtext/internal/watcher"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Session SessionConfig     `yaml:"session"`
	Editor  EditorConfig      `yaml:"editor"`
	History HistoryConfig     `yaml:"history"`
	Auth    AuthConfig        `yaml:"auth"`
	Watch   WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Session.Validate(); err != nil {
		return err
	}
	if err := c.Editor.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
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

// HTTPConfig holds HTTP server configuration. Host defaults to loopback:
// the API drives a private editing session.
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SessionConfig locates the session snapshot file.
type SessionConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the session configuration.
func (c *SessionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// EditorConfig holds editing defaults.
type EditorConfig struct {
	FontSize   int           `yaml:"font_size"`
	SortDelay  time.Duration `yaml:"sort_delay"`
	SortOnLoad bool          `yaml:"sort_on_load"`
}

// Validate validates the editor configuration.
func (c *EditorConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.FontSize, validation.Required,
			validation.Min(controller.MinFontSize), validation.Max(controller.MaxFontSize)),
		validation.Field(&c.SortDelay, validation.Required, validation.Min(time.Millisecond)),
	)
}

// HistoryConfig holds the recent-files database location. An empty path
// disables history.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// Enabled reports whether recent-files history is recorded.
func (c *HistoryConfig) Enabled() bool {
	return c.Path != ""
}

// WatchConfig toggles reloading of documents changed by other programs.
type WatchConfig struct {
	Enabled bool          `yaml:"enabled"`
	Delay   time.Duration `yaml:"delay"`
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required.
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
				Host: "127.0.0.1",
				Port: 8765,
			},
		},
		Session: SessionConfig{
			Path: snapshot.DefaultPath(),
		},
		Editor: EditorConfig{
			FontSize:   snapshot.DefaultFontSize,
			SortDelay:  controller.DefaultSortDelay,
			SortOnLoad: true,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Watch: WatchConfig{
			Enabled: true,
			Delay:   watcher.DefaultDelay,
		},
	}
}
