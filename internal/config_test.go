package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/hyprtext/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.History.Enabled() {
		t.Error("history should be off by default")
	}
	if got := cfg.App.HTTP.Address(); got != "127.0.0.1:8765" {
		t.Errorf("address = %q", got)
	}
}

func TestEditorConfig_FontSizeRange(t *testing.T) {
	for _, size := range []int{5, 49} {
		cfg := NewDefaultConfig()
		cfg.Editor.FontSize = size
		if err := cfg.Validate(); err == nil {
			t.Errorf("font size %d should fail", size)
		}
	}
}

func TestEditorConfig_SortDelayRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Editor.SortDelay = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero sort delay should fail")
	}
}

func TestSessionConfig_PathRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Session.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty session path should fail")
	}
}

func TestConfigFromYAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), "settings.yaml")
	body := `app:
  log_level: debug
  http:
    port: 9100
editor:
  font_size: 20
  sort_delay: 750ms
  sort_on_load: false
history:
  path: /tmp/hyprtext-history.db
watch:
  enabled: false
`
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(p, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.HTTP.Port != 9100 || cfg.App.HTTP.Host != "127.0.0.1" {
		t.Errorf("http = %+v", cfg.App.HTTP)
	}
	if cfg.Editor.FontSize != 20 || cfg.Editor.SortDelay != 750*time.Millisecond || cfg.Editor.SortOnLoad {
		t.Errorf("editor = %+v", cfg.Editor)
	}
	if !cfg.History.Enabled() || cfg.Watch.Enabled {
		t.Errorf("history = %+v, watch = %+v", cfg.History, cfg.Watch)
	}
	if cfg.App.LogLevel.String() != "DEBUG" {
		t.Errorf("log level = %s", cfg.App.LogLevel)
	}
}
