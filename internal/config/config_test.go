package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arvimal/daisho/internal/storage"
)

func TestPathFunctions(t *testing.T) {
	cfg := Default("/test/home")
	abs := Default("/test/home")
	abs.History = "/var/daisho/history"

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"ConfigPath", ConfigPath("/test/home"), "/test/home/config.yml"},
		{"StorePath sqlite", cfg.StorePath(), "/test/home/daisho.db"},
		{"HistoryPath", cfg.HistoryPath(), "/test/home/history.txt"},
		{"LogPath", cfg.LogPath(), "/test/home/daisho.log"},
		{"absolute", abs.HistoryPath(), "/var/daisho/history"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestStorePath_PerBackend(t *testing.T) {
	cfg := Default("/h")
	tests := []struct {
		backend string
		want    string
	}{
		{storage.BackendSQLite, "/h/daisho.db"},
		{storage.BackendJSONL, "/h/records.jsonl"},
		{storage.BackendBolt, "/h/daisho.bolt"},
	}
	for _, tt := range tests {
		cfg.Backend = tt.backend
		if got := cfg.StorePath(); got != tt.want {
			t.Errorf("StorePath() with %s = %q, want %q", tt.backend, got, tt.want)
		}
	}
}

func TestInitAndLoad(t *testing.T) {
	home := filepath.Join(t.TempDir(), "daisho")

	if IsInitialized(home) {
		t.Fatal("IsInitialized() = true before Init")
	}
	if _, err := Load(home); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Load() before Init error = %v, want ErrNotInitialized", err)
	}

	cfg, err := Init(home)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if !IsInitialized(home) {
		t.Error("IsInitialized() = false after Init")
	}
	if _, err := os.Stat(cfg.HistoryPath()); err != nil {
		t.Errorf("history file not created: %v", err)
	}

	if _, err := Init(home); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("second Init() error = %v, want ErrAlreadyInitialized", err)
	}

	loaded, err := Load(home)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("Load() = %+v, want %+v", loaded, cfg)
	}
}

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	if err := os.WriteFile(ConfigPath(home), []byte("backend: jsonl\nprompt: \"\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(home)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend != storage.BackendJSONL {
		t.Errorf("Backend = %q, want jsonl", cfg.Backend)
	}
	if cfg.Prompt != DefaultPrompt {
		t.Errorf("Prompt = %q, want default", cfg.Prompt)
	}
	if cfg.StorePath() != filepath.Join(home, RecordsFile) {
		t.Errorf("StorePath() = %q", cfg.StorePath())
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad backend", "backend: postgres\n"},
		{"bad level", "log_level: loud\n"},
		{"bad yaml", "backend: [unclosed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			if err := os.WriteFile(ConfigPath(home), []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(home); err == nil {
				t.Error("Load() error = nil, want error")
			}
		})
	}
}

func TestLoad_EnvLogLevel(t *testing.T) {
	home := t.TempDir()
	if _, err := Init(home); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvLogLevel, "DEBUG")

	cfg, err := Load(home)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestBootstrap(t *testing.T) {
	home := filepath.Join(t.TempDir(), "nested", "daisho")
	var out bytes.Buffer

	if _, err := Bootstrap(home, &out); err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	if !strings.Contains(out.String(), "Creating Daisho's configurations ... Done") {
		t.Errorf("first run output = %q", out.String())
	}

	out.Reset()
	cfg, err := Bootstrap(home, &out)
	if err != nil {
		t.Fatalf("second Bootstrap() error = %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("second run printed %q, want nothing", out.String())
	}
	if cfg.Home != home {
		t.Errorf("Home = %q, want %q", cfg.Home, home)
	}
}

func TestGetSet(t *testing.T) {
	home := t.TempDir()
	cfg, err := Init(home)
	if err != nil {
		t.Fatal(err)
	}

	if err := cfg.Set("log-level", "debug"); err != nil {
		t.Fatalf("Set(log-level) error = %v", err)
	}
	if got, _ := cfg.Get("log_level"); got != "debug" {
		t.Errorf("Get(log_level) = %q, want debug", got)
	}

	if err := cfg.Set("backend", "mongo"); err == nil {
		t.Error("Set(backend, mongo) error = nil")
	}
	if cfg.Backend != storage.BackendSQLite {
		t.Errorf("Backend = %q after rejected Set, want sqlite", cfg.Backend)
	}

	if _, err := cfg.Get("pdf-root"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Get(pdf-root) error = %v, want ErrUnknownKey", err)
	}

	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(home)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.LogLevel != "debug" {
		t.Errorf("saved LogLevel = %q, want debug", loaded.LogLevel)
	}
	if len(loaded.AsMap()) != len(Keys) {
		t.Errorf("AsMap() has %d keys, want %d", len(loaded.AsMap()), len(Keys))
	}
}

func TestResolveHome(t *testing.T) {
	t.Setenv(EnvHome, "")
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	if got, _ := ResolveHome("/flag/home"); got != "/flag/home" {
		t.Errorf("ResolveHome(flag) = %q", got)
	}
	if got, _ := ResolveHome(""); got != "/custom/config/daisho" {
		t.Errorf("ResolveHome(xdg) = %q", got)
	}

	t.Setenv(EnvHome, "/env/home")
	if got, _ := ResolveHome(""); got != "/env/home" {
		t.Errorf("ResolveHome(env) = %q", got)
	}
	if got, _ := ResolveHome("/flag/home"); got != "/flag/home" {
		t.Errorf("ResolveHome(flag over env) = %q", got)
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~/notes", filepath.Join(home, "notes")},
		{"~", home},
		{"/abs/path", "/abs/path"},
		{"rel/path", "rel/path"},
		{"~user/x", "~user/x"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExpandTilde(tt.in); got != tt.want {
			t.Errorf("ExpandTilde(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
