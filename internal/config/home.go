package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// HomeDirName is the directory name under XDG_CONFIG_HOME.
	HomeDirName = "daisho"

	EnvHome     = "DAISHO_HOME"
	EnvLogLevel = "DAISHO_LOG_LEVEL"
)

// ErrAlreadyInitialized is returned by Init when config.yml exists.
var ErrAlreadyInitialized = errors.New("daisho is already initialized")

// LoadEnv reads .env from the working directory if one exists. Variables
// already set in the environment win.
func LoadEnv() {
	_ = godotenv.Load(".env")
}

// ResolveHome picks the home directory: the flag value, then DAISHO_HOME,
// then XDG_CONFIG_HOME/daisho, then ~/.config/daisho.
func ResolveHome(flag string) (string, error) {
	if flag != "" {
		return ExpandTilde(flag), nil
	}
	if env := os.Getenv(EnvHome); env != "" {
		return ExpandTilde(env), nil
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("locating home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, HomeDirName), nil
}

// Init creates home with a default config.yml and an empty history file.
func Init(home string) (*Config, error) {
	if IsInitialized(home) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyInitialized, ConfigPath(home))
	}

	if err := os.MkdirAll(home, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", home, err)
	}

	cfg := Default(home)
	if err := cfg.Save(); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(cfg.HistoryPath(), os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("creating history: %w", err)
	}
	f.Close()

	return cfg, nil
}

// Bootstrap loads the config in home, running first-time setup when there is
// none. Setup progress goes to out.
func Bootstrap(home string, out io.Writer) (*Config, error) {
	if IsInitialized(home) {
		return Load(home)
	}

	fmt.Fprintln(out, "Initial setup:")
	fmt.Fprint(out, "\tCreating Daisho's configurations ... ")
	cfg, err := Init(home)
	if err != nil {
		fmt.Fprintln(out, "Failed")
		return nil, err
	}
	fmt.Fprintln(out, "Done")
	return cfg, nil
}

// ExpandTilde expands a leading ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}

// HelpfulConfigMessage returns a hint for a home that has not been set up.
func HelpfulConfigMessage(home string) string {
	return fmt.Sprintf(`No daisho configuration found in %s.

Tip: run 'daisho init' to create it, or point DAISHO_HOME at an existing home:
  export %s=/path/to/daisho`, home, EnvHome)
}
