package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/codely-labs/subagent/internal/branding"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	fileName = "subagent"
	fileType = "yaml"
	envFile  = ".env"
)

// Recognized configuration keys. Each can also be supplied through the
// environment as CODELY_<KEY>.
const (
	KeyScope       = "scope"
	KeyProjectRoot = "project_root"
	KeyHome        = "home"
	KeyLogLevel    = "log_level"
	KeyLogFormat   = "log_format"
)

// Keys lists every recognized key in display order.
var Keys = []string{KeyScope, KeyProjectRoot, KeyHome, KeyLogLevel, KeyLogFormat}

// ErrUnknownKey is returned by Set for keys outside Keys.
var ErrUnknownKey = errors.New("unknown config key")

var defaults = map[string]string{
	KeyScope:     "project",
	KeyLogLevel:  "warn",
	KeyLogFormat: "text",
}

// HomeDir returns the home directory used for user-scope agents.
// CODELY_HOME wins, then the home key from the config file, then the
// directory the config file itself lives under.
func HomeDir() string {
	if h := os.Getenv(branding.EnvVar(KeyHome)); h != "" {
		return h
	}
	if h := viper.GetString(KeyHome); h != "" {
		return h
	}
	return baseDir()
}

// baseDir locates the config directory. It ignores the home config key so
// that setting it never moves the file it is stored in.
func baseDir() string {
	if h := os.Getenv(branding.EnvVar(KeyHome)); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// Dir returns the path to the config directory (~/.codely-cli/).
func Dir() string {
	return filepath.Join(baseDir(), branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.codely-cli/subagent.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load reads .env from the working directory, then initializes Viper to
// read from the config file and environment. Variables already present in
// the process environment win over .env entries. A missing .env or config
// file is not an error.
func Load() error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", envFile, err)
	}

	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}

	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading config file %s: %w", FilePath(), err)
	}
	return nil
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// IsKnown reports whether key is a recognized config key.
func IsKnown(key string) bool {
	return slices.Contains(Keys, key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if !IsKnown(key) {
		return fmt.Errorf("%w %q", ErrUnknownKey, key)
	}
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
