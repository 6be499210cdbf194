// Package config holds the run configuration for gomsv.
//
// Configuration is resolved in three layers: built-in defaults, an optional
// project-local .gomsv.yaml file, and command-line flags (applied by the cmd
// package, which always wins). The core never reads environment variables at
// run time; everything it needs is an explicit Config field.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harrison/gomsv/internal/version"
)

// DefaultConfigFile is the project-local configuration file name.
const DefaultConfigFile = ".gomsv.yaml"

// Output formats for run reporting.
const (
	// OutputHuman renders colored progress for terminals.
	OutputHuman = "human"
	// OutputJSON emits one JSON object per event.
	OutputJSON = "json"
)

// Config carries everything a run needs. Built by the cmd layer; read-only
// for the core.
type Config struct {
	// Target identifies the platform checks run on (GOOS/GOARCH).
	Target string `yaml:"-"`

	// ProjectDir is the project root containing go.mod; checks run here.
	ProjectDir string `yaml:"-"`

	// CheckCommand is the validation command executed per candidate.
	CheckCommand []string `yaml:"check_command"`

	// MinimumVersion is the user-supplied inclusive lower bound, if any.
	MinimumVersion *version.Bare `yaml:"-"`

	// MaximumVersion is the user-supplied inclusive upper bound, if any.
	MaximumVersion *version.Bare `yaml:"-"`

	// IncludeAllPatches keeps every patch release as a search candidate
	// instead of only the highest patch per minor line.
	IncludeAllPatches bool `yaml:"include_all_patches"`

	// Linear switches the search from bisection to an exhaustive ascending
	// scan. The escape hatch when compatibility may not be monotonic.
	Linear bool `yaml:"linear"`

	// Output selects the reporter format: human or json.
	Output string `yaml:"output"`

	// IndexURL overrides the release index location.
	IndexURL string `yaml:"index_url"`

	// StoreDir is where toolchains are installed and cached across runs.
	StoreDir string `yaml:"store_dir"`

	// History enables recording runs to the SQLite history database.
	History bool `yaml:"history"`

	// HistoryPath is the history database location.
	HistoryPath string `yaml:"history_path"`

	// LogLevel filters the run log (trace, debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// LogDir is where run logs are written.
	LogDir string `yaml:"log_dir"`

	// NoLog disables the run log entirely.
	NoLog bool `yaml:"no_log"`
}

// Default returns a Config with built-in defaults. The toolchain store and
// history database live under the user's home directory so installed
// toolchains are shared across projects and runs.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return &Config{
		Target:       runtime.GOOS + "/" + runtime.GOARCH,
		ProjectDir:   ".",
		CheckCommand: []string{"go", "build", "./..."},
		Output:       OutputHuman,
		StoreDir:     filepath.Join(home, ".gomsv", "toolchains"),
		History:      true,
		HistoryPath:  filepath.Join(home, ".gomsv", "history.db"),
		LogLevel:     "info",
		LogDir:       filepath.Join(".gomsv", "logs"),
	}
}

// yamlConfig mirrors the file schema. Bounds are strings in the file and
// parsed into bare versions here.
type yamlConfig struct {
	CheckCommand      []string `yaml:"check_command"`
	MinimumVersion    string   `yaml:"minimum_version"`
	MaximumVersion    string   `yaml:"maximum_version"`
	IncludeAllPatches *bool    `yaml:"include_all_patches"`
	Linear            *bool    `yaml:"linear"`
	Output            string   `yaml:"output"`
	IndexURL          string   `yaml:"index_url"`
	StoreDir          string   `yaml:"store_dir"`
	History           *bool    `yaml:"history"`
	HistoryPath       string   `yaml:"history_path"`
	LogLevel          string   `yaml:"log_level"`
	LogDir            string   `yaml:"log_dir"`
	NoLog             *bool    `yaml:"no_log"`
}

// Load reads configuration from path, layered over the defaults. A missing
// file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var file yamlConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if len(file.CheckCommand) > 0 {
		cfg.CheckCommand = file.CheckCommand
	}
	if file.MinimumVersion != "" {
		min, err := version.Parse(file.MinimumVersion)
		if err != nil {
			return nil, fmt.Errorf("config: minimum_version: %w", err)
		}
		cfg.MinimumVersion = &min
	}
	if file.MaximumVersion != "" {
		max, err := version.Parse(file.MaximumVersion)
		if err != nil {
			return nil, fmt.Errorf("config: maximum_version: %w", err)
		}
		cfg.MaximumVersion = &max
	}
	if file.IncludeAllPatches != nil {
		cfg.IncludeAllPatches = *file.IncludeAllPatches
	}
	if file.Linear != nil {
		cfg.Linear = *file.Linear
	}
	if file.Output != "" {
		cfg.Output = file.Output
	}
	if file.IndexURL != "" {
		cfg.IndexURL = file.IndexURL
	}
	if file.StoreDir != "" {
		cfg.StoreDir = file.StoreDir
	}
	if file.History != nil {
		cfg.History = *file.History
	}
	if file.HistoryPath != "" {
		cfg.HistoryPath = file.HistoryPath
	}
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	if file.LogDir != "" {
		cfg.LogDir = file.LogDir
	}
	if file.NoLog != nil {
		cfg.NoLog = *file.NoLog
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads the project-local config file from dir, if present.
func LoadFromDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, DefaultConfigFile))
}

// Validate rejects configurations the core cannot run with.
func (c *Config) Validate() error {
	if len(c.CheckCommand) == 0 {
		return fmt.Errorf("config: check command must not be empty")
	}
	if c.Output != OutputHuman && c.Output != OutputJSON {
		return fmt.Errorf("config: unknown output format %q (want %s or %s)", c.Output, OutputHuman, OutputJSON)
	}
	if c.MinimumVersion != nil && c.MaximumVersion != nil &&
		c.MinimumVersion.Compare(*c.MaximumVersion) > 0 {
		return fmt.Errorf("config: minimum version %s exceeds maximum version %s", c.MinimumVersion, c.MaximumVersion)
	}
	return nil
}

// CheckCommandString renders the validation command for display.
func (c *Config) CheckCommandString() string {
	return strings.Join(c.CheckCommand, " ")
}
