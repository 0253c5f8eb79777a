package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"
	"github.com/vburojevic/sbsearch/internal/bundle"
	"github.com/vburojevic/sbsearch/internal/parser"
)

// Config holds application configuration
type Config struct {
	// Global settings
	Format   string `mapstructure:"format"`
	Verbose  bool   `mapstructure:"verbose"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	UI     UIConfig     `mapstructure:"ui"`
	Search SearchConfig `mapstructure:"search"`
	Bundle BundleConfig `mapstructure:"bundle"`
	Parser ParserConfig `mapstructure:"parser"`
}

// UIConfig holds terminal UI settings
type UIConfig struct {
	PageSize int `mapstructure:"page_size"`
}

// SearchConfig holds defaults for new queries
type SearchConfig struct {
	Regex         bool `mapstructure:"regex"`
	CaseSensitive bool `mapstructure:"case_sensitive"`
}

// BundleConfig controls which files of a bundle are considered
type BundleConfig struct {
	Include    []string `mapstructure:"include"`
	Exclude    []string `mapstructure:"exclude"`
	ProbeBytes int      `mapstructure:"probe_bytes"`
	// Layout names a preset include list, e.g. "harvester".
	Layout string `mapstructure:"layout"`
}

// ParserConfig controls log parsing
type ParserConfig struct {
	Workers int `mapstructure:"workers"`
	// Timestamps replaces the built-in timestamp formats when set.
	Timestamps []TimestampPattern `mapstructure:"timestamps"`
}

// TimestampPattern is the configured form of a timestamp rule
type TimestampPattern struct {
	Name    string `mapstructure:"name"`
	Pattern string `mapstructure:"pattern"`
	Layout  string `mapstructure:"layout"`
	NoYear  bool   `mapstructure:"no_year"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Format: "text",
		UI: UIConfig{
			PageSize: 100,
		},
		Bundle: BundleConfig{
			ProbeBytes: bundle.DefaultProbeBytes,
		},
	}
}

// Load loads configuration from files and environment
// Config file search order (highest precedence first):
// 1. ./.sbsearch.yaml or ./.sbsearch.yml
// 2. ~/.sbsearch.yaml or ~/.sbsearch.yml
// 3. $XDG_CONFIG_HOME/sbsearch/config.yaml (or ~/.config/sbsearch/config.yaml)
// 4. /etc/sbsearch/config.yaml
func Load() (*Config, error) {
	cfg := Default()

	if configFile := findConfigFile(); configFile != "" {
		loaded, err := LoadFromFile(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile searches for config file in standard locations
func findConfigFile() string {
	names := []string{".sbsearch.yaml", ".sbsearch.yml", "sbsearch.yaml", "sbsearch.yml"}

	var searchPaths []string
	if cwd, err := os.Getwd(); err == nil {
		searchPaths = append(searchPaths, cwd)
	}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, home)
	}
	for _, dir := range searchPaths {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}

	// Dedicated config directories hold a plain config.yaml
	var configDirs []string
	if configDir, err := os.UserConfigDir(); err == nil {
		configDirs = append(configDirs, filepath.Join(configDir, "sbsearch"))
	}
	configDirs = append(configDirs, "/etc/sbsearch")
	for _, dir := range configDirs {
		path := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// applyEnvOverrides applies SBSEARCH_* environment variables to cfg
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("SBSEARCH_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("SBSEARCH_VERBOSE"); v == "true" || v == "1" {
		cfg.Verbose = true
	}
	if v := os.Getenv("SBSEARCH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SBSEARCH_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("SBSEARCH_LAYOUT"); v != "" {
		cfg.Bundle.Layout = v
	}
	if v := os.Getenv("SBSEARCH_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SBSEARCH_PAGE_SIZE: %w", err)
		}
		cfg.UI.PageSize = n
	}
	if v := os.Getenv("SBSEARCH_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SBSEARCH_WORKERS: %w", err)
		}
		cfg.Parser.Workers = n
	}
	return nil
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// ConfigFile returns the path to the config file that would be loaded
func ConfigFile() string {
	return findConfigFile()
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	switch c.Format {
	case "text", "ndjson":
	default:
		return fmt.Errorf("format: must be text or ndjson, got %q", c.Format)
	}
	if c.UI.PageSize <= 0 {
		return fmt.Errorf("ui.page_size: must be positive, got %d", c.UI.PageSize)
	}
	if c.Parser.Workers < 0 {
		return fmt.Errorf("parser.workers: must not be negative, got %d", c.Parser.Workers)
	}
	if _, ok := bundle.Layouts[strings.ToLower(c.Bundle.Layout)]; !ok {
		return fmt.Errorf("bundle.layout: unknown layout %q", c.Bundle.Layout)
	}
	for _, p := range append(append([]string{}, c.Bundle.Include...), c.Bundle.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("bundle: invalid glob %q", p)
		}
	}
	if _, err := c.TimestampRules(); err != nil {
		return err
	}
	return nil
}

// IncludeGlobs returns the layout preset followed by the configured includes
func (b BundleConfig) IncludeGlobs() []string {
	globs := append([]string{}, bundle.Layouts[strings.ToLower(b.Layout)]...)
	return append(globs, b.Include...)
}

// TimestampRules compiles the configured timestamp patterns. It returns nil
// when none are configured, selecting the built-in formats.
func (c *Config) TimestampRules() ([]parser.TimestampRule, error) {
	if len(c.Parser.Timestamps) == 0 {
		return nil, nil
	}
	rules := make([]parser.TimestampRule, 0, len(c.Parser.Timestamps))
	for i, tp := range c.Parser.Timestamps {
		name := tp.Name
		if name == "" {
			name = fmt.Sprintf("timestamps[%d]", i)
		}
		r, err := parser.NewTimestampRule(name, tp.Pattern, tp.Layout, tp.NoYear)
		if err != nil {
			return nil, fmt.Errorf("parser.timestamps: %w", err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// Sample is the annotated configuration written by "config generate"
const Sample = `# sbsearch configuration file
# Place this file at ./.sbsearch.yaml, ~/.sbsearch.yaml or ~/.config/sbsearch/config.yaml

# Output format for non-interactive commands: "text" (default) or "ndjson"
format: text

# Enable verbose/debug output on stderr
verbose: false

# Write a diagnostic log when set: debug, info, warn, error
# log_level: info
# log_file: .sbsearch.log

ui:
  # Rows per page
  page_size: 100

search:
  # Treat queries as regular expressions
  regex: false
  # Match case exactly
  case_sensitive: false

bundle:
  # Preset include list: "harvester" limits the walk to logs/ trees
  # layout: harvester

  # Globs relative to the bundle root (** matches any depth)
  # include:
  #   - "logs/**"
  # exclude:
  #   - "**/*.yaml"

  # Bytes read from each file to detect archives and binaries
  probe_bytes: 8000

parser:
  # Concurrent file parsers (0 = number of CPUs)
  workers: 0

  # Timestamp formats tried in order; replaces the built-in list when set.
  # The first capture group holds the timestamp, layout uses Go time format.
  # timestamps:
  #   - name: rfc3339
  #     pattern: '(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:\d{2}))'
  #     layout: "2006-01-02T15:04:05.999999999Z07:00"
  #   - name: syslog
  #     pattern: '^([A-Z][a-z]{2} [ \d]\d \d{2}:\d{2}:\d{2})'
  #     layout: "Jan _2 15:04:05"
  #     no_year: true
`
