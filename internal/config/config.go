package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/l3aro/rdflow/pkg/cfg"
	"github.com/l3aro/rdflow/pkg/dfg"
)

// EnvPrefix is the prefix of environment variable overrides, e.g.
// RDFLOW_LINKER or RDFLOW_CACHE_ENABLED.
const EnvPrefix = "RDFLOW"

// CacheConfig controls the on-disk analysis result cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled" mapstructure:"enabled"`
	Dir        string `yaml:"dir" mapstructure:"dir"`
	MaxEntries int    `yaml:"max_entries" mapstructure:"max_entries"`
}

// Config holds all configuration for rdflow
type Config struct {
	// Linker selects how blocks are connected: heuristic or structured
	Linker string `yaml:"linker" mapstructure:"linker"`

	// Classifier selects how definitions are recognised: regex or treesitter
	Classifier string `yaml:"classifier" mapstructure:"classifier"`

	// MaxRounds caps the reaching definitions solver
	MaxRounds int `yaml:"max_rounds" mapstructure:"max_rounds"`

	// Parallel is the number of files analysed at once in batch mode
	Parallel int `yaml:"parallel" mapstructure:"parallel"`

	// Extensions lists the file suffixes picked up when scanning directories
	Extensions []string `yaml:"extensions" mapstructure:"extensions"`

	// OutputDir is where the report command writes its files
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`

	Cache CacheConfig `yaml:"cache" mapstructure:"cache"`

	// Logging
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
	LogJSON bool `yaml:"log_json" mapstructure:"log_json"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Linker:     string(cfg.LinkHeuristic),
		Classifier: string(dfg.ClassifierRegex),
		MaxRounds:  dfg.DefaultMaxRounds,
		Parallel:   runtime.NumCPU(),
		Extensions: []string{".c"},
		OutputDir:  "rdflow-report",
		Cache: CacheConfig{
			Enabled:    true,
			Dir:        ".rdflow",
			MaxEntries: 512,
		},
	}
}

// GlobalConfigPath returns the global config file path (~/.rdflow/config.yaml)
func GlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".rdflow", "config.yaml")
	}
	return filepath.Join(home, ".rdflow", "config.yaml")
}

// ProjectConfigPath returns the project-level config file path (./.rdflow/config.yaml)
func ProjectConfigPath() string {
	return filepath.Join(".rdflow", "config.yaml")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	d := DefaultConfig()
	v.SetDefault("linker", d.Linker)
	v.SetDefault("classifier", d.Classifier)
	v.SetDefault("max_rounds", d.MaxRounds)
	v.SetDefault("parallel", d.Parallel)
	v.SetDefault("extensions", d.Extensions)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.max_entries", d.Cache.MaxEntries)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("log_json", d.LogJSON)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// readOptional merges path into v. A missing file is skipped.
func readOptional(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Project-level config (./.rdflow/config.yaml)
// 2. Environment variables (RDFLOW_*)
// 3. Global config (~/.rdflow/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	v := newViper()
	if err := readOptional(v, GlobalConfigPath()); err != nil {
		return nil, err
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// Viper ranks env above every file, so the project file is applied on
	// top of the merged result.
	project := viper.New()
	project.SetConfigType("yaml")
	if err := readOptional(project, ProjectConfigPath()); err != nil {
		return nil, err
	}
	if err := project.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFromFile reads configuration from a specific YAML file path.
// Environment variables still override values from the file.
func LoadFromFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	v := newViper()
	if err := readOptional(v, path); err != nil {
		return nil, err
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Save writes the configuration to the specified YAML file path.
// It creates parent directories if they don't exist.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := c.YAML()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// YAML renders the configuration as a YAML document.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to YAML: %w", err)
	}
	return data, nil
}

// LinkMode returns the parsed linker setting.
func (c *Config) LinkMode() cfg.LinkMode {
	mode, err := cfg.ParseLinkMode(c.Linker)
	if err != nil {
		return cfg.LinkHeuristic
	}
	return mode
}

// ClassifierKind returns the parsed classifier setting.
func (c *Config) ClassifierKind() dfg.ClassifierKind {
	kind, err := dfg.ParseClassifierKind(c.Classifier)
	if err != nil {
		return dfg.ClassifierRegex
	}
	return kind
}

// Validate checks that the configuration has valid required fields
func (c *Config) Validate() error {
	if _, err := cfg.ParseLinkMode(c.Linker); err != nil {
		return fmt.Errorf("linker must be 'heuristic' or 'structured', got %q", c.Linker)
	}
	if _, err := dfg.ParseClassifierKind(c.Classifier); err != nil {
		return fmt.Errorf("classifier must be 'regex' or 'treesitter', got %q", c.Classifier)
	}
	if c.MaxRounds <= 0 {
		return fmt.Errorf("max_rounds must be positive")
	}
	if c.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1")
	}
	if len(c.Extensions) == 0 {
		return fmt.Errorf("extensions must not be empty")
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	if c.Cache.Enabled {
		if c.Cache.Dir == "" {
			return fmt.Errorf("cache.dir is required when cache is enabled")
		}
		if c.Cache.MaxEntries <= 0 {
			return fmt.Errorf("cache.max_entries must be positive")
		}
	}
	return nil
}
