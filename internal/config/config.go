// Package config loads phpdocgen configuration from phpdocgen.yaml, a .env
// file and PHPDOCGEN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/phpdocgen/internal/discover"
	"github.com/phobologic/phpdocgen/internal/source"
	"github.com/phobologic/phpdocgen/internal/stubs"
)

const (
	// FileName is the project-level config file looked up when no path is given.
	FileName = "phpdocgen.yaml"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "PHPDOCGEN_"
)

// Config is the complete phpdocgen configuration.
type Config struct {
	Roots        []string `yaml:"roots" validate:"required,min=1,dive,required"`
	Extensions   []string `yaml:"extensions,omitempty" validate:"dive,startswith=."`
	Exclude      []string `yaml:"exclude"`
	ExcludeGlobs []string `yaml:"exclude_globs,omitempty"`
	Gitignore    bool     `yaml:"gitignore"`
	// MaxFileSize in bytes; zero disables the limit.
	MaxFileSize  int64          `yaml:"max_file_size" validate:"gte=0"`
	Autoload     AutoloadConfig `yaml:"autoload"`
	BuiltinStubs []string       `yaml:"builtin_stubs,omitempty" validate:"dive,required"`
	LogLevel     string         `yaml:"log_level" validate:"oneof=debug info warn error"`
	Watch        WatchConfig    `yaml:"watch"`
}

// AutoloadConfig controls composer manifest resolution.
type AutoloadConfig struct {
	Enabled bool `yaml:"enabled"`
	// Required makes a root without composer.json a fatal error.
	Required  bool `yaml:"required"`
	CacheSize int  `yaml:"cache_size" validate:"gte=0"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" validate:"gte=0"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Roots:       []string{"."},
		Exclude:     append([]string(nil), discover.DefaultExclude...),
		Gitignore:   true,
		MaxFileSize: 2 << 20,
		Autoload: AutoloadConfig{
			Enabled:   true,
			CacheSize: source.DefaultCacheSize,
		},
		LogLevel: "info",
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
	}
}

var validate = validator.New()

// Validate checks struct constraints and that every exclusion regex compiles.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := discover.CompileExclude(c.Exclude); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadFromFile reads path over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Load layers defaults, the config file, the .env file next to it and the
// process environment, then validates the result. An empty path looks for
// FileName in the working directory and tolerates its absence; an explicit
// path must exist.
func Load(path string, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}

	explicit := path != ""
	if !explicit {
		path = FileName
	}

	cfg, err := LoadFromFile(path)
	switch {
	case err == nil:
		logger.Debug("loaded config", slog.String("path", path))
	case !explicit && errors.Is(err, fs.ErrNotExist):
		logger.Debug("no config file, using defaults")
		cfg = Default()
	default:
		return nil, err
	}

	envFile := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("failed to load env file", slog.String("path", envFile), slog.String("error", err.Error()))
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from PHPDOCGEN_* variables. List values are
// comma separated.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return "", false
		}
		return strings.TrimSpace(v), true
	}

	if v, ok := get("ROOTS"); ok {
		c.Roots = splitList(v)
	}
	if v, ok := get("EXTENSIONS"); ok {
		c.Extensions = splitList(v)
	}
	if v, ok := get("EXCLUDE_GLOBS"); ok {
		c.ExcludeGlobs = splitList(v)
	}
	if v, ok := get("BUILTIN_STUBS"); ok {
		c.BuiltinStubs = splitList(v)
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.LogLevel = strings.ToLower(v)
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"GITIGNORE", &c.Gitignore},
		{"AUTOLOAD_ENABLED", &c.Autoload.Enabled},
		{"AUTOLOAD_REQUIRED", &c.Autoload.Required},
	}
	for _, b := range bools {
		v, ok := get(b.key)
		if !ok {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, b.key, err)
		}
		*b.dst = parsed
	}

	if v, ok := get("MAX_FILE_SIZE"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sMAX_FILE_SIZE: %w", EnvPrefix, err)
		}
		c.MaxFileSize = n
	}
	if v, ok := get("AUTOLOAD_CACHE_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sAUTOLOAD_CACHE_SIZE: %w", EnvPrefix, err)
		}
		c.Autoload.CacheSize = n
	}
	if v, ok := get("WATCH_DEBOUNCE"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sWATCH_DEBOUNCE: %w", EnvPrefix, err)
		}
		c.Watch.Debounce = d
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Level maps LogLevel to a slog level; unknown values mean info.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SourceOptions converts the config into scan options, compiling exclusion
// patterns and loading any extra stub files.
func (c *Config) SourceOptions(logger *slog.Logger) (source.Options, error) {
	exclude, err := discover.CompileExclude(c.Exclude)
	if err != nil {
		return source.Options{}, err
	}

	var extra [][]byte
	for _, path := range c.BuiltinStubs {
		data, err := os.ReadFile(path)
		if err != nil {
			return source.Options{}, fmt.Errorf("reading stubs: %w", err)
		}
		extra = append(extra, data)
	}
	set, err := stubs.Load(extra...)
	if err != nil {
		return source.Options{}, err
	}

	return source.Options{
		Discover: discover.Options{
			Extensions:   c.Extensions,
			Exclude:      exclude,
			ExcludeGlobs: c.ExcludeGlobs,
			Gitignore:    c.Gitignore,
			MaxFileSize:  c.MaxFileSize,
			Logger:       logger,
		},
		Autoload:        c.Autoload.Enabled,
		RequireManifest: c.Autoload.Required,
		CacheSize:       c.Autoload.CacheSize,
		Stubs:           set,
		Logger:          logger,
	}, nil
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// SaveToFile writes the config as YAML, creating parent directories.
func (c *Config) SaveToFile(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
