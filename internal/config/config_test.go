package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"."}, cfg.Roots)
	assert.True(t, cfg.Autoload.Enabled)
	assert.False(t, cfg.Autoload.Required)
	assert.Equal(t, 300*time.Millisecond, cfg.Watch.Debounce)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(`
roots: [src, lib]
extensions: [.inc]
exclude: ['(^|/)generated/']
max_file_size: 1024
autoload:
  required: true
log_level: debug
watch:
  debounce: 1s
`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"src", "lib"}, cfg.Roots)
	assert.Equal(t, []string{".inc"}, cfg.Extensions)
	assert.Equal(t, []string{"(^|/)generated/"}, cfg.Exclude)
	assert.Equal(t, int64(1024), cfg.MaxFileSize)
	assert.True(t, cfg.Autoload.Enabled, "unset keys keep their defaults")
	assert.True(t, cfg.Autoload.Required)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("roots: [unclosed"), 0o644))
	_, err = LoadFromFile(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoadExplicitPathMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("roots: [src]\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PHPDOCGEN_LOG_LEVEL=warn\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("PHPDOCGEN_LOG_LEVEL") })

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"PHPDOCGEN_ROOTS":             " app , src ,",
		"PHPDOCGEN_GITIGNORE":         "false",
		"PHPDOCGEN_AUTOLOAD_REQUIRED": "1",
		"PHPDOCGEN_MAX_FILE_SIZE":     "4096",
		"PHPDOCGEN_WATCH_DEBOUNCE":    "2s",
		"PHPDOCGEN_LOG_LEVEL":         "DEBUG",
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"app", "src"}, cfg.Roots)
	assert.False(t, cfg.Gitignore)
	assert.True(t, cfg.Autoload.Required)
	assert.Equal(t, int64(4096), cfg.MaxFileSize)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestApplyEnvRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"PHPDOCGEN_GITIGNORE":           "maybe",
		"PHPDOCGEN_MAX_FILE_SIZE":       "big",
		"PHPDOCGEN_AUTOLOAD_CACHE_SIZE": "x",
		"PHPDOCGEN_WATCH_DEBOUNCE":      "soon",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			err := Default().ApplyEnv(envMap(map[string]string{key: value}))
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no roots", func(c *Config) { c.Roots = nil }, "Roots"},
		{"empty root", func(c *Config) { c.Roots = []string{""} }, "Roots[0]"},
		{"bad extension", func(c *Config) { c.Extensions = []string{"php"} }, "startswith"},
		{"negative size", func(c *Config) { c.MaxFileSize = -1 }, "MaxFileSize"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "LogLevel"},
		{"bad regex", func(c *Config) { c.Exclude = []string{"("} }, "exclude pattern"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSourceOptions(t *testing.T) {
	dir := t.TempDir()
	stubPath := filepath.Join(dir, "extra.yaml")
	require.NoError(t, os.WriteFile(stubPath, []byte("- name: Ext\\Thing\n  kind: class\n"), 0o644))

	cfg := Default()
	cfg.BuiltinStubs = []string{stubPath}
	cfg.Autoload.Required = true

	opts, err := cfg.SourceOptions(nil)
	require.NoError(t, err)
	assert.Len(t, opts.Discover.Exclude, len(cfg.Exclude))
	assert.True(t, opts.Discover.Gitignore)
	assert.True(t, opts.RequireManifest)
	_, ok := opts.Stubs.Lookup(`Ext\Thing`)
	assert.True(t, ok)

	cfg.BuiltinStubs = []string{filepath.Join(dir, "missing.yaml")}
	_, err = cfg.SourceOptions(nil)
	assert.ErrorContains(t, err, "reading stubs")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	cfg := Default()
	cfg.Roots = []string{"src"}
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLevel(t *testing.T) {
	cfg := Default()
	for level, want := range map[string]string{"debug": "DEBUG", "info": "INFO", "warn": "WARN", "error": "ERROR"} {
		cfg.LogLevel = level
		assert.Equal(t, want, cfg.Level().String())
	}
}
