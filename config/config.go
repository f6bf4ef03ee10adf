// Package config loads the shader build configuration used by cabin-shaderc. The configuration
// is a TOML file listing entry shaders and the options for processing them.
//
// Example:
//
//	output_dir = "build/shaders"
//	log_level = "debug"
//
//	[validate]
//	enabled = true
//	output = "glsl410"
//
//	[[shader]]
//	key = "pbr"
//	path = "shaders/pbr.glsl"
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/cabin/common"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

const (
	// DefaultOutputDir is where stage files are written when output_dir is not set.
	DefaultOutputDir = "build/shaders"

	// DefaultLogLevel is the log level used when log_level is not set.
	DefaultLogLevel = "info"

	// DefaultValidateOutput is the translator output used when validate.output is not set.
	DefaultValidateOutput = "glsl330"
)

// Config is the root of the configuration file.
type Config struct {
	// OutputDir receives the <key>.vert, <key>.geom and <key>.frag files.
	OutputDir string `toml:"output_dir"`

	// Workers caps the number of shaders processed at once. 0 uses the library default.
	Workers int `toml:"workers"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `toml:"log_level"`

	// Watch keeps the tool running and reprocesses shaders when their files change.
	Watch bool `toml:"watch"`

	// Validate configures translator validation of the processed stages.
	Validate Validate `toml:"validate"`

	// Shaders lists the entry shaders to process.
	Shaders []Shader `toml:"shader"`
}

// Validate configures translator validation.
type Validate struct {
	Enabled bool   `toml:"enabled"`
	Output  string `toml:"output"`
}

// Shader is one entry shader.
type Shader struct {
	// Key names the shader and its output files. Defaults to the entry file name without extension.
	Key string `toml:"key"`

	// Path is the entry file, relative to the configuration file's directory.
	Path string `toml:"path"`
}

// Default returns a configuration with every default applied and no shaders.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads and validates a configuration file. Relative paths inside it are resolved against
// the file's directory and a leading ~ is expanded to the home directory.
//
// Parameters:
//   - path: the configuration file path
//
// Returns:
//   - *Config: the loaded configuration
//   - error: an error if the file cannot be read, decoded or validated
func Load(path string) (*Config, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to expand %q: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %q: %w", path, err)
	}

	c := &Config{}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return nil, fmt.Errorf("config: failed to decode %q: %w", path, err)
	}

	base := filepath.Dir(path)
	if c.OutputDir != "" {
		if c.OutputDir, err = resolve(base, c.OutputDir); err != nil {
			return nil, err
		}
	}
	for i := range c.Shaders {
		if c.Shaders[i].Path == "" {
			continue
		}
		if c.Shaders[i].Path, err = resolve(base, c.Shaders[i].Path); err != nil {
			return nil, err
		}
	}

	c.applyDefaults()
	if err := c.Check(); err != nil {
		return nil, err
	}
	return c, nil
}

// AddShader appends an entry shader, deriving the key from the path when key is empty.
func (c *Config) AddShader(key, path string) {
	c.Shaders = append(c.Shaders, Shader{Key: common.Coalesce(key, keyFromPath(path)), Path: path})
}

// Check reports missing paths and duplicate keys.
func (c *Config) Check() error {
	var errs []error
	seen := make(map[string]bool, len(c.Shaders))
	for i, s := range c.Shaders {
		if s.Path == "" {
			errs = append(errs, fmt.Errorf("config: shader %d has no path", i))
			continue
		}
		if seen[s.Key] {
			errs = append(errs, fmt.Errorf("config: duplicate shader key %q", s.Key))
		}
		seen[s.Key] = true
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Entries returns the entry paths keyed by shader key.
func (c *Config) Entries() map[string]string {
	out := make(map[string]string, len(c.Shaders))
	for _, s := range c.Shaders {
		out[s.Key] = s.Path
	}
	return out
}

// Level parses LogLevel.
//
// Returns:
//   - slog.Level: the parsed level
//   - error: an error if LogLevel is not a slog level name
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(common.Coalesce(c.LogLevel, DefaultLogLevel))); err != nil {
		return 0, fmt.Errorf("config: invalid log_level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

func (c *Config) applyDefaults() {
	c.OutputDir = common.Coalesce(c.OutputDir, DefaultOutputDir)
	c.LogLevel = common.Coalesce(c.LogLevel, DefaultLogLevel)
	c.Validate.Output = common.Coalesce(c.Validate.Output, DefaultValidateOutput)
	for i := range c.Shaders {
		c.Shaders[i].Key = common.Coalesce(c.Shaders[i].Key, keyFromPath(c.Shaders[i].Path))
	}
}

func resolve(base, p string) (string, error) {
	p, err := homedir.Expand(p)
	if err != nil {
		return "", fmt.Errorf("config: failed to expand %q: %w", p, err)
	}
	if filepath.IsAbs(p) {
		return p, nil
	}
	return filepath.Join(base, p), nil
}

func keyFromPath(p string) string {
	name := filepath.Base(p)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
