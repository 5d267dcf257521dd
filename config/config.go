// Package config loads bridge settings from jni.toml and applies them to
// the package loggers and reference checks.
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/wippyai/go-jni/errors"
	"github.com/wippyai/go-jni/exception"
	"github.com/wippyai/go-jni/member"
	"github.com/wippyai/go-jni/ref"
	"github.com/wippyai/go-jni/runtime"
)

// FileName is the name FindAndLoad looks for.
const FileName = "jni.toml"

// DefaultLocalCapacity is the local frame capacity used when none is
// configured.
const DefaultLocalCapacity = 16

// Config represents a jni.toml file.
type Config struct {
	Logging Logging `toml:"logging"`
	Checks  Checks  `toml:"checks"`

	// Classes maps short aliases to class names in internal form.
	Classes map[string]string `toml:"classes"`

	// LocalCapacity is the number of local references reserved by frames.
	LocalCapacity int32 `toml:"local_capacity"`

	// Path is the file the configuration was loaded from (set at load time).
	Path string `toml:"-"`
}

// Logging configures the zap logger shared by the bridge packages.
type Logging struct {
	// Level is a zap level name: debug, info, warn or error.
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
	// Encoding is "json" or "console".
	Encoding string `toml:"encoding"`
}

// Checks configures runtime misuse detection.
type Checks struct {
	// References makes misuse of released references panic instead of
	// logging a warning.
	References bool `toml:"references"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Logging:       Logging{Level: "info", Encoding: "console"},
		Classes:       map[string]string{},
		LocalCapacity: DefaultLocalCapacity,
	}
}

// Parse decodes a configuration. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "parse configuration")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.InvalidInput(errors.PhaseConfig, "unknown keys: "+strings.Join(keys, ", "))
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads and parses the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, "read "+path)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if c.Path, err = filepath.Abs(path); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "resolve "+path)
	}
	return c, nil
}

// FindAndLoad walks up from startDir to find a jni.toml file and loads it.
// It returns the default configuration if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if _, err := zap.ParseAtomicLevel(c.Logging.Level); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "logging.level")
	}
	switch c.Logging.Encoding {
	case "", "json", "console":
	default:
		return errors.InvalidInput(errors.PhaseConfig, "logging.encoding must be json or console, got "+c.Logging.Encoding)
	}
	if c.LocalCapacity < 0 {
		return errors.InvalidInput(errors.PhaseConfig, "local_capacity cannot be negative")
	}
	for alias, name := range c.Classes {
		if alias == "" || name == "" {
			return errors.InvalidInput(errors.PhaseConfig, "class aliases and names cannot be empty")
		}
	}
	return nil
}

// ClassName resolves an alias to a class name in internal form. Names
// that are not aliases are returned with dots replaced by slashes.
func (c *Config) ClassName(name string) string {
	if fqcn, ok := c.Classes[name]; ok {
		name = fqcn
	}
	return strings.ReplaceAll(name, ".", "/")
}

// NewLogger builds the logger described by the logging section.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Logging.Level)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "logging.level")
	}

	zc := zap.NewProductionConfig()
	if c.Logging.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	if c.Logging.Encoding != "" {
		zc.Encoding = c.Logging.Encoding
	}
	l, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "build logger")
	}
	return l, nil
}

// Apply installs l, or a logger built from the configuration when l is
// nil, in the bridge packages and enables the configured checks.
func (c *Config) Apply(l *zap.Logger) (*zap.Logger, error) {
	if l == nil {
		var err error
		if l, err = c.NewLogger(); err != nil {
			return nil, err
		}
	}
	ref.SetLogger(l.Named("ref"))
	exception.SetLogger(l.Named("exception"))
	member.SetLogger(l.Named("member"))
	runtime.SetLogger(l.Named("runtime"))
	ref.SetChecks(c.Checks.References)
	return l, nil
}
