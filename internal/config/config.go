// Package config provides configuration management for verstamp.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Default configuration values.
const (
	DefaultConfigFile = ".verstamp.yaml"
	DefaultOutputPath = "version"
	DefaultGitBinary  = "git"
	EnvPrefix         = "VERSTAMP"
)

// Sentinel errors for configuration operations.
var (
	ErrInvalidKey = errors.New("invalid configuration key")
)

// validKeys is built once from Config struct reflection.
var validKeys = buildValidKeys()

// validate is the shared validator instance.
var validate = validator.New()

// Config represents the full verstamp configuration.
type Config struct {
	Output  OutputConfig  `mapstructure:"output" yaml:"output" validate:"required"`
	Git     GitConfig     `mapstructure:"git" yaml:"git" validate:"required"`
	Failure FailureConfig `mapstructure:"failure" yaml:"failure"`
}

// OutputConfig controls where and how the version is written.
type OutputConfig struct {
	Path   string `mapstructure:"path" yaml:"path" validate:"required"`
	Strict bool   `mapstructure:"strict" yaml:"strict"`
}

// GitConfig controls how git is invoked.
type GitConfig struct {
	Binary  string        `mapstructure:"binary" yaml:"binary" validate:"required"`
	Tags    bool          `mapstructure:"tags" yaml:"tags"`
	Match   string        `mapstructure:"match" yaml:"match"`
	Abbrev  int           `mapstructure:"abbrev" yaml:"abbrev" validate:"gte=0,lte=40"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gte=0"`
}

// FailureConfig controls the exit status when git fails.
type FailureConfig struct {
	// Fatal makes a failing git command exit non-zero. When false the
	// failure is reported and the command exits successfully without
	// writing the version file.
	Fatal bool `mapstructure:"fatal" yaml:"fatal"`
}

// Validate checks the configuration for errors using struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Loader provides configuration loading.
type Loader struct {
	v    *viper.Viper
	path string
}

// NewLoader creates a configuration loader for the project in dir.
// The config file is optional; defaults and VERSTAMP_* environment
// variables apply without it.
func NewLoader(dir string) (*Loader, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		dir = wd
	}

	configPath := filepath.Join(dir, DefaultConfigFile)

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Environment variable binding: output.path -> VERSTAMP_OUTPUT_PATH
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	l := &Loader{
		v:    v,
		path: configPath,
	}

	l.setDefaults()

	return l, nil
}

// setDefaults sets all default configuration values using Viper.
// Every key needs a default so AutomaticEnv can resolve it during Unmarshal.
func (l *Loader) setDefaults() {
	l.v.SetDefault("output.path", DefaultOutputPath)
	l.v.SetDefault("output.strict", false)
	l.v.SetDefault("git.binary", DefaultGitBinary)
	l.v.SetDefault("git.tags", false)
	l.v.SetDefault("git.match", "")
	l.v.SetDefault("git.abbrev", 0)
	l.v.SetDefault("git.timeout", time.Duration(0))
	l.v.SetDefault("failure.fatal", false)
}

// Load reads the configuration file if present and returns the merged config.
func (l *Loader) Load() (*Config, error) {
	if _, err := os.Stat(l.path); err == nil {
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Path returns the configuration file path.
func (l *Loader) Path() string {
	return l.path
}

// Get returns a configuration value by dot-notation key.
func (l *Loader) Get(key string) (any, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	return l.v.Get(key), nil
}

// ValidateKey checks if a key is a valid configuration key.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if validKeys[key] {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidKey, key)
}

// Keys returns all valid configuration keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(validKeys))
	for k := range validKeys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// buildValidKeys builds the set of valid keys from Config struct using reflection.
func buildValidKeys() map[string]bool {
	keys := make(map[string]bool)
	addKeysFromType(reflect.TypeOf(Config{}), "", keys)
	return keys
}

// addKeysFromType recursively adds keys from a struct type.
func addKeysFromType(t reflect.Type, prefix string, keys map[string]bool) {
	for i := range t.NumField() {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		keys[key] = true

		if field.Type.Kind() == reflect.Struct {
			addKeysFromType(field.Type, key, keys)
		}
	}
}
