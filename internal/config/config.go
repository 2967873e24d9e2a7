// Package config loads slimls settings from the workspace and from the
// editor, and decides which files are analysed.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"bennypowers.dev/slimls/internal/log"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// SettingsKey is the section name used in editor settings
const SettingsKey = "slimls"

// FileNames are the workspace config files, in lookup order
var FileNames = []string{".slimls.yaml", ".slimls.yml", ".slimls.json"}

// ErrInvalidConfig is wrapped by every configuration problem
var ErrInvalidConfig = errors.New("invalid configuration")

// Config controls which templates are analysed and how findings are reported
type Config struct {
	// Include lists doublestar patterns, relative to the workspace root, of templates to analyse
	Include []string `json:"include" yaml:"include" validate:"required,min=1,dive,required,glob"`
	// Exclude lists patterns removed from Include
	Exclude []string `json:"exclude" yaml:"exclude" validate:"dive,required,glob"`
	// LogLevel is one of debug, info, warn or error
	LogLevel string `json:"logLevel" yaml:"logLevel" validate:"omitempty,oneof=debug info warn warning error"`
	// Strict reports Ruby problems as errors rather than warnings
	Strict bool `json:"strict" yaml:"strict"`
}

// Default returns the configuration used when nothing is configured
func Default() Config {
	return Config{
		Include:  []string{"**/*.slim"},
		Exclude:  []string{"node_modules/**", "vendor/**", "tmp/**"},
		LogLevel: "info",
	}
}

// ValidationError lists everything wrong with a configuration
type ValidationError struct {
	Source   string
	Problems []string
}

func (e *ValidationError) Error() string {
	msg := strings.Join(e.Problems, "; ")
	if e.Source == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidConfig, msg)
	}
	return fmt.Sprintf("%s in %s: %s", ErrInvalidConfig, e.Source, msg)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("glob", func(fl validator.FieldLevel) bool {
		return doublestar.ValidatePattern(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("failed to register glob validation: %v", err))
	}
	return v
}

// Validate checks the configuration
func (c Config) Validate() error {
	return validationError("", validate.Struct(c))
}

func validationError(source string, err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	verr := &ValidationError{Source: source}
	for _, e := range fieldErrs {
		field := strings.ToLower(e.Field()[:1]) + e.Field()[1:]
		var problem string
		switch e.Tag() {
		case "required":
			problem = fmt.Sprintf("%s is required", field)
		case "min":
			problem = fmt.Sprintf("%s needs at least %s entries", field, e.Param())
		case "glob":
			problem = fmt.Sprintf("%s has an invalid pattern %q", field, e.Value())
		case "oneof":
			problem = fmt.Sprintf("%s must be one of %s", field, e.Param())
		default:
			problem = fmt.Sprintf("%s is invalid", field)
		}
		verr.Problems = append(verr.Problems, problem)
	}
	return verr
}

// Level returns the configured log level, falling back to info
func (c Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.LevelInfo
	}
	return level
}

// Matches reports whether a slash- or OS-separated path relative to the
// workspace root is selected by Include and not removed by Exclude
func (c Config) Matches(relPath string) bool {
	// doublestar.Match expects forward slashes
	p := filepath.ToSlash(relPath)
	return matchAny(c.Include, p) && !matchAny(c.Exclude, p)
}

// MatchesPath is Matches for a path under root. Paths outside root, or
// any path when root is empty, are matched without their leading separator.
func (c Config) MatchesPath(root, path string) bool {
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			return c.Matches(rel)
		}
	}
	return c.Matches(strings.TrimPrefix(filepath.ToSlash(path), "/"))
}

func matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}

// Find returns the path of the first config file present in dir, or "" when there is none
func Find(dir string) string {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Load reads the workspace config in dir. Without a config file it returns
// Default() and an empty path.
func Load(dir string) (Config, string, error) {
	path := Find(dir)
	if path == "" {
		return Default(), "", nil
	}
	cfg, err := LoadFile(path)
	return cfg, path, err
}

// LoadFile reads a YAML or JSON (comments allowed) config file. Settings
// in the file replace the defaults key by key.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(jsonc.ToJSON(data), &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}

	if err := validationError(path, validate.Struct(cfg)); err != nil {
		return Config{}, err
	}
	log.Debug("Loaded config from %s", path)
	return cfg, nil
}

// WithSettings overlays editor settings onto c. Settings arrive either as
// `{"slimls": {...}}` or as the bare section. Nil settings leave c unchanged.
func (c Config) WithSettings(settings any) (Config, error) {
	if settings == nil {
		return c, nil
	}
	section := settings
	if m, ok := settings.(map[string]any); ok {
		if nested, ok := m[SettingsKey]; ok {
			section = nested
		}
	}

	data, err := json.Marshal(section)
	if err != nil {
		return c, fmt.Errorf("failed to marshal settings: %w", err)
	}

	// json.Unmarshal decodes into existing backing arrays
	merged := c
	merged.Include = slices.Clone(c.Include)
	merged.Exclude = slices.Clone(c.Exclude)
	if err := json.Unmarshal(data, &merged); err != nil {
		return c, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := validationError("settings", validate.Struct(merged)); err != nil {
		return c, err
	}
	return merged, nil
}
