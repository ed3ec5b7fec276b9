// Package config holds the options recognized by the parser and the query
// engine. Options are plain values passed at construction; there is no
// package-level state.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// NamespaceMode controls how XML namespaces are treated while parsing.
type NamespaceMode string

const (
	// NamespaceStrict requires a kml root element in a KML namespace.
	NamespaceStrict NamespaceMode = "strict"
	// NamespaceLenient accepts KML namespaces or none and skips foreign ones.
	NamespaceLenient NamespaceMode = "lenient"
	// NamespaceIgnore matches elements by local name only.
	NamespaceIgnore NamespaceMode = "ignore"
)

// Options are the recognized settings.
type Options struct {
	// StrictCoordinateValidation turns an invalid coordinate into an error
	// instead of skipping the element (parser) or matching nothing (queries).
	StrictCoordinateValidation bool `yaml:"strict_coordinate_validation"`
	// CoordinatePrecision rounds parsed coordinates to this many decimals;
	// 0 keeps full precision.
	CoordinatePrecision int `yaml:"coordinate_precision"`
	// NamespaceHandling is one of strict, lenient, ignore.
	NamespaceHandling NamespaceMode `yaml:"namespace_handling"`
	// StrictLookups reports ordering lookups (gt, gte, lt, lte, range) whose
	// argument type cannot be compared with the field as a QueryError.
	StrictLookups bool `yaml:"strict_lookups"`
}

// Default returns the options used when none are given.
func Default() Options {
	return Options{
		StrictCoordinateValidation: false,
		CoordinatePrecision:        0,
		NamespaceHandling:          NamespaceLenient,
		StrictLookups:              false,
	}
}

// Validate checks that the options are usable.
func (o Options) Validate() error {
	switch o.NamespaceHandling {
	case NamespaceStrict, NamespaceLenient, NamespaceIgnore:
	default:
		return fmt.Errorf("namespace_handling must be one of strict, lenient, ignore (got %q)", o.NamespaceHandling)
	}
	if o.CoordinatePrecision < 0 || o.CoordinatePrecision > 15 {
		return fmt.Errorf("coordinate_precision must be between 0 and 15")
	}
	return nil
}

// fileConfig is the on-disk layout: options live under a top-level key so
// the CLI can add its own sections later.
type fileConfig struct {
	KML Options `yaml:"kml"`
}

// LoadFromFile reads options from a YAML file, starting from Default().
func LoadFromFile(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML options, starting from Default().
func Parse(data []byte) (Options, error) {
	cfg := fileConfig{KML: Default()}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Options{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.KML.Validate(); err != nil {
		return Options{}, err
	}
	return cfg.KML, nil
}

// Loader resolves options from an optional file, logging what it did.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger uses slog.Default().
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load returns Default() when path is empty, otherwise the file contents.
func (l *Loader) Load(path string) (Options, error) {
	if path == "" {
		l.logger.Debug("No config file given, using defaults")
		return Default(), nil
	}
	opts, err := LoadFromFile(path)
	if err != nil {
		return Options{}, err
	}
	l.logger.Debug("Loaded config",
		slog.String("path", path),
		slog.String("namespace_handling", string(opts.NamespaceHandling)),
		slog.Bool("strict_coordinate_validation", opts.StrictCoordinateValidation))
	return opts, nil
}
