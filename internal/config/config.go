package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full set of docsurface settings.
type Config struct {
	Surface SurfaceConfig `toml:"surface"`
	Find    FindConfig    `toml:"find"`
	Theme   ThemeConfig   `toml:"theme"`
	Log     LogConfig     `toml:"log"`
}

// SurfaceConfig configures the editing surface.
type SurfaceConfig struct {
	// IgnoreAttribute marks view subtrees whose events are not observed.
	IgnoreAttribute string `toml:"ignore_attribute"`

	// Mouse enables mouse reporting.
	Mouse bool `toml:"mouse"`

	// Paste enables bracketed paste.
	Paste bool `toml:"paste"`

	// ReadOnly attaches the document root as read-only.
	ReadOnly bool `toml:"read_only"`
}

// FindConfig configures match scanning.
type FindConfig struct {
	// MarkerPrefix names the markers created for results.
	MarkerPrefix string `toml:"marker_prefix"`

	MatchCase  bool `toml:"match_case"`
	WholeWords bool `toml:"whole_words"`

	// IDs selects the record ID generator: "counter" or "uuid".
	IDs string `toml:"ids"`

	// Rules is an optional YAML rules file.
	Rules string `toml:"rules"`

	// ScriptTimeoutMS bounds one call of a Lua matcher.
	ScriptTimeoutMS int `toml:"script_timeout_ms"`
}

// ThemeConfig holds hex colors, "#rrggbb" or "#rgb". Empty means the
// built-in color.
type ThemeConfig struct {
	Text      string `toml:"text"`
	Heading   string `toml:"heading"`
	Highlight string `toml:"highlight"`
	Current   string `toml:"current"`
	Status    string `toml:"status"`
}

// LogConfig configures logging. Logging is off unless File is set.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Surface: SurfaceConfig{
			IgnoreAttribute: "data-ignore-events",
			Mouse:           true,
			Paste:           true,
		},
		Find: FindConfig{
			MarkerPrefix:    "findResult",
			IDs:             "counter",
			ScriptTimeoutMS: 2000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the file at path over the defaults. A missing file is not an
// error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes TOML data over the defaults and validates the result.
// source names the data in errors.
func Parse(source string, data []byte) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, newParseError(source, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newParseError(source string, err error) *ParseError {
	pe := &ParseError{Path: source, Message: err.Error(), Err: err}

	var decErr *toml.DecodeError
	var strictErr *toml.StrictMissingError
	switch {
	case errors.As(err, &decErr):
		pe.Line, pe.Column = decErr.Position()
	case errors.As(err, &strictErr) && len(strictErr.Errors) > 0:
		first := strictErr.Errors[0]
		pe.Line, pe.Column = first.Position()
		pe.Message = "unknown key " + strings.Join(first.Key(), ".")
	}
	return pe
}

// Encode renders the settings as TOML.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

// ScriptTimeout returns the Lua call timeout in milliseconds, or the
// default when unset.
func (f FindConfig) ScriptTimeout() int {
	if f.ScriptTimeoutMS <= 0 {
		return Default().Find.ScriptTimeoutMS
	}
	return f.ScriptTimeoutMS
}
