package config

import (
	"fmt"
	"os"
	"strconv"
)

// EnvPrefix prefixes the environment variables read by ApplyEnv.
const EnvPrefix = "DOCSURFACE_"

// envString and envBool map variable names, without the prefix, to the
// settings they override.
var (
	envString = map[string]func(*Config) *string{
		"LOG_LEVEL":     func(c *Config) *string { return &c.Log.Level },
		"LOG_FILE":      func(c *Config) *string { return &c.Log.File },
		"IDS":           func(c *Config) *string { return &c.Find.IDs },
		"RULES":         func(c *Config) *string { return &c.Find.Rules },
		"MARKER_PREFIX": func(c *Config) *string { return &c.Find.MarkerPrefix },
	}
	envBool = map[string]func(*Config) *bool{
		"MATCH_CASE":  func(c *Config) *bool { return &c.Find.MatchCase },
		"WHOLE_WORDS": func(c *Config) *bool { return &c.Find.WholeWords },
		"MOUSE":       func(c *Config) *bool { return &c.Surface.Mouse },
		"READ_ONLY":   func(c *Config) *bool { return &c.Surface.ReadOnly },
	}
)

// ApplyEnv overrides settings from the process environment and
// revalidates.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for name, field := range envString {
		if v, ok := lookup(EnvPrefix + name); ok {
			*field(c) = v
		}
	}
	for name, field := range envBool {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*field(c) = b
	}
	return c.Validate()
}
