package config

import (
	"slices"
	"strings"

	"github.com/dshills/docsurface/internal/backend"
)

var (
	validIDs    = []string{"counter", "uuid"}
	validLevels = []string{"debug", "info", "warn", "warning", "error"}
)

// Validate checks every setting and returns ValidationErrors listing all
// invalid values, or nil.
func (c *Config) Validate() error {
	var errs ValidationErrors
	add := func(path, msg string, v any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: v})
	}

	if strings.TrimSpace(c.Surface.IgnoreAttribute) == "" {
		add("surface.ignore_attribute", "must not be empty", c.Surface.IgnoreAttribute)
	}
	if c.Find.MarkerPrefix == "" || strings.Contains(c.Find.MarkerPrefix, ":") {
		add("find.marker_prefix", "must be non-empty and contain no ':'", c.Find.MarkerPrefix)
	}
	if !slices.Contains(validIDs, c.Find.IDs) {
		add("find.ids", "must be one of "+strings.Join(validIDs, ", "), c.Find.IDs)
	}
	if c.Find.ScriptTimeoutMS < 0 {
		add("find.script_timeout_ms", "must not be negative", c.Find.ScriptTimeoutMS)
	}
	for path, hex := range map[string]string{
		"theme.text":      c.Theme.Text,
		"theme.heading":   c.Theme.Heading,
		"theme.highlight": c.Theme.Highlight,
		"theme.current":   c.Theme.Current,
		"theme.status":    c.Theme.Status,
	} {
		if hex == "" {
			continue
		}
		if _, err := backend.ColorFromHex(hex); err != nil {
			add(path, "must be a #rrggbb or #rgb color", hex)
		}
	}
	if !slices.Contains(validLevels, strings.ToLower(c.Log.Level)) {
		add("log.level", "must be one of "+strings.Join(validLevels, ", "), c.Log.Level)
	}

	if len(errs) == 0 {
		return nil
	}
	slices.SortFunc(errs, func(a, b *ValidationError) int {
		return strings.Compare(a.Path, b.Path)
	})
	return errs
}
