// Package config loads docsurface settings.
//
// Settings live in a single TOML file. Missing keys keep their defaults,
// unknown keys are rejected, and a missing file means all defaults.
//
//	[surface]
//	ignore_attribute = "data-ignore-events"
//	mouse = true
//
//	[find]
//	match_case = false
//	ids = "counter"
//
//	[theme]
//	highlight = "#5f5f00"
//
//	[log]
//	level = "debug"
//	file = "/tmp/docsurface.log"
//
// Environment variables prefixed DOCSURFACE_ override the file, see
// ApplyEnv. A Watcher reloads the file when it changes on disk.
package config
