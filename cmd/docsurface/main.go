// Package main is the entry point for docsurface.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/docsurface/internal/app"
	"github.com/dshills/docsurface/internal/backend"
	"github.com/dshills/docsurface/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type cliOptions struct {
	app         app.Options
	terms       string
	tracePath   string
	traceTopics string
	print       bool
}

func main() {
	os.Exit(run())
}

func run() int {
	cli := parseFlags()
	interactive := !cli.print && term.IsTerminal(int(os.Stdout.Fd()))
	if !interactive {
		logging.SetLogger(logging.New("warn", os.Stderr))
	}

	sources, err := readSources(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	cli.app.Sources = sources

	cli.app.Terms = splitList(cli.terms)
	cli.app.TraceTopics = splitList(cli.traceTopics)

	if cli.tracePath != "" {
		f, err := os.Create(cli.tracePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create trace: %v\n", err)
			return 1
		}
		defer f.Close()
		cli.app.Trace = f
	}

	application, err := app.New(cli.app)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Close()

	if !interactive {
		n, err := application.PrintMatches(os.Stdout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if n == 0 {
			return 1
		}
		return 0
	}

	terminal, err := backend.NewTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := application.SetBackend(terminal); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to set backend: %v\n", err)
		return 1
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		application.Shutdown()
	}()

	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() cliOptions {
	var cli cliOptions
	var showVersion bool

	flag.StringVar(&cli.app.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&cli.app.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.BoolVar(&cli.app.WatchConfig, "watch", false, "Reload the configuration file when it changes")
	flag.StringVar(&cli.app.Query, "find", "", "Text to search for")
	flag.StringVar(&cli.app.Query, "f", "", "Text to search for (shorthand)")
	flag.BoolVar(&cli.app.Regex, "regex", false, "Treat -find as a regular expression")
	flag.BoolVar(&cli.app.MatchCase, "match-case", false, "Match case")
	flag.BoolVar(&cli.app.WholeWords, "whole-words", false, "Match whole words only")
	flag.StringVar(&cli.terms, "terms", "", "Comma separated terms to search for")
	flag.StringVar(&cli.app.ScriptPath, "matcher", "", "Lua script defining match(text, element)")
	flag.StringVar(&cli.app.RulesPath, "rules", "", "YAML rules file")
	flag.BoolVar(&cli.app.ReadOnly, "readonly", false, "Open documents read-only")
	flag.BoolVar(&cli.app.ReadOnly, "R", false, "Open documents read-only (shorthand)")
	flag.StringVar(&cli.app.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&cli.tracePath, "trace", "", "Write a JSON-lines event trace to this file")
	flag.StringVar(&cli.traceTopics, "trace-topics", "", "Comma separated topic patterns to trace (default all)")
	flag.BoolVar(&cli.print, "print", false, "Print matches instead of opening the terminal surface")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "docsurface - find and replace over structured documents\n\n")
		fmt.Fprintf(os.Stderr, "Usage: docsurface [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  docsurface notes.txt                   Open a file\n")
		fmt.Fprintf(os.Stderr, "  docsurface -f cat -whole-words a.txt   Highlight whole-word matches\n")
		fmt.Fprintf(os.Stderr, "  cat a.txt | docsurface -terms cat,dog  Print matches from stdin\n")
		fmt.Fprintf(os.Stderr, "\nKeys: ctrl+f find, ctrl+n/ctrl+p next/previous, ctrl+r replace\n")
		fmt.Fprintf(os.Stderr, "(enter: current, tab: all), esc clear, ctrl+q quit\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("docsurface %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch cli.app.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", cli.app.LogLevel)
		os.Exit(1)
	}
	return cli
}

// splitList splits a comma separated flag value, dropping blank items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// readSources loads each file into a root named after it. Without files,
// piped standard input becomes the main root.
func readSources(paths []string) ([]app.Source, error) {
	if len(paths) == 0 {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, nil
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return []app.Source{{Name: app.DefaultRoot, Text: string(data)}}, nil
	}

	seen := make(map[string]int)
	sources := make([]app.Source, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		name := filepath.Base(p)
		if n := seen[name]; n > 0 {
			name = fmt.Sprintf("%s#%d", name, n+1)
		}
		seen[filepath.Base(p)]++
		sources = append(sources, app.Source{Name: name, Text: string(data)})
	}
	return sources, nil
}
