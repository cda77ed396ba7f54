// Package app wires the document, the view surface, the find session and
// the terminal backend together and runs the event loop.
package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/docsurface/internal/backend"
	"github.com/dshills/docsurface/internal/config"
	"github.com/dshills/docsurface/internal/event"
	"github.com/dshills/docsurface/internal/event/topic"
	"github.com/dshills/docsurface/internal/find"
	"github.com/dshills/docsurface/internal/find/script"
	"github.com/dshills/docsurface/internal/logging"
	"github.com/dshills/docsurface/internal/model"
	"github.com/dshills/docsurface/internal/trace"
	"github.com/dshills/docsurface/internal/uid"
	"github.com/dshills/docsurface/internal/view"
	"github.com/dshills/docsurface/internal/view/observer"
)

// DefaultRoot names the root created when no source is given.
const DefaultRoot = "main"

// Source is one named text loaded into its own document root.
type Source struct {
	Name string
	Text string
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. Empty means
	// defaults.
	ConfigPath string

	// WatchConfig reloads the configuration file while running.
	WatchConfig bool

	// Sources are loaded into the document in order.
	Sources []Source

	// Query is searched for on startup. Regex treats it as a pattern.
	Query string
	Regex bool

	// Terms are searched for on startup.
	Terms []string

	// ScriptPath is a Lua matcher script.
	ScriptPath string

	// RulesPath is a YAML rules file. It overrides find.rules.
	RulesPath string

	// MatchCase and WholeWords are OR-ed with the configuration.
	MatchCase  bool
	WholeWords bool

	// ReadOnly attaches every root read-only.
	ReadOnly bool

	// LogLevel overrides log.level.
	LogLevel string

	// Trace, when set, receives a JSON line per event.
	Trace io.Writer

	// TraceTopics limits the trace to events matching these patterns.
	TraceTopics []string
}

// Application owns every component of one docsurface session.
type Application struct {
	mu sync.RWMutex

	opts    Options
	config  *config.Config
	logger  *slog.Logger
	logFile *os.File

	doc        *model.Document
	controller *view.Controller
	listener   *event.Listener

	scanner *find.Scanner
	session *find.Session
	script  *script.Matcher

	recorder *trace.Recorder
	watcher  *config.Watcher
	metrics  *Metrics

	backend backend.Backend
	painter *view.Painter

	caret   model.Position
	prompt  *prompt
	message string

	running   atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
	stopOnce  sync.Once
}

// New creates a new Application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:     opts,
		done:     make(chan struct{}),
		listener: event.NewListener(),
		metrics:  NewMetrics(),
	}

	if err := app.bootstrap(); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Config
	cfg := config.Default()
	if app.opts.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(app.opts.ConfigPath); err != nil {
			return &InitError{Component: "config", Err: err}
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return &InitError{Component: "config", Err: err}
	}
	if app.opts.LogLevel != "" {
		cfg.Log.Level = app.opts.LogLevel
	}
	app.config = cfg

	// 2. Logging
	app.logger = logging.Logger()
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return &InitError{Component: "logging", Err: err}
		}
		app.logFile = f
		app.logger = logging.New(cfg.Log.Level, f)
		logging.SetLogger(app.logger)
	}

	// 3. Document
	app.doc = model.NewDocument(nil, model.WithLogger(app.logger))
	sources := app.opts.Sources
	if len(sources) == 0 {
		sources = []Source{{Name: DefaultRoot}}
	}
	for _, src := range sources {
		if _, err := model.LoadPlainText(app.doc, src.Name, src.Text); err != nil {
			return &InitError{Component: "document", Err: fmt.Errorf("load %s: %w", src.Name, err)}
		}
	}

	// 4. View
	app.controller = view.NewController(app.doc,
		view.WithLogger(app.logger),
		view.WithIgnoreAttribute(cfg.Surface.IgnoreAttribute),
		view.WithRenderer(view.NewDowncastRenderer(app.status)),
	)
	if err := observer.RegisterDefaults(app.controller); err != nil {
		return &InitError{Component: "observers", Err: err}
	}
	kind := view.RootEditable
	if cfg.Surface.ReadOnly || app.opts.ReadOnly {
		kind = view.RootReadOnly
	}
	for _, root := range app.doc.Roots() {
		if _, err := app.controller.AttachRoot(root.RootName(), view.NewElement("div", nil), kind); err != nil {
			return &InitError{Component: "view", Err: err}
		}
	}
	if err := app.subscribe(); err != nil {
		return &InitError{Component: "view", Err: err}
	}

	// 5. Find
	app.scanner = find.NewScanner(app.doc, uid.New(cfg.Find.IDs),
		find.WithPrefix(cfg.Find.MarkerPrefix),
		find.WithScannerLogger(app.logger),
	)
	session, err := find.NewSession(app.scanner, nil)
	if err != nil {
		return &InitError{Component: "find", Err: err}
	}
	app.session = session

	// 6. Trace
	if app.opts.Trace != nil {
		var topics []topic.Topic
		for _, p := range app.opts.TraceTopics {
			if !topic.Topic(p).IsValid() {
				return &InitError{Component: "trace", Err: fmt.Errorf("invalid topic pattern %q", p)}
			}
			topics = append(topics, topic.Topic(p))
		}
		app.recorder = trace.NewRecorder(app.opts.Trace, trace.WithTopics(topics...))
		for _, src := range []*event.Emitter{app.doc.Emitter(), app.controller.Emitter(), session.Results().Emitter()} {
			if err := app.recorder.Attach(src); err != nil {
				return &InitError{Component: "trace", Err: err}
			}
		}
	}

	// 7. Initial search
	m, err := app.startupMatcher()
	if err != nil {
		return &InitError{Component: "matcher", Err: err}
	}
	if m != nil {
		if _, err := app.session.Find(m); err != nil {
			// Faults leave the other results in place.
			app.logger.Warn("initial search incomplete", "error", err)
			app.message = err.Error()
		}
	}
	return nil
}

// subscribe listens to the structured view events the application acts on.
func (app *Application) subscribe() error {
	src := app.controller.Emitter()
	subs := []struct {
		pattern topic.Topic
		handler event.HandlerFunc
	}{
		{observer.TopicKeyDown, app.onKeyDown},
		{observer.TopicClipboardInput, app.onClipboardInput},
		{observer.TopicMouseDown, app.onMouseDown},
		{observer.TopicWheel, app.onWheel},
	}
	for _, s := range subs {
		if _, err := app.listener.ListenToFunc(src, s.pattern, s.handler); err != nil {
			return err
		}
	}
	return nil
}

// startupMatcher builds the matcher requested by the options. The script
// wins over rules, rules over terms and terms over the query.
func (app *Application) startupMatcher() (find.Matcher, error) {
	opts := app.findOptions()
	rules := app.opts.RulesPath
	if rules == "" {
		rules = app.config.Find.Rules
	}

	switch {
	case app.opts.ScriptPath != "":
		timeout := time.Duration(app.config.Find.ScriptTimeout()) * time.Millisecond
		m, err := script.LoadFile(app.opts.ScriptPath, script.WithTimeout(timeout))
		if err != nil {
			return nil, err
		}
		app.script = m
		return m.Match, nil
	case rules != "":
		loaded, err := find.LoadRulesFile(rules)
		if err != nil {
			return nil, err
		}
		return find.RulesMatcher(loaded)
	case len(app.opts.Terms) > 0:
		return find.TermsMatcher(app.opts.Terms, opts)
	case app.opts.Query != "" && app.opts.Regex:
		return find.PatternMatcher(app.opts.Query, opts)
	case app.opts.Query != "":
		return find.TextMatcher(app.opts.Query, opts)
	}
	return nil, nil
}

func (app *Application) findOptions() find.Options {
	return find.Options{
		MatchCase:  app.opts.MatchCase || app.config.Find.MatchCase,
		WholeWords: app.opts.WholeWords || app.config.Find.WholeWords,
	}
}

// SetBackend sets the terminal backend.
// Must be called before Run().
func (app *Application) SetBackend(b backend.Backend) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.running.Load() {
		return ErrAlreadyRunning
	}
	app.backend = b
	return nil
}

// Run starts the application main loop.
// Blocks until the user quits or Shutdown is called.
func (app *Application) Run() error {
	app.mu.RLock()
	b := app.backend
	app.mu.RUnlock()
	if b == nil {
		return ErrNoBackend
	}
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if err := b.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	defer b.Shutdown()

	if app.config.Surface.Mouse {
		b.EnableMouse()
	}
	if app.config.Surface.Paste {
		b.EnablePaste()
	}
	b.HideCursor()

	app.painter = view.NewPainter(b, app.controller.Mapper(), themeFrom(app.config.Theme))
	app.painter.SetHighlightSource(app.session)

	if app.opts.WatchConfig && app.opts.ConfigPath != "" {
		w, err := config.Watch(app.opts.ConfigPath, func(cfg *config.Config, err error) {
			b.PostEvent(backend.Event{Type: backend.EventInterrupt, Data: reloadEvent{config: cfg, err: err}})
		}, config.WithWatchLogger(app.logger))
		if err != nil {
			app.logger.Warn("config watch disabled", "error", err)
		} else {
			app.watcher = w
		}
	}

	app.refresh()
	return app.eventLoop(b)
}

// Shutdown stops a running event loop.
func (app *Application) Shutdown() {
	app.stopOnce.Do(func() {
		close(app.done)
	})
}

// Close releases every component. It is safe to call more than once.
func (app *Application) Close() error {
	var errs []error
	app.closeOnce.Do(func() {
		if app.watcher != nil {
			errs = append(errs, app.watcher.Close())
		}
		if app.session != nil {
			errs = append(errs, app.session.Destroy())
		}
		if app.script != nil {
			app.script.Close()
		}
		if app.recorder != nil {
			errs = append(errs, app.recorder.Err())
			app.recorder.Close()
		}
		app.listener.StopListening()
		if app.controller != nil {
			app.controller.Destroy()
		}
		if app.logger != nil {
			app.logger.Debug("session closed", "metrics", app.metrics.Snapshot())
		}
		if app.logFile != nil {
			errs = append(errs, app.logFile.Close())
		}
	})
	return errors.Join(errs...)
}

// IsRunning returns true if the event loop is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Config returns the active configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// Document returns the document.
func (app *Application) Document() *model.Document {
	return app.doc
}

// Controller returns the view controller.
func (app *Application) Controller() *view.Controller {
	return app.controller
}

// Session returns the find session.
func (app *Application) Session() *find.Session {
	return app.session
}

// Metrics returns the event loop metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// themeFrom overlays the configured colors on the default theme. Colors
// were checked by config.Validate, so parse failures keep the default.
func themeFrom(tc config.ThemeConfig) view.Theme {
	theme := view.DefaultTheme()
	set := func(dst *backend.Color, hex string) {
		if hex == "" {
			return
		}
		if c, err := backend.ColorFromHex(hex); err == nil {
			*dst = c
		}
	}
	set(&theme.Text, tc.Text)
	set(&theme.Heading, tc.Heading)
	set(&theme.Highlight, tc.Highlight)
	set(&theme.Current, tc.Current)
	set(&theme.Status, tc.Status)
	return theme
}
