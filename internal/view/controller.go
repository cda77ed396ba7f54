package view

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dshills/docsurface/internal/event"
	"github.com/dshills/docsurface/internal/logging"
	"github.com/dshills/docsurface/internal/model"
)

// Renderer rebuilds the surface from the document.
type Renderer interface {
	Render(c *Controller) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(c *Controller) error

// Render calls f(c).
func (f RendererFunc) Render(c *Controller) error { return f(c) }

// Controller owns the surface, the registered observers and the render
// guard that keeps observers quiet while the surface is rebuilt.
type Controller struct {
	doc        *model.Document
	surface    *Surface
	emitter    *event.Emitter
	mapper     *Mapper
	renderer   Renderer
	logger     *slog.Logger
	ignoreAttr string

	observers map[string]Observer
	order     []string
	rendering bool
	destroyed bool
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithIgnoreAttribute overrides DefaultIgnoreAttribute.
func WithIgnoreAttribute(attr string) ControllerOption {
	return func(c *Controller) {
		if attr != "" {
			c.ignoreAttr = attr
		}
	}
}

// WithRenderer sets the renderer used by Render.
func WithRenderer(r Renderer) ControllerOption {
	return func(c *Controller) {
		c.renderer = r
	}
}

// NewController creates a controller for doc.
func NewController(doc *model.Document, opts ...ControllerOption) *Controller {
	c := &Controller{
		doc:        doc,
		mapper:     NewMapper(),
		ignoreAttr: DefaultIgnoreAttribute,
		observers:  make(map[string]Observer),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrDefault(c.logger)
	c.emitter = event.NewEmitter("view", event.WithPanicHandler(c.logPanic))
	c.surface = NewSurface(c.logger)
	return c
}

func (c *Controller) logPanic(ev any, recovered any, stack []byte) {
	c.logger.Error("view handler panicked",
		"topic", event.ToEnvelope(ev).Topic,
		"panic", recovered,
		"stack", string(stack))
}

// Document returns the rendered document.
func (c *Controller) Document() *model.Document { return c.doc }

// Surface returns the surface.
func (c *Controller) Surface() *Surface { return c.surface }

// Emitter returns the emitter structured view events are fired on.
func (c *Controller) Emitter() *event.Emitter { return c.emitter }

// Mapper returns the view to model bindings.
func (c *Controller) Mapper() *Mapper { return c.mapper }

// Logger returns the controller logger.
func (c *Controller) Logger() *slog.Logger { return c.logger }

// IgnoreAttribute returns the attribute that marks ignored subtrees.
func (c *Controller) IgnoreAttribute() string { return c.ignoreAttr }

// SetRenderer replaces the renderer.
func (c *Controller) SetRenderer(r Renderer) { c.renderer = r }

// AddObserver registers the observer built by ctor under name. A name that
// is already registered returns the existing observer. The new observer
// observes every attached root; if any root is unsupported, or observing
// fails, the observer is destroyed and the error returned. Otherwise it is
// enabled, unless a render is in progress.
func (c *Controller) AddObserver(name string, ctor ObserverConstructor) (Observer, error) {
	if c.destroyed {
		return nil, ErrControllerDestroyed
	}
	if obs, ok := c.observers[name]; ok {
		return obs, nil
	}

	obs := ctor(c)
	for _, r := range c.surface.roots {
		if err := obs.Observe(r, r.name); err != nil {
			obs.Destroy()
			return nil, fmt.Errorf("adding observer %s: %w", name, err)
		}
	}

	c.observers[name] = obs
	c.order = append(c.order, name)
	if !c.rendering {
		obs.Enable()
	}
	c.logger.Debug("observer added", "name", name)
	return obs, nil
}

// Observer returns the observer registered under name, or nil.
func (c *Controller) Observer(name string) Observer {
	return c.observers[name]
}

// AttachRoot attaches el as a surface root and lets every observer observe
// it. An observer that does not support the root is skipped and
// contributes no events for it.
func (c *Controller) AttachRoot(name string, el *Element, kind RootKind) (*Root, error) {
	if c.destroyed {
		return nil, ErrControllerDestroyed
	}
	r, err := c.surface.Attach(name, el, kind)
	if err != nil {
		return nil, err
	}

	var errs []error
	for _, obsName := range c.order {
		err := c.observers[obsName].Observe(r, name)
		switch {
		case err == nil:
		case errors.Is(err, ErrUnsupportedRoot):
			c.logger.Debug("observer skips root", "observer", obsName, "root", name, "kind", kind)
		default:
			errs = append(errs, fmt.Errorf("observer %s on root %s: %w", obsName, name, err))
		}
	}
	return r, errors.Join(errs...)
}

// rootReleaser is implemented by observers that can stop observing a
// single root. Observers embedding BaseObserver get it for free.
type rootReleaser interface {
	StopObserving(root *Root)
}

// DetachRoot detaches the named root and releases every observer listener
// registered on it.
func (c *Controller) DetachRoot(name string) error {
	if c.destroyed {
		return ErrControllerDestroyed
	}
	r := c.surface.Root(name)
	if r == nil {
		return fmt.Errorf("%w: %s", ErrNoSuchRoot, name)
	}
	for _, obsName := range c.order {
		if rr, ok := c.observers[obsName].(rootReleaser); ok {
			rr.StopObserving(r)
		}
	}
	return c.surface.Detach(name)
}

// DisableObservers disables every registered observer.
func (c *Controller) DisableObservers() {
	for _, name := range c.order {
		c.observers[name].Disable()
	}
}

// EnableObservers enables every registered observer.
func (c *Controller) EnableObservers() {
	for _, name := range c.order {
		c.observers[name].Enable()
	}
}

// Render runs the renderer inside the quiet window: observers are
// disabled before it starts and re-enabled after it returns, panics
// included.
func (c *Controller) Render() error {
	if c.destroyed {
		return ErrControllerDestroyed
	}
	if c.rendering {
		return nil
	}
	c.rendering = true
	c.DisableObservers()
	defer func() {
		c.rendering = false
		c.EnableObservers()
	}()

	if c.renderer == nil {
		return nil
	}
	return c.renderer.Render(c)
}

// Destroy destroys every observer. The controller cannot be used afterwards.
func (c *Controller) Destroy() {
	if c.destroyed {
		return
	}
	for _, name := range c.order {
		c.observers[name].Destroy()
	}
	c.observers = make(map[string]Observer)
	c.order = nil
	c.destroyed = true
}
