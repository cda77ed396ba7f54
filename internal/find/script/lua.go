package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
	"unicode/utf8"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/docsurface/internal/find"
)

// DefaultTimeout bounds one call of the match function.
const DefaultTimeout = 2 * time.Second

// MatchFunc is the global function a script must define.
const MatchFunc = "match"

// ErrClosed is returned by a matcher after Close.
var ErrClosed = errors.New("lua matcher closed")

// Matcher is a compiled Lua matcher. gopher-lua states are not safe for
// concurrent use, so calls are serialized.
type Matcher struct {
	mu      sync.Mutex
	L       *lua.LState
	timeout time.Duration
	closed  bool
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(m *Matcher) {
		m.timeout = d
	}
}

// LuaMatcher compiles src and checks that it defines match.
func LuaMatcher(src string, opts ...Option) (*Matcher, error) {
	m := &Matcher{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(m)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)
	m.L = L

	if err := m.run(func() error { return L.DoString(src) }); err != nil {
		L.Close()
		return nil, fmt.Errorf("load script: %w", err)
	}
	if fn := L.GetGlobal(MatchFunc); fn.Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("script does not define function %q", MatchFunc)
	}
	return m, nil
}

// LoadFile compiles the script at path.
func LoadFile(path string, opts ...Option) (*Matcher, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return LuaMatcher(string(src), opts...)
}

// openSafeLibraries opens the libraries scripts may use and removes the
// loaders that reach the file system.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// Match calls the script's match function. It has the find.Matcher
// signature, so m.Match can be passed to a Scanner or Session.
func (m *Matcher) Match(in find.MatchInput) ([]find.Hit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}

	name := ""
	if in.Item != nil {
		name = in.Item.Name()
	}

	var ret lua.LValue
	err := m.run(func() error {
		err := m.L.CallByParam(lua.P{
			Fn:      m.L.GetGlobal(MatchFunc),
			NRet:    1,
			Protect: true,
		}, lua.LString(in.Text), lua.LString(name))
		if err != nil {
			return err
		}
		ret = m.L.Get(-1)
		m.L.Pop(1)
		return nil
	})
	if err != nil {
		m.L.SetTop(0)
		return nil, err
	}
	return convertHits(ret, in.Text)
}

// run executes fn under the call timeout.
func (m *Matcher) run(fn func() error) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	m.L.SetContext(ctx)
	defer m.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// Close releases the Lua state.
func (m *Matcher) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.L.Close()
}

// convertHits turns the script's return value into rune-offset hits.
func convertHits(v lua.LValue, text string) ([]find.Hit, error) {
	if v == lua.LNil {
		return nil, nil
	}
	list, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("match returned %s, want table", v.Type())
	}

	var hits []find.Hit
	for i := 1; i <= list.Len(); i++ {
		entry, ok := list.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("hit %d: want table", i)
		}
		first, ok1 := entry.RawGetInt(1).(lua.LNumber)
		last, ok2 := entry.RawGetInt(2).(lua.LNumber)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("hit %d: want {first, last}", i)
		}
		start, end, err := byteSpanToRunes(text, int(first)-1, int(last))
		if err != nil {
			return nil, fmt.Errorf("hit %d: %w", i, err)
		}
		label := ""
		if s, ok := entry.RawGetInt(3).(lua.LString); ok {
			label = string(s)
		}
		hits = append(hits, find.Hit{Start: start, End: end, Label: label})
	}
	return hits, nil
}

// byteSpanToRunes converts the byte span [from, to) of text to rune
// offsets. Both ends must fall on rune boundaries.
func byteSpanToRunes(text string, from, to int) (int, int, error) {
	if from < 0 || to < from || to > len(text) {
		return 0, 0, fmt.Errorf("span %d..%d outside %d bytes", from+1, to, len(text))
	}
	if !boundary(text, from) || !boundary(text, to) {
		return 0, 0, fmt.Errorf("span %d..%d splits a character", from+1, to)
	}
	start := utf8.RuneCountInString(text[:from])
	return start, start + utf8.RuneCountInString(text[from:to]), nil
}

func boundary(text string, i int) bool {
	return i == len(text) || utf8.RuneStart(text[i])
}
