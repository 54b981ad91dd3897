// Package hook runs the optional user script that rewrites paths before
// they are opened.
//
// The script is plain Lua with the base, table and string libraries. It
// must define a global function resolve(path) returning the path to open.
// Returning nil or an empty string keeps the original path.
//
//	function resolve(path)
//	  return (path:gsub("^/mnt/share/", "/home/me/share/"))
//	end
package hook

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/stormwin/internal/logging"
)

// DefaultTimeout bounds one resolve call.
const DefaultTimeout = 500 * time.Millisecond

const resolveFunc = "resolve"

var (
	// ErrNoResolve indicates the script does not define resolve.
	ErrNoResolve = errors.New("script does not define resolve(path)")

	// ErrBadResult indicates resolve returned something other than a
	// string or nil.
	ErrBadResult = errors.New("resolve returned a non-string value")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("hook closed")
)

// Resolver calls a script's resolve function. A nil *Resolver resolves
// every path to itself.
type Resolver struct {
	mu      sync.Mutex
	L       *lua.LState
	name    string
	timeout time.Duration
	log     *logging.Logger
	closed  bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTimeout bounds each resolve call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		r.timeout = d
	}
}

// WithLogger sets the logger receiving script output and errors.
func WithLogger(l *logging.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.log = l
		}
	}
}

// Load runs the script file at path.
func Load(path string, opts ...Option) (*Resolver, error) {
	r := newResolver(path, opts)
	if err := r.do(func() error { return r.L.DoFile(path) }); err != nil {
		r.L.Close()
		return nil, fmt.Errorf("loading hook %s: %w", path, err)
	}
	return r.checkResolve()
}

// LoadString runs code as a script named name.
func LoadString(name, code string, opts ...Option) (*Resolver, error) {
	r := newResolver(name, opts)
	if err := r.do(func() error { return r.L.DoString(code) }); err != nil {
		r.L.Close()
		return nil, fmt.Errorf("loading hook %s: %w", name, err)
	}
	return r.checkResolve()
}

func newResolver(name string, opts []Option) *Resolver {
	r := &Resolver{
		name:    name,
		timeout: DefaultTimeout,
		log:     logging.Null(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(r.L)
	lua.OpenTable(r.L)
	lua.OpenString(r.L)
	for _, unsafe := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		r.L.SetGlobal(unsafe, lua.LNil)
	}
	r.L.SetGlobal("print", r.L.NewFunction(r.print))
	return r
}

func (r *Resolver) checkResolve() (*Resolver, error) {
	if fn := r.L.GetGlobal(resolveFunc); fn.Type() != lua.LTFunction {
		r.L.Close()
		return nil, fmt.Errorf("hook %s: %w", r.name, ErrNoResolve)
	}
	return r, nil
}

// print sends script output to the log instead of the terminal.
func (r *Resolver) print(L *lua.LState) int {
	parts := make([]string, L.GetTop())
	for i := range parts {
		parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
	}
	r.log.Debug("%s: %s", r.name, strings.Join(parts, "\t"))
	return 0
}

// do runs fn under the call timeout, converting panics into errors.
func (r *Resolver) do(fn func() error) (err error) {
	if r.timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		r.L.SetContext(ctx)
		defer r.L.RemoveContext()
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("lua panic: %v", rec)
		}
	}()
	return fn()
}

// Call runs resolve(path) and returns its result. A nil or empty result
// returns path unchanged.
func (r *Resolver) Call(path string) (string, error) {
	if r == nil {
		return path, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return path, ErrClosed
	}

	var ret lua.LValue
	err := r.do(func() error {
		if err := r.L.CallByParam(lua.P{
			Fn:      r.L.GetGlobal(resolveFunc),
			NRet:    1,
			Protect: true,
		}, lua.LString(path)); err != nil {
			return err
		}
		ret = r.L.Get(-1)
		r.L.Pop(1)
		return nil
	})
	if err != nil {
		return path, err
	}

	switch v := ret.(type) {
	case lua.LString:
		if v == "" {
			return path, nil
		}
		return string(v), nil
	case *lua.LNilType:
		return path, nil
	default:
		return path, fmt.Errorf("%w: %s", ErrBadResult, ret.Type())
	}
}

// Resolve is Call with errors logged and the original path kept.
func (r *Resolver) Resolve(path string) string {
	if r == nil {
		return path
	}
	resolved, err := r.Call(path)
	if err != nil {
		r.log.Warn("hook %s: resolve(%q): %v", r.name, path, err)
		return path
	}
	if resolved != path {
		r.log.Debug("hook %s: %s -> %s", r.name, path, resolved)
	}
	return resolved
}

// Close releases the Lua state. It is safe to call more than once.
func (r *Resolver) Close() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed {
		r.closed = true
		r.L.Close()
	}
}
