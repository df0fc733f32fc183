package loader

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"its-hmny.dev/perchance/pkg/compiler"
	"its-hmny.dev/perchance/pkg/parser"
)

// CachingLoader wraps a GeneratorLoader, parsing and compiling each
// imported generator exactly once and coalescing concurrent requests for
// the same name via singleflight, the way a single-threaded cache would
// for free but a fan-out evaluator (see pkg/interpreter.EvaluateMultiple)
// actually needs.
type CachingLoader struct {
	source GeneratorLoader
	group  singleflight.Group

	mu       sync.RWMutex
	sources  map[string]string
	compiled map[string]*compiler.CompiledProgram
}

// NewCachingLoader wraps source with compile-result caching.
func NewCachingLoader(source GeneratorLoader) *CachingLoader {
	return &CachingLoader{
		source:   source,
		sources:  map[string]string{},
		compiled: map[string]*compiler.CompiledProgram{},
	}
}

// Load satisfies GeneratorLoader by returning the cached raw source,
// loading and caching it if necessary.
func (c *CachingLoader) Load(ctx context.Context, name string) (string, error) {
	c.mu.RLock()
	if src, ok := c.sources[name]; ok {
		c.mu.RUnlock()
		return src, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do("src:"+name, func() (any, error) {
		src, err := c.source.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.sources[name] = src
		c.mu.Unlock()
		return src, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// LoadCompiled returns the parsed and compiled form of the named
// generator, along with its raw source (needed by the trace overlay).
func (c *CachingLoader) LoadCompiled(ctx context.Context, name string) (*compiler.CompiledProgram, string, error) {
	c.mu.RLock()
	if cp, ok := c.compiled[name]; ok {
		src := c.sources[name]
		c.mu.RUnlock()
		return cp, src, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do("compiled:"+name, func() (any, error) {
		src, err := c.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		prog, err := parser.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parsing imported generator %q: %w", name, err)
		}
		cp, err := compiler.Compile(prog)
		if err != nil {
			return nil, fmt.Errorf("compiling imported generator %q: %w", name, err)
		}
		c.mu.Lock()
		c.compiled[name] = cp
		c.mu.Unlock()
		return cp, nil
	})
	if err != nil {
		return nil, "", err
	}
	c.mu.RLock()
	src := c.sources[name]
	c.mu.RUnlock()
	return v.(*compiler.CompiledProgram), src, nil
}
