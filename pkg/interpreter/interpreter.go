// Package interpreter exposes the small public surface a host application
// actually needs: parse, compile, evaluate (once or many times, optionally
// with a fixed seed for reproducibility), and validate. It is the thin
// facade over pkg/parser, pkg/compiler and pkg/evaluator, the way
// pkg/hack.Assemble or pkg/vm.Translate front their own multi-stage
// pipelines with one function a caller can reach for without knowing the
// pipeline exists.
package interpreter

import (
	"context"
	"fmt"
	"math/rand"

	"its-hmny.dev/perchance/pkg/ast"
	"its-hmny.dev/perchance/pkg/compiler"
	"its-hmny.dev/perchance/pkg/evaluator"
	"its-hmny.dev/perchance/pkg/loader"
	"its-hmny.dev/perchance/pkg/parser"
	"its-hmny.dev/perchance/pkg/trace"
)

// Template is a parsed-and-compiled generator ready for repeated
// evaluation. Compiling once and evaluating many times avoids re-parsing
// the same source on every render.
type Template struct {
	program *compiler.CompiledProgram
	source  string
	name    string
}

// Parse parses source into an AST, returning the first syntax error found.
func Parse(source string) (*ast.Program, error) {
	return parser.Parse(source)
}

// Compile parses and compiles source in one step.
func Compile(source string) (*compiler.CompiledProgram, error) {
	prog, err := parser.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parsing generator: %w", err)
	}
	cp, err := compiler.Compile(prog)
	if err != nil {
		return nil, fmt.Errorf("compiling generator: %w", err)
	}
	return cp, nil
}

// CompileTemplate parses and compiles source, returning a Template that
// can be evaluated repeatedly without redoing that work.
func CompileTemplate(source, name string) (*Template, error) {
	cp, err := Compile(source)
	if err != nil {
		return nil, err
	}
	return &Template{program: cp, source: source, name: name}, nil
}

// Evaluate parses, compiles and evaluates source once, seeded from the
// runtime's default entropy source.
func Evaluate(ctx context.Context, source string) (string, error) {
	tmpl, err := CompileTemplate(source, "")
	if err != nil {
		return "", err
	}
	return tmpl.Evaluate(ctx)
}

// EvaluateWithSeed is Evaluate with a fixed seed: the same source and seed
// always produce the same output, the property the public API's
// reproducibility guarantee rests on.
func EvaluateWithSeed(ctx context.Context, source string, seed int64) (string, error) {
	tmpl, err := CompileTemplate(source, "")
	if err != nil {
		return "", err
	}
	return tmpl.EvaluateWithSeed(ctx, seed)
}

// Option configures a single Evaluate call.
type Option func(*evalConfig)

type evalConfig struct {
	seed    *int64
	loader  *loader.CachingLoader
	tracing bool
}

// WithSeed fixes the random seed for this evaluation.
func WithSeed(seed int64) Option {
	return func(c *evalConfig) { c.seed = &seed }
}

// WithLoader attaches a loader so `{import:name}` references resolve.
func WithLoader(l *loader.CachingLoader) Option {
	return func(c *evalConfig) { c.loader = l }
}

// WithTrace turns on the evaluation trace, returned as the second result
// of Template.EvaluateOpts.
func WithTrace() Option {
	return func(c *evalConfig) { c.tracing = true }
}

// Evaluate renders t once using the process-global random source.
func (t *Template) Evaluate(ctx context.Context) (string, error) {
	out, _, err := t.EvaluateOpts(ctx)
	return out, err
}

// EvaluateWithSeed renders t once with a fixed seed.
func (t *Template) EvaluateWithSeed(ctx context.Context, seed int64) (string, error) {
	out, _, err := t.EvaluateOpts(ctx, WithSeed(seed))
	return out, err
}

// EvaluateOpts renders t with the given options applied, also returning
// the evaluation trace when WithTrace was passed (nil otherwise). Returned
// instead of stashed in package state so concurrent callers (see
// EvaluateMultiple) never race over it.
func (t *Template) EvaluateOpts(ctx context.Context, opts ...Option) (string, *trace.Node, error) {
	cfg := evalConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	var rng *rand.Rand
	if cfg.seed != nil {
		rng = rand.New(rand.NewSource(*cfg.seed))
	} else {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	ev := evaluator.New(t.program, rng).WithSource(t.source, t.name)
	if cfg.loader != nil {
		ev = ev.WithLoader(cfg.loader)
	}
	if cfg.tracing {
		ev = ev.WithTracing()
	}

	out, err := ev.Evaluate(ctx)
	return out, ev.Trace(), err
}
