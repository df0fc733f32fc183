package evaluator

import (
	"context"

	"its-hmny.dev/perchance/pkg/span"
	"its-hmny.dev/perchance/pkg/trace"
)

// evaluateImport loads, compiles (via the attached CachingLoader) and
// evaluates the named generator, returning its rendered output. A name
// still being resolved higher up the call stack is reported as
// ErrImportCycle rather than recursing forever.
func (e *Evaluator) evaluateImport(ctx context.Context, name string) (string, error) {
	if e.loader == nil {
		return "", newError(ErrImportFailed, span.Span{}, "generator imports %q but no loader is configured", name)
	}
	if e.pending[name] {
		return "", newError(ErrImportCycle, span.Span{}, "import cycle detected at %q", name)
	}
	e.pending[name] = true
	defer delete(e.pending, name)

	program, src, err := e.loader.LoadCompiled(ctx, name)
	if err != nil {
		return "", newError(ErrImportFailed, span.Span{}, "importing %q: %v", name, err)
	}

	sub := New(program, e.rng).WithLoader(e.loader).WithSource(src, name)
	sub.pending = e.pending // share cycle-detection state across the whole import chain
	if e.trace.Enabled {
		sub = sub.WithTracing()
	}
	e.trace.Start("import:"+name, trace.OpImport, span.Span{})
	out, err := sub.Evaluate(ctx)
	if node := e.trace.Current(); node != nil && sub.Trace() != nil {
		node.Children = append(node.Children, sub.Trace())
	}
	e.trace.End(out)
	return out, err
}
