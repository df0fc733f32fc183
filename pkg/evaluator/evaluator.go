package evaluator

import (
	"context"
	"math/rand"

	"its-hmny.dev/perchance/pkg/compiler"
	"its-hmny.dev/perchance/pkg/loader"
	"its-hmny.dev/perchance/pkg/span"
	"its-hmny.dev/perchance/pkg/trace"
)

// Evaluator walks a CompiledProgram and renders it to text, drawing random
// choices from rng. One Evaluator is good for exactly one top-level
// Evaluate call: variables, the current `this` binding and import-cycle
// tracking are all call-scoped, the same way the original interpreter
// builds a fresh evaluator per render rather than reusing one across runs.
type Evaluator struct {
	program     *compiler.CompiledProgram
	listsByName map[string]*compiler.CompiledList
	rng         *rand.Rand

	variables map[string]Value
	itemProps map[*compiler.CompiledItem]map[string]Value

	currentItem *compiler.CompiledItem
	currentText string
	lastNumber  *int64

	consumables map[string]*ConsumableList

	loader  *loader.CachingLoader
	pending map[string]bool // import names currently being resolved, for cycle detection

	trace *trace.Trace

	sourceTemplate string
	generatorName  string
}

// New builds an Evaluator for program using rng as its source of
// randomness. Feed rng a seeded *rand.Rand for reproducible output.
func New(program *compiler.CompiledProgram, rng *rand.Rand) *Evaluator {
	byName := make(map[string]*compiler.CompiledList, program.Lists.Count())
	program.Lists.Iterator()(func(name string, list compiler.CompiledList) bool {
		l := list
		byName[name] = &l
		return true
	})
	return &Evaluator{
		program:     program,
		listsByName: byName,
		rng:         rng,
		variables:   map[string]Value{},
		itemProps:   map[*compiler.CompiledItem]map[string]Value{},
		consumables: map[string]*ConsumableList{},
		pending:     map[string]bool{},
		trace:       trace.New(false),
	}
}

// WithTracing turns on trace recording; the resulting tree is available via
// Trace after Evaluate returns.
func (e *Evaluator) WithTracing() *Evaluator {
	e.trace = trace.New(true)
	return e
}

// WithLoader attaches a CachingLoader so `{import:name}` expressions can be
// resolved. Without one, any import reference fails with ErrImportFailed.
func (e *Evaluator) WithLoader(l *loader.CachingLoader) *Evaluator {
	e.loader = l
	return e
}

// WithSource records the template source and generator name for the trace
// overlay and for error messages; purely informational.
func (e *Evaluator) WithSource(source, name string) *Evaluator {
	e.sourceTemplate = source
	e.generatorName = name
	return e
}

// Trace returns the root of the evaluation trace, or nil if tracing was
// never enabled or nothing has been evaluated yet.
func (e *Evaluator) Trace() *trace.Node {
	return e.trace.Root
}

// Evaluate runs the generator's entry point and returns its rendered text.
// The entry point is, in order: a list named exactly "$output", a list
// named "output", or (failing both) the last top-level list declared in
// source order.
func (e *Evaluator) Evaluate(ctx context.Context) (string, error) {
	list, ok := e.entryPoint()
	if !ok {
		return "", newError(ErrUndefinedList, span.Span{}, "generator declares no output list")
	}
	val, err := e.evaluateListValue(ctx, list)
	if err != nil {
		return "", err
	}
	return e.coerceToString(ctx, val)
}

func (e *Evaluator) entryPoint() (*compiler.CompiledList, bool) {
	if l, ok := e.listsByName["$output"]; ok {
		return l, true
	}
	if l, ok := e.listsByName["output"]; ok {
		return l, true
	}
	var last *compiler.CompiledList
	e.program.Lists.Iterator()(func(_ string, list compiler.CompiledList) bool {
		l := list
		last = &l
		return true
	})
	if last == nil {
		return nil, false
	}
	return e.listsByName[last.Name], true
}

// Evaluate is a convenience wrapper: build an Evaluator for program and
// rng, and run it once.
func Evaluate(ctx context.Context, program *compiler.CompiledProgram, rng *rand.Rand) (string, error) {
	return New(program, rng).Evaluate(ctx)
}

func (e *Evaluator) setItemProp(item *compiler.CompiledItem, name string, v Value) {
	if e.itemProps[item] == nil {
		e.itemProps[item] = map[string]Value{}
	}
	e.itemProps[item][name] = v
}

func (e *Evaluator) getItemProp(item *compiler.CompiledItem, name string) (Value, bool) {
	m := e.itemProps[item]
	if m == nil {
		return Value{}, false
	}
	v, ok := m[name]
	return v, ok
}

func (e *Evaluator) resolveList(name string) (*compiler.CompiledList, bool) {
	l, ok := e.listsByName[name]
	return l, ok
}
