package evaluator

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cast"

	"its-hmny.dev/perchance/pkg/ast"
	"its-hmny.dev/perchance/pkg/compiler"
	"its-hmny.dev/perchance/pkg/grammar"
	"its-hmny.dev/perchance/pkg/span"
	"its-hmny.dev/perchance/pkg/trace"
)

// callMethod dispatches a `.method(args...)` call against base.
func (e *Evaluator) callMethod(ctx context.Context, base Value, call ast.MethodCall, sp span.Span) (Value, error) {
	e.trace.Start(call.Name, trace.OpMethod, sp)
	val, err := e.dispatchMethod(ctx, base, call, sp)
	if err != nil {
		e.trace.End("")
		return Value{}, err
	}
	text, _ := e.coerceToString(ctx, val)
	e.trace.End(text)
	return val, nil
}

func (e *Evaluator) dispatchMethod(ctx context.Context, base Value, call ast.MethodCall, sp span.Span) (Value, error) {
	switch call.Name {
	case "selectOne", "evaluateItem":
		list, err := e.asList(base, sp)
		if err != nil {
			return Value{}, err
		}
		return e.evaluateListValue(ctx, list)

	case "selectAll":
		list, err := e.asList(base, sp)
		if err != nil {
			return Value{}, err
		}
		items := make([]Value, len(list.Items))
		for i := range list.Items {
			item := &list.Items[i]
			text, err := e.evaluateContent(ctx, item.Content)
			if err != nil {
				return Value{}, err
			}
			items[i] = Value{Kind: ValItemInstance, Item: item, Text: text}
		}
		return Value{Kind: ValArray, Array: items}, nil

	case "selectMany":
		return e.selectRepeated(ctx, base, call, sp, true)

	case "selectUnique":
		return e.selectRepeated(ctx, base, call, sp, false)

	case "consumableList":
		list, err := e.asList(base, sp)
		if err != nil {
			return Value{}, err
		}
		cl := NewConsumableList(list)
		e.consumables[cl.ID] = cl
		return Value{Kind: ValConsumableList, Consumable: cl}, nil

	case "joinItems":
		sep := " "
		if len(call.Args) >= 1 {
			s, err := e.evalExprString(ctx, &call.Args[0])
			if err != nil {
				return Value{}, err
			}
			sep = s
		}
		return e.joinItems(ctx, base, sep, sp)

	case "pluralForm":
		return e.grammarMethod(ctx, base, grammar.ToPlural)
	case "singularForm":
		return e.grammarMethod(ctx, base, grammar.ToSingular)
	case "pastTenseForm":
		return e.grammarMethod(ctx, base, grammar.ToPastTense)
	case "presentTenseForm":
		return e.grammarMethod(ctx, base, grammar.ToPresentTense)
	case "futureTenseForm":
		return e.grammarMethod(ctx, base, grammar.ToFutureTense)
	case "negativeForm":
		return e.grammarMethod(ctx, base, grammar.ToNegativeForm)
	case "possessiveForm":
		return e.grammarMethod(ctx, base, grammar.ToPossessive)
	case "titleCase":
		return e.grammarMethod(ctx, base, grammar.ToTitleCase)
	case "sentenceCase":
		return e.grammarMethod(ctx, base, grammar.ToSentenceCase)
	case "upperCase":
		return e.grammarMethod(ctx, base, strings.ToUpper)
	case "lowerCase":
		return e.grammarMethod(ctx, base, strings.ToLower)

	case "consume":
		if base.Kind != ValConsumableList {
			return Value{}, newError(ErrTypeError, sp, "consume() called on a %s, expected a consumable list", base.Kind)
		}
		idx, ok := base.Consumable.ConsumeRandom(e.rng)
		if !ok {
			return Value{Kind: ValText, Text: ""}, nil
		}
		item := &base.Consumable.List.Items[idx]
		text, err := e.evaluateContent(ctx, item.Content)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValItemInstance, Item: item, Text: text}, nil

	default:
		return Value{}, newError(ErrUndefinedProperty, sp, "unknown method %q", call.Name)
	}
}

// callBuiltin dispatches a bare `name(args...)` call -- a top-level
// function rather than a `.method()` chained off a value. Currently only
// joinLists, the one free function the language defines: it merges the
// items of each named list into one synthetic in-memory list so
// `.selectMany()`/`.joinItems()` can chain off the result exactly as they
// would off a declared list.
func (e *Evaluator) callBuiltin(ctx context.Context, call ast.MethodCall, sp span.Span) (Value, error) {
	switch call.Name {
	case "joinLists":
		var items []compiler.CompiledItem
		for i := range call.Args {
			v, err := e.evalExprValue(ctx, &call.Args[i])
			if err != nil {
				return Value{}, err
			}
			list, err := e.asList(v, sp)
			if err != nil {
				return Value{}, err
			}
			items = append(items, list.Items...)
		}
		joined := &compiler.CompiledList{Name: "joinLists(...)", Items: items}
		return Value{Kind: ValListInstance, List: joined}, nil
	default:
		return Value{}, newError(ErrUndefinedProperty, sp, "unknown function %q", call.Name)
	}
}

// asList resolves base to the CompiledList it names or wraps. Only
// ValListInstance/ValListRef are list-like; anything else is a type error,
// since calling `.selectOne()` on plain text or an already-picked item
// makes no sense.
func (e *Evaluator) asList(base Value, sp span.Span) (*compiler.CompiledList, error) {
	switch base.Kind {
	case ValListInstance, ValListRef:
		if base.List != nil {
			return base.List, nil
		}
		l, ok := e.resolveList(base.ListName)
		if !ok {
			return nil, newError(ErrUndefinedList, sp, "undefined list %q", base.ListName)
		}
		return l, nil
	default:
		return nil, newError(ErrTypeError, sp, "expected a list, got a %s", base.Kind)
	}
}

// selectRepeated implements selectMany (with replacement) and
// selectUnique (without replacement). Both accept either one argument
// (exact count) or two (inclusive min/max, drawn uniformly).
func (e *Evaluator) selectRepeated(ctx context.Context, base Value, call ast.MethodCall, sp span.Span, withReplacement bool) (Value, error) {
	list, err := e.asList(base, sp)
	if err != nil {
		return Value{}, err
	}
	count, err := e.resolveCountArg(ctx, call.Args, sp)
	if err != nil {
		return Value{}, err
	}

	if withReplacement {
		out := make([]Value, 0, count)
		for i := 0; i < count; i++ {
			v, err := e.evaluateListValue(ctx, list)
			if err != nil {
				return Value{}, err
			}
			out = append(out, v)
		}
		return Value{Kind: ValArray, Array: out}, nil
	}

	n := len(list.Items)
	if count > n {
		count = n
	}
	order := lo.Range(n)
	e.rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	out := make([]Value, 0, count)
	for _, idx := range order[:count] {
		item := &list.Items[idx]
		text, err := e.evaluateContent(ctx, item.Content)
		if err != nil {
			return Value{}, err
		}
		out = append(out, Value{Kind: ValItemInstance, Item: item, Text: text})
	}
	return Value{Kind: ValArray, Array: out}, nil
}

func (e *Evaluator) resolveCountArg(ctx context.Context, args []span.Spanned[ast.Expression], sp span.Span) (int, error) {
	switch len(args) {
	case 0:
		return 1, nil
	case 1:
		s, err := e.evalExprString(ctx, &args[0])
		if err != nil {
			return 0, err
		}
		n, cerr := cast.ToIntE(strings.TrimSpace(s))
		if cerr != nil || n < 0 {
			return 0, newError(ErrInvalidArguments, sp, "expected a non-negative integer argument, got %q", s)
		}
		return n, nil
	default:
		loStr, err := e.evalExprString(ctx, &args[0])
		if err != nil {
			return 0, err
		}
		hiStr, err := e.evalExprString(ctx, &args[1])
		if err != nil {
			return 0, err
		}
		lon, lerr := cast.ToIntE(strings.TrimSpace(loStr))
		hin, herr := cast.ToIntE(strings.TrimSpace(hiStr))
		if lerr != nil || herr != nil || lon < 0 || hin < lon {
			return 0, newError(ErrInvalidArguments, sp, "expected a valid min,max range, got %q,%q", loStr, hiStr)
		}
		return lon + e.rng.Intn(hin-lon+1), nil
	}
}

// joinItems renders base's elements and joins them with sep: an array
// joins each element, a list renders every item, anything else just
// stringifies.
func (e *Evaluator) joinItems(ctx context.Context, base Value, sep string, sp span.Span) (Value, error) {
	switch base.Kind {
	case ValArray:
		parts := make([]string, len(base.Array))
		for i, v := range base.Array {
			s, err := e.coerceToString(ctx, v)
			if err != nil {
				return Value{}, err
			}
			parts[i] = s
		}
		return Value{Kind: ValText, Text: strings.Join(parts, sep)}, nil

	case ValListInstance, ValListRef:
		list, err := e.asList(base, sp)
		if err != nil {
			return Value{}, err
		}
		parts := make([]string, len(list.Items))
		for i := range list.Items {
			s, err := e.evaluateContent(ctx, list.Items[i].Content)
			if err != nil {
				return Value{}, err
			}
			parts[i] = s
		}
		return Value{Kind: ValText, Text: strings.Join(parts, sep)}, nil

	default:
		s, err := e.coerceToString(ctx, base)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValText, Text: s}, nil
	}
}

func (e *Evaluator) grammarMethod(ctx context.Context, base Value, fn func(string) string) (Value, error) {
	s, err := e.coerceToString(ctx, base)
	if err != nil {
		return Value{}, err
	}
	return Value{Kind: ValText, Text: fn(s)}, nil
}
