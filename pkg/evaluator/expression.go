package evaluator

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"its-hmny.dev/perchance/pkg/ast"
	"its-hmny.dev/perchance/pkg/span"
)

// evalExprString evaluates e and coerces the result to a string, wherever a
// flattened string rather than a chainable Value is needed (content
// interpolation, operands, arguments, conditions). A consumable list used
// this way draws and removes one remaining item; an exhausted one is an
// error.
func (e *Evaluator) evalExprString(ctx context.Context, expr *span.Spanned[ast.Expression]) (string, error) {
	val, err := e.evalExprValue(ctx, expr)
	if err != nil {
		return "", err
	}
	if val.Kind == ValConsumableList {
		idx, ok := val.Consumable.ConsumeRandom(e.rng)
		if !ok {
			return "", newError(ErrTypeError, expr.Span, "consumable list %q has been exhausted", val.Consumable.List.Name)
		}
		return e.evaluateContent(ctx, val.Consumable.List.Items[idx].Content)
	}
	return e.coerceToString(ctx, val)
}

// evalExprValue evaluates every expression form to a Value, preserving
// list/item/import identity so `.property` and `.method()` chains work
// without re-selecting or re-importing.
func (e *Evaluator) evalExprValue(ctx context.Context, expr *span.Spanned[ast.Expression]) (Value, error) {
	x := expr.Value
	switch x.Kind {
	case ast.ExprSimple:
		return e.resolveIdentifier(ctx, x.Identifier.Value.Name, expr.Span)

	case ast.ExprProperty:
		base, err := e.evalExprValue(ctx, x.Base)
		if err != nil {
			return Value{}, err
		}
		val, perr := e.resolveProperty(ctx, base, x.Property.Value.Name, expr.Span)
		if perr == nil {
			return val, nil
		}
		if !isRecoverable(perr) {
			return Value{}, perr
		}
		// A bare `.name` that isn't a property (no sublist, no `length`, ...)
		// is tried again as a zero-argument method call -- the idiom that
		// lets `item.consumableList`/`list.selectOne` read like properties.
		return e.callMethod(ctx, base, ast.MethodCall{Name: x.Property.Value.Name}, expr.Span)

	case ast.ExprPropertyWithFallback:
		base, err := e.evalExprValue(ctx, x.Base)
		if err == nil {
			val, perr := e.resolveProperty(ctx, base, x.Property.Value.Name, expr.Span)
			if perr == nil {
				return val, nil
			}
			if !isRecoverable(perr) {
				return Value{}, perr
			}
		} else if !isRecoverable(err) {
			return Value{}, err
		}
		return e.evalExprValue(ctx, x.Fallback)

	case ast.ExprDynamic:
		base, err := e.evalExprValue(ctx, x.Base)
		if err != nil {
			return Value{}, err
		}
		idx, err := e.evalExprValue(ctx, x.Index)
		if err != nil {
			return Value{}, err
		}
		return e.resolveDynamic(ctx, base, idx, expr.Span)

	case ast.ExprMethod:
		base, err := e.evalExprValue(ctx, x.Base)
		if err != nil {
			return Value{}, err
		}
		return e.callMethod(ctx, base, x.Method.Value, expr.Span)

	case ast.ExprAssignment:
		val, err := e.evalExprValue(ctx, x.Value)
		if err != nil {
			return Value{}, err
		}
		val, err = e.selectIfBareList(ctx, val, expr.Span)
		if err != nil {
			return Value{}, err
		}
		e.variables[x.Target.Value.Name] = val
		return val, nil

	case ast.ExprPropertyAssignment:
		base, err := e.evalExprValue(ctx, x.Base)
		if err != nil {
			return Value{}, err
		}
		val, err := e.evalExprValue(ctx, x.Value)
		if err != nil {
			return Value{}, err
		}
		if base.Kind != ValItemInstance || base.Item == nil {
			return Value{}, newError(ErrTypeError, expr.Span, "cannot set property %q on a %s", x.Property.Value.Name, base.Kind)
		}
		e.setItemProp(base.Item, x.Property.Value.Name, val)
		return val, nil

	case ast.ExprSequence:
		for _, stmt := range x.Statements {
			if _, err := e.evalExprValue(ctx, &stmt); err != nil {
				return Value{}, err
			}
		}
		if x.Result == nil {
			return Value{Kind: ValText, Text: ""}, nil
		}
		return e.evalExprValue(ctx, x.Result)

	case ast.ExprLiteral:
		return Value{Kind: ValText, Text: x.Literal}, nil

	case ast.ExprNumber:
		return Value{Kind: ValText, Text: formatNumber(x.Number)}, nil

	case ast.ExprNumberRange:
		lo, hi := x.RangeStart, x.RangeEnd
		if hi < lo {
			lo, hi = hi, lo
		}
		n := lo + int64(e.rng.Intn(int(hi-lo+1)))
		return Value{Kind: ValText, Text: strconv.FormatInt(n, 10)}, nil

	case ast.ExprLetterRange:
		lo, hi := x.LetterStart, x.LetterEnd
		if hi < lo {
			lo, hi = hi, lo
		}
		r := lo + rune(e.rng.Intn(int(hi-lo+1)))
		return Value{Kind: ValText, Text: string(r)}, nil

	case ast.ExprConditional, ast.ExprIfElse:
		condStr, err := e.evalExprString(ctx, x.Condition)
		if err != nil {
			return Value{}, err
		}
		if isTruthy(condStr) {
			return e.evalExprValue(ctx, x.Then)
		}
		if x.Else != nil {
			return e.evalExprValue(ctx, x.Else)
		}
		return Value{Kind: ValText, Text: ""}, nil

	case ast.ExprRepeat:
		countStr, err := e.evalExprString(ctx, x.Count)
		if err != nil {
			return Value{}, err
		}
		n, err := cast.ToIntE(strings.TrimSpace(countStr))
		if err != nil || n < 0 {
			return Value{}, newError(ErrTypeError, expr.Span, "repeat count %q is not a non-negative integer", countStr)
		}
		var sb strings.Builder
		for i := 0; i < n; i++ {
			text, err := e.evalExprString(ctx, x.Body)
			if err != nil {
				return Value{}, err
			}
			sb.WriteString(text)
		}
		return Value{Kind: ValText, Text: sb.String()}, nil

	case ast.ExprBinaryOp:
		return e.evalBinaryOp(ctx, x, expr.Span)

	case ast.ExprImport:
		return Value{Kind: ValImportedGenerator, ImportName: x.ImportName}, nil

	case ast.ExprCall:
		return e.callBuiltin(ctx, x.Method.Value, expr.Span)
	}

	return Value{}, newError(ErrTypeError, expr.Span, "unhandled expression kind %q", x.Kind)
}

// isRecoverable reports whether err is the kind of failure
// PropertyWithFallback is meant to catch (a missing property or a type
// mismatch), as opposed to something that should still abort evaluation
// (a divide-by-zero, a broken import, an import cycle).
func isRecoverable(err error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	return e.Kind == ErrUndefinedProperty || e.Kind == ErrTypeError
}

// resolveIdentifier looks up a bare name: `this`, a local variable, or a
// declared list.
func (e *Evaluator) resolveIdentifier(ctx context.Context, name string, sp span.Span) (Value, error) {
	if name == "this" {
		if e.currentItem == nil {
			return Value{}, newError(ErrUndefinedProperty, sp, "'this' used outside of an item context")
		}
		return Value{Kind: ValItemInstance, Item: e.currentItem, Text: e.currentText}, nil
	}
	if v, ok := e.variables[name]; ok {
		return v, nil
	}
	if list, ok := e.resolveList(name); ok {
		return Value{Kind: ValListInstance, List: list}, nil
	}
	return Value{}, newError(ErrUndefinedList, sp, "undefined name %q", name)
}

// selectIfBareList implements the assignment rule: binding a name directly
// to a list (`x = animal`) must draw its item immediately rather than
// capturing the list itself, so every later read of the variable replays
// that one draw instead of resolving the list fresh each time.
func (e *Evaluator) selectIfBareList(ctx context.Context, val Value, sp span.Span) (Value, error) {
	switch val.Kind {
	case ValListInstance, ValListRef:
		list, err := e.asList(val, sp)
		if err != nil {
			return Value{}, err
		}
		return e.evaluateListValue(ctx, list)
	default:
		return val, nil
	}
}

// resolveProperty implements `.property` access against every Value kind
// that supports it.
func (e *Evaluator) resolveProperty(ctx context.Context, base Value, name string, sp span.Span) (Value, error) {
	switch base.Kind {
	case ValItemInstance:
		if v, ok := e.getItemProp(base.Item, name); ok {
			return v, nil
		}
		for _, sub := range base.Item.Sublists {
			if sub.Name == name {
				return e.evaluateListValue(ctx, &sub)
			}
		}
		if name == "length" {
			return Value{Kind: ValText, Text: strconv.Itoa(len(base.Text))}, nil
		}
		return Value{}, newError(ErrUndefinedProperty, sp, "item has no property %q", name)

	case ValListInstance, ValListRef:
		list := base.List
		if list == nil {
			l, ok := e.resolveList(base.ListName)
			if !ok {
				return Value{}, newError(ErrUndefinedList, sp, "undefined list %q", base.ListName)
			}
			list = l
		}
		if name == "length" {
			return Value{Kind: ValText, Text: strconv.Itoa(len(list.Items))}, nil
		}
		return Value{}, newError(ErrUndefinedProperty, sp, "list %q has no property %q", list.Name, name)

	case ValArray:
		if name == "length" {
			return Value{Kind: ValText, Text: strconv.Itoa(len(base.Array))}, nil
		}
		return Value{}, newError(ErrUndefinedProperty, sp, "array has no property %q", name)

	case ValConsumableList:
		if name == "length" {
			return Value{Kind: ValText, Text: strconv.FormatUint(uint64(base.Consumable.Remaining.Count()), 10)}, nil
		}
		return Value{}, newError(ErrUndefinedProperty, sp, "consumable list has no property %q", name)

	default:
		return Value{}, newError(ErrTypeError, sp, "cannot access property %q on a %s", name, base.Kind)
	}
}

// resolveDynamic implements `base[index]`: numeric indexing into an array,
// or (for anything else) treating the coerced index as a property name.
func (e *Evaluator) resolveDynamic(ctx context.Context, base, idx Value, sp span.Span) (Value, error) {
	idxStr, err := e.coerceToString(ctx, idx)
	if err != nil {
		return Value{}, err
	}
	if base.Kind == ValArray {
		n, cerr := strconv.Atoi(strings.TrimSpace(idxStr))
		if cerr != nil || n < 0 || n >= len(base.Array) {
			return Value{}, newError(ErrTypeError, sp, "array index %q out of range", idxStr)
		}
		return base.Array[n], nil
	}
	return e.resolveProperty(ctx, base, idxStr, sp)
}

// coerceToString flattens any Value to its textual form, resolving
// list/item/import laziness on demand.
func (e *Evaluator) coerceToString(ctx context.Context, v Value) (string, error) {
	switch v.Kind {
	case ValText, ValItemInstance:
		return v.Text, nil

	case ValListInstance, ValListRef:
		list := v.List
		if list == nil {
			l, ok := e.resolveList(v.ListName)
			if !ok {
				return "", newError(ErrUndefinedList, span.Span{}, "undefined list %q", v.ListName)
			}
			list = l
		}
		picked, err := e.evaluateListValue(ctx, list)
		if err != nil {
			return "", err
		}
		return e.coerceToString(ctx, picked)

	case ValArray:
		parts := make([]string, len(v.Array))
		for i, item := range v.Array {
			s, err := e.coerceToString(ctx, item)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return strings.Join(parts, " "), nil

	case ValConsumableList:
		return "", newError(ErrTypeError, span.Span{}, "cannot render a consumable list directly, call a method on it")

	case ValImportedGenerator:
		return e.evaluateImport(ctx, v.ImportName)

	default:
		return "", newError(ErrTypeError, span.Span{}, "cannot render value of kind %s", v.Kind)
	}
}

// isTruthy is the coercion used by conditionals and && / ||: "false" and
// the empty string are false, "0" (and any zero numeric text) is false,
// everything else is true.
func isTruthy(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "false":
		return false
	}
	if f, err := cast.ToFloat64E(strings.TrimSpace(s)); err == nil {
		return f != 0
	}
	return true
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
