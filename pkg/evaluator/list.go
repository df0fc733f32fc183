package evaluator

import (
	"context"

	"its-hmny.dev/perchance/pkg/ast"
	"its-hmny.dev/perchance/pkg/compiler"
	"its-hmny.dev/perchance/pkg/span"
	"its-hmny.dev/perchance/pkg/trace"
)

// selectWeightedItem draws one index into items by weight.
func (e *Evaluator) selectWeightedItem(ctx context.Context, items []compiler.CompiledItem) (int, error) {
	weights := make([]*ast.ItemWeight, len(items))
	for i, it := range items {
		weights[i] = it.Weight
	}
	ws, err := e.computeWeights(ctx, weights, len(items))
	if err != nil {
		return 0, err
	}
	return drawIndex(e.rng, ws), nil
}

// singleImportTarget reports the import name when content is exactly one
// PartReference wrapping an Import expression -- the shape that makes a
// list's `$output` forward directly to an imported generator, so
// referencing the list as a value should yield a lazy
// ValImportedGenerator instead of eagerly rendering text.
func singleImportTarget(content []span.Spanned[ast.ContentPart]) (string, bool) {
	if len(content) != 1 {
		return "", false
	}
	part := content[0].Value
	if part.Kind != ast.PartReference || part.Reference == nil {
		return "", false
	}
	expr := part.Reference.Value
	if expr.Kind != ast.ExprImport {
		return "", false
	}
	return expr.ImportName, true
}

// evaluateListValue turns list into a Value, performing whatever selection
// is implied by its shape:
//   - a list with `$output` that is exactly `[{import:name}]` becomes a
//     lazy ValImportedGenerator (no selection, no evaluation yet);
//   - a list with `$output` otherwise picks an item (if it has any),
//     binds it as `this`, evaluates Output, and returns ValText;
//   - an empty list (no items, no $output) renders as the empty string;
//   - a plain list draws one weighted item; if that item owns sublists, one
//     is picked uniformly at random and evaluated recursively in its place,
//     otherwise the item's own content is evaluated (with the item bound as
//     `this`, so `this.x = ...` inside it works) and returned as a
//     ValItemInstance carrying both the rendered text and the Item itself,
//     so a subsequent `.property` can resolve against its Sublists.
func (e *Evaluator) evaluateListValue(ctx context.Context, list *compiler.CompiledList) (Value, error) {
	e.trace.Start(list.Name, trace.OpList, span.Span{})

	if list.HasOutput() {
		if name, ok := singleImportTarget(list.Output); ok {
			e.trace.End("<import:" + name + ">")
			return Value{Kind: ValImportedGenerator, ImportName: name}, nil
		}

		var text string
		var err error
		if len(list.Items) > 0 {
			idx, serr := e.selectWeightedItem(ctx, list.Items)
			if serr != nil {
				e.trace.End("")
				return Value{}, serr
			}
			item := &list.Items[idx]
			itemText, terr := e.evaluateContent(ctx, item.Content)
			if terr != nil {
				e.trace.End("")
				return Value{}, terr
			}
			prevItem, prevText := e.currentItem, e.currentText
			e.currentItem, e.currentText = item, itemText
			text, err = e.evaluateContent(ctx, list.Output)
			e.currentItem, e.currentText = prevItem, prevText
		} else {
			text, err = e.evaluateContent(ctx, list.Output)
		}
		if err != nil {
			e.trace.End("")
			return Value{}, err
		}
		e.trace.End(text)
		return Value{Kind: ValText, Text: text}, nil
	}

	if len(list.Items) == 0 {
		e.trace.End("")
		return Value{Kind: ValText, Text: ""}, nil
	}

	idx, err := e.selectWeightedItem(ctx, list.Items)
	if err != nil {
		e.trace.End("")
		return Value{}, err
	}
	item := &list.Items[idx]

	if len(item.Sublists) > 0 {
		chosen := &item.Sublists[e.rng.Intn(len(item.Sublists))]
		val, err := e.evaluateListValue(ctx, chosen)
		if err != nil {
			return Value{}, err
		}
		e.trace.End(val.Text)
		return val, nil
	}

	prevItem, prevText := e.currentItem, e.currentText
	e.currentItem, e.currentText = item, ""
	text, err := e.evaluateContent(ctx, item.Content)
	e.currentItem, e.currentText = prevItem, prevText
	if err != nil {
		e.trace.End("")
		return Value{}, err
	}
	e.trace.End(text)
	return Value{Kind: ValItemInstance, Item: item, Text: text}, nil
}
