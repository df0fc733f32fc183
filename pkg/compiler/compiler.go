package compiler

import (
	"its-hmny.dev/perchance/pkg/ast"
	"its-hmny.dev/perchance/pkg/span"
	"its-hmny.dev/perchance/pkg/utils"
)

// Compile validates a parsed Program and lowers it into a CompiledProgram.
// It returns the first compile error found, if any; use CompileAll to get
// every diagnostic at once (used by the public ValidateTemplate API).
func Compile(prog *ast.Program) (*CompiledProgram, error) {
	cp, errs := CompileAll(prog)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return cp, nil
}

// CompileAll compiles prog, returning every diagnostic collected.
func CompileAll(prog *ast.Program) (*CompiledProgram, Errors) {
	var errs Errors
	cp := &CompiledProgram{Lists: utils.NewOrderedMap[string, CompiledList]()}

	seen := map[string]bool{}
	for _, l := range prog.Lists {
		if seen[l.Value.Name] {
			errs = append(errs, newError(ErrDuplicateList, l.Span, "list %q is already declared", l.Value.Name))
			continue
		}
		seen[l.Value.Name] = true
	}

	for _, l := range prog.Lists {
		compiled := compileList(l.Value)
		cp.Lists.Set(l.Value.Name, compiled)
		if len(l.Value.Items) == 0 && !l.Value.HasOutput() {
			errs = append(errs, newError(ErrEmptyList, l.Span, "list %q has no items and no $output", l.Value.Name))
		}
		validateImports(l.Value.Output, &errs)
		for _, item := range l.Value.Items {
			validateImports(item.Value.Content, &errs)
			validateWeight(item, &errs)
		}
	}

	detectOutputCycles(prog, &errs)
	return cp, errs
}

func compileList(l ast.List) CompiledList {
	out := CompiledList{Name: l.Name, Output: l.Output}
	for _, item := range l.Items {
		out.Items = append(out.Items, compileItem(item.Value))
	}
	return out
}

func compileItem(i ast.Item) CompiledItem {
	out := CompiledItem{Content: i.Content, Weight: i.Weight}
	for _, sub := range i.Sublists {
		out.Sublists = append(out.Sublists, compileList(sub.Value))
	}
	return out
}

// validateWeight rejects a negative static weight on item, and recurses into
// every item of every sublist it owns since a weight can appear at any
// nesting depth.
func validateWeight(item span.Spanned[ast.Item], errs *Errors) {
	w := item.Value.Weight
	if w != nil && w.Kind == ast.WeightStatic && w.Static < 0 {
		*errs = append(*errs, newError(ErrInvalidWeight, item.Span, "item weight must not be negative, got %g", w.Static))
	}
	for _, sub := range item.Value.Sublists {
		for _, subitem := range sub.Value.Items {
			validateWeight(subitem, errs)
		}
	}
}

func validateImports(parts []span.Spanned[ast.ContentPart], errs *Errors) {
	walkContent(parts, func(e *span.Spanned[ast.Expression]) {
		if e.Value.Kind == ast.ExprImport && e.Value.ImportName == "" {
			*errs = append(*errs, newError(ErrInvalidImport, e.Span, "import name must not be empty"))
		}
	})
}

// detectOutputCycles flags lists whose $output is nothing but a direct
// reference to another list whose own $output chain eventually loops back,
// which would otherwise recurse forever at evaluation time.
func detectOutputCycles(prog *ast.Program, errs *Errors) {
	edges := map[string]string{}
	for _, l := range prog.Lists {
		if target, ok := directOutputTarget(l.Value); ok {
			edges[l.Value.Name] = target
		}
	}
	for start := range edges {
		visited := map[string]bool{start: true}
		cur := edges[start]
		for {
			next, ok := edges[cur]
			if !ok {
				break
			}
			if visited[cur] {
				errs1 := *errs
				*errs = append(errs1, newError(ErrCircularOutput, span.Span{}, "list %q has a circular $output chain", start))
				break
			}
			visited[cur] = true
			cur = next
		}
	}
}

// directOutputTarget returns the list name a `$output` resolves to when it
// is exactly one content part that is a bare Simple reference, e.g.
// `$output = [otherList]`.
func directOutputTarget(l ast.List) (string, bool) {
	if len(l.Output) != 1 {
		return "", false
	}
	part := l.Output[0].Value
	if part.Kind != ast.PartReference || part.Reference == nil {
		return "", false
	}
	expr := part.Reference.Value
	if expr.Kind != ast.ExprSimple || expr.Identifier == nil {
		return "", false
	}
	return expr.Identifier.Value.Name, true
}
