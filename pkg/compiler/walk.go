package compiler

import "its-hmny.dev/perchance/pkg/ast"
import "its-hmny.dev/perchance/pkg/span"

// walkContent visits every expression reachable from a slice of content
// parts, recursing into inline choices and referenced expressions. Used by
// import-name validation.
func walkContent(parts []span.Spanned[ast.ContentPart], visit func(*span.Spanned[ast.Expression])) {
	for i := range parts {
		part := &parts[i].Value
		switch part.Kind {
		case ast.PartReference:
			walkExpression(part.Reference, visit)
		case ast.PartInline:
			for j := range part.Inline.Value.Choices {
				walkContent(part.Inline.Value.Choices[j].Value.Content, visit)
				if w := part.Inline.Value.Choices[j].Value.Weight; w != nil && w.Kind == ast.WeightDynamic {
					walkExpression(w.Dynamic, visit)
				}
			}
		}
	}
}

// walkExpression visits e and every expression nested inside it.
func walkExpression(e *span.Spanned[ast.Expression], visit func(*span.Spanned[ast.Expression])) {
	if e == nil {
		return
	}
	visit(e)
	v := &e.Value
	walkExpression(v.Base, visit)
	walkExpression(v.Fallback, visit)
	walkExpression(v.Value, visit)
	walkExpression(v.Index, visit)
	for i := range v.Statements {
		walkExpression(&v.Statements[i], visit)
	}
	walkExpression(v.Result, visit)
	walkExpression(v.Condition, visit)
	walkExpression(v.Then, visit)
	walkExpression(v.Else, visit)
	walkExpression(v.Count, visit)
	walkExpression(v.Body, visit)
	walkExpression(v.Left, visit)
	walkExpression(v.Right, visit)
	if v.Method != nil {
		for i := range v.Method.Value.Args {
			walkExpression(&v.Method.Value.Args[i], visit)
		}
	}
}
