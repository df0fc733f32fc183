package evaluator

import (
	"context"
	"strconv"
	"strings"

	"its-hmny.dev/perchance/pkg/ast"
	"its-hmny.dev/perchance/pkg/span"
	"its-hmny.dev/perchance/pkg/trace"
)

// evaluateContent renders a sequence of ContentParts to a single string,
// the way a list item's body or an inline choice's body is rendered.
// Article ({a}/{an}) and pluralize ({s}) markers look at the text that
// follows them in the same part list, so they're resolved part-by-part
// rather than independently.
func (e *Evaluator) evaluateContent(ctx context.Context, parts []span.Spanned[ast.ContentPart]) (string, error) {
	var sb strings.Builder
	for i, p := range parts {
		part := p.Value
		switch part.Kind {
		case ast.PartText:
			sb.WriteString(part.Text)

		case ast.PartEscape:
			sb.WriteRune(part.Escape)

		case ast.PartReference:
			text, err := e.evalExprString(ctx, part.Reference)
			if err != nil {
				return "", err
			}
			if n, ok := trailingNumber(text); ok {
				e.lastNumber = &n
			}
			sb.WriteString(text)

		case ast.PartInline:
			text, err := e.evaluateInline(ctx, part.Inline)
			if err != nil {
				return "", err
			}
			sb.WriteString(text)

		case ast.PartArticle:
			word := e.peekNextWord(parts, i+1)
			if startsWithVowelSound(word) {
				sb.WriteString("an")
			} else {
				sb.WriteString("a")
			}

		case ast.PartPluralize:
			if e.lastNumber != nil && *e.lastNumber == 1 {
				// singular, nothing to append
			} else {
				sb.WriteString("s")
			}
		}
	}
	return sb.String(), nil
}

// trailingNumber reports whether text parses cleanly as an integer, for
// {s}'s "was the last interpolated value exactly 1" check. Non-numeric
// text (the overwhelmingly common case) is simply ignored.
func trailingNumber(text string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// peekNextWord looks ahead from index onward for the first word of literal
// text, for article selection. A Reference or Inline part immediately
// following an article marker can't be peeked without evaluating it (and
// thus consuming randomness meant for the real render pass), so it's
// treated as not starting with a vowel sound -- a known, minor
// simplification for an edge case ("a {noun}" where noun is itself a
// choice starting with a vowel occasionally reads oddly).
func (e *Evaluator) peekNextWord(parts []span.Spanned[ast.ContentPart], from int) string {
	for i := from; i < len(parts); i++ {
		part := parts[i].Value
		switch part.Kind {
		case ast.PartText:
			word := firstWord(part.Text)
			if word != "" {
				return word
			}
		case ast.PartEscape:
			return string(part.Escape)
		case ast.PartArticle, ast.PartPluralize:
			continue
		default:
			return ""
		}
	}
	return ""
}

func firstWord(s string) string {
	s = strings.TrimLeft(s, " \t\n")
	end := 0
	for end < len(s) && s[end] != ' ' && s[end] != '\t' && s[end] != '\n' {
		end++
	}
	return s[:end]
}

// evaluateInline renders a `{choice|choice|...}` group by drawing one
// choice according to its (possibly dynamic) weights and rendering its
// content. Number/letter ranges and `{import:name}` never reach here: the
// parser emits those directly as PartReference, so this only ever handles
// genuine multi-choice (or single-choice) groups.
func (e *Evaluator) evaluateInline(ctx context.Context, inline *span.Spanned[ast.InlineList]) (string, error) {
	choices := inline.Value.Choices
	e.trace.Start("", trace.OpChoice, inline.Span)
	if len(choices) == 0 {
		e.trace.End("")
		return "", nil
	}

	weights := make([]*ast.ItemWeight, len(choices))
	labels := make([]string, len(choices))
	for i, c := range choices {
		weights[i] = c.Value.Weight
		labels[i] = renderedLabel(c.Value.Content)
	}
	ws, err := e.computeWeights(ctx, weights, len(choices))
	if err != nil {
		e.trace.End("")
		return "", err
	}
	idx := drawIndex(e.rng, ws)
	if node := e.trace.Current(); node != nil {
		node.AvailableItems = labels
		sel := idx
		node.SelectedIndex = &sel
	}

	text, err := e.evaluateContent(ctx, choices[idx].Value.Content)
	if err != nil {
		e.trace.End("")
		return "", err
	}
	e.trace.End(text)
	return text, nil
}

// renderedLabel renders the literal-text skeleton of a choice for trace
// display, without evaluating any embedded expression (tracing must not
// have side effects on the random sequence).
func renderedLabel(parts []span.Spanned[ast.ContentPart]) string {
	var sb strings.Builder
	for _, p := range parts {
		switch p.Value.Kind {
		case ast.PartText:
			sb.WriteString(p.Value.Text)
		case ast.PartReference:
			sb.WriteString("[...]")
		case ast.PartInline:
			sb.WriteString("{...}")
		case ast.PartArticle:
			sb.WriteString("{a}")
		case ast.PartPluralize:
			sb.WriteString("{s}")
		}
	}
	return sb.String()
}
