package parser

import (
	"strconv"
	"strings"

	"its-hmny.dev/perchance/pkg/ast"
	"its-hmny.dev/perchance/pkg/span"
)

// parseContentLine parses one line of content (an item's body, a list's
// `= value` shorthand, an inline choice's body) into ContentParts.
func parseContentLine(text string, lineNo, offset int, errs *Errors) []span.Spanned[ast.ContentPart] {
	lx := newLineLexer(text, lineNo, offset)
	return parseContentParts(lx, errs)
}

func parseContentParts(lx *lineLexer, errs *Errors) []span.Spanned[ast.ContentPart] {
	var parts []span.Spanned[ast.ContentPart]
	var textBuf []rune
	textStart := lx.pos

	flush := func() {
		if len(textBuf) > 0 {
			parts = append(parts, span.New(ast.ContentPart{Kind: ast.PartText, Text: string(textBuf)}, lx.spanFromRange(textStart, lx.pos)))
			textBuf = nil
		}
	}

	for !lx.eof() {
		switch lx.peek() {
		case '\\':
			flush()
			escStart := lx.pos
			lx.advance()
			if lx.eof() {
				*errs = append(*errs, newError(ErrUnexpectedEOF, lx.spanFrom(escStart), "dangling escape at end of line"))
				break
			}
			raw := lx.advance()
			esc, ok := resolveEscape(raw)
			if !ok {
				*errs = append(*errs, newError(ErrInvalidEscape, lx.spanFrom(escStart), "invalid escape '\\%c'", raw))
			}
			parts = append(parts, span.New(ast.ContentPart{Kind: ast.PartEscape, Escape: esc}, lx.spanFrom(escStart)))
			textStart = lx.pos
		case '[':
			flush()
			refStart := lx.pos
			lx.advance()
			expr, err := parseExpression(lx)
			if err != nil {
				*errs = append(*errs, err.(*Error))
			}
			if lx.peek() == ']' {
				lx.advance()
			} else {
				*errs = append(*errs, newError(ErrUnterminatedBracket, lx.spanFrom(refStart), "unterminated '['"))
			}
			sp := lx.spanFrom(refStart)
			parts = append(parts, span.New(ast.ContentPart{Kind: ast.PartReference, Reference: &expr}, sp))
			textStart = lx.pos
		case '{':
			flush()
			part := parseBraceGroup(lx, errs)
			parts = append(parts, part)
			textStart = lx.pos
		default:
			textBuf = append(textBuf, lx.peek())
			lx.advance()
		}
	}
	flush()
	return parts
}

// resolveEscape maps the character following a '\' to its literal value.
// The recognized set is exactly the one-char escapes meaningful inside
// perchance content: whitespace forms (s, t, n, r) plus every punctuation
// rune that would otherwise be read as syntax ([, ], {, }, =, ^, |, \).
// Anything else is reported by the caller as ErrInvalidEscape, with the
// offending rune returned unchanged so parsing can still continue.
func resolveEscape(r rune) (rune, bool) {
	switch r {
	case 's':
		return ' ', true
	case 't':
		return '\t', true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case '\\', '[', ']', '{', '}', '=', '^', '|':
		return r, true
	default:
		return r, false
	}
}

// parseBraceGroup parses a `{...}` group starting at the current '{'. It
// special-cases the `{a}` article marker, the `{s}` pluralize marker, the
// `{import:name}` form, number ranges (`{1-10}`) and letter ranges
// (`{a-z}`) before falling back to a generic `|`-separated choice list.
func parseBraceGroup(lx *lineLexer, errs *Errors) span.Spanned[ast.ContentPart] {
	openPos := lx.pos
	lx.advance() // consume '{'
	contentStart := lx.pos

	endIdx, ok := findMatching(lx.runes, lx.pos, '{', '}')
	if !ok {
		*errs = append(*errs, newError(ErrUnterminatedBrace, lx.spanFrom(openPos), "unterminated '{'"))
		lx.pos = len(lx.runes)
		return span.New(ast.ContentPart{Kind: ast.PartText}, lx.spanFrom(openPos))
	}
	inner := string(lx.runes[contentStart:endIdx])
	lx.pos = endIdx + 1
	full := lx.spanFrom(openPos)
	trimmed := trimSpace(inner)

	switch {
	case trimmed == "a" || trimmed == "an":
		return span.New(ast.ContentPart{Kind: ast.PartArticle}, full)
	case trimmed == "s":
		return span.New(ast.ContentPart{Kind: ast.PartPluralize}, full)
	case strings.HasPrefix(trimmed, "import:"):
		name := trimSpace(strings.TrimPrefix(trimmed, "import:"))
		expr := span.New(ast.Expression{Kind: ast.ExprImport, ImportName: name}, full)
		return span.New(ast.ContentPart{Kind: ast.PartReference, Reference: &expr}, full)
	}
	if start, end, ok := parseNumberRangeText(trimmed); ok {
		expr := span.New(ast.Expression{Kind: ast.ExprNumberRange, RangeStart: start, RangeEnd: end}, full)
		return span.New(ast.ContentPart{Kind: ast.PartReference, Reference: &expr}, full)
	}
	if start, end, ok := parseLetterRangeText(trimmed); ok {
		expr := span.New(ast.Expression{Kind: ast.ExprLetterRange, LetterStart: start, LetterEnd: end}, full)
		return span.New(ast.ContentPart{Kind: ast.PartReference, Reference: &expr}, full)
	}

	choices := parseChoices(inner, lx.lineNo, lx.baseOffset+contentStart, errs)
	il := span.New(ast.InlineList{Choices: choices}, full)
	return span.New(ast.ContentPart{Kind: ast.PartInline, Inline: &il}, full)
}

func parseChoices(text string, lineNo, baseOffset int, errs *Errors) []span.Spanned[ast.InlineChoice] {
	segs := splitTopLevel(text, '|')
	choices := make([]span.Spanned[ast.InlineChoice], 0, len(segs))
	for _, seg := range segs {
		body, weightText := splitWeightSuffix(seg.text)
		content := parseContentLine(body, lineNo, baseOffset+seg.offset, errs)
		choice := ast.InlineChoice{Content: content}
		if weightText != "" {
			w, err := parseWeightText(weightText, lineNo, baseOffset+seg.offset+len(body)+1, errs)
			if err == nil {
				choice.Weight = w
			}
		}
		sp := span.Span{Start: baseOffset + seg.offset, End: baseOffset + seg.offset + len([]rune(seg.text)), Line: lineNo, Col: seg.offset + 1}
		choices = append(choices, span.New(choice, sp))
	}
	return choices
}

func parseNumberRangeText(s string) (start, end int64, ok bool) {
	dash := strings.IndexByte(s, '-')
	if dash <= 0 || dash == len(s)-1 {
		return 0, 0, false
	}
	a, errA := strconv.ParseInt(trimSpace(s[:dash]), 10, 64)
	b, errB := strconv.ParseInt(trimSpace(s[dash+1:]), 10, 64)
	if errA != nil || errB != nil {
		return 0, 0, false
	}
	return a, b, true
}

func parseLetterRangeText(s string) (start, end rune, ok bool) {
	runes := []rune(trimSpace(s))
	if len(runes) != 3 || runes[1] != '-' {
		return 0, 0, false
	}
	return runes[0], runes[2], true
}

// findMatching scans runes starting at pos for the rune that closes the
// already-opened bracket at depth 1, honoring string literals and further
// nesting of the same open/close pair.
func findMatching(runes []rune, pos int, open, close rune) (int, bool) {
	depth := 1
	inString := false
	for i := pos; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"' && (i == 0 || runes[i-1] != '\\'):
			inString = !inString
		case inString:
			continue
		case r == open:
			depth++
		case r == close:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

type strSeg struct {
	text   string
	offset int
}

// splitTopLevel splits s on sep, ignoring occurrences inside string
// literals or nested [...]/{...} groups.
func splitTopLevel(s string, sep rune) []strSeg {
	runes := []rune(s)
	depth := 0
	inString := false
	start := 0
	var segs []strSeg
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"' && (i == 0 || runes[i-1] != '\\'):
			inString = !inString
		case inString:
			continue
		case r == '[' || r == '{':
			depth++
		case r == ']' || r == '}':
			depth--
		case r == sep && depth == 0:
			segs = append(segs, strSeg{text: string(runes[start:i]), offset: start})
			start = i + 1
		}
	}
	segs = append(segs, strSeg{text: string(runes[start:]), offset: start})
	return segs
}
