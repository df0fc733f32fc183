// Package parser turns perchance generator source text into an ast.Program.
// It is hand-rolled rather than built on a combinator library: the grammar
// is indentation-sensitive (list/item nesting) with an embedded
// precedence-climbing expression language inside `[...]` references, and
// the two need to share line/column bookkeeping for span attribution in a
// way that doesn't map cleanly onto a statically-compiled combinator
// grammar (see DESIGN.md for why github.com/prataprc/goparsec, the
// teacher's own parsing dependency, was dropped in favor of this shape).
package parser

import (
	"regexp"

	"its-hmny.dev/perchance/pkg/ast"
	"its-hmny.dev/perchance/pkg/span"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Parser walks a pre-classified line stream and recursively builds the
// Program tree, the way pkg/jack.Parser wraps an io.Reader and exposes a
// Parse() entrypoint, generalized here to an indentation-aware cursor
// instead of a byte reader.
type Parser struct {
	lines []logicalLine
	idx   int
	errs  Errors
}

// NewParser prepares a Parser over source, pre-splitting it into
// indentation-classified logical lines.
func NewParser(source string) *Parser {
	p := &Parser{}
	p.lines = splitLogicalLines([]rune(source), &p.errs)
	return p
}

// Parse parses source into a Program, returning the first error
// encountered (fatal or accumulated) if any.
func Parse(source string) (*ast.Program, error) {
	p := NewParser(source)
	prog := p.parseProgram()
	if len(p.errs) > 0 {
		return nil, p.errs[0]
	}
	return prog, nil
}

// ParseAll parses source, returning every diagnostic collected rather than
// stopping at the first one. Used by the public ValidateTemplate API.
func ParseAll(source string) (*ast.Program, Errors) {
	p := NewParser(source)
	prog := p.parseProgram()
	return prog, p.errs
}

func (p *Parser) fail(kind ErrorKind, line int, format string, args ...any) {
	p.errs = append(p.errs, newError(kind, span.Span{Line: line, Col: 1}, format, args...))
}

func (p *Parser) atEnd() bool {
	return p.idx >= len(p.lines)
}

func (p *Parser) skipBlank() {
	for !p.atEnd() && p.lines[p.idx].blank {
		p.idx++
	}
}

func (p *Parser) peek() (logicalLine, bool) {
	p.skipBlank()
	if p.atEnd() {
		return logicalLine{}, false
	}
	return p.lines[p.idx], true
}

func (p *Parser) next() (logicalLine, bool) {
	l, ok := p.peek()
	if ok {
		p.idx++
	}
	return l, ok
}

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	for {
		line, ok := p.peek()
		if !ok {
			break
		}
		if line.indent != 0 {
			p.fail(ErrInvalidIndentation, line.lineNo, "unexpected indentation at top level")
			p.idx++
			continue
		}
		list, ok := p.parseListBody(0)
		if !ok {
			break
		}
		if _, exists := prog.FindList(list.Value.Name); exists {
			p.fail(ErrDuplicateListName, list.Span.Line, "list %q is already declared", list.Value.Name)
		}
		prog.Lists = append(prog.Lists, list)
	}
	return prog
}

// parseListBody parses one list starting at the current line, which must
// have logical indent == depth. Handles both the `name` + indented-items
// form and the `name = content` direct-output shorthand.
func (p *Parser) parseListBody(depth int) (span.Spanned[ast.List], bool) {
	header, ok := p.next()
	if !ok {
		return span.Spanned[ast.List]{}, false
	}
	startSpan := span.Span{Start: header.offset, Line: header.lineNo, Col: 1}

	if name, value, isAssign := splitTopLevelAssign(header.content); isAssign {
		content := parseContentLine(value, header.lineNo, header.offset+len(name)+1, &p.errs)
		list := ast.List{Name: name, Output: content}
		return span.New(list, startSpan), true
	}

	name := header.content
	list := ast.List{Name: name}
	for {
		line, ok := p.peek()
		if !ok || line.indent <= depth {
			break
		}
		if line.indent != depth+1 {
			p.fail(ErrInvalidIndentation, line.lineNo, "item is indented too deeply")
			p.idx++
			continue
		}
		if assignName, value, isAssign := splitTopLevelAssign(line.content); isAssign && assignName == "$output" {
			p.idx++
			list.Output = parseContentLine(value, line.lineNo, line.offset+len(assignName)+1, &p.errs)
			continue
		}
		item, ok := p.parseItem(depth + 1)
		if !ok {
			break
		}
		list.Items = append(list.Items, item)
	}
	return span.New(list, startSpan), true
}

// bareIdentifierName reports the identifier an item's content collapses to
// when it is exactly one plain-text part shaped like a name (`dog`, not
// `good dog` or text carrying a `[...]` reference). A bare name is the
// trigger for folding the item's deeper-indented lines into ONE synthetic
// sublist named after it, rather than parsing each as its own named list
// header.
func bareIdentifierName(content []span.Spanned[ast.ContentPart]) (string, bool) {
	if len(content) != 1 || content[0].Value.Kind != ast.PartText {
		return "", false
	}
	name := trimSpace(content[0].Value.Text)
	if !identifierRe.MatchString(name) {
		return "", false
	}
	return name, true
}

// parseItem parses one item line at logical indent == depth, then consumes
// any immediately-following deeper-indented lines as the item's sublists.
// A bare-identifier item (`dog`) folds those lines into the items of a
// single sublist named after it; anything else treats each deeper line as
// the header of its own independently-named sublist.
func (p *Parser) parseItem(depth int) (span.Spanned[ast.Item], bool) {
	line, ok := p.next()
	if !ok {
		return span.Spanned[ast.Item]{}, false
	}
	body, weightText := splitWeightSuffix(line.content)

	content := parseContentLine(body, line.lineNo, line.offset, &p.errs)
	item := ast.Item{Content: content}

	if weightText != "" {
		w, err := parseWeightText(weightText, line.lineNo, line.offset+len(body)+1, &p.errs)
		if err == nil {
			item.Weight = w
		}
	}

	itemSpan := span.Span{Start: line.offset, Line: line.lineNo, Col: 1}

	if name, isBare := bareIdentifierName(content); isBare {
		if next, ok := p.peek(); ok && next.indent == depth+1 {
			sub := ast.List{Name: name}
			for {
				next, ok := p.peek()
				if !ok || next.indent <= depth {
					break
				}
				if next.indent != depth+1 {
					p.fail(ErrInvalidIndentation, next.lineNo, "sublist is indented too deeply")
					p.idx++
					continue
				}
				subitem, ok := p.parseItem(depth + 1)
				if !ok {
					break
				}
				sub.Items = append(sub.Items, subitem)
			}
			item.Content = nil
			item.Sublists = []span.Spanned[ast.List]{span.New(sub, itemSpan)}
			return span.New(item, itemSpan), true
		}
	}

	for {
		next, ok := p.peek()
		if !ok || next.indent <= depth {
			break
		}
		if next.indent != depth+1 {
			p.fail(ErrInvalidIndentation, next.lineNo, "sublist is indented too deeply")
			p.idx++
			continue
		}
		sub, ok := p.parseListBody(depth + 1)
		if !ok {
			break
		}
		item.Sublists = append(item.Sublists, sub)
	}

	return span.New(item, itemSpan), true
}

// splitTopLevelAssign recognizes `name = content`, used both for the
// top-level `$output`-style shorthand and for property-assignment entries
// inside a sublist block (`color = red`). The `=` must be a bare assignment,
// not `==`, and must sit outside any string/bracket/brace nesting.
func splitTopLevelAssign(line string) (name, value string, ok bool) {
	runes := []rune(line)
	depth := 0
	inString := false
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
		case r == '=' && depth == 0:
			if i+1 < len(runes) && runes[i+1] == '=' {
				return "", "", false
			}
			if i > 0 && (runes[i-1] == '=' || runes[i-1] == '!' || runes[i-1] == '<' || runes[i-1] == '>') {
				return "", "", false
			}
			lhs := trimSpace(string(runes[:i]))
			if !identifierRe.MatchString(lhs) && !(len(lhs) > 1 && lhs[0] == '$' && identifierRe.MatchString(lhs[1:])) {
				return "", "", false
			}
			rhs := trimSpace(string(runes[i+1:]))
			return lhs, rhs, true
		}
	}
	return "", "", false
}

// splitWeightSuffix separates a trailing `^weight` or `^[expr]` marker from
// an item/choice's content, honoring string/bracket nesting the same way
// splitTopLevelAssign does.
func splitWeightSuffix(line string) (body, weight string) {
	runes := []rune(line)
	depth := 0
	inString := false
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
		case r == '^' && depth == 0:
			return trimSpace(string(runes[:i])), trimSpace(string(runes[i+1:]))
		}
	}
	return line, ""
}

func trimSpace(s string) string {
	i, j := 0, len(s)
	for i < j && isSpaceByte(s[i]) {
		i++
	}
	for j > i && isSpaceByte(s[j-1]) {
		j--
	}
	return s[i:j]
}

func isSpaceByte(b byte) bool { return b == ' ' || b == '\t' }

func parseWeightText(text string, lineNo, offset int, errs *Errors) (*ast.ItemWeight, error) {
	if len(text) > 0 && text[0] == '[' {
		inner := text
		if text[len(text)-1] == ']' {
			inner = text[1 : len(text)-1]
		} else {
			*errs = append(*errs, newError(ErrUnterminatedBracket, span.Span{Line: lineNo, Col: 1}, "unterminated weight expression"))
			return nil, errIndent("bad weight")
		}
		lx := newLineLexer(inner, lineNo, offset)
		expr, err := parseExpression(lx)
		if err != nil {
			*errs = append(*errs, err.(*Error))
			return nil, err
		}
		return &ast.ItemWeight{Kind: ast.WeightDynamic, Dynamic: &expr}, nil
	}
	f, err := parseFloat(text)
	if err != nil {
		*errs = append(*errs, newError(ErrInvalidWeight, span.Span{Line: lineNo, Col: 1}, "invalid weight %q", text))
		return nil, err
	}
	return &ast.ItemWeight{Kind: ast.WeightStatic, Static: f}, nil
}
