package parser

import (
	"strconv"

	"its-hmny.dev/perchance/pkg/span"
)

// lineLexer is the shared mutable cursor used by both content parsing and
// expression parsing within a single logical line. Expressions are only
// ever embedded inside a line's content (a `[...]` reference never spans
// multiple physical lines), so one rune cursor per line is enough to give
// every content part and every expression node a consistent, overlapping
// span without juggling two independent parsers.
type lineLexer struct {
	runes      []rune
	pos        int
	lineNo     int
	baseOffset int // rune offset of runes[0] in the original source
}

func newLineLexer(text string, lineNo, baseOffset int) *lineLexer {
	return &lineLexer{runes: []rune(text), lineNo: lineNo, baseOffset: baseOffset}
}

func (l *lineLexer) eof() bool { return l.pos >= len(l.runes) }

func (l *lineLexer) peek() rune {
	if l.eof() {
		return 0
	}
	return l.runes[l.pos]
}

func (l *lineLexer) peekAt(n int) rune {
	if l.pos+n >= len(l.runes) {
		return 0
	}
	return l.runes[l.pos+n]
}

func (l *lineLexer) advance() rune {
	r := l.runes[l.pos]
	l.pos++
	return r
}

func (l *lineLexer) spanFrom(start int) span.Span {
	return l.spanFromRange(start, l.pos)
}

func (l *lineLexer) spanFromRange(start, end int) span.Span {
	return span.Span{
		Start: l.baseOffset + start,
		End:   l.baseOffset + end,
		Line:  l.lineNo,
		Col:   start + 1,
	}
}

func (l *lineLexer) skipSpaces() {
	for !l.eof() && (l.peek() == ' ' || l.peek() == '\t') {
		l.pos++
	}
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
