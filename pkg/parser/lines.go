package parser

import (
	"strings"

	"its-hmny.dev/perchance/pkg/span"
)

// logicalLine is one physical source line after indentation has been
// classified into a logical nesting depth and any trailing `//` comment has
// been stripped. The indentation unit (tabs, or N spaces) is detected once
// per top-level list and reset for the next one, matching the way a
// perchance generator lets each top-level list pick its own style.
type logicalLine struct {
	content string // line text with indentation and comment stripped
	indent  int    // logical nesting depth, 0 = top-level
	lineNo  int
	offset  int // rune offset of the first content rune (after indentation)
	blank   bool
}

type indentUnit struct {
	tabs  bool
	width int // meaningful only when !tabs; number of spaces per level
}

// splitLogicalLines turns raw source into logicalLines, grouping runs of
// lines under each top-level (indent==0) line into its own indentation
// block so that each top-level list can pick its own indent unit.
func splitLogicalLines(src []rune, errs *Errors) []logicalLine {
	rawLines := splitRawLines(src)

	var out []logicalLine
	i := 0
	for i < len(rawLines) {
		// Gather one top-level block: the header line plus every following
		// line that isn't itself another top-level (zero-indent) header.
		start := i
		i++
		for i < len(rawLines) && (rawLines[i].blank || rawLines[i].leadWidth > 0) {
			i++
		}
		block := rawLines[start:i]
		out = append(out, classifyBlock(block, errs)...)
	}
	return out
}

type rawLine struct {
	leadWidth int // number of leading whitespace runes
	leadTabs  bool
	content   string
	lineNo    int
	offset    int
	blank     bool
}

func splitRawLines(src []rune) []rawLine {
	text := string(src)
	lines := strings.Split(text, "\n")
	out := make([]rawLine, 0, len(lines))
	offset := 0
	for i, raw := range lines {
		raw = strings.TrimSuffix(raw, "\r")
		lineNo := i + 1
		trimmed := strings.TrimLeft(raw, " \t")
		leadWidth := len([]rune(raw)) - len([]rune(trimmed))
		leadTabs := leadWidth > 0 && raw[0] == '\t'
		content := stripComment(trimmed)
		blank := strings.TrimSpace(content) == ""
		out = append(out, rawLine{
			leadWidth: leadWidth,
			leadTabs:  leadTabs,
			content:   content,
			lineNo:    lineNo,
			offset:    offset + leadWidth,
			blank:     blank,
		})
		offset += len([]rune(raw)) + 1 // +1 for the newline consumed by Split
	}
	return out
}

// stripComment removes a trailing `//` comment, honoring double-quoted
// string literals so a `//` inside a literal doesn't truncate content.
func stripComment(line string) string {
	inString := false
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '"':
			if i == 0 || runes[i-1] != '\\' {
				inString = !inString
			}
		case '/':
			if !inString && i+1 < len(runes) && runes[i+1] == '/' {
				return string(runes[:i])
			}
		}
	}
	return line
}

func classifyBlock(block []rawLine, errs *Errors) []logicalLine {
	var unit *indentUnit
	out := make([]logicalLine, 0, len(block))
	for _, rl := range block {
		if rl.blank {
			out = append(out, logicalLine{blank: true, lineNo: rl.lineNo, offset: rl.offset})
			continue
		}
		if rl.leadWidth == 0 {
			out = append(out, logicalLine{content: rl.content, indent: 0, lineNo: rl.lineNo, offset: rl.offset})
			continue
		}
		if unit == nil {
			u := indentUnit{tabs: rl.leadTabs, width: rl.leadWidth}
			unit = &u
		}
		depth, err := depthOf(rl, *unit)
		if err != nil {
			*errs = append(*errs, newError(ErrInvalidIndentation, span.Span{Line: rl.lineNo, Col: 1}, "%s", err.Error()))
			depth = 1
		}
		out = append(out, logicalLine{content: rl.content, indent: depth, lineNo: rl.lineNo, offset: rl.offset})
	}
	return out
}

func depthOf(rl rawLine, unit indentUnit) (int, error) {
	if unit.tabs != rl.leadTabs {
		return 1, errMixedIndent
	}
	if unit.tabs {
		return rl.leadWidth, nil
	}
	if unit.width == 0 || rl.leadWidth%unit.width != 0 {
		return 1, errUnevenIndent
	}
	return rl.leadWidth / unit.width, nil
}

var errMixedIndent = errIndent("mixed tabs and spaces within one list")
var errUnevenIndent = errIndent("indentation is not a multiple of the list's indent unit")

type indentErr string

func (e indentErr) Error() string { return string(e) }
func errIndent(msg string) error  { return indentErr(msg) }
