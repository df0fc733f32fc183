package parser

import (
	"strconv"

	"its-hmny.dev/perchance/pkg/ast"
	"its-hmny.dev/perchance/pkg/span"
)

// parseExpression is the entrypoint for everything inside a `[...]`
// reference (and for `^[...]` dynamic weights): a comma-separated sequence
// of statements with an optional trailing result expression.
func parseExpression(lx *lineLexer) (span.Spanned[ast.Expression], error) {
	first, err := parseTernary(lx)
	if err != nil {
		return first, err
	}
	lx.skipSpaces()
	if lx.peek() != ',' {
		return first, nil
	}

	all := []span.Spanned[ast.Expression]{first}
	trailing := false
	for lx.peek() == ',' {
		lx.advance()
		lx.skipSpaces()
		if lx.eof() || lx.peek() == ']' {
			trailing = true
			break
		}
		next, err := parseTernary(lx)
		if err != nil {
			return next, err
		}
		all = append(all, next)
		lx.skipSpaces()
	}

	sp := all[0].Span
	for _, e := range all {
		sp = sp.Join(e.Span)
	}
	seq := ast.Expression{Kind: ast.ExprSequence}
	if trailing {
		seq.Statements = all
	} else {
		seq.Statements = all[:len(all)-1]
		result := all[len(all)-1]
		seq.Result = &result
	}
	return span.New(seq, sp), nil
}

func parseTernary(lx *lineLexer) (span.Spanned[ast.Expression], error) {
	cond, err := parseOr(lx)
	if err != nil {
		return cond, err
	}
	lx.skipSpaces()
	if lx.peek() != '?' {
		return cond, nil
	}
	lx.advance()
	thenExpr, err := parseTernary(lx)
	if err != nil {
		return thenExpr, err
	}
	lx.skipSpaces()
	if lx.peek() != ':' {
		return thenExpr, newError(ErrUnexpectedChar, lx.spanFrom(lx.pos), "expected ':' in conditional expression")
	}
	lx.advance()
	elseExpr, err := parseTernary(lx)
	if err != nil {
		return elseExpr, err
	}
	sp := cond.Span.Join(thenExpr.Span).Join(elseExpr.Span)
	return span.New(ast.Expression{Kind: ast.ExprConditional, Condition: &cond, Then: &thenExpr, Else: &elseExpr}, sp), nil
}

func parseOr(lx *lineLexer) (span.Spanned[ast.Expression], error) {
	left, err := parseAnd(lx)
	if err != nil {
		return left, err
	}
	for {
		lx.skipSpaces()
		if lx.peek() != '|' || lx.peekAt(1) != '|' {
			return left, nil
		}
		lx.advance()
		lx.advance()
		right, err := parseAnd(lx)
		if err != nil {
			return right, err
		}
		sp := left.Span.Join(right.Span)
		if left.Value.Kind == ast.ExprProperty {
			left = span.New(ast.Expression{
				Kind: ast.ExprPropertyWithFallback, Base: left.Value.Base,
				Property: left.Value.Property, Fallback: &right,
			}, sp)
			continue
		}
		prev := left
		left = span.New(ast.Expression{Kind: ast.ExprBinaryOp, Operator: ast.OpOr, Left: &prev, Right: &right}, sp)
	}
}

func parseAnd(lx *lineLexer) (span.Spanned[ast.Expression], error) {
	left, err := parseComparison(lx)
	if err != nil {
		return left, err
	}
	for {
		lx.skipSpaces()
		if lx.peek() != '&' || lx.peekAt(1) != '&' {
			return left, nil
		}
		lx.advance()
		lx.advance()
		right, err := parseComparison(lx)
		if err != nil {
			return right, err
		}
		sp := left.Span.Join(right.Span)
		prev := left
		left = span.New(ast.Expression{Kind: ast.ExprBinaryOp, Operator: ast.OpAnd, Left: &prev, Right: &right}, sp)
	}
}

var twoCharCompare = map[string]ast.BinaryOperator{
	"==": ast.OpEqual, "!=": ast.OpNotEqual, "<=": ast.OpLessEqual, ">=": ast.OpGreaterEqual,
}

func parseComparison(lx *lineLexer) (span.Spanned[ast.Expression], error) {
	left, err := parseAdditive(lx)
	if err != nil {
		return left, err
	}
	for {
		lx.skipSpaces()
		two := string([]rune{lx.peek(), lx.peekAt(1)})
		if op, ok := twoCharCompare[two]; ok {
			lx.advance()
			lx.advance()
			right, err := parseAdditive(lx)
			if err != nil {
				return right, err
			}
			sp := left.Span.Join(right.Span)
			prev := left
			left = span.New(ast.Expression{Kind: ast.ExprBinaryOp, Operator: op, Left: &prev, Right: &right}, sp)
			continue
		}
		if lx.peek() == '<' || lx.peek() == '>' {
			op := ast.OpLessThan
			if lx.peek() == '>' {
				op = ast.OpGreaterThan
			}
			lx.advance()
			right, err := parseAdditive(lx)
			if err != nil {
				return right, err
			}
			sp := left.Span.Join(right.Span)
			prev := left
			left = span.New(ast.Expression{Kind: ast.ExprBinaryOp, Operator: op, Left: &prev, Right: &right}, sp)
			continue
		}
		return left, nil
	}
}

func parseAdditive(lx *lineLexer) (span.Spanned[ast.Expression], error) {
	left, err := parseMultiplicative(lx)
	if err != nil {
		return left, err
	}
	for {
		lx.skipSpaces()
		var op ast.BinaryOperator
		switch lx.peek() {
		case '+':
			op = ast.OpAdd
		case '-':
			op = ast.OpSubtract
		default:
			return left, nil
		}
		lx.advance()
		right, err := parseMultiplicative(lx)
		if err != nil {
			return right, err
		}
		sp := left.Span.Join(right.Span)
		prev := left
		left = span.New(ast.Expression{Kind: ast.ExprBinaryOp, Operator: op, Left: &prev, Right: &right}, sp)
	}
}

func parseMultiplicative(lx *lineLexer) (span.Spanned[ast.Expression], error) {
	left, err := parseUnary(lx)
	if err != nil {
		return left, err
	}
	for {
		lx.skipSpaces()
		var op ast.BinaryOperator
		switch lx.peek() {
		case '*':
			op = ast.OpMultiply
		case '/':
			op = ast.OpDivide
		case '%':
			op = ast.OpModulo
		default:
			return left, nil
		}
		lx.advance()
		right, err := parseUnary(lx)
		if err != nil {
			return right, err
		}
		sp := left.Span.Join(right.Span)
		prev := left
		left = span.New(ast.Expression{Kind: ast.ExprBinaryOp, Operator: op, Left: &prev, Right: &right}, sp)
	}
}

func parseUnary(lx *lineLexer) (span.Spanned[ast.Expression], error) {
	return parseSingleAndPostfix(lx)
}

func parseSingleAndPostfix(lx *lineLexer) (span.Spanned[ast.Expression], error) {
	base, err := parseSingle(lx)
	if err != nil {
		return base, err
	}
	return parsePostfix(lx, base)
}

func parseSingle(lx *lineLexer) (span.Spanned[ast.Expression], error) {
	lx.skipSpaces()
	start := lx.pos
	if lx.eof() {
		return span.Spanned[ast.Expression]{}, newError(ErrUnexpectedEOF, lx.spanFrom(start), "expected expression")
	}

	switch lx.peek() {
	case '"':
		return parseStringLiteral(lx)
	case '(':
		lx.advance()
		inner, err := parseExpression(lx)
		if err != nil {
			return inner, err
		}
		lx.skipSpaces()
		if lx.peek() == ')' {
			lx.advance()
		}
		return inner, nil
	}

	if isDigit(lx.peek()) || (lx.peek() == '-' && isDigit(lx.peekAt(1))) {
		return parseNumberLiteral(lx)
	}

	if isIdentStart(lx.peek()) {
		word := readWord(lx)
		switch word {
		case "if":
			return parseIfElse(lx, start)
		case "repeat":
			return parseRepeat(lx, start)
		default:
			sp := lx.spanFromRange(start, lx.pos)
			ident := span.New(ast.Identifier{Name: word}, sp)
			lx.skipSpaces()
			if lx.peek() == '(' {
				args, err := parseArgList(lx)
				if err != nil {
					return span.Spanned[ast.Expression]{}, err
				}
				callSp := lx.spanFromRange(start, lx.pos)
				method := span.New(ast.MethodCall{Name: word, Args: args}, callSp)
				return span.New(ast.Expression{Kind: ast.ExprCall, Method: &method}, callSp), nil
			}
			if lx.peek() == '=' && lx.peekAt(1) != '=' {
				lx.advance()
				rhs, err := parseTernary(lx)
				if err != nil {
					return rhs, err
				}
				fullSp := sp.Join(rhs.Span)
				return span.New(ast.Expression{Kind: ast.ExprAssignment, Target: &ident, Value: &rhs}, fullSp), nil
			}
			return span.New(ast.Expression{Kind: ast.ExprSimple, Identifier: &ident}, sp), nil
		}
	}

	return span.Spanned[ast.Expression]{}, newError(ErrUnexpectedChar, lx.spanFrom(start), "unexpected character %q", string(lx.peek()))
}

// parsePostfix handles `.property`, `.method(args)`, `[dynamic]` and
// `this.property = value` chained off an already-parsed base expression.
func parsePostfix(lx *lineLexer, base span.Spanned[ast.Expression]) (span.Spanned[ast.Expression], error) {
	for {
		switch lx.peek() {
		case '.':
			lx.advance()
			nameStart := lx.pos
			word := readWord(lx)
			propSp := lx.spanFromRange(nameStart, lx.pos)
			ident := span.New(ast.Identifier{Name: word}, propSp)

			lx.skipSpaces()
			if lx.peek() == '(' {
				args, err := parseArgList(lx)
				if err != nil {
					return base, err
				}
				method := span.New(ast.MethodCall{Name: word, Args: args}, propSp)
				sp := base.Span.Join(propSp)
				prev := base
				base = span.New(ast.Expression{Kind: ast.ExprMethod, Base: &prev, Method: &method}, sp)
				continue
			}
			lx.skipSpaces()
			if lx.peek() == '=' && lx.peekAt(1) != '=' {
				lx.advance()
				rhs, err := parseTernary(lx)
				if err != nil {
					return rhs, err
				}
				sp := base.Span.Join(rhs.Span)
				prev := base
				base = span.New(ast.Expression{Kind: ast.ExprPropertyAssignment, Base: &prev, Property: &ident, Value: &rhs}, sp)
				continue
			}
			sp := base.Span.Join(propSp)
			prev := base
			base = span.New(ast.Expression{Kind: ast.ExprProperty, Base: &prev, Property: &ident}, sp)
		case '[':
			lx.advance()
			idx, err := parseExpression(lx)
			if err != nil {
				return base, err
			}
			if lx.peek() == ']' {
				lx.advance()
			}
			sp := base.Span.Join(idx.Span)
			prev := base
			base = span.New(ast.Expression{Kind: ast.ExprDynamic, Base: &prev, Index: &idx}, sp)
		default:
			return base, nil
		}
	}
}

func parseArgList(lx *lineLexer) ([]span.Spanned[ast.Expression], error) {
	lx.advance() // consume '('
	lx.skipSpaces()
	var args []span.Spanned[ast.Expression]
	if lx.peek() == ')' {
		lx.advance()
		return args, nil
	}
	for {
		arg, err := parseTernary(lx)
		if err != nil {
			return args, err
		}
		args = append(args, arg)
		lx.skipSpaces()
		if lx.peek() == ',' {
			lx.advance()
			lx.skipSpaces()
			continue
		}
		break
	}
	if lx.peek() == ')' {
		lx.advance()
	}
	return args, nil
}

func parseIfElse(lx *lineLexer, start int) (span.Spanned[ast.Expression], error) {
	lx.skipSpaces()
	if lx.peek() == '(' {
		lx.advance()
	}
	cond, err := parseTernary(lx)
	if err != nil {
		return cond, err
	}
	lx.skipSpaces()
	if lx.peek() == ')' {
		lx.advance()
	}
	lx.skipSpaces()
	if lx.peek() == '{' {
		lx.advance()
	}
	thenExpr, err := parseExpression(lx)
	if err != nil {
		return thenExpr, err
	}
	lx.skipSpaces()
	if lx.peek() == '}' {
		lx.advance()
	}

	var elsePtr *span.Spanned[ast.Expression]
	save := lx.pos
	lx.skipSpaces()
	if isIdentStart(lx.peek()) {
		wordStart := lx.pos
		word := readWord(lx)
		if word == "else" {
			lx.skipSpaces()
			if isIdentStart(lx.peek()) {
				peekStart := lx.pos
				peekWord := readWord(lx)
				if peekWord == "if" {
					elseExpr, err := parseIfElse(lx, peekStart)
					if err != nil {
						return elseExpr, err
					}
					elsePtr = &elseExpr
				} else {
					lx.pos = peekStart
				}
			}
			if elsePtr == nil {
				lx.skipSpaces()
				if lx.peek() == '{' {
					lx.advance()
				}
				elseExpr, err := parseExpression(lx)
				if err != nil {
					return elseExpr, err
				}
				lx.skipSpaces()
				if lx.peek() == '}' {
					lx.advance()
				}
				elsePtr = &elseExpr
			}
		} else {
			lx.pos = wordStart
		}
	} else {
		lx.pos = save
	}

	sp := lx.spanFromRange(start, lx.pos)
	return span.New(ast.Expression{Kind: ast.ExprIfElse, Condition: &cond, Then: &thenExpr, Else: elsePtr}, sp), nil
}

func parseRepeat(lx *lineLexer, start int) (span.Spanned[ast.Expression], error) {
	lx.skipSpaces()
	if lx.peek() == '(' {
		lx.advance()
	}
	count, err := parseTernary(lx)
	if err != nil {
		return count, err
	}
	lx.skipSpaces()
	if lx.peek() == ')' {
		lx.advance()
	}
	lx.skipSpaces()
	if lx.peek() == '{' {
		lx.advance()
	}
	body, err := parseExpression(lx)
	if err != nil {
		return body, err
	}
	lx.skipSpaces()
	if lx.peek() == '}' {
		lx.advance()
	}
	sp := lx.spanFromRange(start, lx.pos)
	return span.New(ast.Expression{Kind: ast.ExprRepeat, Count: &count, Body: &body}, sp), nil
}

func parseStringLiteral(lx *lineLexer) (span.Spanned[ast.Expression], error) {
	start := lx.pos
	lx.advance() // opening quote
	var buf []rune
	for {
		if lx.eof() {
			return span.Spanned[ast.Expression]{}, newError(ErrUnterminatedString, lx.spanFrom(start), "unterminated string literal")
		}
		r := lx.advance()
		if r == '"' {
			break
		}
		if r == '\\' && !lx.eof() {
			esc, _ := resolveEscape(lx.advance())
			buf = append(buf, esc)
			continue
		}
		buf = append(buf, r)
	}
	sp := lx.spanFrom(start)
	return span.New(ast.Expression{Kind: ast.ExprLiteral, Literal: string(buf)}, sp), nil
}

func parseNumberLiteral(lx *lineLexer) (span.Spanned[ast.Expression], error) {
	start := lx.pos
	if lx.peek() == '-' {
		lx.advance()
	}
	for !lx.eof() && isDigit(lx.peek()) {
		lx.advance()
	}
	if !lx.eof() && lx.peek() == '.' && isDigit(lx.peekAt(1)) {
		lx.advance()
		for !lx.eof() && isDigit(lx.peek()) {
			lx.advance()
		}
	}
	text := string(lx.runes[start:lx.pos])
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return span.Spanned[ast.Expression]{}, newError(ErrUnexpectedChar, lx.spanFrom(start), "invalid number literal %q", text)
	}
	sp := lx.spanFrom(start)
	return span.New(ast.Expression{Kind: ast.ExprNumber, Number: n}, sp), nil
}

func readWord(lx *lineLexer) string {
	start := lx.pos
	for !lx.eof() && isIdentPart(lx.peek()) {
		lx.advance()
	}
	return string(lx.runes[start:lx.pos])
}

func isDigit(r rune) bool      { return r >= '0' && r <= '9' }
func isIdentStart(r rune) bool { return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }
func isIdentPart(r rune) bool  { return isIdentStart(r) || isDigit(r) }
