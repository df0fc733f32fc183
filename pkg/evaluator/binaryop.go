package evaluator

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"its-hmny.dev/perchance/pkg/ast"
	"its-hmny.dev/perchance/pkg/span"
)

// evalBinaryOp evaluates the infix operators usable inside `[...]`.
// Comparisons try numeric comparison first (via spf13/cast, which is
// already pulled in for weight/count coercion) and fall back to string
// comparison for anything that doesn't parse as a number. && and ||
// short-circuit: the right operand is only evaluated when it can affect
// the result.
func (e *Evaluator) evalBinaryOp(ctx context.Context, x ast.Expression, sp span.Span) (Value, error) {
	if x.Operator == ast.OpAnd || x.Operator == ast.OpOr {
		leftStr, err := e.evalExprString(ctx, x.Left)
		if err != nil {
			return Value{}, err
		}
		left := isTruthy(leftStr)
		if x.Operator == ast.OpAnd && !left {
			return boolValue(false), nil
		}
		if x.Operator == ast.OpOr && left {
			return boolValue(true), nil
		}
		rightStr, err := e.evalExprString(ctx, x.Right)
		if err != nil {
			return Value{}, err
		}
		return boolValue(isTruthy(rightStr)), nil
	}

	leftStr, err := e.evalExprString(ctx, x.Left)
	if err != nil {
		return Value{}, err
	}
	rightStr, err := e.evalExprString(ctx, x.Right)
	if err != nil {
		return Value{}, err
	}

	switch x.Operator {
	case ast.OpEqual:
		return boolValue(leftStr == rightStr), nil
	case ast.OpNotEqual:
		return boolValue(leftStr != rightStr), nil
	case ast.OpLessThan, ast.OpGreaterThan, ast.OpLessEqual, ast.OpGreaterEqual:
		lf, lerr := cast.ToFloat64E(strings.TrimSpace(leftStr))
		rf, rerr := cast.ToFloat64E(strings.TrimSpace(rightStr))
		if lerr == nil && rerr == nil {
			return boolValue(compareFloat(x.Operator, lf, rf)), nil
		}
		return boolValue(compareString(x.Operator, leftStr, rightStr)), nil
	case ast.OpAdd:
		lf, lerr := cast.ToFloat64E(strings.TrimSpace(leftStr))
		rf, rerr := cast.ToFloat64E(strings.TrimSpace(rightStr))
		if lerr == nil && rerr == nil {
			return Value{Kind: ValText, Text: formatNumber(lf + rf)}, nil
		}
		return Value{Kind: ValText, Text: leftStr + rightStr}, nil
	case ast.OpSubtract, ast.OpMultiply, ast.OpDivide, ast.OpModulo:
		lf, lerr := cast.ToFloat64E(strings.TrimSpace(leftStr))
		rf, rerr := cast.ToFloat64E(strings.TrimSpace(rightStr))
		if lerr != nil || rerr != nil {
			return Value{}, newError(ErrTypeError, sp, "operator %q requires numeric operands, got %q and %q", x.Operator, leftStr, rightStr)
		}
		switch x.Operator {
		case ast.OpSubtract:
			return Value{Kind: ValText, Text: formatNumber(lf - rf)}, nil
		case ast.OpMultiply:
			return Value{Kind: ValText, Text: formatNumber(lf * rf)}, nil
		case ast.OpDivide:
			if rf == 0 {
				return Value{}, newError(ErrDivideByZero, sp, "division by zero")
			}
			return Value{Kind: ValText, Text: formatNumber(lf / rf)}, nil
		case ast.OpModulo:
			if rf == 0 {
				return Value{}, newError(ErrDivideByZero, sp, "modulo by zero")
			}
			li, ri := int64(lf), int64(rf)
			return Value{Kind: ValText, Text: strconv.FormatInt(li%ri, 10)}, nil
		}
	}
	return Value{}, newError(ErrTypeError, sp, "unhandled operator %q", x.Operator)
}

func boolValue(b bool) Value {
	if b {
		return Value{Kind: ValText, Text: "true"}
	}
	return Value{Kind: ValText, Text: "false"}
}

func compareFloat(op ast.BinaryOperator, l, r float64) bool {
	switch op {
	case ast.OpLessThan:
		return l < r
	case ast.OpGreaterThan:
		return l > r
	case ast.OpLessEqual:
		return l <= r
	case ast.OpGreaterEqual:
		return l >= r
	}
	return false
}

func compareString(op ast.BinaryOperator, l, r string) bool {
	switch op {
	case ast.OpLessThan:
		return l < r
	case ast.OpGreaterThan:
		return l > r
	case ast.OpLessEqual:
		return l <= r
	case ast.OpGreaterEqual:
		return l >= r
	}
	return false
}
