package evaluator

import (
	"context"

	"github.com/spf13/cast"

	"its-hmny.dev/perchance/pkg/ast"
)

// computeWeights resolves n weights (nil entries default to 1.0, dynamic
// entries evaluate an expression and coerce "true"/"false"/numeric text to
// a float). If every resolved weight is zero or negative, it falls back to
// a uniform distribution rather than dividing by zero, mirroring how the
// original interpreter treats an all-zero-weight list as "pick any of
// them" instead of "pick nothing".
func (e *Evaluator) computeWeights(ctx context.Context, weights []*ast.ItemWeight, n int) ([]float64, error) {
	out := make([]float64, n)
	total := 0.0
	for i := 0; i < n; i++ {
		w := 1.0
		if weights[i] != nil {
			switch weights[i].Kind {
			case ast.WeightStatic:
				w = weights[i].Static
			case ast.WeightDynamic:
				val, err := e.evalExprValue(ctx, weights[i].Dynamic)
				if err != nil {
					return nil, err
				}
				s, err := e.coerceToString(ctx, val)
				if err != nil {
					return nil, err
				}
				switch s {
				case "true":
					w = 1.0
				case "false", "":
					w = 0.0
				default:
					if f, cerr := cast.ToFloat64E(s); cerr == nil {
						w = f
					} else {
						w = 0.0
					}
				}
			}
		}
		if w < 0 {
			w = 0
		}
		out[i] = w
		total += w
	}
	if total <= 0 {
		for i := range out {
			out[i] = 1.0
		}
	}
	return out, nil
}

// drawIndex performs a cumulative-sum weighted draw. Floating point error
// can leave the random draw just past the last cumulative boundary, so the
// final index is always returned as a fallback rather than falling off the
// end of the loop.
func drawIndex(rng interface{ Float64() float64 }, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	cum := 0.0
	for i, w := range weights {
		cum += w
		if r < cum {
			return i
		}
	}
	return len(weights) - 1
}
