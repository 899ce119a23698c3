// Scalar expression evaluation and non-cluster array-builtin materialization.

package engine

import "math"

// finite collapses non-finite results to 0.
func finite(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

// evalNodeID is set by the driver to the id of the node currently being
// evaluated, so that lookupRef can attribute an unresolved reference to its
// referencing node. Single-run-at-a-time, same as EngineVerbosity.
var evalNodeID string

// unresolvedRefErrors accumulates one UnresolvedReferenceError per distinct
// (node, ref) pair seen while evaluating the current run. RunModel resets
// it at the start of a run and drains it into EvalDebug at the end.
var unresolvedRefErrors []*UnresolvedReferenceError
var unresolvedRefSeen map[string]bool

func resetUnresolvedRefTracking() {
	unresolvedRefErrors = nil
	unresolvedRefSeen = map[string]bool{}
}

func recordUnresolvedRef(name string) {
	key := evalNodeID + "|" + name
	if unresolvedRefSeen[key] {
		return
	}
	unresolvedRefSeen[key] = true
	unresolvedRefErrors = append(unresolvedRefErrors, &UnresolvedReferenceError{NodeID: evalNodeID, Ref: name})
}

// lookupRef resolves a reference at period i. A name with no entry in ctx
// is zero-filled and recorded via recordUnresolvedRef; an out-of-range
// index on an existing vector is zero-filled silently (that's ordinary
// lag/lead behavior at the edges of the timeline, not a missing reference).
func lookupRef(ctx map[string][]float64, name string, i int) float64 {
	v, ok := ctx[name]
	if !ok {
		recordUnresolvedRef(name)
		return 0
	}
	if i < 0 || i >= len(v) {
		return 0
	}
	return v[i]
}

func truthy(v float64) bool { return v != 0 }

func boolF(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func scalarBinaryOp(op string, a, b float64) float64 {
	switch op {
	case "+":
		return finite(a + b)
	case "-":
		return finite(a - b)
	case "*":
		return finite(a * b)
	case "/":
		if b == 0 {
			return 0
		}
		return finite(a / b)
	case "%":
		if b == 0 {
			return 0
		}
		return finite(math.Mod(a, b))
	case "^":
		return finite(math.Pow(a, b))
	case ">":
		return boolF(a > b)
	case "<":
		return boolF(a < b)
	case ">=":
		return boolF(a >= b)
	case "<=":
		return boolF(a <= b)
	case "=":
		return boolF(a == b)
	case "!=":
		return boolF(a != b)
	case "&":
		return boolF(truthy(a) && truthy(b))
	case "|":
		return boolF(truthy(a) || truthy(b))
	default:
		return 0
	}
}

func scalarCall(fn string, args []float64) float64 {
	arg := func(i int) float64 {
		if i < len(args) {
			return args[i]
		}
		return 0
	}
	switch fn {
	case "MIN":
		return math.Min(arg(0), arg(1))
	case "MAX":
		return math.Max(arg(0), arg(1))
	case "ABS":
		return math.Abs(arg(0))
	case "ROUND":
		n := int(math.Round(arg(1)))
		scale := math.Pow(10, float64(n))
		return finite(math.Round(arg(0)*scale) / scale)
	case "IF":
		if truthy(arg(0)) {
			return arg(1)
		}
		return arg(2)
	case "AND":
		return boolF(truthy(arg(0)) && truthy(arg(1)))
	case "OR":
		return boolF(truthy(arg(0)) || truthy(arg(1)))
	case "NOT":
		return boolF(!truthy(arg(0)))
	default:
		return 0
	}
}

// materialize evaluates expr into a full vector of length tl.Periods,
// recursing bottom-up so that every array builtin is computed once over
// the whole timeline before the surrounding scalar expression is applied
// (spec §4.2 non-cluster evaluation model).
func materialize(expr *Expr, ctx map[string][]float64, tl Timeline) []float64 {
	n := tl.Periods
	switch expr.Kind {
	case exprNumber:
		out := make([]float64, n)
		for i := range out {
			out[i] = expr.Num
		}
		return out
	case exprRef:
		out := make([]float64, n)
		for i := range out {
			out[i] = lookupRef(ctx, expr.Ref, i)
		}
		return out
	case exprUnaryMinus:
		in := materialize(expr.Operand, ctx, tl)
		out := make([]float64, n)
		for i := range out {
			out[i] = -in[i]
		}
		return out
	case exprBinary:
		l := materialize(expr.Left, ctx, tl)
		r := materialize(expr.Right, ctx, tl)
		out := make([]float64, n)
		for i := range out {
			out[i] = scalarBinaryOp(expr.Op, l[i], r[i])
		}
		return out
	case exprCall:
		if IsArrayBuiltin(expr.Func) {
			return materializeArrayBuiltin(expr, ctx, tl)
		}
		argVecs := make([][]float64, len(expr.Args))
		for i, a := range expr.Args {
			argVecs[i] = materialize(a, ctx, tl)
		}
		out := make([]float64, n)
		row := make([]float64, len(argVecs))
		for i := 0; i < n; i++ {
			for a := range argVecs {
				row[a] = argVecs[a][i]
			}
			out[i] = finite(scalarCall(expr.Func, row))
		}
		return out
	default:
		return make([]float64, n)
	}
}

func materializeArrayBuiltin(expr *Expr, ctx map[string][]float64, tl Timeline) []float64 {
	args := expr.Args
	x := func(idx int) []float64 {
		if idx < len(args) {
			return materialize(args[idx], ctx, tl)
		}
		return make([]float64, tl.Periods)
	}
	switch expr.Func {
	case "CUMSUM":
		return CumSum(x(0))
	case "CUMPROD":
		return CumProd(x(0))
	case "CUMSUM_Y":
		return CumSumY(x(0), tl.Year)
	case "CUMPROD_Y":
		return CumProdY(x(0), tl.Year)
	case "SHIFT":
		n := int(math.Round(scalarLiteralOrFirst(args, 1, ctx, tl)))
		return Shift(x(0), n)
	case "PREVSUM":
		return PrevSum(x(0))
	case "PREVVAL":
		return PrevVal(x(0))
	case "COUNT":
		return Count(x(0))
	case "MAXVAL":
		return MaxVal(x(0))
	case "FWDSUM":
		w := resolveFwdSumWindowArg(args, ctx, tl)
		return FwdSum(x(0), w)
	default:
		return make([]float64, tl.Periods)
	}
}

// scalarLiteralOrFirst evaluates args[idx] and returns its first-period
// value (SHIFT's offset argument is always a small integer literal or a
// reference to a constant vector; either way spec treats it as a scalar).
func scalarLiteralOrFirst(args []*Expr, idx int, ctx map[string][]float64, tl Timeline) float64 {
	if idx >= len(args) {
		return 0
	}
	v := materialize(args[idx], ctx, tl)
	if len(v) == 0 {
		return 0
	}
	return v[0]
}

// resolveFwdSumWindowArg implements spec §4.2/§9: FWDSUM's window may be a
// literal or a reference; fall back to first non-zero, then X[0], then 6.
func resolveFwdSumWindowArg(args []*Expr, ctx map[string][]float64, tl Timeline) int {
	if len(args) < 2 {
		return 6
	}
	winVec := materialize(args[1], ctx, tl)
	var xFirst []float64
	if len(args) > 0 {
		xFirst = materialize(args[0], ctx, tl)
	}
	return ResolveFwdSumWindow(winVec, xFirst)
}
