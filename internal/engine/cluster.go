// Period-by-period cluster evaluator. A cluster is a set of calculations
// whose mutual dependency exists only through SHIFT/PREVSUM/PREVVAL; they
// are evaluated one period at a time, in the cluster's internal order, with
// accumulator state advancing in lockstep.

package engine

import "math"

// phState is the per-call-site accumulator/cache for one array-builtin
// occurrence inside a cluster member's formula.
type phState struct {
	kind       string
	inner      *Expr
	offsetN    int
	windowW    int
	acc        float64
	lastPeriod int
	computed   bool
	cachedNum  float64
	cachedVec  []float64
}

// clusterState holds every placeholder's state for one cluster evaluation
// pass, keyed by the *Expr pointer of its call site so that distinct
// occurrences of the "same" call in different members track independent
// accumulators.
type clusterState struct {
	placeholders map[*Expr]*phState
}

func newClusterState() *clusterState {
	return &clusterState{placeholders: map[*Expr]*phState{}}
}

// registerPlaceholders walks expr and creates accumulator/cache state for
// every array-builtin call site found anywhere in the tree. seedCtx is the
// context as it stands before the period loop starts (reference-map
// entries plus every node evaluated before this cluster) — used to
// statically resolve SHIFT's offset and FWDSUM's
// window width, both fixed per call site rather than varying by period.
func (cs *clusterState) registerPlaceholders(expr *Expr, seedCtx map[string][]float64, tl Timeline) {
	if expr == nil {
		return
	}
	switch expr.Kind {
	case exprUnaryMinus:
		cs.registerPlaceholders(expr.Operand, seedCtx, tl)
	case exprBinary:
		cs.registerPlaceholders(expr.Left, seedCtx, tl)
		cs.registerPlaceholders(expr.Right, seedCtx, tl)
	case exprCall:
		if IsArrayBuiltin(expr.Func) {
			ph := &phState{kind: expr.Func, lastPeriod: -1}
			if len(expr.Args) > 0 {
				ph.inner = expr.Args[0]
			}
			switch expr.Func {
			case "CUMPROD", "CUMPROD_Y":
				ph.acc = 1
			}
			if expr.Func == "SHIFT" && len(expr.Args) > 1 {
				ph.offsetN = int(math.Round(scalarLiteralOrFirst(expr.Args, 1, seedCtx, tl)))
			}
			if expr.Func == "FWDSUM" {
				ph.windowW = resolveFwdSumWindowArg(expr.Args, seedCtx, tl)
			}
			cs.placeholders[expr] = ph
		}
		for _, a := range expr.Args {
			cs.registerPlaceholders(a, seedCtx, tl)
		}
	}
}

// evalAtPeriod evaluates expr at a single period j against the current
// context, routing any array-builtin call site through its placeholder
// state instead of materializing a whole vector.
func evalAtPeriod(expr *Expr, ctx map[string][]float64, j int, cs *clusterState, tl Timeline) float64 {
	if expr == nil || j < 0 {
		return 0
	}
	switch expr.Kind {
	case exprNumber:
		return expr.Num
	case exprRef:
		return lookupRef(ctx, expr.Ref, j)
	case exprUnaryMinus:
		return -evalAtPeriod(expr.Operand, ctx, j, cs, tl)
	case exprBinary:
		l := evalAtPeriod(expr.Left, ctx, j, cs, tl)
		r := evalAtPeriod(expr.Right, ctx, j, cs, tl)
		return scalarBinaryOp(expr.Op, l, r)
	case exprCall:
		if ph, ok := cs.placeholders[expr]; ok {
			return placeholderValueAt(ph, ctx, j, cs, tl)
		}
		args := make([]float64, len(expr.Args))
		for i, a := range expr.Args {
			args[i] = evalAtPeriod(a, ctx, j, cs, tl)
		}
		return finite(scalarCall(expr.Func, args))
	default:
		return 0
	}
}

func placeholderValueAt(ph *phState, ctx map[string][]float64, j int, cs *clusterState, tl Timeline) float64 {
	switch ph.kind {
	case "SHIFT":
		src := j - ph.offsetN
		if src < 0 {
			return 0
		}
		return evalAtPeriod(ph.inner, ctx, src, cs, tl)
	case "PREVVAL":
		if j == 0 {
			return 0
		}
		return evalAtPeriod(ph.inner, ctx, j-1, cs, tl)
	case "PREVSUM":
		// value is the accumulator as it stands before period j's
		// contribution is folded in; advancement happens in
		// advancePrevSum once the whole period has been evaluated.
		return ph.acc
	case "CUMSUM":
		if ph.lastPeriod != j {
			ph.acc += evalAtPeriod(ph.inner, ctx, j, cs, tl)
			ph.lastPeriod = j
		}
		return ph.acc
	case "CUMPROD":
		if ph.lastPeriod != j {
			ph.acc *= evalAtPeriod(ph.inner, ctx, j, cs, tl)
			ph.lastPeriod = j
		}
		return ph.acc
	case "COUNT":
		if ph.lastPeriod != j {
			if evalAtPeriod(ph.inner, ctx, j, cs, tl) != 0 {
				ph.acc++
			}
			ph.lastPeriod = j
		}
		return ph.acc
	case "CUMSUM_Y":
		if ph.lastPeriod != j {
			if j > 0 && tl.Year[j] != tl.Year[j-1] {
				ph.acc += evalAtPeriod(ph.inner, ctx, j-1, cs, tl)
			}
			ph.lastPeriod = j
		}
		return ph.acc
	case "CUMPROD_Y":
		if ph.lastPeriod != j {
			if j > 0 && tl.Year[j] != tl.Year[j-1] {
				ph.acc *= evalAtPeriod(ph.inner, ctx, j-1, cs, tl)
			}
			ph.lastPeriod = j
		}
		return ph.acc
	case "MAXVAL":
		if !ph.computed {
			vec := make([]float64, tl.Periods)
			for i := 0; i < tl.Periods; i++ {
				vec[i] = evalAtPeriod(ph.inner, ctx, i, cs, tl)
			}
			ph.cachedNum = MaxVal(vec)[0]
			ph.computed = true
		}
		return ph.cachedNum
	case "FWDSUM":
		if !ph.computed {
			vec := make([]float64, tl.Periods)
			for i := 0; i < tl.Periods; i++ {
				vec[i] = evalAtPeriod(ph.inner, ctx, i, cs, tl)
			}
			ph.cachedVec = FwdSum(vec, ph.windowW)
			ph.computed = true
		}
		if j < len(ph.cachedVec) {
			return ph.cachedVec[j]
		}
		return 0
	default:
		return 0
	}
}

// advancePrevSum folds period i's contribution into every PREVSUM
// accumulator, once all cluster members have been written for period i.
func (cs *clusterState) advancePrevSum(ctx map[string][]float64, i int, tl Timeline) {
	for expr, ph := range cs.placeholders {
		if ph.kind != "PREVSUM" || ph.lastPeriod == i {
			continue
		}
		ph.acc += evalAtPeriod(ph.inner, ctx, i, cs, tl)
		ph.lastPeriod = i
		_ = expr
	}
}

// EvaluateCluster runs the period-by-period pass for one cluster. asts maps
// node id -> parsed formula for every member. Results are written directly
// into ctx under each member's node id.
func EvaluateCluster(members []string, asts map[string]*Expr, ctx map[string][]float64, tl Timeline) {
	cs := newClusterState()
	for _, id := range members {
		cs.registerPlaceholders(asts[id], ctx, tl)
	}
	for _, id := range members {
		if _, ok := ctx[id]; !ok {
			ctx[id] = make([]float64, tl.Periods)
		}
	}
	for i := 0; i < tl.Periods; i++ {
		for _, id := range members {
			evalNodeID = id
			ctx[id][i] = finite(evalAtPeriod(asts[id], ctx, i, cs, tl))
		}
		cs.advancePrevSum(ctx, i, tl)
	}
}
