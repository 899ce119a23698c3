// RunModel driver (spec §2 step 7, §6): composes the timeline, reference
// map, dependency graph, scheduler, cluster evaluator and module templates
// into the result bundle.

package engine

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/google/uuid"
)

// Node is one entry of the published sortedNodeMeta list (spec §6.2).
type Node struct {
	ID           string `json:"id"`
	Kind         string `json:"kind"` // "calc" or "module"
	ClusterIndex int    `json:"clusterIndex"` // -1 if not clustered
}

// ClusterDebugInfo reports one cluster's membership and chosen ordering.
type ClusterDebugInfo struct {
	Members       []string `json:"members"`
	InternalOrder []string `json:"internalOrder"`
	Trigger       string   `json:"trigger"`
}

// RunResult is the `run_model` output bundle (spec §6.2).
type RunResult struct {
	RunID              string              `json:"runId"`
	CalculationResults map[string][]float64 `json:"calculationResults"`
	ModuleOutputs      map[string][]float64 `json:"moduleOutputs"`
	Timeline           Timeline             `json:"timeline"`
	ReferenceMap       map[string][]float64 `json:"referenceMap"`
	SortedNodeMeta     []Node               `json:"sortedNodeMeta"`
	ClusterDebug       []ClusterDebugInfo   `json:"clusterDebug"`
	EvalDebug          []string             `json:"evalDebug"`
}

var mRefTokenRe = regexp.MustCompile(`\bM\d+(?:\.\d+)*\b`)

// rewriteModuleRefs substitutes every M{m}.{o} token found in formula with
// its `_mRefMap` target R-ref (spec §4.4 "Converted modules are not
// nodes..."). The token regex is greedy over dotted groups, which already
// gives the longest match first and sidesteps prefix collisions between
// e.g. "M3.1" and "M3.10".
func rewriteModuleRefs(formula string, mRefMap map[string]string) string {
	if len(mRefMap) == 0 {
		return formula
	}
	return mRefTokenRe.ReplaceAllStringFunc(formula, func(tok string) string {
		if repl, ok := mRefMap[tok]; ok {
			return repl
		}
		return tok
	})
}

// RunModel implements the engine's single entry point (spec §1, §2).
func RunModel(inputs ModelInputs, calcBundle CalculationsBundle, cfg EngineConfig) (RunResult, error) {
	tl, err := BuildTimeline(inputs.Config)
	if err != nil {
		return RunResult{}, err
	}

	resetUnresolvedRefTracking()
	ctx := BuildReferenceMap(inputs, tl)

	calcs := make([]Calculation, len(calcBundle.Calculations))
	for i, c := range calcBundle.Calculations {
		c.Formula = rewriteModuleRefs(c.Formula, calcBundle.MRefMap)
		calcs[i] = c
	}

	cache := NewExprCache(cfg.ExpressionCacheSize)
	graph, graphErrs := BuildGraph(calcs, calcBundle.Modules, cache)

	var evalDebug []string
	for _, e := range graphErrs {
		evalDebug = append(evalDebug, e.Error())
	}

	modulesByID := map[string]Module{}
	for _, m := range calcBundle.Modules {
		if !m.Converted {
			modulesByID[m.RefPrefix()] = m
		}
	}

	// reverse _mRefMap: R-ref -> list of M{m}.{o} aliases to also publish.
	aliasesOf := map[string][]string{}
	for mref, rref := range calcBundle.MRefMap {
		aliasesOf[rref] = append(aliasesOf[rref], mref)
	}

	calculationResults := map[string][]float64{}
	moduleOutputs := map[string][]float64{}
	clusterEvaluated := make([]bool, len(graph.Clusters))

	publish := func(id string, vec []float64) {
		ctx[id] = vec
		calculationResults[id] = vec
		for _, alias := range aliasesOf[id] {
			ctx[alias] = vec
			moduleOutputs[alias] = vec
		}
	}

	processOrder := append(append([]string{}, graph.TopoOrder...), graph.Residual...)
	for _, id := range processOrder {
		if ci, ok := graph.ClusterOf[id]; ok {
			if clusterEvaluated[ci] {
				continue
			}
			if id != graph.Trigger[ci] {
				continue
			}
			members := graph.InternalOrder[ci]
			EvaluateCluster(members, graph.Asts, ctx, tl)
			clusterEvaluated[ci] = true
			for _, m := range members {
				publish(m, ctx[m])
			}
			continue
		}

		if id[0] == 'R' {
			evalNodeID = id
			expr := graph.Asts[id]
			vec := materialize(expr, ctx, tl)
			for i := range vec {
				vec[i] = finite(vec[i])
			}
			publish(id, vec)
			continue
		}

		// unconverted module node
		evalNodeID = id
		m := modulesByID[id]
		if m.TemplateID == TemplateDebtSizing {
			// cfg supplies the solver's tolerance and iteration bound
			// wherever the module does not set its own.
			in := make(map[string]ParamValue, len(m.Inputs)+2)
			for k, v := range m.Inputs {
				in[k] = v
			}
			if _, ok := in["tolerance"]; !ok {
				in["tolerance"] = ParamValue{Kind: ParamNumber, Num: cfg.DebtSizingTolerance}
			}
			if _, ok := in["maxIterations"]; !ok {
				in["maxIterations"] = ParamValue{Kind: ParamNumber, Num: float64(cfg.DebtSizingMaxIterations)}
			}
			m.Inputs = in
		}
		_, outVecs := EvaluateModule(m, ctx, tl)
		for k, vec := range outVecs {
			ref := id + "." + strconv.Itoa(k+1)
			ctx[ref] = vec
			moduleOutputs[ref] = vec
		}
	}

	for _, e := range unresolvedRefErrors {
		evalDebug = append(evalDebug, e.Error())
	}

	var sortedNodeMeta []Node
	for _, id := range processOrder {
		ci := -1
		if c, ok := graph.ClusterOf[id]; ok {
			ci = c
		}
		kind := "calc"
		if id[0] == 'M' {
			kind = "module"
		}
		sortedNodeMeta = append(sortedNodeMeta, Node{ID: id, Kind: kind, ClusterIndex: ci})
	}

	var clusterDebug []ClusterDebugInfo
	for ci, members := range graph.Clusters {
		clusterDebug = append(clusterDebug, ClusterDebugInfo{
			Members:       members,
			InternalOrder: graph.InternalOrder[ci],
			Trigger:       graph.Trigger[ci],
		})
	}
	sort.Slice(clusterDebug, func(i, j int) bool {
		return clusterDebug[i].Trigger < clusterDebug[j].Trigger
	})

	return RunResult{
		RunID:              uuid.New().String(),
		CalculationResults: calculationResults,
		ModuleOutputs:      moduleOutputs,
		Timeline:           tl,
		ReferenceMap:       ctx,
		SortedNodeMeta:     sortedNodeMeta,
		ClusterDebug:       clusterDebug,
		EvalDebug:          evalDebug,
	}, nil
}
