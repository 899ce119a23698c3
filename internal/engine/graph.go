// Dependency graph construction, SHIFT-cycle detection and clustering.

package engine

import (
	"regexp"
	"sort"
	"strings"
)

// refTokenRe matches every reference token a formula can contain: the
// V/S/C/T/I/F/L/R/M-prefixed calculation/module/input identifiers
// (optionally dotted into a subscript or field) and the T.* time constants.
var refTokenRe = regexp.MustCompile(`\b([VSCTIFLRM]\d+(?:\.\d+)*(?:\.(?:Start|End|M|Q|Y))?|T\.[A-Za-z]+)\b`)

// laggedFuncs are the calls whose contents are excluded from structural
// dependency-edge extraction.
var laggedFuncs = []string{"SHIFT", "PREVSUM", "PREVVAL"}

// nodeIDFromToken returns the graph node id for an R-ref or M-ref token, i.e. the
// token truncated to its leading prefix+digits (drops any .subscript).
func nodeIDFromToken(tok string) (string, bool) {
	if len(tok) == 0 {
		return "", false
	}
	prefix := tok[0]
	if prefix != 'R' && prefix != 'M' {
		return "", false
	}
	i := 1
	for i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
		i++
	}
	if i == 1 {
		return "", false
	}
	return tok[:i], true
}

// stripLaggedCalls removes every SHIFT(...)/PREVSUM(...)/PREVVAL(...)
// substring (paren-matched) from formula, so that the remainder can be
// tokenised for structural dependency edges.
func stripLaggedCalls(formula string) string {
	out := formula
	for {
		found := false
		for _, fn := range laggedFuncs {
			idx := findCallStart(out, fn)
			if idx < 0 {
				continue
			}
			openParen := idx + len(fn)
			end := matchParen(out, openParen)
			if end < 0 {
				continue
			}
			out = out[:idx] + " " + out[end+1:]
			found = true
		}
		if !found {
			break
		}
	}
	return out
}

// findCallStart finds the first occurrence of "fn(" at a word boundary.
func findCallStart(s, fn string) int {
	search := fn + "("
	start := 0
	for {
		idx := strings.Index(s[start:], search)
		if idx < 0 {
			return -1
		}
		pos := start + idx
		if pos == 0 || !isIdentChar(rune(s[pos-1])) {
			return pos
		}
		start = pos + 1
	}
}

func isIdentChar(c rune) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// matchParen returns the index of the ')' matching the '(' at openIdx.
func matchParen(s string, openIdx int) int {
	if openIdx >= len(s) || s[openIdx] != '(' {
		return -1
	}
	depth := 0
	for i := openIdx; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// extractNodeRefs returns the distinct graph node ids referenced in text.
func extractNodeRefs(text string) []string {
	matches := refTokenRe.FindAllString(text, -1)
	seen := map[string]bool{}
	var out []string
	for _, m := range matches {
		id, ok := nodeIDFromToken(m)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// shiftTargets walks expr collecting every R/M ref that appears anywhere
// inside a SHIFT/PREVSUM/PREVVAL call.
func shiftTargets(expr *Expr) map[string]bool {
	targets := map[string]bool{}
	var walk func(e *Expr, insideLag bool)
	walk = func(e *Expr, insideLag bool) {
		if e == nil {
			return
		}
		switch e.Kind {
		case exprRef:
			if insideLag {
				if id, ok := nodeIDFromToken(e.Ref); ok {
					targets[id] = true
				}
			}
		case exprUnaryMinus:
			walk(e.Operand, insideLag)
		case exprBinary:
			walk(e.Left, insideLag)
			walk(e.Right, insideLag)
		case exprCall:
			nowInside := insideLag || e.Func == "SHIFT" || e.Func == "PREVSUM" || e.Func == "PREVVAL"
			for _, a := range e.Args {
				walk(a, nowInside)
			}
		}
	}
	walk(expr, false)
	return targets
}

// Graph is the dependency graph plus the cluster structure derived from it.
type Graph struct {
	NodeIDs       []string
	Deps          map[string]map[string]bool // node -> set of node ids it depends on
	Clusters      [][]string                 // each cluster's members (unordered)
	ClusterOf     map[string]int             // node -> cluster index, -1 if none
	InternalOrder map[int][]string           // cluster index -> members in internal order
	Trigger       map[int]string             // cluster index -> trigger node id
	TopoOrder     []string                   // full scheduling order
	Residual      []string                   // true-cycle nodes appended at the end
	Asts          map[string]*Expr           // node id -> parsed formula (calc nodes only)
}

// BuildGraph constructs the dependency graph, detects SHIFT-mediated
// cycles, clusters them, and computes the scheduling order. cache may be
// nil (parses every formula directly).
func BuildGraph(calcs []Calculation, modules []Module, cache *ExprCache) (*Graph, []error) {
	var errs []error

	g := &Graph{
		Deps:      map[string]map[string]bool{},
		ClusterOf: map[string]int{},
		InternalOrder: map[int][]string{},
		Trigger:   map[int]string{},
	}

	nodeSet := map[string]bool{}
	for _, c := range calcs {
		nodeSet[c.RefName()] = true
	}
	unconvertedModules := map[string]Module{}
	for _, m := range modules {
		if !m.Converted {
			nodeSet[m.RefPrefix()] = true
			unconvertedModules[m.RefPrefix()] = m
		}
	}

	asts := map[string]*Expr{}
	for _, c := range calcs {
		id := c.RefName()
		g.NodeIDs = append(g.NodeIDs, id)
		g.Deps[id] = map[string]bool{}
		expr, err := cache.Get(c.Formula)
		if err != nil {
			errs = append(errs, &MalformedFormulaError{NodeID: id, Text: c.Formula, Cause: err})
			expr = numLit(0)
		}
		asts[id] = expr
	}
	for _, m := range modules {
		if m.Converted {
			continue
		}
		id := m.RefPrefix()
		g.NodeIDs = append(g.NodeIDs, id)
		g.Deps[id] = map[string]bool{}
	}

	// Step 1: base dependency edges, ignoring SHIFT/PREV* contents.
	for _, c := range calcs {
		id := c.RefName()
		stripped := stripLaggedCalls(c.Formula)
		for _, dep := range extractNodeRefs(stripped) {
			if dep != id && nodeSet[dep] {
				g.Deps[id][dep] = true
			}
		}
	}
	for id, m := range unconvertedModules {
		for _, pv := range m.Inputs {
			if pv.Kind != ParamRef {
				continue
			}
			for _, dep := range extractNodeRefs(pv.Ref) {
				if dep != id && nodeSet[dep] {
					g.Deps[id][dep] = true
				}
			}
		}
	}

	// Step 2: shift targets per calc node.
	shiftTgts := map[string]map[string]bool{}
	for _, c := range calcs {
		id := c.RefName()
		tgts := shiftTargets(asts[id])
		filtered := map[string]bool{}
		for t := range tgts {
			if t != id && nodeSet[t] {
				filtered[t] = true
			}
		}
		shiftTgts[id] = filtered
	}

	// Step 3: cycle detection + non-cyclical lag edges.
	uf := newUnionFind(g.NodeIDs)
	var cycleSets [][]string

	calcIDsSorted := append([]string{}, g.NodeIDs...)
	sort.Strings(calcIDsSorted)
	for _, id := range calcIDsSorted {
		tgts := shiftTgts[id]
		if len(tgts) == 0 {
			continue
		}
		var tgtList []string
		for t := range tgts {
			tgtList = append(tgtList, t)
		}
		sort.Strings(tgtList)
		for _, t := range tgtList {
			if reachable(g.Deps, t, id) {
				// (id, t) closes a cycle: nodes reachable forward from t
				// that can also reach id.
				fwd := reachableSet(g.Deps, t)
				fwd[t] = true
				bwd := reverseReachableSet(g.Deps, id)
				bwd[id] = true
				var nodes []string
				for n := range fwd {
					if bwd[n] {
						nodes = append(nodes, n)
					}
				}
				sort.Strings(nodes)
				cycleSets = append(cycleSets, nodes)
				for _, n := range nodes[1:] {
					uf.union(nodes[0], n)
				}
			} else {
				// non-cyclical lag edge: id depends on t, scheduled after it.
				g.Deps[id][t] = true
			}
		}
	}

	// Step 4: merge overlapping cycle sets into disjoint clusters.
	clusterRoots := map[string][]string{}
	for _, set := range cycleSets {
		for _, n := range set {
			root := uf.find(n)
			clusterRoots[root] = append(clusterRoots[root], n)
		}
	}
	clusterIdx := 0
	for _, members := range clusterRoots {
		seen := map[string]bool{}
		var uniq []string
		for _, m := range members {
			if !seen[m] {
				seen[m] = true
				uniq = append(uniq, m)
			}
		}
		if len(uniq) < 2 {
			continue
		}
		sort.Strings(uniq)
		g.Clusters = append(g.Clusters, uniq)
		for _, m := range uniq {
			g.ClusterOf[m] = clusterIdx
		}
		clusterIdx++
	}

	// Step 5: external dependence on clusters.
	for ci, members := range g.Clusters {
		memberSet := map[string]bool{}
		for _, m := range members {
			memberSet[m] = true
		}
		for _, ext := range g.NodeIDs {
			if memberSet[ext] {
				continue
			}
			dependsOnCluster := false
			for m := range g.Deps[ext] {
				if memberSet[m] {
					dependsOnCluster = true
					break
				}
			}
			if dependsOnCluster {
				for _, m := range members {
					if m != ext {
						g.Deps[ext][m] = true
					}
				}
			}
		}
		_ = ci
	}

	// Step 6: schedule (Kahn's algorithm, excluding cluster-internal edges).
	order, residual := kahnSchedule(g.NodeIDs, g.Deps, g.ClusterOf)
	g.TopoOrder = order
	g.Residual = residual
	if len(residual) > 0 {
		errs = append(errs, &CircularDependencyError{Nodes: residual})
	}

	topoPos := map[string]int{}
	for i, id := range append(append([]string{}, order...), residual...) {
		topoPos[id] = i
	}

	for ci, members := range g.Clusters {
		sorted := append([]string{}, members...)
		sort.Slice(sorted, func(i, j int) bool { return topoPos[sorted[i]] < topoPos[sorted[j]] })
		g.InternalOrder[ci] = sorted
		g.Trigger[ci] = sorted[len(sorted)-1]
	}

	g.Asts = asts
	return g, errs
}

// reachable reports whether to is reachable from `from` following dep
// edges (from →* to).
func reachable(deps map[string]map[string]bool, from, to string) bool {
	if from == to {
		return true
	}
	return reachableSet(deps, from)[to]
}

func reachableSet(deps map[string]map[string]bool, from string) map[string]bool {
	visited := map[string]bool{}
	var stack []string
	stack = append(stack, from)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for next := range deps[n] {
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return visited
}

func reverseReachableSet(deps map[string]map[string]bool, to string) map[string]bool {
	visited := map[string]bool{}
	var stack []string
	stack = append(stack, to)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for src, targets := range deps {
			if targets[n] && !visited[src] {
				visited[src] = true
				stack = append(stack, src)
			}
		}
	}
	return visited
}

// unionFind is a minimal union-find used to merge overlapping cycle sets
// into disjoint clusters.
type unionFind struct {
	parent map[string]string
}

func newUnionFind(ids []string) *unionFind {
	p := map[string]string{}
	for _, id := range ids {
		p[id] = id
	}
	return &unionFind{parent: p}
}

func (u *unionFind) find(x string) string {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}
