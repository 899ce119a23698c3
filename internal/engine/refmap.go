// Reference map builder: materializes every non-formula quantity —
// input-group series, key-period flags, indexation curves, and (via
// timeline.go) time constants — into full-timeline vectors that seed the
// evaluation context.

package engine

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
)

// BuildReferenceMap materializes `inputs` against `tl` into the seed
// context consumed by graph evaluation.
func BuildReferenceMap(inputs ModelInputs, tl Timeline) map[string][]float64 {
	ctx := buildTimeConstants(tl)

	byGroup := map[int][]Input{}
	for _, in := range inputs.InputGlass {
		byGroup[in.GroupID] = append(byGroup[in.GroupID], in)
	}
	for gid := range byGroup {
		sort.Slice(byGroup[gid], func(i, j int) bool {
			return byGroup[gid][i].ID < byGroup[gid][j].ID
		})
	}

	groupsByID := map[int]InputGroup{}
	for _, g := range inputs.InputGlassGroups {
		groupsByID[g.ID] = g
	}
	kpByID := map[int]KeyPeriod{}
	for _, kp := range inputs.KeyPeriods {
		kpByID[kp.ID] = kp
	}

	seq := map[EntryMode]int{}
	for _, grp := range inputs.InputGlassGroups {
		ins := byGroup[grp.ID]
		if len(ins) == 0 {
			continue
		}
		prefix := groupPrefix(grp.EntryMode)
		seq[grp.EntryMode]++
		refBase := prefix + strconv.Itoa(seq[grp.EntryMode])

		startYear, startMonth, groupPeriods := effectiveWindow(grp, kpByID)
		subtotal := make([]float64, tl.Periods)
		forwardFill := grp.EntryMode == EntryModeLookup || grp.EntryMode == EntryModeLookup2

		if forwardFill {
			buildLookupGroup(ctx, tl, refBase, startYear, startMonth, groupPeriods, grp, ins, subtotal)
		} else {
			for idx, in := range ins {
				vec := buildInputArray(tl, startYear, startMonth, groupPeriods, grp, in, forwardFill)
				ctx[refBase+"."+strconv.Itoa(idx+1)] = vec
				floats.Add(subtotal, vec)
			}
		}
		ctx[refBase] = subtotal
	}

	for _, kp := range inputs.KeyPeriods {
		name := "F" + strconv.Itoa(kp.ID)
		flag, start, end := buildKeyPeriodFlags(tl, kp)
		ctx[name] = flag
		ctx[name+".Start"] = start
		ctx[name+".End"] = end
	}

	for _, idxCurve := range inputs.Indices {
		ctx["I"+strconv.Itoa(idxCurve.ID)] = buildIndexCurve(tl, idxCurve)
	}

	return ctx
}

func groupPrefix(mode EntryMode) string {
	switch mode {
	case EntryModeConstant:
		return "C"
	case EntryModeValues:
		return "V"
	case EntryModeSeries:
		return "S"
	case EntryModeLookup, EntryModeLookup2:
		return "L"
	default:
		return "X"
	}
}

// effectiveWindow resolves a group's effective start and period count,
// inheriting from its linked key period when present. Lookup groups may
// additionally carry their own LookupStartYear/LookupStartMonth, anchoring
// the underlying table earlier than the group's nominal window while
// keeping the same effective end (e.g. a rate table that starts well
// before the projection but is still read against it).
func effectiveWindow(grp InputGroup, kpByID map[int]KeyPeriod) (startYear, startMonth, periods int) {
	if grp.LinkedKeyPeriodID != 0 {
		if kp, ok := kpByID[grp.LinkedKeyPeriodID]; ok {
			startYear, startMonth = kp.StartYear, kp.StartMonth
			periods = (kp.EndYear-kp.StartYear)*12 + (kp.EndMonth - kp.StartMonth) + 1
		}
	}
	if periods == 0 {
		n := grp.Periods
		if n == 0 && grp.EndYear != 0 {
			n = (grp.EndYear-grp.StartYear)*12 + (grp.EndMonth - grp.StartMonth) + 1
		}
		if n <= 0 {
			n = 1
		}
		startYear, startMonth, periods = grp.StartYear, grp.StartMonth, n
	}

	isLookup := grp.EntryMode == EntryModeLookup || grp.EntryMode == EntryModeLookup2
	if isLookup && grp.LookupStartYear != 0 {
		endAbs := startYear*12 + startMonth + periods - 1
		startYear, startMonth = grp.LookupStartYear, grp.LookupStartMonth
		startAbs := startYear*12 + startMonth
		periods = endAbs - startAbs + 1
		if periods <= 0 {
			periods = 1
		}
	}
	return startYear, startMonth, periods
}

// buildLookupGroup implements the two-level L{g}.{sub}.{opt}/L{g}.{sub}
// addressing lookup groups use (spec table §3.3): inputs sharing a
// SubgroupID are one sub-group's options, the SubgroupID itself is the
// `.{sub}` key (inputs with no SubgroupID all fall under `.1`), and
// option position within its sub-group gives `.{opt}`. SelectedIndices
// picks which sub-groups (by position in grp.Subgroups) roll up into the
// group-level subtotal; an empty SelectedIndices rolls up every sub-group.
func buildLookupGroup(ctx map[string][]float64, tl Timeline, refBase string, startYear, startMonth, groupPeriods int, grp InputGroup, ins []Input, subtotal []float64) {
	bySub := map[string][]Input{}
	var subOrder []string
	for _, in := range ins {
		sub := in.SubgroupID
		if sub == "" {
			sub = "1"
		}
		if _, ok := bySub[sub]; !ok {
			subOrder = append(subOrder, sub)
		}
		bySub[sub] = append(bySub[sub], in)
	}

	selected := map[string]bool{}
	for _, si := range grp.SelectedIndices {
		if si >= 0 && si < len(grp.Subgroups) {
			selected[grp.Subgroups[si]] = true
		}
	}

	for _, sub := range subOrder {
		subTotal := make([]float64, tl.Periods)
		for opt, in := range bySub[sub] {
			vec := buildInputArray(tl, startYear, startMonth, groupPeriods, grp, in, true)
			ctx[refBase+"."+sub+"."+strconv.Itoa(opt+1)] = vec
			floats.Add(subTotal, vec)
		}
		ctx[refBase+"."+sub] = subTotal
		if len(selected) == 0 || selected[sub] {
			floats.Add(subtotal, subTotal)
		}
	}
}

// buildInputArray builds one input's series: a local monthly vector of
// length groupPeriods is constructed per entry mode, then mapped onto the
// full timeline at its effective start offset.
func buildInputArray(tl Timeline, startYear, startMonth, groupPeriods int, grp InputGroup, in Input, forwardFill bool) []float64 {
	mode := in.Mode
	if mode == "" {
		mode = grp.EntryMode
	}

	local := make([]float64, groupPeriods)
	switch {
	case mode == EntryModeConstant:
		for i := range local {
			local[i] = in.Value
		}
	case len(in.Values) > 0:
		for i, v := range in.Values {
			if i >= 0 && i < len(local) {
				local[i] = v
			}
		}
	case mode == EntryModeSeries:
		freq := in.SeriesFrequency
		if freq == "" {
			freq = in.ValueFrequency
		}
		spread := in.Value
		switch freq {
		case FreqYearly, FreqFiscalYr:
			spread = in.Value / 12
		case FreqQuarterly:
			spread = in.Value / 3
		}
		for i := range local {
			local[i] = spread
		}
	default:
		for i := range local {
			local[i] = in.Value
		}
	}

	out := make([]float64, tl.Periods)
	for k, v := range local {
		y, m := addMonths(startYear, startMonth, k)
		idx := monthIndex(tl, y, m)
		if idx >= 0 {
			out[idx] = v
		}
	}

	if forwardFill {
		last := 0.0
		seen := false
		for i := range out {
			if out[i] != 0 {
				last = out[i]
				seen = true
				continue
			}
			if seen {
				out[i] = last
			}
		}
	}
	return out
}

func addMonths(year, month, k int) (int, int) {
	total := (year*12 + (month - 1)) + k
	return total / 12, total%12 + 1
}

func monthIndex(tl Timeline, year, month int) int {
	for i := 0; i < tl.Periods; i++ {
		if tl.Year[i] == year && tl.Month[i] == month {
			return i
		}
	}
	return -1
}

// buildKeyPeriodFlags builds a key period's active-window flag vector
// together with its Start/End one-hot markers.
func buildKeyPeriodFlags(tl Timeline, kp KeyPeriod) (flag, start, end []float64) {
	flag = make([]float64, tl.Periods)
	start = make([]float64, tl.Periods)
	end = make([]float64, tl.Periods)

	sAbs := kp.StartYear*12 + kp.StartMonth
	eAbs := kp.EndYear*12 + kp.EndMonth

	firstIdx, lastIdx := -1, -1
	for i := 0; i < tl.Periods; i++ {
		abs := tl.Year[i]*12 + tl.Month[i]
		if abs >= sAbs && abs <= eAbs {
			flag[i] = 1
			if firstIdx == -1 {
				firstIdx = i
			}
			lastIdx = i
		}
	}
	if firstIdx >= 0 {
		start[firstIdx] = 1
		end[lastIdx] = 1
	}
	return flag, start, end
}

// buildIndexCurve builds an indexation curve anchored at (BaseYear,
// BaseMonth). Annual compounding steps once every twelve months counted
// from the base month; monthly
// compounding converts the annual rate to an equivalent monthly rate first.
func buildIndexCurve(tl Timeline, idx IndexCurve) []float64 {
	out := make([]float64, tl.Periods)
	r := idx.AnnualRatePct / 100
	if idx.MonthlyCompound {
		m := math.Pow(1+r, 1.0/12) - 1
		for i := 0; i < tl.Periods; i++ {
			months := (tl.Year[i]-idx.BaseYear)*12 + (tl.Month[i] - idx.BaseMonth)
			if months < 0 {
				months = 0
			}
			out[i] = math.Pow(1+m, float64(months))
		}
		return out
	}
	for i := 0; i < tl.Periods; i++ {
		years := float64(tl.Year[i]-idx.BaseYear) + float64(tl.Month[i]-idx.BaseMonth)/12
		n := math.Floor(years)
		if n < 0 {
			n = 0
		}
		out[i] = math.Pow(1+r, n)
	}
	return out
}
