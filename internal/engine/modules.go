// Module template registry and input resolution (spec §4.9). Each
// template's output list is fixed, compile-time data (spec §9 "module
// templates as data"); only the iterative debt-sizing solver is a
// distinct, non-data variant.

package engine

const (
	TemplateDepreciation = "depreciation"
	TemplateReserve      = "reserve"
	TemplateGst          = "gst"
	TemplateTaxLosses    = "tax_losses"
	TemplateConstruction = "construction"
	TemplateDebtSizing   = "debt_sizing"
)

// resolveVector resolves a module parameter to a full-timeline vector: a
// numeric literal broadcasts, a reference looks up the context (zero-filled
// if absent, per spec's missing-reference rule), a string is invalid here.
func resolveVector(ctx map[string][]float64, tl Timeline, p ParamValue) []float64 {
	out := make([]float64, tl.Periods)
	switch p.Kind {
	case ParamNumber:
		for i := range out {
			out[i] = p.Num
		}
	case ParamRef:
		if v, ok := ctx[p.Ref]; ok {
			copy(out, v)
		}
	}
	return out
}

// resolveScalar resolves a module parameter that is documented as
// "numeric or reference" (e.g. a DSCR target): a literal is used directly,
// a reference takes the first period's value.
func resolveScalar(ctx map[string][]float64, p ParamValue) float64 {
	switch p.Kind {
	case ParamNumber:
		return p.Num
	case ParamRef:
		if v, ok := ctx[p.Ref]; ok && len(v) > 0 {
			return v[0]
		}
	}
	return 0
}

func resolveString(p ParamValue, fallback string) string {
	if p.Kind == ParamString && p.Str != "" {
		return p.Str
	}
	return fallback
}

func param(inputs map[string]ParamValue, key string) ParamValue {
	return inputs[key]
}

// EvaluateModule dispatches to the template-specific evaluator named by
// m.TemplateID (spec §4.9) and returns the declared output names alongside
// their vectors, in lockstep, ready to publish as M{idx}.{k+1}.
func EvaluateModule(m Module, ctx map[string][]float64, tl Timeline) ([]string, [][]float64) {
	n := tl.Periods
	in := m.Inputs

	switch m.TemplateID {
	case TemplateDepreciation:
		a := resolveVector(ctx, tl, param(in, "capexSeries"))
		f := resolveVector(ctx, tl, param(in, "opsFlag"))
		life := resolveScalar(ctx, param(in, "lifeYears"))
		method := resolveString(param(in, "method"), "SL")
		dbMult := resolveScalar(ctx, param(in, "dbMultiplier"))
		return DepreciationOutputs, evalDepreciation(a, f, life, method, dbMult, tl)

	case TemplateReserve:
		amount := resolveVector(ctx, tl, param(in, "fundingAmount"))
		fundingFlag := resolveVector(ctx, tl, param(in, "fundingFlag"))
		drawdownAmount := resolveVector(ctx, tl, param(in, "drawdownAmount"))
		drawdownFlag := resolveVector(ctx, tl, param(in, "drawdownFlag"))
		releaseFlag := resolveVector(ctx, tl, param(in, "releaseFlag"))
		return ReserveOutputs, evalReserve(amount, fundingFlag, drawdownAmount, drawdownFlag, releaseFlag, n)

	case TemplateGst:
		base := resolveVector(ctx, tl, param(in, "base"))
		activeFlag := resolveVector(ctx, tl, param(in, "activeFlag"))
		rate := resolveScalar(ctx, param(in, "rate"))
		delay := int(resolveScalar(ctx, param(in, "delay")))
		return GstOutputs, evalGst(base, activeFlag, rate, delay)

	case TemplateTaxLosses:
		income := resolveVector(ctx, tl, param(in, "income"))
		opsFlag := resolveVector(ctx, tl, param(in, "opsFlag"))
		rate := resolveScalar(ctx, param(in, "rate"))
		return TaxLossesOutputs, evalTaxLosses(income, opsFlag, rate)

	case TemplateConstruction:
		u := resolveVector(ctx, tl, param(in, "cumulativeCost"))
		gearingCap := resolveScalar(ctx, param(in, "gearingCap")) / 100
		dSized := resolveScalar(ctx, param(in, "sizedDebt"))
		rate := resolveScalar(ctx, param(in, "annualRate"))
		return ConstructionOutputs, evalConstruction(u, gearingCap, dSized, rate, n)

	case TemplateDebtSizing:
		contracted := resolveVector(ctx, tl, param(in, "contracted"))
		merchant := resolveVector(ctx, tl, param(in, "merchant"))
		debtFlag := resolveVector(ctx, tl, param(in, "debtFlag"))
		dscrC := resolveScalar(ctx, param(in, "dscrContracted"))
		dscrM := resolveScalar(ctx, param(in, "dscrMerchant"))
		totalFunding := resolveScalar(ctx, param(in, "totalFunding"))
		maxGearingPct := resolveScalar(ctx, param(in, "maxGearingPct"))
		rate := resolveScalar(ctx, param(in, "annualRate"))
		tenorYears := resolveScalar(ctx, param(in, "tenorYears"))
		tolerance := resolveScalar(ctx, param(in, "tolerance"))
		maxIterations := int(resolveScalar(ctx, param(in, "maxIterations")))
		freq := Frequency(resolveString(param(in, "frequency"), "M"))
		return DebtSizingOutputs, evalDebtSizing(contracted, merchant, debtFlag, dscrC, dscrM, totalFunding, maxGearingPct, rate, tenorYears, tolerance, maxIterations, freq, n)

	default:
		return nil, nil
	}
}
