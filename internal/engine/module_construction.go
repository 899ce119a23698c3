// Construction funding module template (spec §4.9.5). Debt is drawn
// pro-rata against cumulative construction costs, capped by the gearing
// ratio and the overall sized debt ceiling; interest during construction
// (IDC) is funded entirely from equity.

package engine

// ConstructionOutputs are published in this fixed order as
// M{idx}.1 .. M{idx}.9.
var ConstructionOutputs = []string{
	"total_uses_ex_idc", "senior_debt", "debt_drawdown", "gearing_pct",
	"idc", "cumulative_idc", "total_uses_incl_idc", "equity", "equity_drawdown",
}

// evalConstruction implements §4.9.5. u is the cumulative construction
// cost series; gearingCap and dSized come from the debt-sizing module (or
// direct module inputs); annualRate drives IDC accrual.
func evalConstruction(u []float64, gearingCap, dSized, annualRate float64, n int) [][]float64 {
	totalUsesExIdc := make([]float64, n)
	seniorDebt := make([]float64, n)
	debtDrawdown := make([]float64, n)
	gearingPct := make([]float64, n)
	idc := make([]float64, n)
	cumulativeIdc := make([]float64, n)
	totalUsesInclIdc := make([]float64, n)
	equity := make([]float64, n)
	equityDrawdown := make([]float64, n)

	monthlyRate := annualRate / 12
	cumIdc := 0.0
	prevSeniorDebt := 0.0
	prevEquity := 0.0

	for i := 0; i < n; i++ {
		totalUsesExIdc[i] = u[i]

		cap := gearingCap * u[i]
		sd := cap
		if sd > dSized {
			sd = dSized
		}
		if sd < prevSeniorDebt {
			sd = prevSeniorDebt // debt balance never retreats during drawdown
		}
		seniorDebt[i] = sd
		debtDrawdown[i] = sd - prevSeniorDebt
		if u[i] != 0 {
			gearingPct[i] = sd / u[i]
		}

		idc[i] = prevSeniorDebt * monthlyRate
		cumIdc += idc[i]
		cumulativeIdc[i] = cumIdc

		totalUsesInclIdc[i] = u[i] + cumIdc
		eq := totalUsesInclIdc[i] - sd
		if eq < prevEquity {
			eq = prevEquity
		}
		equity[i] = eq
		equityDrawdown[i] = eq - prevEquity

		prevSeniorDebt = sd
		prevEquity = eq
	}

	return [][]float64{
		totalUsesExIdc, seniorDebt, debtDrawdown, gearingPct,
		idc, cumulativeIdc, totalUsesInclIdc, equity, equityDrawdown,
	}
}
