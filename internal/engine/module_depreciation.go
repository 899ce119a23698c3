// Depreciation/amortization module template: straight-line and
// declining-balance (spec §4.9.1).

package engine

import "math"

// DepreciationOutputs are published in this fixed order as
// M{idx}.1 .. M{idx}.5.
var DepreciationOutputs = []string{"opening", "addition", "depreciation", "accumulated", "closing"}

// evalDepreciation implements both the straight-line and declining-balance
// variants. method is "SL" or "DB"; dbMultiplier is only used for DB.
func evalDepreciation(a, f []float64, life float64, method string, dbMultiplier float64, tl Timeline) [][]float64 {
	n := tl.Periods
	cumA := CumSum(a)
	nOps := CumSum(f)

	i0 := -1
	for i, v := range f {
		if v != 0 {
			i0 = i
			break
		}
	}

	opening := make([]float64, n)
	addition := make([]float64, n)
	depreciation := make([]float64, n)
	accumulated := make([]float64, n)
	closing := make([]float64, n)

	if i0 == -1 || life <= 0 {
		return [][]float64{opening, addition, depreciation, accumulated, closing}
	}

	capital := cumA[i0]

	switch method {
	case "DB":
		r := dbMultiplier / life / 12
		acc := 0.0
		for i := 0; i < n; i++ {
			if i == i0 {
				addition[i] = capital
			}
			closing[i] = capital * math.Pow(1-r, nOps[i])
			if closing[i] < 0 {
				closing[i] = 0
			}
			prevClosing := capital
			if i > 0 {
				prevClosing = closing[i-1]
			}
			if i > i0 {
				opening[i] = prevClosing
			}
			if f[i] != 0 {
				depreciation[i] = opening[i] + addition[i] - closing[i]
				if depreciation[i] < 0 {
					depreciation[i] = 0
				}
			}
			acc += depreciation[i]
			accumulated[i] = acc
		}
	default: // "SL"
		rate := capital / life / 12
		acc := 0.0
		for i := 0; i < n; i++ {
			if i == i0 {
				addition[i] = capital
			}
			closing[i] = math.Max(0, capital-rate*nOps[i])
			openingRaw := 0.0
			if i > i0 {
				openingRaw = capital
			}
			opening[i] = math.Max(0, openingRaw-rate*(nOps[i]-f[i]))
			depreciation[i] = math.Min(opening[i]+addition[i], rate) * f[i]
			acc += depreciation[i]
			accumulated[i] = acc
		}
	}

	return [][]float64{opening, addition, depreciation, accumulated, closing}
}
