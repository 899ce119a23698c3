// Tax losses module template (spec §4.9.4). Utilisation is the running
// minimum of two independent cumulative sums, which sidesteps any cycle
// between "losses generated" and "losses utilised".

package engine

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// TaxLossesOutputs are published in this fixed order as M{idx}.1 .. M{idx}.5.
var TaxLossesOutputs = []string{"generated", "utilised", "closing", "net_taxable", "tax"}

func evalTaxLosses(income, opsFlag []float64, rate float64) [][]float64 {
	n := len(income)
	generated := make([]float64, n)
	potential := make([]float64, n)
	for i := 0; i < n; i++ {
		generated[i] = math.Max(0, -income[i]) * opsFlag[i]
		potential[i] = math.Max(0, income[i]) * opsFlag[i]
	}

	cumGenerated := floats.CumSum(make([]float64, n), generated)
	cumPotential := floats.CumSum(make([]float64, n), potential)

	cumUtilised := make([]float64, n)
	utilised := make([]float64, n)
	closing := make([]float64, n)
	netTaxable := make([]float64, n)
	tax := make([]float64, n)

	prevCumUtilised := 0.0
	for i := 0; i < n; i++ {
		cumUtilised[i] = math.Min(cumGenerated[i], cumPotential[i])
		utilised[i] = cumUtilised[i] - prevCumUtilised
		closing[i] = cumGenerated[i] - cumUtilised[i]
		netTaxable[i] = math.Max(0, income[i]-utilised[i])
		tax[i] = netTaxable[i] * rate
		prevCumUtilised = cumUtilised[i]
	}

	return [][]float64{generated, utilised, closing, netTaxable, tax}
}
