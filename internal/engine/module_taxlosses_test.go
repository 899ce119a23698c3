package engine

import (
	"math"
	"testing"
)

// TestEvalTaxLossesS3 reproduces S3 exactly.
func TestEvalTaxLossesS3(t *testing.T) {
	income := []float64{-100, -50, 30, 200, 50}
	opsFlag := []float64{1, 1, 1, 1, 1}
	rate := 0.30

	outs := evalTaxLosses(income, opsFlag, rate)
	generated, utilised, closing, netTaxable, tax := outs[0], outs[1], outs[2], outs[3], outs[4]

	assertClose := func(name string, got, want []float64) {
		t.Helper()
		for i := range want {
			if math.Abs(got[i]-want[i]) > 1e-9 {
				t.Errorf("%s[%d]: got %v, want %v", name, i, got[i], want[i])
			}
		}
	}

	assertClose("generated", generated, []float64{100, 50, 0, 0, 0})
	assertClose("utilised", utilised, []float64{0, 0, 30, 120, 0})
	assertClose("closing", closing, []float64{100, 150, 120, 0, 0})
	assertClose("net_taxable", netTaxable, []float64{0, 0, 0, 80, 50})
	assertClose("tax", tax, []float64{0, 0, 0, 24, 15})
}

func TestEvalTaxLossesOpsFlagGatesGeneration(t *testing.T) {
	income := []float64{-100, -100}
	opsFlag := []float64{0, 1}
	outs := evalTaxLosses(income, opsFlag, 0.3)
	generated := outs[0]
	if generated[0] != 0 {
		t.Errorf("generation should be gated off when opsFlag is 0, got %v", generated[0])
	}
	if generated[1] != 100 {
		t.Errorf("generation should register once opsFlag is 1, got %v", generated[1])
	}
}
