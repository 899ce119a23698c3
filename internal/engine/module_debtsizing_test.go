package engine

import (
	"math"
	"testing"
)

// TestEvalDebtSizingS5 reproduces S5's setup: constant contracted CFADS of
// 10 for 60 periods, no merchant revenue, DSCRs of 1.35/1.50, 5%/yr
// interest, a 5-year tenor, quarterly debt service, 100% max gearing and
// 1000 of total funding. The binary search should converge to a fully
// amortising, DSCR-compliant debt size.
func TestEvalDebtSizingS5(t *testing.T) {
	n := 60
	contracted := make([]float64, n)
	merchant := make([]float64, n)
	debtFlag := make([]float64, n)
	for i := range contracted {
		contracted[i] = 10
		debtFlag[i] = 1
	}

	outs := evalDebtSizing(contracted, merchant, debtFlag, 1.35, 1.50, 1000, 100, 0.05, 5, 0.1, 100, FreqQuarterly, n)
	sizedDebt, closing := outs[0], outs[5]

	if sizedDebt[0] <= 0 {
		t.Fatalf("expected the binary search to converge to a positive debt size, got %v", sizedDebt[0])
	}
	for i := 1; i < n; i++ {
		if sizedDebt[i] != sizedDebt[0] {
			t.Fatalf("sized_debt should be a constant vector, period %d diverged: %v vs %v", i, sizedDebt[i], sizedDebt[0])
		}
	}
	if sizedDebt[0] > 1000 {
		t.Errorf("sized debt should not exceed total funding, got %v", sizedDebt[0])
	}

	tenorMonths := 5 * 12
	lastPeriod := tenorMonths - 1
	if lastPeriod >= n {
		lastPeriod = n - 1
	}
	if math.Abs(closing[lastPeriod]) > 1e-2 {
		t.Errorf("debt should be fully amortised by the end of the tenor, closing balance=%v", closing[lastPeriod])
	}
}

func TestEvalDebtSizingNoActiveDebtFlagYieldsZero(t *testing.T) {
	n := 12
	contracted := make([]float64, n)
	merchant := make([]float64, n)
	debtFlag := make([]float64, n) // never active
	for i := range contracted {
		contracted[i] = 10
	}
	outs := evalDebtSizing(contracted, merchant, debtFlag, 1.2, 1.2, 500, 80, 0.05, 2, 0.1, 50, FreqMonthly, n)
	for _, v := range outs[0] {
		if v != 0 {
			t.Errorf("sized_debt should be 0 when the debt flag is never active, got %v", v)
		}
	}
}

func TestFreqMonths(t *testing.T) {
	cases := map[Frequency]int{
		FreqMonthly:   1,
		FreqQuarterly: 3,
		FreqYearly:    12,
		FreqFiscalYr:  12,
	}
	for freq, want := range cases {
		if got := freqMonths(freq); got != want {
			t.Errorf("freqMonths(%s): got %d, want %d", freq, got, want)
		}
	}
}
