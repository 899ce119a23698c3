package engine

import "testing"

func assertVec(t *testing.T, name string, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got length %d, want %d", name, len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s[%d]: got %v, want %v", name, i, got[i], want[i])
		}
	}
}

func TestCumSum(t *testing.T) {
	assertVec(t, "CumSum", CumSum([]float64{1, 2, 3, 4}), []float64{1, 3, 6, 10})
}

func TestCumProd(t *testing.T) {
	assertVec(t, "CumProd", CumProd([]float64{2, 3, 4}), []float64{2, 6, 24})
}

func TestCumSumY(t *testing.T) {
	year := []int{2024, 2024, 2025, 2025}
	x := []float64{10, 20, 30, 40}
	assertVec(t, "CumSumY", CumSumY(x, year), []float64{0, 0, 20, 20})
}

func TestShift(t *testing.T) {
	assertVec(t, "Shift", Shift([]float64{1, 2, 3, 4}, 2), []float64{0, 0, 1, 2})
}

func TestPrevSum(t *testing.T) {
	assertVec(t, "PrevSum", PrevSum([]float64{1, 2, 3, 4}), []float64{0, 1, 3, 6})
}

func TestPrevVal(t *testing.T) {
	assertVec(t, "PrevVal", PrevVal([]float64{1, 2, 3, 4}), []float64{0, 1, 2, 3})
}

func TestCount(t *testing.T) {
	assertVec(t, "Count", Count([]float64{0, 1, 0, 1, 1}), []float64{0, 1, 1, 2, 3})
}

func TestMaxVal(t *testing.T) {
	assertVec(t, "MaxVal", MaxVal([]float64{3, 1, 9, 4}), []float64{9, 9, 9, 9})
}

func TestMaxValAllNonFinite(t *testing.T) {
	nan := 0.0
	nan = nan / nan
	assertVec(t, "MaxVal", MaxVal([]float64{nan, nan}), []float64{0, 0})
}

func TestFwdSum(t *testing.T) {
	assertVec(t, "FwdSum", FwdSum([]float64{1, 2, 3, 4, 5}, 2), []float64{3, 5, 7, 9, 5})
}
