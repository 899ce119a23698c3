package engine

import (
	"math"
	"testing"
)

func TestFinite(t *testing.T) {
	if finite(math.Inf(1)) != 0 {
		t.Error("positive infinity should collapse to 0")
	}
	if finite(math.NaN()) != 0 {
		t.Error("NaN should collapse to 0")
	}
	if finite(3.5) != 3.5 {
		t.Error("finite values should pass through unchanged")
	}
}

func TestLookupRefMissingAndOutOfRange(t *testing.T) {
	ctx := map[string][]float64{"R1": {1, 2, 3}}
	if v := lookupRef(ctx, "R1", 1); v != 2 {
		t.Errorf("expected 2, got %v", v)
	}
	if v := lookupRef(ctx, "R1", 10); v != 0 {
		t.Errorf("out-of-range lookup should zero-fill, got %v", v)
	}
	if v := lookupRef(ctx, "R999", 0); v != 0 {
		t.Errorf("missing reference should zero-fill, got %v", v)
	}
}

func TestScalarBinaryOpDivideByZero(t *testing.T) {
	if v := scalarBinaryOp("/", 5, 0); v != 0 {
		t.Errorf("division by zero should yield 0, got %v", v)
	}
	if v := scalarBinaryOp("%", 5, 0); v != 0 {
		t.Errorf("mod by zero should yield 0, got %v", v)
	}
}

func TestScalarCallRound(t *testing.T) {
	if v := scalarCall("ROUND", []float64{3.14159, 2}); math.Abs(v-3.14) > 1e-9 {
		t.Errorf("ROUND(3.14159,2) should be ~3.14, got %v", v)
	}
}

func TestMaterializeArithmetic(t *testing.T) {
	tl, _ := BuildTimeline(TimelineConfig{StartYear: 2024, StartMonth: 1, EndYear: 2024, EndMonth: 3})
	expr, err := ParseFormula("R1 * 2 + 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := map[string][]float64{"R1": {1, 2, 3}}
	got := materialize(expr, ctx, tl)
	want := []float64{3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("period %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMaterializeShift(t *testing.T) {
	tl, _ := BuildTimeline(TimelineConfig{StartYear: 2024, StartMonth: 1, EndYear: 2024, EndMonth: 4})
	expr, err := ParseFormula("SHIFT(R1, 1)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := map[string][]float64{"R1": {10, 20, 30, 40}}
	got := materialize(expr, ctx, tl)
	want := []float64{0, 10, 20, 30}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("period %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestResolveFwdSumWindowFallback(t *testing.T) {
	if w := ResolveFwdSumWindow([]float64{0, 0, 4}, []float64{9}); w != 4 {
		t.Errorf("expected first non-zero window value 4, got %d", w)
	}
	if w := ResolveFwdSumWindow([]float64{0, 0}, []float64{9}); w != 9 {
		t.Errorf("expected fallback to x[0]=9, got %d", w)
	}
	if w := ResolveFwdSumWindow(nil, nil); w != 6 {
		t.Errorf("expected default fallback 6, got %d", w)
	}
}
