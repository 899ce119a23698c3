package engine

import (
	"math"
	"testing"
)

func TestBuildReferenceMapConstantGroup(t *testing.T) {
	tl, _ := BuildTimeline(TimelineConfig{StartYear: 2024, StartMonth: 1, EndYear: 2024, EndMonth: 6})
	inputs := ModelInputs{
		Config: TimelineConfig{StartYear: 2024, StartMonth: 1, EndYear: 2024, EndMonth: 6},
		InputGlassGroups: []InputGroup{
			{ID: 1, EntryMode: EntryModeConstant, StartYear: 2024, StartMonth: 1, Periods: 6},
		},
		InputGlass: []Input{
			{ID: 1, GroupID: 1, Value: 5},
		},
	}
	ctx := BuildReferenceMap(inputs, tl)

	got, ok := ctx["C1.1"]
	if !ok {
		t.Fatal("expected C1.1 to be present")
	}
	for i, v := range got {
		if v != 5 {
			t.Errorf("C1.1[%d]: got %v, want 5", i, v)
		}
	}
	sub, ok := ctx["C1"]
	if !ok {
		t.Fatal("expected the group subtotal C1 to be present")
	}
	if sub[0] != 5 {
		t.Errorf("C1[0]: got %v, want 5", sub[0])
	}
}

func TestBuildReferenceMapValuesGroupSparse(t *testing.T) {
	tl, _ := BuildTimeline(TimelineConfig{StartYear: 2024, StartMonth: 1, EndYear: 2024, EndMonth: 6})
	inputs := ModelInputs{
		Config: TimelineConfig{StartYear: 2024, StartMonth: 1, EndYear: 2024, EndMonth: 6},
		InputGlassGroups: []InputGroup{
			{ID: 1, EntryMode: EntryModeValues, StartYear: 2024, StartMonth: 1, Periods: 6},
		},
		InputGlass: []Input{
			{ID: 1, GroupID: 1, Values: map[int]float64{0: 100, 3: 50}},
		},
	}
	ctx := BuildReferenceMap(inputs, tl)
	want := []float64{100, 0, 0, 50, 0, 0}
	got := ctx["V1.1"]
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("V1.1[%d]: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestBuildReferenceMapKeyPeriodFlags(t *testing.T) {
	tl, _ := BuildTimeline(TimelineConfig{StartYear: 2024, StartMonth: 1, EndYear: 2024, EndMonth: 12})
	inputs := ModelInputs{
		Config:     TimelineConfig{StartYear: 2024, StartMonth: 1, EndYear: 2024, EndMonth: 12},
		KeyPeriods: []KeyPeriod{{ID: 1, StartYear: 2024, StartMonth: 3, EndYear: 2024, EndMonth: 5}},
	}
	ctx := BuildReferenceMap(inputs, tl)

	wantFlag := []float64{0, 0, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0}
	for i := range wantFlag {
		if ctx["F1"][i] != wantFlag[i] {
			t.Errorf("F1[%d]: got %v, want %v", i, ctx["F1"][i], wantFlag[i])
		}
	}
	if ctx["F1.Start"][2] != 1 {
		t.Error("F1.Start should flag the window's first period (March, index 2)")
	}
	if ctx["F1.End"][4] != 1 {
		t.Error("F1.End should flag the window's last period (May, index 4)")
	}
}

// TestBuildIndexCurveAnnual reproduces S6: base (2024,1), rate 2.5%, annual
// compounding. I[0]=1, I[12]=1.025, I[24]~=1.050625.
func TestBuildIndexCurveAnnual(t *testing.T) {
	tl, _ := BuildTimeline(TimelineConfig{StartYear: 2024, StartMonth: 1, EndYear: 2026, EndMonth: 1})
	inputs := ModelInputs{
		Config:  TimelineConfig{StartYear: 2024, StartMonth: 1, EndYear: 2026, EndMonth: 1},
		Indices: []IndexCurve{{ID: 1, BaseYear: 2024, BaseMonth: 1, AnnualRatePct: 2.5}},
	}
	ctx := BuildReferenceMap(inputs, tl)
	idx := ctx["I1"]

	if idx[0] != 1 {
		t.Errorf("I[0] should be 1, got %v", idx[0])
	}
	if math.Abs(idx[12]-1.025) > 1e-9 {
		t.Errorf("I[12] should be 1.025, got %v", idx[12])
	}
	if math.Abs(idx[24]-1.050625) > 1e-9 {
		t.Errorf("I[24] should be ~1.050625, got %v", idx[24])
	}
}

func TestEffectiveWindowInheritsFromLinkedKeyPeriod(t *testing.T) {
	kpByID := map[int]KeyPeriod{
		1: {ID: 1, StartYear: 2024, StartMonth: 3, EndYear: 2024, EndMonth: 8},
	}
	grp := InputGroup{ID: 1, EntryMode: EntryModeSeries, LinkedKeyPeriodID: 1}
	sy, sm, n := effectiveWindow(grp, kpByID)
	if sy != 2024 || sm != 3 || n != 6 {
		t.Errorf("got start=%d-%d periods=%d, want 2024-3 periods=6", sy, sm, n)
	}
}
