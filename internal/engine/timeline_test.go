package engine

import "testing"

func TestBuildTimeline(t *testing.T) {
	t.Run("single year", func(t *testing.T) {
		tl, err := BuildTimeline(TimelineConfig{StartYear: 2024, StartMonth: 1, EndYear: 2024, EndMonth: 12})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tl.Periods != 12 {
			t.Fatalf("expected 12 periods, got %d", tl.Periods)
		}
		if tl.Year[0] != 2024 || tl.Month[0] != 1 {
			t.Errorf("first period should be 2024-01, got %d-%d", tl.Year[0], tl.Month[0])
		}
		if tl.Year[11] != 2024 || tl.Month[11] != 12 {
			t.Errorf("last period should be 2024-12, got %d-%d", tl.Year[11], tl.Month[11])
		}
		if tl.Label[0] != "2024-01" {
			t.Errorf("unexpected label %q", tl.Label[0])
		}
	})

	t.Run("crosses year boundary", func(t *testing.T) {
		tl, err := BuildTimeline(TimelineConfig{StartYear: 2024, StartMonth: 11, EndYear: 2025, EndMonth: 2})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tl.Periods != 4 {
			t.Fatalf("expected 4 periods, got %d", tl.Periods)
		}
		wantY := []int{2024, 2024, 2025, 2025}
		wantM := []int{11, 12, 1, 2}
		for i := range wantY {
			if tl.Year[i] != wantY[i] || tl.Month[i] != wantM[i] {
				t.Errorf("period %d: got %d-%d, want %d-%d", i, tl.Year[i], tl.Month[i], wantY[i], wantM[i])
			}
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := BuildTimeline(TimelineConfig{StartYear: 2024, StartMonth: 6, EndYear: 2024, EndMonth: 1})
		if err == nil {
			t.Fatal("expected an error for an inverted timeline range")
		}
	})
}

func TestLeapYearAndDayCounts(t *testing.T) {
	if !IsLeapYear(2024) {
		t.Error("2024 should be a leap year")
	}
	if IsLeapYear(2023) {
		t.Error("2023 should not be a leap year")
	}
	if IsLeapYear(1900) {
		t.Error("1900 should not be a leap year (divisible by 100, not 400)")
	}
	if !IsLeapYear(2000) {
		t.Error("2000 should be a leap year (divisible by 400)")
	}

	if DaysInMonth(2024, 2) != 29 {
		t.Errorf("expected 29 days in Feb 2024, got %d", DaysInMonth(2024, 2))
	}
	if DaysInMonth(2023, 2) != 28 {
		t.Errorf("expected 28 days in Feb 2023, got %d", DaysInMonth(2023, 2))
	}
	if DaysInYear(2024) != 366 {
		t.Errorf("expected 366 days in 2024, got %d", DaysInYear(2024))
	}
	if DaysInQuarter(2024, 2) != 31+29+31 {
		t.Errorf("expected Q1 2024 to have %d days, got %d", 31+29+31, DaysInQuarter(2024, 2))
	}
}

func TestBuildTimeConstants(t *testing.T) {
	tl, err := BuildTimeline(TimelineConfig{StartYear: 2024, StartMonth: 1, EndYear: 2024, EndMonth: 12})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tc := buildTimeConstants(tl)

	if tc["T.MiY"][0] != 12 {
		t.Errorf("T.MiY should be constant 12, got %v", tc["T.MiY"][0])
	}
	if tc["T.DiM"][1] != 29 { // February 2024
		t.Errorf("T.DiM[1] should be 29 (leap Feb), got %v", tc["T.DiM"][1])
	}
	if tc["T.QE"][2] != 1 || tc["T.QE"][0] != 0 {
		t.Errorf("T.QE should flag March (index 2) as quarter end, got %v", tc["T.QE"])
	}
	if tc["T.CYE"][11] != 1 {
		t.Errorf("T.CYE should flag December as calendar year end")
	}
	if tc["T.FYE"][5] != 1 {
		t.Errorf("T.FYE should flag June as fiscal year end")
	}
}
