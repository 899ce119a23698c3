// Timeline construction and the T.* time-constant vectors consumed by
// calendar-aware formulas (day/month/quarter/year counts, period-end flags).

package engine

import "fmt"

// BuildTimeline expands a config into the per-period Year/Month/Label
// arrays. Periods = (endYear-startYear)*12 + (endMonth-startMonth) + 1.
func BuildTimeline(cfg TimelineConfig) (Timeline, error) {
	periods := (cfg.EndYear-cfg.StartYear)*12 + (cfg.EndMonth - cfg.StartMonth) + 1
	if periods <= 0 {
		return Timeline{}, fmt.Errorf("engine: invalid timeline config %+v produces %d periods", cfg, periods)
	}

	tl := Timeline{
		Periods:    periods,
		Year:       make([]int, periods),
		Month:      make([]int, periods),
		Label:      make([]string, periods),
		StartYear:  cfg.StartYear,
		StartMonth: cfg.StartMonth,
		EndYear:    cfg.EndYear,
		EndMonth:   cfg.EndMonth,
	}

	y, m := cfg.StartYear, cfg.StartMonth
	for i := 0; i < periods; i++ {
		tl.Year[i] = y
		tl.Month[i] = m
		tl.Label[i] = fmt.Sprintf("%04d-%02d", y, m)
		m++
		if m > 12 {
			m = 1
			y++
		}
	}
	return tl, nil
}

// IsLeapYear implements the standard Gregorian leap rule.
func IsLeapYear(y int) bool {
	return (y%4 == 0 && y%100 != 0) || y%400 == 0
}

var daysInMonthNonLeap = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DaysInMonth returns the number of days in (year, month), month 1..12.
func DaysInMonth(year, month int) int {
	if month == 2 && IsLeapYear(year) {
		return 29
	}
	return daysInMonthNonLeap[month]
}

// DaysInYear returns 366 for leap years, 365 otherwise.
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// quarterOf returns the first month (1,4,7,10) of the quarter containing month.
func quarterOf(month int) int {
	return ((month-1)/3)*3 + 1
}

// DaysInQuarter sums the days of the three months of the quarter containing month.
func DaysInQuarter(year, month int) int {
	q := quarterOf(month)
	total := 0
	for m := q; m < q+3; m++ {
		total += DaysInMonth(year, m)
	}
	return total
}

// buildTimeConstants materializes the T.* reference vectors.
func buildTimeConstants(tl Timeline) map[string][]float64 {
	n := tl.Periods
	miY := make([]float64, n)
	qiY := make([]float64, n)
	hiD := make([]float64, n)
	miQ := make([]float64, n)
	diM := make([]float64, n)
	diY := make([]float64, n)
	diQ := make([]float64, n)
	hiM := make([]float64, n)
	hiY := make([]float64, n)
	qe := make([]float64, n)
	cye := make([]float64, n)
	fye := make([]float64, n)

	for i := 0; i < n; i++ {
		y, m := tl.Year[i], tl.Month[i]
		miY[i] = 12
		qiY[i] = 4
		hiD[i] = 24
		miQ[i] = 3
		diM[i] = float64(DaysInMonth(y, m))
		diY[i] = float64(DaysInYear(y))
		diQ[i] = float64(DaysInQuarter(y, m))
		hiM[i] = diM[i] * 24
		hiY[i] = diY[i] * 24
		if m == 3 || m == 6 || m == 9 || m == 12 {
			qe[i] = 1
		}
		if m == 12 {
			cye[i] = 1
		}
		if m == 6 {
			fye[i] = 1
		}
	}

	return map[string][]float64{
		"T.MiY": miY, "T.QiY": qiY, "T.HiD": hiD, "T.MiQ": miQ,
		"T.DiM": diM, "T.DiY": diY, "T.DiQ": diQ,
		"T.HiM": hiM, "T.HiY": hiY,
		"T.QE": qe, "T.CYE": cye, "T.FYE": fye,
	}
}
