// Array-valued primitives. Each takes one or more already materialized
// vectors of length periods and produces another vector of the same length.

package engine

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// CumSum computes a running total: out[i] = sum(x[0..i]).
func CumSum(x []float64) []float64 {
	out := make([]float64, len(x))
	acc := 0.0
	for i, v := range x {
		acc += v
		out[i] = acc
	}
	return out
}

// CumProd computes a running product seeded at 1: out[i] = prod(x[0..i]).
func CumProd(x []float64) []float64 {
	out := make([]float64, len(x))
	acc := 1.0
	for i, v := range x {
		acc *= v
		out[i] = acc
	}
	return out
}

// CumSumY adds x's value at the last index of the previous year onto the
// running total at the first period of every new year; 0 before the first
// year transition.
func CumSumY(x []float64, year []int) []float64 {
	out := make([]float64, len(x))
	acc := 0.0
	for i := range x {
		if i > 0 && year[i] != year[i-1] {
			acc += x[i-1]
		}
		out[i] = acc
	}
	return out
}

// CumProdY is CumSumY's multiplicative counterpart, seeded at 1.
func CumProdY(x []float64, year []int) []float64 {
	out := make([]float64, len(x))
	acc := 1.0
	for i := range x {
		if i > 0 && year[i] != year[i-1] {
			acc *= x[i-1]
		}
		out[i] = acc
	}
	return out
}

// Shift lags x by n periods: out[i] = x[i-n] for i>=n, else 0.
func Shift(x []float64, n int) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		if i-n >= 0 {
			out[i] = x[i-n]
		}
	}
	return out
}

// PrevSum is the cumulative sum of strictly prior periods:
// out[i] = sum(x[0..i-1]); out[0] = 0.
func PrevSum(x []float64) []float64 {
	out := make([]float64, len(x))
	acc := 0.0
	for i := range x {
		out[i] = acc
		acc += x[i]
	}
	return out
}

// PrevVal is a one-period lag: out[i] = x[i-1] for i>=1, else 0.
func PrevVal(x []float64) []float64 {
	return Shift(x, 1)
}

// Count is the cumulative count of nonzero entries.
func Count(x []float64) []float64 {
	out := make([]float64, len(x))
	acc := 0.0
	for i, v := range x {
		if v != 0 {
			acc++
		}
		out[i] = acc
	}
	return out
}

// MaxVal broadcasts the scalar max over all periods to every period. An
// all-non-finite input collapses to 0.
func MaxVal(x []float64) []float64 {
	finite := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsInf(v, 0) && !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	m := 0.0
	if len(finite) > 0 {
		m = floats.Max(finite)
	}
	out := make([]float64, len(x))
	for i := range out {
		out[i] = m
	}
	return out
}

// FwdSum sums a forward window of width w starting at i:
// out[i] = sum(x[i .. min(i+w, periods)-1]).
func FwdSum(x []float64, w int) []float64 {
	n := len(x)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		end := i + w
		if end > n {
			end = n
		}
		if end > i {
			out[i] = floats.Sum(x[i:end])
		}
	}
	return out
}

// ResolveFwdSumWindow implements FWDSUM's window-argument fallback: if the
// literal/ref resolves to zero periods, use the first non-zero value in the
// window-reference vector, else the first value of fallbackFirst, else 6.
// Non-integer results are rounded.
func ResolveFwdSumWindow(winRef []float64, fallbackFirst []float64) int {
	for _, v := range winRef {
		if v != 0 {
			return int(math.Round(v))
		}
	}
	if len(fallbackFirst) > 0 {
		return int(math.Round(fallbackFirst[0]))
	}
	return 6
}
