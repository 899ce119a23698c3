package engine

import (
	"math"
)

// CalculateMonthlyPayment calculates the fixed monthly payment for a loan
// using the standard amortization formula: PMT = P * [r(1+r)^n] / [(1+r)^n - 1]
func CalculateMonthlyPayment(principal float64, annualRate float64, termMonths int) float64 {
	if principal <= 0 || termMonths <= 0 {
		engLogVerbose("amortization: invalid loan parameters principal=%.2f termMonths=%d", principal, termMonths)
		return 0
	}

	if annualRate < 0 || annualRate > 1.0 {
		engLogVerbose("amortization: unusual annual rate %.6f (expected 0-1.0)", annualRate)
	}

	if annualRate <= 0 {
		// If no interest, payment is just principal divided by term
		return principal / float64(termMonths)
	}

	monthlyRate := annualRate / 12.0
	n := float64(termMonths)

	// PMT = P * [r(1+r)^n] / [(1+r)^n - 1]
	factor := math.Pow(1+monthlyRate, n)

	// Safety check: prevent division by zero when factor ≈ 1
	if math.Abs(factor-1) < 1e-10 {
		// When factor is very close to 1, use simple division (no compound interest)
		return principal / float64(termMonths)
	}

	payment := principal * (monthlyRate * factor) / (factor - 1)

	return payment
}
