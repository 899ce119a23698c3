// Iterative debt sizing module template (spec §4.9.6) — the only
// non-closed-form template. A binary search over candidate debt sizes
// simulates the amortization schedule for each candidate and keeps the
// largest size that fully repays within tenor without breaching DSCR.

package engine

import "math"

// DebtSizingOutputs are published in this fixed order as
// M{idx}.1 .. M{idx}.8.
var DebtSizingOutputs = []string{
	"sized_debt", "opening_balance", "interest_payment", "principal_payment",
	"debt_service", "closing_balance", "period_dscr", "cumulative_principal",
}

func freqMonths(freq Frequency) int {
	switch freq {
	case FreqQuarterly:
		return 3
	case FreqYearly, FreqFiscalYr:
		return 12
	default:
		return 1
	}
}

type debtSchedule struct {
	opening, interest, principal, service, closing, dscr, cumPrincipal []float64
	viable                                                              bool
}

// simulateDebtSchedule runs one candidate size D through the tenor window
// (spec §4.9.6 "Binary search" bullet).
func simulateDebtSchedule(d, annualRate float64, window []int, capacity, debtFlag []float64, freq Frequency, n int) debtSchedule {
	sched := debtSchedule{
		opening:      make([]float64, n),
		interest:     make([]float64, n),
		principal:    make([]float64, n),
		service:      make([]float64, n),
		closing:      make([]float64, n),
		dscr:         make([]float64, n),
		cumPrincipal: make([]float64, n),
	}
	if len(window) == 0 || d <= 0 {
		sched.viable = false
		return sched
	}

	fm := freqMonths(freq)
	windowEnd := window[len(window)-1]

	isPayment := make(map[int]bool, len(window))
	numPayments := 0
	for rel, i := range window {
		pay := (rel+1)%fm == 0 || i == windowEnd
		isPayment[i] = pay
		if pay {
			numPayments++
		}
	}
	if numPayments == 0 {
		sched.viable = false
		return sched
	}
	// Benchmark pace for the DSCR-breach check: the principal one payment
	// repays when d amortises in equal instalments over the tenor
	// (spec §4.9.6 "amortisation pace").
	straightLinePace := d / float64(numPayments)

	monthlyRate := annualRate / 12
	balance := d
	accruedInterest := 0.0
	accruedCapacity := 0.0
	cumPrincipal := 0.0
	remainingPayments := numPayments

	noDscrBreach := true
	noNegativePrincipal := true

	for _, i := range window {
		sched.opening[i] = balance
		interestAccrual := balance * monthlyRate
		accruedInterest += interestAccrual
		if debtFlag == nil || i >= len(debtFlag) || debtFlag[i] != 0 {
			accruedCapacity += capacity[i]
		}

		if isPayment[i] {
			sched.interest[i] = accruedInterest
			var principal float64
			if i == windowEnd {
				principal = balance
			} else {
				remainingAfterThis := remainingPayments
				principal = math.Min(accruedCapacity-accruedInterest, balance/float64(remainingAfterThis))
				if principal < 0 {
					principal = 0
					noNegativePrincipal = false
				}
				if principal < 0.9*straightLinePace {
					noDscrBreach = false
				}
			}
			if principal > balance {
				principal = balance
			}
			sched.principal[i] = principal
			sched.service[i] = sched.interest[i] + principal
			balance -= principal
			cumPrincipal += principal
			if sched.service[i] > 0 {
				sched.dscr[i] = accruedCapacity / sched.service[i]
			}
			accruedInterest = 0
			accruedCapacity = 0
			remainingPayments--
		}

		sched.closing[i] = balance
		sched.cumPrincipal[i] = cumPrincipal
	}

	fullyRepaid := balance < 1e-3
	sched.viable = fullyRepaid && noDscrBreach && noNegativePrincipal
	return sched
}

// evalDebtSizing implements the binary-search solver. dscrTargets are
// already-resolved scalars; contracted/merchant/debtFlag are
// already-resolved vectors over the full timeline.
func evalDebtSizing(contracted, merchant, debtFlag []float64, dscrContracted, dscrMerchant, totalFunding, maxGearingPct, annualRate, tenorYears, tolerance float64, maxIterations int, freq Frequency, n int) [][]float64 {
	capacity := make([]float64, n)
	for i := 0; i < n; i++ {
		c := 0.0
		if dscrContracted != 0 {
			c += contracted[i] / dscrContracted
		}
		if dscrMerchant != 0 {
			c += merchant[i] / dscrMerchant
		}
		capacity[i] = c
	}

	debtStart := -1
	lastActive := -1
	for i := 0; i < n; i++ {
		if debtFlag[i] != 0 {
			if debtStart == -1 {
				debtStart = i
			}
			lastActive = i
		}
	}

	empty := func() [][]float64 {
		out := make([][]float64, len(DebtSizingOutputs))
		for i := range out {
			out[i] = make([]float64, n)
		}
		return out
	}

	if debtStart == -1 {
		return empty()
	}

	tenorMonths := int(math.Round(tenorYears * 12))
	windowEnd := debtStart + tenorMonths - 1
	if windowEnd > lastActive {
		windowEnd = lastActive
	}
	if windowEnd < debtStart {
		return empty()
	}
	window := make([]int, 0, windowEnd-debtStart+1)
	for i := debtStart; i <= windowEnd; i++ {
		window = append(window, i)
	}

	upper := totalFunding * (maxGearingPct / 100)
	lower := 0.0
	if tolerance <= 0 {
		tolerance = 1.0
	}
	if maxIterations <= 0 {
		maxIterations = 100
	}

	var best *debtSchedule
	bestD := 0.0
	iterations := 0
	for upper-lower > tolerance && iterations < maxIterations {
		d := (lower + upper) / 2
		sched := simulateDebtSchedule(d, annualRate, window, capacity, debtFlag, freq, n)
		if sched.viable {
			lower = d
			bestD = d
			best = &sched
		} else {
			upper = d
		}
		iterations++
	}

	if best == nil {
		return empty()
	}

	sizedDebt := make([]float64, n)
	for i := range sizedDebt {
		sizedDebt[i] = bestD
	}

	return [][]float64{
		sizedDebt, best.opening, best.interest, best.principal,
		best.service, best.closing, best.dscr, best.cumPrincipal,
	}
}
