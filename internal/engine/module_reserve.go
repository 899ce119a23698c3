// Reserve account module template (spec §4.9.2). Funding accrues, drawdowns
// are capped by the available balance, and release periods drain whatever
// remains to zero.

package engine

// ReserveOutputs are published in this fixed order as M{idx}.1 .. M{idx}.5.
var ReserveOutputs = []string{"opening", "funding", "drawdown", "release", "closing"}

func evalReserve(amount, fundingFlag, drawdownAmount, drawdownFlag, releaseFlag []float64, n int) [][]float64 {
	opening := make([]float64, n)
	funding := make([]float64, n)
	drawdown := make([]float64, n)
	release := make([]float64, n)
	closing := make([]float64, n)

	balance := 0.0
	for i := 0; i < n; i++ {
		opening[i] = balance
		fundingAmt := amount[i] * fundingFlag[i]
		funding[i] = fundingAmt
		available := balance + fundingAmt

		req := drawdownAmount[i] * drawdownFlag[i]
		draw := req
		if draw > available {
			draw = available
		}
		if draw < 0 {
			draw = 0
		}
		drawdown[i] = draw
		available -= draw

		rel := 0.0
		if releaseFlag[i] != 0 {
			rel = available
		}
		release[i] = rel
		available -= rel

		closing[i] = available
		balance = available
	}

	return [][]float64{opening, funding, drawdown, release, closing}
}
