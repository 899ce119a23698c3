// GST receivable module template (spec §4.9.3).

package engine

// GstOutputs are published in this fixed order as M{idx}.1 .. M{idx}.4.
var GstOutputs = []string{"gst_amount", "paid", "received", "receivable_closing"}

func evalGst(base, activeFlag []float64, rate float64, delay int) [][]float64 {
	n := len(base)
	gstAmount := make([]float64, n)
	gstPaidNeg := make([]float64, n)
	for i := 0; i < n; i++ {
		gstAmount[i] = base[i] * rate * activeFlag[i]
		gstPaidNeg[i] = -gstAmount[i]
	}

	cumPaid := CumSum(gstPaidNeg)
	cumReceived := Shift(cumPaid, delay)
	receivableClosing := make([]float64, n)
	paid := make([]float64, n)
	received := make([]float64, n)
	for i := 0; i < n; i++ {
		receivableClosing[i] = cumPaid[i] - cumReceived[i]
		prevPaid, prevReceived := 0.0, 0.0
		if i > 0 {
			prevPaid, prevReceived = cumPaid[i-1], cumReceived[i-1]
		}
		paid[i] = cumPaid[i] - prevPaid
		received[i] = cumReceived[i] - prevReceived
	}

	return [][]float64{gstAmount, paid, received, receivableClosing}
}
