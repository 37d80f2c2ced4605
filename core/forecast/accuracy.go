package forecast

import "math"

// PortfolioAccuracy reconciles predicted vs actual totals across entries.
//
// An entry qualifies when its predictions are non-empty, its actuals were
// recorded (an all-zero record still counts) and its forecast total is
// positive; a zero forecast total excludes the entry rather than scoring
// it. Per-entry accuracy is (1 - |actual-forecast|/forecast) * 100 and may
// go negative on large misses. The result is the mean over qualifying
// entries rounded to one decimal, or 0.0 when none qualify.
func PortfolioAccuracy(entries []Entry) float64 {
	var sum float64
	var count int
	for i := range entries {
		e := &entries[i]
		if !e.HasPredictions() || !e.HasActuals() {
			continue
		}
		forecast := e.ForecastTotal()
		if forecast <= 0 {
			continue
		}
		actual := e.ActualTotal()
		sum += (1 - math.Abs(actual-forecast)/forecast) * 100
		count++
	}
	if count == 0 {
		return 0.0
	}
	return round1(sum / float64(count))
}

// EntryAccuracy returns the accuracy of a single entry and whether it
// qualifies for the portfolio average.
func EntryAccuracy(e Entry) (float64, bool) {
	if !e.HasPredictions() || !e.HasActuals() {
		return 0, false
	}
	forecast := e.ForecastTotal()
	if forecast <= 0 {
		return 0, false
	}
	return (1 - math.Abs(e.ActualTotal()-forecast)/forecast) * 100, true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
