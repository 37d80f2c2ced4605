package forecast

import (
	"math/rand"
	"sort"
	"time"
)

// TrendPoint is one month of the dashboard trend series. Forecast and
// Actual are averages over the month's contributing entries. Estimated
// marks points whose actual average includes synthetic demo fills rather
// than recorded consumption only.
type TrendPoint struct {
	Month         string  `json:"month"` // short name, eg "Mar"
	Forecast      float64 `json:"forecast"`
	Actual        float64 `json:"actual"`
	ForecastCount int     `json:"forecast_count"`
	ActualCount   int     `json:"actual_count"`
	Estimated     bool    `json:"estimated"`
}

type monthBucket struct {
	forecastTotal float64
	actualTotal   float64
	forecastCount int
	actualCount   int
	estimated     bool
}

// syntheticVariation spreads a demo fill uniformly within ±15% of the
// forecast total. Overridable in tests.
var syntheticVariation = func() float64 {
	return 0.85 + rand.Float64()*0.30
}

// trendPoints buckets entries by their full YYYY-MM month and emits the
// series sorted chronologically, so the same calendar month of different
// years stays distinct. Months that fail to parse are skipped. Entries
// without recorded actuals are filled synthetically in demo mode and
// otherwise contribute to forecast averages only. An empty entry set
// yields an empty series, never a fabricated one.
func (svc *Service) trendPoints(entries []Entry) []TrendPoint {
	buckets := make(map[string]*monthBucket)
	for i := range entries {
		e := &entries[i]
		if !e.HasPredictions() {
			continue
		}
		month := e.ForecastMonth
		b, ok := buckets[month]
		if !ok {
			b = &monthBucket{}
			buckets[month] = b
		}

		forecast := e.ForecastTotal()
		b.forecastTotal += forecast
		b.forecastCount++

		switch {
		case len(e.ActualValues) > 0:
			b.actualTotal += e.ActualTotal()
			b.actualCount++
		case svc.conf.DemoMode:
			b.actualTotal += forecast * syntheticVariation()
			b.actualCount++
			b.estimated = true
		}
	}

	months := make([]string, 0, len(buckets))
	for month := range buckets {
		months = append(months, month)
	}
	sort.Strings(months)

	points := make([]TrendPoint, 0, len(months))
	for _, month := range months {
		parsed, err := time.Parse("2006-01", month)
		if err != nil {
			svc.log.Warn("skipping unparseable forecast month", "month", month, "err", err)
			continue
		}
		b := buckets[month]

		var avgForecast, avgActual float64
		if b.forecastCount > 0 {
			avgForecast = b.forecastTotal / float64(b.forecastCount)
		}
		if b.actualCount > 0 {
			avgActual = b.actualTotal / float64(b.actualCount)
		}
		points = append(points, TrendPoint{
			Month:         parsed.Format("Jan"),
			Forecast:      round1(avgForecast),
			Actual:        round1(avgActual),
			ForecastCount: b.forecastCount,
			ActualCount:   b.actualCount,
			Estimated:     b.estimated,
		})
	}
	return points
}
