package predictorsvc

import (
	"context"

	"github.com/plangrid/matcast/core"
	"github.com/plangrid/matcast/core/forecast"
)

// perKmRates approximates per-kilometer material consumption for a
// transmission line project. Used when no model server is configured.
var perKmRates = map[string]float64{
	"steel_tons":               3.2,
	"copper_tons":              0.45,
	"cement_tons":              8.5,
	"aluminum_tons":            0.6,
	"insulators_count":         24,
	"conductors_tons":          1.1,
	"transformers_count":       0.05,
	"switchgears_count":        0.08,
	"cables_count":             12,
	"protective_relays_count":  0.4,
	"oil_tons":                 0.15,
	"foundation_concrete_tons": 6.0,
}

type staticPredictor struct{}

var _ forecast.Predictor = (*staticPredictor)(nil)

// NewStaticPredictor returns a deterministic stand-in for the model
// server, suitable for development and tests.
func NewStaticPredictor() *staticPredictor { return &staticPredictor{} }

func (p *staticPredictor) Predict(_ context.Context, features map[string]interface{}) (map[string]float64, error) {
	sizeKM, ok := core.CoerceFloat(features["project_size_km"])
	if !ok || sizeKM <= 0 {
		sizeKM = forecast.DefaultProjectSizeKM
	}
	priceIdx, ok := core.CoerceFloat(features["commodity_price_index"])
	if !ok || priceIdx <= 0 {
		priceIdx = forecast.DefaultCommodityPriceIdx
	}
	// Cost pressure mildly dampens forecast volumes.
	adj := 100 / priceIdx

	predictions := make(map[string]float64, len(perKmRates))
	for code, rate := range perKmRates {
		predictions[code] = round2(rate * sizeKM * adj)
	}
	return predictions, nil
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
