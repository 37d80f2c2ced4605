package forecast

import (
	"time"

	"github.com/plangrid/matcast/core"
)

// Entry is one forecast month for a project. Predictions and actual values
// are free-form material→quantity maps; quantities may arrive as numbers or
// numeric strings and are only coerced at aggregation time.
//
// A nil ActualValues map means no actuals were ever recorded; an empty map
// means actuals are tracked but currently zero. Aggregations rely on the
// distinction.
type Entry struct {
	ForecastMonth    string                 `json:"forecast_month" bson:"forecast_month"`
	Predictions      map[string]interface{} `json:"predictions" bson:"predictions"`
	ActualValues     map[string]interface{} `json:"actual_values" bson:"actual_values"`
	CreatedAt        time.Time              `json:"created_at" bson:"created_at"` // UTC
	UpdatedAt        time.Time              `json:"updated_at" bson:"updated_at"` // UTC
	ActualsUpdatedAt time.Time              `json:"actual_values_updated_at,omitempty" bson:"actual_values_updated_at,omitempty"`
	ActualsUpdatedBy string                 `json:"actual_values_updated_by,omitempty" bson:"actual_values_updated_by,omitempty"`
}

func (e *Entry) ForecastTotal() float64 {
	return core.SumNumeric(e.Predictions)
}

func (e *Entry) ActualTotal() float64 {
	return core.SumNumeric(e.ActualValues)
}

func (e *Entry) HasPredictions() bool {
	return len(e.Predictions) > 0
}

// HasActuals reports whether actuals were ever recorded, even as all-zero.
func (e *Entry) HasActuals() bool {
	return e.ActualValues != nil
}

// Document holds all forecast months of one project.
type Document struct {
	ProjectID string  `json:"project_id" bson:"_id"`
	Forecasts []Entry `json:"forecasts" bson:"forecasts"`
}

// Entry returns the entry for month, if any.
func (d *Document) Entry(month string) (Entry, bool) {
	for _, e := range d.Forecasts {
		if e.ForecastMonth == month {
			return e, true
		}
	}
	return Entry{}, false
}

// LatestMonth returns the lexicographically largest forecast month among
// entries carrying predictions, or "" when there is none.
func (d *Document) LatestMonth() string {
	var latest string
	for _, e := range d.Forecasts {
		if e.HasPredictions() && e.ForecastMonth > latest {
			latest = e.ForecastMonth
		}
	}
	return latest
}

// NewForecast is the prediction request payload. Feature fields left at
// zero fall back to portfolio defaults before hitting the predictor.
type NewForecast struct {
	ProjectID          string  `json:"project_id" validate:"required"`
	ForecastMonth      string  `json:"forecast_month" validate:"omitempty,yyyymm"`
	Budget             float64 `json:"budget" validate:"omitempty,gte=0"`
	TaxRate            float64 `json:"tax_rate" validate:"omitempty,gte=0"`
	ProjectSizeKM      float64 `json:"project_size_km" validate:"omitempty,gte=0"`
	ProjectStartMonth  float64 `json:"project_start_month" validate:"omitempty,gte=1,lte=12"`
	ProjectEndMonth    float64 `json:"project_end_month" validate:"omitempty,gte=1,lte=12"`
	LeadTimeDays       float64 `json:"lead_time_days" validate:"omitempty,gte=0"`
	CommodityPriceIdx  float64 `json:"commodity_price_index" validate:"omitempty,gte=0"`
	ProjectLocation    string  `json:"project_location"`
	TowerType          string  `json:"tower_type"`
	SubstationType     string  `json:"substation_type"`
	RegionRiskFlag     string  `json:"region_risk_flag"`
}

func (nf *NewForecast) Validate() error {
	nf.ProjectID = core.CleanString(nf.ProjectID)
	nf.ForecastMonth = core.CleanString(nf.ForecastMonth)
	return core.Validate.Struct(nf)
}

// NewActuals records observed consumption against a forecast month. Month
// is optional; when empty the latest forecast month is targeted.
type NewActuals struct {
	Month        string                 `json:"month" validate:"omitempty,yyyymm"`
	ActualValues map[string]interface{} `json:"actual_values" validate:"required"`
}

func (na *NewActuals) Validate() error {
	na.Month = core.CleanString(na.Month)
	return core.Validate.Struct(na)
}
