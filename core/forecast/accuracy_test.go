package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPortfolioAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		want    float64
	}{
		{"no entries", nil, 0.0},
		{
			"matching example",
			[]Entry{{
				ForecastMonth: "2024-01",
				Predictions:   map[string]interface{}{"steel": 100.0, "copper": 50.0},
				ActualValues:  map[string]interface{}{"steel": 90.0, "copper": 45.0},
			}},
			90.0, // (1 - |135-150|/150) * 100
		},
		{
			"nil actuals excluded",
			[]Entry{{
				ForecastMonth: "2024-01",
				Predictions:   map[string]interface{}{"steel": 100.0},
			}},
			0.0,
		},
		{
			"empty actuals still count",
			[]Entry{{
				ForecastMonth: "2024-01",
				Predictions:   map[string]interface{}{"steel": 100.0},
				ActualValues:  map[string]interface{}{},
			}},
			0.0, // |0-100|/100 -> accuracy 0, counted
		},
		{
			"zero forecast total excluded",
			[]Entry{
				{
					ForecastMonth: "2024-01",
					Predictions:   map[string]interface{}{"steel": 0.0},
					ActualValues:  map[string]interface{}{"steel": 50.0},
				},
				{
					ForecastMonth: "2024-02",
					Predictions:   map[string]interface{}{"steel": 100.0},
					ActualValues:  map[string]interface{}{"steel": 80.0},
				},
			},
			80.0, // only the second entry counts
		},
		{
			"empty predictions excluded regardless of actuals",
			[]Entry{{
				ForecastMonth: "2024-01",
				Predictions:   map[string]interface{}{},
				ActualValues:  map[string]interface{}{"steel": 50.0},
			}},
			0.0,
		},
		{
			"negative accuracy not clamped",
			[]Entry{{
				ForecastMonth: "2024-01",
				Predictions:   map[string]interface{}{"steel": 100.0},
				ActualValues:  map[string]interface{}{"steel": 350.0},
			}},
			-150.0,
		},
		{
			"mean rounded to one decimal",
			[]Entry{
				{
					ForecastMonth: "2024-01",
					Predictions:   map[string]interface{}{"steel": 100.0},
					ActualValues:  map[string]interface{}{"steel": 90.0},
				},
				{
					ForecastMonth: "2024-02",
					Predictions:   map[string]interface{}{"steel": 100.0},
					ActualValues:  map[string]interface{}{"steel": 95.5},
				},
			},
			92.8, // (90 + 95.5) / 2 = 92.75 -> 92.8
		},
		{
			"numeric strings coerced",
			[]Entry{{
				ForecastMonth: "2024-01",
				Predictions:   map[string]interface{}{"steel": "100", "junk": "n/a"},
				ActualValues:  map[string]interface{}{"steel": "90"},
			}},
			90.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PortfolioAccuracy(tt.entries))
		})
	}
}

func TestEntryAccuracy(t *testing.T) {
	e := Entry{
		Predictions:  map[string]interface{}{"steel": 150.0},
		ActualValues: map[string]interface{}{"steel": 135.0},
	}
	acc, ok := EntryAccuracy(e)
	assert.True(t, ok)
	assert.InDelta(t, 90.0, acc, 0.001)

	_, ok = EntryAccuracy(Entry{Predictions: map[string]interface{}{"steel": 150.0}})
	assert.False(t, ok)
}
