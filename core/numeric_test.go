package core

import "testing"

func TestSumNumeric(t *testing.T) {
	tests := []struct {
		name string
		m    map[string]interface{}
		want float64
	}{
		{name: "nil map", m: nil, want: 0},
		{name: "empty map", m: map[string]interface{}{}, want: 0},
		{
			name: "floats",
			m:    map[string]interface{}{"steel": 100.5, "copper": 49.5},
			want: 150,
		},
		{
			name: "mixed ints and floats",
			m:    map[string]interface{}{"steel": 100, "copper": int64(25), "cement": 24.5},
			want: 149.5,
		},
		{
			name: "numeric strings",
			m:    map[string]interface{}{"steel": "90", "copper": " 45.5 "},
			want: 135.5,
		},
		{
			name: "non-numeric entries skipped",
			m:    map[string]interface{}{"steel": 90.0, "copper": "n/a", "cement": nil, "sand": true, "gravel": ""},
			want: 90,
		},
		{
			name: "all garbage",
			m:    map[string]interface{}{"a": "??", "b": nil, "c": []interface{}{1}},
			want: 0,
		},
		{
			name: "negative values",
			m:    map[string]interface{}{"adjust": -10.0, "steel": "30"},
			want: 20,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SumNumeric(tt.m); got != tt.want {
				t.Errorf("SumNumeric() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestCoerceFloat(t *testing.T) {
	if f, ok := CoerceFloat("12.25"); !ok || f != 12.25 {
		t.Errorf("CoerceFloat(\"12.25\") = %v, %v", f, ok)
	}
	if _, ok := CoerceFloat(map[string]interface{}{}); ok {
		t.Error("CoerceFloat(map) should not convert")
	}
	if _, ok := CoerceFloat("12,25"); ok {
		t.Error("CoerceFloat(\"12,25\") should not convert")
	}
}
