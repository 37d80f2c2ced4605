package core

import "strconv"

// CoerceFloat converts an arbitrary decoded JSON/BSON value to a float64.
// Numbers and numeric strings convert; everything else (nil, booleans,
// empty/garbage strings, composites) reports false.
func CoerceFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case string:
		s := CleanString(val)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// SumNumeric sums all numeric-convertible values in m.
// Non-convertible values contribute zero; it never fails.
// This is the single ingestion primitive for predictions and actuals so that
// heterogeneous payloads (numbers vs. numeric strings) always sum identically.
func SumNumeric(m map[string]interface{}) float64 {
	var total float64
	for _, v := range m {
		if f, ok := CoerceFloat(v); ok {
			total += f
		}
	}
	return total
}
