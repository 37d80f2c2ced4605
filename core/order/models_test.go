package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnitPrice(t *testing.T) {
	tests := []struct {
		name     string
		material string
		dealer   string
		want     float64
	}{
		{"known material no dealer", "Insulator", "", 1200},
		{"unknown material falls back", "Unobtainium", "", 1000},
		{"premium dealer markup", "Conductor Cable", "Power Tech Solutions", 850 * 1.05},
		{"bulk dealer discount", "Busbar", "Grid Equipment Ltd", 2800 * 0.98},
		{"quality dealer markup", "Cable Tray", "Electrical Components Co", 350 * 1.02},
		{"unknown dealer no adjustment", "Switchgear", "Shady Corp", 180000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, UnitPrice(tt.material, tt.dealer), 0.001)
		})
	}
}
