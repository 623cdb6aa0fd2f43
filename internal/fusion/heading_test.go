package fusion

import (
	"math"
	"testing"
)

func TestHeading_CardinalPoints(t *testing.T) {
	tests := []struct {
		name       string
		mx, my, mz int16
		want       float64
	}{
		{"east axis", 1, 0, 0, 0},
		{"north axis", 0, 1, 0, 90},
		{"west axis", -1, 0, 0, 180},
		{"south axis wraps positive", 0, -1, 0, 270},
		{"diagonal", 1, 1, 0, 45},
		{"mz ignored", 1, 0, 12345, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Heading(tc.mx, tc.my, tc.mz)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("Heading(%d,%d,%d) = %v, want %v", tc.mx, tc.my, tc.mz, got, tc.want)
			}
		})
	}
}

func TestHeading_Range(t *testing.T) {
	for mx := int16(-3); mx <= 3; mx++ {
		for my := int16(-3); my <= 3; my++ {
			h := Heading(mx, my, 0)
			if h < 0 || h >= 360 {
				t.Fatalf("Heading(%d,%d,0) = %v out of [0,360)", mx, my, h)
			}
		}
	}
}
