// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package fusion

import "math"

// Heading converts raw magnetometer words into a compass heading in
// degrees [0,360). The projection is 2D: mz is accepted for symmetry with
// the sensor read but takes no part in the formula, so the value is only
// meaningful with the sensor near level (no tilt compensation).
func Heading(mx, my, mz int16) float64 {
	h := math.Atan2(float64(my), float64(mx))
	if h < 0 {
		h += 2 * math.Pi
	}
	return h * degPerRad
}
