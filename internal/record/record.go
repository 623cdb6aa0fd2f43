// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package record defines the per-tick output record and its text
// encodings: one tab-delimited line per tick for the serial/console
// stream, JSON for MQTT and the web API, and an NMEA-style heading
// sentence for NMEA-aware listeners.
package record

import (
	"fmt"
	"strconv"
	"strings"
)

// Tick is one fused output record. Field order is fixed: elapsed time,
// the three accelerometer tilt angles, the three uncorrected
// gyro-integration angles, the three filtered angles, then the compass
// heading.
type Tick struct {
	DT float64 `json:"dt"`

	AccelAngleX float64 `json:"accel_angle_x"`
	AccelAngleY float64 `json:"accel_angle_y"`
	AccelAngleZ float64 `json:"accel_angle_z"`

	GyroAngleX float64 `json:"gyro_angle_x"`
	GyroAngleY float64 `json:"gyro_angle_y"`
	GyroAngleZ float64 `json:"gyro_angle_z"`

	AngleX float64 `json:"angle_x"`
	AngleY float64 `json:"angle_y"`
	AngleZ float64 `json:"angle_z"`

	Heading float64 `json:"heading"`
}

// Attitude is the compact orientation payload shared by the MQTT topics,
// the web API, and the displays.
type Attitude struct {
	Roll    float64 `json:"roll"`
	Pitch   float64 `json:"pitch"`
	Yaw     float64 `json:"yaw"`
	Heading float64 `json:"heading"`
}

const fieldCount = 11

// Format renders the record as one tab-delimited line, fields in the
// documented order, without a trailing newline.
func (t Tick) Format() string {
	fields := []float64{
		t.DT,
		t.AccelAngleX, t.AccelAngleY, t.AccelAngleZ,
		t.GyroAngleX, t.GyroAngleY, t.GyroAngleZ,
		t.AngleX, t.AngleY, t.AngleZ,
		t.Heading,
	}
	parts := make([]string, len(fields))
	parts[0] = strconv.FormatFloat(fields[0], 'f', 4, 64)
	for i := 1; i < len(fields); i++ {
		parts[i] = strconv.FormatFloat(fields[i], 'f', 2, 64)
	}
	return strings.Join(parts, "\t")
}

// Parse is the inverse of Format for host-side consoles.
func Parse(line string) (Tick, error) {
	parts := strings.Split(strings.TrimSpace(line), "\t")
	if len(parts) != fieldCount {
		return Tick{}, fmt.Errorf("record: %d fields, want %d", len(parts), fieldCount)
	}
	vals := make([]float64, fieldCount)
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return Tick{}, fmt.Errorf("record: field %d %q: %w", i, p, err)
		}
		vals[i] = v
	}
	return Tick{
		DT:          vals[0],
		AccelAngleX: vals[1],
		AccelAngleY: vals[2],
		AccelAngleZ: vals[3],
		GyroAngleX:  vals[4],
		GyroAngleY:  vals[5],
		GyroAngleZ:  vals[6],
		AngleX:      vals[7],
		AngleY:      vals[8],
		AngleZ:      vals[9],
		Heading:     vals[10],
	}, nil
}

// HDMSentence renders the heading as a standard $HCHDM magnetic-heading
// sentence with checksum, so NMEA-aware listeners on the serial stream
// can pick it up without knowing the record layout.
func HDMSentence(heading float64) string {
	body := fmt.Sprintf("HCHDM,%.1f,M", heading)
	var sum byte
	for i := 0; i < len(body); i++ {
		sum ^= body[i]
	}
	return fmt.Sprintf("$%s*%02X", body, sum)
}
