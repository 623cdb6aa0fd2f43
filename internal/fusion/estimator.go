// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package fusion

import (
	"math"
	"time"

	"github.com/relabs-tech/attitude_station/internal/imu"
)

const degPerRad = 180.0 / math.Pi

// State is the fusion output after one tick: the filtered angles and a
// pure gyro-integration track kept alongside them to observe drift. It is
// a single-slot rolling value; each Tick reads the previous State and
// returns the next one, the caller owns the slot.
type State struct {
	// TimeMS is the sample timestamp in milliseconds.
	TimeMS int64 `json:"time_ms"`

	// Complementary-filtered angles in degrees. Z has no accelerometer
	// reference on this sensor, so the z channel is gyro integration even
	// here.
	AngleX float64 `json:"angle_x"`
	AngleY float64 `json:"angle_y"`
	AngleZ float64 `json:"angle_z"`

	// Drift reference: gyro integration with no accelerometer correction.
	// Accumulates bias error without bound; kept only for comparison.
	GyroAngleX float64 `json:"gyro_angle_x"`
	GyroAngleY float64 `json:"gyro_angle_y"`
	GyroAngleZ float64 `json:"gyro_angle_z"`
}

// NewState returns the all-zero starting state stamped at now.
func NewState(now time.Time) State {
	return State{TimeMS: now.UnixMilli()}
}

// DT returns the elapsed time in seconds from prev to s.
func (s State) DT(prev State) float64 {
	return float64(s.TimeMS-prev.TimeMS) / 1000.0
}

// AccelAngles computes the tilt angles in degrees implied by one
// accelerometer sample, from the direction of gravity alone. The sensor
// gives no accelerometer reference for z. The raw sample is used as-is;
// the captured accelerometer bias is deliberately not subtracted.
func AccelAngles(f imu.RawFrame) (x, y float64) {
	ax := float64(f.Ax)
	ay := float64(f.Ay)
	az := float64(f.Az)
	x = math.Atan(ay/math.Sqrt(ax*ax+az*az)) * degPerRad
	y = math.Atan(-ax/math.Sqrt(ay*ay+az*az)) * degPerRad
	return x, y
}

// Tick advances the estimate by one sample.
//
// The gyro term integrates on top of the previous *filtered* angle, so
// the accelerometer correction applied last tick carries into this one;
// the drift reference integrates on its own previous value and never sees
// the accelerometer. The x/y outputs blend the two sources with Alpha,
// z is gyro-only.
func Tick(f imu.RawFrame, now time.Time, off Offsets, prev State) State {
	rateX := (float64(f.Gx) - off.GyroX) / GyroSensitivity
	rateY := (float64(f.Gy) - off.GyroY) / GyroSensitivity
	rateZ := (float64(f.Gz) - off.GyroZ) / GyroSensitivity

	accelX, accelY := AccelAngles(f)

	next := State{TimeMS: now.UnixMilli()}
	dt := next.DT(prev)

	gyroX := rateX*dt + prev.AngleX
	gyroY := rateY*dt + prev.AngleY

	next.GyroAngleX = rateX*dt + prev.GyroAngleX
	next.GyroAngleY = rateY*dt + prev.GyroAngleY
	next.GyroAngleZ = rateZ*dt + prev.GyroAngleZ

	next.AngleX = Alpha*gyroX + (1-Alpha)*accelX
	next.AngleY = Alpha*gyroY + (1-Alpha)*accelY
	next.AngleZ = rateZ*dt + prev.AngleZ

	return next
}
