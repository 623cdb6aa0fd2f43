// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package fusion holds the orientation core: startup bias calibration,
// the complementary-filter tilt estimator, and the compass heading.
package fusion

import (
	"log"
	"time"

	"github.com/relabs-tech/attitude_station/internal/imu"
)

// Fixed defaults. They reproduce the tuning the filter was validated
// with; changing them changes the output trajectory.
const (
	// GyroSensitivity converts raw gyro counts to °/s at the ±250 °/s
	// full-scale select.
	GyroSensitivity = 131.0

	// Alpha is the complementary-filter weight on the gyro-integrated
	// track; 1-Alpha goes to the accelerometer tilt.
	Alpha = 0.96

	// CalibrationSamples and CalibrationInterval define the startup
	// bias-capture window: N samples at fixed spacing, about a second.
	CalibrationSamples  = 10
	CalibrationInterval = 100 * time.Millisecond
)

var sleep = time.Sleep

// Offsets are the per-axis steady-state biases captured at startup while
// the device sits stationary on a level surface. That precondition is
// physical; nothing here can check it.
//
// The gyro offsets are subtracted from every subsequent rate sample. The
// accelerometer offsets are recorded for inspection only: Tick derives
// its tilt angles from the raw accelerometer sample without subtracting
// them, matching the behavior the filter was tuned against.
type Offsets struct {
	AccelX, AccelY, AccelZ float64
	GyroX, GyroY, GyroZ    float64
}

// Calibrate captures Offsets as the arithmetic mean of
// CalibrationSamples consecutive frames at CalibrationInterval spacing,
// after one discarded warm-up read. It blocks for roughly one second.
//
// A failed read contributes an all-zero sample to the mean; it is logged
// but does not abort the window, so a flaky bus at startup skews the
// offsets rather than stopping the process.
func Calibrate(read func() (imu.RawFrame, error)) Offsets {
	// Warm-up read, discarded. The first burst after bring-up can be stale.
	if _, err := read(); err != nil {
		log.Printf("calibration: warm-up read failed: %v", err)
	}

	var off Offsets
	for i := 0; i < CalibrationSamples; i++ {
		sleep(CalibrationInterval)
		f, err := read()
		if err != nil {
			log.Printf("calibration: sample %d read failed, using zero sample: %v", i+1, err)
			f = imu.RawFrame{}
		}
		off.AccelX += float64(f.Ax)
		off.AccelY += float64(f.Ay)
		off.AccelZ += float64(f.Az)
		off.GyroX += float64(f.Gx)
		off.GyroY += float64(f.Gy)
		off.GyroZ += float64(f.Gz)
	}

	n := float64(CalibrationSamples)
	off.AccelX /= n
	off.AccelY /= n
	off.AccelZ /= n
	off.GyroX /= n
	off.GyroY /= n
	off.GyroZ /= n
	return off
}
