// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package mag drives the HMC5883L compass that sits behind the IMU's
// auxiliary-bus bypass. It only produces raw axis words; heading math
// lives in the fusion package.
package mag

import (
	"encoding/binary"
	"fmt"

	"github.com/relabs-tech/attitude_station/internal/bus"
)

const (
	addrDefault = 0x1E

	regConfigA = 0x00
	regConfigB = 0x01
	regMode    = 0x02
	regDataXH  = 0x03
	regIDA     = 0x0A

	// 8-sample averaging, 15 Hz output.
	cfgAValue = 0x70
	// ±1.3 Ga gain.
	cfgBValue = 0x20
	// Continuous measurement.
	modeContinuous = 0x00

	idAValue = 'H'
)

type regIO interface {
	ReadReg(reg byte, n int) ([]byte, error)
	ReadRegU8(reg byte) (byte, error)
	WriteRegU8(reg, value byte) error
}

type Device struct {
	dev regIO
}

func DefaultAddress() uint16 { return addrDefault }

func New(dev *bus.Dev) (*Device, error) {
	if dev == nil {
		return nil, fmt.Errorf("mag: dev is nil")
	}
	return newWithIO(dev)
}

func newWithIO(dev regIO) (*Device, error) {
	d := &Device{dev: dev}

	id, err := dev.ReadRegU8(regIDA)
	if err != nil {
		return nil, fmt.Errorf("mag: id read failed: %w", err)
	}
	if id != idAValue {
		return nil, fmt.Errorf("mag: id=0x%02X want 0x%02X", id, idAValue)
	}

	if err := dev.WriteRegU8(regConfigA, cfgAValue); err != nil {
		return nil, fmt.Errorf("mag: config A failed: %w", err)
	}
	if err := dev.WriteRegU8(regConfigB, cfgBValue); err != nil {
		return nil, fmt.Errorf("mag: config B failed: %w", err)
	}
	if err := dev.WriteRegU8(regMode, modeContinuous); err != nil {
		return nil, fmt.Errorf("mag: mode failed: %w", err)
	}
	return d, nil
}

// ReadRaw returns the three raw axis words. The part streams its output
// registers in X, Z, Y order; callers get x, y, z.
func (d *Device) ReadRaw() (mx, my, mz int16, err error) {
	p, err := d.dev.ReadReg(regDataXH, 6)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("mag: read axes: %w", err)
	}
	mx = int16(binary.BigEndian.Uint16(p[0:2]))
	mz = int16(binary.BigEndian.Uint16(p[2:4]))
	my = int16(binary.BigEndian.Uint16(p[4:6]))
	return mx, my, mz, nil
}
