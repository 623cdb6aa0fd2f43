// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"fmt"
	"time"

	"github.com/relabs-tech/attitude_station/internal/bus"
)

var sleep = time.Sleep

// MPU-6050 register addresses used here. Full map with bit fields lives in
// registers.go for the debug tool.
const (
	addrDefault = 0x68

	regSmplrtDiv   = 0x19
	regConfig      = 0x1A
	regGyroConfig  = 0x1B
	regAccelConfig = 0x1C
	regIntPinCfg   = 0x37
	regAccelXoutH  = 0x3B
	regUserCtrl    = 0x6A
	regPwrMgmt1    = 0x6B
	regWhoAmI      = 0x75

	whoAmIVal = 0x68

	bitDeviceReset = 0x80
	bitBypassEn    = 0x02
)

// regIO is the register-level surface the driver needs; bus.Dev satisfies
// it and tests provide fakes.
type regIO interface {
	ReadReg(reg byte, n int) ([]byte, error)
	ReadRegU8(reg byte) (byte, error)
	WriteRegU8(reg, value byte) error
}

// Device is an MPU-6050 configured for fusion use: gyro ±250 °/s
// (131 counts per °/s), accel ±2 g, auxiliary bus in bypass so the
// compass behind it answers at its own address.
type Device struct {
	dev regIO
}

func DefaultAddress() uint16 { return addrDefault }

func New(dev *bus.Dev) (*Device, error) {
	if dev == nil {
		return nil, fmt.Errorf("imu: dev is nil")
	}
	return newWithIO(dev)
}

func newWithIO(dev regIO) (*Device, error) {
	d := &Device{dev: dev}

	who, err := dev.ReadRegU8(regWhoAmI)
	if err != nil {
		return nil, fmt.Errorf("imu: whoami read failed: %w", err)
	}
	if who != whoAmIVal {
		return nil, fmt.Errorf("imu: whoami=0x%02X want 0x%02X", who, whoAmIVal)
	}

	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Device) init() error {
	// Reset, then wake out of sleep with the internal oscillator.
	if err := d.dev.WriteRegU8(regPwrMgmt1, bitDeviceReset); err != nil {
		return fmt.Errorf("imu: reset failed: %w", err)
	}
	sleep(100 * time.Millisecond)
	if err := d.dev.WriteRegU8(regPwrMgmt1, 0x00); err != nil {
		return fmt.Errorf("imu: wake failed: %w", err)
	}

	// FS_SEL=0 and AFS_SEL=0: the fixed full-scale selects behind the
	// 131 counts/°/s and 16384 counts/g sensitivities.
	if err := d.dev.WriteRegU8(regGyroConfig, 0x00); err != nil {
		return fmt.Errorf("imu: gyro config failed: %w", err)
	}
	if err := d.dev.WriteRegU8(regAccelConfig, 0x00); err != nil {
		return fmt.Errorf("imu: accel config failed: %w", err)
	}

	// Hand the auxiliary bus to the host: master mode off, bypass on.
	// The compass is reachable at its own address only after this.
	if err := d.dev.WriteRegU8(regUserCtrl, 0x00); err != nil {
		return fmt.Errorf("imu: user ctrl failed: %w", err)
	}
	if err := d.dev.WriteRegU8(regIntPinCfg, bitBypassEn); err != nil {
		return fmt.Errorf("imu: bypass enable failed: %w", err)
	}
	return nil
}

// ReadFrame reads the full accel/temp/gyro burst in one transaction and
// decodes it. One burst, one consistent sample set.
func (d *Device) ReadFrame() (RawFrame, error) {
	p, err := d.dev.ReadReg(regAccelXoutH, FrameLen)
	if err != nil {
		return RawFrame{}, fmt.Errorf("imu: read frame: %w", err)
	}
	return DecodeFrame(p)
}
