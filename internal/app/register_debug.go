// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"log"
	"time"

	"periph.io/x/host/v3"

	"github.com/relabs-tech/attitude_station/internal/bus"
	"github.com/relabs-tech/attitude_station/internal/config"
	"github.com/relabs-tech/attitude_station/internal/imu"
)

// RunRegisterDebug dumps the IMU's known registers with their metadata,
// once or repeatedly. Useful when bring-up misbehaves and the question is
// what the silicon actually holds.
func RunRegisterDebug(watch bool, interval time.Duration) error {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph host init: %w", err)
	}

	tr, closeBus, err := bus.OpenI2C(cfg.I2CBus)
	if err != nil {
		return err
	}
	defer closeBus()

	dev, err := imu.New(bus.NewDev(tr, cfg.IMUAddr))
	if err != nil {
		return fmt.Errorf("imu init: %w", err)
	}
	log.Printf("imu initialized at 0x%02X", cfg.IMUAddr)

	for {
		dumpRegisters(dev)
		if !watch {
			return nil
		}
		time.Sleep(interval)
	}
}

func dumpRegisters(dev *imu.Device) {
	fmt.Printf("---- %s ----\n", time.Now().Format(time.RFC3339))
	for _, info := range imu.RegisterMap() {
		val, err := dev.ReadRegister(info.Address)
		if err != nil {
			fmt.Printf("0x%02X %-14s <read error: %v>\n", info.Address, info.Name, err)
			continue
		}
		fmt.Printf("0x%02X %-14s = 0x%02X  %s\n", info.Address, info.Name, val, info.Description)
		for _, bf := range info.BitFields {
			fmt.Printf("      [%s] %s: %s\n", bf.Bits, bf.Name, bf.Description)
		}
	}
}
