// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bufio"
	"fmt"
	"log"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/attitude_station/internal/config"
	"github.com/relabs-tech/attitude_station/internal/record"
)

// RunSerialConsole reads the device's serial stream and prints the tick
// records and heading sentences it carries. The stream interleaves the
// tab-delimited record lines with $HCHDM sentences.
func RunSerialConsole() error {
	cfg := config.Get()
	if cfg.SerialPort == "" {
		return fmt.Errorf("serial console: SERIAL_PORT not configured")
	}

	port, err := serial.Open(serial.OpenOptions{
		PortName:        cfg.SerialPort,
		BaudRate:        uint(cfg.SerialBaud),
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	})
	if err != nil {
		return err
	}
	defer port.Close()
	log.Printf("serial console: reading %s at %d baud", cfg.SerialPort, cfg.SerialBaud)

	reader := bufio.NewReader(port)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			log.Printf("serial read error: %v", err)
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "$") {
			sentence, err := nmea.Parse(line)
			if err != nil {
				// partial sentence at open, noisy line, etc.
				continue
			}
			if sentence.DataType() == nmea.TypeHDM {
				m := sentence.(nmea.HDM)
				fmt.Printf("[HDG]  %6.1f° magnetic\n", m.Heading)
			}
			continue
		}

		rec, err := record.Parse(line)
		if err != nil {
			log.Printf("serial console: bad record: %v", err)
			continue
		}
		fmt.Printf(
			"[REC]  dt=%.4f  fil=(%6.2f %6.2f %6.2f)  drift=(%7.2f %7.2f %7.2f)\n",
			rec.DT,
			rec.AngleX, rec.AngleY, rec.AngleZ,
			rec.GyroAngleX, rec.GyroAngleY, rec.GyroAngleZ,
		)
	}
}
