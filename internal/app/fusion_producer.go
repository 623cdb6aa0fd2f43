// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	serial "github.com/jacobsa/go-serial/serial"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/attitude_station/internal/bus"
	"github.com/relabs-tech/attitude_station/internal/config"
	"github.com/relabs-tech/attitude_station/internal/fusion"
	"github.com/relabs-tech/attitude_station/internal/imu"
	"github.com/relabs-tech/attitude_station/internal/mag"
	"github.com/relabs-tech/attitude_station/internal/record"
)

// RunFusionProducer is the device-side control loop: one full bus read,
// decode, fusion pass and record emission per tick, single-threaded, for
// the life of the process.
func RunFusionProducer() error {
	cfg := config.Get()

	// --- sensors ---
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph host init: %w", err)
	}

	tr, closeBus, err := bus.OpenI2C(cfg.I2CBus)
	if err != nil {
		return err
	}
	defer closeBus()

	// IMU bring-up first: its bypass switch is what puts the compass on
	// the bus.
	imuDev, err := imu.New(bus.NewDev(tr, cfg.IMUAddr))
	if err != nil {
		return fmt.Errorf("imu init: %w", err)
	}
	log.Printf("imu initialized at 0x%02X", cfg.IMUAddr)

	magDev, err := mag.New(bus.NewDev(tr, cfg.MagAddr))
	if err != nil {
		return fmt.Errorf("mag init: %w", err)
	}
	log.Printf("mag initialized at 0x%02X", cfg.MagAddr)

	// --- MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDFusion)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect error: %w", token.Error())
	}
	defer client.Disconnect(250)
	log.Printf("connected to MQTT broker at %s", cfg.MQTTBroker)

	// --- optional serial record stream ---
	var serialOut io.WriteCloser
	if cfg.SerialPort != "" {
		serialOut, err = serial.Open(serial.OpenOptions{
			PortName:        cfg.SerialPort,
			BaudRate:        uint(cfg.SerialBaud),
			DataBits:        8,
			StopBits:        1,
			MinimumReadSize: 1,
			ParityMode:      serial.PARITY_NONE,
		})
		if err != nil {
			return fmt.Errorf("serial open %s: %w", cfg.SerialPort, err)
		}
		defer serialOut.Close()
		log.Printf("streaming records to %s at %d baud", cfg.SerialPort, cfg.SerialBaud)
	}

	// --- startup calibration ---
	// Keep the device stationary on a level surface for about a second.
	log.Println("calibrating, keep the sensor still and level")
	offsets := fusion.Calibrate(imuDev.ReadFrame)
	log.Printf("calibration done: gyro bias (%.2f, %.2f, %.2f) counts, accel bias (%.2f, %.2f, %.2f) counts",
		offsets.GyroX, offsets.GyroY, offsets.GyroZ,
		offsets.AccelX, offsets.AccelY, offsets.AccelZ)

	state := fusion.NewState(time.Now())
	var heading float64

	ticker := time.NewTicker(time.Duration(cfg.TickIdleMS) * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		frame, err := imuDev.ReadFrame()
		if err != nil {
			// No retry: report the tick as lost and fuse again on the next
			// good frame.
			log.Printf("frame read error, skipping tick: %v", err)
			continue
		}

		now := time.Now()
		prev := state
		state = fusion.Tick(frame, now, offsets, prev)
		accelX, accelY := fusion.AccelAngles(frame)

		if mx, my, mz, err := magDev.ReadRaw(); err != nil {
			log.Printf("mag read error, keeping last heading: %v", err)
		} else {
			heading = fusion.Heading(mx, my, mz)
		}

		rec := record.Tick{
			DT:          state.DT(prev),
			AccelAngleX: accelX,
			AccelAngleY: accelY,
			AccelAngleZ: 0,
			GyroAngleX:  state.GyroAngleX,
			GyroAngleY:  state.GyroAngleY,
			GyroAngleZ:  state.GyroAngleZ,
			AngleX:      state.AngleX,
			AngleY:      state.AngleY,
			AngleZ:      state.AngleZ,
			Heading:     heading,
		}

		publishTick(client, cfg, rec)

		if serialOut != nil {
			line := rec.Format() + "\r\n" + record.HDMSentence(heading) + "\r\n"
			if _, err := serialOut.Write([]byte(line)); err != nil {
				log.Printf("serial write error: %v", err)
			}
		}
	}
	return nil
}

func publishTick(client mqtt.Client, cfg *config.Config, rec record.Tick) {
	att := record.Attitude{
		Roll:    rec.AngleX,
		Pitch:   rec.AngleY,
		Yaw:     rec.AngleZ,
		Heading: rec.Heading,
	}

	if payload, err := json.Marshal(att); err != nil {
		log.Printf("json marshal error (attitude): %v", err)
	} else if token := client.Publish(cfg.TopicAttitude, 0, true, payload); token.Wait() && token.Error() != nil {
		log.Printf("MQTT publish error (attitude): %v", token.Error())
	}

	if payload, err := json.Marshal(rec); err != nil {
		log.Printf("json marshal error (record): %v", err)
	} else if token := client.Publish(cfg.TopicRecord, 0, false, payload); token.Wait() && token.Error() != nil {
		log.Printf("MQTT publish error (record): %v", token.Error())
	}
}
