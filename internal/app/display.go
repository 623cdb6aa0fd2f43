// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/attitude_station/internal/config"
	"github.com/relabs-tech/attitude_station/internal/record"
)

// RunDisplay shows the live attitude on an SSD1306 OLED.
func RunDisplay() error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	display, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Println("display: initialized")

	var (
		mu      sync.RWMutex
		lastAtt record.Attitude
		haveAtt bool
	)

	// Connect to MQTT
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDDisplay)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicAttitude, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var a record.Attitude
		if err := json.Unmarshal(msg.Payload(), &a); err != nil {
			log.Printf("display: attitude unmarshal error: %v", err)
			return
		}
		mu.Lock()
		lastAtt = a
		haveAtt = true
		mu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		mu.RLock()
		att, ok := lastAtt, haveAtt
		mu.RUnlock()

		lines := []string{"attitude station", "waiting for data"}
		if ok {
			lines = []string{
				fmt.Sprintf("ROLL  %7.2f", att.Roll),
				fmt.Sprintf("PITCH %7.2f", att.Pitch),
				fmt.Sprintf("YAW   %7.2f", att.Yaw),
				fmt.Sprintf("HDG   %7.1f", att.Heading),
			}
		}

		if err := drawLines(display, lines); err != nil {
			log.Printf("display: update error: %v", err)
		}
	}
	return nil
}

func drawLines(display *ssd1306.Dev, lines []string) error {
	img := image1bit.NewVerticalLSB(display.Bounds())
	drawer := font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{C: image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		drawer.Dot = fixed.P(0, 13*(i+1))
		drawer.DrawString(line)
	}
	return display.Draw(display.Bounds(), img, image.Point{})
}
