// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/attitude_station/internal/config"
	"github.com/relabs-tech/attitude_station/internal/record"
)

// RunConsoleMQTT prints live attitude and tick records from the broker.
func RunConsoleMQTT() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	attToken := client.Subscribe(cfg.TopicAttitude, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var a record.Attitude
		if err := json.Unmarshal(msg.Payload(), &a); err != nil {
			log.Printf("console: attitude unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[ATT]  ROLL=%6.2f  PITCH=%6.2f  YAW=%6.2f  HDG=%6.2f\n",
			a.Roll, a.Pitch, a.Yaw, a.Heading,
		)
	})
	attToken.Wait()
	if attToken.Error() != nil {
		return attToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicAttitude)

	recToken := client.Subscribe(cfg.TopicRecord, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r record.Tick
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.Printf("console: record unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[REC]  dt=%.4f  acc=(%6.2f %6.2f %6.2f)  gyro=(%7.2f %7.2f %7.2f)  fil=(%6.2f %6.2f %6.2f)  hdg=%6.2f\n",
			r.DT,
			r.AccelAngleX, r.AccelAngleY, r.AccelAngleZ,
			r.GyroAngleX, r.GyroAngleY, r.GyroAngleZ,
			r.AngleX, r.AngleY, r.AngleZ,
			r.Heading,
		)
	})
	recToken.Wait()
	if recToken.Error() != nil {
		return recToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicRecord)

	// Block until interrupted; the subscriptions do the work.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("console: shutting down")
	return nil
}
