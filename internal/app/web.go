// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/attitude_station/internal/config"
	"github.com/relabs-tech/attitude_station/internal/record"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// RunWeb serves the latest attitude over a JSON endpoint and pushes live
// updates to websocket clients.
func RunWeb() error {
	cfg := config.Get()

	var (
		mu      sync.RWMutex
		lastAtt record.Attitude
		haveAtt bool
	)

	// 1) Subscribe to the attitude topic and keep the latest value.
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicAttitude, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var a record.Attitude
		if err := json.Unmarshal(msg.Payload(), &a); err != nil {
			log.Printf("MQTT payload unmarshal error: %v", err)
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
	log.Printf("subscribed to MQTT topic %s", cfg.TopicAttitude)

	// 2) JSON API endpoint: latest attitude.
	http.HandleFunc("/api/attitude", func(w http.ResponseWriter, r *http.Request) {
		mu.RLock()
		defer mu.RUnlock()

		if !haveAtt {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(lastAtt); err != nil {
			log.Printf("json encode error: %v", err)
		}
	})

	// 3) Websocket live push at the display cadence.
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket upgrade error: %v", err)
			return
		}
		defer conn.Close()

		ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
		defer ticker.Stop()

		for range ticker.C {
			mu.RLock()
			att, ok := lastAtt, haveAtt
			mu.RUnlock()
			if !ok {
				continue
			}
			if err := conn.WriteJSON(att); err != nil {
				// client went away
				return
			}
		}
	})

	// 4) Static files from ./web as the root.
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}
