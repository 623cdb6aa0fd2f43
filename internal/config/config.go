// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker          string
	MQTTClientIDFusion  string
	MQTTClientIDConsole string
	MQTTClientIDWeb     string
	MQTTClientIDDisplay string

	// Topics
	TopicAttitude string
	TopicRecord   string

	// Sensor bus. Addresses are 7-bit; the filter constants themselves
	// are fixed in the fusion package and deliberately not configurable.
	I2CBus  string
	IMUAddr uint16
	MagAddr uint16

	// Timing
	TickIdleMS            int // idle inserted per tick, milliseconds
	DisplayUpdateInterval int // milliseconds

	// Serial record stream (device-side writer and host-side console)
	SerialPort string
	SerialBaud int

	// Web Server
	WebServerPort int
}

// Package-level unexported variables for the singleton: external code
// must use InitGlobal() to set and Get() to read.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := defaults()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		MQTTBroker:          "tcp://localhost:1883",
		MQTTClientIDFusion:  "attitude-fusion-producer",
		MQTTClientIDConsole: "attitude-console-subscriber",
		MQTTClientIDWeb:     "attitude-web-subscriber",
		MQTTClientIDDisplay: "attitude-display-subscriber",

		TopicAttitude: "attitude/pose",
		TopicRecord:   "attitude/record",

		I2CBus:  "1",
		IMUAddr: 0x68,
		MagAddr: 0x1E,

		TickIdleMS:            5,
		DisplayUpdateInterval: 250,

		SerialBaud: 115200,

		WebServerPort: 8080,
	}
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_FUSION":
		c.MQTTClientIDFusion = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_ATTITUDE":
		c.TopicAttitude = value
	case "TOPIC_RECORD":
		c.TopicRecord = value

	// Sensor bus
	case "I2C_BUS":
		c.I2CBus = value
	case "IMU_ADDR":
		addr, err := parseAddr(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_ADDR %q: %w", value, err)
		}
		c.IMUAddr = addr
	case "MAG_ADDR":
		addr, err := parseAddr(value)
		if err != nil {
			return fmt.Errorf("invalid MAG_ADDR %q: %w", value, err)
		}
		c.MagAddr = addr

	// Timing
	case "TICK_IDLE_MS":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid TICK_IDLE_MS %q: %w", value, err)
		}
		if val < 1 || val > 1000 {
			return fmt.Errorf("TICK_IDLE_MS must be 1-1000, got %d", val)
		}
		c.TickIdleMS = val
	case "DISPLAY_UPDATE_INTERVAL":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		if val < 50 {
			return fmt.Errorf("DISPLAY_UPDATE_INTERVAL must be >= 50ms, got %d", val)
		}
		c.DisplayUpdateInterval = val

	// Serial
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD %q: %w", value, err)
		}
		c.SerialBaud = val

	// Web
	case "WEB_SERVER_PORT":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		if val < 1 || val > 65535 {
			return fmt.Errorf("WEB_SERVER_PORT must be 1-65535, got %d", val)
		}
		c.WebServerPort = val

	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// parseAddr accepts "0x68" or "104" style 7-bit device addresses.
func parseAddr(value string) (uint16, error) {
	v, err := strconv.ParseUint(value, 0, 16)
	if err != nil {
		return 0, err
	}
	if v == 0 || v > 0x7F {
		return 0, fmt.Errorf("address 0x%X outside 7-bit range", v)
	}
	return uint16(v), nil
}

func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER must not be empty")
	}
	if c.TopicAttitude == "" || c.TopicRecord == "" {
		return fmt.Errorf("TOPIC_ATTITUDE and TOPIC_RECORD must not be empty")
	}
	if c.IMUAddr == c.MagAddr {
		return fmt.Errorf("IMU_ADDR and MAG_ADDR must differ, both are 0x%X", c.IMUAddr)
	}
	return nil
}

// InitGlobal loads the configuration file into the process-wide singleton.
// It only runs once; later calls are no-ops.
func InitGlobal(configPath string) error {
	var initErr error
	configOnce.Do(func() {
		cfg, err := Load(configPath)
		if err != nil {
			initErr = err
			return
		}
		configMu.Lock()
		globalConfig = cfg
		configMu.Unlock()
	})
	return initErr
}

// Get returns the process-wide configuration. If InitGlobal was never
// called (or failed) the built-in defaults are returned.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	if globalConfig == nil {
		return defaults()
	}
	return globalConfig
}
