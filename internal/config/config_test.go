package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "attitude_config.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
# attitude station
MQTT_BROKER=tcp://pi:1883
TOPIC_ATTITUDE=lab/pose
TOPIC_RECORD=lab/record
I2C_BUS=2
IMU_ADDR=0x69
MAG_ADDR=0x1E
TICK_IDLE_MS=10
SERIAL_PORT=/dev/ttyUSB0
SERIAL_BAUD=9600
WEB_SERVER_PORT=9090
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MQTTBroker != "tcp://pi:1883" {
		t.Errorf("MQTTBroker = %q", cfg.MQTTBroker)
	}
	if cfg.IMUAddr != 0x69 || cfg.MagAddr != 0x1E {
		t.Errorf("addrs = 0x%X 0x%X", cfg.IMUAddr, cfg.MagAddr)
	}
	if cfg.TickIdleMS != 10 || cfg.SerialBaud != 9600 || cfg.WebServerPort != 9090 {
		t.Errorf("cfg = %+v", cfg)
	}
	// Untouched keys keep their defaults.
	if cfg.MQTTClientIDFusion != "attitude-fusion-producer" {
		t.Errorf("MQTTClientIDFusion default lost: %q", cfg.MQTTClientIDFusion)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown key", "NOT_A_KEY=1\n", "unknown config key"},
		{"malformed line", "JUSTAKEY\n", "invalid config line"},
		{"bad address", "IMU_ADDR=0xFF\n", "IMU_ADDR"},
		{"bad idle", "TICK_IDLE_MS=0\n", "TICK_IDLE_MS"},
		{"clashing addresses", "IMU_ADDR=0x1E\n", "must differ"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestGet_DefaultsWithoutInit(t *testing.T) {
	cfg := Get()
	if cfg.TopicAttitude == "" || cfg.TickIdleMS == 0 {
		t.Fatalf("defaults incomplete: %+v", cfg)
	}
}
