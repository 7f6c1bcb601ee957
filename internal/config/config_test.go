package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 16*time.Millisecond, c.Engine.FrameInterval.Std())
	assert.Equal(t, 12*time.Millisecond, c.Engine.ThrottleInterval.Std())
	assert.Equal(t, 1000, c.Engine.MaxCascadeSteps)
	assert.Empty(t, c.Journal.Path)
	assert.Empty(t, c.MQTT.URL)
	assert.Equal(t, ":8080", c.Server.Addr)
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte(`
engine:
  frameInterval: 33ms
  maxCascadeSteps: 50
journal:
  path: motion.db
mqtt:
  url: tcp://localhost:1883
  qos: 2
  topics:
    requests: tree/requests
log:
  level: debug
`))
	require.NoError(t, err)
	assert.Equal(t, 33*time.Millisecond, c.Engine.FrameInterval.Std())
	assert.Equal(t, 12*time.Millisecond, c.Engine.ThrottleInterval.Std(), "unset keys keep defaults")
	assert.Equal(t, 50, c.Engine.MaxCascadeSteps)
	assert.Equal(t, "motion.db", c.Journal.Path)
	assert.Equal(t, byte(2), c.MQTT.QoS)
	assert.Equal(t, "tree/requests", c.MQTT.Topics.Requests)
	assert.Equal(t, "motion/notifications", c.MQTT.Topics.Notifications)

	lvl, err := c.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestParse_Empty(t *testing.T) {
	c, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown field", "engine:\n  fps: 60\n", "field fps not found"},
		{"bad duration", "engine:\n  frameInterval: soon\n", "invalid duration"},
		{"missing unit", "engine:\n  frameInterval: 16\n", "missing unit"},
		{"zero frame", "engine:\n  frameInterval: 0s\n", "frameInterval must be positive"},
		{"qos", "mqtt:\n  qos: 3\n", "mqtt.qos"},
		{"level", "log:\n  level: loud\n", "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "motion.yaml", "server:\n  addr: :9000\nmqtt:\n  url: tcp://file:1883\n")

	t.Setenv(EnvMQTTURL, "tcp://env:1883")
	t.Setenv(EnvJournal, "env.db")

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "tcp://env:1883", c.MQTT.URL)
	assert.Equal(t, "env.db", c.Journal.Path)
	assert.Equal(t, ":9000", c.Server.Addr)
}

func TestLoad_Dotenv(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "motion.yaml", "")
	writeFile(t, dir, ".env", "MOTION_MQTT_USERNAME=tree\nMOTION_MQTT_PASSWORD=secret\nMOTION_SERVER_ADDR=:7000\n")

	t.Setenv(EnvServerAddr, ":7100")

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "tree", c.MQTT.Username)
	assert.Equal(t, "secret", c.MQTT.Password)
	assert.Equal(t, ":7100", c.Server.Addr, "environment wins over .env")
	_, set := os.LookupEnv(EnvMQTTUsername)
	assert.False(t, set, ".env must not leak into the process environment")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open config")
}

func TestLoad_BadCascadeEnv(t *testing.T) {
	t.Setenv("MOTION_MAX_CASCADE_STEPS", "many")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MOTION_MAX_CASCADE_STEPS")
}
