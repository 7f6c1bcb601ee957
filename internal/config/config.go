// Package config loads motion's YAML configuration.
//
// Values come from, in increasing precedence: built-in defaults, the YAML
// file, a .env file next to the config file or in the working directory,
// and MOTION_* environment variables. CLI flags are applied by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the file.
const (
	EnvMQTTURL      = "MOTION_MQTT_URL"
	EnvMQTTUsername = "MOTION_MQTT_USERNAME"
	EnvMQTTPassword = "MOTION_MQTT_PASSWORD"
	EnvServerAddr   = "MOTION_SERVER_ADDR"
	EnvJournal      = "MOTION_JOURNAL"
	EnvLogLevel     = "MOTION_LOG_LEVEL"
)

type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Journal JournalConfig `yaml:"journal"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Host    HostConfig    `yaml:"host"`
	Log     LogConfig     `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`
}

type EngineConfig struct {
	FrameInterval    Duration `yaml:"frameInterval"`
	ThrottleInterval Duration `yaml:"throttleInterval"`
	MaxCascadeSteps  int      `yaml:"maxCascadeSteps"`
}

// JournalConfig locates the SQLite message journal. An empty path disables
// journaling.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// MQTTConfig connects the bridge. An empty URL disables it.
type MQTTConfig struct {
	URL      string `yaml:"url"`
	ClientID string `yaml:"clientId"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	QoS      byte   `yaml:"qos"`
	Topics   struct {
		Requests      string `yaml:"requests"`
		Notifications string `yaml:"notifications"`
	} `yaml:"topics"`
}

// HostConfig sizes the terminal host in cells.
type HostConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var c Config
	c.Engine = EngineConfig{
		FrameInterval:    Duration(16 * time.Millisecond),
		ThrottleInterval: Duration(12 * time.Millisecond),
		MaxCascadeSteps:  1000,
	}
	c.MQTT.ClientID = "motion"
	c.MQTT.QoS = 1
	c.MQTT.Topics.Requests = "motion/requests"
	c.MQTT.Topics.Notifications = "motion/notifications"
	c.Host = HostConfig{Width: 80, Height: 24}
	c.Log.Level = "info"
	c.Server.Addr = ":8080"
	return c
}

// Load reads the config file at path (optional) and applies .env and
// environment overrides on top of the defaults.
func Load(path string) (Config, error) {
	c := Default()

	dirs := []string{"."}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return c, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := decode(f, &c); err != nil {
			return c, fmt.Errorf("config %s: %w", path, err)
		}
		dirs = append([]string{filepath.Dir(path)}, dirs...)
	}

	dotenv, err := readDotenv(dirs)
	if err != nil {
		return c, err
	}
	if err := c.applyEnv(lookupFunc(dotenv)); err != nil {
		return c, err
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Parse decodes YAML bytes over the defaults without consulting the
// environment.
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := decode(bytes.NewReader(data), &c); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func decode(r io.Reader, c *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// readDotenv returns the first .env file found in dirs. The process
// environment is left untouched.
func readDotenv(dirs []string) (map[string]string, error) {
	for _, dir := range dirs {
		p := filepath.Join(dir, ".env")
		if _, err := os.Stat(p); err != nil {
			continue
		}
		vars, err := godotenv.Read(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		return vars, nil
	}
	return nil, nil
}

// lookupFunc prefers the real environment over .env values.
func lookupFunc(dotenv map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		EnvMQTTURL:      &c.MQTT.URL,
		EnvMQTTUsername: &c.MQTT.Username,
		EnvMQTTPassword: &c.MQTT.Password,
		EnvServerAddr:   &c.Server.Addr,
		EnvJournal:      &c.Journal.Path,
		EnvLogLevel:     &c.Log.Level,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	if v, ok := lookup("MOTION_MAX_CASCADE_STEPS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MOTION_MAX_CASCADE_STEPS: %w", err)
		}
		c.Engine.MaxCascadeSteps = n
	}
	return nil
}

// Validate checks ranges the engine and hosts depend on.
func (c Config) Validate() error {
	switch {
	case c.Engine.FrameInterval <= 0:
		return fmt.Errorf("engine.frameInterval must be positive")
	case c.Engine.ThrottleInterval < 0:
		return fmt.Errorf("engine.throttleInterval must not be negative")
	case c.Engine.MaxCascadeSteps <= 0:
		return fmt.Errorf("engine.maxCascadeSteps must be positive")
	case c.MQTT.QoS > 2:
		return fmt.Errorf("mqtt.qos must be 0, 1, or 2")
	case c.Host.Width <= 0 || c.Host.Height <= 0:
		return fmt.Errorf("host size must be positive")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses the configured level name.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}
