// Package config loads the configuration of a relay node.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/XC-/relay"
	"gopkg.in/yaml.v2"
)

// MaxPeripherals bounds the number of peripheral slots a central may have.
const MaxPeripherals = 16

// Config represents the complete configuration of a relay node
type Config struct {
	Central    CentralConfig    `yaml:"central"`
	Peripheral PeripheralConfig `yaml:"peripheral"`
	Channels   []ChannelConfig  `yaml:"channels"`
	Log        LogConfig        `yaml:"log"`
}

// CentralConfig holds coordinator settings
type CentralConfig struct {
	PeripheralCount  int    `yaml:"peripheralCount"`
	BindPolicy       string `yaml:"bindPolicy"`
	QueueSize        int    `yaml:"queueSize"`
	EnqueueTimeoutMs int    `yaml:"enqueueTimeoutMs"`
	ControlBacklog   int    `yaml:"controlBacklog"`
}

// PeripheralConfig holds receiver settings
type PeripheralConfig struct {
	QueueSize int `yaml:"queueSize"`
}

// ChannelConfig binds a device name to a relay channel
type ChannelConfig struct {
	Channel int    `yaml:"channel"`
	Device  string `yaml:"device"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"` // empty logs to stderr
	MaxSizeMB  int    `yaml:"maxSizeMb"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   bool   `yaml:"compress"`
}

// Load loads the defaults, then path if it is not empty, then
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Default returns the default configuration: one peripheral, the
// queue sizes of the firmware and no channels.
func Default() *Config {
	return &Config{
		Central: CentralConfig{
			PeripheralCount:  1,
			BindPolicy:       relay.BindPeerAddress.String(),
			QueueSize:        5,
			EnqueueTimeoutMs: 100,
			ControlBacklog:   64,
		},
		Peripheral: PeripheralConfig{
			QueueSize: 5,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

func loadFromFile(cfg *Config, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

func applyEnvOverrides(cfg *Config) error {
	if n := os.Getenv("RELAY_PERIPHERAL_COUNT"); n != "" {
		count, err := strconv.Atoi(n)
		if err != nil {
			return fmt.Errorf("RELAY_PERIPHERAL_COUNT: %w", err)
		}
		cfg.Central.PeripheralCount = count
	}
	if p := os.Getenv("RELAY_BIND_POLICY"); p != "" {
		cfg.Central.BindPolicy = p
	}
	if l := os.Getenv("RELAY_LOG_LEVEL"); l != "" {
		cfg.Log.Level = l
	}
	return nil
}

// Validate checks the configuration for values a node cannot run with.
func (cfg *Config) Validate() error {
	c := cfg.Central
	if c.PeripheralCount < 1 || c.PeripheralCount > MaxPeripherals {
		return fmt.Errorf("peripheral count %d is outside range [1, %d]", c.PeripheralCount, MaxPeripherals)
	}
	if _, err := relay.ParseBindPolicy(c.BindPolicy); err != nil {
		return err
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("central queue size %d must be at least 1", c.QueueSize)
	}
	if c.EnqueueTimeoutMs < 0 {
		return fmt.Errorf("enqueue timeout %dms must not be negative", c.EnqueueTimeoutMs)
	}
	if c.ControlBacklog < 1 {
		return fmt.Errorf("control backlog %d must be at least 1", c.ControlBacklog)
	}
	if cfg.Peripheral.QueueSize < 1 {
		return fmt.Errorf("peripheral queue size %d must be at least 1", cfg.Peripheral.QueueSize)
	}

	channels := make(map[int]bool)
	devices := make(map[string]bool)
	for _, ch := range cfg.Channels {
		if ch.Channel < 0 || ch.Channel > 255 {
			return fmt.Errorf("channel %d is outside range [0, 255]", ch.Channel)
		}
		if ch.Device == "" {
			return fmt.Errorf("channel %d has no device", ch.Channel)
		}
		if channels[ch.Channel] {
			return fmt.Errorf("channel %d bound twice", ch.Channel)
		}
		if devices[ch.Device] {
			return fmt.Errorf("device %q bound twice", ch.Device)
		}
		channels[ch.Channel] = true
		devices[ch.Device] = true
	}
	return nil
}

// CentralOptions returns the relay options for a central.
func (cfg *Config) CentralOptions() []relay.Option {
	policy, _ := relay.ParseBindPolicy(cfg.Central.BindPolicy)
	return []relay.Option{
		relay.PeripheralCount(cfg.Central.PeripheralCount),
		relay.Bind(policy),
		relay.QueueSize(cfg.Central.QueueSize),
		relay.EnqueueTimeout(time.Duration(cfg.Central.EnqueueTimeoutMs) * time.Millisecond),
		relay.Backlog(cfg.Central.ControlBacklog),
	}
}

// PeripheralOptions returns the relay options for a peripheral.
func (cfg *Config) PeripheralOptions() []relay.Option {
	return []relay.Option{
		relay.QueueSize(cfg.Peripheral.QueueSize),
	}
}

// Bindings resolves the configured channels to devices. lookup returns
// the device for a name, or nil; a nil lookup binds plain device names.
func (cfg *Config) Bindings(lookup func(name string) relay.Device) ([]relay.Binding, error) {
	bb := make([]relay.Binding, 0, len(cfg.Channels))
	for _, ch := range cfg.Channels {
		var d relay.Device = relay.DeviceName(ch.Device)
		if lookup != nil {
			if d = lookup(ch.Device); d == nil {
				return nil, fmt.Errorf("channel %d: unknown device %q", ch.Channel, ch.Device)
			}
		}
		bb = append(bb, relay.Binding{Channel: uint8(ch.Channel), Device: d})
	}
	return bb, nil
}
