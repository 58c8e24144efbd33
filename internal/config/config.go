// Package config
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultIntervalSec = 1
	DefaultEndpoint    = "http://localhost:25800/agent/metrics"
	DefaultListenAddr  = ":25800"
)

type Config struct {
	// agent
	IntervalSec int    `yaml:"interval_sec"`
	Endpoint    string `yaml:"endpoint"`
	NoDisplay   bool   `yaml:"no_display"`
	AgentID     string `yaml:"agent_id"`
	Hostname    string `yaml:"hostname"`

	// shared
	AuthSecret string `yaml:"auth_secret"`
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`

	// server
	ListenAddr string `yaml:"listen_addr"`
	DBPath     string `yaml:"db_path"`
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, in that order. A .env file is honored if present.
func Load(path string) (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		IntervalSec: DefaultIntervalSec,
		Endpoint:    DefaultEndpoint,
		ListenAddr:  DefaultListenAddr,
		DBPath:      "sysmon.db",
		LogLevel:    "info",
		LogFormat:   "text",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyEnv() {
	if raw := os.Getenv("SYSMON_INTERVAL"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			c.IntervalSec = n
		}
	}
	if v := os.Getenv("SYSMON_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("SYSMON_AGENT_ID"); v != "" {
		c.AgentID = v
	}
	if v := os.Getenv("SYSMON_AUTH_SECRET"); v != "" {
		c.AuthSecret = v
	}
	if v := os.Getenv("SYSMON_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("SYSMON_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
}

func (c *Config) applyDefaults() {
	if c.IntervalSec <= 0 {
		c.IntervalSec = DefaultIntervalSec
	}
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	// Agent identity is per-run; no state survives a restart.
	if c.AgentID == "" {
		c.AgentID = uuid.NewString()
	}
	if c.Hostname == "" {
		if h, err := os.Hostname(); err == nil {
			c.Hostname = h
		}
	}
}

// ApplyFlags overlays command-line values on top of the loaded config. A
// malformed interval keeps the configured value instead of failing startup.
func (c *Config) ApplyFlags(interval, endpoint string, noDisplay bool) {
	if interval != "" {
		if n, err := strconv.Atoi(interval); err == nil && n > 0 {
			c.IntervalSec = n
		}
	}
	if endpoint != "" {
		c.Endpoint = endpoint
	}
	if noDisplay {
		c.NoDisplay = true
	}
}

func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalSec) * time.Second
}
