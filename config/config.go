package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type HTTP struct {
	Addr string `yaml:"addr"`
}

type Logging struct {
	Env       string `yaml:"env"`       // dev|prod
	Service   string `yaml:"service"`   // conference-service
	Version   string `yaml:"version"`   // v0.1.0
	Backend   string `yaml:"backend"`   // std|zap
	AddSource bool   `yaml:"addSource"` // false|true
	Debug     bool   `yaml:"debug"`     // false|true
}

type Store struct {
	Backend   string `yaml:"backend"`   // redis|memory
	RedisURL  string `yaml:"redisUrl"`  // redis://host:port/db
	TTL       string `yaml:"ttl"`       // room document + index TTL
	OpTimeout string `yaml:"opTimeout"` // per-call bound on store operations
}

type Rooms struct {
	SweepInterval  string `yaml:"sweepInterval"`  // reaper cadence
	StaleThreshold string `yaml:"staleThreshold"` // idle time before reap
}

type Config struct {
	HTTP    HTTP    `yaml:"http"`
	Logging Logging `yaml:"logging"`
	Store   Store   `yaml:"store"`
	Rooms   Rooms   `yaml:"rooms"`
}

func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "redis"
	}
	if c.Store.Backend != "redis" && c.Store.Backend != "memory" {
		return errors.New("store.backend must be redis or memory")
	}
	if c.Store.Backend == "redis" && c.Store.RedisURL == "" {
		return errors.New("store.redisUrl is required for the redis backend")
	}
	if c.Logging.Service == "" {
		c.Logging.Service = "conference-service"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	return nil
}

func (s Store) TTLDuration() time.Duration {
	return parseDurationOr(time.Hour, s.TTL)
}

func (s Store) OpTimeoutDuration() time.Duration {
	return parseDurationOr(3*time.Second, s.OpTimeout)
}

func (r Rooms) SweepIntervalDuration() time.Duration {
	return parseDurationOr(30*time.Minute, r.SweepInterval)
}

func (r Rooms) StaleThresholdDuration() time.Duration {
	return parseDurationOr(time.Hour, r.StaleThreshold)
}

func parseDurationOr(def time.Duration, s string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}
