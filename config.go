package main

import (
	"net"
	"strconv"
	"time"

	"github.com/docopt/docopt-go"
)

const (
	DefaultPort        = 1337
	DefaultConnections = 100
	DefaultRowDelay    = 10 * time.Millisecond
	DefaultDialTimeout = 5 * time.Second
	DefaultIOTimeout   = 10 * time.Second
)

type Config struct {
	Host        string
	Port        int
	Connections int
	// RowDelay is the minimum gap between scan lines on one connection.
	RowDelay    time.Duration
	DialTimeout time.Duration
	// IOTimeout bounds each send and each receive. Zero waits forever.
	IOTimeout time.Duration
	ImagePath string
	Palette   *Palette
	RedisAddr string
	Listen    string
}

func DefaultConfig() Config {
	return Config{
		Port:        DefaultPort,
		Connections: DefaultConnections,
		RowDelay:    DefaultRowDelay,
		DialTimeout: DefaultDialTimeout,
		IOTimeout:   DefaultIOTimeout,
	}
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c Config) Validate() error {
	if c.Host == "" {
		return configError("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return configError("port %d out of range", c.Port)
	}
	if c.Connections <= 0 {
		return configError("connections must be positive, got %d", c.Connections)
	}
	if c.RowDelay < 0 || c.DialTimeout < 0 || c.IOTimeout < 0 {
		return configError("durations must not be negative")
	}
	return nil
}

// ConfigFromOpts reads the shared sync/serve options. Options docopt left
// unset keep their defaults.
func ConfigFromOpts(opts docopt.Opts) (Config, error) {
	cfg := DefaultConfig()

	cfg.Host, _ = opts.String("--host")
	cfg.ImagePath, _ = opts.String("--image")
	cfg.RedisAddr, _ = opts.String("--redis")
	cfg.Listen, _ = opts.String("--listen")

	var err error
	if s, _ := opts.String("--port"); s != "" {
		if cfg.Port, err = strconv.Atoi(s); err != nil {
			return cfg, configError("port %q: %v", s, err)
		}
	}
	if s, _ := opts.String("--connections"); s != "" {
		if cfg.Connections, err = strconv.Atoi(s); err != nil {
			return cfg, configError("connections %q: %v", s, err)
		}
	}
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"--row_delay", &cfg.RowDelay},
		{"--dial_timeout", &cfg.DialTimeout},
		{"--io_timeout", &cfg.IOTimeout},
	}
	for _, d := range durations {
		if s, _ := opts.String(d.key); s != "" {
			if *d.dst, err = time.ParseDuration(s); err != nil {
				return cfg, configError("%s %q: %v", d.key, s, err)
			}
		}
	}
	if s, _ := opts.String("--palette"); s != "" {
		if cfg.Palette, err = ParsePalette(s); err != nil {
			return cfg, configError("%v", err)
		}
	}

	return cfg, cfg.Validate()
}
