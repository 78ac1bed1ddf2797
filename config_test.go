package main

import (
	"errors"
	"testing"
	"time"

	"github.com/docopt/docopt-go"
	"github.com/go-playground/assert/v2"
)

func TestConfigFromOptsDefaults(t *testing.T) {
	cfg, err := ConfigFromOpts(docopt.Opts{"--host": "canvas.local", "--image": "img.png"})
	assert.Equal(t, err, nil)
	assert.Equal(t, cfg.Host, "canvas.local")
	assert.Equal(t, cfg.Port, DefaultPort)
	assert.Equal(t, cfg.Connections, DefaultConnections)
	assert.Equal(t, cfg.RowDelay, DefaultRowDelay)
	assert.Equal(t, cfg.Addr(), "canvas.local:1337")
	assert.Equal(t, cfg.Palette == nil, true)
}

func TestConfigFromOpts(t *testing.T) {
	cfg, err := ConfigFromOpts(docopt.Opts{
		"--host":         "::1",
		"--port":         "4242",
		"--connections":  "8",
		"--row_delay":    "25ms",
		"--dial_timeout": "1s",
		"--io_timeout":   "0s",
		"--palette":      "000000,ffffff",
		"--redis":        "localhost:6379",
		"--listen":       ":8080",
	})
	assert.Equal(t, err, nil)
	assert.Equal(t, cfg.Addr(), "[::1]:4242")
	assert.Equal(t, cfg.Connections, 8)
	assert.Equal(t, cfg.RowDelay, 25*time.Millisecond)
	assert.Equal(t, cfg.DialTimeout, time.Second)
	assert.Equal(t, cfg.IOTimeout, time.Duration(0))
	assert.Equal(t, cfg.Palette.Len(), 2)
	assert.Equal(t, cfg.RedisAddr, "localhost:6379")
	assert.Equal(t, cfg.Listen, ":8080")
}

func TestConfigInvalid(t *testing.T) {
	cases := []docopt.Opts{
		{},
		{"--host": "h", "--port": "0"},
		{"--host": "h", "--port": "70000"},
		{"--host": "h", "--port": "http"},
		{"--host": "h", "--connections": "0"},
		{"--host": "h", "--connections": "many"},
		{"--host": "h", "--row_delay": "-1s"},
		{"--host": "h", "--io_timeout": "soon"},
		{"--host": "h", "--palette": "fff"},
	}
	for _, opts := range cases {
		_, err := ConfigFromOpts(opts)
		assert.Equal(t, errors.Is(err, ErrConfig), true)
	}
}
