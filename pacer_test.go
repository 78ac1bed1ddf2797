package main

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestIntervalPacerSpacesGates(t *testing.T) {
	p := NewIntervalPacer(20 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for range 4 {
		assert.Equal(t, p.Wait(ctx), nil)
	}
	// first gate is free, the other three wait an interval each
	assert.Equal(t, time.Since(start) >= 60*time.Millisecond, true)
}

func TestIntervalPacerZeroInterval(t *testing.T) {
	p := NewIntervalPacer(0)
	start := time.Now()
	for range 1000 {
		assert.Equal(t, p.Wait(context.Background()), nil)
	}
	assert.Equal(t, time.Since(start) < time.Second, true)
}

func TestIntervalPacerCancel(t *testing.T) {
	p := NewIntervalPacer(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	assert.Equal(t, p.Wait(ctx), nil)
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	assert.Equal(t, p.Wait(ctx), context.Canceled)
	assert.Equal(t, p.Wait(ctx), context.Canceled)
}
