package main

import (
	"context"
	"time"
)

// Pacer gates a worker between scan lines to bound its command rate.
type Pacer interface {
	Wait(ctx context.Context) error
}

// IntervalPacer lets at most one gate through per interval. The first Wait
// returns immediately.
type IntervalPacer struct {
	interval time.Duration
	last     time.Time
}

func NewIntervalPacer(interval time.Duration) *IntervalPacer {
	return &IntervalPacer{interval: interval}
}

func (p *IntervalPacer) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.interval <= 0 {
		return nil
	}
	now := time.Now()
	if !p.last.IsZero() {
		if wait := p.last.Add(p.interval).Sub(now); wait > 0 {
			timer := time.NewTimer(wait)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case now = <-timer.C:
			}
		}
	}
	p.last = now
	return nil
}
