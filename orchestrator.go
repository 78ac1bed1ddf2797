package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/oklog/ulid/v2"
)

// Summary of one run.
type Summary struct {
	RunId       string        `json:"runId"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	Connections int           `json:"connections"`
	Completed   int           `json:"completed"`
	Abandoned   int           `json:"abandoned"`
	Written     int           `json:"written"`
	Skipped     int           `json:"skipped"`
	Malformed   int           `json:"malformed"`
	Started     time.Time     `json:"started"`
	Duration    time.Duration `json:"duration"`
}

// RunState is published to observers as a run progresses.
type RunState struct {
	RunId    string
	Segments []Segment
	Snapshot *Snapshot
}

// Orchestrator runs one diff sync: open the pool, size the canvas, split it,
// one worker per connection, close everything.
type Orchestrator struct {
	cfg    Config
	dialer Dialer
	source ImageSource
	events EventSink
	// newPacer is swapped by tests
	newPacer func() Pacer
	// onState, when set, is told about each run once its segments are known
	onState func(RunState)
}

func NewOrchestrator(cfg Config, dialer Dialer, source ImageSource, events EventSink) *Orchestrator {
	if events == nil {
		events = nopSink{}
	}
	o := &Orchestrator{
		cfg:    cfg,
		dialer: dialer,
		source: source,
		events: events,
	}
	o.newPacer = func() Pacer { return NewIntervalPacer(o.cfg.RowDelay) }
	return o
}

// Run returns an error when the run could not start (no connections, a bad
// size reply, no target image) or when ctx was cancelled. Per-connection and per-segment failures
// show up in the summary as abandoned segments.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	summary := Summary{RunId: ulid.Make().String(), Started: time.Now()}
	em := emitter{sink: o.events, runId: summary.RunId}

	pool, err := OpenPool(ctx, o.dialer, o.cfg.Connections)
	if err != nil {
		glog.Errorf("[%s] could not open pool: %v\n", summary.RunId, err)
		return summary, err
	}
	defer pool.CloseAll()

	// cancellation force-closes every connection so blocked round trips return
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-runCtx.Done()
		if ctx.Err() != nil {
			glog.Infof("[%s] cancelled, closing connections\n", summary.RunId)
			pool.CloseAll()
		}
	}()

	conns := pool.Connections()
	summary.Connections = len(conns)

	summary.Width, summary.Height, err = o.canvasSize(conns[0])
	if err != nil {
		glog.Errorf("[%s] could not get canvas size: %v\n", summary.RunId, err)
		return summary, err
	}
	glog.Infof("[%s] canvas %dx%d over %d connections\n", summary.RunId, summary.Width, summary.Height, len(conns))

	target, err := o.source.Target(summary.Width, summary.Height)
	if err != nil {
		return summary, fmt.Errorf("could not prepare target: %w", err)
	}

	segments, err := PartitionRows(summary.Height, summary.Width, len(conns))
	if err != nil {
		return summary, err
	}

	snapshot := NewSnapshot(summary.Width, summary.Height)
	if o.onState != nil {
		o.onState(RunState{RunId: summary.RunId, Segments: segments, Snapshot: snapshot})
	}
	em.emit(EventRunStarted, RunStartedData{Width: summary.Width, Height: summary.Height, Connections: len(conns)})

	results := make([]WorkerResult, len(conns))
	var wg sync.WaitGroup
	for i, conn := range conns {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker := NewWorker(conn, segments[i], target, o.newPacer(), snapshot, em)
			results[i] = worker.Run(runCtx)
			if !results[i].Completed {
				pool.Release(conn)
			}
		}()
	}
	wg.Wait()

	for _, result := range results {
		if result.Completed {
			summary.Completed++
		} else {
			summary.Abandoned++
		}
		summary.Written += result.Written
		summary.Skipped += result.Skipped
		summary.Malformed += result.Malformed
	}
	summary.Duration = time.Since(summary.Started)
	em.emit(EventRunDone, summary)
	glog.Infof("[%s] done in %s: %d segments completed, %d abandoned, %d written, %d skipped\n",
		summary.RunId, summary.Duration, summary.Completed, summary.Abandoned, summary.Written, summary.Skipped)

	// a cancelled run still reports what it got through
	return summary, ctx.Err()
}

func (o *Orchestrator) canvasSize(conn Connection) (int, int, error) {
	if err := conn.Send(EncodeGetSize()); err != nil {
		return 0, 0, err
	}
	line, err := conn.Receive()
	if err != nil {
		return 0, 0, err
	}
	return DecodeSize(line)
}
