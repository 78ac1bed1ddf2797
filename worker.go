package main

import (
	"context"

	"github.com/golang/glog"
)

// pixel outcomes
const (
	pixelSkipped = iota
	pixelWritten
	pixelForced // reply was malformed, written anyway
)

// WorkerResult is what one worker did with its segment.
type WorkerResult struct {
	Segment   Segment
	ConnId    int
	Completed bool
	Written   int
	Skipped   int
	Malformed int
	Err       error
}

// Worker syncs one segment over one connection: for each pixel in row-major
// order it reads the server color and writes the target only if they differ.
// Nothing else touches conn while Run is active.
type Worker struct {
	conn     Connection
	segment  Segment
	target   *Target
	pacer    Pacer
	snapshot *Snapshot
	events   emitter
}

func NewWorker(conn Connection, segment Segment, target *Target, pacer Pacer, snapshot *Snapshot, events emitter) *Worker {
	return &Worker{
		conn:     conn,
		segment:  segment,
		target:   target,
		pacer:    pacer,
		snapshot: snapshot,
		events:   events,
	}
}

// Run stops at the first I/O failure or cancellation and reports the segment
// as abandoned. There is no retry and no hand-off to other workers.
func (w *Worker) Run(ctx context.Context) WorkerResult {
	result := WorkerResult{Segment: w.segment, ConnId: w.conn.Id()}
	w.events.emit(EventSegmentStarted, SegmentData{SecId: w.segment.Id, ConnId: w.conn.Id()})

	row := make([]Color, 0, w.segment.Width())
	for y := range w.segment.Rows() {
		if err := w.pacer.Wait(ctx); err != nil {
			return w.abandon(result, err)
		}

		row = row[:0]
		rowWritten, rowSkipped := 0, 0
		for x := w.segment.TopLeft.X; x < w.segment.BotRight.X; x++ {
			if err := ctx.Err(); err != nil {
				w.flushRow(y, row)
				return w.abandon(result, err)
			}
			target := w.target.At(x, y)
			outcome, err := w.updatePixelIfChanged(x, y, target)
			if err != nil {
				w.flushRow(y, row)
				return w.abandon(result, err)
			}
			switch outcome {
			case pixelSkipped:
				rowSkipped++
				result.Skipped++
			case pixelForced:
				result.Malformed++
				fallthrough
			default:
				rowWritten++
				result.Written++
			}
			row = append(row, target)
		}
		w.flushRow(y, row)
		w.events.emit(EventRowSynced, RowSyncedData{SecId: w.segment.Id, Y: y, Written: rowWritten, Skipped: rowSkipped})
		glog.V(2).Infof("[w%d] row %d written=%d skipped=%d\n", w.conn.Id(), y, rowWritten, rowSkipped)
	}

	result.Completed = true
	w.events.emit(EventSegmentDone, SegmentData{SecId: w.segment.Id, ConnId: w.conn.Id()})
	return result
}

// updatePixelIfChanged does one get round trip and a set only when the
// server's color is unknown or differs from c.
func (w *Worker) updatePixelIfChanged(x, y int, c Color) (int, error) {
	if err := w.conn.Send(EncodeGetPixel(x, y)); err != nil {
		return 0, err
	}
	line, err := w.conn.Receive()
	if err != nil {
		return 0, err
	}
	current, ok := DecodeColor(line)
	if ok && current == c {
		return pixelSkipped, nil
	}
	if !ok {
		glog.V(2).Infof("[w%d] malformed reply for %d,%d: %q\n", w.conn.Id(), x, y, line)
	}
	if err := w.conn.Send(EncodeSetPixel(x, y, c)); err != nil {
		return 0, err
	}
	if !ok {
		return pixelForced, nil
	}
	return pixelWritten, nil
}

func (w *Worker) flushRow(y int, row []Color) {
	if w.snapshot != nil && len(row) > 0 {
		w.snapshot.SetRow(w.segment.TopLeft.X, y, row)
	}
}

func (w *Worker) abandon(result WorkerResult, err error) WorkerResult {
	result.Err = err
	glog.Warningf("[w%d] abandoning segment %s after %d written, %d skipped: %v\n", w.conn.Id(), w.segment.Id, result.Written, result.Skipped, err)
	w.events.emit(EventSegmentAbandoned, SegmentData{SecId: w.segment.Id, ConnId: w.conn.Id(), Error: err.Error()})
	return result
}
