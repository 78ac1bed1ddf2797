package main

import (
	"encoding/json"
	"errors"

	"github.com/golang/glog"
)

var ErrUnknownEvent = errors.New("unknown event type")

type SocketEvent struct {
	Type  string          `json:"type"`
	RunId string          `json:"runId"`
	Data  json.RawMessage `json:"data"`
}

type RunStartedData struct {
	Width       int `json:"width"`
	Height      int `json:"height"`
	Connections int `json:"connections"`
}

type SegmentData struct {
	SecId  string `json:"secId"`
	ConnId int    `json:"connId"`
	Error  string `json:"error,omitempty"`
}

// one event per scan line; per-pixel events would outnumber the pixels themselves
type RowSyncedData struct {
	SecId   string `json:"secId"`
	Y       int    `json:"y"`
	Written int    `json:"written"`
	Skipped int    `json:"skipped"`
}

const (
	EventRunStarted       = "run_started"
	EventSegmentStarted   = "segment_started"
	EventRowSynced        = "row_synced"
	EventSegmentDone      = "segment_done"
	EventSegmentAbandoned = "segment_abandoned"
	EventRunDone          = "run_done"
)

var knownEvents = map[string]struct{}{
	EventRunStarted:       {},
	EventSegmentStarted:   {},
	EventRowSynced:        {},
	EventSegmentDone:      {},
	EventSegmentAbandoned: {},
	EventRunDone:          {},
}

func NewSocketEvent(eventType string, runId string, data any) (SocketEvent, error) {
	if _, ok := knownEvents[eventType]; !ok {
		return SocketEvent{}, ErrUnknownEvent
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return SocketEvent{}, err
	}
	return SocketEvent{Type: eventType, RunId: runId, Data: raw}, nil
}

func (e SocketEvent) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

// EventSink receives progress events. Publish must not block the caller on a
// slow consumer.
type EventSink interface {
	Publish(event SocketEvent)
}

type nopSink struct{}

func (nopSink) Publish(SocketEvent) {}

type MultiSink []EventSink

func (ms MultiSink) Publish(event SocketEvent) {
	for _, sink := range ms {
		sink.Publish(event)
	}
}

// emitter binds a sink to one run so workers only name the event.
type emitter struct {
	sink  EventSink
	runId string
}

func (em emitter) emit(eventType string, data any) {
	event, err := NewSocketEvent(eventType, em.runId, data)
	if err != nil {
		glog.Warningf("could not build %s event: %v\n", eventType, err)
		return
	}
	em.sink.Publish(event)
}
