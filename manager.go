package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var (
	websocketUpgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
)

// Manager exposes runs over HTTP: status, segments, snapshot, a progress
// websocket and a trigger. It is also the EventSink fanning events out to
// the websocket watchers.
type Manager struct {
	sync.RWMutex
	clients      ClientList
	orchestrator *Orchestrator
	ctx          context.Context
	running      bool
	state        *RunState
	summary      *Summary
	lastErr      error
	done         chan struct{}
}

func NewManager(ctx context.Context) *Manager {
	return &Manager{
		clients: make(ClientList),
		ctx:     ctx,
	}
}

// Attach routes the orchestrator's run state into the manager. Events are
// wired separately so the manager can be one sink among several.
func (m *Manager) Attach(o *Orchestrator) {
	m.Lock()
	defer m.Unlock()
	m.orchestrator = o
	o.onState = m.setState
}

func (m *Manager) setState(state RunState) {
	m.Lock()
	defer m.Unlock()
	m.state = &state
}

// Publish implements EventSink. A watcher whose buffer is full is dropped
// instead of slowing the workers.
func (m *Manager) Publish(event SocketEvent) {
	evtBytes, err := json.Marshal(event)
	if err != nil {
		glog.Warningf("could not marshal socket event: %v\n", err)
		return
	}

	var slow []*Client
	m.RLock()
	for client := range m.clients {
		select {
		case client.events <- evtBytes:
		default:
			slow = append(slow, client)
		}
	}
	m.RUnlock()

	for _, client := range slow {
		glog.Infof("dropping slow watcher\n")
		m.removeClient(client)
	}
}

// StartRun runs the orchestrator in the background. Only one run at a time.
func (m *Manager) StartRun() error {
	done, err := m.claim()
	if err != nil {
		return err
	}
	go func() {
		summary, err := m.orchestrator.Run(m.ctx)
		m.release(done, summary, err)
	}()
	return nil
}

// Run runs the orchestrator on the calling goroutine, holding the same
// one-run guard as StartRun.
func (m *Manager) Run(ctx context.Context) (Summary, error) {
	done, err := m.claim()
	if err != nil {
		return Summary{}, err
	}
	summary, err := m.orchestrator.Run(ctx)
	m.release(done, summary, err)
	return summary, err
}

func (m *Manager) claim() (chan struct{}, error) {
	m.Lock()
	defer m.Unlock()
	if m.running {
		return nil, ErrRunInProgress
	}
	if m.orchestrator == nil {
		return nil, errors.New("no orchestrator attached")
	}
	m.running = true
	m.done = make(chan struct{})
	return m.done, nil
}

func (m *Manager) release(done chan struct{}, summary Summary, err error) {
	m.Lock()
	defer m.Unlock()
	m.running = false
	m.lastErr = err
	if err == nil {
		m.summary = &summary
	}
	close(done)
}

// Wait blocks until the current run, if any, finishes.
func (m *Manager) Wait() {
	m.RLock()
	done := m.done
	m.RUnlock()
	if done != nil {
		<-done
	}
}

func (m *Manager) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ws", m.ServeWS)
	r.HandleFunc("/status", m.ServeStatus).Methods(http.MethodGet)
	r.HandleFunc("/segments", m.ServeSegments).Methods(http.MethodGet)
	r.HandleFunc("/snapshot", m.ServeSnapshot).Methods(http.MethodGet)
	r.HandleFunc("/run", func(w http.ResponseWriter, r *http.Request) {
		AuthorizedHandler(w, r, m, RunHandler)
	}).Methods(http.MethodPost)
	return r
}

func (manager *Manager) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocketUpgrader.Upgrade(w, r, nil)
	if err != nil {
		glog.Warningf("could not upgrade request: %v\n", err)
		return
	}

	client := NewClient(conn, manager)
	manager.addClient(client)

	go client.ReadMsgs()
	go client.WriteMsgs()
}

func (m *Manager) addClient(client *Client) {
	m.Lock()
	defer m.Unlock()

	m.clients[client] = true
	glog.V(1).Infof("watchers: %d\n", len(m.clients))
}

func (m *Manager) removeClient(client *Client) {
	m.Lock()
	defer m.Unlock()

	if _, ok := m.clients[client]; ok {
		client.connection.Close()
		close(client.events)
		delete(m.clients, client)
	}
	glog.V(1).Infof("watchers: %d\n", len(m.clients))
}

func (m *Manager) isRunning() bool {
	m.RLock()
	defer m.RUnlock()
	return m.running
}

func (m *Manager) clientCount() int {
	m.RLock()
	defer m.RUnlock()
	return len(m.clients)
}

type StatusResponse struct {
	Running bool     `json:"running"`
	Summary *Summary `json:"summary,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func (m *Manager) ServeStatus(w http.ResponseWriter, r *http.Request) {
	m.RLock()
	status := StatusResponse{Running: m.running, Summary: m.summary}
	if m.lastErr != nil {
		status.Error = m.lastErr.Error()
	}
	m.RUnlock()

	writeJson(w, status)
}

type SegmentsResponse struct {
	RunId    string    `json:"runId"`
	Segments []Segment `json:"segments"`
}

func (m *Manager) ServeSegments(w http.ResponseWriter, r *http.Request) {
	m.RLock()
	state := m.state
	m.RUnlock()
	if state == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	writeJson(w, SegmentsResponse{state.RunId, state.Segments})
}

func (m *Manager) ServeSnapshot(w http.ResponseWriter, r *http.Request) {
	m.RLock()
	state := m.state
	m.RUnlock()
	if state == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	data, err := state.Snapshot.Compressed()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("X-Canvas-Width", strconv.Itoa(state.Snapshot.Width()))
	w.Header().Set("X-Canvas-Height", strconv.Itoa(state.Snapshot.Height()))
	w.Write(data)
}

func writeJson(w http.ResponseWriter, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		glog.Warningf("could not marshal response: %v\n", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}
