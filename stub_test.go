package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

func init() {
	flag.Set("logtostderr", "true")
	flag.Set("stderrthreshold", "INFO")
	flag.Set("v", "0")
}

type stubOp struct {
	ConnId int
	Cmd    string
	X, Y   int
}

// stubCanvas is an in-memory canvas server speaking the line protocol.
type stubCanvas struct {
	sync.Mutex
	width, height int
	pix           []Color
	ops           []stubOp
	sets          int
	// replies to override for specific gets
	replies map[Point]string
	// when set, replaces the SIZE reply
	sizeReply string
}

func newStubCanvas(width, height int, fill Color) *stubCanvas {
	pix := make([]Color, width*height)
	for i := range pix {
		pix[i] = fill
	}
	return &stubCanvas{width: width, height: height, pix: pix, replies: make(map[Point]string)}
}

func (s *stubCanvas) at(x, y int) Color {
	s.Lock()
	defer s.Unlock()
	return s.pix[y*s.width+x]
}

func (s *stubCanvas) setCount() int {
	s.Lock()
	defer s.Unlock()
	return s.sets
}

func (s *stubCanvas) opsFor(connId int) []stubOp {
	s.Lock()
	defer s.Unlock()
	var ops []stubOp
	for _, op := range s.ops {
		if op.ConnId == connId {
			ops = append(ops, op)
		}
	}
	return ops
}

// handle applies one command line and returns the reply, if any.
func (s *stubCanvas) handle(connId int, line string) (string, bool) {
	s.Lock()
	defer s.Unlock()

	fields := strings.Fields(line)
	if len(fields) == 1 && fields[0] == "SIZE" {
		s.ops = append(s.ops, stubOp{ConnId: connId, Cmd: "SIZE"})
		if s.sizeReply != "" {
			return s.sizeReply, true
		}
		return fmt.Sprintf("SIZE %d %d", s.width, s.height), true
	}
	if len(fields) < 3 || fields[0] != "PX" {
		return "", false
	}
	x, errX := strconv.Atoi(fields[1])
	y, errY := strconv.Atoi(fields[2])
	if errX != nil || errY != nil || x < 0 || y < 0 || x >= s.width || y >= s.height {
		return "", false
	}
	switch len(fields) {
	case 3:
		s.ops = append(s.ops, stubOp{ConnId: connId, Cmd: "GET", X: x, Y: y})
		if reply, ok := s.replies[Point{x, y}]; ok {
			return reply, true
		}
		return fmt.Sprintf("PX %d %d %s", x, y, s.pix[y*s.width+x].Hex()), true
	case 4:
		c, err := ParseHexColor(fields[3])
		if err != nil {
			return "", false
		}
		s.ops = append(s.ops, stubOp{ConnId: connId, Cmd: "SET", X: x, Y: y})
		s.pix[y*s.width+x] = c
		s.sets++
	}
	return "", false
}

type stubConn struct {
	sync.Mutex
	id       int
	canvas   *stubCanvas
	replies  []string
	failRow  int
	closed   bool
	closeErr error
}

func (c *stubConn) Id() int {
	return c.id
}

func (c *stubConn) Send(data []byte) error {
	c.Lock()
	defer c.Unlock()
	if c.closed {
		return &IOError{Op: "send", ConnId: c.id, Err: io.ErrClosedPipe}
	}
	line := strings.TrimSuffix(string(data), "\n")
	if c.failRow >= 0 {
		if fields := strings.Fields(line); len(fields) >= 3 && fields[2] == strconv.Itoa(c.failRow) {
			return &IOError{Op: "send", ConnId: c.id, Err: io.ErrUnexpectedEOF}
		}
	}
	if reply, ok := c.canvas.handle(c.id, line); ok {
		c.replies = append(c.replies, reply)
	}
	return nil
}

func (c *stubConn) Receive() (string, error) {
	c.Lock()
	defer c.Unlock()
	if c.closed || len(c.replies) == 0 {
		return "", &IOError{Op: "receive", ConnId: c.id, Err: io.EOF}
	}
	reply := c.replies[0]
	c.replies = c.replies[1:]
	return reply, nil
}

func (c *stubConn) Close() error {
	c.Lock()
	defer c.Unlock()
	c.closed = true
	return c.closeErr
}

func (c *stubConn) isClosed() bool {
	c.Lock()
	defer c.Unlock()
	return c.closed
}

// stubDialer accepts the first `accept` attempts (all when negative) and
// refuses the rest.
type stubDialer struct {
	sync.Mutex
	canvas   *stubCanvas
	accept   int32
	attempts int32
	// any connection sending a command for this row fails; -1 disables
	failRow int
	// when set, Dial blocks until it is closed
	gate  chan struct{}
	conns []*stubConn
}

func newStubDialer(canvas *stubCanvas) *stubDialer {
	return &stubDialer{canvas: canvas, accept: -1, failRow: -1}
}

func (d *stubDialer) Dial(ctx context.Context) (Connection, error) {
	if d.gate != nil {
		select {
		case <-d.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	n := atomic.AddInt32(&d.attempts, 1)
	if d.accept >= 0 && n > d.accept {
		return nil, errors.New("connection refused")
	}
	conn := &stubConn{id: int(n), canvas: d.canvas, failRow: d.failRow}
	d.Lock()
	d.conns = append(d.conns, conn)
	d.Unlock()
	return conn, nil
}

func (d *stubDialer) dialed() []*stubConn {
	d.Lock()
	defer d.Unlock()
	return append([]*stubConn(nil), d.conns...)
}

// recordingSink keeps every published event.
type recordingSink struct {
	sync.Mutex
	events []SocketEvent
}

func (rs *recordingSink) Publish(event SocketEvent) {
	rs.Lock()
	defer rs.Unlock()
	rs.events = append(rs.events, event)
}

func (rs *recordingSink) count(eventType string) int {
	rs.Lock()
	defer rs.Unlock()
	n := 0
	for _, event := range rs.events {
		if event.Type == eventType {
			n++
		}
	}
	return n
}

func testConfig(connections int) Config {
	cfg := DefaultConfig()
	cfg.Host = "stub"
	cfg.Connections = connections
	cfg.RowDelay = 0
	return cfg
}

func mustColor(s string) Color {
	c, err := ParseHexColor(s)
	if err != nil {
		panic(err)
	}
	return c
}
