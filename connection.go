package main

import (
	"bufio"
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

const maxLineLength = 1024

// Connection is one duplex stream to the canvas server. It is owned by at
// most one worker at a time; only Close may be called from elsewhere.
type Connection interface {
	Id() int

	Send(data []byte) error

	// Receive returns the next line without its terminator.
	Receive() (string, error)

	// Close may be called more than once.
	Close() error
}

type Dialer interface {
	Dial(ctx context.Context) (Connection, error)
}

type TCPDialer struct {
	Addr        string
	DialTimeout time.Duration
	IOTimeout   time.Duration
}

func (d *TCPDialer) Dial(ctx context.Context) (Connection, error) {
	dialer := net.Dialer{Timeout: d.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", d.Addr)
	if err != nil {
		return nil, err
	}
	return &tcpConn{
		id:        nextConnId(),
		conn:      conn,
		reader:    bufio.NewReaderSize(conn, maxLineLength),
		ioTimeout: d.IOTimeout,
	}, nil
}

type tcpConn struct {
	id        int
	conn      net.Conn
	reader    *bufio.Reader
	ioTimeout time.Duration
	closeOnce sync.Once
	closeErr  error
}

func (c *tcpConn) Id() int {
	return c.id
}

func (c *tcpConn) Send(data []byte) error {
	if c.ioTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.ioTimeout))
	}
	if _, err := c.conn.Write(data); err != nil {
		return &IOError{Op: "send", ConnId: c.id, Err: err}
	}
	return nil
}

func (c *tcpConn) Receive() (string, error) {
	if c.ioTimeout > 0 {
		c.conn.SetReadDeadline(time.Now().Add(c.ioTimeout))
	}
	line, err := c.reader.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		// oversized line, keep the head and skip to the next terminator
		head := string(line)
		for errors.Is(err, bufio.ErrBufferFull) {
			_, err = c.reader.ReadSlice('\n')
		}
		if err != nil {
			return "", &IOError{Op: "receive", ConnId: c.id, Err: err}
		}
		return head, nil
	}
	if err != nil {
		return "", &IOError{Op: "receive", ConnId: c.id, Err: err}
	}
	return string(line[:len(line)-1]), nil
}

func (c *tcpConn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

var connIdCounter int32 = 0

func nextConnId() int {
	return int(atomic.AddInt32(&connIdCounter, 1))
}
