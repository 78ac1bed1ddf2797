package main

import (
	"context"
	"sync"

	"github.com/golang/glog"
)

// Pool is the set of live connections for one run.
type Pool struct {
	sync.RWMutex
	conns []Connection
}

// OpenPool attempts n connections concurrently. Failed attempts are logged and
// dropped, never retried.
func OpenPool(ctx context.Context, dialer Dialer, n int) (*Pool, error) {
	if n <= 0 {
		return nil, configError("pool size must be positive, got %d", n)
	}

	results := make([]Connection, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn, err := dialer.Dial(ctx)
			if err != nil {
				glog.Warningf("%v\n", &ConnectError{Index: i, Err: err})
				return
			}
			results[i] = conn
		}()
	}
	wg.Wait()

	p := &Pool{conns: make([]Connection, 0, n)}
	for _, conn := range results {
		if conn != nil {
			p.conns = append(p.conns, conn)
		}
	}
	if ctx.Err() != nil {
		p.CloseAll()
		return nil, ctx.Err()
	}
	if len(p.conns) == 0 {
		return nil, ErrNoConnections
	}
	glog.Infof("opened %d of %d connections\n", len(p.conns), n)
	return p, nil
}

func (p *Pool) Len() int {
	p.RLock()
	defer p.RUnlock()
	return len(p.conns)
}

// Connections returns the live connections in pool order.
func (p *Pool) Connections() []Connection {
	p.RLock()
	defer p.RUnlock()
	return append([]Connection(nil), p.conns...)
}

// Release closes one connection early and removes it from the pool.
func (p *Pool) Release(conn Connection) {
	p.Lock()
	for i, c := range p.conns {
		if c == conn {
			p.conns = append(p.conns[:i], p.conns[i+1:]...)
			break
		}
	}
	p.Unlock()

	if err := conn.Close(); err != nil {
		glog.Warningf("could not close connection %d: %v\n", conn.Id(), err)
	}
}

// CloseAll closes every connection still in the pool. Close failures are
// logged and do not stop the remaining closes.
func (p *Pool) CloseAll() {
	p.Lock()
	conns := p.conns
	p.conns = nil
	p.Unlock()

	for _, conn := range conns {
		if err := conn.Close(); err != nil {
			glog.Warningf("could not close connection %d: %v\n", conn.Id(), err)
		}
	}
}
