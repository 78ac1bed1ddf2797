package main

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/redis/go-redis/v9"
)

const (
	redisPingAttempts = 5
	// pending events before Publish starts dropping
	redisQueueSize      = 256
	redisPublishTimeout = 2 * time.Second
)

// RedisPublisher mirrors progress events onto redis pub/sub: every event goes
// to the shared events channel and to the channel of its run. Events are
// queued and sent by one background goroutine.
type RedisPublisher struct {
	sync.RWMutex
	redis  *redis.Client
	ctx    context.Context
	cancel context.CancelFunc
	events chan SocketEvent
	closed bool
	done   chan struct{}
}

func NewRedisPublisher(ctx context.Context, redisOptions *redis.Options) (*RedisPublisher, error) {
	rdb := redis.NewClient(redisOptions)

	var err error
	for attempt := 1; attempt <= redisPingAttempts; attempt++ {
		if err = rdb.Ping(ctx).Err(); err == nil {
			break
		}
		glog.Warningf("can't connect to redis (attempt %d/%d): %v\n", attempt, redisPingAttempts, err)
		if attempt < redisPingAttempts {
			select {
			case <-ctx.Done():
				rdb.Close()
				return nil, ctx.Err()
			case <-time.After(2 * time.Second):
			}
		}
	}
	if err != nil {
		rdb.Close()
		return nil, err
	}
	glog.Infof("connected to redis at %s\n", redisOptions.Addr)

	return newRedisPublisher(ctx, rdb), nil
}

func newRedisPublisher(ctx context.Context, rdb *redis.Client) *RedisPublisher {
	ctx, cancel := context.WithCancel(ctx)
	p := &RedisPublisher{
		redis:  rdb,
		ctx:    ctx,
		cancel: cancel,
		events: make(chan SocketEvent, redisQueueSize),
		done:   make(chan struct{}),
	}
	go p.drain()
	return p
}

// Publish implements EventSink. It never waits on redis: when the queue is
// full the event is dropped.
func (p *RedisPublisher) Publish(event SocketEvent) {
	p.RLock()
	defer p.RUnlock()
	if p.closed {
		return
	}
	select {
	case p.events <- event:
	default:
		glog.Warningf("redis queue full, dropping %s event\n", event.Type)
	}
}

func (p *RedisPublisher) drain() {
	defer close(p.done)
	for event := range p.events {
		if p.ctx.Err() != nil {
			continue
		}
		p.send(event)
	}
}

func (p *RedisPublisher) send(event SocketEvent) {
	ctx, cancel := context.WithTimeout(p.ctx, redisPublishTimeout)
	defer cancel()

	pipe := p.redis.Pipeline()
	pipe.Publish(ctx, REDIS_KEYS.EVENTS_CHANNEL, event)
	pipe.Publish(ctx, REDIS_KEYS.RUN_CHANNEL(event.RunId), event)
	if _, err := pipe.Exec(ctx); err != nil {
		glog.Warningf("could not publish %s to redis: %v\n", event.Type, err)
	}
}

// Close stops the sender, dropping queued events, and closes the client.
func (p *RedisPublisher) Close() error {
	p.Lock()
	if p.closed {
		p.Unlock()
		return nil
	}
	p.closed = true
	close(p.events)
	p.Unlock()

	p.cancel()
	<-p.done
	return p.redis.Close()
}
