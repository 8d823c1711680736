package gateway

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
)

const (
	defaultShards     = 4
	defaultQueueDepth = 256
)

var (
	errDispatcherClosed = errors.New("dispatcher closed")
	errShardFull        = errors.New("remote queue full")
)

type task func()

// dispatcher runs remote calls on a fixed set of workers, sharded by owner
// id. Calls for one owner execute one at a time in submission order, so a
// read submitted after a write observes it.
type dispatcher struct {
	mu      sync.RWMutex
	closed  bool
	workers []chan task
	wg      sync.WaitGroup
}

func newDispatcher(shards, depth int) *dispatcher {
	if shards <= 0 {
		shards = defaultShards
	}
	if depth <= 0 {
		depth = defaultQueueDepth
	}
	d := &dispatcher{workers: make([]chan task, shards)}
	for i := range d.workers {
		ch := make(chan task, depth)
		d.workers[i] = ch
		d.wg.Add(1)
		go d.runWorker(ch)
	}
	return d
}

// submit queues t behind earlier work for key without waiting. It fails
// when the shard's queue is full or the dispatcher is closed.
func (d *dispatcher) submit(key string, t task) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return errDispatcherClosed
	}
	select {
	case d.workers[d.shardIndex(key)] <- t:
		return nil
	default:
		return errShardFull
	}
}

// call queues fn and waits for it to finish. It gives up when ctx ends,
// either while the shard is full or while fn is still queued or running,
// and then reports false. fn must check ctx itself if it may run after the
// caller stopped waiting.
func (d *dispatcher) call(ctx context.Context, key string, fn func()) bool {
	done := make(chan struct{})
	t := func() {
		defer close(done)
		fn()
	}

	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		return false
	}
	select {
	case d.workers[d.shardIndex(key)] <- t:
		d.mu.RUnlock()
	case <-ctx.Done():
		d.mu.RUnlock()
		return false
	}

	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}

func (d *dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *dispatcher) runWorker(ch <-chan task) {
	defer d.wg.Done()
	for t := range ch {
		t()
	}
}

// close stops intake and waits until every queued task has run.
func (d *dispatcher) close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
