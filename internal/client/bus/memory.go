package bus

import (
	"context"
	"sync"
)

// MemoryBus fans changes out to subscribers in the same process. It links
// several app instances opened on one database, and backs tests.
type MemoryBus struct {
	mu     sync.Mutex
	subs   map[int]chan Change
	nextID int
	closed bool
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[int]chan Change)}
}

func (b *MemoryBus) Publish(_ context.Context, c Change) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	for _, ch := range b.subs {
		offer(ch, c)
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context) (<-chan Change, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	id := b.nextID
	b.nextID++
	ch := make(chan Change, subscriberBuffer)
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}()

	return ch, nil
}

// Close closes every subscription. Publishing afterwards fails with ErrClosed.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
	return nil
}
