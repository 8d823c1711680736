// Package state keeps the identity shown to the user in this client context
// and lets views watch it change.
package state

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/seowatch/internal/client/models"
)

// Holder is the reactive view of the current identity. The zero value is
// not usable; call NewHolder.
type Holder struct {
	mu      sync.RWMutex
	current *models.Identity
	version uint64
	changed chan struct{}
}

func NewHolder() *Holder {
	return &Holder{changed: make(chan struct{})}
}

// Set replaces the current identity (nil when logged out) and wakes every
// watcher.
func (h *Holder) Set(identity *models.Identity) {
	h.mu.Lock()
	h.current = identity.Clone()
	h.version++
	close(h.changed)
	h.changed = make(chan struct{})
	h.mu.Unlock()
}

// Current returns a copy of the current identity, or nil.
func (h *Holder) Current() *models.Identity {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.Clone()
}

// Version increases with every Set.
func (h *Holder) Version() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.version
}

// Wait blocks until the holder moves past version after and returns the new
// identity and version. It returns ctx.Err() when ctx ends first.
func (h *Holder) Wait(ctx context.Context, after uint64) (*models.Identity, uint64, error) {
	for {
		h.mu.RLock()
		cur, ver, ch := h.current.Clone(), h.version, h.changed
		h.mu.RUnlock()

		if ver > after {
			return cur, ver, nil
		}

		select {
		case <-ctx.Done():
			return nil, after, ctx.Err()
		case <-ch:
		}
	}
}
