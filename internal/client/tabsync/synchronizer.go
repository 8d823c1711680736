// Package tabsync keeps this client context's view of the current identity
// in step with writes made by other contexts sharing the device store.
package tabsync

import (
	"context"

	"github.com/dmitrijs2005/seowatch/internal/client/bus"
	"github.com/dmitrijs2005/seowatch/internal/client/models"
	"github.com/dmitrijs2005/seowatch/internal/client/state"
	"github.com/dmitrijs2005/seowatch/internal/client/store"
	"github.com/dmitrijs2005/seowatch/internal/logging"
)

type Synchronizer struct {
	store  *store.Store
	sub    bus.Subscriber
	holder *state.Holder
	log    logging.Logger

	// OnReload, when set, runs after every reload with the identity just
	// published (nil when logged out).
	OnReload func(*models.Identity)
}

func NewSynchronizer(st *store.Store, sub bus.Subscriber, holder *state.Holder, log logging.Logger) *Synchronizer {
	return &Synchronizer{
		store:  st,
		sub:    sub,
		holder: holder,
		log:    log.With("component", "tabsync"),
	}
}

// Run consumes change notifications until ctx is done or the bus closes.
// Writes made by this context are skipped; the writer already updated its
// own view.
func (s *Synchronizer) Run(ctx context.Context) error {
	changes, err := s.sub.Subscribe(ctx)
	if err != nil {
		return err
	}

	s.log.Debug(ctx, "synchronizer started", "origin", s.store.Origin())

	for {
		select {
		case <-ctx.Done():
			return nil
		case c, ok := <-changes:
			if !ok {
				return nil
			}
			if !s.relevant(c) {
				continue
			}
			s.reload(ctx, c)
		}
	}
}

func (s *Synchronizer) relevant(c bus.Change) bool {
	if c.Origin != "" && c.Origin == s.store.Origin() {
		return false
	}
	return c.Key == "" || store.AffectsIdentity(c.Key)
}

func (s *Synchronizer) reload(ctx context.Context, c bus.Change) {
	identity, err := s.store.CurrentIdentity(ctx)
	if err != nil {
		s.log.Warn(ctx, "reload after remote change failed", "key", c.Key, "error", err)
		return
	}

	s.holder.Set(identity)
	s.log.Debug(ctx, "identity reloaded", "key", c.Key, "from", c.Origin, "logged_in", identity != nil)

	if s.OnReload != nil {
		s.OnReload(identity)
	}
}
