package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/seowatch/internal/client/metrics"
	"github.com/dmitrijs2005/seowatch/internal/client/models"
	"github.com/dmitrijs2005/seowatch/internal/client/store"
	"github.com/dmitrijs2005/seowatch/internal/common"
	"github.com/dmitrijs2005/seowatch/internal/logging"
	"golang.org/x/sync/singleflight"
)

const (
	defaultProbeTimeout  = 3 * time.Second
	defaultRemoteTimeout = 10 * time.Second
)

type Options struct {
	// ProbeTimeout bounds the connectivity probe made by New.
	ProbeTimeout time.Duration
	// RemoteTimeout bounds every single remote call, and how long a reader
	// waits behind queued writes before it settles for the cache.
	RemoteTimeout time.Duration
	// Shards is the number of ordered remote workers.
	Shards int
	// QueueDepth is how many remote calls may wait per shard. Mirrors that
	// find the queue full are dropped.
	QueueDepth int
	Metrics    *metrics.Metrics
}

// Hybrid is the local-first Gateway.
type Hybrid struct {
	store     *store.Store
	remote    Remote
	available bool

	disp          *dispatcher
	remoteTimeout time.Duration
	backfills     singleflight.Group

	// writeMu serializes read-modify-write of cached records.
	writeMu sync.Mutex

	log     logging.Logger
	metrics *metrics.Metrics
}

var _ Gateway = (*Hybrid)(nil)

// New probes remote once and keeps the answer. A nil remote is never
// available.
func New(ctx context.Context, st *store.Store, remote Remote, log logging.Logger, opts Options) *Hybrid {
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = defaultProbeTimeout
	}
	if opts.RemoteTimeout <= 0 {
		opts.RemoteTimeout = defaultRemoteTimeout
	}

	g := &Hybrid{
		store:         st,
		remote:        remote,
		disp:          newDispatcher(opts.Shards, opts.QueueDepth),
		remoteTimeout: opts.RemoteTimeout,
		log:           log.With("component", "gateway"),
		metrics:       opts.Metrics,
	}

	if remote != nil {
		probeCtx, cancel := context.WithTimeout(ctx, opts.ProbeTimeout)
		err := remote.Ping(probeCtx)
		cancel()
		if err != nil {
			g.log.Warn(ctx, "remote store unreachable, running local only", "error", err)
		} else {
			g.available = true
		}
	}
	g.log.Info(ctx, "gateway ready", "remote_available", g.available)
	return g
}

func (g *Hybrid) Available() bool {
	return g.available
}

func (g *Hybrid) Close() error {
	g.disp.close()
	return nil
}

// Writes hold writeMu until the mirror task is queued, so the remote store
// receives them in the same order as the cache.

func (g *Hybrid) SaveIdentity(ctx context.Context, identity *models.Identity) error {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()

	c := identity.Clone()
	if err := g.store.SaveIdentity(ctx, c); err != nil {
		return err
	}
	g.mirror(ctx, c.ID, "save_identity", func(ctx context.Context) error {
		return g.remote.UpsertIdentity(ctx, c)
	})
	return nil
}

func (g *Hybrid) UpdateIdentity(ctx context.Context, id string, fn func(*models.Identity) error) (*models.Identity, error) {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()

	identity, err := g.store.LoadIdentity(ctx, id)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, fmt.Errorf("identity %s: %w", id, common.ErrNotFound)
	}
	if err := fn(identity); err != nil {
		return nil, err
	}
	if err := g.store.SaveIdentity(ctx, identity); err != nil {
		return nil, err
	}

	c := identity.Clone()
	g.mirror(ctx, c.ID, "save_identity", func(ctx context.Context) error {
		return g.remote.UpsertIdentity(ctx, c)
	})
	return identity, nil
}

func (g *Hybrid) SaveScanReport(ctx context.Context, report models.ScanReport) error {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()

	list, err := g.store.ScanReports(ctx, report.OwnerID)
	if err != nil {
		return err
	}
	list = prepend(list, report, func(r models.ScanReport) bool { return r.ID == report.ID })
	if err := g.store.SetScanReports(ctx, report.OwnerID, list); err != nil {
		return err
	}

	g.mirror(ctx, report.OwnerID, "save_report", func(ctx context.Context) error {
		return g.remote.UpsertScanReport(ctx, &report)
	})
	return nil
}

func (g *Hybrid) SaveTrackedResource(ctx context.Context, resource models.TrackedResource) error {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()

	list, err := g.store.TrackedResources(ctx, resource.OwnerID)
	if err != nil {
		return err
	}
	list = upsert(list, resource, func(r models.TrackedResource) bool { return r.ID == resource.ID })
	if err := g.store.SetTrackedResources(ctx, resource.OwnerID, list); err != nil {
		return err
	}

	g.mirror(ctx, resource.OwnerID, "save_resource", func(ctx context.Context) error {
		return g.remote.UpsertTrackedResource(ctx, &resource)
	})
	return nil
}

func (g *Hybrid) SaveContentItem(ctx context.Context, item models.GeneratedContentItem) error {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()

	list, err := g.store.ContentItems(ctx, item.OwnerID)
	if err != nil {
		return err
	}
	list = prepend(list, item, func(c models.GeneratedContentItem) bool { return c.ID == item.ID })
	if err := g.store.SetContentItems(ctx, item.OwnerID, list); err != nil {
		return err
	}

	g.mirror(ctx, item.OwnerID, "save_content", func(ctx context.Context) error {
		return g.remote.UpsertContentItem(ctx, &item)
	})
	return nil
}

func (g *Hybrid) DeleteTrackedResource(ctx context.Context, ownerID, id string) error {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()

	list, err := g.store.TrackedResources(ctx, ownerID)
	if err != nil {
		return err
	}
	kept := list[:0]
	for _, r := range list {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if err := g.store.SetTrackedResources(ctx, ownerID, kept); err != nil {
		return err
	}

	g.mirror(ctx, ownerID, "delete_resource", func(ctx context.Context) error {
		return g.remote.DeleteTrackedResource(ctx, ownerID, id)
	})
	return nil
}

func (g *Hybrid) GetIdentity(ctx context.Context, id string) *models.Identity {
	if fresh, ok := remoteRead(ctx, g, id, "get_identity", func(ctx context.Context) (*models.Identity, error) {
		return g.remote.GetIdentity(ctx, id)
	}); ok && fresh != nil {
		g.writeMu.Lock()
		err := g.store.SaveIdentity(ctx, fresh)
		g.writeMu.Unlock()
		if err != nil {
			g.log.Warn(ctx, "refresh of cached identity failed", "id", id, "error", err)
		}
		return fresh
	}

	cached, err := g.store.LoadIdentity(ctx, id)
	if err != nil {
		g.log.Warn(ctx, "cached identity unavailable", "id", id, "error", err)
		return nil
	}
	return cached
}

func (g *Hybrid) GetScanReports(ctx context.Context, ownerID string) []models.ScanReport {
	return getList(ctx, g, ownerID, "get_reports", func(ctx context.Context) ([]models.ScanReport, error) {
		return g.remote.ListScanReports(ctx, ownerID)
	}, g.store.ScanReports, g.store.SetScanReports)
}

func (g *Hybrid) GetTrackedResources(ctx context.Context, ownerID string) []models.TrackedResource {
	return getList(ctx, g, ownerID, "get_resources", func(ctx context.Context) ([]models.TrackedResource, error) {
		return g.remote.ListTrackedResources(ctx, ownerID)
	}, g.store.TrackedResources, g.store.SetTrackedResources)
}

func (g *Hybrid) GetContentItems(ctx context.Context, ownerID string) []models.GeneratedContentItem {
	return getList(ctx, g, ownerID, "get_content", func(ctx context.Context) ([]models.GeneratedContentItem, error) {
		return g.remote.ListContentItems(ctx, ownerID)
	}, g.store.ContentItems, g.store.SetContentItems)
}

// mirror queues a remote write behind earlier work for owner. Failures are
// logged and counted, never returned.
func (g *Hybrid) mirror(ctx context.Context, owner, op string, fn func(context.Context) error) {
	if !g.available {
		return
	}
	attrs := []any{"op", op, "owner", owner}
	err := g.disp.submit(owner, func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.remoteTimeout)
		defer cancel()
		if err := fn(rctx); err != nil {
			g.metrics.MirrorFailed(op)
			g.log.Warn(rctx, "remote mirror failed", append(attrs, "error", err)...)
		}
	})
	switch {
	case errors.Is(err, errShardFull):
		g.metrics.MirrorFailed(op)
		g.log.Warn(ctx, "remote mirror dropped, queue full", attrs...)
		// the next remote read backfills the owner again
		if err := g.store.SetRemoteSynced(ctx, owner, false); err != nil {
			g.log.Warn(ctx, "clearing synced marker failed", append(attrs, "error", err)...)
		}
	case err != nil:
		g.metrics.MirrorFailed(op)
		g.log.Warn(ctx, "remote mirror skipped, gateway closed", attrs...)
	}
}

// remoteRead runs read on owner's shard and waits for it, at most
// remoteTimeout counted from submission. ok is false when remote is
// unavailable, owner's cache has not been backfilled yet, the read failed
// or the wait ran out.
func remoteRead[T any](ctx context.Context, g *Hybrid, owner, op string, read func(context.Context) (T, error)) (T, bool) {
	var (
		val T
		err error
	)
	if !g.available {
		return val, false
	}
	// The remote copy replaces the cache below, so whatever only the cache
	// holds has to be pushed first.
	if err := g.Backfill(ctx, owner); err != nil {
		g.log.Warn(ctx, "remote backfill pending, using cache", "op", op, "owner", owner, "error", err)
		return val, false
	}

	wctx, cancel := context.WithTimeout(ctx, g.remoteTimeout)
	defer cancel()
	ran := g.disp.call(wctx, owner, func() {
		if err = wctx.Err(); err != nil {
			return
		}
		val, err = read(wctx)
	})
	if !ran {
		var zero T
		g.metrics.MirrorFailed(op)
		g.log.Warn(ctx, "remote read abandoned, using cache", "op", op, "owner", owner)
		return zero, false
	}
	if err != nil {
		g.metrics.MirrorFailed(op)
		g.log.Warn(ctx, "remote read failed, using cache", "op", op, "owner", owner, "error", err)
		return val, false
	}
	return val, true
}

// getList reads owner's list from remote, replaces the cached copy with it
// and returns it, or returns the cached copy when remote cannot answer.
func getList[T any](
	ctx context.Context,
	g *Hybrid,
	owner, op string,
	fetch func(context.Context) ([]T, error),
	load func(context.Context, string) ([]T, error),
	save func(context.Context, string, []T) error,
) []T {
	if fresh, ok := remoteRead(ctx, g, owner, op, fetch); ok {
		if fresh == nil {
			fresh = []T{}
		}
		g.writeMu.Lock()
		err := save(ctx, owner, fresh)
		g.writeMu.Unlock()
		if err != nil {
			g.log.Warn(ctx, "refresh of cached list failed", "op", op, "owner", owner, "error", err)
		}
		return fresh
	}

	cached, err := load(ctx, owner)
	if err != nil {
		g.log.Warn(ctx, "cached list unavailable", "op", op, "owner", owner, "error", err)
		return []T{}
	}
	return cached
}

// prepend puts v first and drops any older entry matching same.
func prepend[T any](list []T, v T, same func(T) bool) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, v)
	for _, x := range list {
		if !same(x) {
			out = append(out, x)
		}
	}
	return out
}

// upsert replaces the entry matching same in place, or appends v.
func upsert[T any](list []T, v T, same func(T) bool) []T {
	for i, x := range list {
		if same(x) {
			list[i] = v
			return list
		}
	}
	return append(list, v)
}
