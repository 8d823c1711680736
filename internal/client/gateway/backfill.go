package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/seowatch/internal/client/models"
	"golang.org/x/sync/errgroup"
)

const backfillParallelism = 4

var ErrBackfillIncomplete = errors.New("remote backfill incomplete")

// Backfill is a no-op when remote is unavailable or the owner's synced
// marker is already set. Otherwise it pushes the cached identity, then
// reports, resources and content, and sets the marker only when every push
// succeeded; a partial run is retried on the next call. Concurrent calls for
// one owner share a single run.
func (g *Hybrid) Backfill(ctx context.Context, ownerID string) error {
	if !g.available || ownerID == "" {
		return nil
	}

	_, err, _ := g.backfills.Do(ownerID, func() (any, error) {
		return nil, g.backfill(ctx, ownerID)
	})
	return err
}

func (g *Hybrid) backfill(ctx context.Context, ownerID string) error {
	synced, err := g.store.RemoteSynced(ctx, ownerID)
	if err != nil {
		return err
	}
	if synced {
		return nil
	}

	identity, err := g.store.LoadIdentity(ctx, ownerID)
	if err != nil {
		return err
	}
	reports, err := g.store.ScanReports(ctx, ownerID)
	if err != nil {
		return err
	}
	resources, err := g.store.TrackedResources(ctx, ownerID)
	if err != nil {
		return err
	}
	items, err := g.store.ContentItems(ctx, ownerID)
	if err != nil {
		return err
	}

	wctx, cancel := context.WithTimeout(ctx, g.remoteTimeout)
	defer cancel()

	var pushErr error
	ran := g.disp.call(wctx, ownerID, func() {
		if pushErr = wctx.Err(); pushErr != nil {
			return
		}
		pushErr = g.push(wctx, identity, reports, resources, items)
	})
	switch {
	case !ran:
		g.metrics.MirrorFailed("backfill")
		return fmt.Errorf("%w: remote did not answer in %s", ErrBackfillIncomplete, g.remoteTimeout)
	case pushErr != nil:
		g.metrics.MirrorFailed("backfill")
		g.log.Warn(ctx, "remote backfill failed", "owner", ownerID, "error", pushErr)
		return fmt.Errorf("%w: %v", ErrBackfillIncomplete, pushErr)
	}

	if err := g.store.SetRemoteSynced(ctx, ownerID, true); err != nil {
		return err
	}
	g.log.Info(ctx, "remote backfill done", "owner", ownerID,
		"reports", len(reports), "resources", len(resources), "content", len(items))
	return nil
}

// push writes the identity first since every other row references it.
func (g *Hybrid) push(ctx context.Context, identity *models.Identity, reports []models.ScanReport,
	resources []models.TrackedResource, items []models.GeneratedContentItem) error {
	if identity != nil {
		if err := g.remote.UpsertIdentity(ctx, identity); err != nil {
			return fmt.Errorf("identity: %w", err)
		}
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(backfillParallelism)

	for _, r := range reports {
		eg.Go(func() error { return g.remote.UpsertScanReport(ctx, &r) })
	}
	for _, r := range resources {
		eg.Go(func() error { return g.remote.UpsertTrackedResource(ctx, &r) })
	}
	for _, it := range items {
		eg.Go(func() error { return g.remote.UpsertContentItem(ctx, &it) })
	}
	return eg.Wait()
}
