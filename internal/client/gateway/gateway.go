// Package gateway is the persistence port used by services and the
// scheduler. Writes land in the device store first and are mirrored to the
// remote store in the background; reads prefer the remote store and fall
// back to the device cache.
package gateway

import (
	"context"

	"github.com/dmitrijs2005/seowatch/internal/client/models"
)

// Gateway is constructed once per client context and passed to whoever
// persists entities.
type Gateway interface {
	// Available reports the result of the connectivity probe made at
	// construction. It does not change afterwards.
	Available() bool

	SaveIdentity(ctx context.Context, identity *models.Identity) error
	// UpdateIdentity applies fn to the cached identity and saves the result
	// like SaveIdentity. Updates made through one gateway never interleave.
	UpdateIdentity(ctx context.Context, id string, fn func(*models.Identity) error) (*models.Identity, error)
	SaveScanReport(ctx context.Context, report models.ScanReport) error
	SaveTrackedResource(ctx context.Context, resource models.TrackedResource) error
	SaveContentItem(ctx context.Context, item models.GeneratedContentItem) error
	DeleteTrackedResource(ctx context.Context, ownerID, id string) error

	GetIdentity(ctx context.Context, id string) *models.Identity
	GetScanReports(ctx context.Context, ownerID string) []models.ScanReport
	GetTrackedResources(ctx context.Context, ownerID string) []models.TrackedResource
	GetContentItems(ctx context.Context, ownerID string) []models.GeneratedContentItem

	// Backfill pushes everything cached for ownerID to the remote store the
	// first time the remote is reachable for that owner.
	Backfill(ctx context.Context, ownerID string) error

	// Close waits for queued remote work to finish.
	Close() error
}

// Remote is the relational mirror as seen by the gateway.
type Remote interface {
	Ping(ctx context.Context) error

	UpsertIdentity(ctx context.Context, identity *models.Identity) error
	GetIdentity(ctx context.Context, id string) (*models.Identity, error)

	UpsertScanReport(ctx context.Context, report *models.ScanReport) error
	ListScanReports(ctx context.Context, ownerID string) ([]models.ScanReport, error)

	UpsertTrackedResource(ctx context.Context, resource *models.TrackedResource) error
	ListTrackedResources(ctx context.Context, ownerID string) ([]models.TrackedResource, error)
	DeleteTrackedResource(ctx context.Context, ownerID, id string) error

	UpsertContentItem(ctx context.Context, item *models.GeneratedContentItem) error
	ListContentItems(ctx context.Context, ownerID string) ([]models.GeneratedContentItem, error)
}
