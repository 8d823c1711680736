// Package remote is the authoritative relational mirror of device data,
// kept in PostgreSQL.
package remote

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/seowatch/internal/client/models"
	"github.com/dmitrijs2005/seowatch/internal/remote/repositories/repomanager"
)

const (
	// ReportsLimit and ContentLimit match the device-side list caps.
	ReportsLimit = 50
	ContentLimit = 100
)

// Store exposes the mirrored entities over one connection pool.
type Store struct {
	db *sql.DB
	m  repomanager.RepositoryManager
}

func New(db *sql.DB, m repomanager.RepositoryManager) *Store {
	return &Store{db: db, m: m}
}

// Open connects through the pgx stdlib driver. No round trip is made; use
// Ping for that.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open remote store: %w", err)
	}
	return New(db, repomanager.NewPostgresRepositoryManager()), nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.m.RunMigrations(ctx, s.db)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) UpsertIdentity(ctx context.Context, identity *models.Identity) error {
	return s.m.Identities(s.db).Upsert(ctx, identity)
}

func (s *Store) GetIdentity(ctx context.Context, id string) (*models.Identity, error) {
	return s.m.Identities(s.db).GetByID(ctx, id)
}

func (s *Store) UpsertScanReport(ctx context.Context, report *models.ScanReport) error {
	return s.m.Reports(s.db).Upsert(ctx, report)
}

func (s *Store) ListScanReports(ctx context.Context, ownerID string) ([]models.ScanReport, error) {
	return s.m.Reports(s.db).ListByOwner(ctx, ownerID, ReportsLimit)
}

func (s *Store) UpsertTrackedResource(ctx context.Context, resource *models.TrackedResource) error {
	return s.m.Resources(s.db).Upsert(ctx, resource)
}

func (s *Store) ListTrackedResources(ctx context.Context, ownerID string) ([]models.TrackedResource, error) {
	return s.m.Resources(s.db).ListByOwner(ctx, ownerID)
}

func (s *Store) DeleteTrackedResource(ctx context.Context, ownerID, id string) error {
	return s.m.Resources(s.db).Delete(ctx, ownerID, id)
}

func (s *Store) UpsertContentItem(ctx context.Context, item *models.GeneratedContentItem) error {
	return s.m.Contents(s.db).Upsert(ctx, item)
}

func (s *Store) ListContentItems(ctx context.Context, ownerID string) ([]models.GeneratedContentItem, error) {
	return s.m.Contents(s.db).ListByOwner(ctx, ownerID, ContentLimit)
}
