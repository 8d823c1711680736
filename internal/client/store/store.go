// Package store is the typed face of the device-local key-value namespace.
//
// It owns the layout of every key (see keys.go), the version migration and
// the session pointer. Values are JSON. A stored value that cannot be
// decoded is treated as absent: readers get nil or an empty collection and
// the problem is logged, never returned. Errors of the database itself are
// returned wrapped.
//
// Every write is announced on the bus with the store's origin id so that
// other client contexts sharing the database can refresh.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/seowatch/internal/client/bus"
	"github.com/dmitrijs2005/seowatch/internal/client/models"
	"github.com/dmitrijs2005/seowatch/internal/client/repositories/kv"
	"github.com/dmitrijs2005/seowatch/internal/client/repositories/leases"
	"github.com/dmitrijs2005/seowatch/internal/logging"
)

type Store struct {
	db     *sql.DB
	kv     kv.Repository
	leases leases.Repository
	pub    bus.Publisher
	origin string
	log    logging.Logger
	now    func() time.Time
}

// New binds a store to an opened and migrated database. origin identifies
// this client context in change notifications; pub may be nil.
func New(db *sql.DB, pub bus.Publisher, origin string, log logging.Logger) *Store {
	return &Store{
		db:     db,
		kv:     kv.NewSQLiteRepository(db),
		leases: leases.NewSQLiteRepository(db),
		pub:    pub,
		origin: origin,
		log:    log.With("component", "store"),
		now:    time.Now,
	}
}

// Origin is the id of the client context this store writes for.
func (s *Store) Origin() string {
	return s.origin
}

func (s *Store) UserIndex(ctx context.Context) (map[string]string, error) {
	m, err := readJSON[map[string]string](ctx, s.kv, s.log, KeyUserIndex)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]string{}
	}
	return m, nil
}

func (s *Store) SetUserIndex(ctx context.Context, index map[string]string) error {
	return s.writeJSON(ctx, KeyUserIndex, index)
}

// SessionPointer returns the active identity id, or "" when logged out.
func (s *Store) SessionPointer(ctx context.Context) (string, error) {
	id, err := readJSON[string](ctx, s.kv, s.log, KeySession)
	if err != nil {
		return "", err
	}
	return id, nil
}

// SetSessionPointer points the session at id; an empty id clears it.
func (s *Store) SetSessionPointer(ctx context.Context, id string) error {
	if id == "" {
		if err := s.kv.Delete(ctx, KeySession); err != nil {
			return err
		}
		s.notify(ctx, KeySession)
		return nil
	}
	return s.writeJSON(ctx, KeySession, id)
}

// LoadIdentity returns nil when the record is missing or unreadable.
func (s *Store) LoadIdentity(ctx context.Context, id string) (*models.Identity, error) {
	if id == "" {
		return nil, nil
	}
	return readJSON[*models.Identity](ctx, s.kv, s.log, IdentityKey(id))
}

func (s *Store) SaveIdentity(ctx context.Context, identity *models.Identity) error {
	if identity == nil || identity.ID == "" {
		return fmt.Errorf("save identity: missing id")
	}
	identity.SetCredit(identity.Credit)
	return s.writeJSON(ctx, IdentityKey(identity.ID), identity)
}

// CurrentIdentity follows the session pointer. It returns nil when nobody is
// logged in or the pointed-at record is gone.
func (s *Store) CurrentIdentity(ctx context.Context) (*models.Identity, error) {
	id, err := s.SessionPointer(ctx)
	if err != nil || id == "" {
		return nil, err
	}
	return s.LoadIdentity(ctx, id)
}

func (s *Store) ScanReports(ctx context.Context, owner string) ([]models.ScanReport, error) {
	return readList[models.ScanReport](ctx, s.kv, s.log, ScanReportsKey(owner))
}

// SetScanReports stores the newest-first list, keeping at most MaxScanReports.
func (s *Store) SetScanReports(ctx context.Context, owner string, reports []models.ScanReport) error {
	return s.writeJSON(ctx, ScanReportsKey(owner), capped(reports, MaxScanReports))
}

func (s *Store) TrackedResources(ctx context.Context, owner string) ([]models.TrackedResource, error) {
	return readList[models.TrackedResource](ctx, s.kv, s.log, ResourcesKey(owner))
}

func (s *Store) SetTrackedResources(ctx context.Context, owner string, resources []models.TrackedResource) error {
	if resources == nil {
		resources = []models.TrackedResource{}
	}
	return s.writeJSON(ctx, ResourcesKey(owner), resources)
}

func (s *Store) ContentItems(ctx context.Context, owner string) ([]models.GeneratedContentItem, error) {
	return readList[models.GeneratedContentItem](ctx, s.kv, s.log, ContentKey(owner))
}

// SetContentItems stores the newest-first list, keeping at most MaxContentItems.
func (s *Store) SetContentItems(ctx context.Context, owner string, items []models.GeneratedContentItem) error {
	return s.writeJSON(ctx, ContentKey(owner), capped(items, MaxContentItems))
}

// RemoteSynced reports whether the one-time remote backfill for owner is done.
func (s *Store) RemoteSynced(ctx context.Context, owner string) (bool, error) {
	return readJSON[bool](ctx, s.kv, s.log, RemoteSyncedKey(owner))
}

func (s *Store) SetRemoteSynced(ctx context.Context, owner string, synced bool) error {
	return s.writeJSON(ctx, RemoteSyncedKey(owner), synced)
}

// AcquireScanLease takes the device-wide scan lock for a resource. It
// reports false when another context holds an unexpired lease.
func (s *Store) AcquireScanLease(ctx context.Context, resourceID, token string, ttl time.Duration) (bool, error) {
	return s.leases.Acquire(ctx, resourceID, token, s.now(), ttl)
}

func (s *Store) ReleaseScanLease(ctx context.Context, resourceID, token string) error {
	return s.leases.Release(ctx, resourceID, token)
}

func (s *Store) writeJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, b); err != nil {
		return err
	}
	s.notify(ctx, key)
	return nil
}

func (s *Store) notify(ctx context.Context, key string) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ctx, bus.Change{Key: key, Origin: s.origin}); err != nil {
		s.log.Warn(ctx, "change notification dropped", "key", key, "error", err)
	}
}

func readJSON[T any](ctx context.Context, repo kv.Repository, log logging.Logger, key string) (T, error) {
	var v T
	raw, err := repo.Get(ctx, key)
	if err != nil || len(raw) == 0 {
		return v, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		log.Warn(ctx, "unreadable value treated as absent", "key", key, "error", err)
		var zero T
		return zero, nil
	}
	return v, nil
}

func readList[T any](ctx context.Context, repo kv.Repository, log logging.Logger, key string) ([]T, error) {
	v, err := readJSON[[]T](ctx, repo, log, key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		v = []T{}
	}
	return v, nil
}

func capped[T any](items []T, limit int) []T {
	if items == nil {
		return []T{}
	}
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
