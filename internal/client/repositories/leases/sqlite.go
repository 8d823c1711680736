// Package leases implements cross-context scan locks on top of SQLite's
// single-writer upsert.
package leases

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/seowatch/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Acquire(ctx context.Context, resourceID, token string, now time.Time, ttl time.Duration) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO scan_leases (resource_id, token, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(resource_id) DO UPDATE SET token = excluded.token, expires_at = excluded.expires_at
		WHERE scan_leases.expires_at <= ? OR scan_leases.token = excluded.token
	`, resourceID, token, now.Add(ttl).UnixMilli(), now.UnixMilli())
	if err != nil {
		return false, fmt.Errorf("failed to acquire lease[%s]: %w", resourceID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lease[%s]: %w", resourceID, err)
	}
	return n == 1, nil
}

func (r *SQLiteRepository) Release(ctx context.Context, resourceID, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM scan_leases WHERE resource_id = ? AND token = ?`, resourceID, token)
	if err != nil {
		return fmt.Errorf("failed to release lease[%s]: %w", resourceID, err)
	}
	return nil
}
