package resources

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/seowatch/internal/client/models"
	"github.com/dmitrijs2005/seowatch/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, res *models.TrackedResource) error {
	query :=
		`INSERT INTO tracked_resources (id, owner_id, url, active, scan_frequency, last_scan_at, next_scan_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET
		   url = EXCLUDED.url,
		   active = EXCLUDED.active,
		   scan_frequency = EXCLUDED.scan_frequency,
		   last_scan_at = EXCLUDED.last_scan_at,
		   next_scan_at = EXCLUDED.next_scan_at`

	var last sql.NullTime
	if res.LastScanAt != nil {
		last = sql.NullTime{Time: *res.LastScanAt, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		res.ID, res.OwnerID, res.URL, res.Active, string(res.Frequency), last, res.NextScanAt, res.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.TrackedResource, error) {
	query :=
		`SELECT id, owner_id, url, active, scan_frequency, last_scan_at, next_scan_at, created_at
		 FROM tracked_resources
		 WHERE owner_id = $1
		 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.TrackedResource, 0)
	for rows.Next() {
		var res models.TrackedResource
		var freq string
		var last sql.NullTime
		if err := rows.Scan(&res.ID, &res.OwnerID, &res.URL, &res.Active, &freq, &last, &res.NextScanAt, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		res.Frequency = models.ScanFrequency(freq)
		if last.Valid {
			t := last.Time.UTC()
			res.LastScanAt = &t
		}
		res.NextScanAt = res.NextScanAt.UTC()
		res.CreatedAt = res.CreatedAt.UTC()
		result = append(result, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) error {
	query := `DELETE FROM tracked_resources WHERE id = $1 AND owner_id = $2`

	if _, err := r.db.ExecContext(ctx, query, id, ownerID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
