package reports

import (
	"context"
	"encoding/json"
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

// Upsert inserts the report. Reports are immutable, so a second write of the
// same id leaves the row untouched.
func (r *PostgresRepository) Upsert(ctx context.Context, rep *models.ScanReport) error {
	positives, err := encodeList(rep.Positives)
	if err != nil {
		return err
	}
	negatives, err := encodeList(rep.Negatives)
	if err != nil {
		return err
	}
	suggestions, err := encodeList(rep.Suggestions)
	if err != nil {
		return err
	}
	data, err := json.Marshal(rep.Data)
	if err != nil {
		return fmt.Errorf("encode report data: %w", err)
	}

	query :=
		`INSERT INTO scan_reports (id, owner_id, resource_url, score, positives, negatives, suggestions, report_data, fallback, created_at)
		 VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb, $7::jsonb, $8::jsonb, $9, $10)
		 ON CONFLICT (id) DO NOTHING`

	_, err = r.db.ExecContext(ctx, query,
		rep.ID, rep.OwnerID, rep.ResourceURL, models.ClampScore(rep.Score),
		positives, negatives, suggestions, string(data), rep.Fallback, rep.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.ScanReport, error) {
	query :=
		`SELECT id, owner_id, resource_url, score, positives, negatives, suggestions, report_data, fallback, created_at
		 FROM scan_reports
		 WHERE owner_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.ScanReport, 0)
	for rows.Next() {
		var rep models.ScanReport
		var positives, negatives, suggestions, data []byte
		if err := rows.Scan(&rep.ID, &rep.OwnerID, &rep.ResourceURL, &rep.Score,
			&positives, &negatives, &suggestions, &data, &rep.Fallback, &rep.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}

		if rep.Positives, err = decodeList(positives); err != nil {
			return nil, err
		}
		if rep.Negatives, err = decodeList(negatives); err != nil {
			return nil, err
		}
		if rep.Suggestions, err = decodeList(suggestions); err != nil {
			return nil, err
		}
		rep.Data = models.DefaultReportData()
		if len(data) > 0 {
			if err := json.Unmarshal(data, &rep.Data); err != nil {
				return nil, fmt.Errorf("decode report data: %w", err)
			}
		}
		rep.CreatedAt = rep.CreatedAt.UTC()

		result = append(result, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func encodeList(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(b), nil
}

func decodeList(b []byte) ([]string, error) {
	out := []string{}
	if len(b) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}
