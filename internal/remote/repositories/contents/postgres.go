package contents

import (
	"context"
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

func (r *PostgresRepository) Upsert(ctx context.Context, item *models.GeneratedContentItem) error {
	query :=
		`INSERT INTO generated_content (id, owner_id, platform, prompt, content, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query, item.ID, item.OwnerID, item.Platform, item.Prompt, item.Content, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.GeneratedContentItem, error) {
	query :=
		`SELECT id, owner_id, platform, prompt, content, created_at
		 FROM generated_content
		 WHERE owner_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.GeneratedContentItem, 0)
	for rows.Next() {
		var it models.GeneratedContentItem
		if err := rows.Scan(&it.ID, &it.OwnerID, &it.Platform, &it.Prompt, &it.Content, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		it.CreatedAt = it.CreatedAt.UTC()
		result = append(result, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
