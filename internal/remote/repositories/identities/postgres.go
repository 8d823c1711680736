package identities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/seowatch/internal/client/models"
	"github.com/dmitrijs2005/seowatch/internal/dbx"
)

var ErrNotFound = errors.New("identity not found")

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, i *models.Identity) error {
	query :=
		`INSERT INTO identities (id, username, email, plan, credit, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
		   username = EXCLUDED.username,
		   email = EXCLUDED.email,
		   plan = EXCLUDED.plan,
		   credit = EXCLUDED.credit`

	_, err := r.db.ExecContext(ctx, query, i.ID, i.Username, i.Email, string(i.Plan), i.Credit, i.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Identity, error) {
	query :=
		`SELECT id, username, email, plan, credit, created_at FROM identities
		 WHERE id = $1`

	i := &models.Identity{}
	var plan string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&i.ID, &i.Username, &i.Email, &plan, &i.Credit, &i.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	i.Plan = models.Plan(plan)
	i.CreatedAt = i.CreatedAt.UTC()
	i.SetCredit(i.Credit)
	return i, nil
}
