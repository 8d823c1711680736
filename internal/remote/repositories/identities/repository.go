package identities

import (
	"context"

	"github.com/dmitrijs2005/seowatch/internal/client/models"
)

type Repository interface {
	Upsert(ctx context.Context, identity *models.Identity) error
	GetByID(ctx context.Context, id string) (*models.Identity, error)
}
