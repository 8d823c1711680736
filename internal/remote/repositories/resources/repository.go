package resources

import (
	"context"

	"github.com/dmitrijs2005/seowatch/internal/client/models"
)

type Repository interface {
	Upsert(ctx context.Context, resource *models.TrackedResource) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.TrackedResource, error)
	Delete(ctx context.Context, ownerID, id string) error
}
