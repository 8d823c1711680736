package contents

import (
	"context"

	"github.com/dmitrijs2005/seowatch/internal/client/models"
)

type Repository interface {
	Upsert(ctx context.Context, item *models.GeneratedContentItem) error
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.GeneratedContentItem, error)
}
