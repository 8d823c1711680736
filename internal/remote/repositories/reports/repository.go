package reports

import (
	"context"

	"github.com/dmitrijs2005/seowatch/internal/client/models"
)

type Repository interface {
	Upsert(ctx context.Context, report *models.ScanReport) error
	// ListByOwner returns the newest reports first, at most limit of them.
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]models.ScanReport, error)
}
