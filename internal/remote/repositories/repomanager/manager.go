package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/seowatch/internal/dbx"
	"github.com/dmitrijs2005/seowatch/internal/remote/repositories/contents"
	"github.com/dmitrijs2005/seowatch/internal/remote/repositories/identities"
	"github.com/dmitrijs2005/seowatch/internal/remote/repositories/reports"
	"github.com/dmitrijs2005/seowatch/internal/remote/repositories/resources"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Identities(db dbx.DBTX) identities.Repository
	Reports(db dbx.DBTX) reports.Repository
	Resources(db dbx.DBTX) resources.Repository
	Contents(db dbx.DBTX) contents.Repository
}
