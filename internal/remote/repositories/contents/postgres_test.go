package contents

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/seowatch/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

const (
	insertQ = `(?s)^INSERT\s+INTO\s+generated_content\s*\(id,\s*owner_id,\s*platform,\s*prompt,\s*content,\s*created_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*ON\s+CONFLICT\s*\(id\)\s*DO\s+NOTHING\s*$`
	listQ   = `(?s)^SELECT\s+id,\s*owner_id,\s*platform,\s*prompt,\s*content,\s*created_at\s+FROM\s+generated_content\s+WHERE\s+owner_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC\s+LIMIT\s+\$2\s*$`
)

func TestUpsert(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)
	item := &models.GeneratedContentItem{ID: "c1", OwnerID: "o1", Platform: "x", Prompt: "p", Content: "c", CreatedAt: at}

	mock.ExpectExec(insertQ).WithArgs("c1", "o1", "x", "p", "c", at).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Upsert(context.Background(), item))

	mock.ExpectExec(insertQ).WillReturnError(errors.New("db down"))
	require.ErrorContains(t, repo.Upsert(context.Background(), item), "db error: db down")
}

func TestListByOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "owner_id", "platform", "prompt", "content", "created_at"}).
		AddRow("c2", "o1", "linkedin", "p2", "body2", at).
		AddRow("c1", "o1", "x", "p1", "body1", at.Add(-time.Minute))
	mock.ExpectQuery(listQ).WithArgs("o1", 100).WillReturnRows(rows)

	got, err := repo.ListByOwner(context.Background(), "o1", 100)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c2", got[0].ID)
	assert.Equal(t, "body1", got[1].Content)
}

func TestListByOwner_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(listQ).WillReturnError(errors.New("db err"))
	_, err := repo.ListByOwner(context.Background(), "o1", 100)
	require.ErrorContains(t, err, "db error")
}
