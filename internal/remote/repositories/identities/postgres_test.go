package identities

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/seowatch/internal/client/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const (
	upsertQ = `(?s)^INSERT\s+INTO\s+identities\s*\(id,\s*username,\s*email,\s*plan,\s*credit,\s*created_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*ON\s+CONFLICT\s*\(id\)\s*DO\s+UPDATE\s+SET.*$`
	selectQ = `(?s)^SELECT\s+id,\s*username,\s*email,\s*plan,\s*credit,\s*created_at\s+FROM\s+identities\s+WHERE\s+id\s*=\s*\$1\s*$`
)

func TestUpsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectExec(upsertQ).
		WithArgs("id-1", "alice", "a@example.com", "metered", 3, created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	i := &models.Identity{ID: "id-1", Username: "alice", Email: "a@example.com", Plan: models.PlanMetered, Credit: 3, CreatedAt: created}
	if err := repo.Upsert(context.Background(), i); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(upsertQ).WillReturnError(errors.New("db down"))

	err := repo.Upsert(context.Background(), &models.Identity{ID: "id-1"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "username", "email", "plan", "credit", "created_at"}).
		AddRow("id-1", "bob", "", "pro", 0, created)
	mock.ExpectQuery(selectQ).WithArgs("id-1").WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "id-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Username != "bob" || got.Plan != models.PlanPro || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected identity: %+v", got)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectQ).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectQ).WithArgs("id-1").WillReturnError(errors.New("db err"))

	_, err := repo.GetByID(context.Background(), "id-1")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
