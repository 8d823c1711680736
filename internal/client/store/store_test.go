package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/seowatch/internal/client/bus"
	"github.com/dmitrijs2005/seowatch/internal/client/migrations"
	"github.com/dmitrijs2005/seowatch/internal/client/models"
	"github.com/dmitrijs2005/seowatch/internal/client/repositories/kv"
	"github.com/dmitrijs2005/seowatch/internal/logging"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.Up(db, "."))
	return db
}

func newTestStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	db := newTestDB(t)
	return New(db, nil, "ctx-a", logging.Nop()), db
}

func dump(t *testing.T, db *sql.DB) map[string]string {
	t.Helper()
	rows, err := db.Query(`SELECT key, value FROM kv WHERE key LIKE ?`, keyPrefix+"%")
	require.NoError(t, err)
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var k string
		var v []byte
		require.NoError(t, rows.Scan(&k, &v))
		out[k] = string(v)
	}
	require.NoError(t, rows.Err())
	return out
}

func TestStore_SessionPointerRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	id, err := s.SessionPointer(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, s.SetSessionPointer(ctx, "abc"))
	id, err = s.SessionPointer(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", id)

	require.NoError(t, s.SetSessionPointer(ctx, ""))
	id, err = s.SessionPointer(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestStore_IdentityAndCurrent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	cur, err := s.CurrentIdentity(ctx)
	require.NoError(t, err)
	assert.Nil(t, cur)

	i := models.NewIdentity("alice", "a@example.com", models.PlanMetered, time.Now())
	i.Credit = -4
	require.NoError(t, s.SaveIdentity(ctx, i))
	require.NoError(t, s.SetSessionPointer(ctx, i.ID))

	cur, err = s.CurrentIdentity(ctx)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, "alice", cur.Username)
	assert.Equal(t, 0, cur.Credit)
}

func TestStore_CorruptValuesReadAsAbsent(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()
	repo := kv.NewSQLiteRepository(db)

	require.NoError(t, repo.Set(ctx, KeyUserIndex, []byte("{not json")))
	require.NoError(t, repo.Set(ctx, IdentityKey("x"), []byte("[]")))
	require.NoError(t, repo.Set(ctx, ScanReportsKey("x"), []byte("nope")))
	require.NoError(t, repo.Set(ctx, RemoteSyncedKey("x"), []byte("\"yes\"")))

	idx, err := s.UserIndex(ctx)
	require.NoError(t, err)
	assert.Empty(t, idx)
	assert.NotNil(t, idx)

	i, err := s.LoadIdentity(ctx, "x")
	require.NoError(t, err)
	assert.Nil(t, i)

	reports, err := s.ScanReports(ctx, "x")
	require.NoError(t, err)
	assert.Empty(t, reports)

	synced, err := s.RemoteSynced(ctx, "x")
	require.NoError(t, err)
	assert.False(t, synced)
}

func TestStore_ListsAreCapped(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	reports := make([]models.ScanReport, MaxScanReports+7)
	for i := range reports {
		reports[i] = models.ScanReport{ID: string(rune('a' + i%26)), Score: i}
	}
	require.NoError(t, s.SetScanReports(ctx, "o", reports))
	got, err := s.ScanReports(ctx, "o")
	require.NoError(t, err)
	require.Len(t, got, MaxScanReports)
	assert.Equal(t, 0, got[0].Score)

	items := make([]models.GeneratedContentItem, MaxContentItems+1)
	require.NoError(t, s.SetContentItems(ctx, "o", items))
	gotItems, err := s.ContentItems(ctx, "o")
	require.NoError(t, err)
	assert.Len(t, gotItems, MaxContentItems)

	res, err := s.TrackedResources(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Empty(t, res)
}

func TestStore_WritesPublishWithOrigin(t *testing.T) {
	db := newTestDB(t)
	b := bus.NewMemoryBus()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := b.Subscribe(ctx)
	require.NoError(t, err)

	s := New(db, b, "ctx-a", logging.Nop())
	require.NoError(t, s.SetSessionPointer(ctx, "id-1"))

	select {
	case c := <-ch:
		assert.Equal(t, bus.Change{Key: KeySession, Origin: "ctx-a"}, c)
	case <-time.After(time.Second):
		t.Fatal("no change published")
	}
}

func TestStore_ScanLease(t *testing.T) {
	s, db := newTestStore(t)
	other := New(db, nil, "ctx-b", logging.Nop())
	ctx := context.Background()

	ok, err := s.AcquireScanLease(ctx, "r1", "t1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = other.AcquireScanLease(ctx, "r1", "t2", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.ReleaseScanLease(ctx, "r1", "t1"))
	ok, err = other.AcquireScanLease(ctx, "r1", "t2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAffectsIdentity(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{KeySession, true},
		{KeyUserIndex, true},
		{IdentityKey("42"), true},
		{ScanReportsKey("42"), false},
		{KeyVersion, false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, AffectsIdentity(tt.key))
		})
	}
}
