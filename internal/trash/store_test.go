package trash

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/catalog"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/platform/database"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	if _, err := db.ExecContext(context.Background(),
		`INSERT INTO users (id, username, password_hash, nickname, role, created_at, updated_at)
		 VALUES (1, 'tester', 'hash', 'tester', 'user', ?, ?)`,
		time.Now(), time.Now(),
	); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return NewStore(db)
}

func TestStore_RecordRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	created, err := store.CreateRecord(ctx, &Record{
		EntityType:  catalog.EntityCollection,
		EntityID:    7,
		DisplayName: "Workshop",
		Snapshot:    "{}",
		DeletedBy:   1,
		DeletedAt:   time.Now(),
	})
	if err != nil {
		t.Fatalf("create record: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected record id to be assigned")
	}

	got, err := store.GetRecordByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if got.EntityType != catalog.EntityCollection || got.EntityID != 7 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.RestoredAt != nil {
		t.Fatal("fresh record must not be restored")
	}
}

func TestStore_ListRecordsByUserSkipsRestored(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	first, err := store.CreateRecord(ctx, &Record{
		EntityType: catalog.EntityItem, EntityID: 1, DisplayName: "Hammer",
		Snapshot: "{}", DeletedBy: 1, DeletedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("create first record: %v", err)
	}
	if _, err := store.CreateRecord(ctx, &Record{
		EntityType: catalog.EntityItem, EntityID: 2, DisplayName: "Saw",
		Snapshot: "{}", DeletedBy: 1, DeletedAt: time.Now(),
	}); err != nil {
		t.Fatalf("create second record: %v", err)
	}

	if err := store.MarkRestored(ctx, first.ID, time.Now()); err != nil {
		t.Fatalf("mark restored: %v", err)
	}

	records, err := store.ListRecordsByUser(ctx, 1)
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(records) != 1 || records[0].EntityID != 2 {
		t.Fatalf("expected only the unrestored record, got %+v", records)
	}

	if err := store.MarkRestored(ctx, first.ID, time.Now()); !errors.Is(err, catalog.ErrConflict) {
		t.Fatalf("expected ErrConflict on second restore, got %v", err)
	}
}
