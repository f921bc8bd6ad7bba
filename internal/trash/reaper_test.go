package trash_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/catalog"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/trash"
)

func TestSweep_PurgesExpiredRecords(t *testing.T) {
	f := setupFixtureWithRetention(t, time.Millisecond)
	ctx := context.Background()

	owner := f.createUser(t, "owner")
	col := f.createCollection(t, owner.ID, "Workshop")

	record, err := f.trash.SoftDelete(ctx, catalog.EntityCollection, col.ID, owner.ID)
	if err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	reaper := trash.NewReaper(f.trash, time.Hour)
	purged, err := reaper.Sweep(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if purged != 1 {
		t.Fatalf("purged = %d, want 1", purged)
	}

	if _, err := f.catalogStore.GetCollectionByID(ctx, col.ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected collection row gone, got %v", err)
	}
	if _, err := f.trash.Restore(ctx, record.ID, owner.ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected trash record gone, got %v", err)
	}
}

func TestSweep_SkipsRestoredRecords(t *testing.T) {
	f := setupFixtureWithRetention(t, time.Millisecond)
	ctx := context.Background()

	owner := f.createUser(t, "owner")
	restoredCol := f.createCollection(t, owner.ID, "Restored")

	record, err := f.trash.SoftDelete(ctx, catalog.EntityCollection, restoredCol.ID, owner.ID)
	if err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if _, err := f.trash.Restore(ctx, record.ID, owner.ID); err != nil {
		t.Fatalf("restore: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	reaper := trash.NewReaper(f.trash, time.Hour)
	purged, err := reaper.Sweep(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if purged != 0 {
		t.Fatalf("purged = %d, want 0", purged)
	}

	if got := f.collectionStatus(t, restoredCol.ID); got != catalog.StatusActive {
		t.Fatalf("restored collection status = %s, want active", got)
	}
}

func TestSweep_NothingExpired(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	owner := f.createUser(t, "owner")
	col := f.createCollection(t, owner.ID, "Workshop")
	if _, err := f.trash.SoftDelete(ctx, catalog.EntityCollection, col.ID, owner.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	reaper := trash.NewReaper(f.trash, time.Hour)
	purged, err := reaper.Sweep(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if purged != 0 {
		t.Fatalf("purged = %d, want 0", purged)
	}
}
