package trash

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/catalog"
	catalogstore "github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/catalog/store"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/platform/database"
	"github.com/rs/zerolog/log"
)

const DefaultRetention = 30 * 24 * time.Hour

type AccessChecker interface {
	Check(ctx context.Context, userID, collectionID int64, required catalog.Capability) error
}

// Service orchestrates soft delete, restore and purge. Every operation
// runs inside one transaction spanning all entity-status writes and
// trash bookkeeping, and holds the owning collection's lock for its
// whole duration.
type Service struct {
	db        *sql.DB
	catalog   *catalogstore.Store
	trash     *Store
	access    AccessChecker
	locks     *catalog.CollectionLocks
	retention time.Duration
}

// NewService expects the same lock set the catalog service uses, so
// structural creates and lifecycle cascades serialize against each
// other.
func NewService(db *sql.DB, catalogStore *catalogstore.Store, trashStore *Store, access AccessChecker, locks *catalog.CollectionLocks, retention time.Duration) *Service {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Service{
		db:        db,
		catalog:   catalogStore,
		trash:     trashStore,
		access:    access,
		locks:     locks,
		retention: retention,
	}
}

func (s *Service) Retention() time.Duration {
	return s.retention
}

// SoftDelete transitions the entity and its cascade descendants to
// Deleted and writes exactly one trash record at the cascade root.
func (s *Service) SoftDelete(ctx context.Context, entityType catalog.EntityType, entityID, actorID int64) (*Record, error) {
	switch entityType {
	case catalog.EntityCollection:
		return s.softDeleteCollection(ctx, entityID, actorID)
	case catalog.EntityContainer:
		return s.softDeleteContainer(ctx, entityID, actorID)
	case catalog.EntityItem:
		return s.softDeleteItem(ctx, entityID, actorID)
	}
	return nil, fmt.Errorf("%w: unknown entity type %q", catalog.ErrInvalid, entityType)
}

func (s *Service) softDeleteCollection(ctx context.Context, id, actorID int64) (*Record, error) {
	col, err := s.catalog.GetCollectionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if col.Status != catalog.StatusActive {
		return nil, fmt.Errorf("collection %d is already deleted: %w", id, catalog.ErrConflict)
	}
	if err := s.access.Check(ctx, actorID, id, catalog.CapabilityOwner); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	var record *Record
	err = database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		cs := s.catalog.WithTx(tx)
		ts := s.trash.WithTx(tx)

		col, err := cs.GetCollectionByID(ctx, id)
		if err != nil {
			return err
		}
		if col.Status != catalog.StatusActive {
			return fmt.Errorf("collection %d is already deleted: %w", id, catalog.ErrConflict)
		}

		containerIDs, err := cs.ListActiveContainerIDsByCollection(ctx, id)
		if err != nil {
			return err
		}
		itemIDs, err := cs.ListCascadeItemIDs(ctx, containerIDs)
		if err != nil {
			return err
		}

		record, err = ts.CreateRecord(ctx, &Record{
			EntityType:  catalog.EntityCollection,
			EntityID:    id,
			DisplayName: col.Name,
			Snapshot:    snapshotJSON(col),
			DeletedBy:   actorID,
			DeletedAt:   time.Now(),
		})
		if err != nil {
			return err
		}

		trashID := record.ID
		if err := cs.SetCollectionStatus(ctx, id, catalog.StatusDeleted, &trashID); err != nil {
			return err
		}
		if err := cs.SetContainersStatus(ctx, containerIDs, catalog.StatusDeleted, &trashID); err != nil {
			return err
		}
		return cs.SetItemsStatus(ctx, itemIDs, catalog.StatusDeleted, &trashID)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("entityType", string(catalog.EntityCollection)).
		Int64("entityId", id).
		Int64("trashId", record.ID).
		Int64("actor", actorID).
		Msg("soft-deleted")
	return record, nil
}

func (s *Service) softDeleteContainer(ctx context.Context, id, actorID int64) (*Record, error) {
	cont, err := s.catalog.GetContainerByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cont.Status != catalog.StatusActive {
		return nil, fmt.Errorf("container %d is already deleted: %w", id, catalog.ErrConflict)
	}
	if err := s.access.Check(ctx, actorID, cont.CollectionID, catalog.CapabilityOwner); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(cont.CollectionID)
	defer unlock()

	var record *Record
	err = database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		cs := s.catalog.WithTx(tx)
		ts := s.trash.WithTx(tx)

		cont, err := cs.GetContainerByID(ctx, id)
		if err != nil {
			return err
		}
		if cont.Status != catalog.StatusActive {
			return fmt.Errorf("container %d is already deleted: %w", id, catalog.ErrConflict)
		}

		itemIDs, err := cs.ListCascadeItemIDs(ctx, []int64{id})
		if err != nil {
			return err
		}

		record, err = ts.CreateRecord(ctx, &Record{
			EntityType:  catalog.EntityContainer,
			EntityID:    id,
			DisplayName: cont.Name,
			Snapshot:    snapshotJSON(cont),
			DeletedBy:   actorID,
			DeletedAt:   time.Now(),
		})
		if err != nil {
			return err
		}

		trashID := record.ID
		if err := cs.SetContainersStatus(ctx, []int64{id}, catalog.StatusDeleted, &trashID); err != nil {
			return err
		}
		return cs.SetItemsStatus(ctx, itemIDs, catalog.StatusDeleted, &trashID)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("entityType", string(catalog.EntityContainer)).
		Int64("entityId", id).
		Int64("trashId", record.ID).
		Int64("actor", actorID).
		Msg("soft-deleted")
	return record, nil
}

func (s *Service) softDeleteItem(ctx context.Context, id, actorID int64) (*Record, error) {
	item, err := s.catalog.GetItemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Status != catalog.StatusActive {
		return nil, fmt.Errorf("item %d is already deleted: %w", id, catalog.ErrConflict)
	}

	collectionIDs, err := s.catalog.ActiveCollectionIDsForItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(collectionIDs) == 0 {
		// Unplaced item: only its owner can delete it.
		if item.OwnerUserID != actorID {
			return nil, fmt.Errorf("item %d: %w", id, catalog.ErrForbidden)
		}
	}
	for _, collectionID := range collectionIDs {
		if err := s.access.Check(ctx, actorID, collectionID, catalog.CapabilityOwner); err != nil {
			return nil, err
		}
	}

	unlock := s.locks.Lock(collectionIDs...)
	defer unlock()

	var record *Record
	err = database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		cs := s.catalog.WithTx(tx)
		ts := s.trash.WithTx(tx)

		item, err := cs.GetItemByID(ctx, id)
		if err != nil {
			return err
		}
		if item.Status != catalog.StatusActive {
			return fmt.Errorf("item %d is already deleted: %w", id, catalog.ErrConflict)
		}

		record, err = ts.CreateRecord(ctx, &Record{
			EntityType:  catalog.EntityItem,
			EntityID:    id,
			DisplayName: item.Name,
			Snapshot:    snapshotJSON(item),
			DeletedBy:   actorID,
			DeletedAt:   time.Now(),
		})
		if err != nil {
			return err
		}

		trashID := record.ID
		return cs.SetItemsStatus(ctx, []int64{id}, catalog.StatusDeleted, &trashID)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("entityType", string(catalog.EntityItem)).
		Int64("entityId", id).
		Int64("trashId", record.ID).
		Int64("actor", actorID).
		Msg("soft-deleted")
	return record, nil
}

// Restore reactivates every row stamped with the record's trash id and
// marks the record restored, which is terminal for the record. Only the
// user who performed the delete may restore.
func (s *Service) Restore(ctx context.Context, recordID, actorID int64) (*RestoredSummary, error) {
	record, err := s.trash.GetRecordByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if record.RestoredAt != nil {
		return nil, fmt.Errorf("trash record %d already restored: %w", recordID, catalog.ErrConflict)
	}
	if record.DeletedBy != actorID {
		return nil, fmt.Errorf("trash record %d belongs to another user: %w", recordID, catalog.ErrForbidden)
	}

	collectionID, err := s.restoreParentCollection(ctx, record)
	if err != nil {
		return nil, err
	}

	if collectionID != 0 {
		unlock := s.locks.Lock(collectionID)
		defer unlock()
	}

	now := time.Now()
	err = database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		cs := s.catalog.WithTx(tx)
		ts := s.trash.WithTx(tx)

		if err := cs.RestoreByTrashID(ctx, record.ID); err != nil {
			return err
		}
		return ts.MarkRestored(ctx, record.ID, now)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("entityType", string(record.EntityType)).
		Int64("entityId", record.EntityID).
		Int64("trashId", record.ID).
		Int64("actor", actorID).
		Msg("restored")

	return &RestoredSummary{
		RecordID:   record.ID,
		EntityType: record.EntityType,
		EntityID:   record.EntityID,
		RestoredAt: now,
	}, nil
}

// restoreParentCollection verifies the record's entity still has a
// place to come back to and returns the collection to lock, or zero
// when no collection is involved.
func (s *Service) restoreParentCollection(ctx context.Context, record *Record) (int64, error) {
	switch record.EntityType {
	case catalog.EntityCollection:
		if _, err := s.catalog.GetCollectionByID(ctx, record.EntityID); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return 0, fmt.Errorf("collection %d no longer exists: %w", record.EntityID, catalog.ErrInvalid)
			}
			return 0, err
		}
		return record.EntityID, nil

	case catalog.EntityContainer:
		cont, err := s.catalog.GetContainerByID(ctx, record.EntityID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return 0, fmt.Errorf("container %d no longer exists: %w", record.EntityID, catalog.ErrInvalid)
			}
			return 0, err
		}
		col, err := s.catalog.GetCollectionByID(ctx, cont.CollectionID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return 0, fmt.Errorf("parent collection %d no longer exists: %w", cont.CollectionID, catalog.ErrInvalid)
			}
			return 0, err
		}
		if col.Status != catalog.StatusActive {
			return 0, fmt.Errorf("parent collection %d is deleted: %w", cont.CollectionID, catalog.ErrInvalid)
		}
		return cont.CollectionID, nil

	case catalog.EntityItem:
		if _, err := s.catalog.GetItemByID(ctx, record.EntityID); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return 0, fmt.Errorf("item %d no longer exists: %w", record.EntityID, catalog.ErrInvalid)
			}
			return 0, err
		}
		return 0, nil
	}
	return 0, fmt.Errorf("%w: unknown entity type %q", catalog.ErrInvalid, record.EntityType)
}

// Purge permanently removes every row stamped with the record's trash
// id along with the record itself. Restored records are not purgeable:
// their rows are live again.
func (s *Service) Purge(ctx context.Context, recordID int64) error {
	record, err := s.trash.GetRecordByID(ctx, recordID)
	if err != nil {
		return err
	}
	if record.RestoredAt != nil {
		return fmt.Errorf("trash record %d was restored: %w", recordID, catalog.ErrConflict)
	}

	err = database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		cs := s.catalog.WithTx(tx)
		ts := s.trash.WithTx(tx)

		if err := cs.PurgeByTrashID(ctx, record.ID); err != nil {
			return err
		}
		return ts.DeleteRecordByID(ctx, record.ID)
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("entityType", string(record.EntityType)).
		Int64("entityId", record.EntityID).
		Int64("trashId", record.ID).
		Msg("purged")
	return nil
}

// PurgeNow is the user-facing permanent delete: only the user who
// performed the soft delete may skip the retention window.
func (s *Service) PurgeNow(ctx context.Context, recordID, actorID int64) error {
	record, err := s.trash.GetRecordByID(ctx, recordID)
	if err != nil {
		return err
	}
	if record.DeletedBy != actorID {
		return fmt.Errorf("trash record %d belongs to another user: %w", recordID, catalog.ErrForbidden)
	}
	return s.Purge(ctx, recordID)
}

// ListTrash returns the user's unrestored records with the days left
// until the reaper may purge them.
func (s *Service) ListTrash(ctx context.Context, userID int64) ([]*Entry, error) {
	records, err := s.trash.ListRecordsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entries := make([]*Entry, 0, len(records))
	for _, record := range records {
		entries = append(entries, &Entry{
			ID:             record.ID,
			EntityType:     record.EntityType,
			EntityID:       record.EntityID,
			DisplayName:    record.DisplayName,
			DeletedAt:      record.DeletedAt,
			DaysUntilPurge: s.daysUntilPurge(record.DeletedAt, now),
		})
	}
	return entries, nil
}

// ExpiredRecords lists unrestored records past the retention window.
func (s *Service) ExpiredRecords(ctx context.Context) ([]*Record, error) {
	return s.trash.ListExpiredRecords(ctx, time.Now().Add(-s.retention))
}

func (s *Service) daysUntilPurge(deletedAt, now time.Time) int {
	remaining := s.retention - now.Sub(deletedAt)
	if remaining <= 0 {
		return 0
	}
	const day = 24 * time.Hour
	days := int(remaining / day)
	if remaining%day > 0 {
		days++
	}
	return days
}

func snapshotJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		// Snapshots are display-only; an unmarshalable entity must not
		// block the delete itself.
		return "{}"
	}
	return string(data)
}
