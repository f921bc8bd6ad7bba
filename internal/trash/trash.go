package trash

import (
	"time"

	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/catalog"
)

// Record is the trail left by a soft delete. Exactly one record exists
// per top-level delete; cascade descendants are stamped with the
// record's id instead of getting records of their own.
type Record struct {
	ID          int64              `json:"id"`
	EntityType  catalog.EntityType `json:"entityType"`
	EntityID    int64              `json:"entityId"`
	DisplayName string             `json:"displayName"`
	// Snapshot is a serialized copy of the entity's business fields at
	// deletion time. Display only; restore never reads it back.
	Snapshot   string     `json:"-"`
	DeletedBy  int64      `json:"deletedBy"`
	DeletedAt  time.Time  `json:"deletedAt"`
	RestoredAt *time.Time `json:"restoredAt,omitempty"`
}

// Entry is what the trash listing shows for one record.
type Entry struct {
	ID             int64              `json:"id"`
	EntityType     catalog.EntityType `json:"entityType"`
	EntityID       int64              `json:"entityId"`
	DisplayName    string             `json:"displayName"`
	DeletedAt      time.Time          `json:"deletedAt"`
	DaysUntilPurge int                `json:"daysUntilPurge"`
}

type RestoredSummary struct {
	RecordID   int64              `json:"recordId"`
	EntityType catalog.EntityType `json:"entityType"`
	EntityID   int64              `json:"entityId"`
	RestoredAt time.Time          `json:"restoredAt"`
}
