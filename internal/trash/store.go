package trash

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/catalog"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/platform/database"
)

// Store persists trash records. It lives in the same package as the
// service because lifecycle transactions span it together with the
// catalog store.
type Store struct {
	db database.DBTX
	qb sq.StatementBuilderType
}

func NewStore(db database.DBTX) *Store {
	return &Store{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
}

// WithTx returns a copy of the store bound to the given transaction.
func (s *Store) WithTx(tx database.DBTX) *Store {
	return &Store{db: tx, qb: s.qb}
}

var recordColumns = []string{
	"id", "entity_type", "entity_id", "display_name", "snapshot",
	"deleted_by", "deleted_at", "restored_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var record Record
	var entityType string
	if err := row.Scan(
		&record.ID,
		&entityType,
		&record.EntityID,
		&record.DisplayName,
		&record.Snapshot,
		&record.DeletedBy,
		&record.DeletedAt,
		&record.RestoredAt,
	); err != nil {
		return nil, err
	}
	record.EntityType = catalog.EntityType(entityType)
	return &record, nil
}

func (s *Store) CreateRecord(ctx context.Context, record *Record) (*Record, error) {
	query, args, err := s.qb.
		Insert("trash_records").
		Columns("entity_type", "entity_id", "display_name", "snapshot", "deleted_by", "deleted_at").
		Values(
			string(record.EntityType),
			record.EntityID,
			record.DisplayName,
			record.Snapshot,
			record.DeletedBy,
			record.DeletedAt,
		).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for CreateRecord: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert trash record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get trash record id: %w", err)
	}
	record.ID = id
	return record, nil
}

func (s *Store) GetRecordByID(ctx context.Context, id int64) (*Record, error) {
	query, args, err := s.qb.
		Select(recordColumns...).
		From("trash_records").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for GetRecordByID: %w", err)
	}

	record, err := scanRecord(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("trash record with id %d: %w", id, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan trash record row: %w", err)
	}
	return record, nil
}

// ListRecordsByUser returns the user's unrestored records, newest
// first. Restored records are terminal and never shown.
func (s *Store) ListRecordsByUser(ctx context.Context, userID int64) ([]*Record, error) {
	query, args, err := s.qb.
		Select(recordColumns...).
		From("trash_records").
		Where(sq.Eq{"deleted_by": userID, "restored_at": nil}).
		OrderBy("deleted_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for ListRecordsByUser: %w", err)
	}
	return s.listRecords(ctx, query, args)
}

// ListExpiredRecords returns unrestored records deleted before cutoff.
func (s *Store) ListExpiredRecords(ctx context.Context, cutoff time.Time) ([]*Record, error) {
	query, args, err := s.qb.
		Select(recordColumns...).
		From("trash_records").
		Where(sq.Eq{"restored_at": nil}).
		Where(sq.Lt{"deleted_at": cutoff}).
		OrderBy("deleted_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for ListExpiredRecords: %w", err)
	}
	return s.listRecords(ctx, query, args)
}

func (s *Store) listRecords(ctx context.Context, query string, args []any) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trash records: %w", err)
	}
	defer rows.Close()

	records := []*Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trash record row: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// MarkRestored stamps restored_at. Guarded against double restore at
// the SQL level: only a record with a null restored_at matches.
func (s *Store) MarkRestored(ctx context.Context, id int64, at time.Time) error {
	query, args, err := s.qb.
		Update("trash_records").
		Set("restored_at", at).
		Where(sq.Eq{"id": id, "restored_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL query for MarkRestored: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark trash record restored: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("unrestored trash record with id %d: %w", id, catalog.ErrConflict)
	}
	return nil
}

func (s *Store) DeleteRecordByID(ctx context.Context, id int64) error {
	query, args, err := s.qb.
		Delete("trash_records").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL query for DeleteRecordByID: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete trash record: %w", err)
	}
	return nil
}
