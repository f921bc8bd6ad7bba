package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/catalog"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/platform/database"
)

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

type rowScanner interface {
	Scan(dest ...any) error
}

var collectionColumns = []string{
	"id", "collection_name", "collection_desc", "owner_user_id",
	"status", "trash_id", "created_at", "updated_at",
}

func scanCollection(row rowScanner) (*catalog.Collection, error) {
	var col catalog.Collection
	var status string
	var trashID sql.NullInt64
	if err := row.Scan(
		&col.ID,
		&col.Name,
		&col.Description,
		&col.OwnerUserID,
		&status,
		&trashID,
		&col.CreatedAt,
		&col.UpdatedAt,
	); err != nil {
		return nil, err
	}
	col.Status = catalog.Status(status)
	if trashID.Valid {
		col.TrashID = &trashID.Int64
	}
	return &col, nil
}

func (s *Store) CreateCollection(ctx context.Context, ownerID int64, req *catalog.CreateCollectionRequest) (*catalog.Collection, error) {
	now := time.Now()
	query, args, err := s.qb.
		Insert("collections").
		Columns("collection_name", "collection_desc", "owner_user_id", "status", "created_at").
		Values(req.Name, req.Description, ownerID, string(catalog.StatusActive), now).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for CreateCollection: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert collection: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get collection id: %w", err)
	}

	return &catalog.Collection{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		OwnerUserID: ownerID,
		Status:      catalog.StatusActive,
		CreatedAt:   now,
	}, nil
}

// GetCollectionByID returns the row regardless of status. Callers that
// must hide deleted rows check the status themselves.
func (s *Store) GetCollectionByID(ctx context.Context, id int64) (*catalog.Collection, error) {
	query, args, err := s.qb.
		Select(collectionColumns...).
		From("collections").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for GetCollectionByID: %w", err)
	}

	col, err := scanCollection(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("collection with id %d: %w", id, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan collection row: %w", err)
	}
	return col, nil
}

func (s *Store) ListCollectionsByOwner(ctx context.Context, ownerID int64) ([]*catalog.Collection, error) {
	return s.listCollections(ctx, sq.Eq{"owner_user_id": ownerID, "status": string(catalog.StatusActive)})
}

func (s *Store) ListCollectionsByIDs(ctx context.Context, ids []int64) ([]*catalog.Collection, error) {
	if len(ids) == 0 {
		return []*catalog.Collection{}, nil
	}
	return s.listCollections(ctx, sq.Eq{"id": ids, "status": string(catalog.StatusActive)})
}

func (s *Store) listCollections(ctx context.Context, pred any) ([]*catalog.Collection, error) {
	query, args, err := s.qb.
		Select(collectionColumns...).
		From("collections").
		Where(pred).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for listCollections: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	defer rows.Close()

	collections := []*catalog.Collection{}
	for rows.Next() {
		col, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collection row: %w", err)
		}
		collections = append(collections, col)
	}
	return collections, rows.Err()
}

func (s *Store) UpdateCollection(ctx context.Context, id int64, req *catalog.UpdateCollectionRequest) (*catalog.Collection, error) {
	builder := s.qb.Update("collections").Where(sq.Eq{"id": id})
	if req.Name != nil {
		builder = builder.Set("collection_name", *req.Name)
	}
	if req.Description != nil {
		builder = builder.Set("collection_desc", *req.Description)
	}
	builder = builder.Set("updated_at", time.Now())

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for UpdateCollection: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to update collection: %w", err)
	}
	return s.GetCollectionByID(ctx, id)
}

var containerColumns = []string{
	"id", "collection_id", "container_name", "container_desc",
	"owner_user_id", "status", "trash_id", "created_at", "updated_at",
}

func scanContainer(row rowScanner) (*catalog.Container, error) {
	var cont catalog.Container
	var status string
	var trashID sql.NullInt64
	if err := row.Scan(
		&cont.ID,
		&cont.CollectionID,
		&cont.Name,
		&cont.Description,
		&cont.OwnerUserID,
		&status,
		&trashID,
		&cont.CreatedAt,
		&cont.UpdatedAt,
	); err != nil {
		return nil, err
	}
	cont.Status = catalog.Status(status)
	if trashID.Valid {
		cont.TrashID = &trashID.Int64
	}
	return &cont, nil
}

func (s *Store) CreateContainer(ctx context.Context, ownerID int64, req *catalog.CreateContainerRequest) (*catalog.Container, error) {
	now := time.Now()
	query, args, err := s.qb.
		Insert("containers").
		Columns("collection_id", "container_name", "container_desc", "owner_user_id", "status", "created_at").
		Values(req.CollectionID, req.Name, req.Description, ownerID, string(catalog.StatusActive), now).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for CreateContainer: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert container: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get container id: %w", err)
	}

	return &catalog.Container{
		ID:           id,
		CollectionID: req.CollectionID,
		Name:         req.Name,
		Description:  req.Description,
		OwnerUserID:  ownerID,
		Status:       catalog.StatusActive,
		CreatedAt:    now,
	}, nil
}

func (s *Store) GetContainerByID(ctx context.Context, id int64) (*catalog.Container, error) {
	query, args, err := s.qb.
		Select(containerColumns...).
		From("containers").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for GetContainerByID: %w", err)
	}

	cont, err := scanContainer(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("container with id %d: %w", id, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan container row: %w", err)
	}
	return cont, nil
}

func (s *Store) ListContainersByCollection(ctx context.Context, collectionID int64) ([]*catalog.Container, error) {
	query, args, err := s.qb.
		Select(containerColumns...).
		From("containers").
		Where(sq.Eq{"collection_id": collectionID, "status": string(catalog.StatusActive)}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for ListContainersByCollection: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query containers: %w", err)
	}
	defer rows.Close()

	containers := []*catalog.Container{}
	for rows.Next() {
		cont, err := scanContainer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan container row: %w", err)
		}
		containers = append(containers, cont)
	}
	return containers, rows.Err()
}

func (s *Store) UpdateContainer(ctx context.Context, id int64, req *catalog.UpdateContainerRequest) (*catalog.Container, error) {
	builder := s.qb.Update("containers").Where(sq.Eq{"id": id})
	if req.Name != nil {
		builder = builder.Set("container_name", *req.Name)
	}
	if req.Description != nil {
		builder = builder.Set("container_desc", *req.Description)
	}
	builder = builder.Set("updated_at", time.Now())

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for UpdateContainer: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to update container: %w", err)
	}
	return s.GetContainerByID(ctx, id)
}

var itemColumns = []string{
	"id", "item_name", "item_desc", "type_id",
	"owner_user_id", "status", "trash_id", "created_at", "updated_at",
}

func scanItem(row rowScanner) (*catalog.Item, error) {
	var item catalog.Item
	var status string
	var trashID sql.NullInt64
	if err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&item.TypeID,
		&item.OwnerUserID,
		&status,
		&trashID,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	item.Status = catalog.Status(status)
	if trashID.Valid {
		item.TrashID = &trashID.Int64
	}
	return &item, nil
}

func (s *Store) CreateItem(ctx context.Context, ownerID int64, req *catalog.CreateItemRequest) (*catalog.Item, error) {
	now := time.Now()
	query, args, err := s.qb.
		Insert("items").
		Columns("item_name", "item_desc", "type_id", "owner_user_id", "status", "created_at").
		Values(req.Name, req.Description, req.TypeID, ownerID, string(catalog.StatusActive), now).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for CreateItem: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get item id: %w", err)
	}

	if req.ContainerID != nil {
		quantity := req.Quantity
		if quantity == 0 {
			quantity = 1
		}
		if _, err := s.AddMembership(ctx, &catalog.AddMembershipRequest{
			ContainerID: *req.ContainerID,
			ItemID:      id,
			Quantity:    quantity,
			Notes:       req.Notes,
		}); err != nil {
			return nil, err
		}
	}

	return &catalog.Item{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		TypeID:      req.TypeID,
		OwnerUserID: ownerID,
		Status:      catalog.StatusActive,
		CreatedAt:   now,
	}, nil
}

func (s *Store) GetItemByID(ctx context.Context, id int64) (*catalog.Item, error) {
	query, args, err := s.qb.
		Select(itemColumns...).
		From("items").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for GetItemByID: %w", err)
	}

	item, err := scanItem(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("item with id %d: %w", id, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan item row: %w", err)
	}
	return item, nil
}

func (s *Store) ListItemsByContainer(ctx context.Context, containerID int64) ([]*catalog.Item, error) {
	prefixed := make([]string, len(itemColumns))
	for i, col := range itemColumns {
		prefixed[i] = "i." + col
	}

	query, args, err := s.qb.
		Select(prefixed...).
		From("items i").
		Join("memberships m ON m.item_id = i.id").
		Where(sq.Eq{"m.container_id": containerID, "i.status": string(catalog.StatusActive)}).
		OrderBy("i.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for ListItemsByContainer: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := []*catalog.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) UpdateItem(ctx context.Context, id int64, req *catalog.UpdateItemRequest) (*catalog.Item, error) {
	builder := s.qb.Update("items").Where(sq.Eq{"id": id})
	if req.Name != nil {
		builder = builder.Set("item_name", *req.Name)
	}
	if req.Description != nil {
		builder = builder.Set("item_desc", *req.Description)
	}
	if req.TypeID != nil {
		builder = builder.Set("type_id", *req.TypeID)
	}
	builder = builder.Set("updated_at", time.Now())

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for UpdateItem: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return s.GetItemByID(ctx, id)
}

func (s *Store) AddMembership(ctx context.Context, req *catalog.AddMembershipRequest) (*catalog.Membership, error) {
	now := time.Now()
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	query, args, err := s.qb.
		Insert("memberships").
		Columns("container_id", "item_id", "quantity", "notes", "created_at").
		Values(req.ContainerID, req.ItemID, quantity, req.Notes, now).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for AddMembership: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, fmt.Errorf("item %d already placed in container %d: %w", req.ItemID, req.ContainerID, catalog.ErrConflict)
		}
		return nil, fmt.Errorf("failed to insert membership: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get membership id: %w", err)
	}

	return &catalog.Membership{
		ID:          id,
		ContainerID: req.ContainerID,
		ItemID:      req.ItemID,
		Quantity:    quantity,
		Notes:       req.Notes,
		CreatedAt:   now,
	}, nil
}

func (s *Store) GetMembership(ctx context.Context, containerID, itemID int64) (*catalog.Membership, error) {
	query, args, err := s.qb.
		Select("id", "container_id", "item_id", "quantity", "notes", "created_at").
		From("memberships").
		Where(sq.Eq{"container_id": containerID, "item_id": itemID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for GetMembership: %w", err)
	}

	var m catalog.Membership
	if err := s.db.QueryRowContext(ctx, query, args...).
		Scan(&m.ID, &m.ContainerID, &m.ItemID, &m.Quantity, &m.Notes, &m.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("membership (%d,%d): %w", containerID, itemID, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan membership row: %w", err)
	}
	return &m, nil
}

func (s *Store) UpdateMembership(ctx context.Context, containerID, itemID int64, req *catalog.UpdateMembershipRequest) (*catalog.Membership, error) {
	builder := s.qb.Update("memberships").Where(sq.Eq{"container_id": containerID, "item_id": itemID})
	if req.Quantity != nil {
		builder = builder.Set("quantity", *req.Quantity)
	}
	if req.Notes != nil {
		builder = builder.Set("notes", *req.Notes)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for UpdateMembership: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update membership: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("membership (%d,%d): %w", containerID, itemID, catalog.ErrNotFound)
	}
	return s.GetMembership(ctx, containerID, itemID)
}

func (s *Store) RemoveMembership(ctx context.Context, containerID, itemID int64) error {
	query, args, err := s.qb.
		Delete("memberships").
		Where(sq.Eq{"container_id": containerID, "item_id": itemID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL query for RemoveMembership: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("membership (%d,%d): %w", containerID, itemID, catalog.ErrNotFound)
	}
	return nil
}

// MoveMembership relocates an item between containers in a single
// UPDATE so there is no window where the item is placed in neither.
func (s *Store) MoveMembership(ctx context.Context, itemID, fromContainerID, toContainerID int64) error {
	query, args, err := s.qb.
		Update("memberships").
		Set("container_id", toContainerID).
		Where(sq.Eq{"container_id": fromContainerID, "item_id": itemID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL query for MoveMembership: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("item %d already placed in container %d: %w", itemID, toContainerID, catalog.ErrConflict)
		}
		return fmt.Errorf("failed to move membership: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("membership (%d,%d): %w", fromContainerID, itemID, catalog.ErrNotFound)
	}
	return nil
}

func (s *Store) ListMembershipsByItem(ctx context.Context, itemID int64) ([]*catalog.Membership, error) {
	query, args, err := s.qb.
		Select("id", "container_id", "item_id", "quantity", "notes", "created_at").
		From("memberships").
		Where(sq.Eq{"item_id": itemID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for ListMembershipsByItem: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query memberships: %w", err)
	}
	defer rows.Close()

	memberships := []*catalog.Membership{}
	for rows.Next() {
		var m catalog.Membership
		if err := rows.Scan(&m.ID, &m.ContainerID, &m.ItemID, &m.Quantity, &m.Notes, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership row: %w", err)
		}
		memberships = append(memberships, &m)
	}
	return memberships, rows.Err()
}

// ActiveCollectionIDsForItem resolves the collections an item is
// visible in through memberships in active containers.
func (s *Store) ActiveCollectionIDsForItem(ctx context.Context, itemID int64) ([]int64, error) {
	query, args, err := s.qb.
		Select("DISTINCT c.collection_id").
		From("memberships m").
		Join("containers c ON c.id = m.container_id").
		Where(sq.Eq{"m.item_id": itemID, "c.status": string(catalog.StatusActive)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for ActiveCollectionIDsForItem: %w", err)
	}
	return s.queryIDs(ctx, query, args)
}

// ListActiveContainerIDsByCollection returns the active containers a
// collection cascade will sweep. Already-deleted containers keep their
// own trash linkage and are left alone.
func (s *Store) ListActiveContainerIDsByCollection(ctx context.Context, collectionID int64) ([]int64, error) {
	query, args, err := s.qb.
		Select("id").
		From("containers").
		Where(sq.Eq{"collection_id": collectionID, "status": string(catalog.StatusActive)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for ListActiveContainerIDsByCollection: %w", err)
	}
	return s.queryIDs(ctx, query, args)
}

// ListCascadeItemIDs returns the active items whose only placements in
// active containers fall inside the given container set. Items also
// placed in an active container outside the set survive the cascade.
func (s *Store) ListCascadeItemIDs(ctx context.Context, containerIDs []int64) ([]int64, error) {
	if len(containerIDs) == 0 {
		return []int64{}, nil
	}

	placedElsewhere := sq.Select("1").
		From("memberships m2").
		Join("containers c2 ON c2.id = m2.container_id").
		Where("m2.item_id = i.id").
		Where(sq.Eq{"c2.status": string(catalog.StatusActive)}).
		Where(sq.NotEq{"m2.container_id": containerIDs})

	query, args, err := s.qb.
		Select("DISTINCT i.id").
		From("items i").
		Join("memberships m ON m.item_id = i.id").
		Where(sq.Eq{"i.status": string(catalog.StatusActive)}).
		Where(sq.Eq{"m.container_id": containerIDs}).
		Where(sq.Expr("NOT EXISTS (?)", placedElsewhere)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for ListCascadeItemIDs: %w", err)
	}
	return s.queryIDs(ctx, query, args)
}

func (s *Store) queryIDs(ctx context.Context, query string, args []any) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ids: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) SetCollectionStatus(ctx context.Context, id int64, status catalog.Status, trashID *int64) error {
	return s.setStatus(ctx, "collections", sq.Eq{"id": id}, status, trashID)
}

func (s *Store) SetContainersStatus(ctx context.Context, ids []int64, status catalog.Status, trashID *int64) error {
	if len(ids) == 0 {
		return nil
	}
	return s.setStatus(ctx, "containers", sq.Eq{"id": ids}, status, trashID)
}

func (s *Store) SetItemsStatus(ctx context.Context, ids []int64, status catalog.Status, trashID *int64) error {
	if len(ids) == 0 {
		return nil
	}
	return s.setStatus(ctx, "items", sq.Eq{"id": ids}, status, trashID)
}

func (s *Store) setStatus(ctx context.Context, table string, pred sq.Eq, status catalog.Status, trashID *int64) error {
	builder := s.qb.
		Update(table).
		Set("status", string(status)).
		Where(pred)
	if trashID != nil {
		builder = builder.Set("trash_id", *trashID)
	} else {
		builder = builder.Set("trash_id", nil)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL query for setStatus on %s: %w", table, err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update %s status: %w", table, err)
	}
	return nil
}

// RestoreByTrashID flips every row stamped with the trash id back to
// active and clears the linkage, across all three entity tables.
func (s *Store) RestoreByTrashID(ctx context.Context, trashID int64) error {
	for _, table := range []string{"items", "containers", "collections"} {
		if err := s.setStatus(ctx, table, sq.Eq{"trash_id": trashID}, catalog.StatusActive, nil); err != nil {
			return err
		}
	}
	return nil
}

// PurgeByTrashID permanently removes every row stamped with the trash
// id, plus the memberships touching those rows. Leaves nothing to
// resolve afterwards.
func (s *Store) PurgeByTrashID(ctx context.Context, trashID int64) error {
	membershipCleanup := `DELETE FROM memberships
WHERE container_id IN (SELECT id FROM containers WHERE trash_id = ?)
   OR item_id IN (SELECT id FROM items WHERE trash_id = ?)`
	if _, err := s.db.ExecContext(ctx, membershipCleanup, trashID, trashID); err != nil {
		return fmt.Errorf("failed to purge memberships: %w", err)
	}

	for _, table := range []string{"items", "containers", "collections"} {
		query, args, err := s.qb.
			Delete(table).
			Where(sq.Eq{"trash_id": trashID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build SQL query for PurgeByTrashID on %s: %w", table, err)
		}
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to purge %s: %w", table, err)
		}
	}
	return nil
}
