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
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/share"
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

var grantColumns = []string{
	"id", "collection_id", "invitee_identity", "invitee_user_id", "capability",
	"accepted", "inviter_user_id", "invite_method", "invite_token", "created_at", "accepted_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGrant(row rowScanner) (*share.Grant, error) {
	var g share.Grant
	var inviteeUserID sql.NullInt64
	var capability string
	var accepted int
	if err := row.Scan(
		&g.ID,
		&g.CollectionID,
		&g.InviteeIdentity,
		&inviteeUserID,
		&capability,
		&accepted,
		&g.InviterUserID,
		&g.InviteMethod,
		&g.InviteToken,
		&g.CreatedAt,
		&g.AcceptedAt,
	); err != nil {
		return nil, err
	}
	if inviteeUserID.Valid {
		g.InviteeUserID = &inviteeUserID.Int64
	}
	parsed, err := catalog.ParseCapability(capability)
	if err != nil {
		return nil, fmt.Errorf("grant %d has invalid capability: %w", g.ID, err)
	}
	g.Capability = parsed
	g.CapabilityName = parsed.String()
	g.Accepted = accepted == 1
	return &g, nil
}

func (s *Store) CreateGrant(ctx context.Context, grant *share.Grant) (*share.Grant, error) {
	accepted := 0
	if grant.Accepted {
		accepted = 1
	}

	query, args, err := s.qb.
		Insert("share_grants").
		Columns(
			"collection_id",
			"invitee_identity",
			"invitee_user_id",
			"capability",
			"accepted",
			"inviter_user_id",
			"invite_method",
			"invite_token",
			"created_at",
			"accepted_at",
		).
		Values(
			grant.CollectionID,
			grant.InviteeIdentity,
			grant.InviteeUserID,
			grant.Capability.String(),
			accepted,
			grant.InviterUserID,
			grant.InviteMethod,
			grant.InviteToken,
			grant.CreatedAt,
			grant.AcceptedAt,
		).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for CreateGrant: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, fmt.Errorf("invite token already exists: %w", catalog.ErrConflict)
		}
		return nil, fmt.Errorf("failed to insert share grant: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get share grant id: %w", err)
	}
	grant.ID = id
	return grant, nil
}

func (s *Store) GetGrantByID(ctx context.Context, id int64) (*share.Grant, error) {
	return s.getGrant(ctx, sq.Eq{"id": id}, fmt.Sprintf("share grant with id %d", id))
}

func (s *Store) GetGrantByToken(ctx context.Context, token string) (*share.Grant, error) {
	return s.getGrant(ctx, sq.Eq{"invite_token": token}, "share grant for token")
}

func (s *Store) FindGrantByCollectionAndIdentity(ctx context.Context, collectionID int64, identity string) (*share.Grant, error) {
	return s.getGrant(ctx,
		sq.Eq{"collection_id": collectionID, "invitee_identity": identity},
		fmt.Sprintf("share grant for %q on collection %d", identity, collectionID))
}

func (s *Store) getGrant(ctx context.Context, pred sq.Eq, desc string) (*share.Grant, error) {
	query, args, err := s.qb.
		Select(grantColumns...).
		From("share_grants").
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for getGrant: %w", err)
	}

	grant, err := scanGrant(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", desc, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan share grant row: %w", err)
	}
	return grant, nil
}

func (s *Store) ListGrantsByCollection(ctx context.Context, collectionID int64) ([]*share.Grant, error) {
	return s.listGrants(ctx, sq.Eq{"collection_id": collectionID})
}

func (s *Store) ListGrantsByUser(ctx context.Context, userID int64) ([]*share.Grant, error) {
	return s.listGrants(ctx, sq.Eq{"invitee_user_id": userID, "accepted": 1})
}

func (s *Store) listGrants(ctx context.Context, pred sq.Eq) ([]*share.Grant, error) {
	query, args, err := s.qb.
		Select(grantColumns...).
		From("share_grants").
		Where(pred).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for listGrants: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query share grants: %w", err)
	}
	defer rows.Close()

	grants := []*share.Grant{}
	for rows.Next() {
		grant, err := scanGrant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan share grant row: %w", err)
		}
		grants = append(grants, grant)
	}
	return grants, rows.Err()
}

func (s *Store) AcceptGrant(ctx context.Context, id, userID int64, at time.Time) error {
	query, args, err := s.qb.
		Update("share_grants").
		Set("invitee_user_id", userID).
		Set("accepted", 1).
		Set("accepted_at", at).
		Where(sq.Eq{"id": id, "accepted": 0}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL query for AcceptGrant: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to accept share grant: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("pending share grant with id %d: %w", id, catalog.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteGrant(ctx context.Context, id int64) error {
	query, args, err := s.qb.
		Delete("share_grants").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL query for DeleteGrant: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete share grant: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("share grant with id %d: %w", id, catalog.ErrNotFound)
	}
	return nil
}

// MaxAcceptedCapability feeds the access evaluator: the strongest
// capability among the user's accepted grants on the collection, or
// None when there is no grant at all.
func (s *Store) MaxAcceptedCapability(ctx context.Context, userID, collectionID int64) (catalog.Capability, error) {
	query, args, err := s.qb.
		Select("capability").
		From("share_grants").
		Where(sq.Eq{"invitee_user_id": userID, "collection_id": collectionID, "accepted": 1}).
		ToSql()
	if err != nil {
		return catalog.CapabilityNone, fmt.Errorf("failed to build SQL query for MaxAcceptedCapability: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return catalog.CapabilityNone, fmt.Errorf("failed to query capabilities: %w", err)
	}
	defer rows.Close()

	best := catalog.CapabilityNone
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return catalog.CapabilityNone, fmt.Errorf("failed to scan capability: %w", err)
		}
		capability, err := catalog.ParseCapability(raw)
		if err != nil {
			return catalog.CapabilityNone, err
		}
		if capability > best {
			best = capability
		}
	}
	return best, rows.Err()
}

// ListAcceptedCollectionIDs reports the collections shared with a user.
func (s *Store) ListAcceptedCollectionIDs(ctx context.Context, userID int64) ([]int64, error) {
	query, args, err := s.qb.
		Select("DISTINCT collection_id").
		From("share_grants").
		Where(sq.Eq{"invitee_user_id": userID, "accepted": 1}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for ListAcceptedCollectionIDs: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query shared collections: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan collection id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
