package share

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/account"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/catalog"
	"github.com/google/uuid"
)

type Storer interface {
	CreateGrant(ctx context.Context, grant *Grant) (*Grant, error)
	GetGrantByID(ctx context.Context, id int64) (*Grant, error)
	GetGrantByToken(ctx context.Context, token string) (*Grant, error)
	FindGrantByCollectionAndIdentity(ctx context.Context, collectionID int64, identity string) (*Grant, error)
	ListGrantsByCollection(ctx context.Context, collectionID int64) ([]*Grant, error)
	ListGrantsByUser(ctx context.Context, userID int64) ([]*Grant, error)
	AcceptGrant(ctx context.Context, id, userID int64, at time.Time) error
	DeleteGrant(ctx context.Context, id int64) error
}

// IdentityResolver maps an invitee identity to an existing account.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, identity string) (*account.User, bool)
}

type AccessChecker interface {
	Check(ctx context.Context, userID, collectionID int64, required catalog.Capability) error
}

type Service struct {
	store    Storer
	accounts IdentityResolver
	access   AccessChecker
}

func NewService(store Storer, accounts IdentityResolver, access AccessChecker) *Service {
	return &Service{
		store:    store,
		accounts: accounts,
		access:   access,
	}
}

// Invite creates a grant on a collection. Only Read and Write can be
// granted; ownership is never transferable through sharing. When the
// invitee identity resolves to an existing account the grant is
// accepted on the spot.
func (s *Service) Invite(ctx context.Context, actorID int64, req *InviteRequest) (*Grant, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", catalog.ErrInvalid)
	}
	identity := strings.TrimSpace(req.InviteeIdentity)
	if identity == "" {
		return nil, fmt.Errorf("%w: invitee identity is required", catalog.ErrInvalid)
	}

	capability, err := catalog.ParseCapability(req.Capability)
	if err != nil || capability != catalog.CapabilityRead && capability != catalog.CapabilityWrite {
		return nil, fmt.Errorf("%w: capability must be read or write", catalog.ErrInvalid)
	}

	if err := s.access.Check(ctx, actorID, req.CollectionID, catalog.CapabilityOwner); err != nil {
		return nil, err
	}

	if existing, err := s.store.FindGrantByCollectionAndIdentity(ctx, req.CollectionID, identity); err == nil && existing != nil {
		return nil, fmt.Errorf("grant for %q on collection %d already exists: %w", identity, req.CollectionID, catalog.ErrConflict)
	} else if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		return nil, err
	}

	method := req.InviteMethod
	if method == "" {
		method = "direct"
	}

	grant := &Grant{
		CollectionID:    req.CollectionID,
		InviteeIdentity: identity,
		Capability:      capability,
		CapabilityName:  capability.String(),
		InviterUserID:   actorID,
		InviteMethod:    method,
		InviteToken:     uuid.NewString(),
		CreatedAt:       time.Now(),
	}

	// Identity resolution doubles as acceptance. Account existence is
	// conflated with consent here; kept deliberately to match the
	// established sharing behavior.
	if user, ok := s.accounts.ResolveIdentity(ctx, identity); ok {
		if user.ID == actorID {
			return nil, fmt.Errorf("%w: cannot share a collection with yourself", catalog.ErrInvalid)
		}
		now := grant.CreatedAt
		grant.InviteeUserID = &user.ID
		grant.Accepted = true
		grant.AcceptedAt = &now
	}

	return s.store.CreateGrant(ctx, grant)
}

// Accept redeems a pending invite token for the calling user.
func (s *Service) Accept(ctx context.Context, token string, userID int64) (*Grant, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: invite token is required", catalog.ErrInvalid)
	}

	grant, err := s.store.GetGrantByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if grant.Accepted {
		return nil, fmt.Errorf("grant %d already accepted: %w", grant.ID, catalog.ErrConflict)
	}

	if err := s.store.AcceptGrant(ctx, grant.ID, userID, time.Now()); err != nil {
		return nil, err
	}
	return s.store.GetGrantByID(ctx, grant.ID)
}

// Revoke removes a grant. Only the collection owner may revoke; the
// owner's own capability is implicit and cannot be revoked this way.
func (s *Service) Revoke(ctx context.Context, grantID, actorID int64) error {
	grant, err := s.store.GetGrantByID(ctx, grantID)
	if err != nil {
		return err
	}
	if err := s.access.Check(ctx, actorID, grant.CollectionID, catalog.CapabilityOwner); err != nil {
		return err
	}
	return s.store.DeleteGrant(ctx, grantID)
}

// ListForCollection lists a collection's grants for its owner.
func (s *Service) ListForCollection(ctx context.Context, actorID, collectionID int64) ([]*Grant, error) {
	if err := s.access.Check(ctx, actorID, collectionID, catalog.CapabilityOwner); err != nil {
		return nil, err
	}
	return s.store.ListGrantsByCollection(ctx, collectionID)
}

// ListForUser lists the accepted grants held by a user.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]*Grant, error) {
	return s.store.ListGrantsByUser(ctx, userID)
}
