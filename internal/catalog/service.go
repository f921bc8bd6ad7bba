package catalog

import (
	"context"
	"fmt"
)

type Storer interface {
	CreateCollection(ctx context.Context, ownerID int64, req *CreateCollectionRequest) (*Collection, error)
	GetCollectionByID(ctx context.Context, id int64) (*Collection, error)
	ListCollectionsByOwner(ctx context.Context, ownerID int64) ([]*Collection, error)
	ListCollectionsByIDs(ctx context.Context, ids []int64) ([]*Collection, error)
	UpdateCollection(ctx context.Context, id int64, req *UpdateCollectionRequest) (*Collection, error)

	CreateContainer(ctx context.Context, ownerID int64, req *CreateContainerRequest) (*Container, error)
	GetContainerByID(ctx context.Context, id int64) (*Container, error)
	ListContainersByCollection(ctx context.Context, collectionID int64) ([]*Container, error)
	UpdateContainer(ctx context.Context, id int64, req *UpdateContainerRequest) (*Container, error)

	CreateItem(ctx context.Context, ownerID int64, req *CreateItemRequest) (*Item, error)
	GetItemByID(ctx context.Context, id int64) (*Item, error)
	ListItemsByContainer(ctx context.Context, containerID int64) ([]*Item, error)
	UpdateItem(ctx context.Context, id int64, req *UpdateItemRequest) (*Item, error)

	AddMembership(ctx context.Context, req *AddMembershipRequest) (*Membership, error)
	UpdateMembership(ctx context.Context, containerID, itemID int64, req *UpdateMembershipRequest) (*Membership, error)
	RemoveMembership(ctx context.Context, containerID, itemID int64) error
	MoveMembership(ctx context.Context, itemID, fromContainerID, toContainerID int64) error
	ListMembershipsByItem(ctx context.Context, itemID int64) ([]*Membership, error)
	ActiveCollectionIDsForItem(ctx context.Context, itemID int64) ([]int64, error)
}

// AccessChecker gates every mutating operation. Implemented by the
// access evaluator; faked in tests.
type AccessChecker interface {
	Check(ctx context.Context, userID, collectionID int64, required Capability) error
}

// SharedLister reports the collections a user can see through accepted
// share grants. Implemented by the share grant store.
type SharedLister interface {
	ListAcceptedCollectionIDs(ctx context.Context, userID int64) ([]int64, error)
}

type Service struct {
	store  Storer
	access AccessChecker
	shares SharedLister
	locks  *CollectionLocks
}

// NewService takes the lock set shared with the lifecycle service.
// Structural creates hold the collection's lock across the
// active-status check and the insert, so they cannot interleave with a
// delete cascade stamping the same collection.
func NewService(store Storer, access AccessChecker, shares SharedLister, locks *CollectionLocks) *Service {
	return &Service{
		store:  store,
		access: access,
		shares: shares,
		locks:  locks,
	}
}

func (s *Service) CreateCollection(ctx context.Context, actorID int64, req *CreateCollectionRequest) (*Collection, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", ErrInvalid)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, err)
	}
	return s.store.CreateCollection(ctx, actorID, req)
}

// ListCollections returns the actor's own collections plus those shared
// with them through accepted grants.
func (s *Service) ListCollections(ctx context.Context, actorID int64) ([]*Collection, error) {
	owned, err := s.store.ListCollectionsByOwner(ctx, actorID)
	if err != nil {
		return nil, err
	}

	sharedIDs, err := s.shares.ListAcceptedCollectionIDs(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if len(sharedIDs) == 0 {
		return owned, nil
	}

	shared, err := s.store.ListCollectionsByIDs(ctx, sharedIDs)
	if err != nil {
		return nil, err
	}
	return append(owned, shared...), nil
}

func (s *Service) GetCollection(ctx context.Context, actorID, id int64) (*Collection, error) {
	if err := s.access.Check(ctx, actorID, id, CapabilityRead); err != nil {
		return nil, err
	}
	col, err := s.store.GetCollectionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if col.Status != StatusActive {
		return nil, fmt.Errorf("collection %d: %w", id, ErrNotFound)
	}
	return col, nil
}

func (s *Service) UpdateCollection(ctx context.Context, actorID, id int64, req *UpdateCollectionRequest) (*Collection, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", ErrInvalid)
	}
	if err := s.access.Check(ctx, actorID, id, CapabilityWrite); err != nil {
		return nil, err
	}
	if _, err := s.GetCollection(ctx, actorID, id); err != nil {
		return nil, err
	}
	return s.store.UpdateCollection(ctx, id, req)
}

func (s *Service) CreateContainer(ctx context.Context, actorID int64, req *CreateContainerRequest) (*Container, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", ErrInvalid)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, err)
	}
	if err := s.access.Check(ctx, actorID, req.CollectionID, CapabilityWrite); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(req.CollectionID)
	defer unlock()

	col, err := s.store.GetCollectionByID(ctx, req.CollectionID)
	if err != nil {
		return nil, err
	}
	if col.Status != StatusActive {
		return nil, fmt.Errorf("collection %d: %w", req.CollectionID, ErrNotFound)
	}
	return s.store.CreateContainer(ctx, actorID, req)
}

func (s *Service) GetContainer(ctx context.Context, actorID, id int64) (*Container, error) {
	cont, err := s.store.GetContainerByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.access.Check(ctx, actorID, cont.CollectionID, CapabilityRead); err != nil {
		return nil, err
	}
	if cont.Status != StatusActive {
		return nil, fmt.Errorf("container %d: %w", id, ErrNotFound)
	}
	return cont, nil
}

func (s *Service) ListContainers(ctx context.Context, actorID, collectionID int64) ([]*Container, error) {
	if err := s.access.Check(ctx, actorID, collectionID, CapabilityRead); err != nil {
		return nil, err
	}
	return s.store.ListContainersByCollection(ctx, collectionID)
}

func (s *Service) UpdateContainer(ctx context.Context, actorID, id int64, req *UpdateContainerRequest) (*Container, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", ErrInvalid)
	}
	cont, err := s.GetContainer(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if err := s.access.Check(ctx, actorID, cont.CollectionID, CapabilityWrite); err != nil {
		return nil, err
	}
	return s.store.UpdateContainer(ctx, id, req)
}

func (s *Service) CreateItem(ctx context.Context, actorID int64, req *CreateItemRequest) (*Item, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", ErrInvalid)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, err)
	}
	if req.ContainerID != nil {
		cont, err := s.store.GetContainerByID(ctx, *req.ContainerID)
		if err != nil {
			return nil, err
		}
		if err := s.access.Check(ctx, actorID, cont.CollectionID, CapabilityWrite); err != nil {
			return nil, err
		}

		unlock := s.locks.Lock(cont.CollectionID)
		defer unlock()

		// Re-read under the lock: a cascade may have stamped the
		// container between the first fetch and here.
		cont, err = s.store.GetContainerByID(ctx, *req.ContainerID)
		if err != nil {
			return nil, err
		}
		if cont.Status != StatusActive {
			return nil, fmt.Errorf("container %d: %w", *req.ContainerID, ErrNotFound)
		}
	}
	return s.store.CreateItem(ctx, actorID, req)
}

// GetItem allows the item's owner always, otherwise requires Read on at
// least one collection the item is actively placed in.
func (s *Service) GetItem(ctx context.Context, actorID, id int64) (*Item, error) {
	item, err := s.store.GetItemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Status != StatusActive {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	if item.OwnerUserID == actorID {
		return item, nil
	}

	collectionIDs, err := s.store.ActiveCollectionIDsForItem(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, collectionID := range collectionIDs {
		if err := s.access.Check(ctx, actorID, collectionID, CapabilityRead); err == nil {
			return item, nil
		}
	}
	return nil, fmt.Errorf("item %d: %w", id, ErrForbidden)
}

func (s *Service) ListItems(ctx context.Context, actorID, containerID int64) ([]*Item, error) {
	cont, err := s.store.GetContainerByID(ctx, containerID)
	if err != nil {
		return nil, err
	}
	if err := s.access.Check(ctx, actorID, cont.CollectionID, CapabilityRead); err != nil {
		return nil, err
	}
	return s.store.ListItemsByContainer(ctx, containerID)
}

// UpdateItem requires Write on every collection the item is actively
// placed in; an unplaced item may only be changed by its owner.
func (s *Service) UpdateItem(ctx context.Context, actorID, id int64, req *UpdateItemRequest) (*Item, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", ErrInvalid)
	}
	item, err := s.store.GetItemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Status != StatusActive {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}

	collectionIDs, err := s.store.ActiveCollectionIDsForItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(collectionIDs) == 0 {
		if item.OwnerUserID != actorID {
			return nil, fmt.Errorf("item %d: %w", id, ErrForbidden)
		}
	}
	for _, collectionID := range collectionIDs {
		if err := s.access.Check(ctx, actorID, collectionID, CapabilityWrite); err != nil {
			return nil, err
		}
	}
	return s.store.UpdateItem(ctx, id, req)
}

func (s *Service) AddMembership(ctx context.Context, actorID int64, req *AddMembershipRequest) (*Membership, error) {
	if req == nil || req.ContainerID <= 0 || req.ItemID <= 0 {
		return nil, fmt.Errorf("%w: containerId and itemId are required", ErrInvalid)
	}
	if req.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrInvalid)
	}

	cont, err := s.store.GetContainerByID(ctx, req.ContainerID)
	if err != nil {
		return nil, err
	}
	if err := s.access.Check(ctx, actorID, cont.CollectionID, CapabilityWrite); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(cont.CollectionID)
	defer unlock()

	cont, err = s.store.GetContainerByID(ctx, req.ContainerID)
	if err != nil {
		return nil, err
	}
	if cont.Status != StatusActive {
		return nil, fmt.Errorf("container %d: %w", req.ContainerID, ErrNotFound)
	}

	item, err := s.store.GetItemByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if item.Status != StatusActive {
		return nil, fmt.Errorf("item %d: %w", req.ItemID, ErrNotFound)
	}

	return s.store.AddMembership(ctx, req)
}

func (s *Service) UpdateMembership(ctx context.Context, actorID, containerID, itemID int64, req *UpdateMembershipRequest) (*Membership, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", ErrInvalid)
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrInvalid)
	}
	cont, err := s.store.GetContainerByID(ctx, containerID)
	if err != nil {
		return nil, err
	}
	if err := s.access.Check(ctx, actorID, cont.CollectionID, CapabilityWrite); err != nil {
		return nil, err
	}
	return s.store.UpdateMembership(ctx, containerID, itemID, req)
}

func (s *Service) RemoveMembership(ctx context.Context, actorID, containerID, itemID int64) error {
	cont, err := s.store.GetContainerByID(ctx, containerID)
	if err != nil {
		return err
	}
	if err := s.access.Check(ctx, actorID, cont.CollectionID, CapabilityWrite); err != nil {
		return err
	}
	return s.store.RemoveMembership(ctx, containerID, itemID)
}

// MoveItem relocates an item between containers. Both sides require
// Owner: moving can remove the item's visibility from one collection
// entirely, which is beyond what Write covers.
func (s *Service) MoveItem(ctx context.Context, actorID int64, req *MoveItemRequest) error {
	if req == nil || req.ItemID <= 0 || req.FromContainerID <= 0 || req.ToContainerID <= 0 {
		return fmt.Errorf("%w: itemId, fromContainerId and toContainerId are required", ErrInvalid)
	}
	if req.FromContainerID == req.ToContainerID {
		return fmt.Errorf("%w: source and destination are the same container", ErrInvalid)
	}

	from, err := s.store.GetContainerByID(ctx, req.FromContainerID)
	if err != nil {
		return err
	}
	to, err := s.store.GetContainerByID(ctx, req.ToContainerID)
	if err != nil {
		return err
	}

	if err := s.access.Check(ctx, actorID, from.CollectionID, CapabilityOwner); err != nil {
		return err
	}
	if to.CollectionID != from.CollectionID {
		if err := s.access.Check(ctx, actorID, to.CollectionID, CapabilityOwner); err != nil {
			return err
		}
	}

	unlock := s.locks.Lock(from.CollectionID, to.CollectionID)
	defer unlock()

	from, err = s.store.GetContainerByID(ctx, req.FromContainerID)
	if err != nil {
		return err
	}
	to, err = s.store.GetContainerByID(ctx, req.ToContainerID)
	if err != nil {
		return err
	}
	if from.Status != StatusActive || to.Status != StatusActive {
		return fmt.Errorf("container: %w", ErrNotFound)
	}

	return s.store.MoveMembership(ctx, req.ItemID, req.FromContainerID, req.ToContainerID)
}
