package catalog

import (
	"errors"
	"strings"
	"time"
)

// Status is the lifecycle state of a live entity row. Purged entities
// have no row at all, so the terminal state never appears here.
type Status string

const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)

type EntityType string

const (
	EntityCollection EntityType = "collection"
	EntityContainer  EntityType = "container"
	EntityItem       EntityType = "item"
)

func ParseEntityType(s string) (EntityType, error) {
	switch EntityType(strings.ToLower(strings.TrimSpace(s))) {
	case EntityCollection:
		return EntityCollection, nil
	case EntityContainer:
		return EntityContainer, nil
	case EntityItem:
		return EntityItem, nil
	}
	return "", errors.New("unknown entity type: " + s)
}

type Collection struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	OwnerUserID int64      `json:"ownerUserId"`
	Status      Status     `json:"status"`
	TrashID     *int64     `json:"-"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// Container belongs to exactly one collection for its whole life.
type Container struct {
	ID           int64      `json:"id"`
	CollectionID int64      `json:"collectionId"`
	Name         string     `json:"name"`
	Description  *string    `json:"description,omitempty"`
	OwnerUserID  int64      `json:"ownerUserId"`
	Status       Status     `json:"status"`
	TrashID      *int64     `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

type Item struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	TypeID      *string    `json:"typeId,omitempty"`
	OwnerUserID int64      `json:"ownerUserId"`
	Status      Status     `json:"status"`
	TrashID     *int64     `json:"-"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// Membership places an item in a container. An item may appear in any
// number of containers, but at most once per container.
type Membership struct {
	ID          int64     `json:"id"`
	ContainerID int64     `json:"containerId"`
	ItemID      int64     `json:"itemId"`
	Quantity    int       `json:"quantity"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CreateCollectionRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

func (req *CreateCollectionRequest) Validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return errors.New("name is required")
	}
	if len(req.Name) > 100 {
		return errors.New("name must be less than 100 characters")
	}
	return nil
}

type UpdateCollectionRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type CreateContainerRequest struct {
	CollectionID int64   `json:"collectionId"`
	Name         string  `json:"name"`
	Description  *string `json:"description,omitempty"`
}

func (req *CreateContainerRequest) Validate() error {
	if req.CollectionID <= 0 {
		return errors.New("collectionId is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return errors.New("name is required")
	}
	if len(req.Name) > 100 {
		return errors.New("name must be less than 100 characters")
	}
	return nil
}

type UpdateContainerRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type CreateItemRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	TypeID      *string `json:"typeId,omitempty"`
	// ContainerID optionally places the new item straight away.
	ContainerID *int64 `json:"containerId,omitempty"`
	Quantity    int    `json:"quantity,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

func (req *CreateItemRequest) Validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return errors.New("name is required")
	}
	if len(req.Name) > 200 {
		return errors.New("name must be less than 200 characters")
	}
	if req.ContainerID != nil && *req.ContainerID <= 0 {
		return errors.New("containerId must be positive")
	}
	if req.Quantity < 0 {
		return errors.New("quantity must not be negative")
	}
	return nil
}

type UpdateItemRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	TypeID      *string `json:"typeId,omitempty"`
}

type AddMembershipRequest struct {
	ContainerID int64   `json:"containerId"`
	ItemID      int64   `json:"itemId"`
	Quantity    int     `json:"quantity"`
	Notes       *string `json:"notes,omitempty"`
}

type UpdateMembershipRequest struct {
	Quantity *int    `json:"quantity,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

type MoveItemRequest struct {
	ItemID          int64 `json:"itemId"`
	FromContainerID int64 `json:"fromContainerId"`
	ToContainerID   int64 `json:"toContainerId"`
}
