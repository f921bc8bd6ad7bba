// Package access computes a user's effective capability over a
// collection. Ownership wins outright; otherwise the best accepted
// share grant decides.
package access

import (
	"context"
	"fmt"

	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/catalog"
)

type CollectionSource interface {
	GetCollectionByID(ctx context.Context, id int64) (*catalog.Collection, error)
}

type GrantSource interface {
	MaxAcceptedCapability(ctx context.Context, userID, collectionID int64) (catalog.Capability, error)
}

type Evaluator struct {
	collections CollectionSource
	grants      GrantSource
}

func NewEvaluator(collections CollectionSource, grants GrantSource) *Evaluator {
	return &Evaluator{
		collections: collections,
		grants:      grants,
	}
}

// CapabilityOf reports the user's effective capability. The collection
// row is consulted regardless of its lifecycle status so that checks
// keep working while a delete is in flight.
func (e *Evaluator) CapabilityOf(ctx context.Context, userID, collectionID int64) (catalog.Capability, error) {
	col, err := e.collections.GetCollectionByID(ctx, collectionID)
	if err != nil {
		return catalog.CapabilityNone, err
	}
	if col.OwnerUserID == userID {
		return catalog.CapabilityOwner, nil
	}
	return e.grants.MaxAcceptedCapability(ctx, userID, collectionID)
}

// Check fails with ErrForbidden when the user's capability is below the
// operation's minimum.
func (e *Evaluator) Check(ctx context.Context, userID, collectionID int64, required catalog.Capability) error {
	capability, err := e.CapabilityOf(ctx, userID, collectionID)
	if err != nil {
		return err
	}
	if !capability.Allows(required) {
		return fmt.Errorf("user %d needs %s on collection %d but has %s: %w",
			userID, required, collectionID, capability, catalog.ErrForbidden)
	}
	return nil
}
