package access_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/access"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/catalog"
)

type fakeCollections struct {
	collections map[int64]*catalog.Collection
}

func (f *fakeCollections) GetCollectionByID(_ context.Context, id int64) (*catalog.Collection, error) {
	col, ok := f.collections[id]
	if !ok {
		return nil, fmt.Errorf("collection with id %d: %w", id, catalog.ErrNotFound)
	}
	return col, nil
}

type fakeGrants struct {
	capabilities map[[2]int64]catalog.Capability
}

func (f *fakeGrants) MaxAcceptedCapability(_ context.Context, userID, collectionID int64) (catalog.Capability, error) {
	return f.capabilities[[2]int64{userID, collectionID}], nil
}

func newTestEvaluator() (*access.Evaluator, *fakeGrants) {
	collections := &fakeCollections{collections: map[int64]*catalog.Collection{
		1: {ID: 1, Name: "Workshop", OwnerUserID: 10, Status: catalog.StatusActive},
	}}
	grants := &fakeGrants{capabilities: map[[2]int64]catalog.Capability{}}
	return access.NewEvaluator(collections, grants), grants
}

func TestCapabilityOf_OwnerIsImplicit(t *testing.T) {
	evaluator, _ := newTestEvaluator()

	capability, err := evaluator.CapabilityOf(context.Background(), 10, 1)
	if err != nil {
		t.Fatalf("capability of owner: %v", err)
	}
	if capability != catalog.CapabilityOwner {
		t.Fatalf("expected owner capability, got %v", capability)
	}
}

func TestCapabilityOf_GrantDecides(t *testing.T) {
	evaluator, grants := newTestEvaluator()
	grants.capabilities[[2]int64{20, 1}] = catalog.CapabilityWrite

	capability, err := evaluator.CapabilityOf(context.Background(), 20, 1)
	if err != nil {
		t.Fatalf("capability of grantee: %v", err)
	}
	if capability != catalog.CapabilityWrite {
		t.Fatalf("expected write capability, got %v", capability)
	}

	capability, err = evaluator.CapabilityOf(context.Background(), 30, 1)
	if err != nil {
		t.Fatalf("capability of stranger: %v", err)
	}
	if capability != catalog.CapabilityNone {
		t.Fatalf("expected none capability, got %v", capability)
	}
}

func TestCheck_BelowMinimumForbidden(t *testing.T) {
	evaluator, grants := newTestEvaluator()
	grants.capabilities[[2]int64{20, 1}] = catalog.CapabilityRead

	if err := evaluator.Check(context.Background(), 20, 1, catalog.CapabilityRead); err != nil {
		t.Fatalf("read check for reader: %v", err)
	}
	if err := evaluator.Check(context.Background(), 20, 1, catalog.CapabilityWrite); !errors.Is(err, catalog.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCheck_UnknownCollection(t *testing.T) {
	evaluator, _ := newTestEvaluator()

	err := evaluator.Check(context.Background(), 10, 99, catalog.CapabilityRead)
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
