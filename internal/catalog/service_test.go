package catalog_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/access"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/account"
	accountstore "github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/account/store"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/catalog"
	catalogstore "github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/catalog/store"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/platform/database"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/share"
	sharestore "github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/share/store"
)

type fixture struct {
	db       *sql.DB
	accounts *account.Service
	catalog  *catalog.Service
	shares   *share.Service
	locks    *catalog.CollectionLocks
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate db: %v", err)
	}

	accounts := account.NewService(accountstore.NewStore(db))
	catalogStore := catalogstore.NewStore(db)
	shareStore := sharestore.NewStore(db)
	evaluator := access.NewEvaluator(catalogStore, shareStore)
	locks := catalog.NewCollectionLocks()

	return &fixture{
		db:       db,
		accounts: accounts,
		catalog:  catalog.NewService(catalogStore, evaluator, shareStore, locks),
		shares:   share.NewService(shareStore, accounts, evaluator),
		locks:    locks,
	}
}

func (f *fixture) createUser(t *testing.T, username string) *account.User {
	t.Helper()
	user, err := f.accounts.CreateUser(context.Background(), &account.CreateUserRequest{
		Username: username,
		Password: "secret123",
		Nickname: username,
		Role:     account.RoleUser,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func (f *fixture) createCollection(t *testing.T, ownerID int64, name string) *catalog.Collection {
	t.Helper()
	col, err := f.catalog.CreateCollection(context.Background(), ownerID, &catalog.CreateCollectionRequest{Name: name})
	if err != nil {
		t.Fatalf("create collection %s: %v", name, err)
	}
	return col
}

func (f *fixture) createContainer(t *testing.T, ownerID, collectionID int64, name string) *catalog.Container {
	t.Helper()
	cont, err := f.catalog.CreateContainer(context.Background(), ownerID, &catalog.CreateContainerRequest{
		CollectionID: collectionID,
		Name:         name,
	})
	if err != nil {
		t.Fatalf("create container %s: %v", name, err)
	}
	return cont
}

func (f *fixture) createItem(t *testing.T, ownerID int64, containerID *int64, name string) *catalog.Item {
	t.Helper()
	item, err := f.catalog.CreateItem(context.Background(), ownerID, &catalog.CreateItemRequest{
		Name:        name,
		ContainerID: containerID,
	})
	if err != nil {
		t.Fatalf("create item %s: %v", name, err)
	}
	return item
}

func (f *fixture) grant(t *testing.T, ownerID, collectionID int64, invitee, capability string) {
	t.Helper()
	if _, err := f.shares.Invite(context.Background(), ownerID, &share.InviteRequest{
		CollectionID:    collectionID,
		InviteeIdentity: invitee,
		Capability:      capability,
	}); err != nil {
		t.Fatalf("grant %s to %s: %v", capability, invitee, err)
	}
}

func TestGetCollection_SharedReadAccess(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	owner := f.createUser(t, "owner")
	reader := f.createUser(t, "reader")
	stranger := f.createUser(t, "stranger")
	col := f.createCollection(t, owner.ID, "Workshop")

	f.grant(t, owner.ID, col.ID, "reader", "read")

	got, err := f.catalog.GetCollection(ctx, reader.ID, col.ID)
	if err != nil {
		t.Fatalf("reader get collection: %v", err)
	}
	if got.Name != "Workshop" {
		t.Fatalf("unexpected collection name: %s", got.Name)
	}

	if _, err := f.catalog.GetCollection(ctx, stranger.ID, col.ID); !errors.Is(err, catalog.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for stranger, got %v", err)
	}
}

func TestUpdateCollection_RequiresWrite(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	owner := f.createUser(t, "owner")
	reader := f.createUser(t, "reader")
	writer := f.createUser(t, "writer")
	col := f.createCollection(t, owner.ID, "Garage")

	f.grant(t, owner.ID, col.ID, "reader", "read")
	f.grant(t, owner.ID, col.ID, "writer", "write")

	name := "Renamed"
	if _, err := f.catalog.UpdateCollection(ctx, reader.ID, col.ID, &catalog.UpdateCollectionRequest{Name: &name}); !errors.Is(err, catalog.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for reader, got %v", err)
	}

	updated, err := f.catalog.UpdateCollection(ctx, writer.ID, col.ID, &catalog.UpdateCollectionRequest{Name: &name})
	if err != nil {
		t.Fatalf("writer update collection: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Fatalf("unexpected name after update: %s", updated.Name)
	}
}

func TestCreateContainer_RequiresWrite(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	owner := f.createUser(t, "owner")
	reader := f.createUser(t, "reader")
	col := f.createCollection(t, owner.ID, "Attic")
	f.grant(t, owner.ID, col.ID, "reader", "read")

	_, err := f.catalog.CreateContainer(ctx, reader.ID, &catalog.CreateContainerRequest{
		CollectionID: col.ID,
		Name:         "Box",
	})
	if !errors.Is(err, catalog.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestListCollections_IncludesShared(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	owner := f.createUser(t, "owner")
	reader := f.createUser(t, "reader")
	mine := f.createCollection(t, reader.ID, "Mine")
	shared := f.createCollection(t, owner.ID, "Theirs")
	f.createCollection(t, owner.ID, "Private")

	f.grant(t, owner.ID, shared.ID, "reader", "read")

	collections, err := f.catalog.ListCollections(ctx, reader.ID)
	if err != nil {
		t.Fatalf("list collections: %v", err)
	}
	if len(collections) != 2 {
		t.Fatalf("expected 2 collections, got %d", len(collections))
	}
	ids := map[int64]bool{}
	for _, col := range collections {
		ids[col.ID] = true
	}
	if !ids[mine.ID] || !ids[shared.ID] {
		t.Fatalf("expected own and shared collections, got %v", ids)
	}
}

func TestGetItem_UnplacedOwnerOnly(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	owner := f.createUser(t, "owner")
	other := f.createUser(t, "other")
	item := f.createItem(t, owner.ID, nil, "Loose screwdriver")

	if _, err := f.catalog.GetItem(ctx, owner.ID, item.ID); err != nil {
		t.Fatalf("owner get item: %v", err)
	}
	if _, err := f.catalog.GetItem(ctx, other.ID, item.ID); !errors.Is(err, catalog.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestGetItem_ThroughSharedPlacement(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	owner := f.createUser(t, "owner")
	reader := f.createUser(t, "reader")
	col := f.createCollection(t, owner.ID, "Shed")
	cont := f.createContainer(t, owner.ID, col.ID, "Shelf")
	item := f.createItem(t, owner.ID, &cont.ID, "Drill")

	f.grant(t, owner.ID, col.ID, "reader", "read")

	got, err := f.catalog.GetItem(ctx, reader.ID, item.ID)
	if err != nil {
		t.Fatalf("reader get item: %v", err)
	}
	if got.Name != "Drill" {
		t.Fatalf("unexpected item name: %s", got.Name)
	}
}

func TestAddMembership_DuplicatePlacementConflict(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	owner := f.createUser(t, "owner")
	col := f.createCollection(t, owner.ID, "Shed")
	cont := f.createContainer(t, owner.ID, col.ID, "Shelf")
	item := f.createItem(t, owner.ID, &cont.ID, "Drill")

	_, err := f.catalog.AddMembership(ctx, owner.ID, &catalog.AddMembershipRequest{
		ContainerID: cont.ID,
		ItemID:      item.ID,
	})
	if !errors.Is(err, catalog.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestMoveItem_RequiresOwnerOnBothSides(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	owner := f.createUser(t, "owner")
	writer := f.createUser(t, "writer")
	col := f.createCollection(t, owner.ID, "Shed")
	from := f.createContainer(t, owner.ID, col.ID, "Shelf A")
	to := f.createContainer(t, owner.ID, col.ID, "Shelf B")
	item := f.createItem(t, owner.ID, &from.ID, "Drill")

	f.grant(t, owner.ID, col.ID, "writer", "write")

	err := f.catalog.MoveItem(ctx, writer.ID, &catalog.MoveItemRequest{
		ItemID:          item.ID,
		FromContainerID: from.ID,
		ToContainerID:   to.ID,
	})
	if !errors.Is(err, catalog.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for writer, got %v", err)
	}

	if err := f.catalog.MoveItem(ctx, owner.ID, &catalog.MoveItemRequest{
		ItemID:          item.ID,
		FromContainerID: from.ID,
		ToContainerID:   to.ID,
	}); err != nil {
		t.Fatalf("owner move item: %v", err)
	}

	items, err := f.catalog.ListItems(ctx, owner.ID, to.ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 || items[0].ID != item.ID {
		t.Fatalf("expected item in destination container, got %v", items)
	}
}

func TestMoveItem_SameContainerInvalid(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	owner := f.createUser(t, "owner")
	col := f.createCollection(t, owner.ID, "Shed")
	cont := f.createContainer(t, owner.ID, col.ID, "Shelf")
	item := f.createItem(t, owner.ID, &cont.ID, "Drill")

	err := f.catalog.MoveItem(ctx, owner.ID, &catalog.MoveItemRequest{
		ItemID:          item.ID,
		FromContainerID: cont.ID,
		ToContainerID:   cont.ID,
	})
	if !errors.Is(err, catalog.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestCreateCollection_ValidatesName(t *testing.T) {
	f := setupFixture(t)
	owner := f.createUser(t, "owner")

	_, err := f.catalog.CreateCollection(context.Background(), owner.ID, &catalog.CreateCollectionRequest{Name: "  "})
	if !errors.Is(err, catalog.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestCreateContainer_WaitsForCollectionLock(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	owner := f.createUser(t, "owner")
	col := f.createCollection(t, owner.ID, "Workshop")

	unlock := f.locks.Lock(col.ID)

	done := make(chan error, 1)
	go func() {
		_, err := f.catalog.CreateContainer(ctx, owner.ID, &catalog.CreateContainerRequest{
			CollectionID: col.ID,
			Name:         "Shelf",
		})
		done <- err
	}()

	select {
	case <-done:
		t.Fatal("create container did not wait for the collection lock")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("create container after unlock: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("create container never finished after unlock")
	}
}

func TestAddMembership_WaitsForCollectionLock(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	owner := f.createUser(t, "owner")
	col := f.createCollection(t, owner.ID, "Workshop")
	cont := f.createContainer(t, owner.ID, col.ID, "Shelf")
	item := f.createItem(t, owner.ID, nil, "Hammer")

	unlock := f.locks.Lock(col.ID)

	done := make(chan error, 1)
	go func() {
		_, err := f.catalog.AddMembership(ctx, owner.ID, &catalog.AddMembershipRequest{
			ContainerID: cont.ID,
			ItemID:      item.ID,
			Quantity:    1,
		})
		done <- err
	}()

	select {
	case <-done:
		t.Fatal("add membership did not wait for the collection lock")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("add membership after unlock: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("add membership never finished after unlock")
	}
}
