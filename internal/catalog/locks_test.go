package catalog

import (
	"testing"
	"time"
)

func TestCollectionLocks_SerializesSameCollection(t *testing.T) {
	locks := NewCollectionLocks()

	unlock := locks.Lock(1)

	acquired := make(chan struct{})
	go func() {
		second := locks.Lock(1)
		close(acquired)
		second()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first still held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock never acquired after release")
	}
}

func TestCollectionLocks_DeduplicatesIDs(t *testing.T) {
	locks := NewCollectionLocks()

	unlock := locks.Lock(3, 3, 3)
	unlock()

	// Must be acquirable again afterwards.
	unlock = locks.Lock(3)
	unlock()
}

func TestCollectionLocks_IndependentCollections(t *testing.T) {
	locks := NewCollectionLocks()

	unlockA := locks.Lock(1)
	defer unlockA()

	acquired := make(chan struct{})
	go func() {
		unlockB := locks.Lock(2)
		close(acquired)
		unlockB()
	}()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("independent collection lock blocked")
	}
}
