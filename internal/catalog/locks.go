package catalog

import (
	"sort"
	"sync"
)

// CollectionLocks serializes structural mutations per collection. One
// instance is shared between the catalog service and the lifecycle
// service, so a container or placement cannot be created while a
// cascade is stamping the same collection, and overlapping cascades
// (for example deleting a container while its collection is deleted)
// cannot interleave.
type CollectionLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewCollectionLocks() *CollectionLocks {
	return &CollectionLocks{
		locks: make(map[int64]*sync.Mutex),
	}
}

// Lock acquires the mutex for every given collection id in ascending
// order, which keeps multi-collection operations deadlock free. The
// returned func releases them in reverse order.
func (l *CollectionLocks) Lock(ids ...int64) func() {
	unique := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	sorted := make([]int64, 0, len(unique))
	for id := range unique {
		sorted = append(sorted, id)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	acquired := make([]*sync.Mutex, 0, len(sorted))
	for _, id := range sorted {
		l.mu.Lock()
		m, ok := l.locks[id]
		if !ok {
			m = &sync.Mutex{}
			l.locks[id] = m
		}
		l.mu.Unlock()

		m.Lock()
		acquired = append(acquired, m)
	}

	return func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			acquired[i].Unlock()
		}
	}
}
