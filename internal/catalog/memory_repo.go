package catalog

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo keeps the catalog in process memory. It backs local runs with
// CATALOG_STORE=memory and the service tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	books map[BookID]Book
}

func NewMemoryRepo(seed ...Book) *MemoryRepo {
	r := &MemoryRepo{books: make(map[BookID]Book, len(seed))}
	for _, b := range seed {
		r.books[b.ID] = b.clone()
	}
	return r
}

func (r *MemoryRepo) GetByID(_ context.Context, id BookID) (Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.books[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	return b.clone(), nil
}

func (r *MemoryRepo) SetAvailability(_ context.Context, id BookID, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.books[id]
	if !ok {
		return ErrNotFound
	}
	b.Available = available
	r.books[id] = b
	return nil
}

func (r *MemoryRepo) Search(_ context.Context, criterion string) ([]Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Book{}
	for _, b := range r.books {
		if b.Matches(criterion) {
			out = append(out, b.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (r *MemoryRepo) Upsert(_ context.Context, b Book) error {
	if b.ID.IsZero() {
		return ErrInvalidBookID
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.books[b.ID] = b.clone()
	return nil
}

func (r *MemoryRepo) Ping(context.Context) error { return nil }
