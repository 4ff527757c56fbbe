package catalog

//go:generate mockgen -source=ports.go -destination=mock_repository_test.go -package=catalog

import (
	"context"
)

// Repository defines the contract for catalog storage.
type Repository interface {
	// GetByID returns ErrNotFound when no book has the given id.
	GetByID(ctx context.Context, id BookID) (Book, error)
	// SetAvailability returns ErrNotFound when no book has the given id.
	SetAvailability(ctx context.Context, id BookID, available bool) error
	// Search returns the books matching criterion, ordered by id.
	Search(ctx context.Context, criterion string) ([]Book, error)
	// Upsert inserts b or replaces the record with the same id.
	Upsert(ctx context.Context, b Book) error
	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}
