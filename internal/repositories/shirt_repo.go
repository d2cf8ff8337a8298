package repositories

import (
	"context"
	"errors"

	"shirtcatalog/internal/models"
)

var (
	// ErrNotFound is returned when a well-formed id matches no record.
	ErrNotFound = errors.New("shirt not found")
	// ErrInvalidID is returned when an id is not well-formed for the store's id scheme.
	ErrInvalidID = errors.New("invalid shirt id")
)

// ShirtRepository defines the interface for shirt data access.
type ShirtRepository interface {
	// List returns the records in [offset, offset+limit) in insertion order together with
	// the size of the whole collection. A limit <= 0 returns every record.
	List(ctx context.Context, offset, limit int) ([]models.Shirt, int64, error)
	GetByID(ctx context.Context, id string) (*models.Shirt, error)
	// Create assigns a new id to shirt and persists it.
	Create(ctx context.Context, shirt *models.Shirt) error
	Update(ctx context.Context, id string, changes models.ShirtChanges) (*models.Shirt, error)
	// Delete removes the record and returns it as it was before removal.
	Delete(ctx context.Context, id string) (*models.Shirt, error)
	Migrate(ctx context.Context) error
	Close() error
}
