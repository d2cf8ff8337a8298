package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"shirtcatalog/internal/models"
)

// MemoryShirtRepository is an in-memory implementation of ShirtRepository.
// Nothing survives a restart; it backs local runs and tests.
type MemoryShirtRepository struct {
	shirts map[string]models.Shirt
	order  []string
	mu     sync.RWMutex
}

// NewMemoryShirtRepository creates a new instance of MemoryShirtRepository.
func NewMemoryShirtRepository() *MemoryShirtRepository {
	return &MemoryShirtRepository{
		shirts: make(map[string]models.Shirt),
	}
}

// List returns a window of shirts in insertion order.
func (r *MemoryShirtRepository) List(_ context.Context, offset, limit int) ([]models.Shirt, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := len(r.order)
	start, end := 0, total
	if limit > 0 {
		start = min(max(offset, 0), total)
		end = min(start+limit, total)
	}

	shirtList := make([]models.Shirt, 0, end-start)
	for _, id := range r.order[start:end] {
		shirtList = append(shirtList, r.shirts[id])
	}
	return shirtList, int64(total), nil
}

// GetByID returns a shirt by its ID.
func (r *MemoryShirtRepository) GetByID(_ context.Context, id string) (*models.Shirt, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	shirt, ok := r.shirts[id]
	if !ok {
		return nil, fmt.Errorf("shirt with ID %s: %w", id, ErrNotFound)
	}
	return &shirt, nil
}

// Create adds a new shirt.
func (r *MemoryShirtRepository) Create(_ context.Context, shirt *models.Shirt) error {
	id, err := newID()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	shirt.ID = id
	shirt.CreatedAt = now
	shirt.UpdatedAt = now
	r.shirts[id] = *shirt
	r.order = append(r.order, id)
	return nil
}

// Update applies changes to an existing shirt.
func (r *MemoryShirtRepository) Update(_ context.Context, id string, changes models.ShirtChanges) (*models.Shirt, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	shirt, ok := r.shirts[id]
	if !ok {
		return nil, fmt.Errorf("shirt with ID %s: %w", id, ErrNotFound)
	}
	changes.Apply(&shirt)
	shirt.UpdatedAt = time.Now()
	r.shirts[id] = shirt
	return &shirt, nil
}

// Delete removes a shirt by its ID.
func (r *MemoryShirtRepository) Delete(_ context.Context, id string) (*models.Shirt, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	shirt, ok := r.shirts[id]
	if !ok {
		return nil, fmt.Errorf("shirt with ID %s: %w", id, ErrNotFound)
	}
	delete(r.shirts, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return &shirt, nil
}

// Migrate is a no-op.
func (r *MemoryShirtRepository) Migrate(context.Context) error { return nil }

// Close is a no-op.
func (r *MemoryShirtRepository) Close() error { return nil }
