package repositories

import (
	"context"
	"errors"
	"fmt"

	"shirtcatalog/internal/models"

	"gorm.io/gorm"
)

// GORMShirtRepository is a GORM implementation of ShirtRepository.
type GORMShirtRepository struct {
	db *gorm.DB
}

// NewGORMShirtRepository creates a new instance of GORMShirtRepository.
func NewGORMShirtRepository(db *gorm.DB) *GORMShirtRepository {
	return &GORMShirtRepository{
		db: db,
	}
}

// List retrieves a window of shirts ordered by id, which follows creation order.
func (r *GORMShirtRepository) List(ctx context.Context, offset, limit int) ([]models.Shirt, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Shirt{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count shirts: %w", err)
	}

	query := db.Order("id ASC")
	if limit > 0 {
		query = query.Offset(max(offset, 0)).Limit(limit)
	}

	shirts := make([]models.Shirt, 0)
	if err := query.Find(&shirts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list shirts: %w", err)
	}
	return shirts, total, nil
}

// GetByID retrieves a single shirt by its ID from the database.
func (r *GORMShirtRepository) GetByID(ctx context.Context, id string) (*models.Shirt, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	var shirt models.Shirt
	if err := r.db.WithContext(ctx).First(&shirt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("shirt with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get shirt by ID %s: %w", id, err)
	}
	return &shirt, nil
}

// Create creates a new shirt in the database.
func (r *GORMShirtRepository) Create(ctx context.Context, shirt *models.Shirt) error {
	id, err := newID()
	if err != nil {
		return err
	}
	shirt.ID = id
	if err := r.db.WithContext(ctx).Create(shirt).Error; err != nil {
		return fmt.Errorf("failed to create shirt: %w", err)
	}
	return nil
}

// Update writes only the columns present in changes.
func (r *GORMShirtRepository) Update(ctx context.Context, id string, changes models.ShirtChanges) (*models.Shirt, error) {
	shirt, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if changes.Empty() {
		return shirt, nil
	}

	res := r.db.WithContext(ctx).Model(shirt).Updates(changes.Columns())
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update shirt %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		// Removed between the read and the write.
		return nil, fmt.Errorf("shirt with ID %s: %w", id, ErrNotFound)
	}
	changes.Apply(shirt)
	return shirt, nil
}

// Delete deletes a shirt by its ID from the database.
func (r *GORMShirtRepository) Delete(ctx context.Context, id string) (*models.Shirt, error) {
	shirt, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	res := r.db.WithContext(ctx).Delete(&models.Shirt{}, "id = ?", id)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to delete shirt %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("shirt with ID %s: %w", id, ErrNotFound)
	}
	return shirt, nil
}

// Migrate creates or updates the shirts table.
func (r *GORMShirtRepository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&models.Shirt{}); err != nil {
		return fmt.Errorf("failed to migrate shirts table: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (r *GORMShirtRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
