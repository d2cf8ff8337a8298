package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"shirtcatalog/internal/models"
	"shirtcatalog/internal/photostore"
	"shirtcatalog/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// EventPublisher receives catalog events after successful mutations.
type EventPublisher interface {
	PublishCatalogEvent(event models.CatalogEvent) error
}

// PhotoUpload is a photo attached to a create or update request.
type PhotoUpload struct {
	Filename string
	Content  io.Reader
	// BaseURL is the scheme and host the photo will be served from.
	BaseURL string
}

// CatalogService keeps shirt records and their photo files consistent.
//
// A record's PhotoRef, when it points into the photo store, names a file that exists
// for as long as the record does. New photos are written before the record changes,
// and replaced or orphaned photos are removed only after the record no longer refers
// to them. Photo removals are best-effort: a failure leaves an unreferenced file
// behind and is logged, never reported to the caller.
type CatalogService struct {
	repo     repositories.ShirtRepository
	photos   photostore.PhotoStore
	events   EventPublisher
	validate *validator.Validate
	now      func() time.Time
}

// NewCatalogService creates a new CatalogService. events may be nil.
func NewCatalogService(repo repositories.ShirtRepository, photos photostore.PhotoStore, events EventPublisher) *CatalogService {
	return &CatalogService{
		repo:     repo,
		photos:   photos,
		events:   events,
		validate: validator.New(),
		now:      time.Now,
	}
}

// ListCatalog returns every shirt, or a single window of them when req is paginated.
func (s *CatalogService) ListCatalog(ctx context.Context, req PageRequest) (*PageResult, error) {
	shirts, total, err := s.repo.List(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, storeError(err)
	}
	return newPageResult(req, shirts, total), nil
}

// GetShirt retrieves a single shirt by its ID.
func (s *CatalogService) GetShirt(ctx context.Context, id string) (*models.Shirt, error) {
	shirt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return shirt, nil
}

// CreateShirt validates form, stores the optional photo and then the record.
// No record is created when the photo cannot be saved.
func (s *CatalogService) CreateShirt(ctx context.Context, form ShirtForm, photo *PhotoUpload) (*models.Shirt, error) {
	shirt, err := s.parseCreate(form)
	if err != nil {
		return nil, err
	}

	var savedName string
	if photo != nil {
		savedName, err = s.photos.Save(ctx, photo.Content, photo.Filename)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPhotoIO, err)
		}
		shirt.PhotoRef = photostore.RefFor(photo.BaseURL, savedName)
	}

	if err := s.repo.Create(ctx, shirt); err != nil {
		if savedName != "" {
			s.removePhoto(ctx, savedName, "")
		}
		return nil, storeError(err)
	}

	s.publish(models.EventShirtCreated, *shirt)
	return shirt, nil
}

// UpdateShirt applies the fields present in form. A new photo replaces the previous
// one: it is saved first, the record is pointed at it, and only then is the old file
// removed. Photos outside the store (external URLs) are never removed.
func (s *CatalogService) UpdateShirt(ctx context.Context, id string, form ShirtForm, photo *PhotoUpload) (*models.Shirt, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}

	changes, err := s.parseUpdate(form)
	if err != nil {
		return nil, err
	}

	var savedName string
	if photo != nil {
		savedName, err = s.photos.Save(ctx, photo.Content, photo.Filename)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPhotoIO, err)
		}
		ref := photostore.RefFor(photo.BaseURL, savedName)
		changes.PhotoRef = &ref
	}

	updated, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		if savedName != "" {
			s.removePhoto(ctx, savedName, id)
		}
		return nil, storeError(err)
	}

	if savedName != "" {
		if oldName, ok := photostore.NameFromRef(current.PhotoRef); ok && oldName != savedName {
			s.removePhoto(ctx, oldName, id)
		}
	}

	s.publish(models.EventShirtUpdated, *updated)
	return updated, nil
}

// DeleteShirt removes the record and then its photo. The record removal is reported
// as a success even when the photo cannot be removed.
func (s *CatalogService) DeleteShirt(ctx context.Context, id string) error {
	shirt, err := s.repo.Delete(ctx, id)
	if err != nil {
		return storeError(err)
	}

	if name, ok := photostore.NameFromRef(shirt.PhotoRef); ok {
		s.removePhoto(ctx, name, id)
	}

	s.publish(models.EventShirtDeleted, *shirt)
	return nil
}

func (s *CatalogService) removePhoto(ctx context.Context, name, shirtID string) {
	if err := s.photos.Delete(context.WithoutCancel(ctx), name); err != nil {
		log.Warn().Err(err).Str("photo", name).Str("shirt_id", shirtID).Msg("photo cleanup failed")
	}
}

func (s *CatalogService) publish(eventType string, shirt models.Shirt) {
	if s.events == nil {
		return
	}
	event := models.CatalogEvent{Type: eventType, Shirt: shirt, OccurredAt: s.now().UTC()}
	if err := s.events.PublishCatalogEvent(event); err != nil {
		log.Warn().Err(err).Str("event", eventType).Str("shirt_id", shirt.ID).Msg("event publish failed")
	}
}
