package services

import (
	"errors"
	"sort"
	"strings"

	"shirtcatalog/internal/repositories"
)

var (
	// ErrNotFound is returned when a well-formed id matches no shirt.
	ErrNotFound = repositories.ErrNotFound
	// ErrInvalidID is returned when an id is malformed.
	ErrInvalidID = repositories.ErrInvalidID
	// ErrValidation is returned when input fields are missing or malformed.
	ErrValidation = errors.New("validation failed")
	// ErrPhotoIO is returned when a photo cannot be written or removed.
	ErrPhotoIO = errors.New("photo storage failed")
	// ErrStore is returned when the record store fails.
	ErrStore = errors.New("record store failed")
)

// ValidationError lists the offending fields.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// storeError tags record store failures as ErrStore while keeping NotFound and
// InvalidID distinguishable.
func storeError(err error) error {
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidID) {
		return err
	}
	return errors.Join(ErrStore, err)
}
