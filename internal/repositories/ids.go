package repositories

import (
	"fmt"

	"github.com/google/uuid"
)

// newID returns a time-ordered UUID so that sorting by id yields insertion order.
func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate shirt id: %w", err)
	}
	return id.String(), nil
}

// checkID rejects ids that are not UUIDs.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
