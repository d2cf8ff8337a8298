package models

import "time"

// Catalog event types.
const (
	EventShirtCreated = "shirt.created"
	EventShirtUpdated = "shirt.updated"
	EventShirtDeleted = "shirt.deleted"
)

// CatalogEvent is published after a successful catalog mutation.
type CatalogEvent struct {
	Type       string    `json:"type"`
	Shirt      Shirt     `json:"shirt"`
	OccurredAt time.Time `json:"occurred_at"`
}
