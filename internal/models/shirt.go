package models

import "time"

// Shirt represents a catalog entry.
type Shirt struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Brand     string    `json:"brand" gorm:"type:varchar(255);not null"`
	Size      string    `json:"size" gorm:"type:varchar(64);not null"`
	Price     float64   `json:"price" gorm:"not null"`
	PhotoRef  string    `json:"photoRef" gorm:"column:photo_ref;type:text;not null;default:''"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// ShirtChanges holds the fields of a partial update. Nil fields are left unchanged.
type ShirtChanges struct {
	Brand    *string
	Size     *string
	Price    *float64
	PhotoRef *string
}

// Empty reports whether no field is set.
func (c ShirtChanges) Empty() bool {
	return c.Brand == nil && c.Size == nil && c.Price == nil && c.PhotoRef == nil
}

// Apply copies the set fields onto shirt.
func (c ShirtChanges) Apply(shirt *Shirt) {
	if c.Brand != nil {
		shirt.Brand = *c.Brand
	}
	if c.Size != nil {
		shirt.Size = *c.Size
	}
	if c.Price != nil {
		shirt.Price = *c.Price
	}
	if c.PhotoRef != nil {
		shirt.PhotoRef = *c.PhotoRef
	}
}

// Columns returns the set fields keyed by column name.
func (c ShirtChanges) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if c.Brand != nil {
		cols["brand"] = *c.Brand
	}
	if c.Size != nil {
		cols["size"] = *c.Size
	}
	if c.Price != nil {
		cols["price"] = *c.Price
	}
	if c.PhotoRef != nil {
		cols["photo_ref"] = *c.PhotoRef
	}
	return cols
}
