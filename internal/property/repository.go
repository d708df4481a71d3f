// Package property implements the property listing core: the record model,
// its persistence contract, and the ownership-authorization rules.
package property

import (
	"context"
	"errors"
)

// Property is a single listing record. Owner holds the raw bearer token of
// the caller that created the record and never changes afterwards; it is the
// only identity the authorization model knows about.
type Property struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	Address     string  `json:"address"`
	ImageURL    *string `json:"image_url"`
	Owner       string  `json:"owner"`
}

// ErrNotFound is returned when a property does not exist.
var ErrNotFound = errors.New("property not found")

// ErrForbidden is returned when a caller tries to delete a property owned by
// someone else.
var ErrForbidden = errors.New("property owned by another caller")

// Patch describes a partial update. A nil field is left untouched; a non-nil
// field overwrites the stored value, including overwrites with empty strings.
type Patch struct {
	Title       *string
	Description *string
	Price       *float64
	Address     *string
	ImageURL    *string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Price == nil &&
		p.Address == nil && p.ImageURL == nil
}

// Repository is the persistence contract for property records. Update must
// apply its patch atomically with respect to other writes to the same record.
type Repository interface {
	Get(ctx context.Context, id string) (*Property, error)
	List(ctx context.Context) ([]*Property, error)
	Insert(ctx context.Context, p *Property) error
	Update(ctx context.Context, id string, patch Patch) (*Property, error)
	Delete(ctx context.Context, id string) error
}
