package property

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/carlosalbertoprojetos/imobiliaria-api/internal/storage"
)

// Service contains the business logic for property records: identity
// assignment, ownership authorization, and coordination of record mutation
// with image blob replacement.
type Service struct {
	repo  Repository
	store storage.Storage
}

// NewService creates a new property Service.
func NewService(repo Repository, store storage.Storage) *Service {
	return &Service{repo: repo, store: store}
}

// ImageUpload carries an uploaded image to be written to the blob store.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// CreateInput holds the fields for a new property. Required-field validation
// happens at the transport boundary; Create trusts its input.
type CreateInput struct {
	Title       string
	Description *string
	Price       float64
	Address     string
	Image       *ImageUpload
}

// UpdateInput holds a partial update. Nil fields are left untouched; non-nil
// fields overwrite, including with explicit empty values.
type UpdateInput struct {
	Title       *string
	Description *string
	Price       *float64
	Address     *string
	Image       *ImageUpload
}

// Create stores the image (if any) and persists a new record. The record id
// is a fresh UUID, never reused; the owner is the caller's raw bearer token.
// The blob is written before the insert, so the record is either fully
// visible with all fields or not created at all.
func (s *Service) Create(ctx context.Context, owner string, in CreateInput) (*Property, error) {
	p := &Property{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Address:     in.Address,
		Owner:       owner,
	}

	if in.Image != nil {
		// Creation randomizes the blob name so concurrent uploads of the
		// same filename can never collide.
		key := blobName(uuid.NewString(), in.Image.Filename)
		if err := s.store.Upload(ctx, key, in.Image.Reader, in.Image.Size, in.Image.ContentType); err != nil {
			return nil, fmt.Errorf("store image: %w", err)
		}
		url := s.store.PublicURL(key)
		p.ImageURL = &url
	}

	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns every record. No pagination and no ownership filter: any
// authenticated caller sees all records.
func (s *Service) List(ctx context.Context) ([]*Property, error) {
	return s.repo.List(ctx)
}

// Get returns a record by id, or ErrNotFound. No ownership check.
func (s *Service) Get(ctx context.Context, id string) (*Property, error) {
	return s.repo.Get(ctx, id)
}

// Update applies a partial update. When a new image is supplied the previous
// blob is deleted first and the new one stored under a name derived from the
// record id and filename, so repeated updates reuse the same key per filename.
//
// Update deliberately performs no ownership check: only deletion is tied to
// the owner token. Callers relying on symmetry here will be surprised; the
// asymmetry is part of the API contract.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Property, error) {
	patch := Patch{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Address:     in.Address,
	}

	if in.Image != nil {
		current, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.ImageURL != nil {
			if err := s.removeBlob(ctx, *current.ImageURL); err != nil {
				return nil, fmt.Errorf("remove previous image: %w", err)
			}
		}
		key := blobName(id, in.Image.Filename)
		if err := s.store.Upload(ctx, key, in.Image.Reader, in.Image.Size, in.Image.ContentType); err != nil {
			return nil, fmt.Errorf("store image: %w", err)
		}
		url := s.store.PublicURL(key)
		patch.ImageURL = &url
	}

	return s.repo.Update(ctx, id, patch)
}

// Delete removes a record and its blob. Unknown ids succeed so clients can
// retry deletes safely; a caller whose token does not match the record owner
// gets ErrForbidden and the record survives.
func (s *Service) Delete(ctx context.Context, id, token string) error {
	p, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if p.Owner != token {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	if p.ImageURL != nil {
		if err := s.removeBlob(ctx, *p.ImageURL); err != nil {
			return fmt.Errorf("remove image: %w", err)
		}
	}
	return nil
}

// removeBlob deletes the blob a public URL points at. URLs that do not point
// into this service's store are left alone.
func (s *Service) removeBlob(ctx context.Context, url string) error {
	base := s.store.PublicURL("")
	key := strings.TrimPrefix(url, base)
	if key == url || key == "" {
		return nil
	}
	return s.store.Delete(ctx, key)
}

// blobName builds a blob key from a prefix and the client-supplied filename.
// Only the base name is kept so a crafted filename cannot carry path segments.
func blobName(prefix, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "/" || base == "." || base == "" {
		base = "image"
	}
	return prefix + "_" + base
}
