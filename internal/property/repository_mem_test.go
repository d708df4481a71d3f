package property

import (
	"context"
	"sync"
)

// memoryRepository is an in-process Repository used by the tests in this
// package. It mirrors the Postgres implementation's semantics: per-record
// atomic patches under a lock, ErrNotFound on unknown ids, creation order
// preserved by List.
type memoryRepository struct {
	mu    sync.Mutex
	props []*Property
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{}
}

func (r *memoryRepository) Get(ctx context.Context, id string) (*Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.props {
		if p.ID == id {
			return cloneProperty(p), nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepository) List(ctx context.Context) ([]*Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Property, 0, len(r.props))
	for _, p := range r.props {
		out = append(out, cloneProperty(p))
	}
	return out, nil
}

func (r *memoryRepository) Insert(ctx context.Context, p *Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.props = append(r.props, cloneProperty(p))
	return nil
}

func (r *memoryRepository) Update(ctx context.Context, id string, patch Patch) (*Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.props {
		if p.ID != id {
			continue
		}
		if patch.Title != nil {
			p.Title = *patch.Title
		}
		if patch.Description != nil {
			d := *patch.Description
			p.Description = &d
		}
		if patch.Price != nil {
			p.Price = *patch.Price
		}
		if patch.Address != nil {
			p.Address = *patch.Address
		}
		if patch.ImageURL != nil {
			u := *patch.ImageURL
			p.ImageURL = &u
		}
		return cloneProperty(p), nil
	}
	return nil, ErrNotFound
}

func (r *memoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.props {
		if p.ID == id {
			r.props = append(r.props[:i], r.props[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func cloneProperty(p *Property) *Property {
	c := *p
	if p.Description != nil {
		d := *p.Description
		c.Description = &d
	}
	if p.ImageURL != nil {
		u := *p.ImageURL
		c.ImageURL = &u
	}
	return &c
}
