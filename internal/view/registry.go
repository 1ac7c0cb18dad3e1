// Package view tracks page loads. Each page load gets its own view holding
// the cards rendered for it and their search state.
package view

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/starford/depot/internal/apperr"
	"github.com/starford/depot/internal/search"
)

// View is one page load.
type View struct {
	ID      string
	Created time.Time
	Index   *search.Index

	started atomic.Bool
}

// Start marks the view's catalog load as started. It returns
// apperr.ErrAlreadyLoaded if a load already ran for this view.
func (v *View) Start() error {
	if !v.started.CompareAndSwap(false, true) {
		return apperr.ErrAlreadyLoaded
	}
	return nil
}

// Registry stores views until they expire.
type Registry struct {
	views *cache.Cache
	ttl   time.Duration
}

// NewRegistry creates a registry whose views expire ttl after last use.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Registry{
		views: cache.New(ttl, ttl/2),
		ttl:   ttl,
	}
}

// Create registers a new empty view.
func (r *Registry) Create() *View {
	v := &View{
		ID:      uuid.NewString(),
		Created: time.Now(),
		Index:   search.NewIndex(),
	}
	r.views.Set(v.ID, v, cache.DefaultExpiration)
	return v
}

// Get returns the view with id and extends its lifetime.
func (r *Registry) Get(id string) (*View, error) {
	item, ok := r.views.Get(id)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	v := item.(*View)
	r.views.Set(id, v, cache.DefaultExpiration)
	return v, nil
}

// Len returns the number of live views.
func (r *Registry) Len() int {
	return r.views.ItemCount()
}
