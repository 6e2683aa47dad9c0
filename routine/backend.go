package routine

import (
	"context"
	"net/url"

	"github.com/jonwraymond/portalcache/filter"
	"github.com/jonwraymond/portalcache/remote"
)

// Backend is the source of truth for routines.
type Backend interface {
	MyRoutine(ctx context.Context) (Routine, error)
	List(ctx context.Context, f filter.Filters) ([]Routine, error)
	ByID(ctx context.Context, id string) (Routine, error)
	Create(ctx context.Context, r Routine) (Routine, error)
	Update(ctx context.Context, id string, r Routine) (Routine, error)
	Delete(ctx context.Context, id string) error
}

// HTTPBackend reads and writes routines through the portal REST API.
type HTTPBackend struct {
	client remote.Accessor
}

// NewHTTPBackend creates a Backend over client.
func NewHTTPBackend(client remote.Accessor) *HTTPBackend {
	return &HTTPBackend{client: client}
}

func routinePath(id string) string {
	return "routines/" + url.PathEscape(id)
}

// MyRoutine implements Backend.
func (b *HTTPBackend) MyRoutine(ctx context.Context) (Routine, error) {
	var r Routine
	err := b.client.Get(ctx, "routines/my", &r)
	return r, err
}

// List implements Backend.
func (b *HTTPBackend) List(ctx context.Context, f filter.Filters) ([]Routine, error) {
	path := "routines"
	if q := f.Query().Encode(); q != "" {
		path += "?" + q
	}
	var out []Routine
	if err := b.client.Get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ByID implements Backend.
func (b *HTTPBackend) ByID(ctx context.Context, id string) (Routine, error) {
	var r Routine
	err := b.client.Get(ctx, routinePath(id), &r)
	return r, err
}

// Create implements Backend.
func (b *HTTPBackend) Create(ctx context.Context, r Routine) (Routine, error) {
	var out Routine
	err := b.client.Post(ctx, "routines", r, &out)
	return out, err
}

// Update implements Backend.
func (b *HTTPBackend) Update(ctx context.Context, id string, r Routine) (Routine, error) {
	var out Routine
	err := b.client.Patch(ctx, routinePath(id), r, &out)
	return out, err
}

// Delete implements Backend.
func (b *HTTPBackend) Delete(ctx context.Context, id string) error {
	return b.client.Delete(ctx, routinePath(id), nil)
}

var _ Backend = (*HTTPBackend)(nil)
