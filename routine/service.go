package routine

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonwraymond/portalcache/cache"
	"github.com/jonwraymond/portalcache/filter"
	"github.com/jonwraymond/portalcache/observe"
)

// Query prefixes used in cache keys.
const (
	QueryMyRoutine   = "getMyRoutine"
	QueryRoutines    = "getRoutines"
	QueryRoutineByID = "getRoutineById"
)

// Tag dimensions beyond the filter fields.
const (
	dimensionID    = "id"
	dimensionScope = "scope"
)

// unscopedTag marks listings that carry no filter dimension, so any write
// makes them stale.
var unscopedTag = cache.Tag{Dimension: dimensionScope, Value: "all"}

// Option configures a Service.
type Option func(*serviceConfig)

type serviceConfig struct {
	loaderOpts []cache.LoaderOption
	logger     observe.Logger
}

// WithLoaderOptions passes options to the read-through loader, for example
// cache.WithSingleflight().
func WithLoaderOptions(opts ...cache.LoaderOption) Option {
	return func(c *serviceConfig) { c.loaderOpts = append(c.loaderOpts, opts...) }
}

// WithLogger sets the logger.
func WithLogger(l observe.Logger) Option {
	return func(c *serviceConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Service is the cached routine query service.
type Service struct {
	backend Backend
	store   *cache.Store[any]
	loader  *cache.Loader[any]
	logger  observe.Logger
}

// NewService creates a Service reading from backend through store.
// A nil store gets a private one with the default TTL.
func NewService(backend Backend, store *cache.Store[any], opts ...Option) *Service {
	cfg := serviceConfig{logger: observe.NoopLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if store == nil {
		store = cache.NewStore[any]()
	}
	loaderOpts := append([]cache.LoaderOption{cache.WithLoaderLogger(cfg.logger)}, cfg.loaderOpts...)
	return &Service{
		backend: backend,
		store:   store,
		loader:  cache.NewLoader(store, loaderOpts...),
		logger:  cfg.logger,
	}
}

// MyRoutine returns the signed-in user's routine.
func (s *Service) MyRoutine(ctx context.Context) (Routine, error) {
	r, err := cache.Fetch(ctx, s.loader, cache.BuildKey(QueryMyRoutine, nil), nil, s.backend.MyRoutine)
	if err != nil {
		return Routine{}, err
	}
	return r.Clone(), nil
}

// List returns the routines matching raw after sanitisation. Invalid
// department and semester values are dropped; an invalid shift becomes Day.
func (s *Service) List(ctx context.Context, raw filter.Raw) ([]Routine, error) {
	f := filter.Sanitize(raw)
	key := cache.BuildKey(QueryRoutines, f.Params())

	tags := cache.TagsFor(f)
	if len(tags) == 0 {
		tags = []cache.Tag{unscopedTag}
	}

	rs, err := cache.Fetch(ctx, s.loader, key, tags, func(ctx context.Context) ([]Routine, error) {
		return s.backend.List(ctx, f)
	})
	if err != nil {
		return nil, err
	}
	return cloneAll(rs), nil
}

// ByID returns one routine. The id is used verbatim.
func (s *Service) ByID(ctx context.Context, id string) (Routine, error) {
	if strings.TrimSpace(id) == "" {
		return Routine{}, ErrMissingID
	}
	r, err := cache.Fetch(ctx, s.loader, byIDKey(id), []cache.Tag{idTag(id)}, func(ctx context.Context) (Routine, error) {
		return s.backend.ByID(ctx, id)
	})
	if err != nil {
		return Routine{}, err
	}
	return r.Clone(), nil
}

// Create stores a new routine and invalidates the listings it appears in.
func (s *Service) Create(ctx context.Context, r Routine) (Routine, error) {
	if err := r.Validate(); err != nil {
		return Routine{}, err
	}
	created, err := s.backend.Create(ctx, r)
	if err != nil {
		return Routine{}, fmt.Errorf("routine: create: %w", err)
	}
	s.invalidateAfterWrite(ctx, created.ID, r, created)
	return created, nil
}

// Update replaces routine id and invalidates entries for both its old and
// new filter dimensions.
func (s *Service) Update(ctx context.Context, id string, r Routine) (Routine, error) {
	if strings.TrimSpace(id) == "" {
		return Routine{}, ErrMissingID
	}
	if err := r.Validate(); err != nil {
		return Routine{}, err
	}
	previous, hadPrevious := s.cached(id)

	updated, err := s.backend.Update(ctx, id, r)
	if err != nil {
		return Routine{}, fmt.Errorf("routine: update %s: %w", id, err)
	}

	affected := []Routine{r, updated}
	if hadPrevious {
		affected = append(affected, previous)
	}
	s.invalidateAfterWrite(ctx, id, affected...)
	return updated, nil
}

// Delete removes routine id and invalidates entries that may include it.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrMissingID
	}
	previous, hadPrevious := s.cached(id)

	if err := s.backend.Delete(ctx, id); err != nil {
		return fmt.Errorf("routine: delete %s: %w", id, err)
	}

	if hadPrevious {
		s.invalidateAfterWrite(ctx, id, previous)
		return nil
	}
	// Without the old routine its dimensions are unknown; drop every listing.
	s.store.Invalidate(QueryRoutines + ":")
	s.invalidateAfterWrite(ctx, id)
	return nil
}

// Invalidate removes cached entries whose key contains pattern; an empty
// pattern clears the cache.
func (s *Service) Invalidate(pattern string) {
	s.store.Invalidate(pattern)
}

// InvalidateByFilters removes entries depending on the sanitised filter
// dimensions in raw, or everything if raw names none.
func (s *Service) InvalidateByFilters(raw filter.Raw) {
	s.store.InvalidateByFilters(filter.Sanitize(raw))
}

// Stats reports the cached keys.
func (s *Service) Stats() cache.Stats {
	return s.store.Stats()
}

// Clear empties the cache.
func (s *Service) Clear() {
	s.store.Clear()
}

func (s *Service) cached(id string) (Routine, bool) {
	v, ok := s.store.Get(byIDKey(id))
	if !ok {
		return Routine{}, false
	}
	r, ok := v.(Routine)
	return r, ok
}

func (s *Service) invalidateAfterWrite(ctx context.Context, id string, affected ...Routine) {
	tags := []cache.Tag{unscopedTag}
	if id != "" {
		tags = append(tags, idTag(id))
	}
	s.store.InvalidateTags(tags...)
	s.store.Delete(cache.BuildKey(QueryMyRoutine, nil))

	for _, r := range affected {
		f := r.Filters()
		if f.HasDimensions() {
			s.store.InvalidateByFilters(f)
		}
	}
	s.logger.Debug(ctx, "routine cache invalidated", observe.F("routine.id", id), observe.F("cache.size", s.store.Len()))
}

func byIDKey(id string) string {
	return cache.BuildKey(QueryRoutineByID, map[string]any{"id": id})
}

func idTag(id string) cache.Tag {
	return cache.Tag{Dimension: dimensionID, Value: id}
}
