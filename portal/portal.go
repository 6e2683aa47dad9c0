// Package portal assembles the routine query cache, the draft coordinator
// and their supporting infrastructure from a config.Config.
package portal

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonwraymond/portalcache/auth"
	"github.com/jonwraymond/portalcache/cache"
	"github.com/jonwraymond/portalcache/config"
	"github.com/jonwraymond/portalcache/draft"
	"github.com/jonwraymond/portalcache/health"
	"github.com/jonwraymond/portalcache/localstore"
	"github.com/jonwraymond/portalcache/observe"
	"github.com/jonwraymond/portalcache/remote"
	"github.com/jonwraymond/portalcache/resilience"
	"github.com/jonwraymond/portalcache/routine"
	"github.com/jonwraymond/portalcache/secret"
)

// Option adjusts how New assembles a Portal.
type Option func(*options)

type options struct {
	httpClient *http.Client
	resolver   *secret.Resolver
	observer   observe.Observer
}

// WithHTTPClient sets the HTTP client used for backend calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithSecretResolver replaces the default resolver for the API token.
func WithSecretResolver(r *secret.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithObserver supplies telemetry instead of building it from the config.
// The caller keeps ownership; Close does not shut it down.
func WithObserver(obs observe.Observer) Option {
	return func(o *options) { o.observer = obs }
}

// Portal is the assembled client.
type Portal struct {
	Routines *routine.Service
	Drafts   *draft.Coordinator
	Cache    *cache.Store[any]
	Remote   *remote.Client
	Health   *health.Aggregator

	observer    observe.Observer
	ownObserver bool
	closeStore  func() error
}

// New builds a Portal from cfg.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Portal, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	p := &Portal{observer: o.observer}
	if p.observer == nil {
		obs, err := observe.NewObserver(ctx, cfg.Observe())
		if err != nil {
			return nil, fmt.Errorf("portal: observer: %w", err)
		}
		p.observer = obs
		p.ownObserver = true
	}
	logger := p.observer.Logger()
	metrics := p.observer.Metrics()
	tracer := p.observer.Tracer()

	remoteOpts := []remote.Option{
		remote.WithTimeout(cfg.RequestTimeout),
		remote.WithRetry(cfg.RetryAttempts),
		remote.WithLogger(logger),
		remote.WithMetrics(metrics),
		remote.WithTracer(tracer),
	}
	if o.httpClient != nil {
		remoteOpts = append(remoteOpts, remote.WithHTTPClient(o.httpClient))
	}
	if cfg.APIToken != "" {
		src, err := tokenSource(ctx, o.resolver, cfg.APIToken)
		if err != nil {
			return nil, p.abort(ctx, err)
		}
		remoteOpts = append(remoteOpts, remote.WithTokenSource(src))
	}
	var breaker *resilience.CircuitBreaker
	if cfg.BreakerThreshold > 0 {
		breaker = resilience.NewCircuitBreaker(resilience.BreakerConfig{
			FailureThreshold: cfg.BreakerThreshold,
			CoolDown:         cfg.BreakerCoolDown,
			OnStateChange: func(from, to resilience.State) {
				logger.Warn(context.Background(), "remote circuit breaker state change",
					observe.F("breaker.from", from.String()),
					observe.F("breaker.to", to.String()))
			},
		})
		remoteOpts = append(remoteOpts, remote.WithCircuitBreaker(breaker))
	}

	client, err := remote.New(cfg.APIBaseURL, remoteOpts...)
	if err != nil {
		return nil, p.abort(ctx, err)
	}
	p.Remote = client

	p.Cache = cache.NewStore[any](cache.WithTTL(cfg.CacheTTL))
	loaderOpts := []cache.LoaderOption{cache.WithLoaderMetrics(metrics)}
	if cfg.CacheSingleflight {
		loaderOpts = append(loaderOpts, cache.WithSingleflight())
	}
	p.Routines = routine.NewService(routine.NewHTTPBackend(client), p.Cache,
		routine.WithLoaderOptions(loaderOpts...),
		routine.WithLogger(logger),
	)

	local, closeStore, err := localstore.Open(ctx, cfg.LocalStore())
	if err != nil {
		return nil, p.abort(ctx, fmt.Errorf("portal: draft store: %w", err))
	}
	p.closeStore = closeStore
	p.Drafts = draft.NewCoordinator(draft.NewHTTPRemote(client, ""), local,
		draft.WithKey(cfg.DraftKey),
		draft.WithLogger(logger),
		draft.WithMetrics(metrics),
		draft.WithTracer(tracer),
	)

	p.Health = health.NewAggregator()
	p.Health.Register(health.NewRemoteChecker(client, cfg.HealthPath).WithBreaker(breaker))
	p.Health.Register(health.NewStoreChecker(local))
	p.Health.Register(health.NewCacheChecker(p.Cache, cfg.CacheSoftLimit))

	logger.Info(ctx, "portal client ready",
		observe.F("portal.base_url", client.BaseURL()),
		observe.F("portal.draft_store", cfg.DraftStore))
	return p, nil
}

// tokenSource resolves the configured token. Tokens that parse as JWTs are
// checked for expiry before each request; opaque tokens are sent as is.
func tokenSource(ctx context.Context, r *secret.Resolver, raw string) (auth.TokenSource, error) {
	if r == nil {
		r = secret.NewResolver(secret.WithStrict(true))
	}
	token, err := r.ResolveValue(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("portal: resolve api token: %w", err)
	}
	static := auth.StaticToken(token)
	if _, err := auth.ParseIdentity(token); err != nil {
		return static, nil
	}
	return auth.NewJWTSource(static), nil
}

// HealthHandler serves the health report as JSON.
func (p *Portal) HealthHandler() http.Handler {
	return health.Handler(p.Health)
}

// Close releases the draft store and, when New created it, the telemetry
// pipeline.
func (p *Portal) Close(ctx context.Context) error {
	var errs []error
	if p.closeStore != nil {
		errs = append(errs, p.closeStore())
		p.closeStore = nil
	}
	if p.ownObserver && p.observer != nil {
		errs = append(errs, p.observer.Shutdown(ctx))
		p.ownObserver = false
	}
	return errors.Join(errs...)
}

func (p *Portal) abort(ctx context.Context, err error) error {
	return errors.Join(err, p.Close(ctx))
}
