package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jonwraymond/portalcache/localstore"
	"github.com/jonwraymond/portalcache/observe"
	"github.com/jonwraymond/portalcache/remote"
)

// DefaultKey is the local store key holding the draft.
const DefaultKey = "admission_draft"

// DefaultLocalTimeout bounds each local store operation.
const DefaultLocalTimeout = 5 * time.Second

// Fallback reasons reported to metrics.
const (
	reasonRemoteError = "remote_error"
	reasonNotFound    = "not_found"
)

// Remote is the authoritative draft store.
type Remote interface {
	// Save writes the draft and returns what the backend recorded.
	Save(ctx context.Context, data json.RawMessage, step int) (Record, error)

	// Load returns the stored draft. A missing draft is reported either as
	// ErrNotFound, a 404 *remote.Error, or an empty Record.
	Load(ctx context.Context) (Record, error)

	// Delete removes the stored draft.
	Delete(ctx context.Context) error
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithKey sets the local store key. Default: DefaultKey.
func WithKey(key string) Option {
	return func(c *Coordinator) {
		if key != "" {
			c.key = key
		}
	}
}

// WithLocalTimeout bounds each local store operation. Local operations run
// detached from the caller's cancellation so an expired request still leaves
// the local copy consistent.
func WithLocalTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.localTimeout = d
		}
	}
}

// WithClock replaces time.Now for local SavedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l observe.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observe.Metrics) Option {
	return func(c *Coordinator) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracer sets the tracer used for per-operation spans.
func WithTracer(t observe.Tracer) Option {
	return func(c *Coordinator) {
		if t != nil {
			c.tracer = t
		}
	}
}

// Coordinator keeps the backend draft and the local copy in step.
// It is safe for concurrent use if its Remote and store are.
type Coordinator struct {
	remote  Remote
	local   localstore.Store
	key     string
	now     func() time.Time
	logger  observe.Logger
	metrics observe.Metrics
	tracer  observe.Tracer
	mw      *observe.Middleware

	localTimeout time.Duration
}

// NewCoordinator creates a Coordinator over an authoritative remote and a
// local fallback store.
func NewCoordinator(r Remote, local localstore.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		remote:  r,
		local:   local,
		key:     DefaultKey,
		now:     time.Now,
		logger:  observe.NoopLogger(),
		metrics: observe.NoopMetrics(),
		tracer:  observe.NoopTracer(),

		localTimeout: DefaultLocalTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(observe.F("draft.key", c.key))
	c.mw = observe.NewMiddleware(c.tracer, c.logger)
	return c
}

// Key returns the local store key.
func (c *Coordinator) Key() string {
	return c.key
}

func (c *Coordinator) meta(op string, attrs ...attribute.KeyValue) observe.OpMeta {
	return observe.OpMeta{
		Component: "draft",
		Operation: op,
		Attrs:     append([]attribute.KeyValue{attribute.String("draft.key", c.key)}, attrs...),
	}
}

// Save writes the draft to the backend and, whatever the outcome, to the
// local store.
//
// On backend success the backend's record is returned. On backend failure
// the error wraps ErrRemoteSave and the original error; if the local write
// failed too, both failures are joined so neither is hidden.
func (c *Coordinator) Save(ctx context.Context, data json.RawMessage, step int) (Record, error) {
	var saved Record
	err := c.mw.Run(ctx, c.meta("save", attribute.Int("draft.step", step)), func(ctx context.Context) error {
		rec, remoteErr := c.remote.Save(ctx, data, step)
		localErr := c.writeLocal(ctx, Record{DraftData: data, CurrentStep: step, SavedAt: c.now()})

		if remoteErr != nil {
			c.metrics.RecordDraftFallback(ctx, "save", reasonRemoteError)
			err := fmt.Errorf("%w: %w", ErrRemoteSave, remoteErr)
			if localErr != nil {
				return errors.Join(err, localErr)
			}
			return err
		}
		if localErr != nil {
			c.logger.Warn(ctx, "draft saved remotely but local mirror failed", observe.Err(localErr))
		}
		saved = rec
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	return saved, nil
}

// Get returns the freshest available draft and whether one exists.
//
// A backend draft is mirrored locally and returned. When the backend has no
// draft, the local copy is returned if present, otherwise (zero, false, nil).
// When the backend fails, the local copy is returned if present, otherwise
// the backend error.
func (c *Coordinator) Get(ctx context.Context) (Record, bool, error) {
	var (
		out   Record
		found bool
	)
	err := c.mw.Run(ctx, c.meta("get"), func(ctx context.Context) error {
		rec, remoteErr := c.remote.Load(ctx)
		if remoteErr == nil && !rec.Empty() {
			if err := c.writeLocal(ctx, rec); err != nil {
				c.logger.Warn(ctx, "failed to mirror draft locally", observe.Err(err))
			}
			out, found = rec, true
			return nil
		}

		notFound := remoteErr == nil || c.isNotFound(remoteErr)
		reason := reasonNotFound
		if !notFound {
			reason = reasonRemoteError
			c.logger.Warn(ctx, "remote draft read failed, trying local copy", observe.Err(remoteErr))
		}

		local, ok, localErr := c.readLocal(ctx)
		switch {
		case localErr != nil && notFound:
			return localErr
		case localErr != nil:
			return errors.Join(remoteErr, localErr)
		case ok:
			c.metrics.RecordDraftFallback(ctx, "get", reason)
			out, found = local, true
			return nil
		case notFound:
			return nil
		default:
			return remoteErr
		}
	})
	if err != nil {
		return Record{}, false, err
	}
	return out, found, nil
}

// Clear deletes the backend draft and removes the local copy. The backend
// outcome is only logged; the local copy is removed regardless.
func (c *Coordinator) Clear(ctx context.Context) {
	_ = c.mw.Run(ctx, c.meta("clear"), func(ctx context.Context) error {
		remoteErr := c.remote.Delete(ctx)
		switch {
		case remoteErr == nil:
		case c.isNotFound(remoteErr):
			c.logger.Debug(ctx, "no remote draft to delete")
		default:
			c.metrics.RecordDraftFallback(ctx, "clear", reasonRemoteError)
			c.logger.Warn(ctx, "remote draft delete failed", observe.Err(remoteErr))
		}

		lctx, cancel := c.localContext(ctx)
		defer cancel()
		if err := c.local.Remove(lctx, c.key); err != nil {
			c.logger.Error(ctx, "failed to remove local draft", observe.Err(err))
			return err
		}
		return nil
	})
}

// Local returns the local copy without contacting the backend.
func (c *Coordinator) Local(ctx context.Context) (Record, bool, error) {
	return c.readLocal(ctx)
}

func (c *Coordinator) isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || remote.IsNotFound(err)
}

// localContext keeps ctx values but drops its cancellation and deadline,
// replacing them with the local timeout.
func (c *Coordinator) localContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), c.localTimeout)
}

func (c *Coordinator) writeLocal(ctx context.Context, rec Record) error {
	encoded, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrLocalWrite, err)
	}
	lctx, cancel := c.localContext(ctx)
	defer cancel()
	if err := c.local.Write(lctx, c.key, encoded); err != nil {
		return fmt.Errorf("%w: %w", ErrLocalWrite, err)
	}
	return nil
}

// readLocal returns the decoded local copy. A copy that fails to decode is
// logged, removed and reported as absent.
func (c *Coordinator) readLocal(ctx context.Context) (Record, bool, error) {
	lctx, cancel := c.localContext(ctx)
	defer cancel()
	raw, ok, err := c.local.Read(lctx, c.key)
	if err != nil {
		return Record{}, false, fmt.Errorf("%w: %w", ErrLocalRead, err)
	}
	if !ok {
		return Record{}, false, nil
	}
	rec, err := decodeRecord(raw)
	if err != nil {
		c.logger.Warn(ctx, "discarding corrupt local draft", observe.Err(err))
		if rmErr := c.local.Remove(lctx, c.key); rmErr != nil {
			c.logger.Warn(ctx, "failed to remove corrupt local draft", observe.Err(rmErr))
		}
		return Record{}, false, nil
	}
	if rec.Empty() {
		return Record{}, false, nil
	}
	return rec, true, nil
}
