// Package reconcile looks payloads up by natural key and applies the upsert
// policy against the remote store.
package reconcile

import (
	"context"
	"time"

	"github.com/goliatone/go-cms-bulkload/internal/logging"
	"github.com/goliatone/go-cms-bulkload/internal/normalize"
	"github.com/goliatone/go-cms-bulkload/internal/store"
	"github.com/goliatone/go-cms-bulkload/pkg/interfaces"
)

// Skip reasons reported alongside ActionSkip.
const (
	ReasonExisting = "existing"
	ReasonMissing  = "missing"
)

// Options configures an Engine.
type Options struct {
	Policy         Policy
	DryRun         bool
	ForcePublish   bool
	ForceUnpublish bool
	// Collections maps a kind to its remote collection name. Kinds without
	// an entry use their own name.
	Collections map[normalize.Kind]string
	Now         func() time.Time
}

// Result describes what was decided and, outside dry runs, written.
type Result struct {
	Action   Action
	Reason   string
	Key      string
	Existing *interfaces.Record
	Written  *interfaces.Record
	DryRun   bool
}

// Engine reconciles one payload at a time.
type Engine struct {
	store  interfaces.RemoteStore
	opts   Options
	logger interfaces.Logger
}

// New returns an Engine writing to remote.
func New(remote interfaces.RemoteStore, opts Options, logger interfaces.Logger) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{store: remote, opts: opts, logger: logging.Ensure(logger)}
}

// Collection returns the remote collection for kind.
func (e *Engine) Collection(kind normalize.Kind) string {
	if name, ok := e.opts.Collections[kind]; ok && name != "" {
		return name
	}
	return string(kind)
}

// Lookup returns the first record whose key field equals key, or nil.
func (e *Engine) Lookup(ctx context.Context, kind normalize.Kind, key string) (*interfaces.Record, error) {
	page, err := e.store.List(ctx, e.Collection(kind), interfaces.ListOptions{
		Filters:  map[string]string{kind.KeyField(): key},
		PageSize: 1,
	})
	if err != nil {
		return nil, err
	}
	if page == nil || len(page.Records) == 0 {
		return nil, nil
	}
	return page.Records[0], nil
}

// Reconcile looks payload up, decides an action and performs the write
// unless the engine runs dry.
func (e *Engine) Reconcile(ctx context.Context, payload normalize.Payload) (Result, error) {
	kind := payload.Kind()
	result := Result{Key: payload.NaturalKey(), DryRun: e.opts.DryRun}

	existing, err := e.Lookup(ctx, kind, result.Key)
	if err != nil {
		return result, err
	}
	result.Existing = existing
	result.Action = e.opts.Policy.Decide(existing != nil)

	switch result.Action {
	case ActionSkip:
		result.Reason = ReasonMissing
		if existing != nil {
			result.Reason = ReasonExisting
		}
		return result, nil
	case ActionUpdate:
		if existing.Identifier() == "" {
			return result, &store.RemoteError{Err: store.ErrMissingIdentifier}
		}
	}

	e.stampPublish(payload)
	if e.opts.DryRun {
		e.logger.Debug("bulkload.reconcile.dry_run", "action", string(result.Action), "key", result.Key)
		return result, nil
	}

	collection := e.Collection(kind)
	if result.Action == ActionCreate {
		result.Written, err = e.store.Create(ctx, collection, payload)
	} else {
		result.Written, err = e.store.Update(ctx, collection, existing.Identifier(), payload)
	}
	return result, err
}

// Patch updates selected fields of an already fetched record. It is used by
// the in-place migration and honours dry runs.
func (e *Engine) Patch(ctx context.Context, kind normalize.Kind, record *interfaces.Record, data map[string]any) (Result, error) {
	result := Result{Action: ActionUpdate, Existing: record, DryRun: e.opts.DryRun}
	if record == nil || record.Identifier() == "" {
		return result, &store.RemoteError{Err: store.ErrMissingIdentifier}
	}
	result.Key = record.String(kind.KeyField())
	if e.opts.DryRun {
		return result, nil
	}
	written, err := e.store.Update(ctx, e.Collection(kind), record.Identifier(), data)
	result.Written = written
	return result, err
}

func (e *Engine) stampPublish(payload normalize.Payload) {
	switch {
	case e.opts.ForcePublish:
		payload.SetPublishMarker(normalize.PublishAt(e.opts.Now()))
	case e.opts.ForceUnpublish:
		payload.SetPublishMarker(normalize.Unpublish())
	}
}
