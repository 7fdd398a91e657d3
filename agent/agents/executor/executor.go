package executor

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/records-assistant/agent/contract"
	"github.com/tanpawarit/records-assistant/agent/records"
	metricsx "github.com/tanpawarit/records-assistant/pkg/metrics"
)

const defaultListLimit = 50

// Handler runs one operation. Returned errors become failure envelopes.
type Handler func(ctx context.Context, cmd contractx.Command) (contractx.Envelope, error)

type handlerKey struct {
	domain    contractx.Domain
	operation string
}

type storeKey struct {
	domain     contractx.Domain
	collection string
}

type Option func(*Executor)

// WithRemote makes store the primary source of one collection. Reads fall back
// to the local collection on error; writes go to store only.
func WithRemote(domain contractx.Domain, collection string, store contractx.EntityStore) Option {
	return func(e *Executor) {
		if store != nil {
			e.remotes[storeKey{domain: domain, collection: collection}] = store
		}
	}
}

func WithListLimit(limit int) Option {
	return func(e *Executor) {
		if limit > 0 {
			e.listLimit = limit
		}
	}
}

// Executor dispatches commands to handlers keyed by (domain, operation).
type Executor struct {
	collections *records.Collections
	remotes     map[storeKey]contractx.EntityStore
	handlers    map[handlerKey]Handler
	listLimit   int
}

func New(collections *records.Collections, opts ...Option) *Executor {
	if collections == nil {
		collections = records.NewCollections()
	}

	e := &Executor{
		collections: collections,
		remotes:     make(map[storeKey]contractx.EntityStore, 2),
		handlers:    make(map[handlerKey]Handler, 32),
		listLimit:   defaultListLimit,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.registerCRM()
	e.registerHR()
	e.registerProjects()
	return e
}

func (e *Executor) register(domain contractx.Domain, operation string, h Handler) {
	e.handlers[handlerKey{domain: domain, operation: operation}] = h
}

// Execute never panics and never returns an error: every failure is reported
// in the envelope.
func (e *Executor) Execute(ctx context.Context, cmd contractx.Command) (env contractx.Envelope) {
	logger := log.With().
		Str("domain", string(cmd.Domain)).
		Str("operation", cmd.Operation).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("operation panicked")
			env = contractx.Failure(titleFor(cmd), fmt.Errorf("internal error: %v", r))
		}
		domain, operation := e.metricLabels(cmd)
		metricsx.OperationsTotal.
			WithLabelValues(domain, operation, string(env.Source), metricsx.Outcome(env.Success)).
			Inc()
	}()

	if !cmd.Domain.Valid() {
		return contractx.Failure(titleFor(cmd), fmt.Errorf("%w: %s", contractx.ErrUnsupportedDomain, cmd.Domain))
	}

	handler, ok := e.handlers[handlerKey{domain: cmd.Domain, operation: cmd.Operation}]
	if !ok {
		logger.Debug().Msg("no dedicated handler, using generic")
		handler = e.generic
	}

	env, err := handler(ctx, cmd)
	if err != nil {
		logger.Warn().Err(err).Msg("operation failed")
		return contractx.Failure(titleFor(cmd), err)
	}
	logger.Debug().Str("source", string(env.Source)).Int("count", env.Count).Msg("operation executed")
	return env
}

// metricLabels keeps label values within the registered handler set so
// caller-supplied operation names cannot create new series.
func (e *Executor) metricLabels(cmd contractx.Command) (domain, operation string) {
	if !cmd.Domain.Valid() {
		return "unknown", "unknown"
	}
	if _, ok := e.handlers[handlerKey{domain: cmd.Domain, operation: cmd.Operation}]; !ok {
		return string(cmd.Domain), "generic"
	}
	return string(cmd.Domain), cmd.Operation
}

// Operations lists registered handlers as "DOMAIN/operation".
func (e *Executor) Operations() []string {
	out := make([]string, 0, len(e.handlers))
	for k := range e.handlers {
		out = append(out, fmt.Sprintf("%s/%s", k.domain, k.operation))
	}
	sort.Strings(out)
	return out
}

func (e *Executor) Status() contractx.BackendStatus {
	status := contractx.BackendStatus{
		Mode:       "local",
		Domains:    make(map[contractx.Domain]contractx.Source, len(contractx.Domains)),
		Operations: len(e.handlers),
	}
	for _, domain := range contractx.Domains {
		status.Domains[domain] = contractx.SourceLocal
	}
	for k := range e.remotes {
		status.Domains[k.domain] = contractx.SourceRemote
		status.Mode = "hybrid"
		status.RemoteConnected = true
	}
	return status
}

func (e *Executor) local(domain contractx.Domain, collection string) *records.LocalEntity {
	return records.NewLocalEntity(e.collections, domain, collection)
}

// readAll lists a collection from its remote store when one is registered and
// from the local collection otherwise or after a remote failure. Results are
// never merged.
func (e *Executor) readAll(ctx context.Context, cmd contractx.Command, collection string) ([]contractx.Record, contractx.Source, error) {
	if remote, ok := e.remotes[storeKey{domain: cmd.Domain, collection: collection}]; ok {
		recs, err := remote.List(ctx, e.listLimit)
		if err == nil {
			return recs, contractx.SourceRemote, nil
		}
		e.noteFallback(cmd, collection, err)
	}
	recs, err := e.local(cmd.Domain, collection).List(ctx, 0)
	return recs, contractx.SourceLocal, err
}

// readSet reads several collections from a single source. Remote is used
// only when every collection has a remote store and every remote read
// succeeds; otherwise all collections are re-read locally.
func (e *Executor) readSet(ctx context.Context, cmd contractx.Command, collections ...string) (map[string][]contractx.Record, contractx.Source, error) {
	out := make(map[string][]contractx.Record, len(collections))

	remoteOK := len(collections) > 0
	for _, coll := range collections {
		if _, ok := e.remotes[storeKey{domain: cmd.Domain, collection: coll}]; !ok {
			remoteOK = false
			break
		}
	}
	if remoteOK {
		for _, coll := range collections {
			recs, err := e.remotes[storeKey{domain: cmd.Domain, collection: coll}].List(ctx, e.listLimit)
			if err != nil {
				e.noteFallback(cmd, coll, err)
				remoteOK = false
				break
			}
			out[coll] = recs
		}
		if remoteOK {
			return out, contractx.SourceRemote, nil
		}
	}

	for _, coll := range collections {
		recs, err := e.local(cmd.Domain, coll).List(ctx, 0)
		if err != nil {
			return nil, contractx.SourceLocal, err
		}
		out[coll] = recs
	}
	return out, contractx.SourceLocal, nil
}

// companion reads a collection that accompanies records already read from
// source. ok is false when that source cannot serve it, in which case the
// caller restarts from local collections.
func (e *Executor) companion(ctx context.Context, cmd contractx.Command, collection string, source contractx.Source) ([]contractx.Record, bool, error) {
	if source == contractx.SourceLocal {
		recs, err := e.local(cmd.Domain, collection).List(ctx, 0)
		return recs, true, err
	}
	remote, ok := e.remotes[storeKey{domain: cmd.Domain, collection: collection}]
	if !ok {
		return nil, false, nil
	}
	recs, err := remote.List(ctx, e.listLimit)
	if err != nil {
		e.noteFallback(cmd, collection, err)
		return nil, false, nil
	}
	return recs, true, nil
}

func (e *Executor) search(ctx context.Context, cmd contractx.Command, collection string, criteria map[string]any) ([]contractx.Record, contractx.Source, error) {
	if remote, ok := e.remotes[storeKey{domain: cmd.Domain, collection: collection}]; ok {
		recs, err := remote.Search(ctx, criteria)
		if err == nil {
			return recs, contractx.SourceRemote, nil
		}
		e.noteFallback(cmd, collection, err)
	}
	recs, err := e.local(cmd.Domain, collection).Search(ctx, criteria)
	return recs, contractx.SourceLocal, err
}

func (e *Executor) noteFallback(cmd contractx.Command, collection string, err error) {
	log.Warn().
		Err(err).
		Str("domain", string(cmd.Domain)).
		Str("operation", cmd.Operation).
		Str("collection", collection).
		Msg("remote read failed, serving local collection")
	domain, operation := e.metricLabels(cmd)
	metricsx.RemoteFallbacks.WithLabelValues(domain, operation).Inc()
}

// writer returns the remote store for a collection. There is no local write
// path.
func (e *Executor) writer(domain contractx.Domain, collection string) (contractx.EntityStore, error) {
	store, ok := e.remotes[storeKey{domain: domain, collection: collection}]
	if !ok {
		return nil, fmt.Errorf("%w: cannot write %s in %s", contractx.ErrBackendUnavailable, collection, domain)
	}
	return store, nil
}

func titleFor(cmd contractx.Command) string {
	return fmt.Sprintf("%s failed", cmd.Operation)
}
