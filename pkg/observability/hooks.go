// Package observability lets an application watch the pipeline without the
// libraries depending on a metrics backend.
//
// Libraries report events through the registered hooks. The defaults are
// no-ops; [UseLogger] registers hooks that log every event at debug level,
// and an application can register its own:
//
//	observability.SetStoreHooks(&storeMetrics{})
//
// Emitting side:
//
//	observability.Pipeline().OnGenerateStart(ctx, rings, instances)
//	// place instances
//	observability.Pipeline().OnGenerateComplete(ctx, instances, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives studio events.
type PipelineHooks interface {
	// OnCommand records an applied or rejected edit command.
	OnCommand(ctx context.Context, command string, err error)
	OnGenerateStart(ctx context.Context, rings, instances int)
	OnGenerateComplete(ctx context.Context, instances int, duration time.Duration, err error)
	OnExportStart(ctx context.Context, name string)
	OnExportComplete(ctx context.Context, name string, size int, duration time.Duration, err error)
}

// CacheHooks receives template and export cache events. keyType is the key
// namespace, such as "template" or "export".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives template download events.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError records a transport failure; error statuses go to OnResponse.
	OnError(ctx context.Context, method, host, path string, err error)
}

// StoreHooks receives asset store events. backend is the store kind.
type StoreHooks interface {
	OnStorePut(ctx context.Context, backend, name string, size int, err error)
	OnStoreGet(ctx context.Context, backend, name string, size int, err error)
}

type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnCommand(context.Context, string, error)                            {}
func (NoopPipelineHooks) OnGenerateStart(context.Context, int, int)                           {}
func (NoopPipelineHooks) OnGenerateComplete(context.Context, int, time.Duration, error)       {}
func (NoopPipelineHooks) OnExportStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnExportComplete(context.Context, string, int, time.Duration, error) {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

type NoopStoreHooks struct{}

func (NoopStoreHooks) OnStorePut(context.Context, string, string, int, error) {}
func (NoopStoreHooks) OnStoreGet(context.Context, string, string, int, error) {}

// slot holds one registered hook implementation.
type slot[T any] struct {
	mu   sync.RWMutex
	hook T
	noop T
}

func newSlot[T any](noop T) *slot[T] { return &slot[T]{hook: noop, noop: noop} }

func (s *slot[T]) get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hook
}

// set ignores nil so a forgotten implementation never panics callers.
func (s *slot[T]) set(h T) {
	if any(h) == nil {
		return
	}
	s.mu.Lock()
	s.hook = h
	s.mu.Unlock()
}

func (s *slot[T]) reset() {
	s.mu.Lock()
	s.hook = s.noop
	s.mu.Unlock()
}

var (
	pipelineSlot = newSlot[PipelineHooks](NoopPipelineHooks{})
	cacheSlot    = newSlot[CacheHooks](NoopCacheHooks{})
	httpSlot     = newSlot[HTTPHooks](NoopHTTPHooks{})
	storeSlot    = newSlot[StoreHooks](NoopStoreHooks{})
)

func SetPipelineHooks(h PipelineHooks) { pipelineSlot.set(h) }
func SetCacheHooks(h CacheHooks)       { cacheSlot.set(h) }
func SetHTTPHooks(h HTTPHooks)         { httpSlot.set(h) }
func SetStoreHooks(h StoreHooks)       { storeSlot.set(h) }

func Pipeline() PipelineHooks { return pipelineSlot.get() }
func Cache() CacheHooks       { return cacheSlot.get() }
func HTTP() HTTPHooks         { return httpSlot.get() }
func Store() StoreHooks       { return storeSlot.get() }

// Reset restores the no-op hooks.
func Reset() {
	pipelineSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
	storeSlot.reset()
}
