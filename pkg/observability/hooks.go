// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries emit events through the registered hooks; main decides where
// they go. The defaults are no-ops, so nothing is recorded unless a hook is
// registered at startup.
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnBuildStart(ctx, filters)
//	// ... build graph ...
//	observability.Pipeline().OnBuildComplete(ctx, nodes, links, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from the flow and map pipelines.
type PipelineHooks interface {
	// Flow graph construction
	OnBuildStart(ctx context.Context, year, origin, asylum string)
	OnBuildComplete(ctx context.Context, nodes, links int, duration time.Duration)

	// Map binning for one year
	OnBinComplete(ctx context.Context, year string, regions, unknown int, duration time.Duration)

	// Artifact rendering
	OnRenderStart(ctx context.Context, kind string, formats []string)
	OnRenderComplete(ctx context.Context, kind string, formats []string, duration time.Duration, err error)
}

// TimelapseHooks receives sequencer events.
type TimelapseHooks interface {
	OnTick(ctx context.Context, year string, index int)
	OnStateChange(ctx context.Context, running bool)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from remote dataset and geometry fetches.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnBuildStart(context.Context, string, string, string)                     {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, int, int, time.Duration)                 {}
func (NoopPipelineHooks) OnBinComplete(context.Context, string, int, int, time.Duration)           {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, []string, time.Duration, error) {}

// NoopTimelapseHooks is a no-op implementation of TimelapseHooks.
type NoopTimelapseHooks struct{}

func (NoopTimelapseHooks) OnTick(context.Context, string, int) {}
func (NoopTimelapseHooks) OnStateChange(context.Context, bool) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

var (
	hooksMu        sync.RWMutex
	pipelineHooks  PipelineHooks  = NoopPipelineHooks{}
	timelapseHooks TimelapseHooks = NoopTimelapseHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	httpHooks      HTTPHooks      = NoopHTTPHooks{}
)

// SetPipelineHooks registers pipeline hooks. A nil argument is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetTimelapseHooks registers timelapse hooks. A nil argument is ignored.
func SetTimelapseHooks(h TimelapseHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		timelapseHooks = h
	}
}

// SetCacheHooks registers cache hooks. A nil argument is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers HTTP hooks. A nil argument is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

func Timelapse() TimelapseHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return timelapseHooks
}

func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores the no-op defaults. Tests use it between cases.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	timelapseHooks = NoopTimelapseHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
