// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about pipeline stages and about the packer's pixel cache.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the packing engine free of observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, plain counters)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnPackStart(ctx, len(images))
//	// ... pack ...
//	observability.Pipeline().OnPackComplete(ctx, sheets, packed, unpacked, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the packing pipeline.
type PipelineHooks interface {
	// Discovery and registration events
	OnDiscoverComplete(ctx context.Context, files int, duration time.Duration)
	OnAddComplete(ctx context.Context, accepted, rejected int, duration time.Duration)

	// Packing events
	OnPackStart(ctx context.Context, images int)
	OnPackComplete(ctx context.Context, sheets, packed, unpacked int, duration time.Duration, err error)

	// Output events
	OnSheetWritten(ctx context.Context, index int, path string, duration time.Duration, err error)
	OnDefinitionsWritten(ctx context.Context, path string, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from the packer's decoded-pixel cache.
// Sizes are in pixels of the padded buffer.
type CacheHooks interface {
	// OnLoad records the first decode of an image during registration.
	OnLoad(image string, pixels int)

	// OnMaterialize records a re-decode of a previously purged image.
	OnMaterialize(image string, pixels int)

	// OnPurge records a resident buffer being freed.
	OnPurge(image string, pixels int)

	// OnDuplicate records a name merged into an image with identical pixels.
	OnDuplicate(name, original string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnDiscoverComplete(context.Context, int, time.Duration) {}
func (NoopPipelineHooks) OnAddComplete(context.Context, int, int, time.Duration) {}
func (NoopPipelineHooks) OnPackStart(context.Context, int)                       {}
func (NoopPipelineHooks) OnPackComplete(context.Context, int, int, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnSheetWritten(context.Context, int, string, time.Duration, error) {}
func (NoopPipelineHooks) OnDefinitionsWritten(context.Context, string, error)               {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnLoad(string, int)         {}
func (NoopCacheHooks) OnMaterialize(string, int)  {}
func (NoopCacheHooks) OnPurge(string, int)        {}
func (NoopCacheHooks) OnDuplicate(string, string) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any images are added.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
}
