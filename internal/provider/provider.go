// Package provider defines the uniform session contract over external
// playback backends. Each Adapter owns at most one native provider handle;
// ownership is exclusive and transferred on switch, never shared.
package provider

import (
	"context"
	"errors"
	"time"
)

// Provider identifies an external playback backend.
type Provider string

const (
	None    Provider = ""
	Spotify Provider = "spotify"
	YouTube Provider = "youtube"
)

// String returns the provider name for display and logging.
func (p Provider) String() string {
	if p == None {
		return "none"
	}
	return string(p)
}

// Valid returns true for a known, non-empty provider tag.
func (p Provider) Valid() bool {
	return p == Spotify || p == YouTube
}

// ErrNotReady is returned when an operation requires an acquired session.
var ErrNotReady = errors.New("provider session not ready")

// ErrAlreadyAcquired is returned when Acquire is called on an adapter that
// still holds a native handle. Callers must Release first.
var ErrAlreadyAcquired = errors.New("provider session already acquired")

// AcquireOptions configures session acquisition.
type AcquireOptions struct {
	Autoplay bool
	Muted    bool
	Volume   float64 // 0..1
}

// Adapter wraps one backend's native control handle behind a uniform
// surface. Implementations must make Release idempotent and must never
// panic on transport calls against a released or unready handle; such
// calls are silently ignored.
type Adapter interface {
	// Acquire allocates the native handle for the given backend-specific
	// track id and blocks until the backend reports readiness or fails.
	Acquire(ctx context.Context, providerTrackID string, opts AcquireOptions) error

	// Retarget loads a different track into the existing session without
	// tearing down the native handle. Requires a prior successful Acquire.
	Retarget(ctx context.Context, providerTrackID string, autoplay bool) error

	// Release tears down the native handle. Safe to call multiple times;
	// backend teardown errors are logged and swallowed.
	Release()

	Play()
	Pause()
	Seek(position time.Duration)
	SetVolume(v float64)
	SetMuted(muted bool)

	CurrentTime() time.Duration
	TrackDuration() time.Duration

	Ready() bool
	Provider() Provider
}

// Factory constructs a fresh adapter. One adapter is created per
// acquisition and destroyed on close or before a different provider's
// adapter is created.
type Factory func() Adapter

// Registry maps provider tags to adapter factories.
type Registry struct {
	factories map[Provider]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Provider]Factory)}
}

// Register binds a factory to a provider tag, replacing any previous one.
func (r *Registry) Register(p Provider, f Factory) {
	r.factories[p] = f
}

// New constructs a fresh adapter for the given provider.
func (r *Registry) New(p Provider) (Adapter, error) {
	f, ok := r.factories[p]
	if !ok {
		return nil, errors.New("no adapter registered for provider " + p.String())
	}
	return f(), nil
}

// Supports returns true if a factory is registered for the provider.
func (r *Registry) Supports(p Provider) bool {
	_, ok := r.factories[p]
	return ok
}
