package provider

import (
	"context"
	"sync"
	"time"
)

// Mock is a test double for Adapter.
//
// By default Acquire succeeds immediately. Tests exercising in-flight
// acquisitions call Block() first, then complete or fail the pending
// acquisition with CompleteAcquire.
type Mock struct {
	mu sync.Mutex

	provider Provider
	ready    bool
	released bool
	playing  bool
	muted    bool
	volume   float64
	position time.Duration
	duration time.Duration

	blocking    bool
	acquireCh   chan error
	retargetErr error

	acquireCalls  []string
	retargetCalls []string
	releaseCalls  int
	playCalls     int
	pauseCalls    int
	seekCalls     []time.Duration
}

// NewMock creates a mock adapter for the given provider tag.
func NewMock(p Provider) *Mock {
	return &Mock{
		provider:  p,
		acquireCh: make(chan error),
	}
}

func (m *Mock) Acquire(ctx context.Context, providerTrackID string, opts AcquireOptions) error {
	m.mu.Lock()
	if m.ready {
		m.mu.Unlock()
		return ErrAlreadyAcquired
	}
	m.acquireCalls = append(m.acquireCalls, providerTrackID)
	blocking := m.blocking
	m.mu.Unlock()

	if blocking {
		select {
		case err := <-m.acquireCh:
			if err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		// Released while acquisition was in flight.
		return ErrNotReady
	}
	m.ready = true
	m.playing = opts.Autoplay
	m.muted = opts.Muted
	m.volume = opts.Volume
	return nil
}

func (m *Mock) Retarget(_ context.Context, providerTrackID string, autoplay bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ready {
		return ErrNotReady
	}
	m.retargetCalls = append(m.retargetCalls, providerTrackID)
	if m.retargetErr != nil {
		return m.retargetErr
	}
	m.playing = autoplay
	m.position = 0
	return nil
}

func (m *Mock) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseCalls++
	m.released = true
	m.ready = false
	m.playing = false
}

func (m *Mock) Play() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ready {
		m.playing = true
	}
}

func (m *Mock) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ready {
		m.playing = false
	}
}

func (m *Mock) Seek(position time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ready {
		return
	}
	m.seekCalls = append(m.seekCalls, position)
	m.position = position
}

func (m *Mock) SetVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ready {
		m.volume = v
	}
}

func (m *Mock) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ready {
		m.muted = muted
	}
}

func (m *Mock) CurrentTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) TrackDuration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

func (m *Mock) Provider() Provider {
	return m.provider
}

// Test helpers

// Block makes the next Acquire wait until CompleteAcquire is called.
func (m *Mock) Block() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocking = true
}

// CompleteAcquire unblocks a pending Acquire with the given result.
func (m *Mock) CompleteAcquire(err error) {
	m.acquireCh <- err
}

// SetRetargetError makes subsequent Retarget calls fail with err. Pass
// nil to restore success.
func (m *Mock) SetRetargetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retargetErr = err
}

func (m *Mock) SetPosition(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = d
}

func (m *Mock) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

func (m *Mock) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

func (m *Mock) Released() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released
}

func (m *Mock) AcquireCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.acquireCalls...)
}

func (m *Mock) RetargetCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.retargetCalls...)
}

func (m *Mock) ReleaseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.releaseCalls
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

// Verify Mock implements Adapter at compile time.
var _ Adapter = (*Mock)(nil)
