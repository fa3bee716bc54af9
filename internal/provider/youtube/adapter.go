package youtube

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/soulpulse/soulpulse/internal/provider"
)

const (
	// commandTimeout bounds fire-and-forget transport commands.
	commandTimeout = 5 * time.Second

	// readyPollInterval is how often the host is polled for player
	// readiness while an acquisition is in flight.
	readyPollInterval = 100 * time.Millisecond

	// maxStatePollErrors is how many consecutive state-poll failures an
	// in-flight acquisition tolerates before treating the host as
	// unreachable. A transient error during player startup is fine; a
	// host that only ever errors must fail the acquisition.
	maxStatePollErrors = 10

	// progressSyncInterval is how stale the locally extrapolated
	// position may get before a background state fetch corrects it.
	progressSyncInterval = 2 * time.Second
)

// Adapter drives the embedded YouTube player through the local host.
// Acquisition blocks until the host reports the player ready, which maps
// the IFrame onReady callback onto a plain blocking call.
type Adapter struct {
	client *Client
	log    *log.Logger

	mu       sync.Mutex
	ready    bool
	released bool
	playing  bool
	duration time.Duration
	progress time.Duration
	syncedAt time.Time
	syncing  bool
}

// Verify Adapter implements the provider contract at compile time.
var _ provider.Adapter = (*Adapter)(nil)

// NewAdapter creates a YouTube adapter on the given client.
func NewAdapter(client *Client, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.Default()
	}
	return &Adapter{client: client, log: logger}
}

func (a *Adapter) Provider() provider.Provider {
	return provider.YouTube
}

func (a *Adapter) Acquire(ctx context.Context, providerTrackID string, opts provider.AcquireOptions) error {
	a.mu.Lock()
	if a.ready {
		a.mu.Unlock()
		return provider.ErrAlreadyAcquired
	}
	a.mu.Unlock()

	err := a.client.Load(ctx, LoadRequest{
		VideoID:  providerTrackID,
		Autoplay: opts.Autoplay,
		Muted:    opts.Muted,
		Volume:   opts.Volume,
	})
	if err != nil {
		return fmt.Errorf("youtube: load %s: %w", providerTrackID, err)
	}

	state, err := a.awaitReady(ctx)
	if err != nil {
		return fmt.Errorf("youtube: player not ready: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		// Released while acquisition was in flight.
		return provider.ErrNotReady
	}
	a.ready = true
	a.playing = opts.Autoplay
	a.duration = time.Duration(state.DurationMS) * time.Millisecond
	a.progress = 0
	a.syncedAt = time.Now()
	return nil
}

// awaitReady polls the host until the player reports ready, ctx ends, or
// the state endpoint fails maxStatePollErrors times in a row.
func (a *Adapter) awaitReady(ctx context.Context) (*PlayerState, error) {
	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	errStreak := 0
	for {
		state, err := a.client.State(ctx)
		if err == nil && state.Ready {
			return state, nil
		}
		if err != nil {
			errStreak++
			a.log.Debug("youtube state poll failed", "attempt", errStreak, "err", err)
			if errStreak >= maxStatePollErrors {
				return nil, fmt.Errorf("host unreachable after %d state polls: %w", errStreak, err)
			}
		} else {
			errStreak = 0
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (a *Adapter) Retarget(ctx context.Context, providerTrackID string, autoplay bool) error {
	a.mu.Lock()
	if !a.ready {
		a.mu.Unlock()
		return provider.ErrNotReady
	}
	a.mu.Unlock()

	err := a.client.Load(ctx, LoadRequest{VideoID: providerTrackID, Autoplay: autoplay})
	if err != nil {
		return fmt.Errorf("youtube: load %s: %w", providerTrackID, err)
	}

	state, err := a.awaitReady(ctx)
	if err != nil {
		return fmt.Errorf("youtube: player not ready: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.playing = autoplay
	a.duration = time.Duration(state.DurationMS) * time.Millisecond
	a.progress = 0
	a.syncedAt = time.Now()
	return nil
}

// Release destroys the embedded player best-effort and detaches.
// Idempotent; failures are logged and swallowed so teardown never blocks
// the next session.
func (a *Adapter) Release() {
	a.mu.Lock()
	wasReady := a.ready
	a.released = true
	a.ready = false
	a.playing = false
	a.mu.Unlock()

	if wasReady {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()
			if err := a.client.Destroy(ctx); err != nil {
				a.log.Debug("youtube destroy failed", "err", err)
			}
		}()
	}
}

func (a *Adapter) Play() {
	a.mu.Lock()
	if !a.ready {
		a.mu.Unlock()
		return
	}
	a.playing = true
	a.progress = a.extrapolatedLocked()
	a.syncedAt = time.Now()
	a.mu.Unlock()

	a.command("play", a.client.Play)
}

func (a *Adapter) Pause() {
	a.mu.Lock()
	if !a.ready {
		a.mu.Unlock()
		return
	}
	a.progress = a.extrapolatedLocked()
	a.syncedAt = time.Now()
	a.playing = false
	a.mu.Unlock()

	a.command("pause", a.client.Pause)
}

func (a *Adapter) Seek(position time.Duration) {
	a.mu.Lock()
	if !a.ready {
		a.mu.Unlock()
		return
	}
	a.progress = position
	a.syncedAt = time.Now()
	a.mu.Unlock()

	a.command("seek", func(ctx context.Context) error {
		return a.client.Seek(ctx, int(position/time.Millisecond))
	})
}

func (a *Adapter) SetVolume(v float64) {
	a.mu.Lock()
	if !a.ready {
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()

	a.command("volume", func(ctx context.Context) error {
		return a.client.SetVolume(ctx, v)
	})
}

func (a *Adapter) SetMuted(muted bool) {
	a.mu.Lock()
	if !a.ready {
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()

	a.command("mute", func(ctx context.Context) error {
		return a.client.SetMuted(ctx, muted)
	})
}

// CurrentTime returns the locally extrapolated position. A background
// state fetch corrects drift once the extrapolation gets stale.
func (a *Adapter) CurrentTime() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.ready {
		return 0
	}
	pos := a.extrapolatedLocked()
	if a.playing && time.Since(a.syncedAt) > progressSyncInterval && !a.syncing {
		a.syncing = true
		go a.resync()
	}
	return pos
}

func (a *Adapter) TrackDuration() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.duration
}

func (a *Adapter) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ready
}

func (a *Adapter) extrapolatedLocked() time.Duration {
	if !a.playing {
		return a.progress
	}
	pos := a.progress + time.Since(a.syncedAt)
	if a.duration > 0 && pos > a.duration {
		return a.duration
	}
	return pos
}

func (a *Adapter) resync() {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	state, err := a.client.State(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.syncing = false
	if err != nil {
		a.log.Debug("youtube progress sync failed", "err", err)
		return
	}
	if !a.ready {
		return
	}
	a.progress = time.Duration(state.PositionMS) * time.Millisecond
	a.syncedAt = time.Now()
	a.playing = state.Playing
	if state.DurationMS > 0 {
		a.duration = time.Duration(state.DurationMS) * time.Millisecond
	}
}

// command runs a transport call off the caller's path. The store invokes
// transport methods under its lock; blocking there on the host would
// stall every other operation.
func (a *Adapter) command(name string, fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			a.log.Warn("youtube command failed", "command", name, "err", err)
		}
	}()
}
