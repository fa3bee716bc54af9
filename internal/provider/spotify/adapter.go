package spotify

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/soulpulse/soulpulse/internal/provider"
)

const (
	// commandTimeout bounds fire-and-forget transport commands.
	commandTimeout = 10 * time.Second

	// progressSyncInterval is how stale the locally extrapolated position
	// may get before a background state fetch corrects it.
	progressSyncInterval = 5 * time.Second
)

// Adapter drives Spotify playback through the Web API. Position is
// extrapolated locally between periodic state fetches so CurrentTime is
// cheap enough for the poller.
type Adapter struct {
	client *Client
	log    *log.Logger

	mu       sync.Mutex
	ready    bool
	released bool
	playing  bool
	muted    bool
	volume   float64
	duration time.Duration
	progress time.Duration
	syncedAt time.Time
	syncing  bool
}

// Verify Adapter implements the provider contract at compile time.
var _ provider.Adapter = (*Adapter)(nil)

// NewAdapter creates a Spotify adapter on the given client.
func NewAdapter(client *Client, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.Default()
	}
	return &Adapter{client: client, log: logger}
}

func (a *Adapter) Provider() provider.Provider {
	return provider.Spotify
}

func (a *Adapter) Acquire(ctx context.Context, providerTrackID string, opts provider.AcquireOptions) error {
	a.mu.Lock()
	if a.ready {
		a.mu.Unlock()
		return provider.ErrAlreadyAcquired
	}
	a.mu.Unlock()

	uri := "spotify:track:" + providerTrackID
	if err := a.client.Play(ctx, &PlayOptions{URIs: []string{uri}}); err != nil {
		return fmt.Errorf("spotify: load %s: %w", providerTrackID, err)
	}

	volume := opts.Volume
	if opts.Muted {
		volume = 0
	}
	if err := a.client.SetVolume(ctx, toPercent(volume)); err != nil {
		a.log.Debug("spotify volume not applied", "err", err)
	}

	if !opts.Autoplay {
		if err := a.client.Pause(ctx); err != nil {
			return fmt.Errorf("spotify: pause after load: %w", err)
		}
	}

	var duration time.Duration
	if state, err := a.client.GetState(ctx); err == nil && state != nil && state.Item != nil {
		duration = time.Duration(state.Item.DurationMS) * time.Millisecond
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		// Released while acquisition was in flight.
		return provider.ErrNotReady
	}
	a.ready = true
	a.playing = opts.Autoplay
	a.muted = opts.Muted
	a.volume = opts.Volume
	a.duration = duration
	a.progress = 0
	a.syncedAt = time.Now()
	return nil
}

func (a *Adapter) Retarget(ctx context.Context, providerTrackID string, autoplay bool) error {
	a.mu.Lock()
	if !a.ready {
		a.mu.Unlock()
		return provider.ErrNotReady
	}
	a.mu.Unlock()

	uri := "spotify:track:" + providerTrackID
	if err := a.client.Play(ctx, &PlayOptions{URIs: []string{uri}}); err != nil {
		return fmt.Errorf("spotify: load %s: %w", providerTrackID, err)
	}
	if !autoplay {
		if err := a.client.Pause(ctx); err != nil {
			return fmt.Errorf("spotify: pause after load: %w", err)
		}
	}

	var duration time.Duration
	if state, err := a.client.GetState(ctx); err == nil && state != nil && state.Item != nil {
		duration = time.Duration(state.Item.DurationMS) * time.Millisecond
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.playing = autoplay
	a.duration = duration
	a.progress = 0
	a.syncedAt = time.Now()
	return nil
}

// Release pauses the remote device best-effort and detaches. Idempotent;
// failures are logged and swallowed so teardown never blocks the next
// session.
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
			if err := a.client.Pause(ctx); err != nil {
				a.log.Debug("spotify release pause failed", "err", err)
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
	a.syncProgressLocked()
	a.mu.Unlock()

	a.command("play", func(ctx context.Context) error {
		return a.client.Play(ctx, nil)
	})
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

	a.command("pause", func(ctx context.Context) error {
		return a.client.Pause(ctx)
	})
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
	a.volume = v
	muted := a.muted
	a.mu.Unlock()

	if muted {
		return
	}
	a.command("volume", func(ctx context.Context) error {
		return a.client.SetVolume(ctx, toPercent(v))
	})
}

// SetMuted implements mute as volume zero; the Web API has no mute
// endpoint.
func (a *Adapter) SetMuted(muted bool) {
	a.mu.Lock()
	if !a.ready {
		a.mu.Unlock()
		return
	}
	a.muted = muted
	volume := a.volume
	a.mu.Unlock()

	if muted {
		volume = 0
	}
	a.command("mute", func(ctx context.Context) error {
		return a.client.SetVolume(ctx, toPercent(volume))
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

func (a *Adapter) syncProgressLocked() {
	a.progress = a.extrapolatedLocked()
	a.syncedAt = time.Now()
}

func (a *Adapter) resync() {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	state, err := a.client.GetState(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.syncing = false
	if err != nil {
		a.log.Debug("spotify progress sync failed", "err", err)
		return
	}
	if !a.ready || state == nil {
		return
	}
	a.progress = time.Duration(state.ProgressMS) * time.Millisecond
	a.syncedAt = time.Now()
	a.playing = state.IsPlaying
	if state.Item != nil {
		a.duration = time.Duration(state.Item.DurationMS) * time.Millisecond
	}
}

// command runs a transport call off the caller's path. The store invokes
// transport methods under its lock; blocking there on the network would
// stall every other operation.
func (a *Adapter) command(name string, fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			a.log.Warn("spotify command failed", "command", name, "err", err)
		}
	}()
}

func toPercent(v float64) int {
	return int(math.Round(min(max(v, 0), 1) * 100))
}
