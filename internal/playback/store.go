package playback

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/soulpulse/soulpulse/internal/analytics"
	"github.com/soulpulse/soulpulse/internal/errmsg"
	"github.com/soulpulse/soulpulse/internal/provider"
	"github.com/soulpulse/soulpulse/internal/queue"
)

// positionPollInterval bounds how often the active adapter is polled for
// playback progress. Polling runs only while playing.
const positionPollInterval = 250 * time.Millisecond

// acquireTimeout bounds a session acquisition end to end. A backend that
// never reports ready fails the open instead of pinning the player in the
// acquiring phase.
const acquireTimeout = 30 * time.Second

// ErrClosed is returned by mutations after the service has shut down.
var ErrClosed = errors.New("playback: service closed")

// Verify store implements Service at compile time.
var _ Service = (*store)(nil)

type store struct {
	mu    sync.Mutex
	st    State
	gen   uint64 // supersession generation; bumped on every open/switch/close
	coord *coordinator
	queue *queue.Queue
	sink  analytics.Sink
	log   *log.Logger

	subs   []*Subscription
	subsMu sync.RWMutex

	pollStop chan struct{}
	closed   bool
}

// New creates the playback store. queue and sink may be nil; a nil sink
// discards analytics events.
func New(registry *provider.Registry, q *queue.Queue, sink analytics.Sink, logger *log.Logger) Service {
	if sink == nil {
		sink = analytics.Nop{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &store{
		st:    State{Volume: 1.0},
		coord: newCoordinator(registry, logger),
		queue: q,
		sink:  sink,
		log:   logger,
	}
}

// Open begins or retargets playback. An empty ProviderTrackID is "nothing
// playable" and returns without mutating state. The call returns once the
// canonical state reflects the request; session acquisition continues in
// the background and reports through events.
func (s *store) Open(req OpenRequest) error {
	return s.open(req, analytics.ActionOpen)
}

// SwitchProvider retargets playback to a different backend for the same
// (or a new) canonical track, preserving transport intent, view mode, and
// display metadata.
func (s *store) SwitchProvider(p provider.Provider, providerTrackID, trackID string) error {
	s.mu.Lock()
	req := OpenRequest{
		TrackID:         trackID,
		Provider:        p,
		ProviderTrackID: providerTrackID,
		Autoplay:        s.st.Playing,
		Title:           s.st.Title,
		Artist:          s.st.Artist,
	}
	if req.TrackID == "" {
		req.TrackID = s.st.TrackID
	}
	s.mu.Unlock()
	return s.open(req, analytics.ActionSwitchProvider)
}

func (s *store) open(req OpenRequest, action analytics.Action) error {
	if req.ProviderTrackID == "" {
		return nil
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	prev := s.st

	s.st.TrackID = req.TrackID
	s.st.ProviderTrackID = req.ProviderTrackID
	s.st.Provider = req.Provider
	s.st.Title = req.Title
	s.st.Artist = req.Artist
	if req.Title != "" {
		s.st.LastKnownTitle = req.Title
	}
	if req.Artist != "" {
		s.st.LastKnownArtist = req.Artist
	}
	s.st.HasPendingSeek = req.StartAt > 0
	s.st.PendingSeek = req.StartAt
	s.st.LastError = ""
	s.st.Position = 0
	s.st.Duration = 0
	s.st.Playing = req.Autoplay

	gen := s.nextGenLocked()

	if prev.Open && prev.Provider == req.Provider && s.coord.ready() {
		// Same provider with an acquired session: retarget the existing
		// adapter instead of tearing it down.
		a := s.coord.adapter()
		cur := s.st
		s.mu.Unlock()

		s.publishState(prev, cur)
		s.publishTrackChange(prev, cur)
		s.record(action, req)
		go s.retarget(gen, a, req.ProviderTrackID, req.Autoplay)
		return nil
	}

	// Teardown-before-create: the old handle is detached before the new
	// adapter exists, so no instant can observe two live sessions.
	s.st.Phase = PhaseReleasing
	s.stopPollingLocked()
	s.coord.release()

	a, err := s.coord.mount(req.Provider)
	if err != nil {
		s.failLocked(errmsg.OpOpenPlayer, err)
		cur := s.st
		s.mu.Unlock()
		s.publishState(prev, cur)
		s.publishError("open", req.Provider, err)
		return err
	}

	s.st.Phase = PhaseAcquiring
	s.st.Open = true
	opts := provider.AcquireOptions{
		Autoplay: req.Autoplay,
		Muted:    s.st.Muted,
		Volume:   s.st.Volume,
	}
	cur := s.st
	s.mu.Unlock()

	s.publishState(prev, cur)
	s.publishTrackChange(prev, cur)
	s.record(action, req)
	go s.acquire(gen, a, req.ProviderTrackID, opts)
	return nil
}

// acquire runs the blocking session acquisition off the caller's path.
// The generation is re-checked after the await point: a stale attempt
// releases whatever it acquired and makes no state changes, so late
// readiness callbacks have no observable effect.
func (s *store) acquire(gen uint64, a provider.Adapter, providerTrackID string, opts provider.AcquireOptions) {
	ctx, cancel := context.WithTimeout(context.Background(), acquireTimeout)
	err := a.Acquire(ctx, providerTrackID, opts)
	cancel()

	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		a.Release()
		s.log.Debug("discarding superseded acquisition", "track", providerTrackID)
		return
	}
	prev := s.st

	if err != nil {
		s.coord.release()
		s.failLocked(errmsg.OpAcquire, err)
		cur := s.st
		s.mu.Unlock()
		s.publishState(prev, cur)
		s.publishError("acquire", a.Provider(), err)
		return
	}

	s.st.Phase = PhaseReady
	if d := a.TrackDuration(); d > 0 {
		s.st.Duration = d
	}
	s.applyPendingSeekLocked(a)
	// Transport intent may have flipped while acquiring; reconcile.
	if s.st.Playing {
		a.Play()
		s.startPollingLocked()
	} else {
		a.Pause()
	}
	cur := s.st
	s.mu.Unlock()
	s.publishState(prev, cur)
}

// retarget loads a new track into the already-acquired session.
func (s *store) retarget(gen uint64, a provider.Adapter, providerTrackID string, autoplay bool) {
	ctx, cancel := context.WithTimeout(context.Background(), acquireTimeout)
	err := a.Retarget(ctx, providerTrackID, autoplay)
	cancel()

	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	prev := s.st

	if err != nil {
		// The session survives; fall back to a paused surface with the
		// failure surfaced as state. The pending seek belonged to the
		// failed request and must not apply to a later one.
		s.st.Playing = false
		s.st.LastError = errmsg.FormatWith(errmsg.OpRetarget, s.st.TrackID, err)
		s.st.HasPendingSeek = false
		s.st.PendingSeek = 0
		s.stopPollingLocked()
		cur := s.st
		s.mu.Unlock()
		s.publishState(prev, cur)
		s.publishError("retarget", a.Provider(), err)
		return
	}

	s.st.Phase = PhaseReady
	if d := a.TrackDuration(); d > 0 {
		s.st.Duration = d
	}
	s.applyPendingSeekLocked(a)
	if s.st.Playing {
		s.startPollingLocked()
	} else {
		s.stopPollingLocked()
	}
	cur := s.st
	s.mu.Unlock()
	s.publishState(prev, cur)
}

// failLocked settles the store into the fail-safe closed state: nothing
// playing rather than a stuck or duplicated session.
func (s *store) failLocked(op errmsg.Op, err error) {
	s.st.Open = false
	s.st.Phase = PhaseIdle
	s.st.Provider = provider.None
	s.st.Playing = false
	s.st.Position = 0
	s.st.Duration = 0
	s.st.HasPendingSeek = false
	s.st.PendingSeek = 0
	s.st.LastError = errmsg.Format(op, err)
	s.stopPollingLocked()
}

func (s *store) applyPendingSeekLocked(a provider.Adapter) {
	if !s.st.HasPendingSeek {
		return
	}
	a.Seek(s.st.PendingSeek)
	s.st.Position = s.st.PendingSeek
	s.st.HasPendingSeek = false
	s.st.PendingSeek = 0
}

// TogglePlayPause flips transport intent. If a session is still
// acquiring, only the intent flips; the acquisition goroutine reconciles
// the adapter once it is ready.
func (s *store) TogglePlayPause() {
	s.mu.Lock()
	if s.closed || !s.st.Open {
		s.mu.Unlock()
		return
	}
	prev := s.st
	s.st.Playing = !s.st.Playing
	if s.coord.ready() {
		if s.st.Playing {
			s.coord.adapter().Play()
			s.startPollingLocked()
		} else {
			s.coord.adapter().Pause()
			s.stopPollingLocked()
		}
	}
	cur := s.st
	s.mu.Unlock()
	s.publishState(prev, cur)
}

// SetVolume clamps v to [0,1] and applies it to the active session.
// Volume is a preference and may be set while closed.
func (s *store) SetVolume(v float64) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	prev := s.st
	s.st.Volume = min(max(v, 0), 1)
	if s.coord.ready() {
		s.coord.adapter().SetVolume(s.st.Volume)
	}
	cur := s.st
	s.mu.Unlock()
	s.publishState(prev, cur)
}

func (s *store) ToggleMute() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	prev := s.st
	s.st.Muted = !s.st.Muted
	if s.coord.ready() {
		s.coord.adapter().SetMuted(s.st.Muted)
	}
	cur := s.st
	s.mu.Unlock()
	s.publishState(prev, cur)
}

// SeekTo seeks the active session. If the session is still acquiring, the
// position is queued as a pending seek and applied exactly once at
// readiness; it is never silently dropped.
func (s *store) SeekTo(position time.Duration) {
	s.mu.Lock()
	if s.closed || !s.st.Open {
		s.mu.Unlock()
		return
	}
	if position < 0 {
		position = 0
	}
	if s.coord.ready() {
		s.coord.adapter().Seek(position)
		s.st.Position = position
		s.mu.Unlock()
		s.publishPosition(position)
		return
	}
	s.st.PendingSeek = position
	s.st.HasPendingSeek = true
	s.mu.Unlock()
}

// Stop halts playback. A ready session stays mounted, paused at the
// start; an in-flight acquisition is cancelled and the surface closes
// (fail safe toward nothing playing).
func (s *store) Stop() {
	s.mu.Lock()
	if s.closed || !s.st.Open {
		s.mu.Unlock()
		return
	}
	prev := s.st
	s.nextGenLocked() // discard any late readiness callback
	s.stopPollingLocked()

	if s.coord.ready() {
		a := s.coord.adapter()
		a.Pause()
		a.Seek(0)
		s.st.Playing = false
		s.st.Position = 0
		s.st.Phase = PhaseReady
	} else {
		s.coord.release()
		s.st.Open = false
		s.st.Phase = PhaseIdle
		s.st.Provider = provider.None
		s.st.Playing = false
		s.st.Position = 0
		s.st.Duration = 0
	}
	s.st.HasPendingSeek = false
	s.st.PendingSeek = 0
	cur := s.st
	s.mu.Unlock()
	s.publishState(prev, cur)
}

// ClosePlayer tears down the session and resets to the initial closed
// state. View mode, volume, and last-known metadata survive; they are
// user preferences, not session state. Safe to call repeatedly.
func (s *store) ClosePlayer() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	prev := s.st
	s.nextGenLocked()
	s.stopPollingLocked()
	s.coord.release()

	s.st.Open = false
	s.st.Phase = PhaseIdle
	s.st.Provider = provider.None
	s.st.TrackID = ""
	s.st.ProviderTrackID = ""
	s.st.Title = ""
	s.st.Artist = ""
	s.st.Playing = false
	s.st.Position = 0
	s.st.Duration = 0
	s.st.HasPendingSeek = false
	s.st.PendingSeek = 0
	s.st.LastError = ""
	cur := s.st
	s.mu.Unlock()

	if prev != cur {
		s.publishState(prev, cur)
	}
}

// Next advances within the bound queue and opens the resulting track.
func (s *store) Next() bool {
	return s.advance(true)
}

// Previous retreats within the bound queue and opens the resulting track.
func (s *store) Previous() bool {
	return s.advance(false)
}

func (s *store) advance(forward bool) bool {
	s.mu.Lock()
	if s.closed || s.queue == nil {
		s.mu.Unlock()
		return false
	}
	var t *queue.Track
	if forward {
		t = s.queue.Next()
	} else {
		t = s.queue.Previous()
	}
	autoplay := s.st.Playing || !s.st.Open
	s.mu.Unlock()

	if t == nil {
		return false
	}
	action := analytics.ActionNext
	if !forward {
		action = analytics.ActionPrevious
	}
	return s.open(OpenRequest{
		TrackID:         t.ID,
		Provider:        t.Provider,
		ProviderTrackID: t.ProviderTrackID,
		Title:           t.Title,
		Artist:          t.Artist,
		Autoplay:        autoplay,
	}, action) == nil
}

// CollapseToMini docks the player surface at the given anchor.
func (s *store) CollapseToMini(pos MiniPosition) {
	s.setViewMode(ViewMinimized, pos)
}

// RestoreFromMini expands the player surface.
func (s *store) RestoreFromMini() {
	s.mu.Lock()
	pos := s.st.MiniPos
	s.mu.Unlock()
	s.setViewMode(ViewExpanded, pos)
}

// EnterCinema switches to the immersive full-surface mode.
func (s *store) EnterCinema() {
	s.mu.Lock()
	pos := s.st.MiniPos
	s.mu.Unlock()
	s.setViewMode(ViewCinema, pos)
}

// ExitCinema returns to the expanded surface.
func (s *store) ExitCinema() {
	s.mu.Lock()
	pos := s.st.MiniPos
	s.mu.Unlock()
	s.setViewMode(ViewExpanded, pos)
}

// setViewMode changes only presentation state. Transport state, provider,
// and the loaded track are untouched by construction.
func (s *store) setViewMode(mode ViewMode, pos MiniPosition) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	prevMode := s.st.ViewMode
	s.st.ViewMode = mode
	s.st.MiniPos = pos
	s.mu.Unlock()

	if prevMode != mode {
		s.publishViewMode(prevMode, mode)
	}
}

// State returns a snapshot of the canonical state.
func (s *store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

func (s *store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Open
}

func (s *store) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Playing
}

func (s *store) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Position
}

func (s *store) TrackDuration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Duration
}

// Subscribe creates a new event subscription.
func (s *store) Subscribe() *Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	sub := newSubscription()
	s.subs = append(s.subs, sub)
	return sub
}

// Close shuts down the service, releasing any active session.
func (s *store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.nextGenLocked()
	s.stopPollingLocked()
	s.coord.release()
	s.mu.Unlock()

	s.subsMu.Lock()
	for _, sub := range s.subs {
		sub.close()
	}
	s.subs = nil
	s.subsMu.Unlock()
	return nil
}

func (s *store) nextGenLocked() uint64 {
	s.gen++
	return s.gen
}

// Position polling: a bounded-interval pull gives one provider-agnostic
// progress mechanism instead of relying on per-backend push callbacks.

func (s *store) startPollingLocked() {
	if s.pollStop != nil {
		return
	}
	stop := make(chan struct{})
	s.pollStop = stop
	go s.poll(stop)
}

func (s *store) stopPollingLocked() {
	if s.pollStop != nil {
		close(s.pollStop)
		s.pollStop = nil
	}
}

func (s *store) poll(stop chan struct{}) {
	ticker := time.NewTicker(positionPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			if !s.st.Playing || !s.coord.ready() {
				s.mu.Unlock()
				continue
			}
			a := s.coord.adapter()
			pos := a.CurrentTime()
			s.st.Position = pos
			if d := a.TrackDuration(); d > 0 {
				s.st.Duration = d
			}
			s.mu.Unlock()
			s.publishPosition(pos)
		}
	}
}

// Event publication. Sends are non-blocking; a slow subscriber loses
// events rather than stalling a mutation.

func (s *store) publishState(prev, cur State) {
	if prev == cur {
		return
	}
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendState(StateChange{Previous: prev, Current: cur})
	}
}

func (s *store) publishTrackChange(prev, cur State) {
	// A provider switch keeps the canonical identity; only a genuinely
	// different track fires. Requests without a canonical id fall back to
	// the provider-specific id for identity.
	same := prev.TrackID == cur.TrackID
	if prev.TrackID == "" && cur.TrackID == "" {
		same = prev.ProviderTrackID == cur.ProviderTrackID
	}
	if same {
		return
	}
	e := TrackChange{Previous: trackOf(prev), Current: trackOf(cur)}
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendTrack(e)
	}
}

func (s *store) publishPosition(pos time.Duration) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendPosition(pos)
	}
}

func (s *store) publishViewMode(prev, cur ViewMode) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendViewMode(ViewModeChange{Previous: prev, Current: cur})
	}
}

func (s *store) publishError(operation string, p provider.Provider, err error) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendError(ErrorEvent{Operation: operation, Provider: p, Err: err})
	}
}

func (s *store) record(action analytics.Action, req OpenRequest) {
	s.sink.Record(analytics.Event{
		TrackID:  req.TrackID,
		Provider: req.Provider,
		Action:   action,
	})
}

func trackOf(st State) *Track {
	if st.TrackID == "" && st.ProviderTrackID == "" {
		return nil
	}
	return &Track{
		ID:              st.TrackID,
		Provider:        st.Provider,
		ProviderTrackID: st.ProviderTrackID,
		Title:           st.Title,
		Artist:          st.Artist,
	}
}
