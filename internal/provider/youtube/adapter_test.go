package youtube

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/soulpulse/soulpulse/internal/provider"
)

// fakeHost emulates the player host: load marks the player ready after a
// configurable number of state polls.
type fakeHost struct {
	mu         sync.Mutex
	loads      []LoadRequest
	calls      []string
	readyAfter int // state polls before reporting ready
	polls      int
	failLoad   bool
	failState  bool // state endpoint always errors
	state      PlayerState
}

func (f *fakeHost) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.calls = append(f.calls, r.Method+" "+r.URL.Path)

		switch r.URL.Path {
		case "/player/load":
			if f.failLoad {
				w.WriteHeader(http.StatusBadGateway)
				io.WriteString(w, "player crashed")
				return
			}
			var req LoadRequest
			json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
			f.loads = append(f.loads, req)
			f.polls = 0
			f.state.Ready = false
			f.state.Playing = req.Autoplay
		case "/player/state":
			if f.failState {
				w.WriteHeader(http.StatusInternalServerError)
				io.WriteString(w, "player crashed")
				return
			}
			f.polls++
			if f.polls > f.readyAfter {
				f.state.Ready = true
			}
			json.NewEncoder(w).Encode(f.state) //nolint:errcheck
		default:
			// play/pause/seek/volume/mute/destroy all succeed
		}
	})
}

func newTestAdapter(t *testing.T, host *fakeHost) *Adapter {
	t.Helper()
	srv := httptest.NewServer(host.handler())
	t.Cleanup(srv.Close)
	return NewAdapter(NewClient(srv.URL, nil), log.New(io.Discard))
}

func TestAcquire_BlocksUntilHostReady(t *testing.T) {
	host := &fakeHost{readyAfter: 2, state: PlayerState{DurationMS: 240000}}
	a := newTestAdapter(t, host)

	err := a.Acquire(context.Background(), "dQw4w9WgXcQ", provider.AcquireOptions{
		Autoplay: true,
		Volume:   0.6,
	})
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if !a.Ready() {
		t.Error("Ready() = false after successful acquire")
	}
	if got := a.TrackDuration(); got != 4*time.Minute {
		t.Errorf("TrackDuration() = %v, want 4m", got)
	}

	host.mu.Lock()
	defer host.mu.Unlock()
	if len(host.loads) != 1 {
		t.Fatalf("loads = %d, want 1", len(host.loads))
	}
	load := host.loads[0]
	if load.VideoID != "dQw4w9WgXcQ" || !load.Autoplay || load.Volume != 0.6 {
		t.Errorf("load = %+v, want video dQw4w9WgXcQ autoplay volume 0.6", load)
	}
	if host.polls < 3 {
		t.Errorf("state polls = %d, want at least 3 (readiness was delayed)", host.polls)
	}
}

func TestAcquire_HostErrorSurfaces(t *testing.T) {
	host := &fakeHost{failLoad: true}
	a := newTestAdapter(t, host)

	err := a.Acquire(context.Background(), "abc", provider.AcquireOptions{})
	if err == nil {
		t.Fatal("Acquire should fail when the host rejects the load")
	}
	if a.Ready() {
		t.Error("Ready() = true after failed acquire")
	}
}

func TestAcquire_UnreachableStateEndpointFails(t *testing.T) {
	host := &fakeHost{failState: true}
	a := newTestAdapter(t, host)

	done := make(chan error, 1)
	go func() {
		done <- a.Acquire(context.Background(), "abc", provider.AcquireOptions{})
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("Acquire should fail when the state endpoint keeps erroring")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Acquire still blocked against a host that always errors")
	}
	if a.Ready() {
		t.Error("Ready() = true after failed acquire")
	}
}

func TestAcquire_CancelledContextAborts(t *testing.T) {
	host := &fakeHost{readyAfter: 1 << 30} // never ready
	a := newTestAdapter(t, host)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := a.Acquire(ctx, "abc", provider.AcquireOptions{})
	if err == nil {
		t.Fatal("Acquire should fail when the context ends before readiness")
	}
	if a.Ready() {
		t.Error("Ready() = true after aborted acquire")
	}
}

func TestAcquire_SecondCallRejected(t *testing.T) {
	host := &fakeHost{}
	a := newTestAdapter(t, host)

	if err := a.Acquire(context.Background(), "abc", provider.AcquireOptions{}); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if err := a.Acquire(context.Background(), "def", provider.AcquireOptions{}); err != provider.ErrAlreadyAcquired {
		t.Errorf("second Acquire = %v, want ErrAlreadyAcquired", err)
	}
}

func TestRetarget_LoadsNewVideo(t *testing.T) {
	host := &fakeHost{state: PlayerState{DurationMS: 180000}}
	a := newTestAdapter(t, host)

	if err := a.Acquire(context.Background(), "abc", provider.AcquireOptions{Autoplay: true}); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if err := a.Retarget(context.Background(), "def", false); err != nil {
		t.Fatalf("Retarget failed: %v", err)
	}

	host.mu.Lock()
	defer host.mu.Unlock()
	if len(host.loads) != 2 || host.loads[1].VideoID != "def" {
		t.Errorf("loads = %+v, want second load of def", host.loads)
	}
}

func TestRetarget_RequiresAcquiredSession(t *testing.T) {
	host := &fakeHost{}
	a := newTestAdapter(t, host)

	if err := a.Retarget(context.Background(), "abc", true); err != provider.ErrNotReady {
		t.Errorf("Retarget before acquire = %v, want ErrNotReady", err)
	}
}

func TestRelease_DestroysPlayerOnce(t *testing.T) {
	host := &fakeHost{}
	a := newTestAdapter(t, host)

	if err := a.Acquire(context.Background(), "abc", provider.AcquireOptions{}); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	a.Release()
	a.Release()
	if a.Ready() {
		t.Error("Ready() = true after Release")
	}

	// Destroy runs off the caller's path.
	deadline := time.Now().Add(2 * time.Second)
	for {
		host.mu.Lock()
		destroys := 0
		for _, c := range host.calls {
			if c == "POST /player/destroy" {
				destroys++
			}
		}
		host.mu.Unlock()
		if destroys == 1 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("destroys = %d, want 1", destroys)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestTransportOps_NoopWhenUnready(t *testing.T) {
	host := &fakeHost{}
	a := newTestAdapter(t, host)

	a.Play()
	a.Pause()
	a.Seek(5 * time.Second)
	a.SetVolume(0.5)
	a.SetMuted(true)

	if got := a.CurrentTime(); got != 0 {
		t.Errorf("CurrentTime() = %v, want 0", got)
	}
	host.mu.Lock()
	defer host.mu.Unlock()
	for _, c := range host.calls {
		if c != "POST /player/state" && c != "GET /player/state" {
			t.Errorf("unexpected host call before acquire: %s", c)
		}
	}
}

func TestCurrentTime_ExtrapolatesWhilePlaying(t *testing.T) {
	host := &fakeHost{state: PlayerState{DurationMS: 180000}}
	a := newTestAdapter(t, host)

	if err := a.Acquire(context.Background(), "abc", provider.AcquireOptions{Autoplay: true}); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	a.Seek(20 * time.Second)
	got := a.CurrentTime()
	if got < 20*time.Second || got > 21*time.Second {
		t.Errorf("CurrentTime() = %v, want ~20s", got)
	}
}
