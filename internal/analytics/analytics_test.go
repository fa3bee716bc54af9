package analytics

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/soulpulse/soulpulse/internal/provider"
)

func TestCollector_DeliversEvent(t *testing.T) {
	received := make(chan Event, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var e Event
		if err := json.Unmarshal(body, &e); err != nil {
			t.Errorf("bad event payload: %v", err)
		}
		received <- e
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewCollector(srv.URL, 0, log.New(io.Discard))
	c.Record(Event{
		TrackID:  "t1",
		Provider: provider.Spotify,
		Action:   ActionOpen,
		Context:  "feed",
	})
	c.Close()

	select {
	case e := <-received:
		if e.TrackID != "t1" {
			t.Errorf("TrackID = %q, want t1", e.TrackID)
		}
		if e.Action != ActionOpen {
			t.Errorf("Action = %q, want open", e.Action)
		}
		if e.ID == "" {
			t.Error("event ID should be stamped")
		}
		if e.At.IsZero() {
			t.Error("event timestamp should be stamped")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event never delivered")
	}
}

func TestCollector_DeliveryFailureIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewCollector(srv.URL, 0, log.New(io.Discard))
	c.Record(Event{TrackID: "t1", Action: ActionOpen})
	c.Close() // must not hang or panic
}

func TestCollector_RateBudgetDrops(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	// Budget of one event: burst is clamped to queueSize but refill is
	// 1/s, so a burst beyond queueSize drops.
	c := NewCollector(srv.URL, 1, log.New(io.Discard))
	for range queueSize * 2 {
		c.Record(Event{TrackID: "t", Action: ActionNext})
	}
	if c.Dropped() == 0 {
		t.Error("expected events beyond the rate budget to be dropped")
	}
	c.Close()
}

func TestCollector_RecordAfterCloseIsDropped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewCollector(srv.URL, 0, log.New(io.Discard))
	c.Close()

	c.Record(Event{TrackID: "t1", Action: ActionOpen}) // must not panic
	if c.Dropped() == 0 {
		t.Error("expected the late event to be dropped")
	}
	c.Close() // second close is a no-op
}

func TestNop_Record(t *testing.T) {
	var s Sink = Nop{}
	s.Record(Event{TrackID: "t1"}) // must not panic
}
