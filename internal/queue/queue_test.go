package queue

import (
	"testing"

	"github.com/soulpulse/soulpulse/internal/provider"
)

func sampleTracks() []Track {
	return []Track{
		{ID: "t1", Provider: provider.Spotify, ProviderTrackID: "s1", Title: "One"},
		{ID: "t2", Provider: provider.YouTube, ProviderTrackID: "y2", Title: "Two"},
		{ID: "t3", Provider: provider.Spotify, ProviderTrackID: "s3", Title: "Three"},
	}
}

func TestNew_Empty(t *testing.T) {
	q := New()
	if !q.IsEmpty() {
		t.Error("new queue should be empty")
	}
	if q.Current() != nil {
		t.Error("Current() should be nil for empty queue")
	}
	if q.CurrentIndex() != -1 {
		t.Errorf("CurrentIndex() = %d, want -1", q.CurrentIndex())
	}
}

func TestNext_AdvancesUntilBoundary(t *testing.T) {
	q := New()
	q.Replace(sampleTracks()...)

	if tr := q.Next(); tr == nil || tr.ID != "t2" {
		t.Fatalf("Next() = %v, want t2", tr)
	}
	if tr := q.Next(); tr == nil || tr.ID != "t3" {
		t.Fatalf("Next() = %v, want t3", tr)
	}

	// At the boundary: no-op, position unchanged.
	if tr := q.Next(); tr != nil {
		t.Errorf("Next() at boundary = %v, want nil", tr)
	}
	if q.CurrentIndex() != 2 {
		t.Errorf("CurrentIndex() = %d, want 2 after boundary no-op", q.CurrentIndex())
	}
}

func TestPrevious_RetreatsUntilBoundary(t *testing.T) {
	q := New()
	q.Replace(sampleTracks()...)
	q.JumpTo(2)

	if tr := q.Previous(); tr == nil || tr.ID != "t2" {
		t.Fatalf("Previous() = %v, want t2", tr)
	}
	q.Previous()

	if tr := q.Previous(); tr != nil {
		t.Errorf("Previous() at boundary = %v, want nil", tr)
	}
	if q.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex() = %d, want 0", q.CurrentIndex())
	}
}

func TestNext_UnboundQueueIsNoop(t *testing.T) {
	q := New()
	if tr := q.Next(); tr != nil {
		t.Errorf("Next() on empty queue = %v, want nil", tr)
	}
	if tr := q.Previous(); tr != nil {
		t.Errorf("Previous() on empty queue = %v, want nil", tr)
	}
}

func TestJumpToID(t *testing.T) {
	q := New()
	q.Replace(sampleTracks()...)

	if tr := q.JumpToID("t3"); tr == nil || tr.ProviderTrackID != "s3" {
		t.Fatalf("JumpToID(t3) = %v, want s3", tr)
	}
	if tr := q.JumpToID("missing"); tr != nil {
		t.Errorf("JumpToID(missing) = %v, want nil", tr)
	}
	if q.CurrentIndex() != 2 {
		t.Errorf("CurrentIndex() = %d, want 2 (unchanged by failed jump)", q.CurrentIndex())
	}
}

func TestReplace_ResetsPosition(t *testing.T) {
	q := New()
	q.Replace(sampleTracks()...)
	q.JumpTo(2)

	first := q.Replace(Track{ID: "n1"}, Track{ID: "n2"})
	if first == nil || first.ID != "n1" {
		t.Fatalf("Replace() = %v, want n1", first)
	}
	if q.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex() = %d, want 0", q.CurrentIndex())
	}

	if tr := q.Replace(); tr != nil {
		t.Errorf("Replace() with no tracks = %v, want nil", tr)
	}
	if !q.IsEmpty() {
		t.Error("queue should be empty after Replace with no tracks")
	}
}

func TestIDForProvider(t *testing.T) {
	tr := Track{
		ID:              "t1",
		Provider:        provider.Spotify,
		ProviderTrackID: "s1",
		ProviderIDs:     map[provider.Provider]string{provider.YouTube: "y1"},
	}

	if got := tr.IDForProvider(provider.Spotify); got != "s1" {
		t.Errorf("IDForProvider(spotify) = %q, want s1", got)
	}
	if got := tr.IDForProvider(provider.YouTube); got != "y1" {
		t.Errorf("IDForProvider(youtube) = %q, want y1", got)
	}

	spotifyOnly := Track{ID: "t2", Provider: provider.Spotify, ProviderTrackID: "s2"}
	if got := spotifyOnly.IDForProvider(provider.YouTube); got != "" {
		t.Errorf("IDForProvider(youtube) = %q, want empty for unavailable backend", got)
	}
}

func TestTracks_ReturnsCopy(t *testing.T) {
	q := New()
	q.Replace(sampleTracks()...)

	tracks := q.Tracks()
	tracks[0].ID = "mutated"

	if q.Tracks()[0].ID != "t1" {
		t.Error("Tracks() must return a copy")
	}
}
