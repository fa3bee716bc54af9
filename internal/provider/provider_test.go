package provider

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestProvider_String(t *testing.T) {
	if None.String() != "none" {
		t.Errorf("None.String() = %q, want none", None.String())
	}
	if Spotify.String() != "spotify" {
		t.Errorf("Spotify.String() = %q, want spotify", Spotify.String())
	}
	if YouTube.String() != "youtube" {
		t.Errorf("YouTube.String() = %q, want youtube", YouTube.String())
	}
}

func TestProvider_Valid(t *testing.T) {
	if None.Valid() {
		t.Error("None.Valid() = true, want false")
	}
	if !Spotify.Valid() || !YouTube.Valid() {
		t.Error("known providers should be valid")
	}
	if Provider("soundcloud").Valid() {
		t.Error("unknown provider should not be valid")
	}
}

func TestRegistry_New(t *testing.T) {
	r := NewRegistry()
	r.Register(Spotify, func() Adapter { return NewMock(Spotify) })

	a, err := r.New(Spotify)
	if err != nil {
		t.Fatalf("New(Spotify) error: %v", err)
	}
	if a.Provider() != Spotify {
		t.Errorf("Provider() = %v, want Spotify", a.Provider())
	}

	if _, err := r.New(YouTube); err == nil {
		t.Error("New(YouTube) should fail with no factory registered")
	}
}

func TestRegistry_Supports(t *testing.T) {
	r := NewRegistry()
	if r.Supports(Spotify) {
		t.Error("empty registry should not support Spotify")
	}
	r.Register(Spotify, func() Adapter { return NewMock(Spotify) })
	if !r.Supports(Spotify) {
		t.Error("Supports(Spotify) = false after Register")
	}
}

func TestMock_AcquireTwiceFails(t *testing.T) {
	m := NewMock(Spotify)
	if err := m.Acquire(context.Background(), "a", AcquireOptions{}); err != nil {
		t.Fatalf("first Acquire error: %v", err)
	}
	err := m.Acquire(context.Background(), "b", AcquireOptions{})
	if !errors.Is(err, ErrAlreadyAcquired) {
		t.Errorf("second Acquire error = %v, want ErrAlreadyAcquired", err)
	}
}

func TestMock_ReleaseIdempotent(t *testing.T) {
	m := NewMock(YouTube)
	if err := m.Acquire(context.Background(), "y1", AcquireOptions{Autoplay: true}); err != nil {
		t.Fatalf("Acquire error: %v", err)
	}
	m.Release()
	m.Release()
	if m.ReleaseCalls() != 2 {
		t.Errorf("ReleaseCalls = %d, want 2", m.ReleaseCalls())
	}
	if m.Ready() {
		t.Error("Ready() = true after Release")
	}
}

func TestMock_TransportNoopWhenNotReady(t *testing.T) {
	m := NewMock(Spotify)
	m.Play()
	m.Seek(10 * time.Second)
	if m.Playing() {
		t.Error("Play before Acquire should be a no-op")
	}
	if len(m.SeekCalls()) != 0 {
		t.Error("Seek before Acquire should be a no-op")
	}
}

func TestMock_RetargetKeepsSession(t *testing.T) {
	m := NewMock(Spotify)
	if err := m.Acquire(context.Background(), "s1", AcquireOptions{Autoplay: true}); err != nil {
		t.Fatalf("Acquire error: %v", err)
	}
	if err := m.Retarget(context.Background(), "s2", true); err != nil {
		t.Fatalf("Retarget error: %v", err)
	}
	if m.ReleaseCalls() != 0 {
		t.Error("Retarget must not release the native handle")
	}
	if got := m.RetargetCalls(); len(got) != 1 || got[0] != "s2" {
		t.Errorf("RetargetCalls = %v, want [s2]", got)
	}
}
