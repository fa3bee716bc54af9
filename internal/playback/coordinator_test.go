package playback

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/soulpulse/soulpulse/internal/provider"
)

func newTestCoordinator() *coordinator {
	reg := provider.NewRegistry()
	reg.Register(provider.Spotify, func() provider.Adapter { return provider.NewMock(provider.Spotify) })
	reg.Register(provider.YouTube, func() provider.Adapter { return provider.NewMock(provider.YouTube) })
	return newCoordinator(reg, log.New(io.Discard))
}

func TestCoordinator_MountRelease(t *testing.T) {
	c := newTestCoordinator()

	if c.adapter() != nil {
		t.Error("fresh coordinator should have no mounted adapter")
	}

	a, err := c.mount(provider.Spotify)
	if err != nil {
		t.Fatalf("mount error: %v", err)
	}
	if c.adapter() != a {
		t.Error("adapter() should return the mounted adapter")
	}
	if c.ready() {
		t.Error("ready() = true before acquisition")
	}

	c.release()
	if c.adapter() != nil {
		t.Error("release should empty the slot")
	}
	if !a.(*provider.Mock).Released() {
		t.Error("mounted adapter should be released")
	}
}

func TestCoordinator_ReleaseIdempotent(t *testing.T) {
	c := newTestCoordinator()
	c.release() // empty slot, no panic

	a, _ := c.mount(provider.YouTube)
	c.release()
	c.release()
	if a.(*provider.Mock).ReleaseCalls() != 1 {
		t.Errorf("ReleaseCalls = %d, want 1", a.(*provider.Mock).ReleaseCalls())
	}
}

func TestCoordinator_DoubleMountPanics(t *testing.T) {
	c := newTestCoordinator()
	if _, err := c.mount(provider.Spotify); err != nil {
		t.Fatalf("mount error: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("second mount without release should panic")
		}
	}()
	c.mount(provider.YouTube) //nolint:errcheck
}

func TestCoordinator_MountUnknownProvider(t *testing.T) {
	c := newTestCoordinator()
	if _, err := c.mount(provider.Provider("tidal")); err == nil {
		t.Error("mount of unregistered provider should fail")
	}
	if c.adapter() != nil {
		t.Error("failed mount must not occupy the slot")
	}
}
