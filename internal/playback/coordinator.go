package playback

import (
	"github.com/charmbracelet/log"

	"github.com/soulpulse/soulpulse/internal/provider"
)

// coordinator owns the single mount slot for native provider handles.
// Nothing else may attach, detach, or reach the active adapter: the store
// calls these methods under its own lock, which is what serializes the
// Releasing→Acquiring ordering and keeps at most one handle alive.
type coordinator struct {
	registry *provider.Registry
	log      *log.Logger

	mounted         provider.Adapter
	mountedProvider provider.Provider
}

func newCoordinator(registry *provider.Registry, logger *log.Logger) *coordinator {
	return &coordinator{registry: registry, log: logger}
}

// release detaches and releases the mounted adapter, if any. Backend
// teardown errors are the adapter's to log and swallow; release never
// fails and never blocks acquisition of the next handle.
func (c *coordinator) release() {
	if c.mounted == nil {
		return
	}
	c.log.Debug("releasing provider session", "provider", c.mountedProvider)
	c.mounted.Release()
	c.mounted = nil
	c.mountedProvider = provider.None
}

// mount constructs a fresh adapter for p and attaches it to the slot.
// The caller must have released the previous handle first; a second
// concurrent mount means the single-playback invariant was broken by new
// code, not by a runtime race, so it fails loudly.
func (c *coordinator) mount(p provider.Provider) (provider.Adapter, error) {
	if c.mounted != nil {
		panic("playback: adapter mounted while another is active (release first)")
	}
	a, err := c.registry.New(p)
	if err != nil {
		return nil, err
	}
	c.mounted = a
	c.mountedProvider = p
	c.log.Debug("mounted provider session", "provider", p)
	return a, nil
}

// adapter returns the mounted adapter, or nil.
func (c *coordinator) adapter() provider.Adapter {
	return c.mounted
}

// ready reports whether the mounted adapter has an acquired session.
func (c *coordinator) ready() bool {
	return c.mounted != nil && c.mounted.Ready()
}
