// Package analytics delivers playback events to the app's collector on a
// strictly best-effort basis. Delivery runs off the critical path of every
// state transition: Record never blocks, failures are logged and
// swallowed, and nothing is retried inline.
package analytics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/soulpulse/soulpulse/internal/provider"
)

// Action names a playback event kind.
type Action string

const (
	ActionOpen           Action = "open"
	ActionSwitchProvider Action = "switch_provider"
	ActionNext           Action = "next"
	ActionPrevious       Action = "previous"
)

// Event is one playback event. ID and At are stamped by the sink when
// left empty.
type Event struct {
	ID       string            `json:"id"`
	TrackID  string            `json:"track_id"`
	Provider provider.Provider `json:"provider"`
	Action   Action            `json:"action"`
	Context  string            `json:"context,omitempty"`
	At       time.Time         `json:"at"`
}

// Sink accepts playback events. Record must never block the caller.
type Sink interface {
	Record(Event)
}

// Nop discards all events. Used when analytics is unconfigured.
type Nop struct{}

func (Nop) Record(Event) {}

const (
	queueSize      = 64
	requestTimeout = 5 * time.Second
)

// Collector posts events as JSON to the app's collector endpoint from a
// single background worker. Events beyond the buffer or the rate budget
// are dropped and counted.
type Collector struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
	events  chan Event
	done    chan struct{}
	dropped atomic.Uint64
	log     *log.Logger

	mu     sync.RWMutex // guards closed against sends on events
	closed bool
}

// NewCollector creates a collector and starts its delivery worker.
// eventsPerSec bounds how many events may be submitted per second;
// zero or negative means no rate budget.
func NewCollector(url string, eventsPerSec float64, logger *log.Logger) *Collector {
	c := &Collector{
		url:    url,
		client: &http.Client{Timeout: requestTimeout},
		events: make(chan Event, queueSize),
		done:   make(chan struct{}),
		log:    logger,
	}
	if eventsPerSec > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(eventsPerSec), queueSize)
	}
	go c.run()
	return c
}

// Record queues an event for delivery. Never blocks and never panics:
// events beyond the rate budget, a full buffer, or a closed collector are
// dropped.
func (c *Collector) Record(e Event) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	if c.limiter != nil && !c.limiter.Allow() {
		c.dropped.Add(1)
		return
	}

	// The read lock is held across the send so Close cannot close the
	// channel between the flag check and the send.
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		c.dropped.Add(1)
		return
	}
	select {
	case c.events <- e:
	default:
		c.dropped.Add(1)
	}
}

// Dropped returns how many events were discarded without delivery.
func (c *Collector) Dropped() uint64 {
	return c.dropped.Load()
}

// Close stops the worker after draining queued events. Safe to call more
// than once; Record calls racing or arriving after Close are dropped.
func (c *Collector) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	close(c.events)
	<-c.done
}

func (c *Collector) run() {
	defer close(c.done)
	for e := range c.events {
		if err := c.post(e); err != nil {
			c.log.Debug("play event delivery failed", "action", e.Action, "err", err)
		}
	}
}

func (c *Collector) post(e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	resp, err := c.client.Post(c.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck // draining for connection reuse
	if resp.StatusCode >= 300 {
		return fmt.Errorf("collector returned %s", resp.Status)
	}
	return nil
}

// Verify implementations at compile time.
var (
	_ Sink = (*Collector)(nil)
	_ Sink = Nop{}
)
