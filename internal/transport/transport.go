// Package transport holds the playback clock that scripts drive and the set
// of objects currently playing on it.
package transport

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// State is the playback state of a Transport or a playing object.
type State string

const (
	Started State = "started"
	Stopped State = "stopped"
	Paused  State = "paused"
)

// DefaultBPM is the tempo a fresh Clock starts with.
const DefaultBPM = 120.0

// Transport is the shared playback clock.
type Transport interface {
	Start()
	Stop()
	// Cancel drops every scheduled event.
	Cancel()
	State() State
	SetBPM(bpm float64)
	BPM() float64
}

// Clock is an in-memory Transport. It tracks state, tempo and the number of
// scheduled events without producing any sound.
type Clock struct {
	mu        sync.Mutex
	state     State
	bpm       float64
	scheduled int
}

// NewClock returns a stopped Clock at DefaultBPM.
func NewClock() *Clock {
	return &Clock{state: Stopped, bpm: DefaultBPM}
}

func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Started
}

func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Stopped
}

func (c *Clock) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scheduled = 0
}

func (c *Clock) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Clock) SetBPM(bpm float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bpm = bpm
}

func (c *Clock) BPM() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bpm
}

// Schedule records one pending event and returns the new count.
func (c *Clock) Schedule() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scheduled++
	return c.scheduled
}

// Scheduled returns the number of pending events.
func (c *Clock) Scheduled() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scheduled
}

// Gate wraps a Transport with the single "transport access allowed" flag.
// Executed code turns the flag on or off before its body runs; while it is
// off Start and SetBPM are silently ignored.
type Gate struct {
	t       Transport
	allowed atomic.Bool
}

// NewGate returns a Gate over t with access disallowed.
func NewGate(t Transport) *Gate {
	return &Gate{t: t}
}

// Transport returns the wrapped transport.
func (g *Gate) Transport() Transport { return g.t }

// Allow sets the access flag.
func (g *Gate) Allow(allowed bool) { g.allowed.Store(allowed) }

// Allowed reports the access flag.
func (g *Gate) Allowed() bool { return g.allowed.Load() }

// Start starts the transport if access is allowed.
func (g *Gate) Start() {
	if !g.Allowed() {
		slog.Debug("Ignoring transport start without access")
		return
	}
	g.t.Start()
}

// SetBPM sets the tempo if access is allowed.
func (g *Gate) SetBPM(bpm float64) {
	if !g.Allowed() {
		slog.Debug("Ignoring tempo change without access", "bpm", bpm)
		return
	}
	g.t.SetBPM(bpm)
}
