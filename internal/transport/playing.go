package transport

import (
	"log/slog"
	"sync"
)

// Stoppable is anything a script registers as playing: a loop, a sequence or
// a part.
type Stoppable interface {
	Stop()
	State() State
}

// PlayingSet tracks the objects registered by executed code so they can be
// stopped together.
type PlayingSet struct {
	mu      sync.Mutex
	t       Transport
	playing []Stoppable
}

// NewPlayingSet returns an empty set bound to t.
func NewPlayingSet(t Transport) *PlayingSet {
	return &PlayingSet{t: t}
}

// Register adds obj. Registering the same object twice is a no-op. The
// returned func removes obj again; callers hook it to the object's own stop
// notification.
func (p *PlayingSet) Register(obj Stoppable) (remove func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.indexOf(obj) < 0 {
		p.playing = append(p.playing, obj)
	}
	return func() { p.remove(obj) }
}

// Len returns the number of registered objects.
func (p *PlayingSet) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.playing)
}

// Clear forgets every registered object without stopping it.
func (p *PlayingSet) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = nil
}

// StopAll stops every registered object that is not already stopped and
// removes it from the set, then stops the transport. With cancelTransport the
// transport's scheduled events are cancelled as well.
func (p *PlayingSet) StopAll(cancelTransport bool) {
	p.mu.Lock()
	snapshot := append([]Stoppable(nil), p.playing...)
	p.mu.Unlock()

	stopped := 0
	for _, obj := range snapshot {
		if obj.State() == Stopped {
			continue
		}
		obj.Stop()
		p.remove(obj)
		stopped++
	}

	if p.t != nil && p.t.State() != Stopped {
		p.t.Stop()
		if cancelTransport {
			p.t.Cancel()
		}
	}

	slog.Debug("Stopped playing objects", "stopped", stopped, "cancel_transport", cancelTransport)
}

func (p *PlayingSet) remove(obj Stoppable) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i := p.indexOf(obj); i >= 0 {
		p.playing = append(p.playing[:i], p.playing[i+1:]...)
	}
}

func (p *PlayingSet) indexOf(obj Stoppable) int {
	for i, o := range p.playing {
		if o == obj {
			return i
		}
	}
	return -1
}
