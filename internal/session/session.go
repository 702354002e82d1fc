// Package session ties the fragment registry, the execution gate, the
// transport and the collaborator feed together into one live-coding session.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nfrund/livetone/internal/feed"
	"github.com/nfrund/livetone/internal/pubsub"
	"github.com/nfrund/livetone/internal/script"
	"github.com/nfrund/livetone/internal/transport"
)

// MainFragment is the name of the user's own editable fragment.
const MainFragment = "main"

// CodeState summarizes the session for display.
type CodeState int

const (
	// StateError means the last attempt failed.
	StateError CodeState = iota
	// StateReady means nothing is playing.
	StateReady
	// StateUpdated means the main fragment changed since it started playing.
	StateUpdated
	// StatePlaying means the main fragment is playing as written.
	StatePlaying
)

func (s CodeState) String() string {
	switch s {
	case StateError:
		return "Error"
	case StateReady:
		return "Ready"
	case StateUpdated:
		return "Updated"
	case StatePlaying:
		return "Playing"
	default:
		return "Unknown"
	}
}

// Config holds a session's collaborators. Publisher may be nil.
type Config struct {
	Gate                  *script.Gate
	Registry              *script.Registry
	Playing               *transport.PlayingSet
	Publisher             pubsub.Publisher
	Source                string
	CancelTransportOnStop bool
}

// Session runs the main fragment together with every fragment received from
// the feed.
type Session struct {
	cfg Config

	mu           sync.Mutex
	nowPlaying   bool
	lastErr      error
	playedSource string
}

// New creates a session.
func New(cfg Config) *Session {
	if cfg.Source == "" {
		cfg.Source = "session"
	}
	return &Session{cfg: cfg}
}

// Fragments returns the main fragment followed by the received fragments in
// name order.
func (s *Session) Fragments() []script.Fragment {
	names := []string{MainFragment}
	for _, name := range s.cfg.Registry.List() {
		if feed.IsShared(name) {
			names = append(names, name)
		}
	}
	return s.cfg.Registry.Fragments(names...)
}

// Run executes the current fragments through the gate. Objects started by
// earlier runs keep playing until Stop.
func (s *Session) Run(ctx context.Context) error {
	main, err := s.cfg.Registry.Fragment(MainFragment)
	if err != nil {
		s.setError(err)
		return err
	}

	fragments := s.Fragments()
	names := make([]string, len(fragments))
	for i, f := range fragments {
		names[i] = f.Name
	}

	var bus script.API = script.APIFuncs{}
	if s.cfg.Publisher != nil {
		bus = pubsub.NewAPI(ctx, s.cfg.Publisher, s.cfg.Source, names...)
	}

	api := script.APIFuncs{
		Playing: func() {
			s.mu.Lock()
			s.nowPlaying = true
			s.playedSource = main.Source
			s.mu.Unlock()
			bus.NotifyPlaying()
		},
		Error: func(err error) {
			s.setError(err)
			bus.NotifyError(err)
		},
	}
	return s.cfg.Gate.Execute(ctx, fragments, api)
}

func (s *Session) setError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
}

// Stop stops everything registered as playing, then the transport, and
// resets the running state.
func (s *Session) Stop() {
	s.cfg.Playing.StopAll(s.cfg.CancelTransportOnStop)
	s.cfg.Playing.Clear()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowPlaying = false
	s.playedSource = ""
	slog.Info("Session stopped")
}

// Err returns the error of the last attempt, or nil.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// CodeState reports the session state.
func (s *Session) CodeState() CodeState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastErr != nil {
		return StateError
	}
	if !s.nowPlaying {
		return StateReady
	}
	if main, err := s.cfg.Registry.Fragment(MainFragment); err == nil && main.Source != s.playedSource {
		return StateUpdated
	}
	return StatePlaying
}

// Playing reports whether a run succeeded since the last Stop.
func (s *Session) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nowPlaying
}

// Rerun returns a change handler that runs the session again whenever a
// fragment changes. Received fragments only trigger a run while playing.
func (s *Session) Rerun(ctx context.Context) func(name string) {
	return func(name string) {
		if name != MainFragment && !s.Playing() {
			return
		}
		if err := s.Run(ctx); err != nil {
			slog.Warn("Re-run failed", "trigger", name, "error", err)
		}
	}
}

// Receive returns the feed handler for this session. Received code is stored
// as a read-only fragment and announced on the bus.
func (s *Session) Receive(ctx context.Context, onChange func(name string)) feed.ReceiveHandler {
	store := feed.ToRegistry(s.cfg.Registry, onChange)
	return func(msg feed.SharedCode) {
		store(msg)
		if s.cfg.Publisher == nil {
			return
		}
		event := pubsub.CodeEvent{ID: msg.ID, Tag: msg.Tag, Code: msg.Code}
		if err := pubsub.Publish(ctx, s.cfg.Publisher, pubsub.CodeReceived, msg.ID, event); err != nil {
			slog.Error("Failed to publish received code", "tag", msg.Tag, "error", err)
		}
	}
}
