package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Event[T] pairs a topic name with the payload type published on it.
type Event[T any] struct {
	topicName   string
	description string
}

// NewEvent creates a typed event.
func NewEvent[T any](name, description string) Event[T] {
	return Event[T]{topicName: name, description: description}
}

// Name returns the topic name.
func (e Event[T]) Name() string { return e.topicName }

// Description returns what the topic carries.
func (e Event[T]) Description() string { return e.description }

// Publish sends a typed event. The compiler ensures 'payload' matches 'T'.
func Publish[T any](ctx context.Context, p Publisher, event Event[T], source string, payload T) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event.Name(), err)
	}
	return p.Publish(ctx, Message{
		Topic:   event.Name(),
		Source:  source,
		Payload: data,
	})
}

// Decode unmarshals msg's payload as the event's type.
func Decode[T any](event Event[T], msg Message) (T, error) {
	var payload T
	if msg.Topic != "" && msg.Topic != event.Name() {
		return payload, fmt.Errorf("message on %q is not a %s event", msg.Topic, event.Name())
	}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("unmarshal %s payload: %w", event.Name(), err)
	}
	return payload, nil
}

// PlayingEvent is published after code executed successfully.
type PlayingEvent struct {
	Fragments []string  `json:"fragments"`
	At        time.Time `json:"at"`
}

// ErrorEvent is published whenever the error slot changes. Cleared is set at
// the start of every attempt.
type ErrorEvent struct {
	Name    string    `json:"name,omitempty"`
	Message string    `json:"message,omitempty"`
	Cleared bool      `json:"cleared,omitempty"`
	At      time.Time `json:"at"`
}

// CodeEvent carries code received from a collaborator.
type CodeEvent struct {
	ID   string `json:"id"`
	Tag  string `json:"tag"`
	Code string `json:"code"`
}

var (
	ExecutionPlaying = NewEvent[PlayingEvent]("execution.playing", "Code executed and is playing")
	ExecutionError   = NewEvent[ErrorEvent]("execution.error", "The current execution error, or a clear")
	CodeReceived     = NewEvent[CodeEvent]("code.received", "Code shared by a collaborator")
)

// named matches errors that carry a script-visible error name.
type named interface {
	Name() string
}

// API publishes execution outcomes on the bus. It satisfies the callback
// pair the execution gate reports to.
type API struct {
	ctx       context.Context
	pub       Publisher
	source    string
	fragments []string
	now       func() time.Time
}

// NewAPI returns an API publishing on pub. fragments names what is being
// executed and is echoed in PlayingEvent.
func NewAPI(ctx context.Context, pub Publisher, source string, fragments ...string) *API {
	return &API{ctx: ctx, pub: pub, source: source, fragments: fragments, now: time.Now}
}

func (a *API) NotifyPlaying() {
	a.publish(Publish(a.ctx, a.pub, ExecutionPlaying, a.source, PlayingEvent{
		Fragments: a.fragments,
		At:        a.now(),
	}))
}

func (a *API) NotifyError(err error) {
	event := ErrorEvent{Cleared: err == nil, At: a.now()}
	if err != nil {
		event.Name = "Error"
		var n named
		if errors.As(err, &n) {
			event.Name = n.Name()
		}
		event.Message = err.Error()
	}
	a.publish(Publish(a.ctx, a.pub, ExecutionError, a.source, event))
}

func (a *API) publish(err error) {
	if err != nil {
		slog.Error("Failed to publish execution event", "source", a.source, "error", err)
	}
}
