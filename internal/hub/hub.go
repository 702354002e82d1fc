package hub

import (
	"context"
	"log/slog"
)

// Subscriber represents a single relay client.
// It contains the channel through which the Hub sends byte slices to the client.
type Subscriber struct {
	// ID identifies the subscriber in logs.
	ID string

	// Send is a buffered channel of outbound messages. The Hub sends messages
	// to this channel, and the client is responsible for reading from it.
	Send chan []byte
}

// NewSubscriber returns a subscriber with a send buffer of size buffer.
func NewSubscriber(id string, buffer int) *Subscriber {
	return &Subscriber{ID: id, Send: make(chan []byte, buffer)}
}

// Hub is a concurrent broadcast bus. It maintains the set of active
// subscribers and broadcasts messages to them.
type Hub struct {
	// Registered subscribers.
	subscribers map[*Subscriber]bool

	// Broadcast is the channel for inbound messages from any client.
	// Any component can send a message to this channel to have it broadcast
	// to all subscribers.
	Broadcast chan []byte

	// Register is a channel for new subscribers to register with the hub.
	Register chan *Subscriber

	// Unregister is a channel for subscribers to unregister from the hub.
	Unregister chan *Subscriber

	count chan chan int
	done  chan struct{}
}

// NewHub creates and returns a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		Broadcast:   make(chan []byte),
		Register:    make(chan *Subscriber),
		Unregister:  make(chan *Subscriber),
		count:       make(chan chan int),
		done:        make(chan struct{}),
		subscribers: make(map[*Subscriber]bool),
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} { return h.done }

// Subscribe registers s. It reports false when the hub has stopped.
func (h *Hub) Subscribe(s *Subscriber) bool {
	select {
	case h.Register <- s:
		return true
	case <-h.done:
		return false
	}
}

// Unsubscribe removes s and closes its Send channel.
func (h *Hub) Unsubscribe(s *Subscriber) {
	select {
	case h.Unregister <- s:
	case <-h.done:
	}
}

// Publish broadcasts message. It reports false when the hub has stopped.
func (h *Hub) Publish(message []byte) bool {
	select {
	case h.Broadcast <- message:
		return true
	case <-h.done:
		return false
	}
}

// Len returns the number of registered subscribers, or 0 once the hub has
// stopped.
func (h *Hub) Len() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// Run starts the Hub's message processing loop. It must be run in a separate
// goroutine and returns when ctx is done, closing every subscriber.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	defer func() {
		for subscriber := range h.subscribers {
			close(subscriber.Send)
			delete(h.subscribers, subscriber)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Hub stopped", "total_subscribers", len(h.subscribers))
			return

		case subscriber := <-h.Register:
			h.subscribers[subscriber] = true
			slog.Info("New subscriber registered", "id", subscriber.ID, "total_subscribers", len(h.subscribers))

		case subscriber := <-h.Unregister:
			if _, ok := h.subscribers[subscriber]; ok {
				delete(h.subscribers, subscriber)
				close(subscriber.Send)
				slog.Info("Subscriber unregistered", "id", subscriber.ID, "total_subscribers", len(h.subscribers))
			}

		case reply := <-h.count:
			reply <- len(h.subscribers)

		case message := <-h.Broadcast:
			slog.Debug("Broadcasting message", "recipient_count", len(h.subscribers))
			for subscriber := range h.subscribers {
				// Use a non-blocking send. If the subscriber's buffer is full,
				// it suggests the client is lagging or disconnected.
				select {
				case subscriber.Send <- message:
				default:
					close(subscriber.Send)
					delete(h.subscribers, subscriber)
					slog.Warn("Unregistering slow subscriber", "id", subscriber.ID, "total_subscribers", len(h.subscribers))
				}
			}
		}
	}
}
