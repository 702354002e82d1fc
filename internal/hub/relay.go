package hub

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Outbound messages buffered per client before it is dropped as slow.
	sendBuffer = 256
	// Largest message accepted from a client.
	readLimit = 1 << 20
)

// Relay serves the collaborator feed: every text message a client sends is
// broadcast to all connected clients, the sender included.
type Relay struct {
	hub            *Hub
	originPatterns []string
}

// NewRelay returns a relay broadcasting through h. originPatterns is passed
// to websocket.AcceptOptions; an empty list accepts same-origin requests only.
func NewRelay(h *Hub, originPatterns ...string) *Relay {
	return &Relay{hub: h, originPatterns: originPatterns}
}

// ServeHTTP upgrades the request and pumps messages until either side closes.
func (rl *Relay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: rl.originPatterns,
	})
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	conn.SetReadLimit(readLimit)

	sub := NewSubscriber(uuid.NewString(), sendBuffer)
	if !rl.hub.Subscribe(sub) {
		conn.Close(websocket.StatusGoingAway, "relay stopped")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go rl.writePump(ctx, conn, sub)
	rl.readPump(ctx, conn, sub)
}

// readPump forwards every text message to the hub.
func (rl *Relay) readPump(ctx context.Context, conn *websocket.Conn, sub *Subscriber) {
	defer func() {
		rl.hub.Unsubscribe(sub)
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		typ, message, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				slog.Info("WebSocket closed normally by client", "id", sub.ID)
			} else if !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
				slog.Error("WebSocket read error", "id", sub.ID, "error", err)
			}
			return
		}
		if typ != websocket.MessageText {
			slog.Warn("Ignoring binary message", "id", sub.ID)
			continue
		}
		if !rl.hub.Publish(message) {
			return
		}
	}
}

// writePump sends hub messages to the client until its channel is closed.
func (rl *Relay) writePump(ctx context.Context, conn *websocket.Conn, sub *Subscriber) {
	for {
		select {
		case <-ctx.Done():
			return
		case message, ok := <-sub.Send:
			if !ok {
				// The hub dropped the subscriber; closing the connection ends the read pump.
				conn.Close(websocket.StatusGoingAway, "")
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				slog.Error("WebSocket write error", "id", sub.ID, "error", err)
				return
			}
		}
	}
}
