// Package feed connects to a collaborator relay and exchanges shared code.
//
// Every message on the relay is a JSON encoded SharedCode. Code received from
// other collaborators becomes a read-only fragment that runs alongside the
// user's own script but cannot start the transport.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/coder/websocket"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrDisconnected is returned by Send, Share and Close while the client is
// not connected.
var ErrDisconnected = errors.New("feed: disconnected")

// ConnectionState is the state of the relay connection.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
)

func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting"
	case Connected:
		return "Connected"
	default:
		return "Unknown"
	}
}

// SharedCode is the message exchanged on the relay.
type SharedCode struct {
	ID   string `json:"id" validate:"required"`
	Tag  string `json:"tag" validate:"required"`
	Code string `json:"code"`
}

// StateHandler is called on every connection state change. asError is set
// when the change was caused by a failure rather than a requested close.
type StateHandler func(state ConnectionState, asError bool)

// ReceiveHandler is called for every message from another collaborator.
type ReceiveHandler func(SharedCode)

var validate = validator.New()

// Client is a relay connection. The zero value is not usable; use NewClient.
type Client struct {
	url     string
	id      string
	onState StateHandler
	logger  *slog.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	state  ConnectionState
	cancel context.CancelFunc
	done   chan struct{}
}

// NewClient returns a disconnected client for url. onState may be nil.
func NewClient(url string, onState StateHandler) *Client {
	if onState == nil {
		onState = func(ConnectionState, bool) {}
	}
	id := uuid.NewString()
	return &Client{
		url:     url,
		id:      id,
		onState: onState,
		logger:  slog.Default().With("component", "feed", "client_id", id),
	}
}

// ID identifies this client in every message it sends.
func (c *Client) ID() string { return c.id }

// Connected reports whether the client is connected.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == Connected
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Open dials the relay and starts delivering messages to onReceive. It
// returns once the connection is established or has failed.
func (c *Client) Open(ctx context.Context, onReceive ReceiveHandler) error {
	c.mu.Lock()
	if c.state != Disconnected {
		c.mu.Unlock()
		return fmt.Errorf("feed: already %s", c.state)
	}
	c.state = Connecting
	c.mu.Unlock()
	c.onState(Connecting, false)

	conn, _, err := websocket.Dial(ctx, c.url, nil)
	if err != nil {
		c.setState(Disconnected, true)
		return fmt.Errorf("feed: dial %s: %w", c.url, err)
	}

	readCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.mu.Lock()
	c.conn = conn
	c.cancel = cancel
	c.done = done
	c.state = Connected
	c.mu.Unlock()
	c.onState(Connected, false)
	c.logger.Info("Connected to feed", "url", c.url)

	go c.readLoop(readCtx, conn, done, onReceive)
	return nil
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, done chan struct{}, onReceive ReceiveHandler) {
	defer close(done)
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			c.disconnected(conn, err)
			return
		}

		var msg SharedCode
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("Ignoring malformed feed message", "error", err)
			continue
		}
		if err := validate.Struct(msg); err != nil {
			c.logger.Warn("Ignoring invalid feed message", "error", err)
			continue
		}
		if msg.ID == c.id {
			continue
		}
		onReceive(msg)
	}
}

// disconnected handles the end of the read loop. A close requested through
// Close has already moved the state and is not reported again.
func (c *Client) disconnected(conn *websocket.Conn, err error) {
	c.mu.Lock()
	if c.conn != conn || c.state == Disconnected {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.state = Disconnected
	c.mu.Unlock()

	status := websocket.CloseStatus(err)
	asError := status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !errors.Is(err, io.EOF)
	if asError {
		c.logger.Error("Feed connection lost", "error", err)
	} else {
		c.logger.Info("Feed connection closed by peer")
	}
	c.onState(Disconnected, asError)
}

func (c *Client) setState(s ConnectionState, asError bool) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.onState(s, asError)
}

// Send writes msg to the relay.
func (c *Client) Send(ctx context.Context, msg SharedCode) error {
	c.mu.Lock()
	conn, state := c.conn, c.state
	c.mu.Unlock()
	if conn == nil || state != Connected {
		return ErrDisconnected
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("feed: marshal: %w", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("feed: write: %w", err)
	}
	return nil
}

// Share sends code under tag, signed with this client's id.
func (c *Client) Share(ctx context.Context, tag, code string) error {
	msg := SharedCode{ID: c.id, Tag: tag, Code: code}
	if err := validate.Struct(msg); err != nil {
		return fmt.Errorf("feed: invalid share: %w", err)
	}
	return c.Send(ctx, msg)
}

// Close closes the connection and waits for the read loop to exit.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.conn == nil || c.state != Connected {
		c.mu.Unlock()
		return ErrDisconnected
	}
	conn, cancel, done := c.conn, c.cancel, c.done
	c.conn = nil
	c.state = Disconnected
	c.mu.Unlock()

	err := conn.Close(websocket.StatusNormalClosure, "")
	cancel()
	<-done
	c.onState(Disconnected, false)
	c.logger.Info("Disconnected from feed")

	if err != nil && websocket.CloseStatus(err) == -1 {
		return fmt.Errorf("feed: close: %w", err)
	}
	return nil
}
