// pkg/network/client.go
package network

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/opd-ai/go-clothsim/pkg/config"
	"github.com/opd-ai/go-clothsim/pkg/logging"
)

// SnapshotHandler is called for every snapshot received from the
// server. It runs on the client's read goroutine, so it must not block.
type SnapshotHandler func(SnapshotMessage)

// SimClient is a viewer-side connection to a simulation server. It
// keeps the latest snapshot available for polling and optionally calls
// a handler for every snapshot.
type SimClient struct {
	url        string
	logger     *logging.Logger
	netService *NetworkService

	conn     *websocket.Conn
	writeMu  sync.Mutex
	stateMu  sync.RWMutex
	hello    HelloMessage
	latest   SnapshotMessage
	hasState bool
	handler  SnapshotHandler

	connected bool
	done      chan struct{}
}

// NewSimClient creates a client for the given websocket URL, for
// example "ws://localhost:8080/ws".
func NewSimClient(url string, envConfig *config.EnvironmentConfig) *SimClient {
	return &SimClient{
		url:        url,
		logger:     logging.NewLogger(),
		netService: NewNetworkService(envConfig),
	}
}

// OnSnapshot registers the snapshot handler. It must be called before
// Connect.
func (c *SimClient) OnSnapshot(handler SnapshotHandler) {
	c.handler = handler
}

// Connect dials the server through the circuit breaker, waits for the
// hello message and starts the read loop.
func (c *SimClient) Connect(ctx context.Context) error {
	err := c.netService.ExecuteWithRetry(ctx, func() error {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
		if err != nil {
			return fmt.Errorf("failed to dial %s: %w", c.url, err)
		}
		c.conn = conn
		return nil
	})
	if err != nil {
		return err
	}

	// The server sends the hello before anything else.
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		c.conn.Close()
		return fmt.Errorf("failed to read hello: %w", err)
	}
	envelope, err := DecodeEnvelope(data)
	if err != nil {
		c.conn.Close()
		return err
	}
	if envelope.Type != Hello {
		c.conn.Close()
		return fmt.Errorf("expected hello, got %q", envelope.Type)
	}
	if err := json.Unmarshal(envelope.Data, &c.hello); err != nil {
		c.conn.Close()
		return fmt.Errorf("failed to parse hello: %w", err)
	}

	c.connected = true
	c.done = make(chan struct{})
	go c.readLoop()

	c.logger.Info(ctx, "connected to simulation server",
		"url", c.url,
		"dim", c.hello.Dim,
		"update_rate", c.hello.UpdateRate,
	)
	return nil
}

// Hello returns the handshake parameters received on connect.
func (c *SimClient) Hello() HelloMessage {
	return c.hello
}

// Connected reports whether the read loop is still running.
func (c *SimClient) Connected() bool {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.connected
}

// Latest returns the most recent snapshot, if any has arrived yet.
func (c *SimClient) Latest() (SnapshotMessage, bool) {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.latest, c.hasState
}

// Close tears the connection down and waits for the read loop to exit.
func (c *SimClient) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	if c.done != nil {
		<-c.done
	}
	return err
}

// RequestAddCollider asks the server to insert a sphere obstacle.
func (c *SimClient) RequestAddCollider(name string, center [3]float32, radius float32) error {
	return c.send(AddCollider, AddColliderRequest{Name: name, Center: center, Radius: radius})
}

// RequestMoveCollider repositions an obstacle by ID.
func (c *SimClient) RequestMoveCollider(id string, center [3]float32) error {
	return c.send(MoveCollider, MoveColliderRequest{ID: id, Center: center})
}

// RequestRemoveCollider deletes an obstacle by ID.
func (c *SimClient) RequestRemoveCollider(id string) error {
	return c.send(RemoveCollider, RemoveColliderRequest{ID: id})
}

func (c *SimClient) send(messageType MessageType, payload any) error {
	if c.conn == nil {
		return fmt.Errorf("client not connected")
	}
	data, err := EncodeMessage(messageType, payload)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// readLoop consumes server messages until the connection drops.
func (c *SimClient) readLoop() {
	defer func() {
		c.stateMu.Lock()
		c.connected = false
		c.stateMu.Unlock()
		close(c.done)
	}()

	ctx := context.Background()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn(ctx, "connection lost", "error", err.Error())
			}
			return
		}

		envelope, err := DecodeEnvelope(data)
		if err != nil {
			c.logger.Warn(ctx, "dropping malformed message", "error", err.Error())
			continue
		}

		switch envelope.Type {
		case Snapshot:
			var snapshot SnapshotMessage
			if err := json.Unmarshal(envelope.Data, &snapshot); err != nil {
				c.logger.Warn(ctx, "dropping malformed snapshot", "error", err.Error())
				continue
			}
			c.stateMu.Lock()
			c.latest = snapshot
			c.hasState = true
			c.stateMu.Unlock()
			if c.handler != nil {
				c.handler(snapshot)
			}

		case ColliderAck:
			var ack ColliderAckMessage
			if err := json.Unmarshal(envelope.Data, &ack); err != nil {
				continue
			}
			if ack.Error != "" {
				c.logger.Warn(ctx, "collider request rejected",
					"request", string(ack.Request), "error", ack.Error)
			}

		case ErrorNotice:
			var notice ErrorMessage
			if err := json.Unmarshal(envelope.Data, &notice); err != nil {
				continue
			}
			c.logger.Warn(ctx, "server reported error", "message", notice.Message)

		default:
			c.logger.Debug(ctx, "ignoring message", "type", string(envelope.Type))
		}
	}
}
