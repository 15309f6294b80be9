// pkg/network/server.go
package network

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/opd-ai/go-clothsim/pkg/engine"
	"github.com/opd-ai/go-clothsim/pkg/event"
	"github.com/opd-ai/go-clothsim/pkg/logging"
	"github.com/opd-ai/go-clothsim/pkg/physics"
	"github.com/opd-ai/go-clothsim/pkg/validation"
)

// SimServer serves the cloth state over WebSocket and accepts collider
// commands from clients. Snapshots are broadcast at the configured
// update rate, independent of the simulation tick rate.
type SimServer struct {
	sim         *engine.Simulation
	logger      *logging.Logger
	upgrader    websocket.Upgrader
	httpServer  *http.Server
	clients     map[string]*serverClient
	clientsLock sync.RWMutex
	running     bool
	runningLock sync.Mutex
	updateRate  time.Duration
	maxClients  int
	validator   *validation.MessageValidator
	stop        chan struct{}
}

// serverClient is one connected viewer. The write mutex serializes
// concurrent writes, which gorilla/websocket connections do not allow.
type serverClient struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *serverClient) writeMessage(messageType MessageType, payload any) error {
	data, err := EncodeMessage(messageType, payload)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// NewSimServer creates a server for the given simulation.
func NewSimServer(sim *engine.Simulation, maxClients int) *SimServer {
	nc := sim.Config.Network
	return &SimServer{
		sim:    sim,
		logger: logging.NewLogger(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:    make(map[string]*serverClient),
		updateRate: time.Second / time.Duration(nc.UpdateRate),
		maxClients: maxClients,
		validator:  validation.NewMessageValidator(),
		stop:       make(chan struct{}),
	}
}

// Start begins serving on the given address and starts the broadcast
// loop. It returns once the listener is running.
func (s *SimServer) Start(address string) error {
	s.runningLock.Lock()
	defer s.runningLock.Unlock()
	if s.running {
		return fmt.Errorf("server already running")
	}
	s.running = true

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	s.httpServer = &http.Server{
		Addr:    address,
		Handler: mux,
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error(context.Background(), "server listen failed", err, "address", address)
		}
	}()
	go s.broadcastLoop()

	s.logger.Info(context.Background(), "simulation server started", "address", address)
	return nil
}

// Stop closes all client connections and shuts the listener down.
func (s *SimServer) Stop(ctx context.Context) error {
	s.runningLock.Lock()
	if !s.running {
		s.runningLock.Unlock()
		return nil
	}
	s.running = false
	close(s.stop)
	s.runningLock.Unlock()

	s.clientsLock.Lock()
	for _, client := range s.clients {
		client.conn.Close()
	}
	s.clients = make(map[string]*serverClient)
	s.clientsLock.Unlock()

	s.validator.Close()

	err := s.httpServer.Shutdown(ctx)
	s.logger.Info(ctx, "simulation server stopped")
	return err
}

// ClientCount returns the number of connected clients.
func (s *SimServer) ClientCount() int {
	s.clientsLock.RLock()
	defer s.clientsLock.RUnlock()
	return len(s.clients)
}

// handleWS upgrades a connection, registers the client and runs its
// read loop until the connection drops.
func (s *SimServer) handleWS(w http.ResponseWriter, r *http.Request) {
	ctx := logging.WithCorrelationID(r.Context(), "")

	s.clientsLock.RLock()
	full := len(s.clients) >= s.maxClients
	s.clientsLock.RUnlock()
	if full {
		s.logger.Warn(ctx, "rejecting connection, server full", "max_clients", s.maxClients)
		http.Error(w, "server full", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error(ctx, "websocket upgrade failed", err)
		return
	}

	client := &serverClient{
		id:   uuid.New().String(),
		conn: conn,
	}

	hello := HelloMessage{
		Dim:        s.sim.Config.Cloth.Dim,
		Spacing:    s.sim.Config.Cloth.Spacing,
		UpdateRate: s.sim.Config.Network.UpdateRate,
	}
	if err := client.writeMessage(Hello, hello); err != nil {
		s.logger.Error(ctx, "failed to send hello", err)
		conn.Close()
		return
	}

	s.clientsLock.Lock()
	s.clients[client.id] = client
	s.clientsLock.Unlock()

	s.sim.EventBus.Publish(&event.BaseEvent{EventType: event.ClientConnected, Source: client.id})
	s.logger.Info(ctx, "client connected", "client_id", client.id, "remote", conn.RemoteAddr().String())

	defer func() {
		s.clientsLock.Lock()
		delete(s.clients, client.id)
		s.clientsLock.Unlock()
		conn.Close()
		s.sim.EventBus.Publish(&event.BaseEvent{EventType: event.ClientDisconnected, Source: client.id})
		s.logger.Info(ctx, "client disconnected", "client_id", client.id)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn(ctx, "websocket read failed", "client_id", client.id, "error", err.Error())
			}
			return
		}
		s.handleMessage(ctx, client, data)
	}
}

// handleMessage validates and dispatches one inbound client message.
func (s *SimServer) handleMessage(ctx context.Context, client *serverClient, data []byte) {
	if err := s.validator.ValidateMessage(data, client.id); err != nil {
		client.writeMessage(ErrorNotice, ErrorMessage{Message: err.Error()})
		return
	}

	envelope, err := DecodeEnvelope(data)
	if err != nil {
		client.writeMessage(ErrorNotice, ErrorMessage{Message: err.Error()})
		return
	}

	switch envelope.Type {
	case AddCollider:
		var req AddColliderRequest
		if err := json.Unmarshal(envelope.Data, &req); err != nil {
			client.writeMessage(ErrorNotice, ErrorMessage{Message: err.Error()})
			return
		}
		id, err := s.addCollider(req)
		client.writeMessage(ColliderAck, ackFor(AddCollider, id, err))

	case MoveCollider:
		var req MoveColliderRequest
		if err := json.Unmarshal(envelope.Data, &req); err != nil {
			client.writeMessage(ErrorNotice, ErrorMessage{Message: err.Error()})
			return
		}
		err := s.moveCollider(req)
		client.writeMessage(ColliderAck, ackFor(MoveCollider, req.ID, err))

	case RemoveCollider:
		var req RemoveColliderRequest
		if err := json.Unmarshal(envelope.Data, &req); err != nil {
			client.writeMessage(ErrorNotice, ErrorMessage{Message: err.Error()})
			return
		}
		err := s.sim.RemoveCollider(req.ID)
		client.writeMessage(ColliderAck, ackFor(RemoveCollider, req.ID, err))

	default:
		s.logger.Warn(ctx, "unhandled message type", "client_id", client.id, "type", string(envelope.Type))
		client.writeMessage(ErrorNotice, ErrorMessage{
			Message: fmt.Sprintf("unhandled message type %q", envelope.Type),
		})
	}
}

// addCollider validates an add request and forwards it to the
// simulation.
func (s *SimServer) addCollider(req AddColliderRequest) (string, error) {
	name, err := validation.ValidateColliderName(req.Name)
	if err != nil {
		return "", err
	}
	if err := validation.ValidateRadius(req.Radius); err != nil {
		return "", err
	}
	if err := validation.ValidateCenter(req.Center); err != nil {
		return "", err
	}
	center := physics.Vec3{req.Center[0], req.Center[1], req.Center[2]}
	return s.sim.AddCollider(name, center, req.Radius)
}

// moveCollider validates a move request and forwards it to the
// simulation.
func (s *SimServer) moveCollider(req MoveColliderRequest) error {
	if err := validation.ValidateCenter(req.Center); err != nil {
		return err
	}
	center := physics.Vec3{req.Center[0], req.Center[1], req.Center[2]}
	return s.sim.MoveCollider(req.ID, center)
}

func ackFor(request MessageType, id string, err error) ColliderAckMessage {
	ack := ColliderAckMessage{Request: request, ID: id}
	if err != nil {
		ack.Error = err.Error()
	}
	return ack
}

// broadcastLoop sends the current state to every client at the update
// rate until the server stops.
func (s *SimServer) broadcastLoop() {
	ticker := time.NewTicker(s.updateRate)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.broadcastSnapshot()
		}
	}
}

// broadcastSnapshot captures the simulation state once and fans it out.
func (s *SimServer) broadcastSnapshot() {
	s.clientsLock.RLock()
	clients := make([]*serverClient, 0, len(s.clients))
	for _, client := range s.clients {
		clients = append(clients, client)
	}
	s.clientsLock.RUnlock()

	if len(clients) == 0 {
		return
	}

	snapshot := s.buildSnapshot()
	for _, client := range clients {
		if err := client.writeMessage(Snapshot, snapshot); err != nil {
			s.logger.Warn(context.Background(), "snapshot write failed, dropping client",
				"client_id", client.id, "error", err.Error())
			client.conn.Close()
		}
	}
}

func (s *SimServer) buildSnapshot() SnapshotMessage {
	tick, positions := s.sim.SnapshotState()

	message := SnapshotMessage{
		Tick:      tick,
		Positions: make([][3]float32, len(positions)),
	}
	for i, p := range positions {
		message.Positions[i] = [3]float32{p.X(), p.Y(), p.Z()}
	}

	for _, collider := range s.sim.Colliders.List() {
		message.Colliders = append(message.Colliders, ColliderState{
			ID:     collider.ID,
			Name:   collider.Name,
			Center: [3]float32{collider.Sphere.Center.X(), collider.Sphere.Center.Y(), collider.Sphere.Center.Z()},
			Radius: collider.Sphere.Radius,
		})
	}
	return message
}
