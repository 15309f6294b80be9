// pkg/network/messages.go
package network

import (
	"encoding/json"
	"fmt"
)

// MessageType defines the type of network message
type MessageType string

const (
	Hello          MessageType = "hello"
	Snapshot       MessageType = "snapshot"
	AddCollider    MessageType = "add_collider"
	MoveCollider   MessageType = "move_collider"
	RemoveCollider MessageType = "remove_collider"
	ColliderAck    MessageType = "collider_ack"
	ErrorNotice    MessageType = "error"
)

// Envelope wraps every message on the wire with its type tag.
type Envelope struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// HelloMessage is sent once per connection so the client can size its
// buffers before the first snapshot arrives.
type HelloMessage struct {
	Dim        int     `json:"dim"`
	Spacing    float32 `json:"spacing"`
	UpdateRate int     `json:"updateRate"`
}

// ColliderState describes one obstacle inside a snapshot.
type ColliderState struct {
	ID     string     `json:"id"`
	Name   string     `json:"name,omitempty"`
	Center [3]float32 `json:"center"`
	Radius float32    `json:"radius"`
}

// SnapshotMessage carries the full cloth state at one tick. Positions
// are indexed linearly, row-major over the node grid.
type SnapshotMessage struct {
	Tick      uint64          `json:"tick"`
	Positions [][3]float32    `json:"positions"`
	Colliders []ColliderState `json:"colliders,omitempty"`
}

// AddColliderRequest asks the server to insert a new sphere obstacle.
type AddColliderRequest struct {
	Name   string     `json:"name,omitempty"`
	Center [3]float32 `json:"center"`
	Radius float32    `json:"radius"`
}

// MoveColliderRequest repositions an existing obstacle.
type MoveColliderRequest struct {
	ID     string     `json:"id"`
	Center [3]float32 `json:"center"`
}

// RemoveColliderRequest deletes an obstacle.
type RemoveColliderRequest struct {
	ID string `json:"id"`
}

// ColliderAckMessage answers a collider request. Error is empty on
// success; on AddCollider the ID of the new obstacle is filled in.
type ColliderAckMessage struct {
	Request MessageType `json:"request"`
	ID      string      `json:"id,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ErrorMessage reports a protocol-level failure to the client.
type ErrorMessage struct {
	Message string `json:"message"`
}

// EncodeMessage wraps a payload in an envelope and serializes it.
func EncodeMessage(messageType MessageType, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", messageType, err)
	}
	return json.Marshal(Envelope{Type: messageType, Data: data})
}

// DecodeEnvelope parses the outer envelope of a wire message.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse message envelope: %w", err)
	}
	if envelope.Type == "" {
		return nil, fmt.Errorf("message has no type tag")
	}
	return &envelope, nil
}
