package core

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/roomchat/internal/domain"
)

// EventType is the "type" field of every websocket frame.
type EventType string

const (
	EventEnterRoom EventType = "enterRoom"
	EventMessage   EventType = "message"
	EventActivity  EventType = "activity"
	EventUserList  EventType = "userList"
	EventRoomList  EventType = "roomList"
)

// Envelope wraps every frame in both directions.
type Envelope struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// EnterRoomPayload is the body of an inbound enterRoom.
type EnterRoomPayload struct {
	Name string          `json:"name"`
	Room domain.RoomName `json:"room"`
}

// MessagePayload is the body of an inbound message.
type MessagePayload struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// UserListPayload is a room roster.
type UserListPayload struct {
	Users []domain.Session `json:"users"`
}

// RoomListPayload lists the active rooms.
type RoomListPayload struct {
	Rooms []domain.RoomName `json:"rooms"`
}

// Encode marshals data into an envelope of type t.
func Encode(t EventType, data any) (Frame, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s body: %w", t, err)
	}
	b, err := json.Marshal(Envelope{Type: t, Data: body})
	if err != nil {
		return nil, fmt.Errorf("encode %s envelope: %w", t, err)
	}
	return Frame(b), nil
}

// Decode splits a raw frame into its envelope.
func Decode(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}
