package domain

// RoomName identifies a room. A room exists only while some Session has it.
type RoomName string

// RoomInfo is a computed view of an active room.
type RoomInfo struct {
	Name    RoomName `json:"name"`
	Members int      `json:"members"`
}
