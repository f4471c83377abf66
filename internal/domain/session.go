// Package domain contains entities without transport or lifecycle logic.
package domain

import "github.com/google/uuid"

// ShortIDLen is how many leading characters of a ConnID are shown to users.
const ShortIDLen = 5

// ConnID identifies one live transport connection.
type ConnID string

// NewConnID returns a fresh random connection id.
func NewConnID() ConnID {
	return ConnID(uuid.NewString())
}

// Short returns the first ShortIDLen characters of the id.
func (id ConnID) Short() string {
	r := []rune(string(id))
	if len(r) <= ShortIDLen {
		return string(id)
	}
	return string(r[:ShortIDLen])
}

// Session binds a connection to a display name and the room it is in.
// Name and Room are caller-supplied and never validated.
type Session struct {
	ID   ConnID   `json:"id"`
	Name string   `json:"name"`
	Room RoomName `json:"room"`
}
