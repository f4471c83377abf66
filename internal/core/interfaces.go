package core

import "github.com/dkeye/roomchat/internal/domain"

// Scope names the recipient set of an outbound event.
type Scope string

const (
	ScopeUnicast        Scope = "unicast"
	ScopeRoom           Scope = "room"
	ScopeRoomExceptSelf Scope = "room_except_self"
	ScopeGlobal         Scope = "global"
)

// PublishResult reports delivery stats of one fan-out.
type PublishResult struct {
	SendTo  int
	Dropped []Dropped
}

// Dropped is a recipient whose TrySend failed.
type Dropped struct {
	ID  domain.ConnID
	Err error
}
