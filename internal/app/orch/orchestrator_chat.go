package orch

import (
	"github.com/dkeye/roomchat/internal/core"
	"github.com/dkeye/roomchat/internal/domain"
)

// Message relays text to everyone in the sender's room, sender included.
// Dropped when the sender has not entered a room.
func (o *Orchestrator) Message(id domain.ConnID, name, text string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	sess, ok := o.Presence.Get(id)
	if !ok {
		return
	}
	o.toRoom(sess.Room, "", core.EventMessage, domain.NewMessage(name, text, o.now()))
}

// Activity tells the sender's room mates that name is typing.
func (o *Orchestrator) Activity(id domain.ConnID, name string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	sess, ok := o.Presence.Get(id)
	if !ok {
		return
	}
	o.toRoom(sess.Room, id, core.EventActivity, name)
}
