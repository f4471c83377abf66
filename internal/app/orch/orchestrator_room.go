package orch

import (
	"github.com/dkeye/roomchat/internal/core"
	"github.com/dkeye/roomchat/internal/domain"
	"github.com/rs/zerolog/log"
)

// OnConnect registers conn and greets it. Presence is untouched until the
// connection enters a room.
func (o *Orchestrator) OnConnect(id domain.ConnID, conn core.SignalConnection) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.Conns.Bind(id, conn)
	o.unicast(id, core.EventMessage, o.systemMessage(domain.WelcomeText(id)))
	log.Info().Str("module", "orch").Str("conn", string(id)).Msg("connected")
}

// EnterRoom moves id into room under name, leaving its previous room first.
func (o *Orchestrator) EnterRoom(id domain.ConnID, name string, room domain.RoomName) {
	o.mu.Lock()
	defer o.mu.Unlock()

	prev, hadPrev := o.Presence.Get(id)
	if hadPrev {
		o.toRoom(prev.Room, id, core.EventMessage, o.systemMessage(domain.LeftText(name)))
	}

	sess := o.Presence.Upsert(id, name, room)

	// Upsert already dropped the old entry, so this is the remaining roster.
	if hadPrev {
		o.toRoom(prev.Room, id, core.EventUserList, core.UserListPayload{Users: o.Presence.ListByRoom(prev.Room)})
		log.Info().Str("module", "orch").Str("conn", string(id)).Str("from_room", string(prev.Room)).Msg("left room")
	}

	o.unicast(id, core.EventMessage, o.systemMessage(domain.EnteredSelfText(sess.Room)))
	o.toRoom(sess.Room, id, core.EventMessage, o.systemMessage(domain.EnteredText(sess.Name)))
	o.toRoom(sess.Room, "", core.EventUserList, core.UserListPayload{Users: o.Presence.ListByRoom(sess.Room)})
	o.toAll(core.EventRoomList, core.RoomListPayload{Rooms: o.Presence.ActiveRooms()})

	log.Info().Str("module", "orch").Str("conn", string(id)).Str("room", string(sess.Room)).Msg("entered room")
}

// OnDisconnect drops id for good. Remaining room members are told only if
// the connection had entered a room.
func (o *Orchestrator) OnDisconnect(id domain.ConnID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	sess, ok := o.Presence.Get(id)
	o.Presence.Remove(id)
	o.Conns.Unbind(id)
	log.Info().Str("module", "orch").Str("conn", string(id)).Bool("had_session", ok).Msg("disconnected")
	if !ok {
		return
	}

	o.toRoom(sess.Room, "", core.EventMessage, o.systemMessage(domain.LeftText(sess.Name)))
	o.toRoom(sess.Room, "", core.EventUserList, core.UserListPayload{Users: o.Presence.ListByRoom(sess.Room)})
	o.toAll(core.EventRoomList, core.RoomListPayload{Rooms: o.Presence.ActiveRooms()})
}
