// Package orch routes connection events to the presence store and fans the
// resulting notices out to unicast, room or global recipients.
package orch

import (
	"sync"
	"time"

	"github.com/dkeye/roomchat/internal/app"
	"github.com/dkeye/roomchat/internal/core"
	"github.com/dkeye/roomchat/internal/domain"
	"github.com/rs/zerolog/log"
)

// Orchestrator owns the presence store. Every exported handler runs under one
// lock, so an event's lookups, mutation and fan-out are atomic with respect
// to every other event.
type Orchestrator struct {
	Presence *app.Presence
	Conns    *app.Connections
	Policy   app.Policy
	// Now and Location stamp message times; nil means time.Now and time.Local.
	Now      func() time.Time
	Location *time.Location

	mu sync.Mutex
}

func (o *Orchestrator) now() time.Time {
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	loc := o.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

func (o *Orchestrator) systemMessage(text string) domain.Message {
	return domain.SystemMessage(text, o.now())
}

// unicast sends to a single connection.
func (o *Orchestrator) unicast(id domain.ConnID, t core.EventType, data any) {
	conn, ok := o.Conns.Get(id)
	if !ok {
		return
	}
	o.publish(core.ScopeUnicast, []app.Target{{ID: id, Conn: conn}}, t, data)
}

// toRoom sends to every member of room except skip; an empty skip excludes no one.
func (o *Orchestrator) toRoom(room domain.RoomName, skip domain.ConnID, t core.EventType, data any) {
	scope := core.ScopeRoom
	if skip != "" {
		scope = core.ScopeRoomExceptSelf
	}
	members := o.Presence.ListByRoom(room)
	targets := make([]app.Target, 0, len(members))
	for _, m := range members {
		if m.ID == skip {
			continue
		}
		if conn, ok := o.Conns.Get(m.ID); ok {
			targets = append(targets, app.Target{ID: m.ID, Conn: conn})
		}
	}
	o.publish(scope, targets, t, data)
}

// toAll sends to every live connection, in a room or not.
func (o *Orchestrator) toAll(t core.EventType, data any) {
	o.publish(core.ScopeGlobal, o.Conns.Snapshot(), t, data)
}

func (o *Orchestrator) publish(scope core.Scope, targets []app.Target, t core.EventType, data any) core.PublishResult {
	res := core.PublishResult{}
	if len(targets) == 0 {
		return res
	}
	frame, err := core.Encode(t, data)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("event", string(t)).Msg("encode failed")
		return res
	}
	for _, tg := range targets {
		if err := tg.Conn.TrySend(frame); err != nil {
			res.Dropped = append(res.Dropped, core.Dropped{ID: tg.ID, Err: err})
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "orch").Str("event", string(t)).Str("scope", string(scope)).
		Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	o.applyPolicy(targets, res.Dropped)
	return res
}

func (o *Orchestrator) applyPolicy(targets []app.Target, dropped []core.Dropped) {
	if o.Policy == nil || len(dropped) == 0 {
		return
	}
	for _, d := range dropped {
		action := o.Policy.OnBackPressure(d.ID, d.Err)
		if action != app.KickMember {
			continue
		}
		for _, tg := range targets {
			if tg.ID == d.ID {
				log.Warn().Str("module", "orch").Str("conn", string(d.ID)).Err(d.Err).Msg("kicking slow connection")
				// Close only; the transport reports the disconnect.
				tg.Conn.Close()
			}
		}
	}
}
