package app

import (
	"sync"

	"github.com/dkeye/roomchat/internal/domain"
	"github.com/rs/zerolog/log"
)

// Presence is the authoritative store of sessions, keyed by connection id.
// Rooms are never stored; they are derived from the sessions on every read.
type Presence struct {
	mu       sync.RWMutex
	sessions []domain.Session
}

func NewPresence() *Presence {
	return &Presence{sessions: make([]domain.Session, 0)}
}

// Upsert replaces any session of id with a new one at the end of the store.
func (p *Presence) Upsert(id domain.ConnID, name string, room domain.RoomName) domain.Session {
	s := domain.Session{ID: id, Name: name, Room: room}

	p.mu.Lock()
	next := make([]domain.Session, 0, len(p.sessions)+1)
	for _, cur := range p.sessions {
		if cur.ID != id {
			next = append(next, cur)
		}
	}
	p.sessions = append(next, s)
	p.mu.Unlock()

	log.Info().Str("module", "app.presence").Str("conn", string(id)).Str("room", string(room)).Msg("session upserted")
	return s
}

func (p *Presence) Remove(id domain.ConnID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	next := make([]domain.Session, 0, len(p.sessions))
	for _, cur := range p.sessions {
		if cur.ID != id {
			next = append(next, cur)
		}
	}
	if len(next) != len(p.sessions) {
		log.Info().Str("module", "app.presence").Str("conn", string(id)).Msg("session removed")
	}
	p.sessions = next
}

func (p *Presence) Get(id domain.ConnID) (domain.Session, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, s := range p.sessions {
		if s.ID == id {
			return s, true
		}
	}
	return domain.Session{}, false
}

// ListByRoom returns the sessions in room in insertion order. Never nil.
func (p *Presence) ListByRoom(room domain.RoomName) []domain.Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]domain.Session, 0)
	for _, s := range p.sessions {
		if s.Room == room {
			out = append(out, s)
		}
	}
	return out
}

// ActiveRooms returns every room with at least one session, first seen first.
func (p *Presence) ActiveRooms() []domain.RoomName {
	p.mu.RLock()
	defer p.mu.RUnlock()
	seen := make(map[domain.RoomName]struct{}, len(p.sessions))
	out := make([]domain.RoomName, 0)
	for _, s := range p.sessions {
		if _, ok := seen[s.Room]; ok {
			continue
		}
		seen[s.Room] = struct{}{}
		out = append(out, s.Room)
	}
	return out
}

// RoomInfos is ActiveRooms with member counts.
func (p *Presence) RoomInfos() []domain.RoomInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	idx := make(map[domain.RoomName]int, len(p.sessions))
	out := make([]domain.RoomInfo, 0)
	for _, s := range p.sessions {
		if i, ok := idx[s.Room]; ok {
			out[i].Members++
			continue
		}
		idx[s.Room] = len(out)
		out = append(out, domain.RoomInfo{Name: s.Room, Members: 1})
	}
	return out
}

func (p *Presence) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.sessions)
}
