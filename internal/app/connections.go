package app

import (
	"sync"

	"github.com/dkeye/roomchat/internal/core"
	"github.com/dkeye/roomchat/internal/domain"
	"github.com/rs/zerolog/log"
)

// Target is one addressable connection.
type Target struct {
	ID   domain.ConnID
	Conn core.SignalConnection
}

// Connections tracks every live connection, whether or not it joined a room.
type Connections struct {
	mu    sync.RWMutex
	conns map[domain.ConnID]core.SignalConnection
}

func NewConnections() *Connections {
	return &Connections{conns: make(map[domain.ConnID]core.SignalConnection)}
}

func (c *Connections) Bind(id domain.ConnID, conn core.SignalConnection) {
	c.mu.Lock()
	c.conns[id] = conn
	n := len(c.conns)
	c.mu.Unlock()
	log.Info().Str("module", "app.connections").Str("conn", string(id)).Int("total", n).Msg("bound connection")
}

func (c *Connections) Unbind(id domain.ConnID) {
	c.mu.Lock()
	_, ok := c.conns[id]
	delete(c.conns, id)
	n := len(c.conns)
	c.mu.Unlock()
	if ok {
		log.Info().Str("module", "app.connections").Str("conn", string(id)).Int("total", n).Msg("unbound connection")
	}
}

func (c *Connections) Get(id domain.ConnID) (core.SignalConnection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	conn, ok := c.conns[id]
	return conn, ok
}

// Snapshot copies the current connections so fan-out happens outside the lock.
func (c *Connections) Snapshot() []Target {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Target, 0, len(c.conns))
	for id, conn := range c.conns {
		out = append(out, Target{ID: id, Conn: conn})
	}
	return out
}

func (c *Connections) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.conns)
}
