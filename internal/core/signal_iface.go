package core

import "errors"

// Frame is one encoded outbound event.
type Frame []byte

var (
	// ErrBackpressure means the connection's send buffer is full.
	ErrBackpressure = errors.New("backpressure")
	// ErrConnClosed means the connection no longer accepts frames.
	ErrConnClosed = errors.New("connection closed")
)

// SignalConnection abstracts the messaging transport of one client.
// Owned by the adapter; the adapter must Close() it.
// TrySend never blocks.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
