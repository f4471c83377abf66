package app

import (
	"errors"

	"github.com/dkeye/roomchat/internal/core"
	"github.com/dkeye/roomchat/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

func (a BackpressureAction) String() string {
	switch a {
	case KickMember:
		return "kick"
	case DropFrame:
		return "drop"
	default:
		return "none"
	}
}

// Policy decides what happens to a recipient after a failed delivery.
type Policy interface {
	OnBackPressure(id domain.ConnID, err error) BackpressureAction
}

// SimplePolicy kicks connections whose send buffer is full.
// Already closed connections are left to their own disconnect.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(_ domain.ConnID, err error) BackpressureAction {
	switch {
	case errors.Is(err, core.ErrBackpressure):
		return KickMember
	case errors.Is(err, core.ErrConnClosed):
		return NoAction
	default:
		return DropFrame
	}
}
