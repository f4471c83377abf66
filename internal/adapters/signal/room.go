package signal

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/roomchat/internal/core"
	"github.com/dkeye/roomchat/internal/domain"
)

// register binds event to a typed handler. A missing body decodes as the
// zero payload.
func register[Req any](ctl *SignalWSController, event core.EventType, h func(id domain.ConnID, req Req)) {
	if event == "" {
		panic("signal: empty event")
	}
	ctl.handlers[event] = func(id domain.ConnID, body json.RawMessage) error {
		var req Req
		if len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				return fmt.Errorf("bad %s payload: %w", event, err)
			}
		}
		h(id, req)
		return nil
	}
}

func (ctl *SignalWSController) registerHandlers() {
	register(ctl, core.EventEnterRoom, func(id domain.ConnID, p core.EnterRoomPayload) {
		ctl.Orch.EnterRoom(id, p.Name, p.Room)
	})
	register(ctl, core.EventMessage, func(id domain.ConnID, p core.MessagePayload) {
		ctl.Orch.Message(id, p.Name, p.Text)
	})
	register(ctl, core.EventActivity, func(id domain.ConnID, name string) {
		ctl.Orch.Activity(id, name)
	})
}
