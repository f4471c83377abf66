package http

import (
	"net/http"

	"github.com/dkeye/roomchat/internal/app"
	"github.com/dkeye/roomchat/internal/domain"
	"github.com/gin-gonic/gin"
)

type RoomsResponse struct {
	Rooms []domain.RoomInfo `json:"rooms"`
}

type roomsHandler struct {
	presence *app.Presence
}

func (h roomsHandler) list(c *gin.Context) {
	c.JSON(http.StatusOK, RoomsResponse{Rooms: h.presence.RoomInfos()})
}
