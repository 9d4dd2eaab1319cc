package handlers

import (
	"log/slog"
	"net/http"

	"github.com/coachkit/roster-system/notify"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: сверять Origin со списком доверенных доменов фронтенда.
		return true
	},
}

type WebSocketHandler struct {
	hub *notify.Hub
}

func NewWebSocketHandler(hub *notify.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeWs подписывает клиента на события состава конкретной команды.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", slog.Any("error", err), slog.Int("team_id", teamID))
		return
	}

	client := &notify.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: notify.TeamRoom(teamID),
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
