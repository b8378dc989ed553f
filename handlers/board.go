package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/CrowderSoup/minijira/board"
	"github.com/CrowderSoup/minijira/services"
)

// Board is what the board endpoints need from the kanban.
type Board interface {
	board.DragHandler
	Snapshot() board.Snapshot
	Reload(ctx context.Context) error
}

// BoardHandler serves the kanban board over HTTP and the websocket.
type BoardHandler struct {
	board    Board
	hub      *services.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewBoardHandler(b Board, hub *services.Hub, checkOrigin func(*http.Request) bool, logger *slog.Logger) *BoardHandler {
	return &BoardHandler{
		board: b,
		hub:   hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: checkOrigin,
		},
		logger: logger,
	}
}

type dragRequest struct {
	ID string `json:"id"`
}

// GetBoard returns the current board snapshot.
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.board.Snapshot())
}

// Reload refetches the ticket list and returns the new board.
func (h *BoardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.board.Reload(r.Context()); err != nil {
		handleError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.board.Snapshot())
}

// Drag handles POST /api/board/drag/{phase} with phase start, over or end.
// The body carries the ticket id (start) or the target id (over, end). An
// end without an id is a drop outside the board.
func (h *BoardHandler) Drag(w http.ResponseWriter, r *http.Request) {
	var req dragRequest
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeMessage(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	switch mux.Vars(r)["phase"] {
	case "start":
		if req.ID == "" {
			writeMessage(w, http.StatusBadRequest, "id is required")
			return
		}
		h.board.OnDragStart(req.ID)
		writeJSON(w, http.StatusOK, h.board.Snapshot())
	case "over":
		h.board.OnDragOver(req.ID)
		w.WriteHeader(http.StatusNoContent)
	case "end":
		result := h.board.OnDragEnd(req.ID)
		writeJSON(w, http.StatusOK, map[string]any{
			"result": result,
			"board":  h.board.Snapshot(),
		})
	default:
		writeMessage(w, http.StatusNotFound, "unknown drag phase")
	}
}

// PublishSnapshot pushes a board snapshot to every websocket client.
func (h *BoardHandler) PublishSnapshot(snapshot board.Snapshot) {
	h.hub.Broadcast(services.WebSocketMessage{Type: services.MessageBoard, Data: snapshot})
}

// HandleSocketMessage routes drag gestures and reload requests arriving over
// the websocket.
func (h *BoardHandler) HandleSocketMessage(client *services.Client, message services.InboundMessage) {
	var req dragRequest
	if len(message.Data) > 0 {
		if err := json.Unmarshal(message.Data, &req); err != nil {
			client.Reply(services.WebSocketMessage{Type: services.MessageError, Data: "malformed " + message.Type})
			return
		}
	}

	switch message.Type {
	case "dragStart":
		h.board.OnDragStart(req.ID)
	case "dragOver":
		h.board.OnDragOver(req.ID)
	case "dragEnd":
		result := h.board.OnDragEnd(req.ID)
		client.Reply(services.WebSocketMessage{Type: services.MessageDragResult, Data: result})
	case "reload":
		if err := h.board.Reload(context.Background()); err != nil {
			h.logger.Warn("board reload from client failed", "client", client.ID, "error", err)
			client.Reply(services.WebSocketMessage{Type: services.MessageError, Data: "Failed to load tickets"})
		}
	case "snapshot":
		client.Reply(services.WebSocketMessage{Type: services.MessageBoard, Data: h.board.Snapshot()})
	default:
		h.logger.Debug("ignoring websocket message", "type", message.Type)
	}
}

// HandleWebSocket upgrades the connection and sends the current board.
func (h *BoardHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := services.NewClient(h.hub, conn)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	client.Reply(services.WebSocketMessage{Type: services.MessageBoard, Data: h.board.Snapshot()})
}
