package services

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DefaultToastDuration is how long a toast stays up unless told otherwise.
const DefaultToastDuration = 4 * time.Second

// Toast is a transient notification shown by the browser.
type Toast struct {
	ID         string `json:"id"`
	Kind       string `json:"type"`
	Message    string `json:"message"`
	DurationMS int64  `json:"duration"`
}

// Broadcaster pushes a message to every connected client.
type Broadcaster interface {
	Broadcast(message WebSocketMessage)
}

// Toaster turns notifications into toasts pushed over the websocket.
type Toaster struct {
	hub    Broadcaster
	logger *slog.Logger
}

func NewToaster(hub Broadcaster, logger *slog.Logger) *Toaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Toaster{hub: hub, logger: logger}
}

// Notify implements board.Notifier.
func (t *Toaster) Notify(kind, message string, duration time.Duration) {
	if duration <= 0 {
		duration = DefaultToastDuration
	}
	toast := Toast{
		ID:         uuid.NewString(),
		Kind:       kind,
		Message:    message,
		DurationMS: duration.Milliseconds(),
	}

	t.logger.Debug("toast", "kind", kind, "message", message)
	if t.hub != nil {
		t.hub.Broadcast(WebSocketMessage{Type: MessageToast, Data: toast})
	}
}
