package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/quest-engine/internal/game"
	"github.com/jwebster45206/quest-engine/pkg/render"
)

const maxEventBytes = 16 << 10

type ErrorResponse struct {
	Error string `json:"error"`
}

// EventProcessor handles one inbound chat event. *game.Orchestrator
// satisfies it.
type EventProcessor interface {
	Handle(ctx context.Context, ev game.Event) (*render.Payload, error)
}

// EventsHandler accepts chat events and answers with the next screen.
// POST /v1/events
type EventsHandler struct {
	engine EventProcessor
	logger *slog.Logger
}

func NewEventsHandler(engine EventProcessor, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{engine: engine, logger: logger}
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	var ev game.Event
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ev); err != nil {
		h.logger.Debug("Invalid event body", "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid JSON in request body.")
		return
	}
	if ev.PlayerID <= 0 {
		h.writeError(w, http.StatusBadRequest, "player_id is required.")
		return
	}
	if (ev.Text == "") == (ev.Action == "") {
		h.writeError(w, http.StatusBadRequest, "Exactly one of text or action is required.")
		return
	}

	p, err := h.engine.Handle(r.Context(), ev)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			status = http.StatusServiceUnavailable
		}
		h.logger.Warn("Event not processed", "player_id", ev.PlayerID, "error", err)
		h.writeError(w, status, "The game is busy. Please try again.")
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		h.logger.Error("Failed to encode payload", "error", err)
	}
}

func (h *EventsHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		h.logger.Error("Failed to encode error response", "error", err)
	}
}
