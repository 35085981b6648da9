package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/campuschat/notification-service/internal/domain"
	"github.com/campuschat/notification-service/internal/pkg/id"
	"github.com/campuschat/notification-service/internal/pkg/validate"
	"github.com/campuschat/notification-service/internal/trigger"
)

// Dispatcher routes one document event to its registered handler.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev trigger.Event) error
}

// EventRequest is the push envelope delivered per created (or updated)
// document. Data carries the document snapshot; skinny deliveries omit it
// and the handler fetches the document from the store. OldData carries the
// previous snapshot on update events.
type EventRequest struct {
	ID       string          `json:"id"`
	Document string          `json:"document" validate:"required"`
	Data     json.RawMessage `json:"data,omitempty"`
	OldData  json.RawMessage `json:"old_data,omitempty"`
}

// EventsHandler receives document events over HTTP push.
type EventsHandler struct {
	dispatcher Dispatcher
}

func NewEventsHandler(d Dispatcher) *EventsHandler {
	return &EventsHandler{dispatcher: d}
}

// Receive handles POST /v1/events.
func (h *EventsHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if req.ID == "" {
		req.ID = id.New()
	}

	ev := trigger.Event{
		EventID: req.ID,
		Path:    req.Document,
		Data:    req.Data,
		OldData: req.OldData,
	}
	if err := h.dispatcher.Dispatch(r.Context(), ev); err != nil {
		if errors.Is(err, domain.ErrBadRequest) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "event processing failed")
		return
	}
	writeJSON(w, http.StatusAccepted, MessageEnvelope{Message: "accepted"})
}
