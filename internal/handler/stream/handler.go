package stream

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/shinjunhee/portfolio-chatbot/web/internal/logger"
	chatService "github.com/shinjunhee/portfolio-chatbot/web/internal/service/chat"
	"github.com/shinjunhee/portfolio-chatbot/web/pkg/utils"
)

// Event names written to the stream.
const (
	EventSnapshot = "snapshot"
	EventMessage  = "message"
	EventBusy     = "busy"
	EventClosed   = "closed"
)

const keepAliveInterval = 25 * time.Second

// Handler pushes page changes to the browser via Server-Sent Events
type Handler struct {
	pages     *chatService.Service
	keepAlive time.Duration
	log       zerolog.Logger
}

// New creates a new stream handler
func New(pages *chatService.Service) *Handler {
	return &Handler{
		pages:     pages,
		keepAlive: keepAliveInterval,
		log:       logger.Component("stream"),
	}
}

// RegisterRoutes registers the event stream route
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/pages/{pageID}/events", h.handleEvents)
}

type busyEvent struct {
	Busy bool `json:"busy"`
}

// handleEvents streams one snapshot, then a message event per appended message
// and a busy event whenever the busy flag flips.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	page, err := h.pages.Get(r.Context(), pageID)
	if err != nil {
		if errors.Is(err, chatService.ErrPageNotFound) {
			utils.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	changes, unsubscribe := page.Subscribe()
	defer unsubscribe()

	state, cursor := page.Follow()
	if err := utils.SendSSEEvent(w, flusher, EventSnapshot, state); err != nil {
		return
	}

	h.log.Debug().Str("page", pageID).Msg("event stream opened")
	defer h.log.Debug().Str("page", pageID).Msg("event stream closed")

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-page.Done():
			utils.SendSSEEvent(w, flusher, EventClosed, struct{}{})
			return
		case <-ticker.C:
			if err := utils.SendSSEComment(w, flusher, "keep-alive"); err != nil {
				return
			}
		case <-changes:
			u := cursor.Next()
			for _, msg := range u.Messages {
				if err := utils.SendSSEEvent(w, flusher, EventMessage, msg); err != nil {
					return
				}
			}
			if u.BusyChanged {
				if err := utils.SendSSEEvent(w, flusher, EventBusy, busyEvent{Busy: u.Busy}); err != nil {
					return
				}
			}
		}
	}
}
