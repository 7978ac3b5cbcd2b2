package chat

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/shinjunhee/portfolio-chatbot/web/internal/logger"
	chatService "github.com/shinjunhee/portfolio-chatbot/web/internal/service/chat"
	"github.com/shinjunhee/portfolio-chatbot/web/pkg/utils"
)

const maxSubmitBody = 16 << 10

// Handler 채팅 페이지 REST 처리기
type Handler struct {
	pages *chatService.Service
	log   zerolog.Logger
}

// New 채팅 처리기를 만든다
func New(pages *chatService.Service) *Handler {
	return &Handler{
		pages: pages,
		log:   logger.Component("chat-api"),
	}
}

// RegisterRoutes 채팅 페이지 라우트를 등록한다
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/pages", h.handleOpenPage)
	r.Get("/pages/{pageID}", h.handleSnapshot)
	r.Post("/pages/{pageID}/messages", h.handleSubmit)
	r.Post("/pages/{pageID}/close", h.handleClose)
}

type openPageResponse struct {
	PageID string `json:"pageId"`
}

type submitRequest struct {
	Message string `json:"message"`
}

type submitResponse struct {
	Accepted bool `json:"accepted"`
}

// handleOpenPage 새 대화를 연다
func (h *Handler) handleOpenPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.Open(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusCreated, openPageResponse{PageID: page.ID()})
}

// handleSnapshot 현재 대화 상태를 돌려준다
func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	page, ok := h.lookup(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, page.Snapshot())
}

// handleSubmit 사용자 메시지를 받아 백엔드 교환을 시작한다.
// A blank message or a busy page is not an error: the reply says accepted=false.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	page, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var payload submitRequest
	if err := utils.DecodeJSON(w, r, &payload, maxSubmitBody); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accepted := page.Submit(payload.Message)
	h.log.Debug().Str("page", page.ID()).Bool("accepted", accepted).Msg("message submitted")
	utils.RespondJSON(w, http.StatusAccepted, submitResponse{Accepted: accepted})
}

// handleClose 페이지를 닫는다. Sent by the browser on pagehide.
func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	if err := h.pages.Close(r.Context(), chi.URLParam(r, "pageID")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*chatService.Page, bool) {
	page, err := h.pages.Get(r.Context(), chi.URLParam(r, "pageID"))
	if err != nil {
		respondServiceError(w, err)
		return nil, false
	}
	return page, true
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatService.ErrPageNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, chatService.ErrShutdown):
		utils.RespondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}
