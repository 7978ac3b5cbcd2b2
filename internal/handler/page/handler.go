package page

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/shinjunhee/portfolio-chatbot/web/internal/logger"
	"github.com/shinjunhee/portfolio-chatbot/web/internal/model/profile"
	chatService "github.com/shinjunhee/portfolio-chatbot/web/internal/service/chat"
	"github.com/shinjunhee/portfolio-chatbot/web/pkg/utils"
)

//go:embed templates/index.html
var templates embed.FS

var indexTemplate = template.Must(template.ParseFS(templates, "templates/index.html"))

// Handler 포트폴리오 페이지 처리기
type Handler struct {
	profiles profile.Store
	pages    *chatService.Service
	log      zerolog.Logger
}

// New 페이지 처리기를 만든다
func New(profiles profile.Store, pages *chatService.Service) *Handler {
	return &Handler{
		profiles: profiles,
		pages:    pages,
		log:      logger.Component("page"),
	}
}

// RegisterRoutes 페이지 라우트를 등록한다
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleIndex)
}

type indexData struct {
	Profile profile.Profile
	PageID  string
}

// handleIndex renders the portfolio page. Every load gets a fresh conversation.
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	p, ok := h.profiles.Default()
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "profile not configured")
		return
	}

	page, err := h.pages.Open(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, indexData{Profile: p, PageID: page.ID()}); err != nil {
		h.log.Error().Err(err).Msg("render index")
		h.pages.Close(r.Context(), page.ID())
		utils.RespondError(w, http.StatusInternalServerError, "render failed")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
