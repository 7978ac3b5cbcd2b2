package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shinjunhee/portfolio-chatbot/web/internal/model/profile"
	"github.com/shinjunhee/portfolio-chatbot/web/pkg/utils"
)

// Handler 프로필 조회 HTTP 처리기
type Handler struct {
	profiles profile.Store
}

// New 프로필 처리기를 만든다
func New(profiles profile.Store) *Handler {
	return &Handler{
		profiles: profiles,
	}
}

// RegisterRoutes 프로필 라우트를 등록한다
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/profile", h.handleDefaultProfile)
	r.Get("/profiles", h.handleListProfiles)
	r.Get("/profiles/{profileID}", h.handleGetProfile)
}

func (h *Handler) handleDefaultProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := h.profiles.Default()
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "profile not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}

func (h *Handler) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.profiles.List())
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := h.profiles.FindByID(chi.URLParam(r, "profileID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "profile not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}
