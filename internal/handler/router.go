package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shinjunhee/portfolio-chatbot/web/internal/config"
	"github.com/shinjunhee/portfolio-chatbot/web/internal/handler/chat"
	"github.com/shinjunhee/portfolio-chatbot/web/internal/handler/page"
	"github.com/shinjunhee/portfolio-chatbot/web/internal/handler/profile"
	"github.com/shinjunhee/portfolio-chatbot/web/internal/handler/stream"
	"github.com/shinjunhee/portfolio-chatbot/web/internal/handler/ws"
	"github.com/shinjunhee/portfolio-chatbot/web/internal/logger"
	middlewarePkg "github.com/shinjunhee/portfolio-chatbot/web/internal/middleware"
	profileModel "github.com/shinjunhee/portfolio-chatbot/web/internal/model/profile"
	chatService "github.com/shinjunhee/portfolio-chatbot/web/internal/service/chat"
	"github.com/shinjunhee/portfolio-chatbot/web/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(serverCfg config.ServerConfig, profiles profileModel.Store, chatSvc *chatService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(logger.Component("http")))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(serverCfg.AllowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"pages":  chatSvc.Len(),
		})
	})

	page.New(profiles, chatSvc).RegisterRoutes(r)

	r.Route("/api", func(api chi.Router) {
		profile.New(profiles).RegisterRoutes(api)
		chat.New(chatSvc).RegisterRoutes(api)
		stream.New(chatSvc).RegisterRoutes(api)
		ws.New(chatSvc, serverCfg.AllowedOrigins).RegisterRoutes(api)
	})

	return r
}
