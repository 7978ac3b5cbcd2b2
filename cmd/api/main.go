package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/shinjunhee/portfolio-chatbot/web/internal/config"
	"github.com/shinjunhee/portfolio-chatbot/web/internal/handler"
	"github.com/shinjunhee/portfolio-chatbot/web/internal/logger"
	"github.com/shinjunhee/portfolio-chatbot/web/internal/model/profile"
	"github.com/shinjunhee/portfolio-chatbot/web/internal/service/backend"
	"github.com/shinjunhee/portfolio-chatbot/web/internal/service/chat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Init(cfg.Log)

	if envErr != nil {
		log.Debug().Err(envErr).Msg("no .env file, continuing with system environment variables only")
	}

	profiles := profile.NewMemoryStore(profile.Seed())
	client := backend.NewClient(cfg.Backend)
	chatService := chat.NewService(client, cfg.Page)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		chatService.Run(sweepCtx, cfg.Page.SweepInterval)
	}()

	log.Info().
		Str("backend", cfg.Backend.ChatURL()).
		Dur("timeout", cfg.Backend.Timeout).
		Dur("detection_delay", cfg.Page.DetectionDelay).
		Msg("chat backend configured")

	router := handler.NewRouter(cfg.Server, profiles, chatService)

	startServer(ctx, cfg.Server, router, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := chatService.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("chat pages did not close in time")
		}
	})

	stopSweep()
	<-sweepDone
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, onShutdown func()) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	// open event streams only end when their page closes
	srv.RegisterOnShutdown(onShutdown)

	log.Info().Str("addr", addr).Msg("portfolio page listening")
	if err := runServer(ctx, srv); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
