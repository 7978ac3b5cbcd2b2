package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/shinjunhee/portfolio-chatbot/web/internal/config"
	"github.com/shinjunhee/portfolio-chatbot/web/internal/logger"
	"github.com/shinjunhee/portfolio-chatbot/web/internal/service/backend"
)

var (
	ErrPageNotFound = errors.New("page not found")
	ErrShutdown     = errors.New("chat service is shut down")
)

// Service keeps the open chat pages, one per page load.
type Service struct {
	client  backend.Chatter
	opts    Options
	idleTTL time.Duration
	log     zerolog.Logger

	mu       sync.RWMutex
	pages    map[string]*Page
	shutdown bool
}

// NewService builds the in-memory page registry.
func NewService(client backend.Chatter, cfg config.PageConfig) *Service {
	return &Service{
		client:  client,
		opts:    Options{DetectionDelay: cfg.DetectionDelay},
		idleTTL: cfg.IdleTTL,
		log:     logger.Component("chat"),
		pages:   make(map[string]*Page),
	}
}

// Open provisions a fresh page with an empty conversation.
func (s *Service) Open(_ context.Context) (*Page, error) {
	page := NewPage(uuid.NewString(), s.client, s.opts)

	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		page.Close()
		return nil, ErrShutdown
	}
	s.pages[page.ID()] = page
	count := len(s.pages)
	s.mu.Unlock()

	s.log.Debug().Str("page", page.ID()).Int("open", count).Msg("page opened")
	return page, nil
}

// Get returns an open page and marks it active.
func (s *Service) Get(_ context.Context, pageID string) (*Page, error) {
	s.mu.RLock()
	page, ok := s.pages[pageID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrPageNotFound
	}

	page.Touch()
	return page, nil
}

// Close tears a page down and forgets it.
func (s *Service) Close(_ context.Context, pageID string) error {
	s.mu.Lock()
	page, ok := s.pages[pageID]
	delete(s.pages, pageID)
	s.mu.Unlock()
	if !ok {
		return ErrPageNotFound
	}

	page.Close()
	s.log.Debug().Str("page", pageID).Msg("page closed by client")
	return nil
}

// Len reports how many pages are open.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pages)
}

// Sweep closes pages that have been idle longer than the configured TTL and
// returns how many were closed.
func (s *Service) Sweep(now time.Time) int {
	cutoff := now.Add(-s.idleTTL)

	s.mu.Lock()
	var stale []*Page
	for id, page := range s.pages {
		if page.Idle(cutoff) {
			stale = append(stale, page)
			delete(s.pages, id)
		}
	}
	s.mu.Unlock()

	for _, page := range stale {
		page.Close()
	}
	if len(stale) > 0 {
		s.log.Info().Int("closed", len(stale)).Msg("swept idle pages")
	}
	return len(stale)
}

// shutdownTimeout bounds how long Run waits for pages to close once its context ends.
const shutdownTimeout = 5 * time.Second

// Run sweeps idle pages every interval until ctx is done, then shuts the service down.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			_ = s.Shutdown(shutdownCtx)
			cancel()
			return
		case t := <-ticker.C:
			s.Sweep(t)
		}
	}
}

// Shutdown closes every page; later Open calls fail with ErrShutdown.
// It returns an error naming a page that was still closing when ctx ended.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.shutdown = true
	pages := make([]*Page, 0, len(s.pages))
	for id, page := range s.pages {
		pages = append(pages, page)
		delete(s.pages, id)
	}
	s.mu.Unlock()

	var g errgroup.Group
	for _, page := range pages {
		g.Go(func() error {
			closed := make(chan struct{})
			go func() {
				page.Close()
				close(closed)
			}()

			select {
			case <-closed:
				return nil
			case <-ctx.Done():
				return fmt.Errorf("close page %s: %w", page.ID(), ctx.Err())
			}
		})
	}
	err := g.Wait()
	if err != nil {
		s.log.Warn().Err(err).Int("pages", len(pages)).Msg("shutdown did not wait for every page")
		return err
	}

	if len(pages) > 0 {
		s.log.Info().Int("closed", len(pages)).Msg("closed open pages on shutdown")
	}
	return nil
}
