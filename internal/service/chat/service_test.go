package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shinjunhee/portfolio-chatbot/web/internal/config"
	"github.com/shinjunhee/portfolio-chatbot/web/internal/model/chat"
)

func newTestService(ttl time.Duration) *Service {
	return NewService(&fakeBackend{}, config.PageConfig{
		DetectionDelay: time.Millisecond,
		IdleTTL:        ttl,
		SweepInterval:  time.Minute,
	})
}

func TestServiceOpenGetClose(t *testing.T) {
	svc := newTestService(time.Minute)
	defer svc.Shutdown(context.Background())
	ctx := context.Background()

	first, err := svc.Open(ctx)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	second, err := svc.Open(ctx)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if first.ID() == second.ID() {
		t.Fatal("each page load must get its own page")
	}
	if svc.Len() != 2 {
		t.Fatalf("expected 2 open pages, got %d", svc.Len())
	}

	got, err := svc.Get(ctx, first.ID())
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != first {
		t.Fatal("Get returned a different page")
	}

	if err := svc.Close(ctx, first.ID()); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if _, err := svc.Get(ctx, first.ID()); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound after close, got %v", err)
	}
	if first.Submit("hello") {
		t.Fatal("closed page must ignore submits")
	}
	if err := svc.Close(ctx, first.ID()); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound on second close, got %v", err)
	}
}

func TestServicePagesAreIndependent(t *testing.T) {
	svc := newTestService(time.Minute)
	defer svc.Shutdown(context.Background())
	ctx := context.Background()

	a, _ := svc.Open(ctx)
	b, _ := svc.Open(ctx)

	a.Submit("only on a")
	waitIdle(t, a, 2)

	if n := len(b.Messages()); n != 0 {
		t.Fatalf("a fresh page must start empty, got %d messages", n)
	}
}

func TestServiceGetMissing(t *testing.T) {
	svc := newTestService(time.Minute)
	defer svc.Shutdown(context.Background())

	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
}

func TestServiceSweepClosesIdlePages(t *testing.T) {
	svc := newTestService(time.Minute)
	defer svc.Shutdown(context.Background())
	ctx := context.Background()

	idle, _ := svc.Open(ctx)
	watched, _ := svc.Open(ctx)
	_, unsubscribe := watched.Subscribe()
	defer unsubscribe()

	if n := svc.Sweep(time.Now()); n != 0 {
		t.Fatalf("fresh pages must not be swept, closed %d", n)
	}

	n := svc.Sweep(time.Now().Add(2 * time.Minute))
	if n != 1 {
		t.Fatalf("expected 1 page swept, got %d", n)
	}
	if _, err := svc.Get(ctx, idle.ID()); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("idle page should be gone, got %v", err)
	}
	if _, err := svc.Get(ctx, watched.ID()); err != nil {
		t.Fatalf("subscribed page should survive the sweep: %v", err)
	}
	select {
	case <-idle.Done():
	default:
		t.Fatal("swept page must be closed")
	}
}

func TestServiceShutdown(t *testing.T) {
	svc := newTestService(time.Minute)
	ctx := context.Background()

	page, _ := svc.Open(ctx)
	if err := svc.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}

	select {
	case <-page.Done():
	default:
		t.Fatal("Shutdown must close open pages")
	}
	if svc.Len() != 0 {
		t.Fatalf("expected no open pages after shutdown, got %d", svc.Len())
	}
	if _, err := svc.Open(ctx); !errors.Is(err, ErrShutdown) {
		t.Fatalf("expected ErrShutdown, got %v", err)
	}
}

func TestServiceShutdownGivesUpAtDeadline(t *testing.T) {
	release := make(chan struct{})
	stuck := &fakeBackend{reply: func(context.Context, chat.Request) (chat.Response, error) {
		<-release
		return chat.Response{Response: "late"}, nil
	}}
	svc := NewService(stuck, config.PageConfig{IdleTTL: time.Minute})

	page, _ := svc.Open(context.Background())
	page.Submit("hello")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := svc.Shutdown(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded while a page is still closing, got %v", err)
	}

	select {
	case <-page.Done():
	case <-time.After(time.Second):
		t.Fatal("page must be marked closed even when Shutdown stops waiting")
	}
	close(release)
	page.Close()
	if n := len(page.Messages()); n != 1 {
		t.Fatalf("the late reply must be dropped, got %d messages", n)
	}
}

func TestServiceRunStopsWithContext(t *testing.T) {
	svc := newTestService(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	page, _ := svc.Open(context.Background())

	done := make(chan struct{})
	go func() {
		svc.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	select {
	case <-page.Done():
	default:
		t.Fatal("Run must shut the service down on exit")
	}
}
