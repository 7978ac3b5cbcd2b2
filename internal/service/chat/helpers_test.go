package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shinjunhee/portfolio-chatbot/web/internal/model/chat"
)

type fakeBackend struct {
	mu    sync.Mutex
	calls []chat.Request
	reply func(ctx context.Context, req chat.Request) (chat.Response, error)
}

func (f *fakeBackend) Chat(ctx context.Context, req chat.Request) (chat.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	reply := f.reply
	f.mu.Unlock()

	if reply == nil {
		return chat.Response{Response: "ok"}, nil
	}
	return reply(ctx, req)
}

func (f *fakeBackend) Calls() []chat.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]chat.Request(nil), f.calls...)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func waitIdle(t *testing.T, p *Page, messages int) {
	t.Helper()
	waitFor(t, "exchange to finish", func() bool {
		return !p.Busy() && p.conv.Len() >= messages
	})
}
