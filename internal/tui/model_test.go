package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	chatModel "github.com/shinjunhee/portfolio-chatbot/web/internal/model/chat"
	"github.com/shinjunhee/portfolio-chatbot/web/internal/model/profile"
	"github.com/shinjunhee/portfolio-chatbot/web/internal/service/chat"
)

type scriptedBackend struct {
	release chan struct{}
}

func (b scriptedBackend) Chat(ctx context.Context, req chatModel.Request) (chatModel.Response, error) {
	if b.release != nil {
		select {
		case <-b.release:
		case <-ctx.Done():
			return chatModel.Response{}, ctx.Err()
		}
	}
	return chatModel.Response{Response: "반갑습니다"}, nil
}

func newModel(t *testing.T, backend scriptedBackend) (Model, *chat.Page) {
	t.Helper()
	page := chat.NewPage("tui", backend, chat.Options{DetectionDelay: time.Millisecond})
	t.Cleanup(page.Close)

	m := New(page, profile.Seed()[0], Options{})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model), page
}

func waitIdle(t *testing.T, page *chat.Page, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !page.Busy() && len(page.Messages()) >= n {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("timed out waiting for the exchange")
}

func TestViewShowsEmptyState(t *testing.T) {
	m, _ := newModel(t, scriptedBackend{})

	view := m.View()
	for _, want := range []string{"신준희", "WEB DEVELOPER", "아래에 메시지를 입력해주세요.", "예시 질문", "주요 기술 스택은 무엇인가요?"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected view to contain %q\n%s", want, view)
		}
	}
}

func TestViewBeforeSize(t *testing.T) {
	page := chat.NewPage("tui", scriptedBackend{}, chat.Options{})
	defer page.Close()

	m := New(page, profile.Seed()[0], Options{})
	if m.View() != "불러오는 중..." {
		t.Fatalf("unexpected view before the first resize: %q", m.View())
	}
}

func TestEnterSubmitsAndRendersReply(t *testing.T) {
	m, page := newModel(t, scriptedBackend{})

	m.input.SetValue("안녕하세요")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	if m.input.Value() != "" {
		t.Fatalf("expected input to be cleared, got %q", m.input.Value())
	}

	waitIdle(t, page, 2)
	updated, _ = m.Update(pageChangedMsg{})
	m = updated.(Model)

	view := m.View()
	if !strings.Contains(view, "안녕하세요") || !strings.Contains(view, "반갑습니다") {
		t.Fatalf("expected both messages in view\n%s", view)
	}
	if strings.Contains(view, "예시 질문") {
		t.Fatal("empty state must disappear once messages exist")
	}
}

func TestHistoryLabelsEachSender(t *testing.T) {
	m, page := newModel(t, scriptedBackend{})

	page.Submit("질문")
	waitIdle(t, page, 2)
	updated, _ := m.Update(pageChangedMsg{})
	m = updated.(Model)

	history := m.renderHistory()
	user := strings.Index(history, "나 ")
	bot := strings.Index(history, m.profile.Name+" ")
	if user < 0 || bot < 0 {
		t.Fatalf("expected a label for both senders\n%s", history)
	}
	if user > bot {
		t.Fatalf("user row must come before the reply\n%s", history)
	}
	if !strings.Contains(history, m.styles.botText.Render("반갑습니다")) {
		t.Fatalf("plain reply should use the bot text style\n%s", history)
	}
}

func TestBlankEnterIsIgnored(t *testing.T) {
	m, page := newModel(t, scriptedBackend{})

	m.input.SetValue("   ")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	if n := len(page.Messages()); n != 0 {
		t.Fatalf("expected no messages, got %d", n)
	}
	if m.input.Value() != "   " {
		t.Fatal("a rejected submit must keep the input")
	}
}

func TestInputBlurredWhileBusy(t *testing.T) {
	release := make(chan struct{})
	m, page := newModel(t, scriptedBackend{release: release})

	m.input.SetValue("first")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	if !m.busy || m.input.Focused() {
		t.Fatal("expected the input to be blurred while busy")
	}
	if !strings.Contains(m.View(), "답변을 기다리는 중") {
		t.Fatal("expected a busy indicator")
	}

	m.input.SetValue("second")
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if n := len(page.Messages()); n != 1 {
		t.Fatalf("submit while busy must be ignored, got %d messages", n)
	}

	close(release)
	waitIdle(t, page, 2)
	updated, _ = m.Update(pageChangedMsg{})
	m = updated.(Model)

	if m.busy || !m.input.Focused() {
		t.Fatal("expected the input to be focused again")
	}
}

func TestEscQuits(t *testing.T) {
	m, _ := newModel(t, scriptedBackend{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestPageClosedQuits(t *testing.T) {
	m, _ := newModel(t, scriptedBackend{})

	_, cmd := m.Update(pageClosedMsg{})
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestWaitForChange(t *testing.T) {
	m, page := newModel(t, scriptedBackend{})

	page.Submit("hello")
	msg := m.waitForChange()()
	if _, ok := msg.(pageChangedMsg); !ok {
		t.Fatalf("expected pageChangedMsg, got %T", msg)
	}
	waitIdle(t, page, 2)
}
