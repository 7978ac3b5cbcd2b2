package chat

import (
	"testing"

	"github.com/shinjunhee/portfolio-chatbot/web/internal/model/chat"
)

func TestConversationKeepsInsertionOrder(t *testing.T) {
	conv := NewConversation()
	for _, id := range []string{"1", "2", "3"} {
		conv.Append(chat.Message{ID: id, Content: "m" + id})
	}

	msgs := conv.Messages()
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	for i, want := range []string{"1", "2", "3"} {
		if msgs[i].ID != want {
			t.Fatalf("message %d: got id %s want %s", i, msgs[i].ID, want)
		}
	}
}

func TestConversationSince(t *testing.T) {
	conv := NewConversation()
	conv.Append(chat.Message{ID: "1"})
	conv.Append(chat.Message{ID: "2"})

	if got := conv.Since(1); len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("unexpected Since(1): %+v", got)
	}
	if got := conv.Since(2); got != nil {
		t.Fatalf("expected nil for Since(len), got %+v", got)
	}
	if got := conv.Since(-5); len(got) != 2 {
		t.Fatalf("expected negative offset to read everything, got %d", len(got))
	}
}

func TestConversationMessagesIsCopy(t *testing.T) {
	conv := NewConversation()
	conv.Append(chat.Message{ID: "1", Content: "original"})

	msgs := conv.Messages()
	msgs[0].Content = "changed"

	if conv.Messages()[0].Content != "original" {
		t.Fatal("Messages must not expose the backing slice")
	}
}
