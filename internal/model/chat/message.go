package chat

import (
	"fmt"
	"time"
)

// Message is one turn of the conversation shown on the chat page.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	IsUser    bool      `json:"isUser"`
	Timestamp time.Time `json:"timestamp"`
}

// Sender returns "user" or "bot".
func (m Message) Sender() string {
	if m.IsUser {
		return "user"
	}
	return "bot"
}

// FallbackReply is appended when a backend exchange fails for any reason.
const FallbackReply = "죄송합니다. 일시적인 오류가 발생했습니다. 다시 시도해주세요."

// DetectionReply announces a company the backend recognised in the question.
func DetectionReply(company string) string {
	return fmt.Sprintf("💼 %s 관련 질문으로 인식했습니다. 더 구체적인 답변을 도와드릴게요!", company)
}

// FormatClock renders t the way the page shows message times, e.g. "오후 03:04".
func FormatClock(t time.Time) string {
	period := "오전"
	hour := t.Hour()
	if hour >= 12 {
		period = "오후"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%s %02d:%02d", period, hour, t.Minute())
}
