package llm

import (
	"context"
	"strings"
	"unicode/utf8"

	"Cadence/internal/domain"
	"Cadence/internal/ports"
)

var (
	mockGreetings = []string{"hello", "hi ", "hey", "你好", "嗨"}
	mockLowNotes  = []string{"sad", "tired", "难过", "累", "哭"}
	mockFallbacks = []string{
		"嗯嗯，我在听，你继续说。",
		"这样啊。那你现在是什么打算？",
		"I hear you. Tell me more about that.",
		"好，我记下了。还有别的吗？",
	}
)

// MockResponder answers with canned companion lines. It needs no API key
// and is deterministic, which makes it the default provider for local
// runs and tests.
type MockResponder struct{}

var _ ports.Responder = (*MockResponder)(nil)

// NewMockResponder builds the canned responder.
func NewMockResponder() *MockResponder {
	return &MockResponder{}
}

// Name identifies the provider inside the registry.
func (m *MockResponder) Name() string {
	return "mock"
}

// Respond picks a line by simple keyword buckets; the fallback rotates on
// the rune length of the input so repeated runs stay stable.
func (m *MockResponder) Respond(_ context.Context, _ []domain.ChatMessage, affect domain.AffectState, userText string) (string, error) {
	lowered := strings.ToLower(userText)

	for _, kw := range mockLowNotes {
		if strings.Contains(lowered, kw) {
			return "听起来真的不容易。辛苦了，想聊聊发生什么了吗？", nil
		}
	}
	for _, kw := range mockGreetings {
		if strings.Contains(lowered, kw) {
			if affect.Pleasure > 0.3 {
				return "嘿，你来啦！我正想找你聊天呢，今天过得怎么样？", nil
			}
			return "嘿，你来啦。今天过得怎么样？", nil
		}
	}
	if strings.HasSuffix(strings.TrimSpace(userText), "?") ||
		strings.HasSuffix(strings.TrimSpace(userText), "？") ||
		strings.Contains(userText, "吗") {
		return "好问题，让我想想...我觉得要看情况，你自己更倾向哪边？", nil
	}

	return mockFallbacks[utf8.RuneCountInString(userText)%len(mockFallbacks)], nil
}
