package bot

import (
	"context"

	"messengerbots/internal/core/domain"
	"messengerbots/internal/core/port"

	"github.com/stretchr/testify/mock"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendChatAction(_ context.Context, _ string, _ domain.Action) {
	// mocked
}

func (m *MockSender) SendMessageReply(ctx context.Context, message *domain.Message, text string) (int, error) {
	args := m.Called(ctx, message, text)
	return args.Int(0), args.Error(1)
}

type MockTextGenerator struct {
	response string
	err      error
	prompts  []domain.Prompt
}

func (m *MockTextGenerator) GenerateFromPrompt(_ context.Context, prompts []domain.Prompt) (domain.ModelResponse, error) {
	m.prompts = prompts
	return domain.ModelResponse{
		Response: m.response,
		Metadata: domain.ResponseMetadata{
			Model:            "unit-test",
			CompletionTokens: 24,
			TotalTokens:      42,
		},
	}, m.err
}

// stubHandler is a configurable handler for registry and resolver tests.
type stubHandler struct {
	Base

	definition domain.Definition
	rules      domain.Rules
	messages   map[string]string
}

func (s *stubHandler) Definition() domain.Definition {
	return s.definition
}

func (s *stubHandler) Rules() domain.Rules {
	return s.rules
}

func (s *stubHandler) ErrorMessages() map[string]string {
	return s.messages
}

func (s *stubHandler) Handle(_ context.Context) error {
	return nil
}

func stubFactory(definition domain.Definition) port.HandlerFactory {
	return func() port.Handler { return &stubHandler{definition: definition} }
}

func stubFactoryWithRules(definition domain.Definition, rules domain.Rules, messages map[string]string) port.HandlerFactory {
	return func() port.Handler { return &stubHandler{definition: definition, rules: rules, messages: messages} }
}
