package service

import (
	"context"
	"sync"
	"time"

	"messengerbots/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

type mockTextSender struct {
	sendCalled  bool
	callCount   int
	sendReplies []string
	sendError   error
}

func (m *mockTextSender) SendChatAction(_ context.Context, _ string, _ domain.Action) {}

func (m *mockTextSender) SendMessageReply(_ context.Context, _ *domain.Message, text string) (int, error) {
	m.callCount++
	m.sendCalled = true
	m.sendReplies = append(m.sendReplies, text)
	if m.sendError != nil {
		return 1, m.sendError
	}
	return len(text), nil
}

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) Participant(ctx context.Context, threadID string, owner domain.OwnerRef) (*domain.Participant, error) {
	args := m.Called(ctx, threadID, owner)
	p, _ := args.Get(0).(*domain.Participant)
	return p, args.Error(1)
}

func (m *MockDirectory) Provider(ctx context.Context, owner domain.OwnerRef) (*domain.Provider, error) {
	args := m.Called(ctx, owner)
	p, _ := args.Get(0).(*domain.Provider)
	return p, args.Error(1)
}

func (m *MockDirectory) VideoCall(ctx context.Context, threadID, callID string) (*domain.Call, error) {
	args := m.Called(ctx, threadID, callID)
	c, _ := args.Get(0).(*domain.Call)
	return c, args.Error(1)
}

func (m *MockDirectory) CallParticipants(
	ctx context.Context, call domain.Call, exclude domain.OwnerRef, limit int) ([]domain.Provider, error) {
	args := m.Called(ctx, call, exclude, limit)
	p, _ := args.Get(0).([]domain.Provider)
	return p, args.Error(1)
}

type mockReporter struct {
	mu     sync.Mutex
	errors []error
}

func (m *mockReporter) Report(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, err)
}

type mockActionStore struct {
	actions map[string][]domain.BotAction
	err     error
	saveErr error
	saved   []domain.BotAction
}

func (m *mockActionStore) SaveAction(_ context.Context, action domain.BotAction) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, action)
	if m.actions == nil {
		m.actions = make(map[string][]domain.BotAction)
	}
	m.actions[action.ThreadID] = append(m.actions[action.ThreadID], action)
	return nil
}

func (m *mockActionStore) ActionsForThread(_ context.Context, threadID string) ([]domain.BotAction, error) {
	return m.actions[threadID], m.err
}

func (m *mockActionStore) DeleteAction(_ context.Context, threadID, actionID string) error {
	kept := m.actions[threadID][:0]
	for _, a := range m.actions[threadID] {
		if a.ID != actionID {
			kept = append(kept, a)
		}
	}
	m.actions[threadID] = kept
	return m.err
}

type mockCooldowns struct {
	active  map[string]bool
	started map[string]time.Duration
	err     error
}

func newMockCooldowns() *mockCooldowns {
	return &mockCooldowns{active: make(map[string]bool), started: make(map[string]time.Duration)}
}

func (m *mockCooldowns) Active(_ context.Context, key string) (bool, error) {
	return m.active[key], m.err
}

func (m *mockCooldowns) Start(_ context.Context, key string, d time.Duration) error {
	m.started[key] = d
	return nil
}

type recordedAction struct {
	handler string
	err     error
}

type mockRecorder struct {
	calls []recordedAction
}

func (m *mockRecorder) RecordAction(handler string, err error) {
	m.calls = append(m.calls, recordedAction{handler, err})
}
