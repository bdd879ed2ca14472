package port

import (
	"context"
	"time"

	"messengerbots/internal/core/domain"
)

type ActionStore interface {
	// SaveAction inserts or replaces a bot action.
	SaveAction(ctx context.Context, action domain.BotAction) error
	// ActionsForThread returns every action of a thread in creation order.
	ActionsForThread(ctx context.Context, threadID string) ([]domain.BotAction, error)
	// DeleteAction removes an action. Removing a missing action is not an error.
	DeleteAction(ctx context.Context, threadID, actionID string) error
}

// Directory resolves participants and providers referenced by messages. Lookups that find nothing return
// nil without error.
type Directory interface {
	Participant(ctx context.Context, threadID string, owner domain.OwnerRef) (*domain.Participant, error)
	Provider(ctx context.Context, owner domain.OwnerRef) (*domain.Provider, error)
	VideoCall(ctx context.Context, threadID, callID string) (*domain.Call, error)
	// CallParticipants returns up to limit call participants other than exclude, in join order.
	CallParticipants(ctx context.Context, call domain.Call, exclude domain.OwnerRef, limit int) ([]domain.Provider, error)
}

type CooldownStore interface {
	// Active reports whether a cooldown is running for key.
	Active(ctx context.Context, key string) (bool, error)
	// Start begins a cooldown for key lasting d.
	Start(ctx context.Context, key string, d time.Duration) error
}

type FaultReporter interface {
	// Report records an internal failure. It must not block.
	Report(err error)
}

type ActionRecorder interface {
	// RecordAction counts a handler invocation and its outcome.
	RecordAction(handler string, err error)
}

// ThreadStore records the threads, people and events the transport observes.
type ThreadStore interface {
	// Thread returns nil without error when the thread is unknown.
	Thread(ctx context.Context, threadID string) (*domain.Thread, error)
	SaveThread(ctx context.Context, thread domain.Thread) error
	SaveProvider(ctx context.Context, provider domain.Provider) error
	SaveParticipant(ctx context.Context, participant domain.Participant) error
	SaveCall(ctx context.Context, call domain.Call) error
	SaveMessage(ctx context.Context, message domain.Message) error
}
