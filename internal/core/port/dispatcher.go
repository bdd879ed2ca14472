package port

import (
	"context"

	"messengerbots/internal/core/domain"
)

type MessageDispatcher interface {
	// Dispatch runs the bot actions of thread that message triggers.
	Dispatch(ctx context.Context, thread domain.Thread, message domain.Message, admin bool) error
}

type MessageRenderer interface {
	// Render returns the text shown for a stored message.
	Render(ctx context.Context, message domain.Message) string
}
