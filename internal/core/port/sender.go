package port

import (
	"context"

	"messengerbots/internal/core/domain"
)

type TextSender interface {
	// SendMessageReply sends a reply to a specified message with the given text and returns the sent message ID and
	// an error if any.
	SendMessageReply(ctx context.Context, message *domain.Message, text string) (int, error)
	// SendChatAction sends a specified chat action (e.g., typing) to indicate activity in a given thread.
	SendChatAction(ctx context.Context, threadID string, action domain.Action)
}
