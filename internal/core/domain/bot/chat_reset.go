package bot

import (
	"context"
	"fmt"

	"messengerbots/internal/core/domain"
	"messengerbots/internal/core/port"

	"github.com/rs/zerolog/log"
)

// ChatReset forgets the chat conversation of the thread it is triggered in.
type ChatReset struct {
	Base

	conversations *Conversations
	textSender    port.TextSender
}

func NewChatResetFactory(conversations *Conversations, sender port.TextSender) port.HandlerFactory {
	return func() port.Handler { return &ChatReset{conversations: conversations, textSender: sender} }
}

func (c *ChatReset) Definition() domain.Definition {
	return domain.Definition{
		Identity:    "chat-reset",
		Aliases:     []string{"chat_reset", "forget"},
		Name:        "Chat Reset",
		Description: "Clears the chat conversation context of the thread.",
		Unique:      true,
		Match:       domain.MatchExactCaseless,
		Triggers:    []string{"!reset", "!forget"},
	}
}

func (c *ChatReset) Handle(ctx context.Context) error {
	l := log.With().
		Str("messageId", c.Message.ID).
		Str("threadId", c.Message.ThreadID).
		Str("handler", "chat-reset").
		Logger()

	l.Info().Msg("handling request")

	reply := "no conversation context"

	if size, ok := c.conversations.Clear(c.Message.ThreadID); ok {
		var plural string
		if size != 1 {
			plural = "s"
		}

		l.Debug().Int("size", size).Msg("cleared conversation cache")
		reply = fmt.Sprintf("cleared conversation context with %d message%s", size, plural)
	} else {
		l.Debug().Msg("no conversation in cache")
		c.ReleaseCooldown()
	}

	if _, err := c.textSender.SendMessageReply(ctx, &c.Message, reply); err != nil {
		return executionError("sending cache clearing response", err)
	}

	return nil
}
