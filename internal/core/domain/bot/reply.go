package bot

import (
	"context"
	"math/rand/v2"

	"messengerbots/internal/core/domain"
	"messengerbots/internal/core/port"

	"github.com/rs/zerolog/log"
)

const (
	fieldReplies = "replies"
	maxReplies   = 5
)

// Reply answers a trigger with one of the configured replies, picked at random.
type Reply struct {
	Base

	textSender port.TextSender
	pick       func(n int) int
}

func NewReply(sender port.TextSender) *Reply {
	return &Reply{textSender: sender, pick: rand.IntN}
}

func NewReplyFactory(sender port.TextSender) port.HandlerFactory {
	return func() port.Handler { return NewReply(sender) }
}

func (r *Reply) Definition() domain.Definition {
	return domain.Definition{
		Identity:    "reply",
		Aliases:     []string{"reply", "response"},
		Name:        "Reply",
		Description: "Reply with one of the given responses when triggered.",
	}
}

func (r *Reply) Rules() domain.Rules {
	return domain.Rules{
		fieldReplies:        {"required", "array", "min:1", "max:5"},
		fieldReplies + ".*": {"required", "string", "max:500"},
	}
}

func (r *Reply) ErrorMessages() map[string]string {
	return map[string]string{
		fieldReplies + ".min": "You must add at least one reply.",
		fieldReplies + ".max": "You may add up to 5 replies.",
		fieldReplies + ".*":   "Replies must be text no longer than 500 characters.",
	}
}

func (r *Reply) Handle(ctx context.Context) error {
	l := log.With().
		Str("messageId", r.Message.ID).
		Str("threadId", r.Message.ThreadID).
		Str("handler", "reply").
		Logger()

	list, _ := domain.AsList(r.PayloadValue(fieldReplies))

	replies := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && s != "" {
			replies = append(replies, s)
		}
	}

	if len(replies) == 0 {
		l.Warn().Str("action", r.Action.ID).Msg("action has no replies configured")
		r.ReleaseCooldown()
		return nil
	}

	reply := replies[r.pick(len(replies))]

	l.Debug().Str("reply", reply).Msg("handling request")

	if _, err := r.textSender.SendMessageReply(ctx, &r.Message, reply); err != nil {
		r.ReleaseCooldown()
		return executionError("sending reply", err)
	}

	return nil
}
