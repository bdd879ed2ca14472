package bot

import (
	"context"

	"messengerbots/internal/core/domain"
	"messengerbots/internal/core/port"
)

type Ping struct {
	Base

	textSender port.TextSender
}

func NewPingFactory(sender port.TextSender) port.HandlerFactory {
	return func() port.Handler { return &Ping{textSender: sender} }
}

func (p *Ping) Definition() domain.Definition {
	return domain.Definition{
		Identity:    "ping",
		Aliases:     []string{"ping"},
		Name:        "Ping",
		Description: "Answers !ping with pong.",
		Unique:      true,
		Match:       domain.MatchExactCaseless,
		Triggers:    []string{"!ping"},
	}
}

func (p *Ping) Handle(ctx context.Context) error {
	if _, err := p.textSender.SendMessageReply(ctx, &p.Message, "pong"); err != nil {
		p.ReleaseCooldown()
		return executionError("sending pong", err)
	}

	return nil
}
