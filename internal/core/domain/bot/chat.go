package bot

import (
	"context"
	"time"

	"messengerbots/internal/core/domain"
	"messengerbots/internal/core/port"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const fieldModel = "model"

// Chat answers the text following its trigger with a language model completion, keeping a short per-thread
// conversation history.
type Chat struct {
	Base

	textGenerator port.TextGenerator
	textSender    port.TextSender
	conversations *Conversations
	defaultModel  string
	timeout       time.Duration
}

type ChatParams struct {
	TextGenerator port.TextGenerator
	TextSender    port.TextSender
	Conversations *Conversations
	DefaultModel  string
	Timeout       time.Duration
}

func NewChat(p ChatParams) *Chat {
	return &Chat{
		textGenerator: p.TextGenerator,
		textSender:    p.TextSender,
		conversations: p.Conversations,
		defaultModel:  p.DefaultModel,
		timeout:       p.Timeout,
	}
}

func NewChatFactory(p ChatParams) port.HandlerFactory {
	return func() port.Handler { return NewChat(p) }
}

func (c *Chat) Definition() domain.Definition {
	return domain.Definition{
		Identity:    "chat",
		Aliases:     []string{"chat", "ai"},
		Name:        "Chat",
		Description: "Answers the text after the trigger using a language model.",
	}
}

func (c *Chat) Rules() domain.Rules {
	return domain.Rules{
		fieldModel: {"nullable", "string", "max:100"},
	}
}

func (c *Chat) ErrorMessages() map[string]string {
	return map[string]string{
		fieldModel: "The model must be a model identifier, e.g. openai/gpt-4.1.",
	}
}

func (c *Chat) Handle(ctx context.Context) error {
	l := log.With().
		Str("messageId", c.Message.ID).
		Str("threadId", c.Message.ThreadID).
		Str("handler", "chat").
		Str("func", "Handle").
		Logger()

	text, ok := c.ParsedMessage(false)
	if !ok {
		l.Debug().Msg("empty prompt")
		c.ReleaseCooldown()
		return nil
	}

	l.Debug().Str("prompt", text).Str("username", c.Message.Username).Msg("handling request")

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	go c.textSender.SendChatAction(ctx, c.Message.ThreadID, domain.Typing)

	prompt := domain.Prompt{
		Author: domain.User,
		Prompt: c.Message.Username + ": " + text,
		Model:  domain.Model{Identifier: c.model()},
	}

	history := append(c.conversations.History(c.Message.ThreadID), prompt)

	response, err := c.textGenerator.GenerateFromPrompt(ctx, history)
	if err != nil {
		c.ReleaseCooldown()
		return executionError("generating response", err)
	}

	c.conversations.Append(c.Message.ThreadID, prompt, domain.Prompt{Author: domain.System, Prompt: response.Response})

	logResponse(&l, response.Metadata, len(history)+1)

	if _, err := c.textSender.SendMessageReply(ctx, &c.Message, response.Response); err != nil {
		return executionError("sending response", err)
	}

	return nil
}

func (c *Chat) model() string {
	if model, ok := c.PayloadValue(fieldModel).(string); ok && model != "" {
		return model
	}

	return c.defaultModel
}

func logResponse(l *zerolog.Logger, metadata domain.ResponseMetadata, length int) {
	l.Debug().
		Str("model", metadata.Model).
		Int("completionTokens", metadata.CompletionTokens).
		Int("totalTokens", metadata.TotalTokens).
		Int("conversationSize", length).
		Msg("generated response")
}
