package bot

import (
	"encoding/json"
	"fmt"
	"strings"

	"messengerbots/internal/core/domain"

	"github.com/rs/zerolog/log"
)

// Base carries the invocation context shared by every handler. Handlers embed it and override what they need.
type Base struct {
	Thread  domain.Thread
	Action  domain.BotAction
	Message domain.Message
	Trigger string

	releaseCooldown bool
	payload         map[string]any
	payloadDecoded  bool
}

func (b *Base) Rules() domain.Rules {
	return nil
}

func (b *Base) ErrorMessages() map[string]string {
	return nil
}

func (b *Base) SerializePayload(payload map[string]any) (*string, error) {
	if payload == nil {
		return nil, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error encoding payload: %w", err)
	}

	s := string(data)

	return &s, nil
}

func (b *Base) SetContext(thread domain.Thread, action domain.BotAction, message domain.Message, trigger string) {
	b.Thread = thread
	b.Action = action
	b.Message = message
	b.Trigger = trigger
	b.releaseCooldown = false
	b.payload = nil
	b.payloadDecoded = false
}

func (b *Base) ShouldReleaseCooldown() bool {
	return b.releaseCooldown
}

func (b *Base) ReleaseCooldown() {
	b.releaseCooldown = true
}

// Payload returns the decoded action payload, or nil when the action has none.
func (b *Base) Payload() map[string]any {
	if b.payloadDecoded {
		return b.payload
	}

	b.payloadDecoded = true

	if b.Action.Payload == nil {
		return nil
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(*b.Action.Payload), &payload); err != nil {
		log.Warn().Err(err).Str("action", b.Action.ID).Msg("could not decode action payload")
		return nil
	}

	b.payload = payload

	return b.payload
}

// PayloadValue returns a single payload field, or nil when absent.
func (b *Base) PayloadValue(key string) any {
	return b.Payload()[key]
}

// ParsedMessage returns the message body with a leading matched trigger removed. It reports false when nothing
// is left.
func (b *Base) ParsedMessage(lower bool) (string, bool) {
	body := strings.TrimSpace(b.Message.Body)

	if n := len(b.Trigger); n > 0 && len(body) >= n && strings.EqualFold(body[:n], b.Trigger) {
		body = strings.TrimSpace(body[n:])
	}

	if body == "" {
		return "", false
	}

	if lower {
		body = strings.ToLower(body)
	}

	return body, true
}

// ParsedWords splits ParsedMessage on whitespace.
func (b *Base) ParsedWords(lower bool) []string {
	parsed, ok := b.ParsedMessage(lower)
	if !ok {
		return nil
	}

	return strings.Fields(parsed)
}

func executionError(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrHandlerExecution, what, err)
}
