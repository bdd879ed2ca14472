package port

import (
	"context"

	"messengerbots/internal/core/domain"
)

// Handler is a pluggable bot behavior bound to one or more aliases.
type Handler interface {
	// Definition describes the handler. It must return the same value for every instance.
	Definition() domain.Definition
	// Rules returns the validation rules for handler specific fields, merged over the base action rules.
	Rules() domain.Rules
	// ErrorMessages returns custom validation messages keyed by "field" or "field.rule".
	ErrorMessages() map[string]string
	// SerializePayload encodes handler specific fields for storage. A nil payload stays nil.
	SerializePayload(payload map[string]any) (*string, error)
	// SetContext binds the handler instance to the thread, action and message it is invoked for.
	SetContext(thread domain.Thread, action domain.BotAction, message domain.Message, trigger string)
	// Handle runs the handler. Failures should wrap domain.ErrHandlerExecution.
	Handle(ctx context.Context) error
	// ShouldReleaseCooldown reports whether the action cooldown should be skipped after Handle.
	ShouldReleaseCooldown() bool
	// ReleaseCooldown marks the action cooldown to be skipped.
	ReleaseCooldown()
}

// HandlerFactory builds a fresh handler instance for a single invocation.
type HandlerFactory func() Handler

type HandlerRegistry interface {
	// Register adds a handler factory, replacing an existing identity only when overwrite is set.
	Register(factory HandlerFactory, overwrite bool) error
	// Activate builds a handler instance for an identity or alias.
	Activate(identityOrAlias string) (Handler, domain.Definition, error)
	// ResolveIdentity returns the identity for an identity or alias.
	ResolveIdentity(identityOrAlias string) (string, bool)
	// ListAliases returns every alias across all registered handlers.
	ListAliases() []string
	// Definition returns the definition for an identity or alias.
	Definition(identityOrAlias string) (domain.Definition, bool)
}

type ActionResolver interface {
	// Resolve validates a submitted bot action and normalizes it.
	Resolve(submitted map[string]any) (domain.ResolvedAction, error)
}
