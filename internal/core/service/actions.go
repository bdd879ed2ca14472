package service

import (
	"context"
	"fmt"
	"time"

	"messengerbots/internal/core/domain"
	"messengerbots/internal/core/port"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

const uniqueHandler = "The selected handler can only be added once per thread."

// Actions manages the bot actions attached to threads.
type Actions struct {
	resolver port.ActionResolver
	registry port.HandlerRegistry
	store    port.ActionStore
	now      func() time.Time
}

func NewActions(resolver port.ActionResolver, registry port.HandlerRegistry, store port.ActionStore) *Actions {
	return &Actions{resolver: resolver, registry: registry, store: store, now: time.Now}
}

// Add resolves a submitted action and attaches it to the thread.
func (a *Actions) Add(ctx context.Context, threadID string, submitted map[string]any) (domain.BotAction, error) {
	l := log.With().Str("threadId", threadID).Str("func", "Add").Logger()

	resolved, err := a.resolver.Resolve(submitted)
	if err != nil {
		return domain.BotAction{}, err
	}

	definition, ok := a.registry.Definition(resolved.Handler)
	if !ok {
		return domain.BotAction{}, fmt.Errorf("%w: %s", domain.ErrUnknownHandler, resolved.Handler)
	}

	if definition.Unique {
		existing, err := a.store.ActionsForThread(ctx, threadID)
		if err != nil {
			return domain.BotAction{}, fmt.Errorf("error loading bot actions: %w", err)
		}

		for _, action := range existing {
			if action.Handler == resolved.Handler {
				l.Debug().Str("handler", resolved.Handler).Msg("unique handler already attached")
				return domain.BotAction{}, domain.NewValidationError(domain.FieldHandler, uniqueHandler)
			}
		}
	}

	id, err := uuid.NewV4()
	if err != nil {
		return domain.BotAction{}, fmt.Errorf("error generating action id: %w", err)
	}

	action := domain.BotAction{
		ResolvedAction: resolved,
		ID:             id.String(),
		ThreadID:       threadID,
		CreatedAt:      a.now().UTC(),
	}

	if err := a.store.SaveAction(ctx, action); err != nil {
		return domain.BotAction{}, fmt.Errorf("error saving bot action: %w", err)
	}

	l.Info().Str("action", action.ID).Str("handler", action.Handler).Msg("bot action added")

	return action, nil
}

func (a *Actions) List(ctx context.Context, threadID string) ([]domain.BotAction, error) {
	return a.store.ActionsForThread(ctx, threadID)
}

func (a *Actions) Remove(ctx context.Context, threadID, actionID string) error {
	if err := a.store.DeleteAction(ctx, threadID, actionID); err != nil {
		return fmt.Errorf("error removing bot action %s: %w", actionID, err)
	}

	return nil
}
