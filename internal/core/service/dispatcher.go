package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"messengerbots/internal/core/domain"
	"messengerbots/internal/core/port"

	"github.com/rs/zerolog/log"
)

// Dispatcher runs the bot actions of a thread whose triggers match an incoming message.
type Dispatcher struct {
	actions   port.ActionStore
	registry  port.HandlerRegistry
	cooldowns port.CooldownStore
	recorder  port.ActionRecorder
}

type DispatcherParams struct {
	Actions   port.ActionStore
	Registry  port.HandlerRegistry
	Cooldowns port.CooldownStore
	Recorder  port.ActionRecorder
}

func NewDispatcher(p DispatcherParams) *Dispatcher {
	return &Dispatcher{
		actions:   p.Actions,
		registry:  p.Registry,
		cooldowns: p.Cooldowns,
		recorder:  p.Recorder,
	}
}

// Dispatch runs every enabled matching action. Failing actions do not stop the remaining ones; their errors are
// joined and returned.
func (d *Dispatcher) Dispatch(ctx context.Context, thread domain.Thread, message domain.Message, admin bool) error {
	l := log.With().
		Str("threadId", thread.ID).
		Str("messageId", message.ID).
		Str("func", "Dispatch").
		Logger()

	if !thread.ChatBots || message.Type.IsSystem() || strings.TrimSpace(message.Body) == "" {
		return nil
	}

	actions, err := d.actions.ActionsForThread(ctx, thread.ID)
	if err != nil {
		return fmt.Errorf("error loading bot actions: %w", err)
	}

	var errs []error
	for _, action := range actions {
		if !action.Enabled {
			continue
		}

		trigger, ok := domain.MatchTrigger(message.Body, action.TriggerSet(), action.Match)
		if !ok {
			continue
		}

		al := l.With().Str("action", action.ID).Str("handler", action.Handler).Str("trigger", trigger).Logger()

		if action.AdminOnly && !admin {
			al.Debug().Msg("skipping admin only action")
			continue
		}

		active, err := d.cooldowns.Active(ctx, action.CooldownKey())
		if err != nil {
			errs = append(errs, fmt.Errorf("error checking cooldown of action %s: %w", action.ID, err))
			continue
		}

		if active {
			al.Debug().Msg("action on cooldown")
			continue
		}

		al.Info().Msg("triggering bot action")

		if err := d.run(ctx, thread, action, message, trigger); err != nil {
			al.Warn().Err(err).Msg("bot action failed")
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (d *Dispatcher) run(
	ctx context.Context, thread domain.Thread, action domain.BotAction, message domain.Message, trigger string) error {
	handler, _, err := d.registry.Activate(action.Handler)
	if err != nil {
		return fmt.Errorf("action %s: %w", action.ID, err)
	}

	handler.SetContext(thread, action, message, trigger)

	err = handler.Handle(ctx)
	if d.recorder != nil {
		d.recorder.RecordAction(action.Handler, err)
	}

	if err != nil {
		if !errors.Is(err, domain.ErrHandlerExecution) {
			err = fmt.Errorf("%w: %w", domain.ErrHandlerExecution, err)
		}

		return fmt.Errorf("action %s: %w", action.ID, err)
	}

	if handler.ShouldReleaseCooldown() || action.Cooldown == 0 {
		return nil
	}

	if err := d.cooldowns.Start(ctx, action.CooldownKey(), action.CooldownDuration()); err != nil {
		log.Warn().Err(err).Str("action", action.ID).Msg("failed to start action cooldown")
	}

	return nil
}
