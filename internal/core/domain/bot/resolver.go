package bot

import (
	"fmt"
	"slices"

	"messengerbots/internal/core/domain"
	"messengerbots/internal/core/port"

	"github.com/rs/zerolog/log"
)

// Resolver turns a submitted bot action into a ResolvedAction. It holds no per-call state and is safe for
// concurrent use once registration is done.
type Resolver struct {
	registry port.HandlerRegistry
}

func NewResolver(registry port.HandlerRegistry) *Resolver {
	return &Resolver{registry: registry}
}

var handlerRules = domain.Rules{domain.FieldHandler: {"required", "string"}}

func (r *Resolver) Resolve(submitted map[string]any) (domain.ResolvedAction, error) {
	l := log.With().Str("func", "Resolve").Logger()

	if _, err := domain.Validate(submitted, handlerRules, nil); err != nil {
		l.Debug().Err(err).Msg("missing handler")
		return domain.ResolvedAction{}, err
	}

	alias := submitted[domain.FieldHandler].(string)
	if !slices.Contains(r.registry.ListAliases(), alias) {
		l.Debug().Str("handler", alias).Msg("unknown handler alias")
		return domain.ResolvedAction{}, domain.NewValidationError(domain.FieldHandler, "The selected handler is invalid.")
	}

	handler, definition, err := r.registry.Activate(alias)
	if err != nil {
		return domain.ResolvedAction{}, err
	}

	l = l.With().Str("handler", definition.Identity).Logger()

	rules := domain.BaseActionRules().Merge(handler.Rules())

	match, fixedMatch := definition.FixedMatch()
	if fixedMatch {
		rules = rules.Without(domain.FieldMatch)
	}

	triggers, fixedTriggers := definition.FixedTriggers()
	if fixedTriggers {
		rules = rules.Without(domain.FieldTriggers)
	}

	validated, err := domain.Validate(submitted, rules, handler.ErrorMessages())
	if err != nil {
		l.Debug().Err(err).Msg("submitted action failed validation")
		return domain.ResolvedAction{}, err
	}

	if !fixedTriggers {
		list, _ := triggerList(validated[domain.FieldTriggers])
		triggers = domain.NormalizeTriggers(list...)
	}

	if !fixedMatch {
		method, _ := validated[domain.FieldMatch].(string)
		match = domain.MatchMethod(method)
	}

	adminOnly, _ := domain.ToBool(validated[domain.FieldAdminOnly])
	enabled, _ := domain.ToBool(validated[domain.FieldEnabled])
	cooldown, _ := domain.ToInt(validated[domain.FieldCooldown])

	base := domain.BaseActionRules()
	residual := make(map[string]any)
	for field, value := range validated {
		if _, isBase := base[field]; !isBase {
			residual[field] = value
		}
	}

	var payload *string
	if len(residual) > 0 {
		payload, err = handler.SerializePayload(residual)
		if err != nil {
			return domain.ResolvedAction{}, fmt.Errorf("error serializing payload for %s: %w", definition.Identity, err)
		}
	}

	return domain.ResolvedAction{
		Handler:   definition.Identity,
		Match:     match,
		Triggers:  triggers,
		AdminOnly: adminOnly,
		Cooldown:  cooldown,
		Enabled:   enabled,
		Payload:   payload,
	}, nil
}

func triggerList(value any) ([]string, bool) {
	if s, ok := value.(string); ok {
		return []string{s}, true
	}

	list, ok := domain.AsList(value)
	if !ok {
		return nil, false
	}

	triggers := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		triggers = append(triggers, s)
	}

	return triggers, true
}
