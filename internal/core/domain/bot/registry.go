package bot

import (
	"fmt"
	"slices"

	"messengerbots/internal/core/domain"
	"messengerbots/internal/core/port"

	"github.com/rs/zerolog/log"
)

type registration struct {
	factory    port.HandlerFactory
	definition domain.Definition
}

// Registry maps handler identities to their factories. Handlers are registered at startup; lookups afterwards
// may happen concurrently.
type Registry struct {
	handlers map[string]registration
	order    []string
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]registration)}
}

func (r *Registry) Register(factory port.HandlerFactory, overwrite bool) error {
	if r.handlers == nil {
		r.handlers = make(map[string]registration)
	}

	handler := factory()
	definition := handler.Definition()

	if err := definition.Check(); err != nil {
		return err
	}

	if err := handler.Rules().Check(); err != nil {
		return fmt.Errorf("bot handler %q: %w", definition.Identity, err)
	}

	_, exists := r.handlers[definition.Identity]
	if exists && !overwrite {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateHandler, definition.Identity)
	}

	if owner, taken := r.aliasOwner(definition.Identity); taken && owner != definition.Identity {
		return fmt.Errorf("%w: %q is used by %s", domain.ErrDuplicateAlias, definition.Identity, owner)
	}

	seen := make(map[string]struct{}, len(definition.Aliases))
	for _, alias := range definition.Aliases {
		if _, dup := seen[alias]; dup {
			return fmt.Errorf("%w: %q listed twice by %s", domain.ErrDuplicateAlias, alias, definition.Identity)
		}
		seen[alias] = struct{}{}

		if owner, taken := r.aliasOwner(alias); taken && owner != definition.Identity {
			return fmt.Errorf("%w: %q is used by %s", domain.ErrDuplicateAlias, alias, owner)
		}
	}

	log.Info().
		Str("handler", definition.Identity).
		Strs("aliases", definition.Aliases).
		Bool("overwrite", exists).
		Msg("adding bot handler to registry")

	if !exists {
		r.order = append(r.order, definition.Identity)
	}

	r.handlers[definition.Identity] = registration{factory: factory, definition: definition}

	return nil
}

// aliasOwner returns the identity claiming name, either as its identity or as one of its aliases.
func (r *Registry) aliasOwner(name string) (string, bool) {
	for _, identity := range r.order {
		if identity == name {
			return identity, true
		}

		if slices.Contains(r.handlers[identity].definition.Aliases, name) {
			return identity, true
		}
	}

	return "", false
}

func (r *Registry) ResolveIdentity(identityOrAlias string) (string, bool) {
	if _, ok := r.handlers[identityOrAlias]; ok {
		return identityOrAlias, true
	}

	for _, identity := range r.order {
		if slices.Contains(r.handlers[identity].definition.Aliases, identityOrAlias) {
			return identity, true
		}
	}

	return "", false
}

func (r *Registry) IsValid(identityOrAlias string) bool {
	_, ok := r.ResolveIdentity(identityOrAlias)
	return ok
}

func (r *Registry) ListAliases() []string {
	aliases := make([]string, 0, len(r.order))
	for _, identity := range r.order {
		aliases = append(aliases, r.handlers[identity].definition.Aliases...)
	}

	return aliases
}

// Identities returns every registered identity in registration order.
func (r *Registry) Identities() []string {
	return slices.Clone(r.order)
}

// Definitions returns the definition of every registered handler in registration order.
func (r *Registry) Definitions() []domain.Definition {
	definitions := make([]domain.Definition, 0, len(r.order))
	for _, identity := range r.order {
		definitions = append(definitions, r.handlers[identity].definition)
	}

	return definitions
}

func (r *Registry) Definition(identityOrAlias string) (domain.Definition, bool) {
	identity, ok := r.ResolveIdentity(identityOrAlias)
	if !ok {
		return domain.Definition{}, false
	}

	return r.handlers[identity].definition, true
}

// Activate builds a fresh handler instance. The instance belongs to the caller; the registry keeps no
// reference to it.
func (r *Registry) Activate(identityOrAlias string) (port.Handler, domain.Definition, error) {
	log.Debug().Str("handler", identityOrAlias).Msg("activating bot handler")

	identity, ok := r.ResolveIdentity(identityOrAlias)
	if !ok {
		return nil, domain.Definition{}, fmt.Errorf("%w: %s", domain.ErrUnknownHandler, identityOrAlias)
	}

	reg := r.handlers[identity]

	return reg.factory(), reg.definition, nil
}
