package domain

import (
	"fmt"
	"strings"
)

// Definition describes a bot handler implementation. It is fixed for the lifetime of the process.
type Definition struct {
	Identity    string      `json:"identity"`
	Aliases     []string    `json:"alias"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Unique      bool        `json:"unique"`
	Match       MatchMethod `json:"match,omitempty"`
	Triggers    []string    `json:"triggers,omitempty"`
}

// FixedMatch returns the match method every action of this handler uses, if the handler fixes one.
func (d Definition) FixedMatch() (MatchMethod, bool) {
	return d.Match, d.Match != ""
}

// FixedTriggers returns the normalized triggers every action of this handler uses, if the handler fixes them.
func (d Definition) FixedTriggers() (string, bool) {
	if len(d.Triggers) == 0 {
		return "", false
	}

	return NormalizeTriggers(d.Triggers...), true
}

// Check reports malformed definitions.
func (d Definition) Check() error {
	if strings.TrimSpace(d.Identity) == "" {
		return fmt.Errorf("bot handler %q has no identity", d.Name)
	}

	if len(d.Aliases) == 0 {
		return fmt.Errorf("bot handler %q has no alias", d.Identity)
	}

	for _, alias := range d.Aliases {
		if strings.TrimSpace(alias) == "" {
			return fmt.Errorf("bot handler %q has an empty alias", d.Identity)
		}
	}

	if d.Match != "" && !d.Match.IsValid() {
		return fmt.Errorf("%w: %q on bot handler %q", ErrInvalidMatchMethod, d.Match, d.Identity)
	}

	return nil
}
