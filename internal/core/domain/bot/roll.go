package bot

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"

	"messengerbots/internal/core/domain"
	"messengerbots/internal/core/port"

	"github.com/rs/zerolog/log"
)

const (
	maxDice  = 20
	maxSides = 1000
	rollHelp = "usage: !roll NdM, e.g. !roll 2d6 (up to 20 dice with 2 to 1000 sides)"
)

var dicePattern = regexp.MustCompile(`^(\d*)d(\d+)$`)

// Roll rolls dice in NdM notation, defaulting to a single six-sided die.
type Roll struct {
	Base

	textSender port.TextSender
	roll       func(sides int) int
}

func NewRoll(sender port.TextSender) *Roll {
	return &Roll{
		textSender: sender,
		roll:       func(sides int) int { return rand.IntN(sides) + 1 },
	}
}

func NewRollFactory(sender port.TextSender) port.HandlerFactory {
	return func() port.Handler { return NewRoll(sender) }
}

func (r *Roll) Definition() domain.Definition {
	return domain.Definition{
		Identity:    "roll",
		Aliases:     []string{"roll", "dice"},
		Name:        "Roll",
		Description: "Rolls dice, e.g. !roll 2d6.",
		Unique:      true,
		Match:       domain.MatchStartsWithCaseless,
		Triggers:    []string{"!roll", "!dice"},
	}
}

func (r *Roll) Handle(ctx context.Context) error {
	l := log.With().
		Str("messageId", r.Message.ID).
		Str("threadId", r.Message.ThreadID).
		Str("handler", "roll").
		Logger()

	notation := "1d6"
	if words := r.ParsedWords(true); len(words) > 0 {
		notation = words[0]
	}

	text, err := r.rollNotation(notation)
	if err != nil {
		l.Debug().Err(err).Str("notation", notation).Msg("invalid dice")
		r.ReleaseCooldown()
		text = rollHelp
	}

	if _, err := r.textSender.SendMessageReply(ctx, &r.Message, text); err != nil {
		r.ReleaseCooldown()
		return executionError("sending roll", err)
	}

	return nil
}

func (r *Roll) rollNotation(notation string) (string, error) {
	groups := dicePattern.FindStringSubmatch(notation)
	if groups == nil {
		return "", fmt.Errorf("not in NdM notation: %q", notation)
	}

	count := 1
	if groups[1] != "" {
		count, _ = strconv.Atoi(groups[1])
	}

	sides, _ := strconv.Atoi(groups[2])

	if count < 1 || count > maxDice || sides < 2 || sides > maxSides {
		return "", fmt.Errorf("dice out of range: %q", notation)
	}

	results := make([]string, count)
	total := 0
	for i := range results {
		n := r.roll(sides)
		total += n
		results[i] = strconv.Itoa(n)
	}

	if count == 1 {
		return fmt.Sprintf("🎲 %dd%d: %d", count, sides, total), nil
	}

	return fmt.Sprintf("🎲 %dd%d: %s = %d", count, sides, strings.Join(results, " + "), total), nil
}
