package domain

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TriggerSet is the ordered list of trigger segments an action reacts to.
type TriggerSet []string

var triggerSeparator = regexp.MustCompile(`[|,]`)

// NormalizeTriggers joins, splits on pipes and commas, and trims the given triggers into their canonical
// pipe-delimited form. Empty segments are kept so the result is stable when normalized again.
func NormalizeTriggers(triggers ...string) string {
	segments := triggerSeparator.Split(strings.Join(triggers, "|"), -1)
	for i, segment := range segments {
		segments[i] = strings.TrimSpace(segment)
	}

	return strings.Join(segments, "|")
}

// ParseTriggers splits a canonical trigger string back into its segments.
func ParseTriggers(triggers string) TriggerSet {
	if triggers == "" {
		return nil
	}

	segments := strings.Split(triggers, "|")
	for i, segment := range segments {
		segments[i] = strings.TrimSpace(segment)
	}

	return segments
}

func (t TriggerSet) String() string {
	return strings.Join(t, "|")
}

// IsMatch reports whether any trigger matches text under the given method.
func IsMatch(text string, triggers TriggerSet, method MatchMethod) bool {
	_, ok := MatchTrigger(text, triggers, method)
	return ok
}

// MatchTrigger returns the first trigger matching text under the given method.
func MatchTrigger(text string, triggers TriggerSet, method MatchMethod) (string, bool) {
	if strings.TrimSpace(text) == "" || !method.IsValid() {
		return "", false
	}

	for _, trigger := range triggers {
		if trigger == "" {
			continue
		}

		if matchTrigger(text, trigger, method) {
			return trigger, true
		}
	}

	return "", false
}

func matchTrigger(text, trigger string, method MatchMethod) bool {
	caseless := method.caseless()

	switch method {
	case MatchExact:
		return strings.TrimSpace(text) == trigger
	case MatchExactCaseless:
		return strings.EqualFold(strings.TrimSpace(text), trigger)
	case MatchContainsAny:
		return strings.Contains(text, trigger)
	case MatchContainsAnyCaseless:
		return containsAt(text, trigger, caseless, false)
	case MatchContains, MatchContainsCaseless:
		return containsAt(text, trigger, caseless, true)
	case MatchStartsWith, MatchStartsWithCaseless:
		text = strings.TrimLeftFunc(text, unicode.IsSpace)
		n, ok := prefixLen(text, trigger, caseless)
		return ok && boundaryAfter(text, n)
	default:
		return false
	}
}

// containsAt looks for trigger at every rune offset of text. With words set, the occurrence must not be glued
// to a neighbouring word character.
func containsAt(text, trigger string, caseless, words bool) bool {
	for start := 0; start < len(text); {
		if !words || boundaryBefore(text, start) {
			n, ok := prefixLen(text[start:], trigger, caseless)
			if ok && (!words || boundaryAfter(text, start+n)) {
				return true
			}
		}

		_, size := utf8.DecodeRuneInString(text[start:])
		start += max(size, 1)
	}

	return false
}

// prefixLen reports whether text starts with trigger and how many bytes of text the match covers.
func prefixLen(text, trigger string, caseless bool) (int, bool) {
	if !caseless {
		return len(trigger), strings.HasPrefix(text, trigger)
	}

	pos := 0
	for _, want := range trigger {
		if pos >= len(text) {
			return 0, false
		}

		got, size := utf8.DecodeRuneInString(text[pos:])
		if !foldEqual(got, want) {
			return 0, false
		}
		pos += size
	}

	return pos, true
}

// foldEqual compares runes under simple Unicode case folding, as strings.EqualFold does.
func foldEqual(a, b rune) bool {
	if a == b {
		return true
	}

	for r := unicode.SimpleFold(a); r != a; r = unicode.SimpleFold(r) {
		if r == b {
			return true
		}
	}

	return false
}

func boundaryBefore(text string, pos int) bool {
	if pos == 0 {
		return true
	}

	r, _ := utf8.DecodeLastRuneInString(text[:pos])
	return !isWordRune(r)
}

func boundaryAfter(text string, pos int) bool {
	if pos >= len(text) {
		return true
	}

	r, _ := utf8.DecodeRuneInString(text[pos:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
