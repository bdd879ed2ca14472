package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTriggers(t *testing.T) {
	type TestCase struct {
		description string
		triggers    []string
		want        string
	}

	testCases := []TestCase{
		{
			description: "mixed separators and whitespace",
			triggers:    []string{"a, b| c"},
			want:        "a|b|c",
		},
		{
			description: "list of triggers",
			triggers:    []string{"a", "b", "c"},
			want:        "a|b|c",
		},
		{
			description: "already canonical",
			triggers:    []string{"a|b|c"},
			want:        "a|b|c",
		},
		{
			description: "list entries containing separators",
			triggers:    []string{"!hi, !hello", " !hey "},
			want:        "!hi|!hello|!hey",
		},
		{
			description: "inner spaces are kept",
			triggers:    []string{"good morning ,good night"},
			want:        "good morning|good night",
		},
		{
			description: "empty segments are kept",
			triggers:    []string{"a,,b"},
			want:        "a||b",
		},
		{
			description: "empty input",
			triggers:    nil,
			want:        "",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			got := NormalizeTriggers(testCase.triggers...)
			assert.Equal(t, testCase.want, got)

			assert.Equal(t, got, NormalizeTriggers(got), "normalizing twice must be stable")
		})
	}
}

func TestParseTriggers(t *testing.T) {
	assert.Nil(t, ParseTriggers(""))
	assert.Equal(t, TriggerSet{"a", "b", "c"}, ParseTriggers("a|b|c"))
	assert.Equal(t, "a|b|c", ParseTriggers("a| b |c").String())
}

func TestIsMatch(t *testing.T) {
	type TestCase struct {
		description string
		text        string
		triggers    TriggerSet
		method      MatchMethod
		want        bool
	}

	testCases := []TestCase{
		{"contains rejects trigger inside a word", "category", TriggerSet{"cat"}, MatchContains, false},
		{"contains matches a whole word", "a cat sat", TriggerSet{"cat"}, MatchContains, true},
		{"contains matches at start", "cat sat", TriggerSet{"cat"}, MatchContains, true},
		{"contains matches at end with punctuation", "look, a cat!", TriggerSet{"cat"}, MatchContains, true},
		{"contains finds a later bounded occurrence", "concat cat", TriggerSet{"cat"}, MatchContains, true},
		{"contains is case sensitive", "CAT", TriggerSet{"cat"}, MatchContains, false},
		{"contains matches phrases", "well hello there friend", TriggerSet{"hello there"}, MatchContains, true},
		{"contains any segment", "a dog", TriggerSet{"cat", "dog"}, MatchContains, true},
		{"contains rejects leading word glue", "hey!roll", TriggerSet{"!roll"}, MatchContains, false},
		{"contains caseless", "CAT", TriggerSet{"cat"}, MatchContainsCaseless, true},
		{"contains caseless keeps boundary", "CATEGORY", TriggerSet{"cat"}, MatchContainsCaseless, false},
		{"contains any inside word", "concatenate", TriggerSet{"cat"}, MatchContainsAny, true},
		{"contains any is case sensitive", "CONCATENATE", TriggerSet{"cat"}, MatchContainsAny, false},
		{"contains any caseless", "CONCATENATE", TriggerSet{"cat"}, MatchContainsAnyCaseless, true},
		{"exact", "!ping", TriggerSet{"!ping"}, MatchExact, true},
		{"exact ignores surrounding space", "  !ping ", TriggerSet{"!ping"}, MatchExact, true},
		{"exact rejects extra words", "!ping now", TriggerSet{"!ping"}, MatchExact, false},
		{"exact is case sensitive", "!PING", TriggerSet{"!ping"}, MatchExact, false},
		{"exact caseless", "!PING", TriggerSet{"!ping"}, MatchExactCaseless, true},
		{"starts with", "!roll 2d6", TriggerSet{"!roll"}, MatchStartsWith, true},
		{"starts with alone", "!roll", TriggerSet{"!roll"}, MatchStartsWith, true},
		{"starts with rejects larger lead word", "!rolling 2d6", TriggerSet{"!roll"}, MatchStartsWith, false},
		{"starts with rejects later position", "please !roll", TriggerSet{"!roll"}, MatchStartsWith, false},
		{"starts with is case sensitive", "!ROLL", TriggerSet{"!roll"}, MatchStartsWith, false},
		{"starts with caseless", "!ROLL d20", TriggerSet{"!roll"}, MatchStartsWithCaseless, true},
		{"empty text never matches", "", TriggerSet{"cat"}, MatchContainsAny, false},
		{"blank text never matches", "   ", TriggerSet{" "}, MatchContainsAny, false},
		{"empty trigger never matches", "anything", TriggerSet{""}, MatchContainsAny, false},
		{"unknown method never matches", "cat", TriggerSet{"cat"}, MatchMethod("regex"), false},
		{"unicode boundary", "ça va chat", TriggerSet{"chat"}, MatchContains, true},
		{"unicode letter glue", "échat", TriggerSet{"chat"}, MatchContains, false},
		{"caseless folds non-ascii letters", "ÇA VA", TriggerSet{"ça"}, MatchStartsWithCaseless, true},
		{"caseless text shorter than trigger", "CA", TriggerSet{"cat"}, MatchContainsAnyCaseless, false},
		{"triggers are literal text", "what? a.b", TriggerSet{"a.b"}, MatchContainsCaseless, true},
		{"dot is not a wildcard", "axb", TriggerSet{"a.b"}, MatchContainsAnyCaseless, false},
		{"caseless starts with after leading space", "  !Roll", TriggerSet{"!roll"}, MatchStartsWithCaseless, true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			assert.Equal(t, testCase.want, IsMatch(testCase.text, testCase.triggers, testCase.method))
		})
	}
}

func TestMatchTriggerReturnsMatchedSegment(t *testing.T) {
	trigger, ok := MatchTrigger("!dice 1d20", TriggerSet{"!roll", "!dice"}, MatchStartsWith)
	assert.True(t, ok)
	assert.Equal(t, "!dice", trigger)

	trigger, ok = MatchTrigger("nothing here", TriggerSet{"!roll"}, MatchStartsWith)
	assert.False(t, ok)
	assert.Empty(t, trigger)
}
