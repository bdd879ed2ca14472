package bot

import (
	"testing"

	"messengerbots/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func TestBase_ParsedMessage(t *testing.T) {
	type TestCase struct {
		description string
		body        string
		trigger     string
		lower       bool
		want        string
		wantOK      bool
	}

	testCases := []TestCase{
		{"strips leading trigger", "!chat What is Go?", "!chat", false, "What is Go?", true},
		{"strips trigger case insensitively", "!CHAT hi", "!chat", false, "hi", true},
		{"lowercases", "!chat Hello There", "!chat", true, "hello there", true},
		{"keeps body when trigger is not leading", "well hello there", "hello", false, "well hello there", true},
		{"nothing left", "  !chat  ", "!chat", false, "", false},
		{"no trigger", "  just text ", "", false, "just text", true},
		{"empty body", "", "x", false, "", false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			b := &Base{}
			b.SetContext(domain.Thread{}, domain.BotAction{}, domain.Message{Body: testCase.body}, testCase.trigger)

			got, ok := b.ParsedMessage(testCase.lower)

			assert.Equal(t, testCase.wantOK, ok)
			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestBase_ParsedWords(t *testing.T) {
	b := &Base{}
	b.SetContext(domain.Thread{}, domain.BotAction{}, domain.Message{Body: "!roll  2D6   now"}, "!roll")

	assert.Equal(t, []string{"2d6", "now"}, b.ParsedWords(true))

	b.SetContext(domain.Thread{}, domain.BotAction{}, domain.Message{Body: "!roll"}, "!roll")
	assert.Nil(t, b.ParsedWords(false))
}

func TestBase_Payload(t *testing.T) {
	b := &Base{}

	action := domain.BotAction{ResolvedAction: domain.ResolvedAction{Payload: strPtr(`{"test":true,"n":2}`)}}
	b.SetContext(domain.Thread{}, action, domain.Message{}, "")

	assert.Equal(t, true, b.PayloadValue("test"))
	assert.Equal(t, float64(2), b.PayloadValue("n"))
	assert.Nil(t, b.PayloadValue("missing"))

	b.SetContext(domain.Thread{}, domain.BotAction{}, domain.Message{}, "")
	assert.Nil(t, b.Payload())
	assert.Nil(t, b.PayloadValue("test"))

	broken := domain.BotAction{ResolvedAction: domain.ResolvedAction{Payload: strPtr(`{"test":`)}}
	b.SetContext(domain.Thread{}, broken, domain.Message{}, "")
	assert.Nil(t, b.Payload())
}

func TestBase_SerializePayload(t *testing.T) {
	b := &Base{}

	got, err := b.SerializePayload(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = b.SerializePayload(map[string]any{"test": true})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.JSONEq(t, `{"test":true}`, *got)

	_, err = b.SerializePayload(map[string]any{"bad": make(chan int)})
	require.Error(t, err)
}

func TestBase_Cooldown(t *testing.T) {
	b := &Base{}
	assert.False(t, b.ShouldReleaseCooldown())

	b.ReleaseCooldown()
	assert.True(t, b.ShouldReleaseCooldown())

	b.SetContext(domain.Thread{}, domain.BotAction{}, domain.Message{}, "")
	assert.False(t, b.ShouldReleaseCooldown())
}
