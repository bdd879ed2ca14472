package bot

import (
	"testing"

	"messengerbots/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolverRegistry(t *testing.T) *Registry {
	t.Helper()

	r := NewRegistry()
	require.NoError(t, r.Register(stubFactory(funDefinition()), false))
	require.NoError(t, r.Register(stubFactory(domain.Definition{
		Identity: "fixed",
		Aliases:  []string{"fixed"},
		Match:    domain.MatchExactCaseless,
		Triggers: []string{"x", " y"},
	}), false))
	require.NoError(t, r.Register(NewReplyFactory(&MockSender{}), false))
	require.NoError(t, r.Register(stubFactoryWithRules(
		domain.Definition{Identity: "strict", Aliases: []string{"strict"}},
		domain.Rules{domain.FieldCooldown: {"required", "integer", "between:10,20"}, "note": {"nullable", "string"}},
		map[string]string{"cooldown.between": "Pick 10 to 20 seconds."},
	), false))

	return r
}

func submission(handler string) map[string]any {
	return map[string]any{
		"handler":    handler,
		"match":      "contains",
		"triggers":   "a, b| c",
		"cooldown":   float64(30),
		"admin_only": false,
		"enabled":    true,
	}
}

func TestResolve(t *testing.T) {
	resolver := NewResolver(resolverRegistry(t))

	got, err := resolver.Resolve(submission("silly"))
	require.NoError(t, err)

	assert.Equal(t, domain.ResolvedAction{
		Handler:   "fun-handler",
		Match:     domain.MatchContains,
		Triggers:  "a|b|c",
		AdminOnly: false,
		Cooldown:  30,
		Enabled:   true,
		Payload:   nil,
	}, got)
}

func TestResolve_HandlerField(t *testing.T) {
	resolver := NewResolver(resolverRegistry(t))

	type TestCase struct {
		description string
		handler     any
		present     bool
	}

	testCases := []TestCase{
		{"missing", nil, false},
		{"empty", "", true},
		{"unknown alias", "missing", true},
		{"identity is not an alias", "fun-handler", true},
		{"not a string", float64(3), true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			data := submission("")
			delete(data, "handler")
			if testCase.present {
				data["handler"] = testCase.handler
			}

			_, err := resolver.Resolve(data)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.True(t, verr.Has("handler"))
		})
	}
}

func TestResolve_FixedOverrides(t *testing.T) {
	resolver := NewResolver(resolverRegistry(t))

	data := submission("fixed")
	data["match"] = "not-a-method"
	data["triggers"] = []any{"ignored"}

	got, err := resolver.Resolve(data)
	require.NoError(t, err)
	assert.Equal(t, "x|y", got.Triggers)
	assert.Equal(t, domain.MatchExactCaseless, got.Match)

	delete(data, "match")
	delete(data, "triggers")

	got, err = resolver.Resolve(data)
	require.NoError(t, err)
	assert.Equal(t, "x|y", got.Triggers)
	assert.Nil(t, got.Payload)
}

func TestResolve_Cooldown(t *testing.T) {
	resolver := NewResolver(resolverRegistry(t))

	type TestCase struct {
		description string
		cooldown    any
		wantErr     bool
	}

	testCases := []TestCase{
		{"zero", 0, false},
		{"upper bound", float64(900), false},
		{"numeric string", "45", false},
		{"over upper bound", 901, true},
		{"negative", -1, true},
		{"not a number", "soon", true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			data := submission("fun")
			data["cooldown"] = testCase.cooldown

			got, err := resolver.Resolve(data)

			if !testCase.wantErr {
				require.NoError(t, err)
				want, _ := domain.ToInt(testCase.cooldown)
				assert.Equal(t, want, got.Cooldown)
				return
			}

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.True(t, verr.Has("cooldown"))
		})
	}
}

func TestResolve_AggregatesFailures(t *testing.T) {
	resolver := NewResolver(resolverRegistry(t))

	_, err := resolver.Resolve(map[string]any{"handler": "fun", "match": "sometimes", "cooldown": 901})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	for _, field := range []string{"match", "cooldown", "admin_only", "enabled", "triggers"} {
		assert.True(t, verr.Has(field), "expected %s to fail", field)
	}
}

func TestResolve_TriggerTypeReportedWithOtherFailures(t *testing.T) {
	resolver := NewResolver(resolverRegistry(t))

	data := submission("fun")
	data["triggers"] = float64(5)
	data["cooldown"] = float64(901)

	_, err := resolver.Resolve(data)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"The triggers must be text or a list of text."}, verr.Fields["triggers"])
	assert.Equal(t, []string{"The cooldown must be between 0 and 900."}, verr.Fields["cooldown"])
}

func TestResolve_HandlerRulesTakePrecedence(t *testing.T) {
	resolver := NewResolver(resolverRegistry(t))

	_, err := resolver.Resolve(submission("strict"))

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Pick 10 to 20 seconds."}, verr.Fields["cooldown"])

	data := submission("strict")
	data["cooldown"] = 15
	data["note"] = "hello"
	data["unruled"] = "dropped"

	got, err := resolver.Resolve(data)
	require.NoError(t, err)
	assert.Equal(t, 15, got.Cooldown)
	require.NotNil(t, got.Payload)
	assert.JSONEq(t, `{"note":"hello"}`, *got.Payload)
}

func TestResolve_Payload(t *testing.T) {
	resolver := NewResolver(resolverRegistry(t))

	data := submission("reply")
	data["replies"] = []any{"hi", "hello"}

	got, err := resolver.Resolve(data)
	require.NoError(t, err)
	assert.Equal(t, "reply", got.Handler)
	require.NotNil(t, got.Payload)
	assert.JSONEq(t, `{"replies":["hi","hello"]}`, *got.Payload)

	data["replies"] = []any{}
	_, err = resolver.Resolve(data)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("replies"))

	data["replies"] = []any{"ok", 7}
	_, err = resolver.Resolve(data)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Replies must be text no longer than 500 characters."}, verr.Fields["replies.1"])
}

func TestResolve_Triggers(t *testing.T) {
	resolver := NewResolver(resolverRegistry(t))

	type TestCase struct {
		description string
		triggers    any
		want        string
		wantErr     bool
	}

	testCases := []TestCase{
		{"comma and pipe separated", "a, b| c", "a|b|c", false},
		{"list", []any{"a", "b", "c"}, "a|b|c", false},
		{"already canonical", "a|b|c", "a|b|c", false},
		{"list with separators", []string{"hi, hey", "yo"}, "hi|hey|yo", false},
		{"list with non string", []any{"a", 1}, "", true},
		{"number", float64(1), "", true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			data := submission("fun")
			data["triggers"] = testCase.triggers

			got, err := resolver.Resolve(data)

			if testCase.wantErr {
				var verr *domain.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.True(t, verr.Has("triggers"))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, testCase.want, got.Triggers)
		})
	}
}
