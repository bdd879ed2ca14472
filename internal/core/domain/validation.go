package domain

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Rules maps a field to its rule tokens. A "field.*" key applies its rules to every element of a list field.
//
// Supported tokens: required, nullable, string, text (a string or a list of strings), integer, numeric,
// boolean, array, min:N, max:N, between:A,B and in:a,b,c.
type Rules map[string][]string

const (
	FieldHandler   = "handler"
	FieldMatch     = "match"
	FieldTriggers  = "triggers"
	FieldCooldown  = "cooldown"
	FieldAdminOnly = "admin_only"
	FieldEnabled   = "enabled"
	FieldName      = "name"
)

// BaseActionRules is the ruleset every bot action is validated against before handler rules are merged in.
func BaseActionRules() Rules {
	methods := make([]string, 0, len(matchMethods))
	for _, m := range MatchMethods() {
		methods = append(methods, string(m))
	}

	return Rules{
		FieldMatch:     {"required", "string", "in:" + strings.Join(methods, ",")},
		FieldCooldown:  {"required", "integer", fmt.Sprintf("between:0,%d", MaxCooldown)},
		FieldAdminOnly: {"required", "boolean"},
		FieldEnabled:   {"required", "boolean"},
		FieldTriggers:  {"required", "text"},
	}
}

// Merge returns a copy of r with the rules of other taking precedence on key collision.
func (r Rules) Merge(other Rules) Rules {
	merged := make(Rules, len(r)+len(other))
	maps.Copy(merged, r)
	maps.Copy(merged, other)

	return merged
}

// Without returns a copy of r without the given fields.
func (r Rules) Without(fields ...string) Rules {
	out := maps.Clone(r)
	if out == nil {
		out = Rules{}
	}

	for _, field := range fields {
		delete(out, field)
	}

	return out
}

// Check rejects unknown tokens and malformed arguments.
func (r Rules) Check() error {
	for field, tokens := range r {
		for _, token := range tokens {
			name, arg, hasArg := strings.Cut(token, ":")

			switch name {
			case "required", "nullable", "string", "text", "integer", "numeric", "boolean", "array":
				if hasArg {
					return fmt.Errorf("%w: %q on field %q takes no argument", ErrInvalidRule, token, field)
				}
			case "min", "max":
				if _, err := strconv.ParseFloat(arg, 64); err != nil {
					return fmt.Errorf("%w: %q on field %q", ErrInvalidRule, token, field)
				}
			case "between":
				if _, _, err := parseBetween(arg); err != nil {
					return fmt.Errorf("%w: %q on field %q", ErrInvalidRule, token, field)
				}
			case "in":
				if !hasArg {
					return fmt.Errorf("%w: %q on field %q needs options", ErrInvalidRule, token, field)
				}
			default:
				return fmt.Errorf("%w: %q on field %q", ErrInvalidRule, token, field)
			}
		}
	}

	return nil
}

// ValidationError collects every failing field of a submission.
type ValidationError struct {
	Fields map[string][]string `json:"errors"`
}

func NewValidationError(field, message string) *ValidationError {
	e := &ValidationError{Fields: make(map[string][]string)}
	e.add(field, message)

	return e
}

func (e *ValidationError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+strings.Join(e.Fields[key], " "))
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

func (e *ValidationError) add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

type failure struct {
	rule    string
	message string
}

// Validate checks data against rules and returns the validated subset of data: every submitted field that
// has a rule. Custom messages are looked up by "field.rule", then by "field", using the rule key as written.
func Validate(data map[string]any, rules Rules, messages map[string]string) (map[string]any, error) {
	validated := make(map[string]any)
	verr := &ValidationError{Fields: make(map[string][]string)}

	for _, field := range slices.Sorted(maps.Keys(rules)) {
		tokens := rules[field]

		if parent, ok := strings.CutSuffix(field, ".*"); ok {
			value, present := data[parent]
			list, isList := AsList(value)
			if !present || !isList {
				continue
			}

			for i, item := range list {
				key := fmt.Sprintf("%s.%d", parent, i)
				for _, f := range checkValue(key, item, true, tokens) {
					verr.add(key, customMessage(messages, field, f))
				}
			}

			validated[parent] = value
			continue
		}

		value, present := data[field]
		for _, f := range checkValue(field, value, present, tokens) {
			verr.add(field, customMessage(messages, field, f))
		}

		if present {
			validated[field] = value
		}
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}

	return validated, nil
}

func customMessage(messages map[string]string, field string, f failure) string {
	if msg, ok := messages[field+"."+f.rule]; ok {
		return msg
	}

	if msg, ok := messages[field]; ok {
		return msg
	}

	return f.message
}

func checkValue(field string, value any, present bool, tokens []string) []failure {
	label := strings.ReplaceAll(field, "_", " ")

	if slices.Contains(tokens, "nullable") && value == nil {
		return nil
	}

	if !present || isEmpty(value) {
		if slices.Contains(tokens, "required") {
			return []failure{{"required", fmt.Sprintf("The %s field is required.", label)}}
		}

		return nil
	}

	numeric := slices.Contains(tokens, "integer") || slices.Contains(tokens, "numeric")

	var failures []failure
	for _, token := range tokens {
		name, arg, _ := strings.Cut(token, ":")

		switch name {
		case "string":
			if _, ok := value.(string); !ok {
				failures = append(failures, failure{name, fmt.Sprintf("The %s must be a string.", label)})
			}
		case "text":
			if !isText(value) {
				failures = append(failures, failure{name, fmt.Sprintf("The %s must be text or a list of text.", label)})
			}
		case "integer":
			if _, ok := ToInt(value); !ok {
				failures = append(failures, failure{name, fmt.Sprintf("The %s must be an integer.", label)})
			}
		case "numeric":
			if _, ok := toFloat(value); !ok {
				failures = append(failures, failure{name, fmt.Sprintf("The %s must be a number.", label)})
			}
		case "boolean":
			if _, ok := ToBool(value); !ok {
				failures = append(failures, failure{name, fmt.Sprintf("The %s field must be true or false.", label)})
			}
		case "array":
			_, isList := AsList(value)
			_, isMap := value.(map[string]any)
			if !isList && !isMap {
				failures = append(failures, failure{name, fmt.Sprintf("The %s must be an array.", label)})
			}
		case "min", "max", "between":
			size, unit, ok := sizeOf(value, numeric)
			if !ok {
				continue
			}

			if msg := checkSize(name, arg, size, label, unit); msg != "" {
				failures = append(failures, failure{name, msg})
			}
		case "in":
			if !slices.Contains(strings.Split(arg, ","), fmt.Sprint(value)) {
				failures = append(failures, failure{name, fmt.Sprintf("The selected %s is invalid.", label)})
			}
		}
	}

	return failures
}

func checkSize(rule, arg string, size float64, label, unit string) string {
	suffix := ""
	if unit != "" {
		suffix = " " + unit
	}

	switch rule {
	case "min":
		limit, _ := strconv.ParseFloat(arg, 64)
		if size < limit {
			return fmt.Sprintf("The %s must be at least %s%s.", label, arg, suffix)
		}
	case "max":
		limit, _ := strconv.ParseFloat(arg, 64)
		if size > limit {
			return fmt.Sprintf("The %s may not be greater than %s%s.", label, arg, suffix)
		}
	case "between":
		lo, hi, _ := parseBetween(arg)
		if size < lo || size > hi {
			from, to, _ := strings.Cut(arg, ",")
			return fmt.Sprintf("The %s must be between %s and %s%s.", label, from, to, suffix)
		}
	}

	return ""
}

func parseBetween(arg string) (float64, float64, error) {
	from, to, ok := strings.Cut(arg, ",")
	if !ok {
		return 0, 0, fmt.Errorf("between needs two bounds, got %q", arg)
	}

	lo, err := strconv.ParseFloat(from, 64)
	if err != nil {
		return 0, 0, err
	}

	hi, err := strconv.ParseFloat(to, 64)
	if err != nil {
		return 0, 0, err
	}

	return lo, hi, nil
}

func sizeOf(value any, numeric bool) (float64, string, bool) {
	if numeric {
		if f, ok := toFloat(value); ok {
			return f, "", true
		}
	}

	switch v := value.(type) {
	case string:
		return float64(utf8.RuneCountInString(v)), "characters", true
	case map[string]any:
		return float64(len(v)), "items", true
	}

	if list, ok := AsList(value); ok {
		return float64(len(list)), "items", true
	}

	return 0, "", false
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case map[string]any:
		return len(v) == 0
	}

	if list, ok := AsList(value); ok {
		return len(list) == 0
	}

	return false
}

// isText accepts a string or a list holding only strings.
func isText(value any) bool {
	if _, ok := value.(string); ok {
		return true
	}

	list, ok := AsList(value)
	if !ok {
		return false
	}

	for _, item := range list {
		if _, ok := item.(string); !ok {
			return false
		}
	}

	return true
}

// AsList converts decoded JSON or literal string lists to []any.
func AsList(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		list := make([]any, len(v))
		for i, s := range v {
			list[i] = s
		}
		return list, true
	default:
		return nil, false
	}
}

// ToInt converts integers, integral floats and numeric strings to int.
func ToInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		i, err := v.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		return i, err == nil
	default:
		return 0, false
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}

	if i, ok := ToInt(value); ok {
		return float64(i), true
	}

	return 0, false
}

// ToBool accepts true, false, 1, 0, "1" and "0".
func ToBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch v {
		case "1":
			return true, true
		case "0":
			return false, true
		}
		return false, false
	}

	if i, ok := ToInt(value); ok && (i == 0 || i == 1) {
		return i == 1, true
	}

	return false, false
}

// BotSettings is the validated configuration of a bot within a thread.
type BotSettings struct {
	Name     string `json:"name"`
	Enabled  bool   `json:"enabled"`
	Cooldown int    `json:"cooldown"`
}

func botSettingsRules() Rules {
	return Rules{
		FieldName:     {"required", "string", "min:2"},
		FieldEnabled:  {"required", "boolean"},
		FieldCooldown: {"required", "integer", fmt.Sprintf("between:0,%d", MaxCooldown)},
	}
}

// ValidateBotSettings validates a submitted bot name, enabled flag and cooldown.
func ValidateBotSettings(data map[string]any) (BotSettings, error) {
	validated, err := Validate(data, botSettingsRules(), nil)
	if err != nil {
		return BotSettings{}, err
	}

	enabled, _ := ToBool(validated[FieldEnabled])
	cooldown, _ := ToInt(validated[FieldCooldown])

	return BotSettings{
		Name:     strings.TrimSpace(validated[FieldName].(string)),
		Enabled:  enabled,
		Cooldown: cooldown,
	}, nil
}
