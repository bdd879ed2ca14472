package domain

// MatchMethod selects how a trigger is compared against a message.
type MatchMethod string

const (
	MatchContains            MatchMethod = "contains"
	MatchContainsCaseless    MatchMethod = "contains-caseless"
	MatchContainsAny         MatchMethod = "contains-any"
	MatchContainsAnyCaseless MatchMethod = "contains-any-caseless"
	MatchExact               MatchMethod = "exact"
	MatchExactCaseless       MatchMethod = "exact-caseless"
	MatchStartsWith          MatchMethod = "starts-with"
	MatchStartsWithCaseless  MatchMethod = "starts-with-caseless"
)

type matchMethodEntry struct {
	method      MatchMethod
	description string
}

var matchMethods = []matchMethodEntry{
	{MatchContains, "The trigger can be anywhere within a message. Cannot be part of or inside another word."},
	{MatchContainsCaseless, `Same as "contains", but is case insensitive.`},
	{MatchContainsAny, "The trigger can be anywhere within a message, including inside another word."},
	{MatchContainsAnyCaseless, `Same as "contains any", but is case insensitive.`},
	{MatchExact, "The trigger must match the message exactly."},
	{MatchExactCaseless, `Same as "exact", but is case insensitive.`},
	{MatchStartsWith, "The trigger must be the lead phrase within the message. Cannot be part of or inside another word."},
	{MatchStartsWithCaseless, `Same as "starts with", but is case insensitive.`},
}

// MatchMethods lists every supported match method in catalog order.
func MatchMethods() []MatchMethod {
	methods := make([]MatchMethod, len(matchMethods))
	for i, m := range matchMethods {
		methods[i] = m.method
	}

	return methods
}

// MatchMethodDescriptions maps every match method to its human description.
func MatchMethodDescriptions() map[MatchMethod]string {
	descriptions := make(map[MatchMethod]string, len(matchMethods))
	for _, m := range matchMethods {
		descriptions[m.method] = m.description
	}

	return descriptions
}

func (m MatchMethod) IsValid() bool {
	for _, entry := range matchMethods {
		if entry.method == m {
			return true
		}
	}

	return false
}

func (m MatchMethod) Description() string {
	for _, entry := range matchMethods {
		if entry.method == m {
			return entry.description
		}
	}

	return ""
}

func (m MatchMethod) caseless() bool {
	switch m {
	case MatchContainsCaseless, MatchContainsAnyCaseless, MatchExactCaseless, MatchStartsWithCaseless:
		return true
	default:
		return false
	}
}
