package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

type Author string

const (
	User   Author = "user"
	System Author = "system"
)

type Prompt struct {
	Prompt string
	Author Author
	Model  Model
}

type Model struct {
	Keyword    string `json:"keyword"`
	Identifier string `json:"identifier"`
}

type ModelResponse struct {
	Response string
	Metadata ResponseMetadata
}

type ResponseMetadata struct {
	Model            string
	CompletionTokens int
	TotalTokens      int
}

type Action string

const (
	Typing Action = "typing"
)

type MessageType int

const (
	TypeMessage              MessageType = 0
	TypeImage                MessageType = 1
	TypeDocument             MessageType = 2
	TypeAudio                MessageType = 3
	TypeJoinedWithInvite     MessageType = 88
	TypeVideoCall            MessageType = 90
	TypeGroupAvatarChanged   MessageType = 91
	TypeThreadArchived       MessageType = 92
	TypeGroupCreated         MessageType = 93
	TypeGroupRenamed         MessageType = 94
	TypeDemotedAdmin         MessageType = 95
	TypePromotedAdmin        MessageType = 96
	TypeParticipantLeftGroup MessageType = 97
	TypeParticipantRemoved   MessageType = 98
	TypeParticipantsAdded    MessageType = 99
	TypeBotAdded             MessageType = 100
	TypeBotRenamed           MessageType = 101
	TypeBotAvatarChanged     MessageType = 102
	TypeBotRemoved           MessageType = 103
)

// IsSystem reports whether messages of this type carry a platform event instead of user content.
func (t MessageType) IsSystem() bool {
	return t >= TypeJoinedWithInvite
}

// OwnerRef identifies a messenger provider (user, bot, ...) by its type and key.
type OwnerRef struct {
	ID   string `json:"owner_id"`
	Type string `json:"owner_type"`
}

func (o OwnerRef) IsZero() bool {
	return o.ID == "" && o.Type == ""
}

func (o OwnerRef) String() string {
	return o.Type + ":" + o.ID
}

// UnmarshalJSON accepts both numeric and string owner keys.
func (o *OwnerRef) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID   json.RawMessage `json:"owner_id"`
		Type string          `json:"owner_type"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	o.Type = raw.Type
	o.ID = ""

	if len(raw.ID) == 0 || string(raw.ID) == "null" {
		return nil
	}

	var id string
	if err := json.Unmarshal(raw.ID, &id); err == nil {
		o.ID = id
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(raw.ID, &num); err != nil {
		return fmt.Errorf("invalid owner_id %s: %w", raw.ID, err)
	}

	o.ID = num.String()

	return nil
}

type Provider struct {
	Ref  OwnerRef `json:"ref"`
	Name string   `json:"name"`
}

const ghostName = "Ghost Profile"

// GhostProvider stands in for participants that can no longer be resolved.
func GhostProvider() Provider {
	return Provider{Ref: OwnerRef{ID: "ghost", Type: "ghost"}, Name: ghostName}
}

type Thread struct {
	ID       string `json:"id"`
	Subject  string `json:"subject"`
	Group    bool   `json:"group"`
	ChatBots bool   `json:"chat_bots"`
}

type Participant struct {
	ThreadID string   `json:"thread_id"`
	Owner    Provider `json:"owner"`
	Admin    bool     `json:"admin"`
}

type Call struct {
	ID           string     `json:"id"`
	ThreadID     string     `json:"thread_id"`
	Video        bool       `json:"video"`
	Participants []OwnerRef `json:"participants"`
}

type Message struct {
	ID       string      `json:"id"`
	ThreadID string      `json:"thread_id"`
	Owner    OwnerRef    `json:"owner"`
	Username string      `json:"username"`
	Type     MessageType `json:"type"`
	Body     string      `json:"body"`
}

// ResolvedAction is the validated, normalized configuration of a bot action.
type ResolvedAction struct {
	Handler   string      `json:"handler"`
	Match     MatchMethod `json:"match"`
	Triggers  string      `json:"triggers"`
	AdminOnly bool        `json:"admin_only"`
	Cooldown  int         `json:"cooldown"`
	Enabled   bool        `json:"enabled"`
	Payload   *string     `json:"payload"`
}

// BotAction is a ResolvedAction attached to a thread.
type BotAction struct {
	ResolvedAction

	ID        string    `json:"id"`
	ThreadID  string    `json:"thread_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (a BotAction) TriggerSet() TriggerSet {
	return ParseTriggers(a.Triggers)
}

func (a BotAction) CooldownKey() string {
	return "bot_action:" + a.ID + ":cooldown"
}

func (a BotAction) CooldownDuration() time.Duration {
	return time.Duration(a.Cooldown) * time.Second
}

// ParseID converts a platform message or chat key to an integer, as needed by transports with numeric IDs.
func ParseID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}
