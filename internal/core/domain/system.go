package domain

import (
	"encoding/json"
	"fmt"
)

// SystemMessage is a platform event ready to be stored as a message in a thread.
type SystemMessage struct {
	ThreadID string
	Owner    OwnerRef
	Body     string
	Type     MessageType
}

// Message converts the event into a storable message record.
func (s SystemMessage) Message(id string) Message {
	return Message{
		ID:       id,
		ThreadID: s.ThreadID,
		Owner:    s.Owner,
		Type:     s.Type,
		Body:     s.Body,
	}
}

type videoCallBody struct {
	CallID string `json:"call_id"`
}

func NewJoinedWithInvite(thread Thread, owner OwnerRef) SystemMessage {
	return SystemMessage{ThreadID: thread.ID, Owner: owner, Body: "joined", Type: TypeJoinedWithInvite}
}

func NewVideoCall(thread Thread, owner OwnerRef, call Call) (SystemMessage, error) {
	body, err := json.Marshal(videoCallBody{CallID: call.ID})
	if err != nil {
		return SystemMessage{}, fmt.Errorf("error encoding video call body: %w", err)
	}

	return SystemMessage{ThreadID: thread.ID, Owner: owner, Body: string(body), Type: TypeVideoCall}, nil
}

func NewGroupAvatarChanged(thread Thread, owner OwnerRef) SystemMessage {
	return SystemMessage{ThreadID: thread.ID, Owner: owner, Body: "updated the avatar", Type: TypeGroupAvatarChanged}
}

func NewThreadArchived(thread Thread, owner OwnerRef) SystemMessage {
	body := "archived the conversation"
	if thread.Group {
		body = "archived the group"
	}

	return SystemMessage{ThreadID: thread.ID, Owner: owner, Body: body, Type: TypeThreadArchived}
}

func NewGroupCreated(thread Thread, owner OwnerRef, subject string) SystemMessage {
	return SystemMessage{ThreadID: thread.ID, Owner: owner, Body: "created " + subject, Type: TypeGroupCreated}
}

func NewGroupRenamed(thread Thread, owner OwnerRef, subject string) SystemMessage {
	return SystemMessage{
		ThreadID: thread.ID,
		Owner:    owner,
		Body:     "renamed the group to " + subject,
		Type:     TypeGroupRenamed,
	}
}

func NewParticipantDemoted(thread Thread, owner OwnerRef, participant Participant) (SystemMessage, error) {
	return participantMessage(thread, owner, participant, TypeDemotedAdmin)
}

func NewParticipantPromoted(thread Thread, owner OwnerRef, participant Participant) (SystemMessage, error) {
	return participantMessage(thread, owner, participant, TypePromotedAdmin)
}

func NewGroupLeft(thread Thread, owner OwnerRef) SystemMessage {
	return SystemMessage{ThreadID: thread.ID, Owner: owner, Body: "left", Type: TypeParticipantLeftGroup}
}

func NewRemovedFromGroup(thread Thread, owner OwnerRef, participant Participant) (SystemMessage, error) {
	return participantMessage(thread, owner, participant, TypeParticipantRemoved)
}

func NewParticipantsAdded(thread Thread, owner OwnerRef, participants []Participant) (SystemMessage, error) {
	refs := make([]OwnerRef, len(participants))
	for i, p := range participants {
		refs[i] = p.Owner.Ref
	}

	body, err := json.Marshal(refs)
	if err != nil {
		return SystemMessage{}, fmt.Errorf("error encoding participants: %w", err)
	}

	return SystemMessage{ThreadID: thread.ID, Owner: owner, Body: string(body), Type: TypeParticipantsAdded}, nil
}

func NewBotAdded(thread Thread, owner OwnerRef, botName string) SystemMessage {
	return SystemMessage{ThreadID: thread.ID, Owner: owner, Body: "added " + botName + " BOT", Type: TypeBotAdded}
}

func NewBotRenamed(thread Thread, owner OwnerRef, oldName, botName string) SystemMessage {
	return SystemMessage{
		ThreadID: thread.ID,
		Owner:    owner,
		Body:     fmt.Sprintf("renamed the BOT ( %s ) to %s", oldName, botName),
		Type:     TypeBotRenamed,
	}
}

func NewBotRemoved(thread Thread, owner OwnerRef, botName string) SystemMessage {
	return SystemMessage{ThreadID: thread.ID, Owner: owner, Body: "removed " + botName + " BOT", Type: TypeBotRemoved}
}

func participantMessage(thread Thread, owner OwnerRef, participant Participant, t MessageType) (SystemMessage, error) {
	body, err := json.Marshal(participant.Owner.Ref)
	if err != nil {
		return SystemMessage{}, fmt.Errorf("error encoding participant: %w", err)
	}

	return SystemMessage{ThreadID: thread.ID, Owner: owner, Body: string(body), Type: t}, nil
}
