package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"

	"messengerbots/internal/core/domain"
	"messengerbots/internal/core/port"

	"github.com/rs/zerolog/log"
)

const (
	// maxListedNames is how many names a rendered list shows before summarizing the rest.
	maxListedNames = 3
	// videoCallCutoff is the call size above which the video call summary truncates.
	videoCallCutoff = 4
)

var errMissingOwner = errors.New("missing owner reference")

// Renderer turns stored messages into the text shown in a thread feed.
type Renderer struct {
	directory port.Directory
	reporter  port.FaultReporter
}

func NewRenderer(directory port.Directory, reporter port.FaultReporter) *Renderer {
	return &Renderer{directory: directory, reporter: reporter}
}

// Render never fails: messages that cannot be rendered are reported and shown as domain.MessageError.
func (r *Renderer) Render(ctx context.Context, message domain.Message) string {
	text, err := r.render(ctx, message)
	if err != nil {
		log.Debug().Err(err).Str("messageId", message.ID).Int("type", int(message.Type)).Msg("failed to render message")
		r.reporter.Report(fmt.Errorf("rendering message %s: %w", message.ID, err))

		return domain.MessageError
	}

	return text
}

func (r *Renderer) render(ctx context.Context, message domain.Message) (string, error) {
	if !message.Type.IsSystem() {
		return html.EscapeString(message.Body), nil
	}

	switch message.Type {
	case domain.TypeVideoCall:
		return r.videoCall(ctx, message)
	case domain.TypeDemotedAdmin:
		return r.ownerEvent(ctx, message, "demoted ")
	case domain.TypePromotedAdmin:
		return r.ownerEvent(ctx, message, "promoted ")
	case domain.TypeParticipantRemoved:
		return r.ownerEvent(ctx, message, "removed ")
	case domain.TypeParticipantsAdded:
		return r.participantsAdded(ctx, message)
	default:
		return html.EscapeString(message.Body), nil
	}
}

func (r *Renderer) videoCall(ctx context.Context, message domain.Message) (string, error) {
	var body struct {
		CallID string `json:"call_id"`
	}

	if err := json.Unmarshal([]byte(message.Body), &body); err != nil {
		return "", fmt.Errorf("error decoding video call body: %w", err)
	}

	call, err := r.directory.VideoCall(ctx, message.ThreadID, body.CallID)
	if err != nil {
		return "", fmt.Errorf("error loading video call %s: %w", body.CallID, err)
	}

	if call == nil || len(call.Participants) <= 1 {
		return "was in a video call", nil
	}

	others, err := r.directory.CallParticipants(ctx, *call, message.Owner, maxListedNames)
	if err != nil {
		return "", fmt.Errorf("error loading video call %s participants: %w", call.ID, err)
	}

	if len(others) == 0 {
		return "was in a video call", nil
	}

	names := make([]string, len(others))
	for i, p := range others {
		names[i] = p.Name
	}

	if count := len(call.Participants); count > videoCallCutoff {
		return "was in a video call with " + truncatedNames(names, count-videoCallCutoff), nil
	}

	return "was in a video call with " + joinNames(names), nil
}

func (r *Renderer) ownerEvent(ctx context.Context, message domain.Message, verb string) (string, error) {
	var ref domain.OwnerRef
	if err := json.Unmarshal([]byte(message.Body), &ref); err != nil {
		return "", fmt.Errorf("error decoding participant: %w", err)
	}

	owner, err := r.locateContentOwner(ctx, message.ThreadID, ref)
	if err != nil {
		return "", err
	}

	return verb + owner.Name, nil
}

func (r *Renderer) participantsAdded(ctx context.Context, message domain.Message) (string, error) {
	var refs []domain.OwnerRef
	if err := json.Unmarshal([]byte(message.Body), &refs); err != nil {
		return "", fmt.Errorf("error decoding participants: %w", err)
	}

	if len(refs) == 0 {
		return "added", nil
	}

	shown := refs
	if len(refs) > maxListedNames {
		shown = refs[:maxListedNames]
	}

	names := make([]string, len(shown))
	for i, ref := range shown {
		owner, err := r.locateContentOwner(ctx, message.ThreadID, ref)
		if err != nil {
			return "", err
		}
		names[i] = owner.Name
	}

	if len(refs) > maxListedNames {
		return "added " + truncatedNames(names, len(refs)-maxListedNames), nil
	}

	return "added " + joinNames(names), nil
}

// locateContentOwner prefers the thread participant, then the provider itself, then the ghost provider.
func (r *Renderer) locateContentOwner(ctx context.Context, threadID string, ref domain.OwnerRef) (domain.Provider, error) {
	if ref.ID == "" || ref.Type == "" {
		return domain.Provider{}, fmt.Errorf("%w: %q", errMissingOwner, ref.String())
	}

	participant, err := r.directory.Participant(ctx, threadID, ref)
	if err != nil {
		return domain.Provider{}, fmt.Errorf("error loading participant %s: %w", ref, err)
	}

	if participant != nil {
		return participant.Owner, nil
	}

	provider, err := r.directory.Provider(ctx, ref)
	if err != nil {
		return domain.Provider{}, fmt.Errorf("error loading provider %s: %w", ref, err)
	}

	if provider != nil {
		return *provider, nil
	}

	return domain.GhostProvider(), nil
}

// joinNames lists names in prose: "A", "A and B", "A, B, and C".
func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}

func truncatedNames(names []string, remaining int) string {
	return fmt.Sprintf("%s, and %d others", strings.Join(names, ", "), remaining)
}
