package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"messengerbots/internal/core/domain"
	"messengerbots/internal/core/port"
	"messengerbots/internal/core/service"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Message feeds Telegram updates into the thread store and the bot action dispatcher.
type Message struct {
	dispatcher port.MessageDispatcher
	threads    port.ThreadStore
	renderer   port.MessageRenderer
	authorizer service.Authorizer
	timeout    time.Duration
	chatBots   bool
}

type MessageParams struct {
	Dispatcher port.MessageDispatcher
	Threads    port.ThreadStore
	Renderer   port.MessageRenderer
	Authorizer service.Authorizer
	Timeout    time.Duration
	// ChatBots is the bot setting of threads seen for the first time.
	ChatBots bool
}

func NewMessage(p MessageParams) *Message {
	return &Message{
		dispatcher: p.Dispatcher,
		threads:    p.Threads,
		renderer:   p.Renderer,
		authorizer: p.Authorizer,
		timeout:    p.Timeout,
		chatBots:   p.ChatBots,
	}
}

func (h *Message) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	threadID := strconv.FormatInt(msg.Chat.ID, 10)
	l := log.With().
		Str("threadId", threadID).
		Int("messageId", msg.ID).
		Logger()

	if !h.authorizer.IsAuthorized(ctx, threadID) {
		l.Debug().Msg("unauthorized chat")
		return
	}

	thread, err := h.thread(ctx, msg.Chat)
	if err != nil {
		l.Error().Err(err).Msg("failed to load thread")
		return
	}

	owner := providerFromUser(msg.From)
	if err := h.remember(ctx, thread, owner); err != nil {
		l.Warn().Err(err).Msg("failed to record participant")
	}

	event, ok, err := h.systemMessage(ctx, thread, owner.Ref, msg)
	if err != nil {
		l.Error().Err(err).Msg("failed to record system event")
		return
	}

	if ok {
		h.storeEvent(ctx, &l, event.Message(strconv.Itoa(msg.ID)))
		return
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}

	if text == "" {
		return
	}

	message := domain.Message{
		ID:       strconv.Itoa(msg.ID),
		ThreadID: threadID,
		Owner:    owner.Ref,
		Username: getUserNameOrFirstName(msg.From),
		Type:     domain.TypeMessage,
		Body:     text,
	}

	if err := h.threads.SaveMessage(ctx, message); err != nil {
		l.Warn().Err(err).Msg("failed to store message")
	}

	log.Debug().Str("message", text).Msg("received message")

	admin := h.authorizer.IsAdmin(owner.Ref.ID)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		if err := h.dispatcher.Dispatch(ctx, thread, message, admin); err != nil {
			l.Err(err).Msg("failed to run bot actions")
		}
	}()
}

func (h *Message) storeEvent(ctx context.Context, l *zerolog.Logger, message domain.Message) {
	if err := h.threads.SaveMessage(ctx, message); err != nil {
		l.Error().Err(err).Msg("failed to store system event")
		return
	}

	l.Info().
		Int("type", int(message.Type)).
		Str("text", h.renderer.Render(ctx, message)).
		Msg("system event")
}

func (h *Message) thread(ctx context.Context, chat models.Chat) (domain.Thread, error) {
	id := strconv.FormatInt(chat.ID, 10)

	thread, err := h.threads.Thread(ctx, id)
	if err != nil {
		return domain.Thread{}, err
	}

	if thread != nil {
		return *thread, nil
	}

	created := domain.Thread{
		ID:       id,
		Subject:  chat.Title,
		Group:    chat.Type != models.ChatTypePrivate,
		ChatBots: h.chatBots,
	}

	if err := h.threads.SaveThread(ctx, created); err != nil {
		return domain.Thread{}, fmt.Errorf("error saving thread: %w", err)
	}

	return created, nil
}

func (h *Message) remember(ctx context.Context, thread domain.Thread, provider domain.Provider) error {
	if err := h.threads.SaveProvider(ctx, provider); err != nil {
		return err
	}

	return h.threads.SaveParticipant(ctx, domain.Participant{
		ThreadID: thread.ID,
		Owner:    provider,
		Admin:    h.authorizer.IsAdmin(provider.Ref.ID),
	})
}

// systemMessage translates Telegram service messages into system events. It reports false for regular messages.
func (h *Message) systemMessage(
	ctx context.Context, thread domain.Thread, owner domain.OwnerRef, msg *models.Message) (domain.SystemMessage, bool, error) {
	switch {
	case len(msg.NewChatMembers) > 0:
		participants := make([]domain.Participant, 0, len(msg.NewChatMembers))
		for i := range msg.NewChatMembers {
			provider := providerFromUser(&msg.NewChatMembers[i])
			if err := h.remember(ctx, thread, provider); err != nil {
				return domain.SystemMessage{}, false, err
			}
			participants = append(participants, domain.Participant{ThreadID: thread.ID, Owner: provider})
		}

		event, err := domain.NewParticipantsAdded(thread, owner, participants)
		return event, true, err

	case msg.LeftChatMember != nil:
		left := providerFromUser(msg.LeftChatMember)
		if left.Ref == owner {
			return domain.NewGroupLeft(thread, owner), true, nil
		}

		event, err := domain.NewRemovedFromGroup(thread, owner, domain.Participant{ThreadID: thread.ID, Owner: left})
		return event, true, err

	case msg.NewChatTitle != "":
		thread.Subject = msg.NewChatTitle
		if err := h.threads.SaveThread(ctx, thread); err != nil {
			return domain.SystemMessage{}, false, err
		}

		return domain.NewGroupRenamed(thread, owner, msg.NewChatTitle), true, nil

	case len(msg.NewChatPhoto) > 0:
		return domain.NewGroupAvatarChanged(thread, owner), true, nil

	case msg.GroupChatCreated || msg.SupergroupChatCreated:
		return domain.NewGroupCreated(thread, owner, msg.Chat.Title), true, nil

	case msg.VoiceChatParticipantsInvited != nil:
		call := domain.Call{
			ID:           thread.ID + ":" + strconv.Itoa(msg.ID),
			ThreadID:     thread.ID,
			Video:        true,
			Participants: []domain.OwnerRef{owner},
		}

		for i := range msg.VoiceChatParticipantsInvited.Users {
			provider := providerFromUser(&msg.VoiceChatParticipantsInvited.Users[i])
			if err := h.remember(ctx, thread, provider); err != nil {
				return domain.SystemMessage{}, false, err
			}
			call.Participants = append(call.Participants, provider.Ref)
		}

		if err := h.threads.SaveCall(ctx, call); err != nil {
			return domain.SystemMessage{}, false, err
		}

		event, err := domain.NewVideoCall(thread, owner, call)
		return event, true, err
	}

	return domain.SystemMessage{}, false, nil
}

func providerFromUser(user *models.User) domain.Provider {
	ownerType := "user"
	if user.IsBot {
		ownerType = "bot"
	}

	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		name = "@" + user.Username
	}

	return domain.Provider{
		Ref:  domain.OwnerRef{ID: strconv.FormatInt(user.ID, 10), Type: ownerType},
		Name: name,
	}
}

func getUserNameOrFirstName(user *models.User) string {
	if user.Username == "" {
		return user.FirstName
	}

	return "@" + user.Username
}
