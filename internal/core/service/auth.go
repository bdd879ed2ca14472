package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"messengerbots/internal/core/domain"
	"messengerbots/internal/core/port"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Authorizer interface {
	IsAuthorized(ctx context.Context, threadID string) bool
	IsAdmin(userID string) bool
}

type ChatAuthorizer struct {
	allowlist []int64
	admins    []int64
	sender    port.TextSender
}

func NewAuthorizer(sender port.TextSender) (*ChatAuthorizer, error) {
	var list, admins []int64

	err := viper.UnmarshalKey("telegram.allowed_chat_ids", &list)
	if err != nil {
		return nil, errors.New("failed to load allowed chat IDs")
	}

	err = viper.UnmarshalKey("telegram.admin_user_ids", &admins)
	if err != nil {
		return nil, errors.New("failed to load admin user IDs")
	}

	return &ChatAuthorizer{
		allowlist: list,
		admins:    admins,
		sender:    sender,
	}, nil
}

const forbidden = "You are not authorized to use this bot. Please contact @%s with this ID to get access: %s"

func (a *ChatAuthorizer) IsAuthorized(ctx context.Context, threadID string) bool {
	if id, err := domain.ParseID(threadID); err == nil && slices.Contains(a.allowlist, id) {
		return true
	}

	_, err := a.sender.SendMessageReply(ctx,
		&domain.Message{ThreadID: threadID},
		fmt.Sprintf(forbidden, viper.GetString("telegram.admin_username"), threadID))
	if err != nil {
		log.Err(err).Msg("failed to send unauthorized warning")
	}

	return false
}

// IsAdmin reports whether the user may trigger admin only bot actions.
func (a *ChatAuthorizer) IsAdmin(userID string) bool {
	id, err := domain.ParseID(userID)
	if err != nil {
		return false
	}

	return slices.Contains(a.admins, id)
}
