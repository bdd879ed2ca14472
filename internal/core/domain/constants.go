package domain

import "errors"

var (
	ErrSendingReplyFailed = errors.New("failed to send reply")
	ErrEmptyPrompt        = errors.New("empty prompt")

	ErrUnknownHandler     = errors.New("invalid bot handler")
	ErrDuplicateAlias     = errors.New("bot handler alias already registered")
	ErrDuplicateHandler   = errors.New("bot handler already registered")
	ErrInvalidMatchMethod = errors.New("invalid match method")
	ErrInvalidRule        = errors.New("invalid validation rule")
	ErrHandlerExecution   = errors.New("bot handler failed")

	ErrStoreNotOpen = errors.New("store not opened")
)

// MessageError is displayed in place of a system message that could not be rendered.
const MessageError = "Message Error"

// MaxCooldown is the upper bound, in seconds, for action and bot cooldowns.
const MaxCooldown = 900
