package sender

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"messengerbots/internal/core/domain"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

//go:generate mockery --name TelegramBot

type TelegramBot interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
}

// TelegramMessageLimit is the maximum length of a single Telegram text message.
const TelegramMessageLimit = 4096

const ChatActionRepeatSeconds = 5

type Telegram struct {
	bot            TelegramBot
	actionInterval time.Duration
}

func NewTelegram(b TelegramBot) *Telegram {
	return &Telegram{bot: b, actionInterval: ChatActionRepeatSeconds * time.Second}
}

// SendMessageReply replies to message, splitting text that exceeds TelegramMessageLimit. It returns the ID of the
// last message sent.
func (s *Telegram) SendMessageReply(ctx context.Context, message *domain.Message, text string) (int, error) {
	chatID, err := domain.ParseID(message.ThreadID)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid chat id %q: %w", domain.ErrSendingReplyFailed, message.ThreadID, err)
	}

	var reply *models.ReplyParameters
	if messageID, err := domain.ParseID(message.ID); err == nil && messageID > 0 {
		reply = &models.ReplyParameters{
			MessageID: int(messageID),
			ChatID:    chatID,
		}
	}

	var lastID int
	for _, chunk := range splitMessage(text, TelegramMessageLimit) {
		sent, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:          chatID,
			Text:            chunk,
			ReplyParameters: reply,
		})
		if err != nil {
			log.Error().Err(err).Int64("chatID", chatID).Msg("failed to send message")
			return lastID, fmt.Errorf("%w: %w", domain.ErrSendingReplyFailed, err)
		}

		if sent != nil {
			lastID = sent.ID
		}
	}

	return lastID, nil
}

// splitMessage cuts text into chunks of at most limit bytes, preferring line breaks and spaces as cut points.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(text) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}

		if cut == 0 {
			_, cut = utf8.DecodeRuneInString(text)
		}

		if i := strings.LastIndexAny(text[:cut], "\n "); i > limit/2 {
			cut = i + 1
		}

		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}

	if text != "" {
		chunks = append(chunks, text)
	}

	return chunks
}

// SendChatAction repeats action in the thread until ctx is done.
func (s *Telegram) SendChatAction(ctx context.Context, threadID string, action domain.Action) {
	chatID, err := domain.ParseID(threadID)
	if err != nil {
		log.Warn().Err(err).Str("threadId", threadID).Msg("invalid chat id for chat action")
		return
	}

	log.Debug().Int64("chatID", chatID).Msg("starting action routine")
	for {
		select {
		case <-ctx.Done():
			log.Debug().Int64("chatID", chatID).Msg("done, stopping action routine")
			return
		default:
		}

		var chatAction models.ChatAction
		switch action {
		case domain.Typing:
			chatAction = models.ChatActionTyping
		default:
			chatAction = models.ChatActionTyping
		}

		log.Debug().Int64("chatID", chatID).Msg("transmitting action")
		_, err := s.bot.SendChatAction(ctx, &bot.SendChatActionParams{
			ChatID: chatID,
			Action: chatAction,
		})
		if err != nil {
			log.Err(err).Msg("error sending chat action")
			return
		}

		select {
		case <-ctx.Done():
		case <-time.After(s.actionInterval):
		}
	}
}
