package sender

import (
	"context"
	"errors"
	"fmt"
	"waitbot/internal/core/domain"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

type TelegramSender struct {
	bot         *bot.Bot
	botUsername string
}

func NewTelegramSender(bot *bot.Bot, botUsername string) *TelegramSender {
	return &TelegramSender{bot: bot, botUsername: botUsername}
}

func (s *TelegramSender) SendMessage(ctx context.Context, chatID int64, text string) (int, error) {
	m, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return 0, classify(err)
	}

	return m.ID, nil
}

func (s *TelegramSender) SendMessageReply(ctx context.Context, message *domain.Message,
	text string) (int, error) {
	m, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: message.ChatID,
		Text:   text,
		ReplyParameters: &models.ReplyParameters{
			MessageID: message.ID,
			ChatID:    message.ChatID,
		},
	})
	if err != nil {
		return 0, classify(err)
	}

	return m.ID, nil
}

func (s *TelegramSender) SendSilent(ctx context.Context, chatID int64, text string) (int, error) {
	m, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:              chatID,
		Text:                text,
		DisableNotification: true,
	})
	if err != nil {
		return 0, classify(err)
	}

	return m.ID, nil
}

func (s *TelegramSender) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := s.bot.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	})

	return err
}

// SetReaction applies an emoji reaction, substituting a plain text reply when
// the reaction cannot be applied. The fallback is attempted once, not retried.
func (s *TelegramSender) SetReaction(ctx context.Context, chatID int64, messageID int, emoji string) error {
	_, err := s.bot.SetMessageReaction(ctx, &bot.SetMessageReactionParams{
		ChatID:    chatID,
		MessageID: messageID,
		Reaction: []models.ReactionType{
			{
				Type: models.ReactionTypeTypeEmoji,
				ReactionTypeEmoji: &models.ReactionTypeEmoji{
					Type:  "emoji",
					Emoji: emoji,
				},
			},
		},
	})
	if err == nil {
		return nil
	}

	log.Debug().Err(err).Int64("chatId", chatID).Msg("reaction failed, sending text fallback")

	_, err = s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   emoji,
		ReplyParameters: &models.ReplyParameters{
			MessageID: messageID,
			ChatID:    chatID,
		},
	})

	return err
}

func (s *TelegramSender) DeepLink(payload string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", s.botUsername, payload)
}

const genericFailure = "something went wrong, please try again later"

func (s *TelegramSender) NotifyAndReturnError(ctx context.Context, err error,
	message *domain.Message) error {
	if _, serr := s.SendMessageReply(ctx, message, genericFailure); serr != nil {
		log.Warn().Err(serr).Int64("chatId", message.ChatID).
			Msg("failed to send error notification")
	}

	return err
}

func (s *TelegramSender) GetMemberRole(ctx context.Context, chatID, userID int64) (domain.MemberRole, error) {
	member, err := s.bot.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: chatID,
		UserID: userID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get chat member: %w", err)
	}

	switch member.Type {
	case models.ChatMemberTypeOwner:
		return domain.RoleOwner, nil
	case models.ChatMemberTypeAdministrator:
		return domain.RoleAdmin, nil
	default:
		return domain.RoleMember, nil
	}
}

// classify maps the transport's forbidden error, raised when the bot cannot
// initiate a conversation with the recipient, onto domain.ErrUnreachable.
func classify(err error) error {
	if errors.Is(err, bot.ErrorForbidden) {
		return fmt.Errorf("%w: %w", domain.ErrUnreachable, err)
	}

	return err
}
