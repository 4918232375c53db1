package port

import (
	"context"
	"waitbot/internal/core/domain"
)

type TextSender interface {
	// SendMessage delivers text to a chat or user and returns the sent message ID.
	// Delivery failures caused by the recipient never having started a conversation
	// with the bot wrap domain.ErrUnreachable.
	SendMessage(ctx context.Context, chatID int64, text string) (int, error)
	// SendMessageReply sends a reply to a specified message with the given text and returns the sent message ID and
	// an error if any.
	SendMessageReply(ctx context.Context, message *domain.Message, text string) (int, error)
	// SendSilent delivers text without triggering a client notification. Used as
	// a reachability probe.
	SendSilent(ctx context.Context, chatID int64, text string) (int, error)
	// DeleteMessage removes a previously sent message.
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	// SetReaction applies an emoji reaction to a message, falling back to a plain
	// text reply if the reaction itself cannot be applied.
	SetReaction(ctx context.Context, chatID int64, messageID int, emoji string) error
	// DeepLink builds a link that opens a direct conversation with the bot,
	// carrying the given start payload.
	DeepLink(payload string) string
	// NotifyAndReturnError sends an error notification based on the provided message context and returns the error.
	NotifyAndReturnError(ctx context.Context, err error, message *domain.Message) error
}

type ChatMemberFinder interface {
	// GetMemberRole resolves the role of a user within a chat.
	GetMemberRole(ctx context.Context, chatID, userID int64) (domain.MemberRole, error)
}
