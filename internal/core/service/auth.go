package service

import (
	"context"
	"waitbot/internal/core/domain"
	"waitbot/internal/core/port"

	"github.com/rs/zerolog/log"
)

type Authorizer interface {
	IsAdmin(ctx context.Context, chatID, userID int64) bool
}

type ChatAdminAuthorizer struct {
	members port.ChatMemberFinder
}

func NewAuthorizer(members port.ChatMemberFinder) *ChatAdminAuthorizer {
	return &ChatAdminAuthorizer{members: members}
}

// IsAdmin reports whether the user owns or administers the chat. Lookup
// failures deny.
func (a *ChatAdminAuthorizer) IsAdmin(ctx context.Context, chatID, userID int64) bool {
	role, err := a.members.GetMemberRole(ctx, chatID, userID)
	if err != nil {
		log.Warn().Err(err).Int64("chatId", chatID).Int64("userId", userID).
			Msg("failed to look up chat member")
		return false
	}

	return role == domain.RoleOwner || role == domain.RoleAdmin
}
