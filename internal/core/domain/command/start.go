package command

import (
	"context"
	"time"
	"waitbot/internal/core/domain"
	"waitbot/internal/core/port"
	"waitbot/internal/core/service"

	"github.com/rs/zerolog/log"
)

type Start struct {
	gate    service.Gate
	sender  port.TextSender
	command string
}

func NewStart(gate service.Gate, sender port.TextSender, command string) *Start {
	return &Start{
		gate:    gate,
		sender:  sender,
		command: command,
	}
}

func (s *Start) GetCommand() string {
	return s.command
}

const welcome = "hi! I manage product waitlists. Try /help for a list of commands."
const startInGroup = "send me /start in a direct conversation to register"

func (s *Start) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if !message.IsDirect() {
		_, err := s.sender.SendMessageReply(ctx, message, startInGroup)
		return err
	}

	log.Info().Int64("userId", message.UserID).Msg("user started a direct conversation")

	s.gate.CompleteRegistration(ctx, message.UserID)

	_, err := s.sender.SendMessageReply(ctx, message, welcome)
	return err
}
