package command

import (
	"context"
	"fmt"
	"time"
	"waitbot/internal/core/domain"
	"waitbot/internal/core/port"
)

type Ping struct {
	sender  port.TextSender
	command string
}

func NewPing(sender port.TextSender, command string) *Ping {
	return &Ping{sender: sender, command: command}
}

func (p *Ping) GetCommand() string {
	return p.command
}

func (p *Ping) Respond(ctx context.Context, _ time.Duration, message *domain.Message) error {
	_, err := p.sender.SendMessageReply(ctx, message, "pong")
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}
