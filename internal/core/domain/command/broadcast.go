package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"waitbot/internal/core/domain"
	"waitbot/internal/core/port"
	"waitbot/internal/core/service"
)

type Broadcast struct {
	broadcaster service.Broadcaster
	sender      port.TextSender
	command     string
}

func NewBroadcast(broadcaster service.Broadcaster, sender port.TextSender,
	command string) *Broadcast {
	return &Broadcast{
		broadcaster: broadcaster,
		sender:      sender,
		command:     command,
	}
}

func (b *Broadcast) GetCommand() string {
	return b.command
}

const broadcastUsage = "usage: /broadcast <product> <message>"
const broadcastWrongContext = "broadcasts can only be sent from a direct conversation with me"
const broadcastNotOwner = "you don't own a waitlist named %q"
const broadcastDone = "broadcast delivered to %d subscriber(s), %d failed"

func (b *Broadcast) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := strings.Fields(ParseCommandArgs(message.Text))
	if len(args) < 2 {
		_, err := b.sender.SendMessageReply(ctx, message, broadcastUsage)
		return err
	}

	product := args[0]
	body := strings.Join(args[1:], " ")

	report, err := b.broadcaster.Broadcast(ctx, message, product, body)
	if err != nil {
		if errors.Is(err, domain.ErrWrongContext) {
			_, err = b.sender.SendMessageReply(ctx, message, broadcastWrongContext)
			return err
		}
		if errors.Is(err, domain.ErrNotOwner) {
			_, err = b.sender.SendMessageReply(ctx, message, fmt.Sprintf(broadcastNotOwner, product))
			return err
		}
		return b.sender.NotifyAndReturnError(ctx, fmt.Errorf("broadcast failed: %w", err), message)
	}

	_, err = b.sender.SendMessageReply(ctx, message,
		fmt.Sprintf(broadcastDone, report.Sent, len(report.Failed)))
	return err
}
