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

type Close struct {
	store   port.WaitlistStore
	sender  port.TextSender
	auth    service.Authorizer
	command string
}

func NewClose(store port.WaitlistStore, sender port.TextSender, auth service.Authorizer,
	command string) *Close {
	return &Close{
		store:   store,
		sender:  sender,
		auth:    auth,
		command: command,
	}
}

func (c *Close) GetCommand() string {
	return c.command
}

const closeUsage = "usage: /closewaitlist <product>"
const closeForbidden = "only the waitlist owner or a chat admin can close %q"
const closed = "waitlist %q is closed, all subscriptions removed"

func (c *Close) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	product := strings.TrimSpace(ParseCommandArgs(message.Text))
	if product == "" {
		_, err := c.sender.SendMessageReply(ctx, message, closeUsage)
		return err
	}

	waitlist, err := c.store.FindWaitlist(ctx, message.ChatID, product)
	if err != nil {
		if errors.Is(err, domain.ErrWaitlistNotFound) {
			_, err = c.sender.SendMessageReply(ctx, message,
				fmt.Sprintf("no waitlist named %q in this chat", product))
			return err
		}
		return c.sender.NotifyAndReturnError(ctx, fmt.Errorf("failed to find waitlist: %w", err), message)
	}

	if message.Username != waitlist.Owner && !c.auth.IsAdmin(ctx, message.ChatID, message.UserID) {
		_, err = c.sender.SendMessageReply(ctx, message, fmt.Sprintf(closeForbidden, product))
		return err
	}

	if err := c.store.DeleteWaitlist(ctx, waitlist.ID); err != nil {
		return c.sender.NotifyAndReturnError(ctx, fmt.Errorf("failed to delete waitlist: %w", err), message)
	}

	_, err = c.sender.SendMessageReply(ctx, message, fmt.Sprintf(closed, waitlist.Name))
	return err
}
