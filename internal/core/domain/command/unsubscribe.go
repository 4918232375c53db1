package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"waitbot/internal/core/domain"
	"waitbot/internal/core/port"
)

type Unsubscribe struct {
	store   port.WaitlistStore
	sender  port.TextSender
	command string
}

func NewUnsubscribe(store port.WaitlistStore, sender port.TextSender, command string) *Unsubscribe {
	return &Unsubscribe{
		store:   store,
		sender:  sender,
		command: command,
	}
}

func (u *Unsubscribe) GetCommand() string {
	return u.command
}

const unsubscribeUsage = "usage: /unsubscribe <product>"
const unsubscribed = "you are off the %q waitlist"

func (u *Unsubscribe) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	product := strings.TrimSpace(ParseCommandArgs(message.Text))
	if product == "" {
		_, err := u.sender.SendMessageReply(ctx, message, unsubscribeUsage)
		return err
	}

	waitlist, err := u.store.FindWaitlist(ctx, message.ChatID, product)
	if err != nil {
		if errors.Is(err, domain.ErrWaitlistNotFound) {
			_, err = u.sender.SendMessageReply(ctx, message,
				fmt.Sprintf(subscribeNotFound, product))
			return err
		}
		return u.sender.NotifyAndReturnError(ctx, fmt.Errorf("failed to find waitlist: %w", err), message)
	}

	// Removal is idempotent: unsubscribing without a subscription still
	// answers with the same confirmation.
	if err := u.store.DeleteSubscriber(ctx, waitlist.ID, message.UserID); err != nil {
		return u.sender.NotifyAndReturnError(ctx, fmt.Errorf("failed to delete subscription: %w", err), message)
	}

	_, err = u.sender.SendMessageReply(ctx, message, fmt.Sprintf(unsubscribed, waitlist.Name))
	return err
}
