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

type Open struct {
	store   port.WaitlistStore
	sender  port.TextSender
	auth    service.Authorizer
	command string
}

func NewOpen(store port.WaitlistStore, sender port.TextSender, auth service.Authorizer,
	command string) *Open {
	return &Open{
		store:   store,
		sender:  sender,
		auth:    auth,
		command: command,
	}
}

func (o *Open) GetCommand() string {
	return o.command
}

const openUsage = "usage: /openwaitlist <product> @owner"
const openForbidden = "only chat admins can open waitlists"
const openExists = "a waitlist named %q is already open in this chat"
const opened = "waitlist %q is open, owned by @%s. Subscribe with /subscribe %s or /%s"

func (o *Open) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	product, owner, ok := parseOpenArgs(message.Text)
	if !ok {
		_, err := o.sender.SendMessageReply(ctx, message, openUsage)
		return err
	}

	if !o.auth.IsAdmin(ctx, message.ChatID, message.UserID) {
		_, err := o.sender.SendMessageReply(ctx, message, openForbidden)
		return err
	}

	waitlist, err := o.store.CreateWaitlist(ctx, message.ChatID, product, owner)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			_, err = o.sender.SendMessageReply(ctx, message, fmt.Sprintf(openExists, product))
			return err
		}
		return o.sender.NotifyAndReturnError(ctx, fmt.Errorf("failed to create waitlist: %w", err), message)
	}

	_, err = o.sender.SendMessageReply(ctx, message,
		fmt.Sprintf(opened, waitlist.Name, waitlist.Owner, waitlist.Name,
			"subscribe_"+SanitizeName(waitlist.Name)))
	return err
}

// parseOpenArgs splits "<product> @owner". The owner mention is the last
// field; product names may contain spaces.
func parseOpenArgs(text string) (product, owner string, ok bool) {
	fields := strings.Fields(ParseCommandArgs(text))
	if len(fields) < 2 {
		return "", "", false
	}

	last := fields[len(fields)-1]
	if !strings.HasPrefix(last, "@") || len(last) < 2 {
		return "", "", false
	}

	return strings.Join(fields[:len(fields)-1], " "), strings.TrimPrefix(last, "@"), true
}
