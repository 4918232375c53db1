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

type Subscribe struct {
	store   port.WaitlistStore
	sender  port.TextSender
	gate    service.Gate
	command string
}

func NewSubscribe(store port.WaitlistStore, sender port.TextSender, gate service.Gate,
	command string) *Subscribe {
	return &Subscribe{
		store:   store,
		sender:  sender,
		gate:    gate,
		command: command,
	}
}

func (s *Subscribe) GetCommand() string {
	return s.command
}

const subscribeUsage = "usage: /subscribe <product>"
const subscribeNotFound = "no waitlist named %q in this chat"
const alreadySubscribed = "you are already on the %q waitlist"
const subscribed = "you are on the %q waitlist now"

// Respond handles both the plain /subscribe <product> form and the dynamic
// /subscribe_<sanitized> form.
func (s *Subscribe) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := ParseCommand(message.Text)
	// Group clients may suffix the command with an @botname mention.
	cmd, _, _ = strings.Cut(cmd, "@")
	product := strings.TrimSpace(ParseCommandArgs(message.Text))

	var waitlist *domain.Waitlist
	var err error

	switch {
	case strings.HasPrefix(cmd, s.command+"_"):
		waitlist, err = s.resolveSanitized(ctx, message.ChatID, strings.TrimPrefix(cmd, s.command+"_"))
	case product == "":
		_, err = s.sender.SendMessageReply(ctx, message, subscribeUsage)
		return err
	default:
		waitlist, err = s.store.FindWaitlist(ctx, message.ChatID, product)
		if errors.Is(err, domain.ErrWaitlistNotFound) {
			_, err = s.sender.SendMessageReply(ctx, message, fmt.Sprintf(subscribeNotFound, product))
			return err
		}
	}
	if errors.Is(err, domain.ErrWaitlistNotFound) {
		_, err = s.sender.SendMessageReply(ctx, message, "that waitlist does not exist anymore")
		return err
	}
	if err != nil {
		return s.sender.NotifyAndReturnError(ctx, fmt.Errorf("failed to find waitlist: %w", err), message)
	}

	// Fast-path duplicate check for a friendlier reply. The store's unique
	// constraint stays the authoritative guard against concurrent subscribes.
	_, err = s.store.FindSubscriber(ctx, waitlist.ID, message.UserID)
	if err == nil {
		_, err = s.sender.SendMessageReply(ctx, message, fmt.Sprintf(alreadySubscribed, waitlist.Name))
		return err
	}
	if !errors.Is(err, domain.ErrNotSubscribed) {
		return s.sender.NotifyAndReturnError(ctx, fmt.Errorf("failed to check subscription: %w", err), message)
	}

	// A direct conversation means the user is reachable by definition.
	if !message.IsDirect() && !s.gate.CanReceiveDirectMessages(ctx, message) {
		s.gate.DeferSubscription(message, waitlist.Name)
		return nil
	}

	_, err = s.store.CreateSubscriber(ctx, waitlist.ID, message.UserID, message.Username)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadySubscribed) {
			_, err = s.sender.SendMessageReply(ctx, message, fmt.Sprintf(alreadySubscribed, waitlist.Name))
			return err
		}
		return s.sender.NotifyAndReturnError(ctx, fmt.Errorf("failed to create subscription: %w", err), message)
	}

	_, err = s.sender.SendMessageReply(ctx, message, fmt.Sprintf(subscribed, waitlist.Name))
	return err
}

// resolveSanitized maps a /subscribe_<name> suffix back to a waitlist: exact
// name match first, then a scan comparing sanitized forms of every waitlist
// name in the chat. First match wins.
func (s *Subscribe) resolveSanitized(ctx context.Context, chatID int64,
	suffix string) (*domain.Waitlist, error) {
	waitlist, err := s.store.FindWaitlist(ctx, chatID, suffix)
	if err == nil {
		return waitlist, nil
	}
	if !errors.Is(err, domain.ErrWaitlistNotFound) {
		return nil, err
	}

	waitlists, err := s.store.FindWaitlistsByChat(ctx, chatID)
	if err != nil {
		return nil, err
	}

	for i := range waitlists {
		if SanitizeName(waitlists[i].Name) == strings.ToLower(suffix) {
			return &waitlists[i], nil
		}
	}

	return nil, domain.ErrWaitlistNotFound
}
