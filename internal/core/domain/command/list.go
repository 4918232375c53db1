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

type ListWaitlists struct {
	store   port.WaitlistStore
	sender  port.TextSender
	command string
}

func NewListWaitlists(store port.WaitlistStore, sender port.TextSender, command string) *ListWaitlists {
	return &ListWaitlists{store: store, sender: sender, command: command}
}

func (l *ListWaitlists) GetCommand() string {
	return l.command
}

func (l *ListWaitlists) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	waitlists, err := l.store.FindWaitlistsByChat(ctx, message.ChatID)
	if err != nil {
		return l.sender.NotifyAndReturnError(ctx, fmt.Errorf("failed to list waitlists: %w", err), message)
	}

	if len(waitlists) == 0 {
		_, err = l.sender.SendMessageReply(ctx, message, "no waitlists are open in this chat")
		return err
	}

	sb := &strings.Builder{}
	sb.WriteString("open waitlists in this chat:\n")
	for _, waitlist := range waitlists {
		fmt.Fprintf(sb, " - %s (owner @%s)\n", waitlist.Name, waitlist.Owner)
	}

	_, err = l.sender.SendMessageReply(ctx, message, sb.String())
	return err
}

type ListSubscribers struct {
	store   port.WaitlistStore
	sender  port.TextSender
	command string
}

func NewListSubscribers(store port.WaitlistStore, sender port.TextSender, command string) *ListSubscribers {
	return &ListSubscribers{store: store, sender: sender, command: command}
}

func (l *ListSubscribers) GetCommand() string {
	return l.command
}

func (l *ListSubscribers) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	product := strings.TrimSpace(ParseCommandArgs(message.Text))
	if product == "" {
		_, err := l.sender.SendMessageReply(ctx, message, "usage: /list <product>")
		return err
	}

	waitlist, err := l.store.FindWaitlist(ctx, message.ChatID, product)
	if err != nil {
		if errors.Is(err, domain.ErrWaitlistNotFound) {
			_, err = l.sender.SendMessageReply(ctx, message, fmt.Sprintf(subscribeNotFound, product))
			return err
		}
		return l.sender.NotifyAndReturnError(ctx, fmt.Errorf("failed to find waitlist: %w", err), message)
	}

	subscribers, err := l.store.FindSubscribers(ctx, waitlist.ID)
	if err != nil {
		return l.sender.NotifyAndReturnError(ctx, fmt.Errorf("failed to list subscribers: %w", err), message)
	}

	if len(subscribers) == 0 {
		_, err = l.sender.SendMessageReply(ctx, message,
			fmt.Sprintf("nobody is on the %q waitlist yet", waitlist.Name))
		return err
	}

	sb := &strings.Builder{}
	fmt.Fprintf(sb, "%d subscriber(s) on %q:\n", len(subscribers), waitlist.Name)
	for _, subscriber := range subscribers {
		name := subscriber.Username
		if name == "" {
			name = fmt.Sprintf("user %d", subscriber.UserID)
		}
		fmt.Fprintf(sb, " - %s\n", name)
	}

	_, err = l.sender.SendMessageReply(ctx, message, sb.String())
	return err
}

type MyWaitlists struct {
	store   port.WaitlistStore
	sender  port.TextSender
	command string
}

func NewMyWaitlists(store port.WaitlistStore, sender port.TextSender, command string) *MyWaitlists {
	return &MyWaitlists{store: store, sender: sender, command: command}
}

func (m *MyWaitlists) GetCommand() string {
	return m.command
}

func (m *MyWaitlists) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	waitlists, err := m.store.FindWaitlistsByUser(ctx, message.UserID)
	if err != nil {
		return m.sender.NotifyAndReturnError(ctx, fmt.Errorf("failed to list subscriptions: %w", err), message)
	}

	if len(waitlists) == 0 {
		_, err = m.sender.SendMessageReply(ctx, message, "you are not on any waitlist")
		return err
	}

	sb := &strings.Builder{}
	sb.WriteString("your waitlists:\n")
	for _, waitlist := range waitlists {
		fmt.Fprintf(sb, " - %s (owner @%s)\n", waitlist.Name, waitlist.Owner)
	}

	_, err = m.sender.SendMessageReply(ctx, message, sb.String())
	return err
}
