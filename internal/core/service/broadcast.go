package service

import (
	"context"
	"errors"
	"fmt"
	"waitbot/internal/core/domain"
	"waitbot/internal/core/port"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Broadcaster interface {
	Broadcast(ctx context.Context, message *domain.Message, product, body string) (*domain.BroadcastReport, error)
}

type WaitlistBroadcaster struct {
	store  port.WaitlistStore
	sender port.TextSender
	l      *zerolog.Logger
}

func NewBroadcaster(store port.WaitlistStore, sender port.TextSender) *WaitlistBroadcaster {
	logger := log.With().Str("service", "broadcast").Logger()

	return &WaitlistBroadcaster{
		store:  store,
		sender: sender,
		l:      &logger,
	}
}

const broadcastFooter = "\n\nsent via the %s waitlist by @%s"

// Broadcast sends body to every subscriber of the waitlist named product and
// owned by the message sender, one attempt per recipient in store-return
// order. Individual delivery failures are recorded and never abort the loop.
// Only usable from a direct conversation, domain.ErrWrongContext otherwise.
func (b *WaitlistBroadcaster) Broadcast(ctx context.Context, message *domain.Message,
	product, body string) (*domain.BroadcastReport, error) {
	if !message.IsDirect() {
		return nil, domain.ErrWrongContext
	}

	owner := message.Username
	l := b.l.With().Str("owner", owner).Str("product", product).Logger()

	waitlist, err := b.store.FindWaitlistByOwner(ctx, product, owner)
	if err != nil {
		if errors.Is(err, domain.ErrWaitlistNotFound) {
			return nil, domain.ErrNotOwner
		}
		return nil, fmt.Errorf("failed to resolve waitlist: %w", err)
	}

	subscribers, err := b.store.FindSubscribers(ctx, waitlist.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}

	text := body + fmt.Sprintf(broadcastFooter, waitlist.Name, waitlist.Owner)

	report := &domain.BroadcastReport{}
	for _, subscriber := range subscribers {
		if _, err := b.sender.SendMessage(ctx, subscriber.UserID, text); err != nil {
			l.Warn().Err(err).Int64("userId", subscriber.UserID).
				Msg("failed to deliver broadcast message")
			report.Failed = append(report.Failed, subscriber.UserID)
			continue
		}
		report.Sent++
	}

	l.Info().Int("sent", report.Sent).Int("failed", len(report.Failed)).
		Msg("broadcast finished")

	return report, nil
}
