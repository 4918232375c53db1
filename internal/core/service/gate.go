package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"waitbot/internal/core/domain"
	"waitbot/internal/core/port"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Gate decides whether a user can receive direct messages and manages the
// pending prompt and deferred subscription lifecycle for users who cannot.
type Gate interface {
	CanReceiveDirectMessages(ctx context.Context, message *domain.Message) bool
	DeferSubscription(message *domain.Message, waitlistName string)
	CompleteRegistration(ctx context.Context, userID int64)
}

// DefaultPromptTimeout is how long a registration prompt stays up before the
// deferred subscription is abandoned.
const DefaultPromptTimeout = 60 * time.Second

const cleanupTimeout = 10 * time.Second

const probeText = "verifying we can reach you, feel free to ignore this"
const promptText = "@%s, I can't message you yet. Start a chat with me first, then try again: %s"
const ackEmoji = "\U0001F44D"

type pendingPrompt struct {
	chatID    int64
	messageID int
	timer     *time.Timer
}

type pendingSubscription struct {
	waitlistName string
	chatID       int64
	messageID    int
	userID       int64
	username     string
}

// RegistrationGate exclusively owns all transient registration state. The
// verified set only grows for the lifetime of the process; prompt and
// subscription entries live until completion or expiry.
type RegistrationGate struct {
	sender        port.TextSender
	store         port.WaitlistStore
	promptTimeout time.Duration

	mu       sync.Mutex
	verified map[int64]struct{}
	prompts  map[int64]*pendingPrompt
	pending  map[int64]*pendingSubscription

	l *zerolog.Logger
}

func NewRegistrationGate(sender port.TextSender, store port.WaitlistStore,
	promptTimeout time.Duration) *RegistrationGate {
	if promptTimeout <= 0 {
		promptTimeout = DefaultPromptTimeout
	}

	logger := log.With().Str("service", "gate").Logger()

	return &RegistrationGate{
		sender:        sender,
		store:         store,
		promptTimeout: promptTimeout,
		verified:      make(map[int64]struct{}),
		prompts:       make(map[int64]*pendingPrompt),
		pending:       make(map[int64]*pendingSubscription),
		l:             &logger,
	}
}

// CanReceiveDirectMessages reports whether the sender of the message can be
// reached in a direct conversation. Users verified earlier pass without a
// probe. A user who cannot be reached gets a visible deep-link prompt in the
// originating chat, at most one at a time, which expires after the configured
// timeout.
func (g *RegistrationGate) CanReceiveDirectMessages(ctx context.Context, message *domain.Message) bool {
	l := g.l.With().
		Int64("userId", message.UserID).
		Int64("chatId", message.ChatID).
		Logger()

	g.mu.Lock()
	if _, ok := g.verified[message.UserID]; ok {
		g.mu.Unlock()
		return true
	}
	if _, ok := g.prompts[message.UserID]; ok {
		g.mu.Unlock()
		l.Debug().Msg("prompt already outstanding, suppressing duplicate")
		return false
	}
	g.mu.Unlock()

	probeID, err := g.sender.SendSilent(ctx, message.UserID, probeText)
	if err == nil {
		if err := g.sender.DeleteMessage(ctx, message.UserID, probeID); err != nil {
			l.Debug().Err(err).Msg("failed to clean up probe message")
		}

		g.mu.Lock()
		g.verified[message.UserID] = struct{}{}
		g.mu.Unlock()

		l.Debug().Msg("probe delivered, user verified")
		return true
	}

	if !errors.Is(err, domain.ErrUnreachable) {
		l.Warn().Err(err).Msg("probe failed for reasons other than reachability")
		return false
	}

	link := g.sender.DeepLink("subscribe")
	promptID, err := g.sender.SendMessageReply(ctx, message,
		fmt.Sprintf(promptText, message.Username, link))
	if err != nil {
		l.Warn().Err(err).Msg("failed to send registration prompt")
		return false
	}

	userID := message.UserID

	g.mu.Lock()
	g.prompts[userID] = &pendingPrompt{
		chatID:    message.ChatID,
		messageID: promptID,
		timer: time.AfterFunc(g.promptTimeout, func() {
			g.expirePrompt(userID)
		}),
	}
	g.mu.Unlock()

	l.Info().Msg("registration prompt sent")
	return false
}

// DeferSubscription records a subscription attempt to be completed once the
// user registers, overwriting any previous one. A deferred subscription only
// lives while a prompt is outstanding for the same user; without one it
// could never complete nor expire.
func (g *RegistrationGate) DeferSubscription(message *domain.Message, waitlistName string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.prompts[message.UserID]; !ok {
		return
	}

	g.pending[message.UserID] = &pendingSubscription{
		waitlistName: waitlistName,
		chatID:       message.ChatID,
		messageID:    message.ID,
		userID:       message.UserID,
		username:     message.Username,
	}

	g.l.Debug().
		Int64("userId", message.UserID).
		Str("waitlist", waitlistName).
		Msg("subscription deferred until registration completes")
}

// CompleteRegistration marks a user as verified after they started a direct
// conversation, removes their outstanding prompt and finishes their deferred
// subscription if one exists. Failures are logged, never surfaced: the
// registration itself must not fail visibly.
func (g *RegistrationGate) CompleteRegistration(ctx context.Context, userID int64) {
	l := g.l.With().Int64("userId", userID).Logger()

	g.mu.Lock()
	g.verified[userID] = struct{}{}
	prompt := g.prompts[userID]
	sub := g.pending[userID]
	if prompt != nil {
		prompt.timer.Stop()
		delete(g.prompts, userID)
	}
	delete(g.pending, userID)
	g.mu.Unlock()

	if prompt != nil {
		if err := g.sender.DeleteMessage(ctx, prompt.chatID, prompt.messageID); err != nil {
			l.Debug().Err(err).Msg("failed to delete registration prompt")
		}
	}

	if sub == nil {
		return
	}

	g.completeSubscription(ctx, &l, sub)
}

func (g *RegistrationGate) completeSubscription(ctx context.Context, l *zerolog.Logger, sub *pendingSubscription) {
	waitlist, err := g.store.FindWaitlist(ctx, sub.chatID, sub.waitlistName)
	if err != nil {
		l.Warn().Err(err).Str("waitlist", sub.waitlistName).
			Msg("deferred subscription target gone")
	} else {
		_, err = g.store.FindSubscriber(ctx, waitlist.ID, sub.userID)
		if errors.Is(err, domain.ErrNotSubscribed) {
			_, err = g.store.CreateSubscriber(ctx, waitlist.ID, sub.userID, sub.username)
			if err != nil && !errors.Is(err, domain.ErrAlreadySubscribed) {
				l.Warn().Err(err).Str("waitlist", sub.waitlistName).
					Msg("failed to complete deferred subscription")
			}
		} else if err != nil {
			l.Warn().Err(err).Msg("failed to check existing subscription")
		}
	}

	// Acknowledge the original subscribe message regardless of outcome.
	if err := g.sender.SetReaction(ctx, sub.chatID, sub.messageID, ackEmoji); err != nil {
		l.Debug().Err(err).Msg("failed to acknowledge original message")
	}
}

// expirePrompt is the one-shot timer callback for an outstanding prompt. It
// re-checks entry presence first: the prompt may have been resolved by a
// /start between the timer firing and the lock being taken.
func (g *RegistrationGate) expirePrompt(userID int64) {
	g.mu.Lock()
	prompt, ok := g.prompts[userID]
	if !ok {
		g.mu.Unlock()
		return
	}
	delete(g.prompts, userID)
	delete(g.pending, userID)
	g.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	if err := g.sender.DeleteMessage(ctx, prompt.chatID, prompt.messageID); err != nil {
		g.l.Debug().Err(err).Int64("userId", userID).
			Msg("failed to delete expired registration prompt")
	}

	g.l.Info().Int64("userId", userID).Msg("registration prompt expired, subscription abandoned")
}
