package port

import (
	"context"
	"waitbot/internal/core/domain"
)

// WaitlistStore is the persistence contract for waitlists and their
// subscribers. Each call is individually atomic; uniqueness of
// (chat, name) and (waitlist, user) is enforced by the store and surfaces
// as domain.ErrAlreadyExists and domain.ErrAlreadySubscribed.
type WaitlistStore interface {
	CreateWaitlist(ctx context.Context, chatID int64, name, owner string) (*domain.Waitlist, error)
	// FindWaitlist returns the waitlist with the given name in a chat, or
	// domain.ErrWaitlistNotFound.
	FindWaitlist(ctx context.Context, chatID int64, name string) (*domain.Waitlist, error)
	FindWaitlistsByChat(ctx context.Context, chatID int64) ([]domain.Waitlist, error)
	// FindWaitlistByOwner returns the first waitlist matching name and owner
	// username across all chats, or domain.ErrWaitlistNotFound.
	FindWaitlistByOwner(ctx context.Context, name, owner string) (*domain.Waitlist, error)
	// FindWaitlistsByUser returns all waitlists the user is subscribed to.
	FindWaitlistsByUser(ctx context.Context, userID int64) ([]domain.Waitlist, error)
	// DeleteWaitlist removes a waitlist and all of its subscribers.
	DeleteWaitlist(ctx context.Context, id int64) error

	CreateSubscriber(ctx context.Context, waitlistID, userID int64, username string) (*domain.Subscriber, error)
	// FindSubscriber returns the subscription of a user on a waitlist, or
	// domain.ErrNotSubscribed.
	FindSubscriber(ctx context.Context, waitlistID, userID int64) (*domain.Subscriber, error)
	FindSubscribers(ctx context.Context, waitlistID int64) ([]domain.Subscriber, error)
	// DeleteSubscriber removes a subscription. Removing an absent subscription
	// is not an error.
	DeleteSubscriber(ctx context.Context, waitlistID, userID int64) error

	Close() error
}
