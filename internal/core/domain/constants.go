package domain

import "errors"

var (
	ErrWaitlistNotFound  = errors.New("waitlist not found")
	ErrAlreadyExists     = errors.New("waitlist already exists")
	ErrAlreadySubscribed = errors.New("already subscribed")
	ErrNotSubscribed     = errors.New("not subscribed")
	ErrNotOwner          = errors.New("not the waitlist owner")
	ErrWrongContext      = errors.New("wrong chat context")
	ErrUnreachable       = errors.New("cannot initiate conversation with user")
)
