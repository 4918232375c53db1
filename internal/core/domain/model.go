package domain

import "time"

// Waitlist is a named list scoped to a single chat. Names are unique within
// a chat; the same name may exist independently in other chats.
type Waitlist struct {
	ID        int64
	Name      string
	ChatID    int64
	Owner     string
	CreatedAt time.Time
}

// Subscriber is a (waitlist, user) membership record. The pair is unique.
type Subscriber struct {
	ID           int64
	WaitlistID   int64
	UserID       int64
	Username     string
	SubscribedAt time.Time
}

type ChatType string

const (
	ChatTypePrivate    ChatType = "private"
	ChatTypeGroup      ChatType = "group"
	ChatTypeSupergroup ChatType = "supergroup"
)

type Message struct {
	ID       int
	ChatID   int64
	ChatType ChatType
	UserID   int64
	Username string
	Text     string
}

// IsDirect reports whether the message came from a one-on-one conversation
// with the bot.
func (m *Message) IsDirect() bool {
	return m.ChatType == ChatTypePrivate
}

type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleAdmin  MemberRole = "administrator"
	RoleMember MemberRole = "member"
)

// BroadcastReport summarizes a fan-out: how many sends succeeded and which
// recipients failed.
type BroadcastReport struct {
	Sent   int
	Failed []int64
}

type Event struct {
	ID     string
	Name   string
	At     time.Time
	Fields map[string]any
}
