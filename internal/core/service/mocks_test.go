package service

import (
	"context"
	"fmt"
	"sync"
	"waitbot/internal/core/domain"
)

type sentMessage struct {
	chatID int64
	text   string
}

type deletedMessage struct {
	chatID    int64
	messageID int
}

type reaction struct {
	chatID    int64
	messageID int
	emoji     string
}

type mockSender struct {
	mu sync.Mutex

	silentErr  error
	replyErr   error
	sendErrFor map[int64]error

	sent      []sentMessage
	silent    []sentMessage
	replies   []sentMessage
	deleted   []deletedMessage
	reactions []reaction

	nextMessageID int
}

func (m *mockSender) SendMessage(_ context.Context, chatID int64, text string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.sendErrFor[chatID]; ok {
		return 0, err
	}

	m.sent = append(m.sent, sentMessage{chatID: chatID, text: text})
	m.nextMessageID++
	return m.nextMessageID, nil
}

func (m *mockSender) SendMessageReply(_ context.Context, message *domain.Message, text string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.replyErr != nil {
		return 0, m.replyErr
	}

	m.replies = append(m.replies, sentMessage{chatID: message.ChatID, text: text})
	m.nextMessageID++
	return m.nextMessageID, nil
}

func (m *mockSender) SendSilent(_ context.Context, chatID int64, text string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.silentErr != nil {
		return 0, m.silentErr
	}

	m.silent = append(m.silent, sentMessage{chatID: chatID, text: text})
	m.nextMessageID++
	return m.nextMessageID, nil
}

func (m *mockSender) DeleteMessage(_ context.Context, chatID int64, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleted = append(m.deleted, deletedMessage{chatID: chatID, messageID: messageID})
	return nil
}

func (m *mockSender) SetReaction(_ context.Context, chatID int64, messageID int, emoji string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reactions = append(m.reactions, reaction{chatID: chatID, messageID: messageID, emoji: emoji})
	return nil
}

func (m *mockSender) DeepLink(payload string) string {
	return "https://t.me/testbot?start=" + payload
}

func (m *mockSender) NotifyAndReturnError(_ context.Context, err error, _ *domain.Message) error {
	return err
}

func (m *mockSender) replyCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.replies)
}

func (m *mockSender) deleteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.deleted)
}

type mockStore struct {
	mu          sync.Mutex
	nextID      int64
	waitlists   map[int64]*domain.Waitlist
	subscribers map[string]*domain.Subscriber
}

func newMockStore() *mockStore {
	return &mockStore{
		waitlists:   make(map[int64]*domain.Waitlist),
		subscribers: make(map[string]*domain.Subscriber),
	}
}

func subKey(waitlistID, userID int64) string {
	return fmt.Sprintf("%d:%d", waitlistID, userID)
}

func (m *mockStore) CreateWaitlist(_ context.Context, chatID int64, name, owner string) (*domain.Waitlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, w := range m.waitlists {
		if w.ChatID == chatID && w.Name == name {
			return nil, domain.ErrAlreadyExists
		}
	}

	m.nextID++
	waitlist := &domain.Waitlist{ID: m.nextID, Name: name, ChatID: chatID, Owner: owner}
	m.waitlists[waitlist.ID] = waitlist
	return waitlist, nil
}

func (m *mockStore) FindWaitlist(_ context.Context, chatID int64, name string) (*domain.Waitlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, w := range m.waitlists {
		if w.ChatID == chatID && w.Name == name {
			return w, nil
		}
	}

	return nil, domain.ErrWaitlistNotFound
}

func (m *mockStore) FindWaitlistByOwner(_ context.Context, name, owner string) (*domain.Waitlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var found *domain.Waitlist
	for _, w := range m.waitlists {
		if w.Name == name && w.Owner == owner {
			if found == nil || w.ID < found.ID {
				found = w
			}
		}
	}
	if found == nil {
		return nil, domain.ErrWaitlistNotFound
	}

	return found, nil
}

func (m *mockStore) FindWaitlistsByChat(_ context.Context, chatID int64) ([]domain.Waitlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var waitlists []domain.Waitlist
	for id := int64(1); id <= m.nextID; id++ {
		if w, ok := m.waitlists[id]; ok && w.ChatID == chatID {
			waitlists = append(waitlists, *w)
		}
	}

	return waitlists, nil
}

func (m *mockStore) FindWaitlistsByUser(_ context.Context, userID int64) ([]domain.Waitlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var waitlists []domain.Waitlist
	for id := int64(1); id <= m.nextID; id++ {
		w, ok := m.waitlists[id]
		if !ok {
			continue
		}
		if _, ok := m.subscribers[subKey(w.ID, userID)]; ok {
			waitlists = append(waitlists, *w)
		}
	}

	return waitlists, nil
}

func (m *mockStore) DeleteWaitlist(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, s := range m.subscribers {
		if s.WaitlistID == id {
			delete(m.subscribers, key)
		}
	}
	delete(m.waitlists, id)
	return nil
}

func (m *mockStore) CreateSubscriber(_ context.Context, waitlistID, userID int64, username string) (*domain.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := subKey(waitlistID, userID)
	if _, ok := m.subscribers[key]; ok {
		return nil, domain.ErrAlreadySubscribed
	}

	m.nextID++
	subscriber := &domain.Subscriber{ID: m.nextID, WaitlistID: waitlistID, UserID: userID, Username: username}
	m.subscribers[key] = subscriber
	return subscriber, nil
}

func (m *mockStore) FindSubscriber(_ context.Context, waitlistID, userID int64) (*domain.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	subscriber, ok := m.subscribers[subKey(waitlistID, userID)]
	if !ok {
		return nil, domain.ErrNotSubscribed
	}

	return subscriber, nil
}

func (m *mockStore) FindSubscribers(_ context.Context, waitlistID int64) ([]domain.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var subscribers []domain.Subscriber
	for id := int64(1); id <= m.nextID; id++ {
		for _, s := range m.subscribers {
			if s.ID == id && s.WaitlistID == waitlistID {
				subscribers = append(subscribers, *s)
			}
		}
	}

	return subscribers, nil
}

func (m *mockStore) DeleteSubscriber(_ context.Context, waitlistID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.subscribers, subKey(waitlistID, userID))
	return nil
}

func (m *mockStore) Close() error {
	return nil
}

func (m *mockStore) subscriberCount(waitlistID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, s := range m.subscribers {
		if s.WaitlistID == waitlistID {
			count++
		}
	}

	return count
}
