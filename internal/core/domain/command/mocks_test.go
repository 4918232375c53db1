package command

import (
	"context"
	"fmt"
	"sync"
	"waitbot/internal/core/domain"
)

type sentReply struct {
	chatID int64
	text   string
}

type mockSender struct {
	mu      sync.Mutex
	replies []sentReply
}

func (m *mockSender) SendMessage(_ context.Context, chatID int64, text string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, sentReply{chatID: chatID, text: text})
	return len(m.replies), nil
}

func (m *mockSender) SendMessageReply(_ context.Context, message *domain.Message, text string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, sentReply{chatID: message.ChatID, text: text})
	return len(m.replies), nil
}

func (m *mockSender) SendSilent(_ context.Context, chatID int64, text string) (int, error) {
	return 0, nil
}

func (m *mockSender) DeleteMessage(_ context.Context, _ int64, _ int) error {
	return nil
}

func (m *mockSender) SetReaction(_ context.Context, _ int64, _ int, _ string) error {
	return nil
}

func (m *mockSender) DeepLink(payload string) string {
	return "https://t.me/testbot?start=" + payload
}

func (m *mockSender) NotifyAndReturnError(_ context.Context, err error, _ *domain.Message) error {
	return err
}

func (m *mockSender) lastReply() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.replies) == 0 {
		return ""
	}
	return m.replies[len(m.replies)-1].text
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

	for _, w := range m.waitlists {
		if w.Name == name && w.Owner == owner {
			return w, nil
		}
	}

	return nil, domain.ErrWaitlistNotFound
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

func (m *mockStore) hasSubscriber(waitlistID, userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.subscribers[subKey(waitlistID, userID)]
	return ok
}

type mockGate struct {
	canReceive bool
	deferred   []string
	completed  []int64
}

func (m *mockGate) CanReceiveDirectMessages(_ context.Context, _ *domain.Message) bool {
	return m.canReceive
}

func (m *mockGate) DeferSubscription(_ *domain.Message, waitlistName string) {
	m.deferred = append(m.deferred, waitlistName)
}

func (m *mockGate) CompleteRegistration(_ context.Context, userID int64) {
	m.completed = append(m.completed, userID)
}

type broadcastCall struct {
	owner   string
	product string
	body    string
}

type mockBroadcaster struct {
	report *domain.BroadcastReport
	err    error
	calls  []broadcastCall
}

func (m *mockBroadcaster) Broadcast(_ context.Context, message *domain.Message, product, body string) (*domain.BroadcastReport, error) {
	if !message.IsDirect() {
		return nil, domain.ErrWrongContext
	}

	m.calls = append(m.calls, broadcastCall{owner: message.Username, product: product, body: body})
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

type mockAuth struct {
	admin bool
}

func (m *mockAuth) IsAdmin(_ context.Context, _, _ int64) bool {
	return m.admin
}
