package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"waitbot/internal/core/domain"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS waitlists (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	chat_id INTEGER NOT NULL,
	owner_username TEXT NOT NULL,
	created_at TEXT NOT NULL,
	UNIQUE(chat_id, name)
);

CREATE TABLE IF NOT EXISTS subscribers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	waitlist_id INTEGER NOT NULL REFERENCES waitlists(id),
	user_id INTEGER NOT NULL,
	username TEXT,
	subscribed_at TEXT NOT NULL,
	UNIQUE(waitlist_id, user_id)
);
`

// SQLiteStore implements port.WaitlistStore on a local SQLite database.
// Subscribers are always deleted before their waitlist; the schema itself
// only restricts.
type SQLiteStore struct {
	db *sql.DB
}

func Open(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")
	_, _ = db.Exec("PRAGMA busy_timeout = 5000")

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateWaitlist(ctx context.Context, chatID int64, name,
	owner string) (*domain.Waitlist, error) {
	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO waitlists (name, chat_id, owner_username, created_at) VALUES (?, ?, ?, ?)",
		name, chatID, owner, now.Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &domain.Waitlist{
		ID:        id,
		Name:      name,
		ChatID:    chatID,
		Owner:     owner,
		CreatedAt: now,
	}, nil
}

func (s *SQLiteStore) FindWaitlist(ctx context.Context, chatID int64,
	name string) (*domain.Waitlist, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, chat_id, owner_username, created_at FROM waitlists WHERE chat_id = ? AND name = ?",
		chatID, name)

	return scanWaitlist(row)
}

func (s *SQLiteStore) FindWaitlistByOwner(ctx context.Context, name,
	owner string) (*domain.Waitlist, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, chat_id, owner_username, created_at FROM waitlists WHERE name = ? AND owner_username = ? ORDER BY id LIMIT 1",
		name, owner)

	return scanWaitlist(row)
}

func (s *SQLiteStore) FindWaitlistsByChat(ctx context.Context, chatID int64) ([]domain.Waitlist, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, chat_id, owner_username, created_at FROM waitlists WHERE chat_id = ? ORDER BY id",
		chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectWaitlists(rows)
}

func (s *SQLiteStore) FindWaitlistsByUser(ctx context.Context, userID int64) ([]domain.Waitlist, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT w.id, w.name, w.chat_id, w.owner_username, w.created_at
		 FROM waitlists w JOIN subscribers s ON s.waitlist_id = w.id
		 WHERE s.user_id = ? ORDER BY w.id`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectWaitlists(rows)
}

func (s *SQLiteStore) DeleteWaitlist(ctx context.Context, id int64) error {
	// Subscribers go first, the foreign key restricts on delete.
	if _, err := s.db.ExecContext(ctx, "DELETE FROM subscribers WHERE waitlist_id = ?", id); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, "DELETE FROM waitlists WHERE id = ?", id)
	return err
}

func (s *SQLiteStore) CreateSubscriber(ctx context.Context, waitlistID, userID int64,
	username string) (*domain.Subscriber, error) {
	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO subscribers (waitlist_id, user_id, username, subscribed_at) VALUES (?, ?, ?, ?)",
		waitlistID, userID, username, now.Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadySubscribed
		}
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &domain.Subscriber{
		ID:           id,
		WaitlistID:   waitlistID,
		UserID:       userID,
		Username:     username,
		SubscribedAt: now,
	}, nil
}

func (s *SQLiteStore) FindSubscriber(ctx context.Context, waitlistID,
	userID int64) (*domain.Subscriber, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, waitlist_id, user_id, username, subscribed_at FROM subscribers WHERE waitlist_id = ? AND user_id = ?",
		waitlistID, userID)

	var subscriber domain.Subscriber
	var subscribedAt string

	err := row.Scan(&subscriber.ID, &subscriber.WaitlistID, &subscriber.UserID,
		&subscriber.Username, &subscribedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotSubscribed
		}
		return nil, err
	}

	subscriber.SubscribedAt, _ = time.Parse(time.RFC3339, subscribedAt)
	return &subscriber, nil
}

func (s *SQLiteStore) FindSubscribers(ctx context.Context, waitlistID int64) ([]domain.Subscriber, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, waitlist_id, user_id, username, subscribed_at FROM subscribers WHERE waitlist_id = ? ORDER BY id",
		waitlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subscribers []domain.Subscriber
	for rows.Next() {
		var subscriber domain.Subscriber
		var subscribedAt string

		err := rows.Scan(&subscriber.ID, &subscriber.WaitlistID, &subscriber.UserID,
			&subscriber.Username, &subscribedAt)
		if err != nil {
			return nil, err
		}

		subscriber.SubscribedAt, _ = time.Parse(time.RFC3339, subscribedAt)
		subscribers = append(subscribers, subscriber)
	}

	return subscribers, rows.Err()
}

func (s *SQLiteStore) DeleteSubscriber(ctx context.Context, waitlistID, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM subscribers WHERE waitlist_id = ? AND user_id = ?",
		waitlistID, userID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWaitlist(row rowScanner) (*domain.Waitlist, error) {
	var waitlist domain.Waitlist
	var createdAt string

	err := row.Scan(&waitlist.ID, &waitlist.Name, &waitlist.ChatID, &waitlist.Owner, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrWaitlistNotFound
		}
		return nil, err
	}

	waitlist.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &waitlist, nil
}

func collectWaitlists(rows *sql.Rows) ([]domain.Waitlist, error) {
	var waitlists []domain.Waitlist

	for rows.Next() {
		var waitlist domain.Waitlist
		var createdAt string

		err := rows.Scan(&waitlist.ID, &waitlist.Name, &waitlist.ChatID, &waitlist.Owner, &createdAt)
		if err != nil {
			return nil, err
		}

		waitlist.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		waitlists = append(waitlists, waitlist)
	}

	return waitlists, rows.Err()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
