package chat

import "context"

// Store persists sessions. Put is a compare-and-swap on Version: it fails with
// ErrConflict when the stored version differs, and bumps Version on success.
type Store interface {
	Get(ctx context.Context, userID string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, userID string) error
}

// Recipient is a user reachable by a broadcast.
type Recipient struct {
	UserID string `json:"user_id" bson:"user_id"`
	ChatID string `json:"chat_id" bson:"chat_id"`
}

// Directory lists every known user.
type Directory interface {
	Recipients(ctx context.Context) ([]Recipient, error)
}

// SessionRepository defines the database operations for sessions.
type SessionRepository interface {
	GetSession(ctx context.Context, userID string) (*Session, error)
	PutSession(ctx context.Context, s *Session) error
	DeleteSession(ctx context.Context, userID string) error
	ListRecipients(ctx context.Context) ([]Recipient, error)
}

// RepositoryStore adapts the database repository to Store and Directory.
type RepositoryStore struct {
	repo SessionRepository
}

func NewRepositoryStore(repo SessionRepository) *RepositoryStore {
	return &RepositoryStore{repo: repo}
}

func (s *RepositoryStore) Get(ctx context.Context, userID string) (*Session, error) {
	return s.repo.GetSession(ctx, userID)
}

func (s *RepositoryStore) Put(ctx context.Context, sess *Session) error {
	return s.repo.PutSession(ctx, sess)
}

func (s *RepositoryStore) Delete(ctx context.Context, userID string) error {
	return s.repo.DeleteSession(ctx, userID)
}

func (s *RepositoryStore) Recipients(ctx context.Context) ([]Recipient, error) {
	return s.repo.ListRecipients(ctx)
}
