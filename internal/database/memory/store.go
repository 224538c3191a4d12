package memory

import (
	"context"
	"sort"
	"sync"

	"CopperxBot/bot/chat"
)

// Store keeps sessions in process memory. Values are copied in and out so
// callers never share a session with the store.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*chat.Session
}

func New() *Store {
	return &Store{sessions: make(map[string]*chat.Session)}
}

func (s *Store) Get(_ context.Context, userID string) (*chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, nil
	}
	return sess.Clone(), nil
}

func (s *Store) Put(_ context.Context, sess *chat.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stored int64
	if cur, ok := s.sessions[sess.UserID]; ok {
		stored = cur.Version
	}
	if stored != sess.Version {
		return chat.ErrConflict
	}
	sess.Version++
	s.sessions[sess.UserID] = sess.Clone()
	return nil
}

func (s *Store) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

func (s *Store) Recipients(_ context.Context) ([]chat.Recipient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]chat.Recipient, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, chat.Recipient{UserID: sess.UserID, ChatID: sess.ChatID})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}
