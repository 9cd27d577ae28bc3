package store

import (
	"context"
	"sync"

	"github.com/havenapp/haven/internal/domain"
)

// MemoryStore keeps records in process memory. It backs offline mode and
// tests; history does not survive a restart, which is acceptable because
// nothing in the live path depends on it.
type MemoryStore struct {
	mu       sync.RWMutex
	messages []domain.Whisper
	echoes   []domain.Echo
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) AppendMessage(_ context.Context, w domain.Whisper) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, w)
	return nil
}

func (s *MemoryStore) AppendEcho(_ context.Context, e domain.Echo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.echoes = append(s.echoes, e)
	return nil
}

// QueryMessagesForUser returns every whisper sent to or by the identity,
// oldest first.
func (s *MemoryStore) QueryMessagesForUser(_ context.Context, userID domain.UserID) ([]domain.Whisper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Whisper
	for _, m := range s.messages {
		if m.ReceiverID == userID || m.SenderID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

// QueryEchoesRecent returns up to limit echoes, newest first.
func (s *MemoryStore) QueryEchoesRecent(_ context.Context, limit int) ([]domain.Echo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.echoes)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]domain.Echo, 0, limit)
	for i := n - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.echoes[i])
	}
	return out, nil
}

func (s *MemoryStore) Close() {}
