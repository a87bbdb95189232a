package storage

import (
	"context"
	"sync"

	"github.com/xaenox/haven-bot/internal/models"
)

type MemoryStorage struct {
	mu       sync.RWMutex
	contexts map[string]*models.UserContext
	messages map[string][]*models.Message
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		contexts: make(map[string]*models.UserContext),
		messages: make(map[string][]*models.Message),
	}
}

func (s *MemoryStorage) GetUserContext(ctx context.Context, userID string) (*models.UserContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if uc, exists := s.contexts[userID]; exists {
		return uc.Clone(), nil
	}
	return models.NewUserContext(userID), nil
}

func (s *MemoryStorage) SaveUserContext(ctx context.Context, uc *models.UserContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.contexts[uc.UserID] = uc.Clone()
	return nil
}

func (s *MemoryStorage) SaveMessage(ctx context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages[msg.UserID] = append(s.messages[msg.UserID], msg)
	return nil
}

func (s *MemoryStorage) GetHistory(ctx context.Context, userID string, limit int) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.messages[userID]
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}

	result := make([]*models.Message, len(history))
	copy(result, history)
	return result, nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
