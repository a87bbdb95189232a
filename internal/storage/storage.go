package storage

import (
	"context"

	"github.com/xaenox/haven-bot/internal/models"
)

// Storage is the persistence collaborator for messages and per-user
// aggregates. Implementations must provide read-your-writes for sequential
// operations on a single user id; the engine serializes those itself.
type Storage interface {
	// GetUserContext returns the stored aggregate, or a fresh empty one for
	// users that have never written.
	GetUserContext(ctx context.Context, userID string) (*models.UserContext, error)
	SaveUserContext(ctx context.Context, uc *models.UserContext) error

	SaveMessage(ctx context.Context, msg *models.Message) error
	// GetHistory returns the most recent messages in chronological order.
	GetHistory(ctx context.Context, userID string, limit int) ([]*models.Message, error)

	Close() error
}
