package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaenox/haven-bot/internal/models"
)

func TestMemoryGetUserContextReturnsEmptyForNewUser(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	uc, err := store.GetUserContext(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, "nobody", uc.UserID)
	assert.Zero(t, uc.TotalMessages)
	assert.NotNil(t, uc.TopicCounts)
}

func TestMemoryReadYourWrites(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	uc := models.NewUserContext("user-1")
	uc.TotalMessages = 3
	uc.TopicCounts["work"] = 2
	require.NoError(t, store.SaveUserContext(ctx, uc))

	loaded, err := store.GetUserContext(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.TotalMessages)
	assert.Equal(t, 2, loaded.TopicCounts["work"])
}

func TestMemoryStorageIsolatesStoredState(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	uc := models.NewUserContext("user-1")
	uc.TotalMessages = 1
	require.NoError(t, store.SaveUserContext(ctx, uc))

	// Mutating either the saved value or a loaded copy must not leak into
	// the stored state.
	uc.TotalMessages = 99
	loaded, err := store.GetUserContext(ctx, "user-1")
	require.NoError(t, err)
	loaded.TopicCounts["junk"] = 5

	fresh, err := store.GetUserContext(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.TotalMessages)
	assert.Empty(t, fresh.TopicCounts)
}

func TestMemoryHistoryOrderAndLimit(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		msg := &models.Message{
			ID:        string(rune('a' + i)),
			UserID:    "user-1",
			Role:      models.RoleUser,
			Content:   "m",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.SaveMessage(ctx, msg))
	}

	history, err := store.GetHistory(ctx, "user-1", 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "c", history[0].ID)
	assert.Equal(t, "e", history[2].ID)

	all, err := store.GetHistory(ctx, "user-1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}
