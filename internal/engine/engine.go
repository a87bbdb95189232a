package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xaenox/haven-bot/internal/aggregate"
	"github.com/xaenox/haven-bot/internal/classifier"
	"github.com/xaenox/haven-bot/internal/metrics"
	"github.com/xaenox/haven-bot/internal/models"
	"github.com/xaenox/haven-bot/internal/storage"
	"go.uber.org/zap"
)

// ErrEmptyUserID is returned for requests without a usable user identifier.
var ErrEmptyUserID = errors.New("user id must not be empty")

// Engine is the single entry point for context analysis: it classifies the
// incoming message, folds it into the user's aggregate under a per-user lock
// and returns the derived snapshot. Requests for different users run in
// parallel; two updates for the same user never interleave.
type Engine struct {
	classifier classifier.Classifier
	store      storage.Storage
	aggregator *aggregate.Aggregator
	logger     *zap.Logger
	metrics    *metrics.Metrics
	now        func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(clf classifier.Classifier, store storage.Storage, agg *aggregate.Aggregator, m *metrics.Metrics, logger *zap.Logger) *Engine {
	return &Engine{
		classifier: clf,
		store:      store,
		aggregator: agg,
		logger:     logger,
		metrics:    m,
		now:        time.Now,
		locks:      make(map[string]*sync.Mutex),
	}
}

// userLock returns the mutex guarding one user's aggregate, creating it on
// first use. One lock per user keeps cross-user requests fully parallel.
func (e *Engine) userLock(userID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, exists := e.locks[userID]
	if !exists {
		lock = &sync.Mutex{}
		e.locks[userID] = lock
	}
	return lock
}

// Analyze classifies text, folds it into the user's aggregate and persists
// both the message and the updated aggregate. On any persistence error the
// in-memory fold is discarded and nothing is partially applied.
func (e *Engine) Analyze(ctx context.Context, userID, text string) (*models.ContextSnapshot, *models.Message, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil, ErrEmptyUserID
	}

	started := e.now()
	analysis := e.classifier.Classify(text)

	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	uc, err := e.store.GetUserContext(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	msg := &models.Message{
		ID:        uuid.New().String(),
		UserID:    userID,
		Role:      models.RoleUser,
		Content:   text,
		Analysis:  &analysis,
		CreatedAt: e.now(),
	}

	updated := e.aggregator.Apply(uc, msg, &analysis)

	if err := e.store.SaveMessage(ctx, msg); err != nil {
		return nil, nil, err
	}
	if err := e.store.SaveUserContext(ctx, updated); err != nil {
		return nil, nil, err
	}

	if analysis.IsCrisis {
		e.logger.Warn("crisis detected",
			zap.String("user_id", userID),
			zap.String("urgency_level", string(analysis.UrgencyLevel)))
		if e.metrics != nil {
			e.metrics.CrisisDetected.Inc()
		}
	}
	if e.metrics != nil {
		e.metrics.MessagesProcessed.WithLabelValues(string(models.RoleUser)).Inc()
		e.metrics.AnalyzeDuration.Observe(e.now().Sub(started).Seconds())
	}

	return e.aggregator.Snapshot(updated, &analysis), msg, nil
}

// RecordReply appends an assistant turn to the user's history. Assistant
// turns extend the history count but leave the rolling user statistics
// untouched.
func (e *Engine) RecordReply(ctx context.Context, userID, text string) (*models.Message, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	uc, err := e.store.GetUserContext(ctx, userID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ID:        uuid.New().String(),
		UserID:    userID,
		Role:      models.RoleAssistant,
		Content:   text,
		CreatedAt: e.now(),
	}

	updated := e.aggregator.Apply(uc, msg, nil)

	if err := e.store.SaveMessage(ctx, msg); err != nil {
		return nil, err
	}
	if err := e.store.SaveUserContext(ctx, updated); err != nil {
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.MessagesProcessed.WithLabelValues(string(models.RoleAssistant)).Inc()
	}

	return msg, nil
}

// UserSnapshot derives the current snapshot for a user without folding a new
// message. New users get a lazily created empty aggregate.
func (e *Engine) UserSnapshot(ctx context.Context, userID string) (*models.ContextSnapshot, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	uc, err := e.store.GetUserContext(ctx, userID)
	if err != nil {
		return nil, err
	}

	return e.aggregator.Snapshot(uc, nil), nil
}

// UserSummary reports history totals and first/last activity for a user.
func (e *Engine) UserSummary(ctx context.Context, userID string) (*UserSummary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	uc, err := e.store.GetUserContext(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &UserSummary{
		UserID:        uc.UserID,
		TotalMessages: uc.TotalMessages,
		CrisisEvents:  uc.CrisisCount,
	}
	if !uc.FirstMessageAt.IsZero() {
		summary.FirstMessageAt = &uc.FirstMessageAt
	}
	if !uc.LastMessageAt.IsZero() {
		summary.LastMessageAt = &uc.LastMessageAt
	}
	return summary, nil
}

// History returns the most recent turns for a user in chronological order.
func (e *Engine) History(ctx context.Context, userID string, limit int) ([]*models.Message, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	return e.store.GetHistory(ctx, userID, limit)
}

type UserSummary struct {
	UserID         string     `json:"user_id"`
	TotalMessages  int        `json:"total_messages"`
	CrisisEvents   int        `json:"crisis_events"`
	FirstMessageAt *time.Time `json:"first_message_at,omitempty"`
	LastMessageAt  *time.Time `json:"last_message_at,omitempty"`
}
