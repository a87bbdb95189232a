package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/xaenox/haven-bot/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config DatabaseConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	storage := &PostgresStorage{db: db}

	// Initialize database schema
	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %v", err)
	}

	_, err = s.db.Exec(string(migrationSQL))
	if err != nil {
		return fmt.Errorf("error executing migrations: %v", err)
	}

	return nil
}

func (s *PostgresStorage) GetUserContext(ctx context.Context, userID string) (*models.UserContext, error) {
	query := `
		SELECT total_messages, sentiment_window, topic_counts, topic_last_seen,
		       crisis_count, last_crisis_at, recent_activity, first_message_at, last_message_at
		FROM user_contexts
		WHERE user_id = $1`

	uc := models.NewUserContext(userID)
	var (
		window        pq.BoolArray
		topicCounts   []byte
		topicLastSeen []byte
		activity      []byte
		lastCrisisAt  sql.NullTime
		firstAt       sql.NullTime
		lastAt        sql.NullTime
	)

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&uc.TotalMessages,
		&window,
		&topicCounts,
		&topicLastSeen,
		&uc.CrisisCount,
		&lastCrisisAt,
		&activity,
		&firstAt,
		&lastAt,
	)
	if err == sql.ErrNoRows {
		return uc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying user context: %v", err)
	}

	uc.SentimentWindow = []bool(window)
	if err := json.Unmarshal(topicCounts, &uc.TopicCounts); err != nil {
		return nil, fmt.Errorf("error decoding topic counts: %v", err)
	}
	if err := json.Unmarshal(topicLastSeen, &uc.TopicLastSeen); err != nil {
		return nil, fmt.Errorf("error decoding topic timestamps: %v", err)
	}
	if err := json.Unmarshal(activity, &uc.RecentActivity); err != nil {
		return nil, fmt.Errorf("error decoding recent activity: %v", err)
	}
	if lastCrisisAt.Valid {
		uc.LastCrisisAt = lastCrisisAt.Time
	}
	if firstAt.Valid {
		uc.FirstMessageAt = firstAt.Time
	}
	if lastAt.Valid {
		uc.LastMessageAt = lastAt.Time
	}

	return uc, nil
}

func (s *PostgresStorage) SaveUserContext(ctx context.Context, uc *models.UserContext) error {
	topicCounts, err := json.Marshal(uc.TopicCounts)
	if err != nil {
		return fmt.Errorf("error encoding topic counts: %v", err)
	}
	topicLastSeen, err := json.Marshal(uc.TopicLastSeen)
	if err != nil {
		return fmt.Errorf("error encoding topic timestamps: %v", err)
	}
	activity, err := json.Marshal(uc.RecentActivity)
	if err != nil {
		return fmt.Errorf("error encoding recent activity: %v", err)
	}

	query := `
		INSERT INTO user_contexts (
			user_id, total_messages, sentiment_window, topic_counts, topic_last_seen,
			crisis_count, last_crisis_at, recent_activity, first_message_at, last_message_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO UPDATE SET
			total_messages = EXCLUDED.total_messages,
			sentiment_window = EXCLUDED.sentiment_window,
			topic_counts = EXCLUDED.topic_counts,
			topic_last_seen = EXCLUDED.topic_last_seen,
			crisis_count = EXCLUDED.crisis_count,
			last_crisis_at = EXCLUDED.last_crisis_at,
			recent_activity = EXCLUDED.recent_activity,
			first_message_at = EXCLUDED.first_message_at,
			last_message_at = EXCLUDED.last_message_at,
			updated_at = EXCLUDED.updated_at`

	_, err = s.db.ExecContext(ctx, query,
		uc.UserID,
		uc.TotalMessages,
		pq.BoolArray(uc.SentimentWindow),
		topicCounts,
		topicLastSeen,
		uc.CrisisCount,
		nullTime(uc.LastCrisisAt),
		activity,
		nullTime(uc.FirstMessageAt),
		nullTime(uc.LastMessageAt),
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("error saving user context: %v", err)
	}

	return nil
}

func (s *PostgresStorage) SaveMessage(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (id, user_id, role, content, is_crisis, urgency_level,
		                      is_negative, message_length, has_question, topics, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	analysis := msg.Analysis
	if analysis == nil {
		analysis = &models.MessageAnalysis{UrgencyLevel: models.UrgencyLow}
	}

	_, err := s.db.ExecContext(ctx, query,
		msg.ID,
		msg.UserID,
		msg.Role,
		msg.Content,
		analysis.IsCrisis,
		analysis.UrgencyLevel,
		analysis.IsNegative,
		analysis.MessageLength,
		analysis.HasQuestion,
		pq.StringArray(analysis.Topics),
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving message: %v", err)
	}

	return nil
}

func (s *PostgresStorage) GetHistory(ctx context.Context, userID string, limit int) ([]*models.Message, error) {
	// NULLIF turns a non-positive limit into LIMIT NULL, i.e. no limit,
	// matching the in-memory behavior.
	query := `
		SELECT id, user_id, role, content, is_crisis, urgency_level,
		       is_negative, message_length, has_question, topics, created_at
		FROM messages
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT NULLIF(GREATEST($2, 0), 0)`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %v", err)
	}
	defer rows.Close()

	var history []*models.Message
	for rows.Next() {
		msg := &models.Message{}
		analysis := &models.MessageAnalysis{}
		var topics pq.StringArray
		err := rows.Scan(
			&msg.ID,
			&msg.UserID,
			&msg.Role,
			&msg.Content,
			&analysis.IsCrisis,
			&analysis.UrgencyLevel,
			&analysis.IsNegative,
			&analysis.MessageLength,
			&analysis.HasQuestion,
			&topics,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning message: %v", err)
		}
		analysis.Topics = []string(topics)
		if msg.Role == models.RoleUser {
			msg.Analysis = analysis
		}
		history = append(history, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %v", err)
	}

	// Return in chronological order (oldest first)
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}

	return history, nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
