package models

import "time"

// UserContext is the accumulated per-user aggregate. It is a pure fold over
// the user's message history: replaying the same messages from an empty
// context always reproduces the same state.
type UserContext struct {
	UserID          string               `json:"user_id"`
	TotalMessages   int                  `json:"total_messages"`
	SentimentWindow []bool               `json:"sentiment_window"`
	TopicCounts     map[string]int       `json:"topic_counts"`
	TopicLastSeen   map[string]time.Time `json:"topic_last_seen"`
	CrisisCount     int                  `json:"crisis_count"`
	LastCrisisAt    time.Time            `json:"last_crisis_at,omitempty"`
	RecentActivity  []time.Time          `json:"recent_activity"`
	FirstMessageAt  time.Time            `json:"first_message_at,omitempty"`
	LastMessageAt   time.Time            `json:"last_message_at,omitempty"`
}

func NewUserContext(userID string) *UserContext {
	return &UserContext{
		UserID:        userID,
		TopicCounts:   make(map[string]int),
		TopicLastSeen: make(map[string]time.Time),
	}
}

// Clone returns a deep copy so a fold can run without touching the original.
func (c *UserContext) Clone() *UserContext {
	clone := *c
	clone.SentimentWindow = append([]bool(nil), c.SentimentWindow...)
	clone.RecentActivity = append([]time.Time(nil), c.RecentActivity...)
	clone.TopicCounts = make(map[string]int, len(c.TopicCounts))
	for topic, count := range c.TopicCounts {
		clone.TopicCounts[topic] = count
	}
	clone.TopicLastSeen = make(map[string]time.Time, len(c.TopicLastSeen))
	for topic, seen := range c.TopicLastSeen {
		clone.TopicLastSeen[topic] = seen
	}
	return &clone
}

// ContextSnapshot is the derived view handed to callers; the raw aggregate is
// never exposed outside the engine.
type ContextSnapshot struct {
	UserID          string           `json:"user_id"`
	TotalMessages   int              `json:"total_messages"`
	SentimentTrend  SentimentTrend   `json:"sentiment_trend"`
	CommonTopics    []string         `json:"common_topics"`
	EngagementLevel EngagementLevel  `json:"engagement_level"`
	CurrentMessage  *MessageAnalysis `json:"current_message_analysis,omitempty"`
}
