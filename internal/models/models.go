package models

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "low"
	UrgencyMedium   UrgencyLevel = "medium"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyCritical UrgencyLevel = "critical"
)

type SentimentTrend string

const (
	TrendPositive  SentimentTrend = "positive"
	TrendNegative  SentimentTrend = "negative"
	TrendNeutral   SentimentTrend = "neutral"
	TrendImproving SentimentTrend = "improving"
	TrendWorsening SentimentTrend = "worsening"
)

type EngagementLevel string

const (
	EngagementLow    EngagementLevel = "low"
	EngagementMedium EngagementLevel = "medium"
	EngagementHigh   EngagementLevel = "high"
)

// MessageAnalysis is the classification of a single message, computed once at
// ingestion time and never recomputed afterwards.
type MessageAnalysis struct {
	IsCrisis      bool         `json:"is_crisis"`
	UrgencyLevel  UrgencyLevel `json:"urgency_level"`
	IsNegative    bool         `json:"is_negative"`
	MessageLength int          `json:"message_length"`
	HasQuestion   bool         `json:"has_question"`
	Topics        []string     `json:"topics,omitempty"`
}

// Message represents one turn in a user's conversation. Analysis is set for
// user turns only; assistant turns carry nil.
type Message struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Role      Role             `json:"role"`
	Content   string           `json:"content"`
	Analysis  *MessageAnalysis `json:"analysis,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
