package aggregate

import (
	"sort"
	"time"

	"github.com/xaenox/haven-bot/internal/models"
)

// Config holds the window sizes and thresholds for the derived statistics.
// The values are defaults, not verified ground truth, so everything here is
// tunable from configuration.
type Config struct {
	WindowSize       int
	TrendDelta       float64
	MinTrendSamples  int
	NegativeCutoff   float64
	PositiveCutoff   float64
	TopTopics        int
	EngagementWindow time.Duration
	EngagementHigh   int
	EngagementMedium int
}

func DefaultConfig() Config {
	return Config{
		WindowSize:       10,
		TrendDelta:       0.2,
		MinTrendSamples:  3,
		NegativeCutoff:   0.5,
		PositiveCutoff:   0.3,
		TopTopics:        3,
		EngagementWindow: 24 * time.Hour,
		EngagementHigh:   10,
		EngagementMedium: 3,
	}
}

// Aggregator folds messages into a per-user context and derives the rolling
// statistics from it. Apply is deterministic: the same ordered message
// sequence always produces the same final aggregate.
type Aggregator struct {
	cfg Config
}

func New(cfg Config) *Aggregator {
	if cfg.WindowSize <= 0 {
		cfg = DefaultConfig()
	}
	return &Aggregator{cfg: cfg}
}

// Apply returns a new aggregate with one message folded in. The input
// aggregate is never mutated, so a failed persistence write leaves no
// partially applied state behind.
func (a *Aggregator) Apply(uc *models.UserContext, msg *models.Message, analysis *models.MessageAnalysis) *models.UserContext {
	next := uc.Clone()

	next.TotalMessages++
	if next.FirstMessageAt.IsZero() {
		next.FirstMessageAt = msg.CreatedAt
	}
	next.LastMessageAt = msg.CreatedAt

	// Assistant turns count toward history length only; the rolling
	// statistics track user activity.
	if msg.Role != models.RoleUser || analysis == nil {
		return next
	}

	next.SentimentWindow = append(next.SentimentWindow, analysis.IsNegative)
	if len(next.SentimentWindow) > a.cfg.WindowSize {
		next.SentimentWindow = next.SentimentWindow[len(next.SentimentWindow)-a.cfg.WindowSize:]
	}

	for _, topic := range analysis.Topics {
		next.TopicCounts[topic]++
		next.TopicLastSeen[topic] = msg.CreatedAt
	}

	if analysis.IsCrisis {
		next.CrisisCount++
		next.LastCrisisAt = msg.CreatedAt
	}

	next.RecentActivity = append(next.RecentActivity, msg.CreatedAt)
	cutoff := msg.CreatedAt.Add(-a.cfg.EngagementWindow)
	for len(next.RecentActivity) > 0 && !next.RecentActivity[0].After(cutoff) {
		next.RecentActivity = next.RecentActivity[1:]
	}

	return next
}

// Snapshot derives the caller-facing view from an aggregate.
func (a *Aggregator) Snapshot(uc *models.UserContext, current *models.MessageAnalysis) *models.ContextSnapshot {
	return &models.ContextSnapshot{
		UserID:          uc.UserID,
		TotalMessages:   uc.TotalMessages,
		SentimentTrend:  a.SentimentTrend(uc),
		CommonTopics:    a.CommonTopics(uc),
		EngagementLevel: a.EngagementLevel(uc),
		CurrentMessage:  current,
	}
}

// SentimentTrend compares the negative ratio of the most recent half of the
// window against the previous half; if neither half dominates by more than
// the configured delta, the absolute ratio over the whole window decides.
func (a *Aggregator) SentimentTrend(uc *models.UserContext) models.SentimentTrend {
	window := uc.SentimentWindow
	if len(window) < a.cfg.MinTrendSamples {
		// Too few samples to call a trend either way.
		return models.TrendNeutral
	}

	half := len(window) / 2
	recent := window[len(window)-half:]
	prior := window[:len(window)-half]

	diff := negativeRatio(recent) - negativeRatio(prior)
	switch {
	case diff > a.cfg.TrendDelta:
		return models.TrendWorsening
	case diff < -a.cfg.TrendDelta:
		return models.TrendImproving
	}

	switch ratio := negativeRatio(window); {
	case ratio > a.cfg.NegativeCutoff:
		return models.TrendNegative
	case ratio < a.cfg.PositiveCutoff:
		return models.TrendPositive
	default:
		return models.TrendNeutral
	}
}

// CommonTopics ranks topics by cumulative count, breaking ties by most recent
// occurrence, and returns the top entries.
func (a *Aggregator) CommonTopics(uc *models.UserContext) []string {
	if len(uc.TopicCounts) == 0 {
		return nil
	}

	topics := make([]string, 0, len(uc.TopicCounts))
	for topic := range uc.TopicCounts {
		topics = append(topics, topic)
	}
	sort.Slice(topics, func(i, j int) bool {
		ci, cj := uc.TopicCounts[topics[i]], uc.TopicCounts[topics[j]]
		if ci != cj {
			return ci > cj
		}
		si, sj := uc.TopicLastSeen[topics[i]], uc.TopicLastSeen[topics[j]]
		if !si.Equal(sj) {
			return si.After(sj)
		}
		return topics[i] < topics[j]
	})

	if len(topics) > a.cfg.TopTopics {
		topics = topics[:a.cfg.TopTopics]
	}
	return topics
}

// EngagementLevel rates message frequency over the trailing activity window.
// The window is anchored to the user's last message rather than the wall
// clock, which keeps replays deterministic.
func (a *Aggregator) EngagementLevel(uc *models.UserContext) models.EngagementLevel {
	count := len(uc.RecentActivity)
	switch {
	case count >= a.cfg.EngagementHigh:
		return models.EngagementHigh
	case count >= a.cfg.EngagementMedium:
		return models.EngagementMedium
	default:
		return models.EngagementLow
	}
}

func negativeRatio(window []bool) float64 {
	if len(window) == 0 {
		return 0
	}
	negatives := 0
	for _, isNegative := range window {
		if isNegative {
			negatives++
		}
	}
	return float64(negatives) / float64(len(window))
}
