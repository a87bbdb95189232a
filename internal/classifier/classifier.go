package classifier

import (
	"strings"
	"unicode/utf8"

	"github.com/xaenox/haven-bot/internal/lexicon"
	"github.com/xaenox/haven-bot/internal/models"
	"go.uber.org/zap"
)

type Classifier interface {
	Classify(text string) models.MessageAnalysis
}

// RuleClassifier analyzes a message against the lexicon. Classify is a pure
// function of its input: no history, no I/O, no randomness.
type RuleClassifier struct {
	lex    *lexicon.Lexicon
	logger *zap.Logger
}

func NewRuleClassifier(lex *lexicon.Lexicon, logger *zap.Logger) *RuleClassifier {
	return &RuleClassifier{
		lex:    lex,
		logger: logger,
	}
}

func (c *RuleClassifier) Classify(text string) models.MessageAnalysis {
	trimmed := strings.TrimSpace(text)

	analysis := models.MessageAnalysis{
		UrgencyLevel:  models.UrgencyLow,
		MessageLength: utf8.RuneCountInString(trimmed),
		HasQuestion:   strings.Contains(trimmed, "?"),
	}

	if trimmed == "" {
		return analysis
	}

	if c.lex.IsEmpty() {
		// Degraded mode weakens the safety guarantees, so it must be visible
		// in the logs every time it happens.
		c.logger.Warn("lexicon unavailable, returning conservative defaults",
			zap.Int("message_length", analysis.MessageLength))
		return analysis
	}

	// Crisis detection is fail-closed: any matching term sets the urgency for
	// its tier, and the highest matching tier wins.
	if tier, ok := c.lex.HighestCrisisTier(trimmed); ok {
		switch tier {
		case lexicon.TierImminent:
			analysis.IsCrisis = true
			analysis.UrgencyLevel = models.UrgencyCritical
		case lexicon.TierSevere:
			analysis.IsCrisis = true
			analysis.UrgencyLevel = models.UrgencyHigh
		case lexicon.TierModerate:
			analysis.UrgencyLevel = models.UrgencyMedium
		}
	}

	// Strict majority: a tie counts as neutral, not negative.
	positive, negative := c.lex.SentimentCounts(trimmed)
	analysis.IsNegative = negative > positive

	analysis.Topics = c.lex.Topics(trimmed)

	return analysis
}
