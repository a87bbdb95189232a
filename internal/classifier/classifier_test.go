package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/xaenox/haven-bot/internal/lexicon"
	"github.com/xaenox/haven-bot/internal/models"
)

func newTestClassifier() *RuleClassifier {
	return NewRuleClassifier(lexicon.Default(), zap.NewNop())
}

func TestClassifyImminentCrisisIsAlwaysCritical(t *testing.T) {
	clf := newTestClassifier()

	for _, text := range []string{
		"I want to end it all",
		"i keep thinking about SUICIDE",
		"Sometimes I just want to kill myself...",
		"there is no reason to live anymore, is there?",
	} {
		analysis := clf.Classify(text)
		assert.True(t, analysis.IsCrisis, "expected crisis for %q", text)
		assert.Equal(t, models.UrgencyCritical, analysis.UrgencyLevel, "for %q", text)
	}
}

func TestClassifySevereTier(t *testing.T) {
	clf := newTestClassifier()

	analysis := clf.Classify("I'm scared I might hurt myself tonight")
	assert.True(t, analysis.IsCrisis)
	assert.Equal(t, models.UrgencyHigh, analysis.UrgencyLevel)
}

func TestClassifyModerateTierIsNotCrisis(t *testing.T) {
	clf := newTestClassifier()

	analysis := clf.Classify("I'm feeling overwhelmed today")
	assert.False(t, analysis.IsCrisis)
	assert.Equal(t, models.UrgencyMedium, analysis.UrgencyLevel)
}

func TestClassifyTierTiesResolveUpward(t *testing.T) {
	clf := newTestClassifier()

	// Moderate and imminent terms in one message: the higher tier decides.
	analysis := clf.Classify("I'm overwhelmed and want to end it all")
	assert.True(t, analysis.IsCrisis)
	assert.Equal(t, models.UrgencyCritical, analysis.UrgencyLevel)
}

func TestClassifyNoMatches(t *testing.T) {
	clf := newTestClassifier()

	analysis := clf.Classify("The weather was fine on Tuesday")
	assert.False(t, analysis.IsCrisis)
	assert.Equal(t, models.UrgencyLow, analysis.UrgencyLevel)
	assert.False(t, analysis.IsNegative)
	assert.False(t, analysis.HasQuestion)
	assert.Empty(t, analysis.Topics)
	assert.Equal(t, len("The weather was fine on Tuesday"), analysis.MessageLength)
}

func TestClassifySentimentStrictMajority(t *testing.T) {
	clf := newTestClassifier()

	// One positive, one negative: a tie is neutral.
	analysis := clf.Classify("I feel better but still anxious")
	assert.False(t, analysis.IsNegative)

	analysis = clf.Classify("sad, lonely and anxious but a little better")
	assert.True(t, analysis.IsNegative)
}

func TestClassifyScenarioToughDayAtWork(t *testing.T) {
	clf := newTestClassifier()

	analysis := clf.Classify("I had a tough day at work, feeling stressed")
	assert.False(t, analysis.IsCrisis)
	assert.True(t, analysis.IsNegative)
	assert.Contains(t, analysis.Topics, "work")
	assert.Contains(t, analysis.Topics, "stress")
}

func TestClassifyEmptyText(t *testing.T) {
	clf := newTestClassifier()

	for _, text := range []string{"", "   ", "\n\t"} {
		analysis := clf.Classify(text)
		assert.Equal(t, models.MessageAnalysis{UrgencyLevel: models.UrgencyLow}, analysis)
	}
}

func TestClassifyStructuralFeatures(t *testing.T) {
	clf := newTestClassifier()

	analysis := clf.Classify("  How do I cope with this?  ")
	assert.True(t, analysis.HasQuestion)
	assert.Equal(t, len("How do I cope with this?"), analysis.MessageLength)
}

func TestClassifyIsDeterministic(t *testing.T) {
	clf := newTestClassifier()

	text := "I'm anxious about work, can't sleep. Any advice?"
	first := clf.Classify(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, clf.Classify(text))
	}
}

func TestClassifyDegradedModeReturnsConservativeDefaults(t *testing.T) {
	clf := NewRuleClassifier(lexicon.Empty(), zap.NewNop())

	analysis := clf.Classify("I want to end it all?")
	assert.False(t, analysis.IsCrisis)
	assert.Equal(t, models.UrgencyLow, analysis.UrgencyLevel)
	assert.False(t, analysis.IsNegative)
	assert.True(t, analysis.HasQuestion)
	assert.Equal(t, len("I want to end it all?"), analysis.MessageLength)
}
