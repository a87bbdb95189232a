package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighestCrisisTierPicksHigher(t *testing.T) {
	lex := Default()

	// "overwhelmed" is moderate, "suicide" is imminent; the higher tier wins.
	tier, found := lex.HighestCrisisTier("i feel overwhelmed and keep thinking about suicide")
	assert.True(t, found)
	assert.Equal(t, TierImminent, tier)

	tier, found = lex.HighestCrisisTier("i feel overwhelmed")
	assert.True(t, found)
	assert.Equal(t, TierModerate, tier)
}

func TestMatchingIsCaseInsensitive(t *testing.T) {
	lex := Default()

	for _, text := range []string{
		"SUICIDE",
		"Suicide.",
		"thinking about Suicide, again",
		"suicide?",
	} {
		_, found := lex.HighestCrisisTier(text)
		assert.True(t, found, "expected a match in %q", text)
	}
}

func TestWordBoundaries(t *testing.T) {
	lex := Default()

	// "crisis" inside another word must not match from the left.
	_, found := lex.HighestCrisisTier("the microcrisis theory")
	assert.False(t, found)

	// Phrase terms need boundaries on both sides.
	_, found = lex.HighestCrisisTier("the weekend it allows us to rest")
	assert.False(t, found)

	tier, found := lex.HighestCrisisTier("I want to end it all")
	assert.True(t, found)
	assert.Equal(t, TierImminent, tier)
}

func TestStemMatching(t *testing.T) {
	lex := Default()

	// "stress" is long enough to act as a stem.
	topics := lex.Topics("feeling stressed about everything")
	assert.Contains(t, topics, "stress")

	// "sad" is too short for stem matching, so "saddle" stays clean.
	positive, negative := lex.SentimentCounts("the saddle was comfortable")
	assert.Zero(t, positive)
	assert.Zero(t, negative)

	positive, negative = lex.SentimentCounts("I am sad")
	assert.Zero(t, positive)
	assert.Equal(t, 1, negative)
}

func TestSentimentCounts(t *testing.T) {
	lex := Default()

	positive, negative := lex.SentimentCounts("therapy is helpful and I feel better, less anxious")
	assert.Equal(t, 2, positive)
	assert.Equal(t, 1, negative)
}

func TestTopicsAreDeterministic(t *testing.T) {
	lex := Default()

	text := "work stress is ruining my sleep"
	first := lex.Topics(text)
	second := lex.Topics(text)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"sleep", "stress", "work"}, first)
}

func TestEmptyLexiconFindsNothing(t *testing.T) {
	lex := Empty()

	assert.True(t, lex.IsEmpty())

	_, found := lex.HighestCrisisTier("suicide")
	assert.False(t, found)

	positive, negative := lex.SentimentCounts("sad and hopeless")
	assert.Zero(t, positive)
	assert.Zero(t, negative)

	assert.Empty(t, lex.Topics("work stress"))
}
