package responder

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xaenox/haven-bot/internal/models"
)

func TestBuildPromptIncludesProfileAndMessage(t *testing.T) {
	snapshot := &models.ContextSnapshot{
		UserID:          "user-1",
		TotalMessages:   12,
		SentimentTrend:  models.TrendWorsening,
		CommonTopics:    []string{"work", "stress"},
		EngagementLevel: models.EngagementHigh,
	}

	prompt := BuildPrompt("user-1", "rough week again", nil, snapshot)

	assert.Contains(t, prompt, "User Profile (ID: user-1):")
	assert.Contains(t, prompt, "- Total messages: 12")
	assert.Contains(t, prompt, "- Engagement level: high")
	assert.Contains(t, prompt, "- Overall sentiment trend: worsening")
	assert.Contains(t, prompt, "- Common topics discussed: work, stress")
	assert.Contains(t, prompt, "Current User Message: rough week again")
}

func TestBuildPromptSkipsProfileForNewUsers(t *testing.T) {
	snapshot := &models.ContextSnapshot{UserID: "user-1"}

	prompt := BuildPrompt("user-1", "hi", nil, snapshot)

	assert.NotContains(t, prompt, "Total messages")
	assert.Contains(t, prompt, "Current User Message: hi")
}

func TestBuildPromptTruncatesHistory(t *testing.T) {
	var history []*models.Message
	for i := 0; i < 10; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		history = append(history, &models.Message{
			Role:    role,
			Content: fmt.Sprintf("turn %d", i),
		})
	}

	prompt := BuildPrompt("user-1", "now", history, nil)

	assert.NotContains(t, prompt, "turn 3")
	assert.Contains(t, prompt, "User: turn 4")
	assert.Contains(t, prompt, "Assistant: turn 9")
	assert.Equal(t, historyTurns, strings.Count(prompt, "turn "))
}

func TestGreetingVariants(t *testing.T) {
	assert.Contains(t, Greeting(nil), "Hello! I'm here to support you")

	first := &models.ContextSnapshot{TotalMessages: 0}
	assert.Contains(t, Greeting(first), "How are you feeling today?")

	engaged := &models.ContextSnapshot{
		TotalMessages:   30,
		EngagementLevel: models.EngagementHigh,
		SentimentTrend:  models.TrendNeutral,
	}
	assert.Contains(t, Greeting(engaged), "Welcome back")

	upbeat := &models.ContextSnapshot{
		TotalMessages:   5,
		EngagementLevel: models.EngagementLow,
		SentimentTrend:  models.TrendImproving,
	}
	assert.Contains(t, Greeting(upbeat), "positive mood")

	struggling := &models.ContextSnapshot{
		TotalMessages:   5,
		EngagementLevel: models.EngagementLow,
		SentimentTrend:  models.TrendNegative,
	}
	assert.Contains(t, Greeting(struggling), "What's on your mind")
}

func TestCrisisFooterListsResources(t *testing.T) {
	footer := CrisisFooter()

	assert.Contains(t, footer, "988")
	for _, resource := range CrisisResources {
		assert.Contains(t, footer, resource)
	}
}
