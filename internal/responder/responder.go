package responder

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/xaenox/haven-bot/internal/models"
	"go.uber.org/zap"
)

// Generator produces supportive reply text from the current message, recent
// history and the analysis snapshot. The engine treats the output as opaque.
type Generator interface {
	Generate(ctx context.Context, userID, message string, history []*models.Message, snapshot *models.ContextSnapshot) (string, error)
	Greeting(snapshot *models.ContextSnapshot) string
}

const systemPrompt = "You are a warm, supportive, and helpful assistant trained to support users with " +
	"mental health and addiction recovery. You are not a therapist, but you offer empathetic, kind, and " +
	"motivating conversation. Always maintain a supportive and non-judgmental tone. Personalize your " +
	"responses based on the user's history and patterns."

const fallbackResponse = "I'm here to listen and support you. I'm experiencing some technical difficulties " +
	"right now, but I want you to know that your feelings are valid and important. Would you like to try " +
	"sharing again?"

const shortResponseFallback = "I understand what you're saying. Could you tell me more about how you're feeling?"

// historyTurns is how many recent turns go into the prompt.
const historyTurns = 6

type OpenAIResponder struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	logger      *zap.Logger

	onFallback func()
}

func NewOpenAIResponder(apiKey, model string, maxTokens int, temperature float64, logger *zap.Logger) *OpenAIResponder {
	return &OpenAIResponder{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

// OnFallback registers a hook invoked whenever the static fallback text is
// served instead of a generated reply.
func (r *OpenAIResponder) OnFallback(fn func()) {
	r.onFallback = fn
}

func (r *OpenAIResponder) Generate(ctx context.Context, userID, message string, history []*models.Message, snapshot *models.ContextSnapshot) (string, error) {
	prompt := BuildPrompt(userID, message, history, snapshot)

	resp, err := r.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: r.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   r.maxTokens,
			Temperature: float32(r.temperature),
		},
	)
	if err != nil {
		// A generation failure must not fail the chat request; the user still
		// gets a supportive answer.
		r.logger.Error("failed to generate response", zap.Error(err), zap.String("user_id", userID))
		if r.onFallback != nil {
			r.onFallback()
		}
		return fallbackResponse, nil
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if len(text) < 10 {
		return shortResponseFallback, nil
	}
	return text, nil
}

// BuildPrompt assembles the contextual prompt from the user's profile,
// recent history and the current message.
func BuildPrompt(userID, message string, history []*models.Message, snapshot *models.ContextSnapshot) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("User Profile (ID: %s):", userID))
	if snapshot != nil && snapshot.TotalMessages > 0 {
		parts = append(parts, fmt.Sprintf("- Total messages: %d", snapshot.TotalMessages))
		parts = append(parts, fmt.Sprintf("- Engagement level: %s", snapshot.EngagementLevel))
		parts = append(parts, fmt.Sprintf("- Overall sentiment trend: %s", snapshot.SentimentTrend))
		if len(snapshot.CommonTopics) > 0 {
			parts = append(parts, fmt.Sprintf("- Common topics discussed: %s", strings.Join(snapshot.CommonTopics, ", ")))
		}
	}

	if len(history) > 0 {
		start := 0
		if len(history) > historyTurns {
			start = len(history) - historyTurns
		}
		parts = append(parts, "", "Recent Conversation History:")
		for _, msg := range history[start:] {
			role := "User"
			if msg.Role == models.RoleAssistant {
				role = "Assistant"
			}
			parts = append(parts, fmt.Sprintf("%s: %s", role, msg.Content))
		}
	}

	parts = append(parts, "", fmt.Sprintf("Current User Message: %s", message))

	return strings.Join(parts, "\n")
}

// Greeting returns an opener personalized by the user's engagement and trend.
func (r *OpenAIResponder) Greeting(snapshot *models.ContextSnapshot) string {
	return Greeting(snapshot)
}

func Greeting(snapshot *models.ContextSnapshot) string {
	if snapshot == nil || snapshot.TotalMessages == 0 {
		return "Hello! I'm here to support you. How are you feeling today?"
	}

	switch {
	case snapshot.EngagementLevel == models.EngagementHigh:
		return "Welcome back! I'm glad to see you again. How have you been since we last talked?"
	case snapshot.SentimentTrend == models.TrendPositive || snapshot.SentimentTrend == models.TrendImproving:
		return "Hello! I noticed you've been in a positive mood lately. How are you doing today?"
	case snapshot.SentimentTrend == models.TrendNegative || snapshot.SentimentTrend == models.TrendWorsening:
		return "Hi there. I'm here to listen and support you. What's on your mind today?"
	default:
		return "Hello! How are you feeling today? I'm here to listen and support you."
	}
}
