package bot

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/xaenox/haven-bot/internal/engine"
	"github.com/xaenox/haven-bot/internal/responder"
)

// historyLimit mirrors the HTTP handler: how many turns the responder sees.
const historyLimit = 10

// Bot is a Telegram front end over the same analysis engine the HTTP API
// uses. Each chat participant maps to one user id.
type Bot struct {
	api       *tgbotapi.BotAPI
	engine    *engine.Engine
	responder responder.Generator
	logger    *zap.Logger
}

func New(token string, eng *engine.Engine, gen responder.Generator, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		api:       api,
		engine:    eng,
		responder: gen,
		logger:    logger,
	}, nil
}

func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		go b.handleMessage(update.Message)
	}

	return nil
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	ctx := context.Background()
	userID := strconv.FormatInt(message.From.ID, 10)

	if message.IsCommand() {
		b.handleCommand(ctx, userID, message)
		return
	}

	text := message.Text
	if text == "" {
		return
	}

	snapshot, _, err := b.engine.Analyze(ctx, userID, text)
	if err != nil {
		b.logger.Error("Failed to analyze message",
			zap.Error(err),
			zap.String("user_id", userID))
		b.sendErrorMessage(message.Chat.ID)
		return
	}

	history, err := b.engine.History(ctx, userID, historyLimit)
	if err != nil {
		b.logger.Error("Failed to load history",
			zap.Error(err),
			zap.String("user_id", userID))
		b.sendErrorMessage(message.Chat.ID)
		return
	}

	reply, err := b.responder.Generate(ctx, userID, text, history, snapshot)
	if err != nil {
		b.logger.Error("Failed to generate reply",
			zap.Error(err),
			zap.String("user_id", userID))
		b.sendErrorMessage(message.Chat.ID)
		return
	}

	if snapshot.CurrentMessage != nil && snapshot.CurrentMessage.IsCrisis {
		reply += responder.CrisisFooter()
	}

	if _, err := b.engine.RecordReply(ctx, userID, reply); err != nil {
		b.logger.Error("Failed to record reply",
			zap.Error(err),
			zap.String("user_id", userID))
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, reply)
	msg.ReplyToMessageID = message.MessageID
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send reply",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
	}
}

func (b *Bot) handleCommand(ctx context.Context, userID string, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		snapshot, err := b.engine.UserSnapshot(ctx, userID)
		if err != nil {
			b.logger.Error("Failed to load user snapshot",
				zap.Error(err),
				zap.String("user_id", userID))
			b.sendErrorMessage(message.Chat.ID)
			return
		}
		greeting := b.responder.Greeting(snapshot)
		if _, err := b.api.Send(tgbotapi.NewMessage(message.Chat.ID, greeting)); err != nil {
			b.logger.Error("Failed to send greeting", zap.Error(err))
		}
	default:
		reply := tgbotapi.NewMessage(message.Chat.ID, "Just send me a message and I'll listen.")
		if _, err := b.api.Send(reply); err != nil {
			b.logger.Error("Failed to send command reply", zap.Error(err))
		}
	}
}

func (b *Bot) sendErrorMessage(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "Sorry, I'm having trouble responding right now. Please try again later.")
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send error message", zap.Error(err))
	}
}
