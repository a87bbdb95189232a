package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/xaenox/haven-bot/internal/aggregate"
	"github.com/xaenox/haven-bot/internal/bot"
	"github.com/xaenox/haven-bot/internal/classifier"
	"github.com/xaenox/haven-bot/internal/engine"
	"github.com/xaenox/haven-bot/internal/lexicon"
	"github.com/xaenox/haven-bot/internal/metrics"
	"github.com/xaenox/haven-bot/internal/responder"
	"github.com/xaenox/haven-bot/internal/server"
	"github.com/xaenox/haven-bot/internal/storage"
	"github.com/xaenox/haven-bot/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL storage")
		store, err = storage.NewPostgresStorage(storage.DatabaseConfig{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			DBName:      cfg.Database.DBName,
			SSLMode:     cfg.Database.SSLMode,
			UseInMemory: cfg.Database.UseInMemory,
		})
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Load the lexicon; built-in terms are the fallback so safety checks
	// never start from an empty table by accident.
	lex := lexicon.Default()
	if cfg.Lexicon.Path != "" {
		loaded, err := lexicon.Load(cfg.Lexicon.Path)
		if err != nil {
			logger.Error("Failed to load lexicon file, using built-in terms",
				zap.Error(err), zap.String("path", cfg.Lexicon.Path))
		} else {
			lex = loaded
		}
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// Initialize the analysis pipeline
	clf := classifier.NewRuleClassifier(lex, logger)
	agg := aggregate.New(aggregate.Config{
		WindowSize:       cfg.Analysis.WindowSize,
		TrendDelta:       cfg.Analysis.TrendDelta,
		MinTrendSamples:  cfg.Analysis.MinTrendSamples,
		NegativeCutoff:   cfg.Analysis.NegativeCutoff,
		PositiveCutoff:   cfg.Analysis.PositiveCutoff,
		TopTopics:        cfg.Analysis.TopTopics,
		EngagementWindow: time.Duration(cfg.Analysis.EngagementWindowHrs) * time.Hour,
		EngagementHigh:   cfg.Analysis.EngagementHigh,
		EngagementMedium: cfg.Analysis.EngagementMedium,
	})
	eng := engine.New(clf, store, agg, m, logger)

	// Initialize the responder
	gen := responder.NewOpenAIResponder(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.Model,
		cfg.OpenAI.MaxTokens,
		cfg.OpenAI.Temperature,
		logger,
	)
	gen.OnFallback(m.ResponderFallback.Inc)

	// Start the Telegram bot when a token is configured
	if cfg.Telegram.Token != "" {
		b, err := bot.New(cfg.Telegram.Token, eng, gen, logger)
		if err != nil {
			logger.Fatal("Failed to create bot", zap.Error(err))
		}
		go func() {
			if err := b.Start(); err != nil {
				logger.Error("Bot error", zap.Error(err))
			}
		}()
		logger.Info("Telegram bot started")
	}

	// Start the HTTP API
	srv := server.NewHTTPServer(cfg.Server.Port, eng, gen, logger)
	logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}
