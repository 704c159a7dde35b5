package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mwd-agent/config"
	"mwd-agent/internal/client/anthropic"
	"mwd-agent/internal/client/drive"
	"mwd-agent/internal/client/gchat"
	"mwd-agent/internal/client/gemini"
	"mwd-agent/internal/client/notion"
	"mwd-agent/internal/client/openai"
	"mwd-agent/internal/client/perplexity"
	"mwd-agent/internal/client/slack"
	"mwd-agent/internal/client/tracker"
	"mwd-agent/internal/handler"
	"mwd-agent/internal/service"
)

func main() {
	// Per-environment configuration (APP_ENV=local|dev|prod).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	ginMode := cfg.Server.Mode
	if os.Getenv("GIN_MODE") != "" {
		ginMode = os.Getenv("GIN_MODE")
	}
	if ginMode != "" {
		gin.SetMode(ginMode)
	}

	ctx := context.Background()

	// Vendor clients. Missing credentials degrade an integration to
	// unconfigured, they never fail startup.
	geminiClient, err := gemini.NewClient(ctx, gemini.Config{
		APIKey: cfg.Planner.APIKey,
		Model:  cfg.Planner.Model,
	})
	if err != nil {
		logger.Fatal("build gemini client", zap.Error(err))
	}
	anthropicClient := anthropic.NewClient(anthropic.Config{
		APIKey: cfg.Anthropic.APIKey,
		Model:  cfg.Anthropic.Model,
	})
	openaiClient := openai.NewClient(openai.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
	})
	perplexityClient := perplexity.NewClient(perplexity.Config{
		APIKey:  cfg.Perplexity.APIKey,
		BaseURL: cfg.Perplexity.BaseURL,
		Model:   cfg.Perplexity.Model,
	})
	slackClient := slack.NewClient(slack.Config{
		BotToken:      cfg.Slack.BotToken,
		SigningSecret: cfg.Slack.SigningSecret,
		BotUserID:     cfg.Slack.BotUserID,
	})
	gchatClient := gchat.NewClient(gchat.Config{
		BotToken:          cfg.GoogleChat.BotToken,
		VerificationToken: cfg.GoogleChat.VerificationToken,
		BotName:           cfg.GoogleChat.BotName,
	})
	notionClient := notion.NewClient(notion.Config{
		APIKey:           cfg.Notion.APIKey,
		ProjectsDatabase: cfg.Notion.ProjectsDatabase,
		MeetingsDatabase: cfg.Notion.MeetingsDatabase,
		PortalsPage:      cfg.Notion.PortalsPage,
	})
	driveClient := drive.NewClient(drive.Config{
		BotToken:   cfg.Drive.BotToken,
		RootFolder: cfg.Drive.RootFolder,
	})
	trackerClient := tracker.NewClient(tracker.Config{
		BaseURL:       cfg.Tracker.BaseURL,
		APIKey:        cfg.Tracker.APIKey,
		WebhookSecret: cfg.Tracker.WebhookSecret,
	})

	// Service layer.
	strategy := service.NewStrategy(anthropicClient)
	planner := service.NewPlanner(geminiClient, logger)
	dispatcher := service.NewDispatcher(perplexityClient, strategy, openaiClient,
		geminiClient, notionClient, driveClient, logger)
	responder := service.NewResponder(geminiClient, logger)
	orchestrator := service.NewOrchestrator(planner, dispatcher, responder, logger)
	intake := service.NewIntake(strategy, trackerClient, logger)

	slackSurface := service.NewSlackSurface(slackClient)
	gchatSurface := service.NewGChatSurface(gchatClient)

	r := handler.Router(handler.Deps{
		Strategy: handler.NewStrategyHandler(strategy),
		Webhook:  handler.NewWebhookHandler(trackerClient, intake, logger),
		Slack:    handler.NewSlackHandler(slackClient, slackSurface, orchestrator, logger),
		GChat:    handler.NewGChatHandler(gchatClient, gchatSurface, orchestrator, logger),
		ConfigStatus: map[string]string{
			"planner":        configured(geminiClient.Configured(), "missing"),
			"anthropic":      configured(anthropicClient.Configured(), "missing"),
			"openai":         configured(openaiClient.Configured(), "optional"),
			"perplexity":     configured(perplexityClient.Configured(), "optional"),
			"slack":          configured(slackClient.Configured(), "optional"),
			"google_chat":    configured(gchatClient.Configured(), "optional"),
			"notion":         configured(notionClient.Configured(), "optional"),
			"drive":          configured(driveClient.Configured(), "optional"),
			"invoice_system": configured(trackerClient.Configured(), "optional"),
		},
		Logger: logger,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("server starting", zap.String("addr", addr), zap.String("env", getEnv()))
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
}

func configured(ok bool, fallback string) string {
	if ok {
		return "configured"
	}
	return fallback
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	var zcfg zap.Config
	if cfg.Format == "text" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

func getEnv() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		return "local"
	}
	return env
}
