package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contractor_engagement_bot/internal/app"
	"contractor_engagement_bot/internal/infra/config"
	idb "contractor_engagement_bot/internal/infra/database"
	"contractor_engagement_bot/internal/infra/logger"
	iopenai "contractor_engagement_bot/internal/infra/openai"
	"contractor_engagement_bot/internal/infra/scheduler"
	"contractor_engagement_bot/internal/infra/telegram"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	mainLogger := logger.Log.WithField("component", "main")
	mainLogger.WithFields(logrus.Fields{
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
		"morning":     cfg.MorningReminderTime,
		"evening":     cfg.EveningReminderTime,
	}).Info("Configuration loaded")

	// Database
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	mainLogger.Info("Database connection established")

	// Repositories
	contractorRepo := idb.NewPostgresContractorRepository(db)
	assignmentRepo := idb.NewPostgresAssignmentRepository(db)
	engagementRepo := idb.NewPostgresEngagementRepository(db)
	sessionRepo := idb.NewPostgresSessionRepository(db)
	mainLogger.Info("Repositories initialized")

	// Telegram bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := logger.Log.WithField("component", "telebot").WithError(err)
			if c != nil && c.Chat() != nil {
				entry = entry.WithField("chat_id", c.Chat().ID)
			}
			entry.Error("Telegram handler error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not create Telegram bot")
	}
	transport := telegram.NewTelebotAdapter(bot)

	// External collaborators
	aiClient := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))
	transcriber := iopenai.NewWhisperTranscriber(aiClient, logger.Log.WithField("component", "transcriber"))
	answerer := iopenai.NewScopedAnswerer(aiClient, logger.Log.WithField("component", "answerer"))

	// Application services
	dispatcher := app.NewDispatcher(transport, time.Duration(cfg.SendPacingMillis)*time.Millisecond, logger.Log.WithField("component", "dispatcher"))
	reminderService := app.NewReminderService(contractorRepo, assignmentRepo, engagementRepo, dispatcher, logger.Log.WithField("component", "reminders"))
	assignmentService := app.NewAssignmentService(assignmentRepo, contractorRepo, dispatcher, logger.Log.WithField("component", "assignments"))
	conversationService := app.NewConversationService(sessionRepo, engagementRepo, assignmentRepo, logger.Log.WithField("component", "conversations"))
	queryService := app.NewQueryService(contractorRepo, engagementRepo, answerer, logger.Log.WithField("component", "queries"))
	router := app.NewRouter(contractorRepo, engagementRepo, transport, transcriber, conversationService, assignmentService, queryService, logger.Log.WithField("component", "router"))
	mainLogger.Info("Application services initialized")

	// Scheduler
	reminderScheduler := scheduler.NewReminderScheduler(reminderService, assignmentService, logger.Log.WithField("component", "scheduler"))
	if err := reminderScheduler.Start(cfg.MorningCronSpec, cfg.EveningCronSpec, cfg.AssignmentNotifyCronSpec); err != nil {
		mainLogger.WithError(err).Fatal("Could not start reminder scheduler")
	}

	// Handlers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	telegram.RegisterBotCommands(ctx, bot, cfg, contractorRepo, logger.Log.WithField("component", "commands"))
	telegram.RegisterContractorHandlers(ctx, bot, router, dispatcher, logger.Log.WithField("component", "inbound"))
	mainLogger.Info("Handlers registered. Bot and scheduler are starting...")

	go bot.Start()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	mainLogger.Info("Shutting down application...")
	reminderScheduler.Stop()
	bot.Stop()
	cancel()
	mainLogger.Info("Application shut down gracefully.")
}
