// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"fmt"
	"strings"

	"contractor_engagement_bot/internal/domain/contractor"
	"contractor_engagement_bot/internal/infra/config"
	idb "contractor_engagement_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	cfg *config.AppConfig, // For AdminTelegramID
	contractorRepo contractor.Repository,
	baseLogger *logrus.Entry, // For contextual logging
) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/start").WithField("sender_id", senderID)
		logCtx.Info("Processing /start command")

		if senderID == cfg.AdminTelegramID {
			logCtx.Info("User identified as Admin")
			return c.Send(fmt.Sprintf("Hi Admin %s! I'm up and running. Use /help for the command list.", c.Sender().FirstName))
		}

		profile, err := contractorRepo.GetByChatID(ctx, c.Chat().ID)
		if err == nil {
			logCtx.WithField("contractor_id", profile.ID).Info("User identified as registered contractor")
			return c.Send(fmt.Sprintf("Hi %s! I'll remind you about daily check-ins and progress reports. You can also just ask me about your jobs.", profile.FirstName))
		} else if err != idb.ErrContractorNotFound {
			logCtx.WithError(err).Error("Error checking contractor status for /start command")
			return c.Send("Something went wrong while checking your account. Please try again later.")
		}

		logCtx.Info("User is unknown")
		return c.Send("Hi! I'm the site check-in assistant. If you're a contractor, ask the office to link your account, then message me again.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/help").WithField("sender_id", senderID)
		logCtx.Info("Processing /help command")

		if senderID == cfg.AdminTelegramID {
			logCtx.Info("User identified as Admin, sending admin help.")
			var helpText strings.Builder
			helpText.WriteString("Admin commands and questions:\n\n")
			helpText.WriteString("Ask me about any contractor's check-ins, hours or reports in plain language.\n\n")
			helpText.WriteString("`/help`\n - Show this help message.")
			return c.Send(helpText.String(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
		}

		profile, err := contractorRepo.GetByChatID(ctx, c.Chat().ID)
		if err == nil {
			logCtx.WithField("contractor_id", profile.ID).Info("User identified as contractor, sending contractor help.")
			return c.Send("I'll nudge you each morning to confirm you're on site, and each evening for your progress report.\n\nSend \"report\" any time to file a progress report.\nReply ACCEPT when you get a new job assignment.\nYou can send voice notes; I'll transcribe them.\n\n`/help` - Show this message.")
		} else if err != idb.ErrContractorNotFound {
			logCtx.WithError(err).Error("Error checking contractor status for /help command")
			return c.Send("Something went wrong while checking your account. Please try again later.")
		}

		logCtx.Info("User is unknown, sending restricted help.")
		return c.Send("There are no commands available for you yet. If you're a contractor, ask the office to link your account first.")
	})
}
