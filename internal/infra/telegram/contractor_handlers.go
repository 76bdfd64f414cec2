// internal/infra/telegram/contractor_handlers.go
package telegram

import (
	"context"
	"strings"

	"contractor_engagement_bot/internal/app"
	"contractor_engagement_bot/internal/domain/chat"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterContractorHandlers wires inbound text and voice messages into the
// router. Handlers return immediately so Telegram gets its delivery ack and
// does not retry; the actual routing and the reply run on a goroutine, with
// the reply delivered through the dispatcher as a separate send.
func RegisterContractorHandlers(
	ctx context.Context,
	b *telebot.Bot,
	router *app.Router,
	dispatcher *app.Dispatcher,
	baseLogger *logrus.Entry,
) {
	process := func(in chat.Inbound) {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"chat_id": in.ChatID,
			"kind":    in.Kind,
		})
		reply := router.Route(ctx, in)
		res := dispatcher.Send(in.ChatID, reply, nil)
		if !res.Success {
			// Best effort: there is no further caller to notify.
			handlerLogger.WithError(res.Err).Error("Failed to deliver reply")
			return
		}
		handlerLogger.Debug("Reply delivered")
	}

	b.Handle(telebot.OnText, func(c telebot.Context) error {
		in := chat.Inbound{
			ChatID:      c.Chat().ID,
			DisplayName: displayName(c.Sender()),
			Kind:        chat.KindText,
			Text:        c.Text(),
		}
		go process(in)
		return nil
	})

	b.Handle(telebot.OnVoice, func(c telebot.Context) error {
		voice := c.Message().Voice
		if voice == nil {
			return nil
		}
		in := chat.Inbound{
			ChatID:      c.Chat().ID,
			DisplayName: displayName(c.Sender()),
			Kind:        chat.KindVoice,
			VoiceFileID: voice.FileID,
		}
		go process(in)
		return nil
	})
}

func displayName(u *telebot.User) string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
