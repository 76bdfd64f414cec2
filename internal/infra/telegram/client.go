// internal/infra/telegram/client.go
package telegram

import (
	"fmt"
	"strconv"

	"contractor_engagement_bot/internal/domain/chat"

	"gopkg.in/telebot.v3"
)

// TelebotAdapter implements the chat.Client interface using the
// gopkg.in/telebot.v3 library.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendMessage sends a text message to the specified recipient.
func (tba *TelebotAdapter) SendMessage(recipientChatID int64, text string, options *chat.SendOptions) (string, error) {
	sendOpts := &telebot.SendOptions{}
	if options != nil && options.Markdown {
		sendOpts.ParseMode = telebot.ModeMarkdown
	}

	recipient := &telebot.User{ID: recipientChatID} // Contractors are direct user chats
	msg, err := tba.bot.Send(recipient, text, sendOpts)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(msg.ID), nil
}

// VoiceFileURL resolves a Telegram voice file id to its download URL.
func (tba *TelebotAdapter) VoiceFileURL(fileID string) (string, error) {
	file, err := tba.bot.FileByID(fileID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file %s: %w", fileID, err)
	}
	return fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", tba.bot.Token, file.FilePath), nil
}
