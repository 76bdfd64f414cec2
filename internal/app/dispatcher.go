package app

import (
	"time"

	"contractor_engagement_bot/internal/domain/chat"

	"github.com/sirupsen/logrus"
)

// SendResult reports the outcome of one outbound send. The dispatcher never
// panics; transport failures come back as Success=false with Err set.
type SendResult struct {
	Success   bool
	MessageID string
	Err       error
}

// Outbound is one (recipient, message) pair for a batch send.
type Outbound struct {
	ChatID  int64
	Text    string
	Options *chat.SendOptions
}

// Dispatcher is the single outbound I/O boundary to the chat transport.
type Dispatcher struct {
	client chat.Client
	pace   time.Duration
	logger *logrus.Entry
}

func NewDispatcher(client chat.Client, pace time.Duration, logger *logrus.Entry) *Dispatcher {
	return &Dispatcher{client: client, pace: pace, logger: logger}
}

// Send delivers one message and returns a result value.
func (d *Dispatcher) Send(chatID int64, text string, options *chat.SendOptions) SendResult {
	msgID, err := d.client.SendMessage(chatID, text, options)
	if err != nil {
		d.logger.WithFields(logrus.Fields{
			"chat_id": chatID,
			"outcome": "failed",
		}).WithError(err).Error("Outbound send failed")
		return SendResult{Success: false, Err: err}
	}
	d.logger.WithFields(logrus.Fields{
		"chat_id":    chatID,
		"message_id": msgID,
		"outcome":    "sent",
	}).Debug("Outbound send succeeded")
	return SendResult{Success: true, MessageID: msgID}
}

// SendBatch sends each item sequentially with a fixed pacing delay between
// sends. A failure on one item does not stop the batch; the caller gets one
// result per item, in order.
func (d *Dispatcher) SendBatch(items []Outbound) []SendResult {
	results := make([]SendResult, 0, len(items))
	for i, item := range items {
		if i > 0 && d.pace > 0 {
			time.Sleep(d.pace)
		}
		results = append(results, d.Send(item.ChatID, item.Text, item.Options))
	}
	return results
}
