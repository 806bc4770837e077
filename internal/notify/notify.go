// Package notify delivers rotation reports to the operators.
package notify

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/merzah/merzah/internal/rotation"
)

// Sender is the part of *tgbotapi.BotAPI used for delivery.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramDispatcher posts each report digest to one operator chat.
type TelegramDispatcher struct {
	api    Sender
	chatID int64
}

func NewTelegramDispatcher(api Sender, chatID int64) *TelegramDispatcher {
	return &TelegramDispatcher{api: api, chatID: chatID}
}

func (d *TelegramDispatcher) Dispatch(ctx context.Context, report *rotation.Report) error {
	digest := Digest(report)
	msg := tgbotapi.NewMessage(d.chatID, digest.Text)
	msg.Entities = digest.Entities
	msg.DisableWebPagePreview = true

	sent, err := d.api.Send(msg)
	if err != nil {
		return fmt.Errorf("send rotation digest: %w", err)
	}
	log.Printf("Sent rotation digest to chat %d (msg_id=%d)", d.chatID, sent.MessageID)
	return nil
}

// LogDispatcher writes the digest to the process log. It is used when no
// operator chat is configured.
type LogDispatcher struct{}

func (LogDispatcher) Dispatch(ctx context.Context, report *rotation.Report) error {
	for _, line := range strings.Split(Digest(report).Text, "\n") {
		if line != "" {
			log.Println(line)
		}
	}
	return nil
}
