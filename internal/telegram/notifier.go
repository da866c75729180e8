// Package telegram notifies institution staff about routed complaints and
// answers a few read-only bot commands.
package telegram

import (
	"context"
	"errors"
	"fmt"

	"igire/backend/internal/localization"
	"igire/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

var ErrNoChat = errors.New("institution has no telegram chat")

// Sender is the part of tgbotapi.BotAPI used to post messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Notifier struct {
	api    Sender
	texts  *localization.Localizer
	logger *zap.Logger
}

func NewNotifier(api Sender, texts *localization.Localizer, logger *zap.Logger) *Notifier {
	return &Notifier{api: api, texts: texts, logger: logger}
}

// NotifyAssignment posts the complaint summary to the institution's chat.
func (n *Notifier) NotifyAssignment(_ context.Context, inst *models.Institution, c *models.Complaint) error {
	if inst.TelegramChatID == nil {
		return ErrNoChat
	}

	msg := tgbotapi.NewMessage(*inst.TelegramChatID, n.assignmentText(inst, c))
	msg.DisableWebPagePreview = true
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	n.logger.Info("institution notified",
		zap.String("institution", inst.Name),
		zap.Int64("chat_id", *inst.TelegramChatID),
		zap.String("complaint_id", c.ID))
	return nil
}

func (n *Notifier) assignmentText(inst *models.Institution, c *models.Complaint) string {
	return n.texts.Format(localization.DefaultLanguage, "telegram.assigned",
		inst.Name, c.TrackingCode, c.Category, location(c), c.Channel, c.Description)
}

func location(c *models.Complaint) string {
	out := ""
	for _, part := range []string{c.Village, c.Cell, c.Sector, c.District} {
		if part == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += part
	}
	if out == "" {
		return "-"
	}
	return out
}
