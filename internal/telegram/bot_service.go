package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"igire/backend/internal/localization"
	"igire/backend/internal/models"
	"igire/backend/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// BotAPI is the subset of tgbotapi.BotAPI the bot loop uses.
type BotAPI interface {
	Sender
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type ComplaintLookup interface {
	GetComplaint(ctx context.Context, idOrCode string) (*models.Complaint, error)
}

// BotService answers /start, /help, /track and /chatid.
type BotService struct {
	api    BotAPI
	lookup ComplaintLookup
	texts  *localization.Localizer
	logger *zap.Logger
}

func NewBotService(api BotAPI, lookup ComplaintLookup, texts *localization.Localizer, logger *zap.Logger) *BotService {
	return &BotService{api: api, lookup: lookup, texts: texts, logger: logger}
}

// Run long-polls Telegram until ctx is cancelled.
func (s *BotService) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.api.GetUpdatesChan(u)
	defer s.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				s.handleMessage(ctx, update.Message)
			}
		}
	}
}

func (s *BotService) lang(msg *tgbotapi.Message) string {
	if msg.From != nil && strings.HasPrefix(msg.From.LanguageCode, "rw") {
		return "rw"
	}
	return localization.DefaultLanguage
}

func (s *BotService) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		return
	}
	lang := s.lang(msg)

	var text string
	switch msg.Command() {
	case "start", "help":
		text = s.texts.GetString(lang, "telegram.help")
	case "chatid":
		text = strconv.FormatInt(msg.Chat.ID, 10)
	case "track":
		text = s.track(ctx, lang, msg.CommandArguments())
	default:
		text = s.texts.GetString(lang, "telegram.help")
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ReplyToMessageID = msg.MessageID
	if _, err := s.api.Send(reply); err != nil {
		s.logger.Warn("failed to answer telegram command", zap.String("command", msg.Command()), zap.Error(err))
	}
}

func (s *BotService) track(ctx context.Context, lang, args string) string {
	code := strings.ToUpper(strings.TrimSpace(args))
	if code == "" {
		return s.texts.GetString(lang, "telegram.track_usage")
	}

	c, err := s.lookup.GetComplaint(ctx, code)
	if errors.Is(err, storage.ErrNotFound) {
		return s.texts.Format(lang, "ussd.track_not_found", code)
	}
	if err != nil {
		s.logger.Error("telegram track lookup failed", zap.String("code", code), zap.Error(err))
		return s.texts.GetString(lang, "ussd.error")
	}

	status := s.texts.GetString(lang, "status."+string(c.Status))
	return s.texts.Format(lang, "ussd.track_status", c.TrackingCode, status)
}
