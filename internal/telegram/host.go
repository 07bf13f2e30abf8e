// Package telegram connects the command dispatcher to Telegram groups.
package telegram

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/camuig/sina-stock-bot/internal/command"
	"github.com/camuig/sina-stock-bot/internal/config"
	"github.com/camuig/sina-stock-bot/internal/logger"
)

const pollTimeout = 60

// Host receives group messages by long polling and sends replies.
type Host struct {
	bot        *tgbotapi.BotAPI
	dispatcher *command.Dispatcher
	groups     func() []string
	logger     *logger.Logger
}

// NewHost connects to the bot API. groups lists the subscribed group ids;
// Telegram has no call to enumerate the chats a bot is in.
func NewHost(cfg config.TelegramConfig, dispatcher *command.Dispatcher, groups func() []string, log *logger.Logger) (*Host, error) {
	if err := tgbotapi.SetLogger(log); err != nil {
		log.Warn("set telegram library logger", "error", err)
	}
	log = log.With("component", "telegram")

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	log.Info("telegram bot connected", "username", bot.Self.UserName)

	return newHost(bot, dispatcher, groups, log), nil
}

func newHost(bot *tgbotapi.BotAPI, dispatcher *command.Dispatcher, groups func() []string, log *logger.Logger) *Host {
	return &Host{bot: bot, dispatcher: dispatcher, groups: groups, logger: log}
}

// Run polls updates until ctx is cancelled.
func (h *Host) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := h.bot.GetUpdatesChan(u)
	defer h.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("telegram polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			msg, ok := groupMessage(update)
			if !ok {
				continue
			}
			h.dispatcher.Serve(ctx, h, msg)
		}
	}
}

// groupMessage extracts a text message posted in a group or supergroup.
func groupMessage(update tgbotapi.Update) (command.Message, bool) {
	m := update.Message
	if m == nil || m.Chat == nil || m.Text == "" {
		return command.Message{}, false
	}
	if !m.Chat.IsGroup() && !m.Chat.IsSuperGroup() {
		return command.Message{}, false
	}
	return command.Message{GroupID: strconv.FormatInt(m.Chat.ID, 10), Text: m.Text}, true
}

func chatID(groupID string) (int64, error) {
	id, err := strconv.ParseInt(groupID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not a telegram chat id %q: %w", groupID, err)
	}
	return id, nil
}

func (h *Host) SendText(_ context.Context, groupID, text string) error {
	id, err := chatID(groupID)
	if err != nil {
		return err
	}
	if _, err := h.bot.Send(tgbotapi.NewMessage(id, text)); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// SendImage lets Telegram fetch the image from its URL.
func (h *Host) SendImage(_ context.Context, groupID, imageURL string) error {
	id, err := chatID(groupID)
	if err != nil {
		return err
	}
	if _, err := h.bot.Send(tgbotapi.NewPhoto(id, tgbotapi.FileURL(imageURL))); err != nil {
		return fmt.Errorf("send telegram photo: %w", err)
	}
	return nil
}

// ActiveGroups returns the subscribed groups that are Telegram chats.
func (h *Host) ActiveGroups(context.Context) ([]string, error) {
	var out []string
	for _, gid := range h.groups() {
		if _, err := chatID(gid); err == nil {
			out = append(out, gid)
		}
	}
	return out, nil
}
