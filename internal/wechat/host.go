// Package wechat connects the command dispatcher to WeChat groups through
// the web protocol client.
package wechat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/eatmoreapple/openwechat"

	"github.com/camuig/sina-stock-bot/internal/command"
	"github.com/camuig/sina-stock-bot/internal/config"
	"github.com/camuig/sina-stock-bot/internal/logger"
)

const maxImageBytes = 10 << 20

var ErrGroupNotFound = errors.New("wechat group not found")

// chat is the send side of a group; *openwechat.Group satisfies it.
type chat interface {
	SendText(content string) (*openwechat.SentMessage, error)
	SendImage(file io.Reader) (*openwechat.SentMessage, error)
}

// directory looks up the logged-in account's groups.
type directory interface {
	Group(userName string) (chat, error)
	GroupIDs() ([]string, error)
}

// Host logs in with a hot-reload session and serves group messages.
type Host struct {
	bot        *openwechat.Bot
	storage    string
	dir        directory
	dispatcher *command.Dispatcher
	httpClient *http.Client
	logger     *logger.Logger
}

func NewHost(cfg config.WeChatConfig, dispatcher *command.Dispatcher, log *logger.Logger) *Host {
	h := &Host{
		bot:        openwechat.DefaultBot(openwechat.Desktop),
		storage:    cfg.HotLoginStorage,
		dispatcher: dispatcher,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     log.With("component", "wechat"),
	}
	h.bot.UUIDCallback = openwechat.PrintlnQrcodeUrl
	h.dir = botDirectory{bot: h.bot}
	return h
}

// Run logs in and blocks until ctx is cancelled or the session ends.
func (h *Host) Run(ctx context.Context) error {
	storage := openwechat.NewFileHotReloadStorage(h.storage)
	defer storage.Close()

	if err := h.bot.HotLogin(storage, openwechat.NewRetryLoginOption()); err != nil {
		return fmt.Errorf("wechat login: %w", err)
	}
	if self, err := h.bot.GetCurrentUser(); err == nil {
		h.logger.Info("wechat logged in", "nickname", self.NickName)
	}

	h.bot.MessageHandler = func(msg *openwechat.Message) {
		if !msg.IsText() || !msg.IsSendByGroup() || msg.IsSendBySelf() {
			return
		}
		h.dispatcher.Serve(ctx, h, command.Message{GroupID: msg.FromUserName, Text: msg.Content})
	}

	go func() {
		<-ctx.Done()
		h.bot.Exit()
	}()

	if err := h.bot.Block(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("wechat session ended: %w", err)
	}
	h.logger.Info("wechat stopped")
	return nil
}

func (h *Host) SendText(_ context.Context, groupID, text string) error {
	g, err := h.dir.Group(groupID)
	if err != nil {
		return err
	}
	if _, err := g.SendText(text); err != nil {
		return fmt.Errorf("send wechat text: %w", err)
	}
	return nil
}

// SendImage downloads the image and uploads it to the group.
func (h *Host) SendImage(ctx context.Context, groupID, imageURL string) error {
	g, err := h.dir.Group(groupID)
	if err != nil {
		return err
	}
	img, err := h.download(ctx, imageURL)
	if err != nil {
		return err
	}
	if _, err := g.SendImage(bytes.NewReader(img)); err != nil {
		return fmt.Errorf("send wechat image: %w", err)
	}
	return nil
}

func (h *Host) download(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create image request: %w", err)
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download image: status %d", resp.StatusCode)
	}
	img, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return img, nil
}

// ActiveGroups returns the UserNames of the account's current groups.
func (h *Host) ActiveGroups(context.Context) ([]string, error) {
	return h.dir.GroupIDs()
}

type botDirectory struct {
	bot *openwechat.Bot
}

func (d botDirectory) groups() (openwechat.Groups, error) {
	self, err := d.bot.GetCurrentUser()
	if err != nil {
		return nil, fmt.Errorf("wechat current user: %w", err)
	}
	groups, err := self.Groups()
	if err != nil {
		return nil, fmt.Errorf("wechat groups: %w", err)
	}
	return groups, nil
}

func (d botDirectory) Group(userName string) (chat, error) {
	groups, err := d.groups()
	if err != nil {
		return nil, err
	}
	found := groups.SearchByUserName(1, userName)
	if found.Count() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, userName)
	}
	return found.First(), nil
}

func (d botDirectory) GroupIDs() ([]string, error) {
	groups, err := d.groups()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.UserName)
	}
	return ids, nil
}
