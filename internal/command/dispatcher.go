// Package command maps chat text commands onto subscription and quote
// operations.
package command

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/camuig/sina-stock-bot/internal/logger"
	"github.com/camuig/sina-stock-bot/internal/subscription"
)

// Message is one incoming group message.
type Message struct {
	GroupID string
	Text    string
}

// ReplyFailed is sent when a command fails on the quote backend.
const ReplyFailed = "查询失败，请稍后再试"

type handlerFunc func(ctx context.Context, s Sender, gid, arg string) error

type route struct {
	prefix  string
	name    string
	handler handlerFunc
}

// Dispatcher routes messages by their command prefix.
type Dispatcher struct {
	routes   []route
	quotes   QuoteSource
	store    *subscription.Store
	chartURL string
	logger   *logger.Logger
}

func NewDispatcher(quotes QuoteSource, store *subscription.Store, chartURL string, log *logger.Logger) *Dispatcher {
	d := &Dispatcher{
		quotes:   quotes,
		store:    store,
		chartURL: chartURL,
		logger:   log,
	}
	d.register("query", d.query, "股票查询")
	d.register("add", d.add, "股票添加", "股票订阅", "股票添加订阅", "股票订阅添加")
	d.register("remove", d.remove, "股票删除", "股票取消订阅", "股票删除订阅", "股票订阅取消", "股票订阅删除")
	d.register("clear", d.clear, "股票清空", "股票清空订阅", "股票订阅清空")
	d.register("list", d.list, "股票查询订阅", "股票订阅查询")
	d.register("notify_on", d.notifyOn, "股票打开推送", "股票推送打开", "股票推送on")
	d.register("notify_off", d.notifyOff, "股票关闭推送", "股票推送关闭", "股票推送off")
	d.register("help", d.help, "股票帮助")

	// Several aliases prefix each other (股票订阅 / 股票订阅查询), so the
	// longest prefix has to win.
	sort.SliceStable(d.routes, func(i, j int) bool {
		return len(d.routes[i].prefix) > len(d.routes[j].prefix)
	})
	return d
}

func (d *Dispatcher) register(name string, h handlerFunc, prefixes ...string) {
	for _, p := range prefixes {
		d.routes = append(d.routes, route{prefix: p, name: name, handler: h})
	}
}

// Handle runs the command in msg, if any. It reports whether a command
// matched. Errors are quote backend failures; user mistakes are answered
// in the chat and are not errors.
func (d *Dispatcher) Handle(ctx context.Context, s Sender, msg Message) (bool, error) {
	text := strings.TrimSpace(msg.Text)
	for _, r := range d.routes {
		arg, ok := strings.CutPrefix(text, r.prefix)
		if !ok {
			continue
		}
		arg = strings.TrimSpace(arg)
		d.logger.Debug("command", "name", r.name, "group", msg.GroupID, "arg", arg)
		return true, r.handler(ctx, s, msg.GroupID, arg)
	}
	return false, nil
}

// Serve handles msg and answers backend failures in the chat. Hosts call
// it for every incoming group text message. A panicking handler is
// answered like a backend failure.
func (d *Dispatcher) Serve(ctx context.Context, s Sender, msg Message) {
	handled, err := d.safeHandle(ctx, s, msg)
	if !handled || err == nil {
		return
	}
	d.logger.Error("command failed", "group", msg.GroupID, "error", err)
	if err := s.SendText(ctx, msg.GroupID, ReplyFailed); err != nil {
		d.logger.Error("send failure reply", "group", msg.GroupID, "error", err)
	}
}

func (d *Dispatcher) safeHandle(ctx context.Context, s Sender, msg Message) (handled bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			handled, err = true, fmt.Errorf("panic: %v", r)
		}
	}()
	return d.Handle(ctx, s, msg)
}
