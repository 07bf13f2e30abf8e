package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/camuig/sina-stock-bot/internal/market"
	"github.com/camuig/sina-stock-bot/internal/report"
	"github.com/camuig/sina-stock-bot/internal/subscription"
)

const (
	msgNeedKeyword     = "请填写股票关键词"
	msgNoSubscriptions = "没有订阅列表!"
)

// SubscriptionQuotes fetches and formats quotes for a subscription list.
// Manual list queries and scheduled pushes share it.
func SubscriptionQuotes(ctx context.Context, quotes QuoteSource, list []market.Security) (string, error) {
	results, err := quotes.Quotes(ctx, market.Securities(list))
	if err != nil {
		return "", err
	}
	return report.Quotes(results), nil
}

func (d *Dispatcher) query(ctx context.Context, s Sender, gid, key string) error {
	if key == "" {
		return d.list(ctx, s, gid, "")
	}
	suggests, err := d.quotes.Suggest(ctx, key, market.SupportedTypes)
	if err != nil {
		return err
	}
	if len(suggests) == 0 {
		return s.SendText(ctx, gid, fmt.Sprintf("%s: 查询结果为空", key))
	}
	results, err := d.quotes.Quotes(ctx, market.Securities(suggests))
	if err != nil {
		return err
	}
	if err := s.SendText(ctx, gid, fmt.Sprintf("%s: 查询到以下结果:\n%s", key, report.Quotes(results))); err != nil {
		return err
	}
	if len(suggests) != 1 {
		return nil
	}
	for _, u := range market.ChartURLs(d.chartURL, suggests[0]) {
		if err := s.SendImage(ctx, gid, u); err != nil {
			d.logger.Warn("send chart image", "group", gid, "url", u, "error", err)
		}
	}
	return nil
}

// resolve looks key up in the supported markets first and then in every
// market. It replies and returns ok=false unless exactly one security
// matched.
func (d *Dispatcher) resolve(ctx context.Context, s Sender, gid, key, action string) (market.Security, bool, error) {
	if key == "" {
		return market.Security{}, false, s.SendText(ctx, gid, msgNeedKeyword)
	}
	suggests, err := d.quotes.Suggest(ctx, key, market.SupportedTypes)
	if err != nil {
		return market.Security{}, false, err
	}
	if len(suggests) == 0 {
		if suggests, err = d.quotes.Suggest(ctx, key, nil); err != nil {
			return market.Security{}, false, err
		}
	}
	switch len(suggests) {
	case 0:
		return market.Security{}, false, s.SendText(ctx, gid, fmt.Sprintf("%s: 查询结果为空", key))
	case 1:
		return suggests[0], true, nil
	default:
		return market.Security{}, false, s.SendText(ctx, gid, report.Candidates(key, suggests, action))
	}
}

func (d *Dispatcher) add(ctx context.Context, s Sender, gid, key string) error {
	sec, ok, err := d.resolve(ctx, s, gid, key, "订阅")
	if !ok || err != nil {
		return err
	}
	if err := d.store.Add(gid, sec); errors.Is(err, subscription.ErrDuplicate) {
		return s.SendText(ctx, gid, fmt.Sprintf("%s 已存在，请勿重复添加!", sec.Name))
	}
	return s.SendText(ctx, gid, fmt.Sprintf("%s 订阅成功~", sec.Name))
}

func (d *Dispatcher) remove(ctx context.Context, s Sender, gid, key string) error {
	sec, ok, err := d.resolve(ctx, s, gid, key, "取消订阅")
	if !ok || err != nil {
		return err
	}
	switch err := d.store.Remove(gid, sec); {
	case errors.Is(err, subscription.ErrNoSubscriptions):
		return s.SendText(ctx, gid, msgNoSubscriptions)
	case errors.Is(err, subscription.ErrNotSubscribed):
		return s.SendText(ctx, gid, fmt.Sprintf("%s 没有被订阅!", sec.Name))
	}
	return s.SendText(ctx, gid, fmt.Sprintf("%s 取消订阅成功~", sec.Name))
}

func (d *Dispatcher) clear(ctx context.Context, s Sender, gid, _ string) error {
	if err := d.store.Clear(gid); err != nil {
		return s.SendText(ctx, gid, msgNoSubscriptions)
	}
	return s.SendText(ctx, gid, "清空订阅成功~")
}

func (d *Dispatcher) list(ctx context.Context, s Sender, gid, _ string) error {
	g, ok := d.store.Get(gid, false)
	if !ok || len(g.List) == 0 {
		return s.SendText(ctx, gid, msgNoSubscriptions)
	}
	text, err := SubscriptionQuotes(ctx, d.quotes, g.List)
	if err != nil {
		return err
	}
	return s.SendText(ctx, gid, text)
}

func (d *Dispatcher) notifyOn(ctx context.Context, s Sender, gid, _ string) error {
	return d.setNotify(ctx, s, gid, true, "推送已是打开状态", "打开推送成功~")
}

func (d *Dispatcher) notifyOff(ctx context.Context, s Sender, gid, _ string) error {
	return d.setNotify(ctx, s, gid, false, "推送已是关闭状态", "关闭推送成功~")
}

func (d *Dispatcher) setNotify(ctx context.Context, s Sender, gid string, on bool, unchanged, done string) error {
	changed, err := d.store.SetNotify(gid, on)
	switch {
	case err != nil:
		return s.SendText(ctx, gid, msgNoSubscriptions)
	case !changed:
		return s.SendText(ctx, gid, unchanged)
	}
	return s.SendText(ctx, gid, done)
}

func (d *Dispatcher) help(ctx context.Context, s Sender, gid, _ string) error {
	return s.SendText(ctx, gid, report.Help())
}
