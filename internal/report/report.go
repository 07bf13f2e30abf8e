// Package report renders quotes and candidate lists as chat text.
package report

import (
	"fmt"
	"strings"

	"github.com/camuig/sina-stock-bot/internal/market"
	"github.com/camuig/sina-stock-bot/internal/sina"
)

const (
	arrowUp   = "📈"
	arrowDown = "📉"
)

// Quotes renders one line per result, in order.
func Quotes(results []sina.Result) string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, Line(r))
	}
	return strings.Join(lines, "\n")
}

// Line renders a single result.
func Line(r sina.Result) string {
	if r.Quote == nil {
		if r.Err != nil {
			return r.Err.Error()
		}
		return (&sina.QuoteError{Key: r.Key, Reason: sina.ReasonEmpty}).Error()
	}
	q := r.Quote
	arrow := arrowUp
	if q.PDelta < 0 {
		arrow = arrowDown
	}
	return fmt.Sprintf("%s\t%.2f\t%s%+.2f%% (%+.2f)", q.Name, q.Cur, arrow, q.PDelta, q.Delta)
}

// Candidates renders the disambiguation table shown when a keyword
// matches more than one security.
func Candidates(key string, candidates []market.Security, action string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: 查询到以下结果, 请输入准确的名称或代码来%s:\n类型\t代码\t名称", key, action)
	for _, c := range candidates {
		fmt.Fprintf(&sb, "\n%s\t%s\t%s", market.Label(c.Type), c.Code, c.Name)
	}
	return sb.String()
}

func Help() string {
	return "股票功能：\n" +
		"1) 查询：股票查询 茅台 / 股票查询 sh600519\n" +
		"2) 订阅：股票添加 茅台\n" +
		"3) 取消：股票删除 茅台\n" +
		"4) 清空：股票清空\n" +
		"5) 订阅行情：股票查询订阅\n" +
		"6) 推送开关：股票打开推送 / 股票关闭推送"
}
