// Package market maps Sina market-type codes to display labels and to the
// provider keys understood by the quote endpoint.
package market

import (
	"fmt"
	"strings"
)

// Security identifies a tradable instrument as returned by the suggest
// endpoint.
type Security struct {
	Type string `json:"type"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Same reports whether both refer to the same instrument.
func (s Security) Same(o Security) bool {
	return s.Type == o.Type && s.Code == o.Code
}

// SupportedTypes are searched first by manual queries.
var SupportedTypes = []string{"11", "12", "13", "14", "15", "31", "32", "33", "41", "42", "71", "73"}

var labels = map[string]string{
	"11":  "A股",
	"12":  "B股",
	"13":  "权证",
	"14":  "期货",
	"15":  "债券",
	"21":  "开基",
	"22":  "ETF",
	"23":  "LOF",
	"24":  "货基",
	"25":  "QDII",
	"26":  "封基",
	"31":  "港股",
	"32":  "窝轮",
	"33":  "港指数",
	"41":  "美股",
	"42":  "外期",
	"71":  "外汇",
	"72":  "基金",
	"73":  "新三板",
	"74":  "板块",
	"75":  "板块",
	"76":  "板块",
	"77":  "板块",
	"78":  "板块",
	"79":  "板块",
	"80":  "板块",
	"81":  "债券",
	"82":  "债券",
	"85":  "期货",
	"86":  "期货",
	"87":  "期货",
	"88":  "期货",
	"100": "指数",
	"101": "基金",
	"102": "指数",
	"103": "英股",
	"104": "国债",
	"105": "ETF",
	"106": "ETF",
	"107": "msci",
	"111": "A股",
	"120": "债券",
}

// Label returns the display label of a market-type code, or the code
// itself when it is unknown.
func Label(typeCode string) string {
	if l, ok := labels[typeCode]; ok {
		return l
	}
	return typeCode
}

func IsAShare(typeCode string) bool {
	switch typeCode {
	case "11", "12", "13", "14", "15":
		return true
	}
	return false
}

func IsFund(typeCode string) bool {
	switch typeCode {
	case "21", "22", "23", "24", "25", "26":
		return true
	}
	return false
}

func IsHongKong(typeCode string) bool {
	switch typeCode {
	case "31", "32", "33":
		return true
	}
	return false
}

func IsUS(typeCode string) bool {
	return typeCode == "41" || typeCode == "42"
}

func IsForex(typeCode string) bool {
	return typeCode == "71"
}

func IsNewThirdBoard(typeCode string) bool {
	return typeCode == "73"
}

// ProviderKey returns the key the quote endpoint expects for s.
func (s Security) ProviderKey() string {
	switch {
	case IsAShare(s.Type), IsNewThirdBoard(s.Type):
		return "s_" + s.Code
	case IsFund(s.Type):
		return s.Code
	case IsHongKong(s.Type):
		return "rt_hk" + strings.ToUpper(s.Code)
	case IsUS(s.Type):
		return "gb_" + strings.TrimLeft(s.Code, ".")
	case IsForex(s.Type):
		return strings.ToUpper(s.Code)
	}
	return s.Code
}

// ChartURLs returns the minute and daily chart images for s, or nil when
// the market has no chart.
func ChartURLs(base string, s Security) []string {
	base = strings.TrimRight(base, "/")
	var minute, daily string
	switch {
	case IsAShare(s.Type):
		minute = "/newchart/min/n/%s.gif"
		daily = "/newchart/daily/n/%s.gif"
	case IsHongKong(s.Type):
		minute = "/newchart/hk_stock/min/%s.gif"
		daily = "/newchart/hk_stock/daily/%s.gif"
	case IsUS(s.Type):
		minute = "/newchart/usstock/min/%s.gif"
		daily = "/newchart/usstock/daily/%s.gif"
	case IsForex(s.Type):
		minute = "/newchart/v5/forex/min/%s.gif"
		daily = "/newchart/v5/forex/k/day/%s.gif"
	default:
		return nil
	}
	return []string{
		base + fmt.Sprintf(minute, s.Code),
		base + fmt.Sprintf(daily, s.Code),
	}
}
