package sina

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/camuig/sina-stock-bot/internal/market"
)

const responsePrefix = "hq_str_"

// Quote is a point-in-time price snapshot.
type Quote struct {
	Name   string
	Cur    float64
	Delta  float64
	PDelta float64
}

// Reason classifies a per-key quote failure.
type Reason int

const (
	ReasonEmpty Reason = iota + 1
	ReasonUnsupported
)

func (r Reason) String() string {
	switch r {
	case ReasonEmpty:
		return "查询结果为空 (empty result)"
	case ReasonUnsupported:
		return "暂不支持该格式，请联系维护人员处理 (unsupported format)"
	}
	return "unknown"
}

// QuoteError is a failure for a single provider key inside a batch.
type QuoteError struct {
	Key    string
	Reason Reason
}

func (e *QuoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Key, e.Reason)
}

// Result is either a Quote or a QuoteError for one requested key.
type Result struct {
	Key   string
	Quote *Quote
	Err   *QuoteError
}

// Quotes resolves k into provider keys and fetches them in one request.
func (c *Client) Quotes(ctx context.Context, k market.Key) ([]Result, error) {
	keys, err := market.ProviderKeys(k)
	if err != nil {
		return nil, err
	}
	return c.FetchQuotes(ctx, keys)
}

// FetchQuotes fetches providerKeys in one batched request and returns one
// result per key in input order. Partial failures are reported per entry.
func (c *Client) FetchQuotes(ctx context.Context, providerKeys []string) ([]Result, error) {
	if len(providerKeys) == 0 {
		return nil, nil
	}
	url := fmt.Sprintf("%s/list=%s", strings.TrimRight(c.quoteURL, "/"), strings.Join(providerKeys, ","))
	assigns, err := c.assignments(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch quotes: %w", err)
	}

	values := make(map[string]string, len(assigns))
	for _, a := range assigns {
		if key, ok := strings.CutPrefix(a.Name, responsePrefix); ok {
			values[key] = a.Value
		}
	}

	results := make([]Result, 0, len(providerKeys))
	for _, key := range providerKeys {
		q, qerr := DecodeQuote(key, values[key])
		if qerr != nil {
			c.logger.Debug("quote not decoded", "key", key, "reason", qerr.Reason)
		}
		results = append(results, Result{Key: key, Quote: q, Err: qerr})
	}
	return results, nil
}

// DecodeQuote unpacks the comma separated value for a provider key using
// the field layout of its market segment.
func DecodeQuote(key, value string) (*Quote, *QuoteError) {
	if value == "" {
		return nil, &QuoteError{Key: key, Reason: ReasonEmpty}
	}
	unsupported := &QuoteError{Key: key, Reason: ReasonUnsupported}
	fields := strings.Split(value, ",")

	var name, cur, delta, pdelta string
	switch {
	case strings.HasPrefix(key, "s_"):
		if len(fields) < 4 {
			return nil, unsupported
		}
		name, cur, delta, pdelta = fields[0], fields[1], fields[2], fields[3]
	case strings.HasPrefix(key, "rt_"):
		if len(fields) < 9 {
			return nil, unsupported
		}
		name, cur, delta, pdelta = fields[1], fields[6], fields[7], fields[8]
	case strings.HasPrefix(key, "gb_"):
		if len(fields) < 5 {
			return nil, unsupported
		}
		name, cur, delta, pdelta = fields[0], fields[1], fields[4], fields[2]
	case len(fields) == 11:
		q, ok := decodeFromBase(fields[9], fields[1], fields[3])
		if !ok {
			return nil, unsupported
		}
		return q, nil
	default:
		return nil, unsupported
	}

	q, ok := decodeFields(name, cur, delta, pdelta)
	if !ok {
		return nil, unsupported
	}
	return q, nil
}

func decodeFields(name, cur, delta, pdelta string) (*Quote, bool) {
	if name == "" {
		return nil, false
	}
	var q = Quote{Name: name}
	var err error
	if q.Cur, err = parseFloat(cur); err != nil {
		return nil, false
	}
	if q.Delta, err = parseFloat(delta); err != nil {
		return nil, false
	}
	if q.PDelta, err = parseFloat(pdelta); err != nil {
		return nil, false
	}
	return &q, true
}

// decodeFromBase handles layouts that only report the current and the
// base price.
func decodeFromBase(name, cur, base string) (*Quote, bool) {
	if name == "" {
		return nil, false
	}
	c, err := parseFloat(cur)
	if err != nil {
		return nil, false
	}
	b, err := parseFloat(base)
	if err != nil || b == 0 {
		return nil, false
	}
	delta := c - b
	return &Quote{
		Name:   name,
		Cur:    c,
		Delta:  delta,
		PDelta: delta / b * 100,
	}, true
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
