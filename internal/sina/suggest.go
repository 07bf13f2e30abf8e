package sina

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/camuig/sina-stock-bot/internal/market"
)

// Suggest queries the autocomplete endpoint. An empty types list means
// every market. When a candidate's internal key, code or name equals the
// query (case-insensitively) only that candidate is returned; the first
// such candidate in provider order wins.
func (c *Client) Suggest(ctx context.Context, key string, types []string) ([]market.Security, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	u := fmt.Sprintf("%s/suggest/type=%s&key=%s&name=suggest",
		strings.TrimRight(c.suggestURL, "/"), strings.Join(types, ","), url.QueryEscape(key))

	assigns, err := c.assignments(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("suggest %q: %w", key, err)
	}
	if len(assigns) == 0 || assigns[0].Value == "" {
		return nil, nil
	}
	return parseSuggestions(key, assigns[0].Value), nil
}

func parseSuggestions(key, value string) []market.Security {
	var out []market.Security
	for _, record := range strings.Split(value, ";") {
		fields := strings.Split(record, ",")
		if len(fields) < 5 {
			continue
		}
		sec := market.Security{
			Type: fields[1],
			Code: fields[3],
			Name: fields[4],
		}
		if strings.ToLower(fields[0]) == key || strings.ToLower(sec.Code) == key || strings.ToLower(sec.Name) == key {
			return []market.Security{sec}
		}
		out = append(out, sec)
	}
	return out
}
