package command

import (
	"context"

	"github.com/camuig/sina-stock-bot/internal/market"
	"github.com/camuig/sina-stock-bot/internal/sina"
)

// Sender delivers replies to a chat group.
//
//go:generate mockgen -package=command -destination=mock_sender_test.go -source=sender.go Sender
type Sender interface {
	SendText(ctx context.Context, groupID, text string) error
	SendImage(ctx context.Context, groupID, imageURL string) error
}

// QuoteSource is the quote and suggest backend, normally *sina.Client.
type QuoteSource interface {
	Quotes(ctx context.Context, key market.Key) ([]sina.Result, error)
	Suggest(ctx context.Context, key string, types []string) ([]market.Security, error)
}
