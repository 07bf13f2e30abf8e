package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/camuig/sina-stock-bot/internal/config"
	"github.com/camuig/sina-stock-bot/internal/logger"
	"github.com/camuig/sina-stock-bot/internal/market"
	"github.com/camuig/sina-stock-bot/internal/report"
	"github.com/camuig/sina-stock-bot/internal/sina"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults apply when empty)")
	types := flag.String("types", strings.Join(market.SupportedTypes, ","), "comma separated type codes to search, empty for all")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: quote [-config file] [-types 11,12] <keyword>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	keyword := strings.Join(flag.Args(), " ")

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
			os.Exit(1)
		}
	}

	log := logger.NewWithWriter(os.Stderr, cfg.Logging.Level)
	client := sina.NewClient(log,
		sina.WithTimeout(cfg.SinaTimeout()),
		sina.WithQuoteURL(cfg.Sina.QuoteURL),
		sina.WithSuggestURL(cfg.Sina.SuggestURL),
		sina.WithReferer(cfg.Sina.Referer),
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var typeList []string
	if *types != "" {
		typeList = strings.Split(*types, ",")
	}

	candidates, err := client.Suggest(ctx, keyword, typeList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "suggest error: %v\n", err)
		os.Exit(1)
	}
	if len(candidates) == 0 {
		fmt.Printf("%s: 查询结果为空\n", keyword)
		return
	}

	results, err := client.Quotes(ctx, market.Securities(candidates))
	if err != nil {
		fmt.Fprintf(os.Stderr, "quote error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s: 查询到以下结果:\n%s\n", keyword, report.Quotes(results))
}
