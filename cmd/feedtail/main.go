// feedtail connects to a running buybot's websocket feed and prints buys to the console.
// Usage: go run ./cmd/feedtail --url ws://localhost:9090/feed
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rickgao/dex-buybot/internal/feed"
	"github.com/rickgao/dex-buybot/internal/model"
)

func main() {
	url := flag.String("url", "ws://localhost:9090/feed", "feed websocket URL")
	verbose := flag.Bool("verbose", false, "print full message JSON")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	sub := feed.NewSubscriber(feed.DefaultSubscriberConfig(*url), logger)
	if err := sub.Connect(ctx); err != nil {
		logger.Error("failed to connect to feed", "url", *url, "error", err)
		os.Exit(1)
	}
	defer sub.Close()

	logger.Info("streaming started - press Ctrl+C to stop", "url", *url)

	count := 0
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutdown complete", "buys", count)
			return
		case err := <-sub.Errors():
			logger.Error("feed connection lost", "error", err, "buys", count)
			os.Exit(1)
		case buy, ok := <-sub.Buys():
			if !ok {
				logger.Info("feed closed", "buys", count)
				return
			}
			count++
			printBuy(buy, *verbose)
		}
	}
}

func printBuy(b model.Buy, verbose bool) {
	if verbose {
		data, _ := json.MarshalIndent(b, "", "  ")
		fmt.Printf("[BUY] %s\n", data)
		return
	}

	usd := "n/a"
	if b.SpentUSDKnown {
		usd = fmt.Sprintf("$%.2f", b.SpentUSD)
	}
	fmt.Printf("[BUY] pair=%s spent=%s %s usd=%s received=%s tier=%s tx=%s\n",
		b.Pair, b.Spent.StringFixed(2), b.SpentSymbol, usd, b.Received, b.Tier, b.TxHash)
}
