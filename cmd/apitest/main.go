package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/rickgao/dex-buybot/internal/api"
	"github.com/rickgao/dex-buybot/internal/config"
)

func main() {
	configPath := flag.String("config", "configs/buybot.local.yaml", "path to config file")
	limit := flag.Int("limit", 5, "orders to show per pair")
	flag.Parse()

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	client := api.NewClient(
		cfg.API.BaseURL,
		cfg.API.PartnerID,
		api.WithTimeout(30*time.Second),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// Test 1: Base asset price
	fmt.Printf("=== Testing GetBaseValue (%s) ===\n", cfg.Base.Symbol)
	baseUSD, err := client.GetBaseValue(ctx)
	if err != nil {
		log.Fatalf("GetBaseValue failed: %v", err)
	}
	fmt.Printf("%s/USD: %s\n", cfg.Base.Symbol, baseUSD)

	// Test 2: Token price
	fmt.Printf("\n=== Testing GetAveragePrice (%s) ===\n", cfg.Token.Symbol)
	inBase, err := client.GetAveragePrice(ctx, cfg.Token.TokenID)
	if err != nil {
		log.Fatalf("GetAveragePrice failed: %v", err)
	}
	fmt.Printf("%s in %s: %s\n", cfg.Token.Symbol, cfg.Base.Symbol, inBase)
	fmt.Printf("%s in USD: %s\n", cfg.Token.Symbol, inBase.Mul(baseUSD).StringFixed(8))

	// Test 3: Recent completed orders per pair
	tracked := cfg.Token.Asset()
	for _, pair := range cfg.PairAssets() {
		fmt.Printf("\n=== Testing OrdersByPair (%s/%s) ===\n", pair.Symbol, tracked.Symbol)
		req := api.CompletedOrdersRequest(pair.TokenID, tracked.TokenID, *limit)
		orders, err := client.OrdersByPair(ctx, req)
		if err != nil {
			log.Fatalf("OrdersByPair failed: %v", err)
		}

		buys := 0
		for _, o := range orders {
			if !o.IsBuyOf(tracked.TokenID) {
				continue
			}
			buys++
			fmt.Printf("  %d. %s  in=%s %s  out=%s %s  dex=%s\n",
				buys, o.TxHash,
				pair.Normalize(o.AmountIn), pair.Symbol,
				tracked.Normalize(o.ActualOut), tracked.Symbol,
				o.DexName,
			)
		}
		fmt.Printf("Fetched %d orders, %d buys\n", len(orders), buys)
	}

	fmt.Println("\n=== All tests passed ===")
}
