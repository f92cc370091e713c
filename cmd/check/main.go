// Command check verifies configuration and exchange connectivity without
// trading: it pings the venue, fetches one ticker and, when credentials
// are present, the quote-asset balance.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"spot-breakout-bot/internal/config"
	"spot-breakout-bot/internal/exchange"
	"spot-breakout-bot/internal/exchange/binance"
	"spot-breakout-bot/internal/exchange/sim"
	"spot-breakout-bot/internal/logging"
)

func main() {
	configPath := flag.String("config", "internal/config/config.yaml", "path to config file")
	paper := flag.Bool("paper", false, "check against the simulated exchange")
	flag.Parse()

	if err := config.LoadEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}
	log := logging.New(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var client exchange.Client
	signedChecks := false
	if *paper || cfg.Exchange.Mode == "sim" {
		client = sim.New()
	} else {
		apiKey := strings.TrimSpace(os.Getenv("BINANCE_API_KEY"))
		secret := strings.TrimSpace(os.Getenv("BINANCE_API_SECRET"))
		signedChecks = apiKey != "" && secret != ""
		client = binance.New(cfg.Exchange, apiKey, secret, log)
	}

	latency, err := client.CheckConnectivity(ctx)
	if err != nil {
		fatal(fmt.Errorf("connectivity check failed: %w", err))
	}
	fmt.Printf("connectivity ok, latency %dms\n", latency)

	ticker, err := client.FetchTicker(ctx, cfg.Strategy.Symbol)
	if err != nil {
		fatal(fmt.Errorf("ticker fetch failed: %w", err))
	}
	fmt.Printf("%s price %.2f volume(1h) %.0f\n", ticker.Symbol, ticker.Price, ticker.Volume1h)

	if !signedChecks && !*paper && cfg.Exchange.Mode != "sim" {
		fmt.Println("no API credentials in environment, skipping balance check")
		return
	}
	balance, err := client.FetchBalance(ctx, cfg.Strategy.QuoteAsset)
	if err != nil {
		fatal(fmt.Errorf("balance fetch failed: %w", err))
	}
	fmt.Printf("%s balance free %.2f locked %.2f\n", balance.Asset, balance.Free, balance.Locked)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
