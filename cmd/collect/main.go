package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samvad-hq/samvad-social-ingestor/internal/app"
	"github.com/samvad-hq/samvad-social-ingestor/internal/config"
	"github.com/samvad-hq/samvad-social-ingestor/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "collect failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		platform  = flag.String("platform", "", "platform to collect from (twitter, instagram, facebook, tiktok)")
		accountID = flag.String("account", "", "account id from the accounts registry")
		count     = flag.Int("count", 0, "maximum posts to collect (0 uses the configured default)")
		daysBack  = flag.Int("days", 0, "collect posts newer than N days (0 uses the configured default)")
	)
	flag.Parse()

	if *platform == "" || *accountID == "" {
		flag.Usage()
		return fmt.Errorf("both -platform and -account are required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ingestor, err := app.NewIngestor(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize ingestor", "error", err)
		return err
	}

	defer ingestor.Close()

	var since time.Time
	if *daysBack > 0 {
		since = time.Now().AddDate(0, 0, -*daysBack)
	}

	result, err := ingestor.CollectNow(ctx, *platform, *accountID, *count, since)
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("collection failed: %s", result.Error)
	}

	logger.InfoObj("collection finished", "collect_result", result)
	return nil
}
