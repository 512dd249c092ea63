package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"transrender.dev/internal/config"
	"transrender.dev/internal/pipeline"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to render.yaml (optional; defaults apply when empty)")
		renderer   = flag.String("renderer", "", "override renderer: scan, raycast or raylist")
		workers    = flag.Int("workers", -1, "override worker count (0 = one per CPU)")
		overwrite  = flag.Bool("overwrite", false, "re-render targets whose output already exists")
		inputDir   = flag.String("input", "", "override input directory")
		cacheDir   = flag.String("cache", "", "override raylist cache directory")
		fetchSrc   = flag.String("fetch", "", "override model pack source (any go-getter address)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[transrender] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatalConfig(err)
	}
	if *renderer != "" {
		cfg.Renderer = *renderer
	}
	if *workers >= 0 {
		cfg.Workers = *workers
	}
	if *overwrite {
		cfg.Overwrite = true
	}
	if *inputDir != "" {
		cfg.InputDir = *inputDir
	}
	if *cacheDir != "" {
		cfg.CacheDir = *cacheDir
	}
	if *fetchSrc != "" {
		cfg.Fetch = *fetchSrc
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		fatalConfig(err)
	}

	deps, err := pipeline.OpenDeps(cfg, logger)
	if err != nil {
		logger.Fatalf("open: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	sum, err := pipeline.Run(ctx, cfg, deps)
	if cerr := deps.Close(); cerr != nil {
		logger.Printf("close: %v", cerr)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Printf("interrupted")
			os.Exit(130)
		}
		logger.Fatalf("run: %v", err)
	}
	if sum.Failed > 0 {
		os.Exit(1)
	}
}

func fatalConfig(err error) {
	var ce *config.ConfigurationError
	if errors.As(err, &ce) {
		fmt.Fprintln(os.Stderr, ce)
		os.Exit(2)
	}
	fmt.Fprintln(os.Stderr, "config:", err)
	os.Exit(2)
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
