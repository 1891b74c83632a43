package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"wordvec/internal/app"
	"wordvec/internal/corpus"
	"wordvec/internal/logger"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/wordvec/config.yaml if not provided)")
	flag.Parse()

	env, err := app.Bootstrap(cfgPath)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer func() { _ = env.Log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.Into(ctx, env.Log)
	stopMetrics := env.ServeMetrics()
	defer stopMetrics()

	cfg := env.Config.Corpus
	b := corpus.NewBuilder(cfg.Path, cfg.Sources,
		corpus.WithTimeout(time.Duration(cfg.TimeoutSecs)*time.Second),
		corpus.WithUserAgent(cfg.UserAgent),
		corpus.WithMetrics(env.Metrics),
	)
	if err := b.Build(ctx); err != nil {
		env.Log.Error("corpus build failed", zap.Error(err))
		os.Exit(1)
	}
}
