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

	"go.uber.org/zap"

	"wordvec/internal/app"
	"wordvec/internal/domain"
	"wordvec/internal/service"
	"wordvec/internal/showcase"
)

func main() {
	var cfgPath string
	var strict bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/wordvec/config.yaml if not provided)")
	flag.BoolVar(&strict, "strict", false, "Stop at the first word missing from the vocabulary")
	flag.Parse()

	env, err := app.Bootstrap(cfgPath)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer func() { _ = env.Log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, env, strict); err != nil {
		if errors.Is(err, domain.ErrModelNotFound) {
			fmt.Fprintln(os.Stderr, "Model not found. Please run train first.")
		}
		env.Log.Error("showcase failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, env *app.Env, strict bool) error {
	model, closeStore, err := env.LoadModel(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	words := service.NewWordService(model, service.WithMetrics(env.Metrics))
	return showcase.New(words, env.Config.Showcase, os.Stdout, strict).Run()
}
