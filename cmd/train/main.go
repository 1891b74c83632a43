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
	"time"

	"go.uber.org/zap"

	"wordvec/internal/app"
	"wordvec/internal/corpus"
	"wordvec/internal/domain"
	"wordvec/internal/embedding/glove"
	"wordvec/internal/logger"
	"wordvec/internal/trainer"
)

func main() {
	var cfgPath string
	var skipDownload bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/wordvec/config.yaml if not provided)")
	flag.BoolVar(&skipDownload, "skip-download", false, "Train on the existing corpus without building it first")
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

	if err := run(ctx, env, skipDownload); err != nil {
		if errors.Is(err, domain.ErrCorpusNotFound) {
			fmt.Fprintln(os.Stderr, "Corpus not found. Run corpus first or drop -skip-download.")
		}
		env.Log.Error("training failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, env *app.Env, skipDownload bool) error {
	cfg := env.Config
	if !skipDownload {
		b := corpus.NewBuilder(cfg.Corpus.Path, cfg.Corpus.Sources,
			corpus.WithTimeout(time.Duration(cfg.Corpus.TimeoutSecs)*time.Second),
			corpus.WithUserAgent(cfg.Corpus.UserAgent),
				corpus.WithMetrics(env.Metrics),
		)
		if err := b.Build(ctx); err != nil {
			return fmt.Errorf("build corpus: %w", err)
		}
	}

	var t domain.Trainer
	switch cfg.Trainer.Type {
	case "glove", "":
		t = glove.NewTrainer()
	default:
		return fmt.Errorf("unknown trainer: %s", cfg.Trainer.Type)
	}

	if err := trainer.NewService(cfg.Trainer, cfg.Corpus.Path, t, env.Metrics).Run(ctx); err != nil {
		return err
	}
	if g, ok := t.(*glove.Trainer); ok {
		n := len(g.Vocabulary().Words())
		env.Metrics.VocabularySize(n)
		env.Log.Info("vocabulary built", zap.Int("words", n))
	}
	return nil
}
