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

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"wordvec/internal/app"
	"wordvec/internal/domain"
	"wordvec/internal/embedding"
	"wordvec/internal/embedding/glove"
	"wordvec/internal/vectorstore/sqlite"
)

func main() {
	var cfgPath, out string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/wordvec/config.yaml if not provided)")
	flag.StringVar(&out, "out", "", "SQLite database to write (defaults to vector_store.sqlite.path or models/vectors.db)")
	flag.Parse()

	env, err := app.Bootstrap(cfgPath)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer func() { _ = env.Log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	stopMetrics := env.ServeMetrics()
	defer stopMetrics()

	if out == "" {
		out = "models/vectors.db"
		if env.Config.VectorStore.SQLite != nil {
			out = env.Config.VectorStore.SQLite.Path
		}
	}
	if err := run(ctx, env, out); err != nil {
		if errors.Is(err, domain.ErrModelNotFound) {
			fmt.Fprintln(os.Stderr, "Model not found. Please run train first.")
		}
		env.Log.Error("export failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, env *app.Env, out string) error {
	start := time.Now()
	vocab, err := glove.Load(env.Config.Trainer.ModelPath)
	if err != nil {
		return err
	}
	db, err := sqlite.New(out)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	last := 0
	err = embedding.Index(ctx, vocab, db, env.Config.Export.BatchSize, func(done, total int) {
		env.Metrics.RowsExported(done - last)
		last = done
		env.Log.Info("exported batch",
			zap.String("progress", humanize.Comma(int64(done))+"/"+humanize.Comma(int64(total))),
		)
	})
	if err != nil {
		return fmt.Errorf("export vectors: %w", err)
	}

	n, err := db.Count()
	if err != nil {
		return err
	}
	env.Log.Info("export finished",
		zap.String("path", out),
		zap.Int("rows", n),
		zap.Int("dimension", db.Dimension()),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}
