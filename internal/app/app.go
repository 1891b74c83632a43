// Package app assembles the components shared by the command binaries.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"wordvec/internal/config"
	"wordvec/internal/embedding"
	"wordvec/internal/embedding/glove"
	"wordvec/internal/logger"
	"wordvec/internal/metrics"
	"wordvec/internal/vectorstore"
	"wordvec/internal/vectorstore/memory"
	"wordvec/internal/vectorstore/qdrant"
	"wordvec/internal/vectorstore/sqlite"
)

// Env bundles the loaded configuration with the ambient services built from it.
type Env struct {
	Config   *config.AppConfig
	Log      *zap.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
}

// Bootstrap loads .env and the config at cfgPath (or the default location),
// then builds the logger and metrics registry.
func Bootstrap(cfgPath string) (*Env, error) {
	_ = godotenv.Load()

	cfg, err := config.LoadFlag(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.NewLogger(cfg.Logging.Env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	reg := prometheus.NewRegistry()
	return &Env{
		Config:   cfg,
		Log:      log,
		Registry: reg,
		Metrics:  metrics.New(reg),
	}, nil
}

// ServeMetrics starts the metrics endpoint if one is configured. The returned
// stop function is always safe to call.
func (e *Env) ServeMetrics() func() {
	srv := metrics.Serve(e.Config.Metrics.Addr, e.Registry, e.Log)
	return func() { shutdown(srv, e.Log) }
}

func shutdown(srv *http.Server, log *zap.Logger) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("metrics server shutdown", zap.Error(err))
	}
}

// OpenStore builds the vector store selected by cfg. The close function
// releases whatever the store holds open.
func OpenStore(cfg config.VectorStoreConfig) (vectorstore.Storage, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Type {
	case "memory", "":
		return memory.NewStorage(), noop, nil
	case "sqlite":
		if cfg.SQLite == nil {
			return nil, nil, fmt.Errorf("sqlite config missing")
		}
		st, err := sqlite.New(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	case "qdrant":
		if cfg.Qdrant == nil {
			return nil, nil, fmt.Errorf("qdrant config missing")
		}
		return qdrant.NewStorage(qdrant.Config{
			URL:        cfg.Qdrant.URL,
			APIKey:     cfg.Qdrant.APIKey,
			Collection: cfg.Qdrant.Collection,
			Timeout:    time.Duration(cfg.Qdrant.TimeoutSecs) * time.Second,
		}), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown vector store: %s", cfg.Type)
	}
}

// LoadModel reads the trained vectors, indexes them into the configured
// store and returns the queryable model. A missing model file surfaces as
// domain.ErrModelNotFound.
func (e *Env) LoadModel(ctx context.Context) (*embedding.Model, func() error, error) {
	start := time.Now()
	vocab, err := glove.Load(e.Config.Trainer.ModelPath)
	if err != nil {
		return nil, nil, err
	}
	store, closeStore, err := OpenStore(e.Config.VectorStore)
	if err != nil {
		return nil, nil, err
	}
	size := len(vocab.Words())
	err = embedding.Index(ctx, vocab, store, e.Config.Export.BatchSize, func(done, total int) {
		e.Log.Debug("indexing vocabulary", zap.Int("done", done), zap.Int("total", total))
	})
	if err != nil {
		_ = closeStore()
		return nil, nil, fmt.Errorf("index vocabulary: %w", err)
	}
	e.Metrics.VocabularySize(size)
	e.Log.Info("model loaded",
		zap.String("path", e.Config.Trainer.ModelPath),
		zap.String("store", e.Config.VectorStore.Type),
		zap.String("words", humanize.Comma(int64(size))),
		zap.Int("dimension", vocab.Dimension()),
		zap.Duration("took", time.Since(start)),
	)
	return embedding.NewModel(vocab, store), closeStore, nil
}
