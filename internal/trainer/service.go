// Package trainer runs the training stage: it checks the corpus, streams it
// into the configured trainer and persists the model.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"wordvec/internal/config"
	"wordvec/internal/corpus"
	"wordvec/internal/domain"
	"wordvec/internal/logger"
	"wordvec/internal/metrics"
)

// StateSaver is implemented by trainers that can persist their full state.
type StateSaver interface {
	SaveState(path string) error
}

type Service struct {
	cfg        config.TrainerConfig
	corpusPath string
	trainer    domain.Trainer
	metrics    *metrics.Metrics
}

func NewService(cfg config.TrainerConfig, corpusPath string, t domain.Trainer, m *metrics.Metrics) *Service {
	return &Service{cfg: cfg, corpusPath: corpusPath, trainer: t, metrics: m}
}

// Run trains over the corpus and writes the model. A missing corpus is
// reported as domain.ErrCorpusNotFound. Logging goes to the logger carried
// by ctx, which the trainer inherits.
func (s *Service) Run(ctx context.Context) error {
	ctx, log := logger.Stage(ctx, "train", zap.String("trainer", s.trainer.Name()))
	if _, err := os.Stat(s.corpusPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", domain.ErrCorpusNotFound, s.corpusPath)
		}
		return err
	}

	params := domain.TrainParams{
		VectorSize: s.cfg.VectorSize,
		Window:     s.cfg.Window,
		MinCount:   s.cfg.MinCount,
		Epochs:     s.cfg.Epochs,
		Workers:    s.cfg.EffectiveWorkers(),
	}
	log.Info("training started",
		zap.String("corpus", s.corpusPath),
		zap.Int("vector_size", params.VectorSize),
		zap.Int("window", params.Window),
		zap.Int("min_count", params.MinCount),
		zap.Int("epochs", params.Epochs),
		zap.Int("workers", params.Workers),
	)

	start := time.Now()
	obs := NewEpochLogger(log, s.metrics)
	if err := s.trainer.Train(ctx, corpus.NewStreamer(s.corpusPath), params, obs); err != nil {
		return fmt.Errorf("train %s: %w", s.trainer.Name(), err)
	}

	if err := s.trainer.Save(s.cfg.ModelPath); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	log.Info("model saved",
		zap.String("path", s.cfg.ModelPath),
		zap.Duration("took", time.Since(start)),
	)

	if s.cfg.StatePath != "" {
		saver, ok := s.trainer.(StateSaver)
		if !ok {
			return fmt.Errorf("trainer %s cannot save its state", s.trainer.Name())
		}
		if err := saver.SaveState(s.cfg.StatePath); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
		log.Info("training state saved", zap.String("path", s.cfg.StatePath))
	}
	return nil
}

// EpochLogger logs epoch boundaries and records them as metrics.
type EpochLogger struct {
	log     *zap.Logger
	metrics *metrics.Metrics
	started time.Time
}

func NewEpochLogger(log *zap.Logger, m *metrics.Metrics) *EpochLogger {
	return &EpochLogger{log: log, metrics: m}
}

func (e *EpochLogger) EpochStarted(epoch int) {
	e.started = time.Now()
	e.log.Info("epoch starting", zap.Int("epoch", epoch))
}

func (e *EpochLogger) EpochFinished(epoch int, loss float64) {
	took := time.Since(e.started)
	e.metrics.EpochFinished(loss, took)
	e.log.Info("epoch finished",
		zap.Int("epoch", epoch),
		zap.Float64("loss", loss),
		zap.Duration("took", took),
	)
}
