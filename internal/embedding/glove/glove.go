// Package glove adapts github.com/n0madic/go-glove to the trainer and
// vocabulary interfaces.
package glove

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/n0madic/go-glove"
	"go.uber.org/zap"

	"wordvec/internal/domain"
	"wordvec/internal/logger"
)

// Trainer fits a GloVe model over a sentence stream.
type Trainer struct {
	model *glove.GloVe
}

func NewTrainer() *Trainer { return &Trainer{} }

func (t *Trainer) Name() string { return "glove" }

// Train makes two passes over src: the first counts token frequencies, the
// second collects the tokens that reach params.MinCount in corpus order.
// The co-occurrence matrix and the optimisation run inside the library.
func (t *Trainer) Train(ctx context.Context, src domain.SentenceSource, params domain.TrainParams, obs domain.EpochObserver) error {
	log := logger.From(ctx).Named("glove")
	if params.MinCount < glove.MIN_COUNT {
		return fmt.Errorf("min count %d is below the library minimum %d", params.MinCount, glove.MIN_COUNT)
	}

	counts := make(map[string]int)
	sentences := 0
	err := src.Each(ctx, func(tokens []string) error {
		sentences++
		for _, tok := range tokens {
			counts[tok]++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("count tokens: %w", err)
	}
	log.Info("counted corpus tokens",
		zap.Int("sentences", sentences),
		zap.Int("distinct", len(counts)),
	)

	var kept []string
	err = src.Each(ctx, func(tokens []string) error {
		for _, tok := range tokens {
			if counts[tok] >= params.MinCount {
				kept = append(kept, tok)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("collect tokens: %w", err)
	}
	if len(kept) == 0 {
		return domain.ErrEmptyVocabulary
	}

	g := glove.NewGloVe()
	if err := g.BuildVocab(kept); err != nil {
		return fmt.Errorf("build vocabulary: %w", err)
	}
	if g.VocabSize == 0 {
		return domain.ErrEmptyVocabulary
	}
	if err := g.BuildCooccurrenceMatrix(kept, params.Window); err != nil {
		return fmt.Errorf("build co-occurrence matrix: %w", err)
	}
	log.Info("prepared training data",
		zap.Int("tokens", len(kept)),
		zap.Int("vocabulary", g.VocabSize),
		zap.Int("cooccurrences", len(g.Cooccur)),
	)

	if err := ctx.Err(); err != nil {
		return err
	}
	g.InitializeParameters(params.VectorSize)

	if obs != nil {
		obs.EpochStarted(1)
	}
	g.TrainWithCallback(params.Epochs, params.Workers, func(p glove.TrainingProgress) {
		if obs == nil {
			return
		}
		obs.EpochFinished(p.Iteration, p.Cost)
		if p.Iteration < p.MaxIterations {
			obs.EpochStarted(p.Iteration + 1)
		}
	})

	t.model = g
	return nil
}

// Vocabulary returns the trained vectors, nil before Train succeeds.
func (t *Trainer) Vocabulary() *Vectors {
	if t.model == nil {
		return nil
	}
	return &Vectors{g: t.model}
}

// Save writes word+context vectors as text with a "vocab dim" header.
func (t *Trainer) Save(path string) error {
	if t.model == nil {
		return errors.New("glove: no trained model to save")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return t.model.SaveVectorsMode(path, glove.SaveWordAndContext, glove.OutputText, true)
}

// SaveState writes the full library state (vocabulary counts, parameters
// and biases) so training can be inspected or resumed.
func (t *Trainer) SaveState(path string) error {
	if t.model == nil {
		return errors.New("glove: no trained model to save")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return t.model.SaveModelState(path, false, false)
}
