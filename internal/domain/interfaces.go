package domain

import "context"

// Neighbor is a vocabulary token ranked against a query vector.
type Neighbor struct {
	Token string
	Score float64
}

// Query is a parsed lookup or analogy expression.
type Query struct {
	Positive []string
	Negative []string
}

// TrainParams holds the hyperparameters handed to a Trainer.
type TrainParams struct {
	VectorSize int
	Window     int
	MinCount   int
	Epochs     int
	Workers    int
}

// Vocabulary gives read access to a trained embedding table.
type Vocabulary interface {
	Dimension() int
	Words() []string
	Vector(token string) ([]float64, bool)
}

// Model is a trained embedding table that can rank its vocabulary.
type Model interface {
	Vocabulary
	Nearest(vector []float64, k int) ([]Neighbor, error)
}

// SentenceSource is a repeatable stream of cleaned token lists.
// Every call to Each performs a fresh pass over the underlying corpus.
type SentenceSource interface {
	Each(ctx context.Context, fn func(tokens []string) error) error
}

// EpochObserver receives training progress at epoch boundaries.
type EpochObserver interface {
	EpochStarted(epoch int)
	EpochFinished(epoch int, loss float64)
}

// Trainer fits an embedding model over a sentence stream and persists it.
type Trainer interface {
	Name() string
	Train(ctx context.Context, src SentenceSource, params TrainParams, obs EpochObserver) error
	Save(path string) error
}
