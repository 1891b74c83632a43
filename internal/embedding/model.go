package embedding

import (
	"context"
	"errors"
	"fmt"

	"wordvec/internal/domain"
	"wordvec/internal/vectorstore"
)

// Model answers vector lookups from a vocabulary and ranked-neighbor
// queries from a vector store indexed with the same vocabulary.
type Model struct {
	vocab domain.Vocabulary
	store vectorstore.Storage
}

func NewModel(vocab domain.Vocabulary, store vectorstore.Storage) *Model {
	return &Model{vocab: vocab, store: store}
}

func (m *Model) Dimension() int { return m.vocab.Dimension() }

func (m *Model) Words() []string { return m.vocab.Words() }

func (m *Model) Vector(token string) ([]float64, bool) { return m.vocab.Vector(token) }

func (m *Model) Nearest(vector []float64, k int) ([]domain.Neighbor, error) {
	return m.store.Search(vector, k)
}

// Progress is called after every indexed batch with the running total.
type Progress func(done, total int)

// Index replaces the contents of store with the vocabulary: it drops
// whatever an earlier model left behind, initialises the store for the
// vocabulary dimension and upserts every token vector in batches of batchSize.
func Index(ctx context.Context, vocab domain.Vocabulary, store vectorstore.Storage, batchSize int, progress Progress) error {
	if batchSize <= 0 {
		batchSize = 500
	}
	// Clear goes first: the qdrant store drops its collection and Init recreates it.
	if err := store.Clear(); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	if err := store.Init(vocab.Dimension()); err != nil {
		return err
	}
	words := vocab.Words()
	tokens := make([]string, 0, batchSize)
	vectors := make([][]float64, 0, batchSize)
	flush := func(done int) error {
		if len(tokens) == 0 {
			return nil
		}
		if err := store.Upsert(tokens, vectors); err != nil {
			return err
		}
		tokens, vectors = tokens[:0], vectors[:0]
		if progress != nil {
			progress(done, len(words))
		}
		return nil
	}
	for i, w := range words {
		if err := ctx.Err(); err != nil {
			return err
		}
		vec, ok := vocab.Vector(w)
		if !ok {
			return errors.New("vocabulary lists a token without a vector: " + w)
		}
		tokens = append(tokens, w)
		vectors = append(vectors, vec)
		if len(tokens) == batchSize {
			if err := flush(i + 1); err != nil {
				return err
			}
		}
	}
	return flush(len(words))
}
