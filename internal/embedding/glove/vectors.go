package glove

import (
	"errors"
	"fmt"
	"os"

	"github.com/n0madic/go-glove"

	"wordvec/internal/domain"
)

// Vectors exposes a GloVe model as a read-only vocabulary.
type Vectors struct {
	g *glove.GloVe
}

// Load reads a vector file written by Trainer.Save.
func Load(path string) (*Vectors, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrModelNotFound, path)
		}
		return nil, err
	}
	g := glove.NewGloVe()
	if err := g.LoadVectors(path); err != nil {
		return nil, fmt.Errorf("load vectors %s: %w", path, err)
	}
	return &Vectors{g: g}, nil
}

func (v *Vectors) Dimension() int { return v.g.VectorSize }

// Words returns the vocabulary in the model's index order.
func (v *Vectors) Words() []string {
	return append([]string(nil), v.g.InvVocab...)
}

func (v *Vectors) Vector(token string) ([]float64, bool) {
	return v.g.GetWordVector(token)
}
