package vectorstore

import "wordvec/internal/domain"

// Storage persists token vectors and supports similarity search.
type Storage interface {
	Init(dimension int) error
	Upsert(tokens []string, vectors [][]float64) error
	Search(vector []float64, topK int) ([]domain.Neighbor, error)
	Clear() error
}
