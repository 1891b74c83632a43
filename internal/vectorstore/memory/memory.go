package memory

import (
	"errors"
	"sync"

	"wordvec/internal/domain"
	"wordvec/internal/vectorstore"
)

// Storage is a simple in-memory vector store using brute-force cosine similarity.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	tokens    []string
	index     map[string]int
}

func NewStorage() *Storage { return &Storage{index: map[string]int{}} }

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	s.tokens = nil
	s.index = map[string]int{}
	return nil
}

// Upsert stores unit-normalized copies of the vectors. A token that is
// already present has its vector replaced in place.
func (s *Storage) Upsert(tokens []string, vectors [][]float64) error {
	if len(tokens) != len(vectors) {
		return errors.New("tokens and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return domain.ErrDimensionMismatch
		}
	}
	for i, tok := range tokens {
		unit := vectorstore.Normalize(vectors[i])
		if j, ok := s.index[tok]; ok {
			s.vectors[j] = unit
			continue
		}
		s.index[tok] = len(s.tokens)
		s.tokens = append(s.tokens, tok)
		s.vectors = append(s.vectors, unit)
	}
	return nil
}

func (s *Storage) Search(vector []float64, topK int) ([]domain.Neighbor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(vector) != s.dimension {
		return nil, domain.ErrDimensionMismatch
	}
	if topK <= 0 {
		topK = 5
	}
	query := vectorstore.Normalize(vector)
	// stored vectors are unit length, so the dot product is the cosine
	scores := make([]float64, len(s.vectors))
	for i := range s.vectors {
		scores[i] = vectorstore.Dot(s.vectors[i], query)
	}
	idxs := vectorstore.ArgsortDesc(scores)
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.Neighbor, 0, topK)
	for i := 0; i < topK; i++ {
		j := idxs[i]
		results = append(results, domain.Neighbor{Token: s.tokens[j], Score: scores[j]})
	}
	return results, nil
}

func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.tokens = nil
	s.index = map[string]int{}
	return nil
}

// Len reports how many tokens are stored.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}
