package service

import (
	"fmt"
	"math"

	"wordvec/internal/domain"
	"wordvec/internal/metrics"
	"wordvec/internal/plot"
	"wordvec/internal/projection"
	"wordvec/internal/vectorstore"
)

const (
	defaultPlotPath      = "word_plot.png"
	defaultPlotNeighbors = 3
)

// WordService runs similarity, analogy, odd-one-out and plot queries
// against a trained model.
type WordService struct {
	model         domain.Model
	metrics       *metrics.Metrics
	plotPath      string
	plotNeighbors int
}

type Option func(*WordService)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *WordService) { s.metrics = m }
}

// WithPlot sets the image path and the number of neighbors added per seed.
func WithPlot(path string, neighbors int) Option {
	return func(s *WordService) {
		if path != "" {
			s.plotPath = path
		}
		if neighbors > 0 {
			s.plotNeighbors = neighbors
		}
	}
}

func NewWordService(model domain.Model, opts ...Option) *WordService {
	s := &WordService{
		model:         model,
		plotPath:      defaultPlotPath,
		plotNeighbors: defaultPlotNeighbors,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Similar returns the k nearest neighbors of a single word.
func (s *WordService) Similar(word string, k int) ([]domain.Neighbor, error) {
	return s.MostSimilar([]string{word}, nil, k)
}

// MostSimilar ranks the vocabulary against the mean of the unit vectors of
// positive minus those of negative. Input words never appear in the result.
func (s *WordService) MostSimilar(positive, negative []string, k int) ([]domain.Neighbor, error) {
	res, err := s.mostSimilar(positive, negative, k)
	s.metrics.Query("most_similar", err)
	return res, err
}

func (s *WordService) mostSimilar(positive, negative []string, k int) ([]domain.Neighbor, error) {
	if len(positive)+len(negative) == 0 {
		return nil, domain.ErrEmptyQuery
	}
	if k <= 0 {
		k = 5
	}
	mean := make([]float64, s.model.Dimension())
	exclude := make(map[string]struct{}, len(positive)+len(negative))
	add := func(words []string, weight float64) error {
		for _, w := range words {
			vec, ok := s.model.Vector(w)
			if !ok {
				return &domain.VocabularyMissError{Token: w}
			}
			if len(vec) != len(mean) {
				return domain.ErrDimensionMismatch
			}
			unit := vectorstore.Normalize(vec)
			for i := range mean {
				mean[i] += weight * unit[i]
			}
			exclude[w] = struct{}{}
		}
		return nil
	}
	if err := add(positive, 1); err != nil {
		return nil, err
	}
	if err := add(negative, -1); err != nil {
		return nil, err
	}
	n := float64(len(positive) + len(negative))
	for i := range mean {
		mean[i] /= n
	}

	candidates, err := s.model.Nearest(vectorstore.Normalize(mean), k+len(exclude))
	if err != nil {
		return nil, fmt.Errorf("nearest: %w", err)
	}
	out := make([]domain.Neighbor, 0, k)
	for _, c := range candidates {
		if _, skip := exclude[c.Token]; skip {
			continue
		}
		out = append(out, c)
		if len(out) == k {
			break
		}
	}
	return out, nil
}

// DoesntMatch returns the word whose unit vector is least aligned with the
// mean of all the words' unit vectors. Every word must be in vocabulary.
func (s *WordService) DoesntMatch(words []string) (string, error) {
	odd, err := s.doesntMatch(words)
	s.metrics.Query("doesnt_match", err)
	return odd, err
}

func (s *WordService) doesntMatch(words []string) (string, error) {
	if len(words) == 0 {
		return "", domain.ErrEmptyQuery
	}
	units := make([][]float64, len(words))
	mean := make([]float64, s.model.Dimension())
	for i, w := range words {
		vec, ok := s.model.Vector(w)
		if !ok {
			return "", &domain.VocabularyMissError{Token: w}
		}
		if len(vec) != len(mean) {
			return "", domain.ErrDimensionMismatch
		}
		units[i] = vectorstore.Normalize(vec)
		for j := range mean {
			mean[j] += units[i][j]
		}
	}
	mean = vectorstore.Normalize(mean)

	odd, lowest := "", math.Inf(1)
	for i, u := range units {
		if d := vectorstore.Dot(u, mean); d < lowest {
			odd, lowest = words[i], d
		}
	}
	return odd, nil
}

// Plot widens seeds with their nearest neighbors, projects the vectors to
// two dimensions and saves a labelled scatter plot. It returns the image path.
func (s *WordService) Plot(seeds []string) (string, error) {
	path, err := s.plot(seeds)
	s.metrics.Query("plot", err)
	return path, err
}

func (s *WordService) plot(seeds []string) (string, error) {
	words := plot.Expand(s.model, s.Similar, seeds, s.plotNeighbors)
	if len(words) < 2 {
		return "", domain.ErrInsufficientTokens
	}
	vectors := make([][]float64, len(words))
	for i, w := range words {
		vectors[i], _ = s.model.Vector(w)
	}
	points, err := projection.TSNE(vectors, projection.Options{
		Perplexity: math.Min(30, float64(len(words)-1)),
	})
	if err != nil {
		return "", fmt.Errorf("project vectors: %w", err)
	}
	if err := plot.Save(s.plotPath, plot.Title(seeds), words, points); err != nil {
		return "", fmt.Errorf("save plot: %w", err)
	}
	return s.plotPath, nil
}
