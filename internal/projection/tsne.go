// Package projection reduces embedding vectors to two dimensions with
// exact t-SNE.
package projection

import (
	"errors"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// Options tunes the t-SNE run. Zero values take the defaults below.
type Options struct {
	Perplexity        float64
	Iterations        int
	LearningRate      float64
	EarlyExaggeration float64
	ExaggerationIters int
	Seed              uint64
}

const (
	defaultPerplexity   = 30
	defaultIterations   = 1000
	defaultLearningRate = 200
	defaultExaggeration = 12
	defaultExagIters    = 250
	defaultSeed         = 42

	minGain        = 0.01
	minProbability = 1e-12
	entropyTol     = 1e-5
	maxBetaSteps   = 50
)

func (o *Options) applyDefaults() {
	if o.Perplexity <= 0 {
		o.Perplexity = defaultPerplexity
	}
	if o.Iterations <= 0 {
		o.Iterations = defaultIterations
	}
	if o.LearningRate <= 0 {
		o.LearningRate = defaultLearningRate
	}
	if o.EarlyExaggeration <= 0 {
		o.EarlyExaggeration = defaultExaggeration
	}
	if o.ExaggerationIters <= 0 {
		o.ExaggerationIters = defaultExagIters
	}
	if o.Seed == 0 {
		o.Seed = defaultSeed
	}
}

// TSNE embeds the rows of x into the plane. The result has one [x, y]
// pair per input row and is deterministic for a given seed.
func TSNE(x [][]float64, opts Options) ([][]float64, error) {
	n := len(x)
	if n < 2 {
		return nil, errors.New("projection: need at least two vectors")
	}
	dim := len(x[0])
	for _, row := range x {
		if len(row) != dim {
			return nil, errors.New("projection: rows differ in length")
		}
	}
	opts.applyDefaults()

	p := jointProbabilities(x, opts.Perplexity)

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	y := make([][]float64, n)
	step := make([][]float64, n)
	gains := make([][]float64, n)
	for i := range y {
		y[i] = []float64{rng.NormFloat64() * 1e-4, rng.NormFloat64() * 1e-4}
		step[i] = make([]float64, 2)
		gains[i] = []float64{1, 1}
	}

	num := make([][]float64, n)
	for i := range num {
		num[i] = make([]float64, n)
	}
	grad := make([]float64, 2)
	for iter := 0; iter < opts.Iterations; iter++ {
		exaggeration, momentum := 1.0, 0.8
		if iter < opts.ExaggerationIters {
			exaggeration, momentum = opts.EarlyExaggeration, 0.5
		}

		// Student-t affinities in the embedding.
		sum := 0.0
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dx, dy := y[i][0]-y[j][0], y[i][1]-y[j][1]
				v := 1 / (1 + dx*dx + dy*dy)
				num[i][j], num[j][i] = v, v
				sum += 2 * v
			}
		}

		for i := 0; i < n; i++ {
			grad[0], grad[1] = 0, 0
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				q := math.Max(num[i][j]/sum, minProbability)
				coef := 4 * (exaggeration*p[i][j] - q) * num[i][j]
				grad[0] += coef * (y[i][0] - y[j][0])
				grad[1] += coef * (y[i][1] - y[j][1])
			}
			for d := 0; d < 2; d++ {
				if (grad[d] > 0) != (step[i][d] > 0) {
					gains[i][d] += 0.2
				} else {
					gains[i][d] *= 0.8
				}
				gains[i][d] = math.Max(gains[i][d], minGain)
				step[i][d] = momentum*step[i][d] - opts.LearningRate*gains[i][d]*grad[d]
			}
		}
		for i := range y {
			floats.Add(y[i], step[i])
		}
		center(y)
	}
	return y, nil
}

// jointProbabilities returns the symmetric input affinities P.
func jointProbabilities(x [][]float64, perplexity float64) [][]float64 {
	n := len(x)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := floats.Distance(x[i], x[j], 2)
			dist[i][j], dist[j][i] = d*d, d*d
		}
	}

	cond := make([][]float64, n)
	target := math.Log(perplexity)
	for i := 0; i < n; i++ {
		cond[i] = conditionalRow(dist[i], i, target)
	}

	p := make([][]float64, n)
	for i := range p {
		p[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			p[i][j] = math.Max((cond[i][j]+cond[j][i])/(2*float64(n)), minProbability)
		}
	}
	return p
}

// conditionalRow binary-searches the Gaussian precision for row i so that
// the entropy of P(.|i) matches target (the log of the perplexity).
func conditionalRow(dist []float64, i int, target float64) []float64 {
	row := make([]float64, len(dist))
	beta, lo, hi := 1.0, math.Inf(-1), math.Inf(1)
	for step := 0; step < maxBetaSteps; step++ {
		h := entropy(dist, i, beta, row)
		diff := h - target
		if math.Abs(diff) < entropyTol {
			break
		}
		if diff > 0 {
			lo = beta
			if math.IsInf(hi, 1) {
				beta *= 2
			} else {
				beta = (beta + hi) / 2
			}
		} else {
			hi = beta
			if math.IsInf(lo, -1) {
				beta /= 2
			} else {
				beta = (beta + lo) / 2
			}
		}
	}
	return row
}

// entropy fills row with the normalized Gaussian affinities for beta and
// returns their Shannon entropy.
func entropy(dist []float64, i int, beta float64, row []float64) float64 {
	// shift by the smallest distance so exp never underflows to all zeros
	minDist := math.Inf(1)
	for j, d := range dist {
		if j != i && d < minDist {
			minDist = d
		}
	}
	sum, weighted := 0.0, 0.0
	for j, d := range dist {
		if j == i {
			row[j] = 0
			continue
		}
		row[j] = math.Exp(-(d - minDist) * beta)
		sum += row[j]
		weighted += (d - minDist) * row[j]
	}
	if sum == 0 {
		return 0
	}
	floats.Scale(1/sum, row)
	return math.Log(sum) + beta*weighted/sum
}

func center(y [][]float64) {
	mean := make([]float64, 2)
	for _, p := range y {
		floats.Add(mean, p)
	}
	floats.Scale(1/float64(len(y)), mean)
	for _, p := range y {
		floats.Sub(p, mean)
	}
}
