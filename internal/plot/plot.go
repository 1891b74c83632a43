// Package plot builds and renders labelled 2D scatter plots of words.
package plot

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"wordvec/internal/domain"
)

// NeighborFunc returns the k nearest neighbors of a word, excluding the word.
type NeighborFunc func(word string, k int) ([]domain.Neighbor, error)

// Expand returns seeds followed by the k nearest neighbors of every
// in-vocabulary seed, without duplicates and without out-of-vocabulary
// words. Neighbor lookup errors only skip the widening for that seed.
func Expand(vocab domain.Vocabulary, neighbors NeighborFunc, seeds []string, k int) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(w string) {
		if _, dup := seen[w]; dup {
			return
		}
		if _, ok := vocab.Vector(w); !ok {
			return
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	for _, s := range seeds {
		add(s)
	}
	for _, s := range seeds {
		if _, ok := vocab.Vector(s); !ok {
			continue
		}
		similar, err := neighbors(s, k)
		if err != nil {
			continue
		}
		for _, n := range similar {
			add(n.Token)
		}
	}
	return out
}

// Title names the plot after the first three seeds.
func Title(seeds []string) string {
	if len(seeds) > 3 {
		seeds = seeds[:3]
	}
	return fmt.Sprintf("Word Embeddings: %s...", strings.Join(seeds, ", "))
}

// Save renders labels at points (one [x, y] pair each) to a 12x8 inch
// image at path. The format follows the file extension.
func Save(path, title string, labels []string, points [][]float64) error {
	if len(labels) != len(points) {
		return fmt.Errorf("plot: %d labels for %d points", len(labels), len(points))
	}
	xys := make(plotter.XYs, len(points))
	for i, p := range points {
		xys[i].X, xys[i].Y = p[0], p[1]
	}

	p := gplot.New()
	p.Title.Text = title
	p.X.Label.Text = "t-SNE Dimension 1"
	p.Y.Label.Text = "t-SNE Dimension 2"
	p.Add(plotter.NewGrid())

	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Color = color.RGBA{R: 220, G: 40, B: 40, A: 255}
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(4)

	names, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return err
	}
	names.Offset = vg.Point{X: vg.Points(5), Y: vg.Points(2)}

	p.Add(scatter, names)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return p.Save(12*vg.Inch, 8*vg.Inch, path)
}
