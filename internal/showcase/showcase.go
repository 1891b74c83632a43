// Package showcase runs the scripted similarity, analogy and odd-one-out
// demonstrations against a trained model.
package showcase

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"wordvec/internal/config"
	"wordvec/internal/domain"
)

// Words is the showcase-facing subset of the word service.
type Words interface {
	Similar(word string, k int) ([]domain.Neighbor, error)
	MostSimilar(positive, negative []string, k int) ([]domain.Neighbor, error)
	DoesntMatch(words []string) (string, error)
}

// Runner prints the showcase report. In strict mode the first failed check
// aborts the run and is returned as an error.
type Runner struct {
	words  Words
	cfg    config.ShowcaseConfig
	out    io.Writer
	strict bool
}

func New(words Words, cfg config.ShowcaseConfig, out io.Writer, strict bool) *Runner {
	return &Runner{words: words, cfg: cfg, out: out, strict: strict}
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	doubleRule   = strings.Repeat("=", 50)
	singleRule   = strings.Repeat("-", 50)
)

func (r *Runner) Run() error {
	r.printf("\n%s\n", doubleRule)
	r.printf("   %s\n", titleStyle.Render("🌟 WORD VECTOR AUTOMATED SHOWCASE 🌟"))
	r.printf("%s\n", doubleRule)

	for _, w := range r.cfg.SimilarWords {
		if err := r.similar(w); err != nil {
			return err
		}
	}

	r.printf("\n%s\n", singleRule)
	if err := r.analogy(); err != nil {
		return err
	}

	r.printf("\n%s\n", singleRule)
	r.printf("%s\n", sectionStyle.Render("🧐 Odd One Out Test"))
	for _, words := range r.cfg.OddOneOut {
		if err := r.oddOneOut(words); err != nil {
			return err
		}
	}

	r.printf("\n%s\n", doubleRule)
	r.printf("   Showcase Complete! Run explore to explore more.\n")
	r.printf("%s\n", doubleRule)
	return nil
}

func (r *Runner) similar(word string) error {
	r.printf("\n%s\n", sectionStyle.Render(fmt.Sprintf("🔍 Searching for words similar to: '%s'", word)))
	res, err := r.words.Similar(word, r.cfg.SimilarTopK)
	if err != nil {
		var miss *domain.VocabularyMissError
		if errors.As(err, &miss) {
			r.warn("Word '%s' not in vocabulary.", miss.Token)
		} else {
			r.warn("Search failed: %v", err)
		}
		return r.fail(err)
	}
	for i, n := range res {
		r.printf("   %d. %-15s (Match: %s)\n", i+1, n.Token, Percent(n.Score))
	}
	return nil
}

func (r *Runner) analogy() error {
	a := r.cfg.Analogy
	r.printf("%s\n", sectionStyle.Render(fmt.Sprintf("🧩 Analogy Test: %s = ?", AnalogyLabel(a.Positive, a.Negative))))
	k := a.TopK
	if r.strict {
		k = r.cfg.SimilarTopK
	}
	res, err := r.words.MostSimilar(a.Positive, a.Negative, k)
	if err != nil {
		r.warn("Analogy failed: %v", err)
		return r.fail(err)
	}
	for _, n := range res {
		marker := "✨"
		if a.Expect != "" && strings.Contains(strings.ToLower(n.Token), a.Expect) {
			marker = "✅"
		}
		r.printf("   %s %-15s (Match: %s)\n", marker, n.Token, Percent(n.Score))
	}
	return nil
}

func (r *Runner) oddOneOut(words []string) error {
	odd, err := r.words.DoesntMatch(words)
	if err != nil {
		r.warn("Test failed for %v: %v", words, err)
		return r.fail(err)
	}
	r.printf("   List: %v\n", words)
	r.printf("   👉 The odd one is: '%s'\n", odd)
	return nil
}

func (r *Runner) fail(err error) error {
	if r.strict {
		return err
	}
	return nil
}

func (r *Runner) warn(format string, args ...any) {
	r.printf("   %s\n", warnStyle.Render("⚠️ "+fmt.Sprintf(format, args...)))
}

func (r *Runner) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// Percent formats a cosine score as a percentage with two decimals.
func Percent(score float64) string {
	return fmt.Sprintf("%.2f%%", score*100)
}

// AnalogyLabel renders an analogy as "King - Man + Woman": the first
// positive word, then the negatives, then the remaining positives.
func AnalogyLabel(positive, negative []string) string {
	var b strings.Builder
	for i, w := range positive {
		if i == 1 {
			break
		}
		b.WriteString(title(w))
	}
	for _, w := range negative {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString("- " + title(w))
	}
	for i, w := range positive {
		if i == 0 {
			continue
		}
		b.WriteString(" + " + title(w))
	}
	return b.String()
}

func title(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
