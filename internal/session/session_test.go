package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"wordvec/internal/domain"
)

type fakeWords struct {
	lookups [][]string
	plots   [][]string
}

func (f *fakeWords) MostSimilar(positive, negative []string, k int) ([]domain.Neighbor, error) {
	f.lookups = append(f.lookups, append(append([]string{}, positive...), negative...))
	for _, w := range append(positive, negative...) {
		if w == "zzz" {
			return nil, &domain.VocabularyMissError{Token: w}
		}
	}
	out := []domain.Neighbor{{Token: "queen", Score: 0.8712}, {Token: "princess", Score: 0.5}}
	if k < len(out) {
		out = out[:k]
	}
	return out, nil
}

func (f *fakeWords) Plot(words []string) (string, error) {
	f.plots = append(f.plots, words)
	if len(words) < 2 {
		return "", domain.ErrInsufficientTokens
	}
	return "word_plot.png", nil
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		want     string
		wantExit bool
	}{
		{name: "empty line is a no-op", line: "   ", want: ""},
		{name: "exit", line: "quit", want: Goodbye, wantExit: true},
		{name: "lookup", line: "king - man + woman", want: "Query: +(king, woman) -(man)\n\nResults:\n  queen           (0.871)\n  princess        (0.500)"},
		{name: "vocabulary miss", line: "zzz", want: "Query: +(zzz)\nError: Word 'zzz' not found in vocabulary."},
		{name: "no words", line: "+ -", want: "Error: No valid words found in query."},
		{name: "only repeated operators", line: "+-+", want: "Error: No valid words found in query."},
		{name: "malformed", line: "a - - b", want: "Error: Malformed query."},
		{name: "trailing operator", line: "king +", want: "Error: Malformed query."},
		{name: "plot", line: "plot: king, queen", want: "Plot saved to 'word_plot.png'"},
		{name: "plot too few", line: "plot: king", want: "Error: Need at least 2 valid words to plot."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(&fakeWords{}, 5)
			resp := s.Handle(tt.line)
			if resp.Exit != tt.wantExit {
				t.Errorf("got exit %v want %v", resp.Exit, tt.wantExit)
			}
			if !strings.HasPrefix(resp.Text, tt.want) || (tt.want == "" && resp.Text != "") {
				t.Errorf("got %q want prefix %q", resp.Text, tt.want)
			}
		})
	}
}

func TestRunStopsOnExitCommand(t *testing.T) {
	words := &fakeWords{}
	in := strings.NewReader("\nking\nexit\nqueen\n")
	var out bytes.Buffer

	if err := New(words, 5).Run(context.Background(), in, &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(words.lookups) != 1 {
		t.Errorf("got %d lookups want 1 (input after exit must be ignored)", len(words.lookups))
	}
	if !strings.HasSuffix(out.String(), Goodbye+"\n") {
		t.Errorf("missing goodbye in %q", out.String())
	}
	if n := strings.Count(out.String(), Prompt); n != 3 {
		t.Errorf("got %d prompts want 3", n)
	}
}

func TestRunStopsAtEndOfInput(t *testing.T) {
	var out bytes.Buffer
	if err := New(&fakeWords{}, 5).Run(context.Background(), strings.NewReader("king"), &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "queen") || !strings.HasSuffix(out.String(), Goodbye+"\n") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRunInterrupt(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	var out bytes.Buffer
	go func() { errc <- New(&fakeWords{}, 5).Run(ctx, pr, &out) }()

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("interrupt should not be an error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestRunReadError(t *testing.T) {
	boom := errors.New("disk gone")
	var out bytes.Buffer
	err := New(&fakeWords{}, 5).Run(context.Background(), io.MultiReader(strings.NewReader("king\n"), errReader{boom}), &out)
	if !errors.Is(err, boom) {
		t.Errorf("got %v want %v", err, boom)
	}
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }
