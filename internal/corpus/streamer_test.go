package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"wordvec/internal/domain"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "The Quick, brown FOX!", want: []string{"the", "quick", "brown", "fox"}},
		{in: "don't stop-me 42 now\r\n", want: []string{"dont", "stopme", "now"}},
		{in: "café\tau lait", want: []string{"caf", "au", "lait"}},
		{in: "   ", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Tokenize(tt.in)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %q want %q", got, tt.want)
			}
		})
	}
}

func writeCorpus(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.txt")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	return path
}

func collect(t *testing.T, s *Streamer) [][]string {
	t.Helper()
	var out [][]string
	err := s.Each(context.Background(), func(tokens []string) error {
		out = append(out, tokens)
		return nil
	})
	if err != nil {
		t.Fatalf("Each: %v", err)
	}
	return out
}

func TestStreamerDropsShortLines(t *testing.T) {
	path := writeCorpus(t, "Call me Ishmael.\nChapter\n\n1234 !!\nIt was the best of times\nlast line without newline")
	got := collect(t, NewStreamer(path))
	want := [][]string{
		{"call", "me", "ishmael"},
		{"it", "was", "the", "best", "of", "times"},
		{"last", "line", "without", "newline"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestStreamerIsRestartable(t *testing.T) {
	path := writeCorpus(t, "one two\nthree four five\n")
	s := NewStreamer(path)
	first := collect(t, s)
	second := collect(t, s)
	if len(first) != 2 || !reflect.DeepEqual(first, second) {
		t.Errorf("passes differ: %q vs %q", first, second)
	}
}

func TestStreamerLongLine(t *testing.T) {
	line := strings.Repeat("word ", 200000)
	got := collect(t, NewStreamer(writeCorpus(t, line+"\n")))
	if len(got) != 1 || len(got[0]) != 200000 {
		t.Fatalf("long line not streamed whole")
	}
}

func TestStreamerMissingFile(t *testing.T) {
	s := NewStreamer(filepath.Join(t.TempDir(), "absent.txt"))
	err := s.Each(context.Background(), func([]string) error { return nil })
	if !errors.Is(err, domain.ErrCorpusNotFound) {
		t.Errorf("got %v want ErrCorpusNotFound", err)
	}
}

func TestStreamerStopsOnCallbackError(t *testing.T) {
	path := writeCorpus(t, "a b\nc d\ne f\n")
	stop := errors.New("stop")
	calls := 0
	err := NewStreamer(path).Each(context.Background(), func([]string) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Errorf("got err=%v calls=%d", err, calls)
	}
}
