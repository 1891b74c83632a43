package corpus

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"wordvec/internal/domain"
)

// Streamer yields cleaned sentences from a corpus file. It holds only the
// path, so every pass re-opens the file and nothing is buffered between passes.
type Streamer struct {
	path string
}

func NewStreamer(path string) *Streamer { return &Streamer{path: path} }

// Path returns the corpus file the streamer reads.
func (s *Streamer) Path() string { return s.path }

// Open starts a fresh pass over the corpus.
func (s *Streamer) Open() (*Sentences, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrCorpusNotFound, s.path)
		}
		return nil, err
	}
	return &Sentences{f: f, r: bufio.NewReader(f)}, nil
}

// Each runs fn for every sentence of one full pass.
func (s *Streamer) Each(ctx context.Context, fn func(tokens []string) error) error {
	it, err := s.Open()
	if err != nil {
		return err
	}
	defer func() { _ = it.Close() }()
	for it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(it.Tokens()); err != nil {
			return err
		}
	}
	return it.Err()
}

// Sentences iterates over one pass of a corpus file.
type Sentences struct {
	f      *os.File
	r      *bufio.Reader
	tokens []string
	err    error
	done   bool
}

// Next advances to the next line with at least two tokens.
func (it *Sentences) Next() bool {
	for !it.done {
		line, err := it.r.ReadString('\n')
		if err != nil {
			it.done = true
			if !errors.Is(err, io.EOF) {
				it.err = err
				return false
			}
			if line == "" {
				return false
			}
		}
		if tokens := Tokenize(line); len(tokens) > 1 {
			it.tokens = tokens
			return true
		}
	}
	return false
}

// Tokens returns the current sentence.
func (it *Sentences) Tokens() []string { return it.tokens }

func (it *Sentences) Err() error { return it.err }

func (it *Sentences) Close() error { return it.f.Close() }

// Tokenize lower-cases a line, deletes everything that is not an ASCII
// letter or whitespace and splits the rest on whitespace.
func Tokenize(line string) []string {
	clean := strings.Map(func(r rune) rune {
		r = unicode.ToLower(r)
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, line)
	return strings.Fields(clean)
}
