// Package session executes interactive commands and drives the line REPL.
package session

import (
	"errors"
	"fmt"
	"strings"

	"wordvec/internal/domain"
	"wordvec/internal/query"
)

const (
	Prompt  = ">>> "
	Goodbye = "Goodbye!"

	Help = `Commands:
  word          -> Nearest neighbors (e.g., 'king')
  a - b + c     -> Analogy (e.g., 'paris - france + italy')
  plot: a,b,c   -> Save t-SNE plot
  exit          -> Quit`
)

// Querier is the session-facing subset of the word service.
type Querier interface {
	MostSimilar(positive, negative []string, k int) ([]domain.Neighbor, error)
	Plot(words []string) (string, error)
}

// Response is the printable outcome of one command.
type Response struct {
	Text string
	Exit bool
}

// Session turns input lines into responses. Errors never end a session;
// they are rendered into the response text.
type Session struct {
	words Querier
	topK  int
}

func New(words Querier, topK int) *Session {
	if topK <= 0 {
		topK = 5
	}
	return &Session{words: words, topK: topK}
}

// Handle executes one line.
func (s *Session) Handle(line string) Response {
	cmd, err := query.Parse(line)
	if err != nil {
		return Response{Text: FormatError(err)}
	}
	switch cmd.Kind {
	case query.KindNone:
		return Response{}
	case query.KindExit:
		return Response{Text: Goodbye, Exit: true}
	case query.KindPlot:
		path, err := s.words.Plot(cmd.Words)
		if err != nil {
			return Response{Text: FormatError(err)}
		}
		return Response{Text: fmt.Sprintf("Plot saved to '%s'", path)}
	default:
		return s.lookup(cmd.Query)
	}
}

func (s *Session) lookup(q domain.Query) Response {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n", query.Describe(q))
	res, err := s.words.MostSimilar(q.Positive, q.Negative, s.topK)
	if err != nil {
		b.WriteString(FormatError(err))
		return Response{Text: b.String()}
	}
	b.WriteString("\nResults:")
	for _, n := range res {
		fmt.Fprintf(&b, "\n  %-15s (%.3f)", n.Token, n.Score)
	}
	return Response{Text: b.String()}
}

// FormatError renders a command failure for the user.
func FormatError(err error) string {
	var miss *domain.VocabularyMissError
	switch {
	case errors.As(err, &miss):
		return fmt.Sprintf("Error: Word '%s' not found in vocabulary.", miss.Token)
	case errors.Is(err, domain.ErrEmptyQuery):
		return "Error: No valid words found in query."
	case errors.Is(err, domain.ErrInsufficientTokens):
		return "Error: Need at least 2 valid words to plot."
	case errors.Is(err, domain.ErrMalformedQuery):
		return "Error: Malformed query. Put exactly one word between + and - operators."
	default:
		return "Error: " + err.Error()
	}
}
