// Package query parses interactive command lines.
package query

import (
	"fmt"
	"strings"

	"wordvec/internal/domain"
)

// Kind classifies a parsed line.
type Kind int

const (
	KindNone Kind = iota
	KindExit
	KindPlot
	KindLookup
)

const plotPrefix = "plot:"

var exitWords = map[string]struct{}{"exit": {}, "quit": {}, "q": {}}

// Command is the result of parsing one input line.
type Command struct {
	Kind  Kind
	Words []string
	Query domain.Query
}

// Parse classifies a line as an empty no-op, an exit request, a plot
// request or a lookup expression. Only lookup expressions can fail.
func Parse(line string) (Command, error) {
	line = strings.ToLower(strings.TrimSpace(line))
	switch {
	case line == "":
		return Command{Kind: KindNone}, nil
	case isExit(line):
		return Command{Kind: KindExit}, nil
	case strings.HasPrefix(line, plotPrefix):
		return Command{Kind: KindPlot, Words: splitPlotWords(line[len(plotPrefix):])}, nil
	}
	q, err := ParseExpression(line)
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: KindLookup, Query: q}, nil
}

func isExit(line string) bool {
	_, ok := exitWords[line]
	return ok
}

func splitPlotWords(raw string) []string {
	var words []string
	for _, w := range strings.Split(raw, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// Normalize puts spaces around every + and - so that "king-man+woman"
// tokenizes like "king - man + woman".
func Normalize(expr string) string {
	expr = strings.ReplaceAll(expr, "+", " + ")
	return strings.ReplaceAll(expr, "-", " - ")
}

// ParseExpression splits a flat +/- expression into positive and negative
// words. A word takes the sign of the operator right before it; the
// leading word is positive. Two operators in a row or a trailing operator
// are rejected.
func ParseExpression(expr string) (domain.Query, error) {
	tokens := strings.Fields(Normalize(expr))
	var (
		q       domain.Query
		sign    = 1
		pending string
		repeat  error
	)
	for _, tok := range tokens {
		switch tok {
		case "+", "-":
			if pending != "" && repeat == nil {
				repeat = fmt.Errorf("%w: operator %q follows %q", domain.ErrMalformedQuery, tok, pending)
			}
			pending = tok
			sign = 1
			if tok == "-" {
				sign = -1
			}
		default:
			pending = ""
			if sign > 0 {
				q.Positive = append(q.Positive, tok)
			} else {
				q.Negative = append(q.Negative, tok)
			}
		}
	}
	// a line without words is empty even when its operators are also malformed
	if len(q.Positive) == 0 && len(q.Negative) == 0 {
		return domain.Query{}, domain.ErrEmptyQuery
	}
	if repeat != nil {
		return domain.Query{}, repeat
	}
	if pending != "" {
		return domain.Query{}, fmt.Errorf("%w: dangling operator %q", domain.ErrMalformedQuery, pending)
	}
	return q, nil
}

// Format renders q as an expression that parses back to the same lists:
// positive words first, then negative words.
func Format(q domain.Query) string {
	var b strings.Builder
	for i, w := range q.Positive {
		if i > 0 {
			b.WriteString(" + ")
		}
		b.WriteString(w)
	}
	for i, w := range q.Negative {
		if i > 0 || len(q.Positive) > 0 {
			b.WriteString(" ")
		}
		b.WriteString("- ")
		b.WriteString(w)
	}
	return b.String()
}

// Describe renders q as "+(a, b) -(c)".
func Describe(q domain.Query) string {
	var parts []string
	if len(q.Positive) > 0 {
		parts = append(parts, "+("+strings.Join(q.Positive, ", ")+")")
	}
	if len(q.Negative) > 0 {
		parts = append(parts, "-("+strings.Join(q.Negative, ", ")+")")
	}
	return strings.Join(parts, " ")
}
