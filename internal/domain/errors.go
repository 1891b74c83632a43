package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCorpusNotFound     = errors.New("corpus file not found")
	ErrModelNotFound      = errors.New("model file not found")
	ErrNoCorpusSources    = errors.New("no corpus source could be downloaded")
	ErrEmptyVocabulary    = errors.New("no token reaches the minimum frequency")
	ErrVocabularyMiss     = errors.New("token not in vocabulary")
	ErrEmptyQuery         = errors.New("no valid words found in query")
	ErrMalformedQuery     = errors.New("malformed query")
	ErrInsufficientTokens = errors.New("need at least 2 valid words to plot")
	ErrDimensionMismatch  = errors.New("vector dimension mismatch")
)

// VocabularyMissError names the first query token absent from the model.
type VocabularyMissError struct {
	Token string
}

func (e *VocabularyMissError) Error() string {
	return fmt.Sprintf("word %q not in vocabulary", e.Token)
}

func (e *VocabularyMissError) Unwrap() error {
	return ErrVocabularyMiss
}
