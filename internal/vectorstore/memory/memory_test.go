package memory

import (
	"errors"
	"testing"

	"wordvec/internal/domain"
)

func TestStorageSearch(t *testing.T) {
	s := NewStorage()
	if err := s.Init(2); err != nil {
		t.Fatalf("init: %v", err)
	}
	err := s.Upsert(
		[]string{"east", "north", "west", "northeast"},
		[][]float64{{1, 0}, {0, 2}, {-3, 0}, {1, 1}},
	)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.Search([]float64{5, 0}, 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	want := []string{"east", "northeast", "north"}
	if len(got) != len(want) {
		t.Fatalf("got %d results want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Token != want[i] {
			t.Errorf("result %d: got %q want %q", i, got[i].Token, want[i])
		}
	}
	if got[0].Score < 0.999 {
		t.Errorf("expected cosine 1 for identical direction, got %f", got[0].Score)
	}
}

func TestStorageUpsertReplaces(t *testing.T) {
	s := NewStorage()
	_ = s.Init(2)
	_ = s.Upsert([]string{"a"}, [][]float64{{1, 0}})
	_ = s.Upsert([]string{"a"}, [][]float64{{0, 1}})
	if s.Len() != 1 {
		t.Fatalf("got %d tokens want 1", s.Len())
	}
	res, _ := s.Search([]float64{0, 1}, 1)
	if res[0].Score < 0.999 {
		t.Errorf("vector was not replaced, score %f", res[0].Score)
	}
}

func TestStorageDimensionMismatch(t *testing.T) {
	s := NewStorage()
	_ = s.Init(3)
	if err := s.Upsert([]string{"a"}, [][]float64{{1, 0}}); !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Errorf("upsert: got %v want ErrDimensionMismatch", err)
	}
	if _, err := s.Search([]float64{1}, 1); !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Errorf("search: got %v want ErrDimensionMismatch", err)
	}
}
