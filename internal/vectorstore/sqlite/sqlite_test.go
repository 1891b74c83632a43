package sqlite

import (
	"math"
	"path/filepath"
	"testing"
)

func newTestStorage(t *testing.T) (*Storage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vectors.db")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestEncodeDecodeVector(t *testing.T) {
	in := []float64{0.5, -1.25, 3}
	out, err := decodeVector(encodeVector(in))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i := range in {
		if math.Abs(in[i]-out[i]) > 1e-6 {
			t.Errorf("component %d: got %f want %f", i, out[i], in[i])
		}
	}
	if _, err := decodeVector([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for truncated blob")
	}
}

func TestStorageSearchAndVector(t *testing.T) {
	s, _ := newTestStorage(t)
	if err := s.Init(2); err != nil {
		t.Fatalf("Init: %v", err)
	}
	err := s.Upsert(
		[]string{"east", "north", "west"},
		[][]float64{{1, 0}, {0, 1}, {-1, 0}},
	)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	res, err := s.Search([]float64{0.9, 0.1}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 2 || res[0].Token != "east" || res[1].Token != "north" {
		t.Fatalf("unexpected ranking: %+v", res)
	}

	vec, ok, err := s.Vector("west")
	if err != nil || !ok {
		t.Fatalf("Vector: ok=%v err=%v", ok, err)
	}
	if vec[0] != -1 || vec[1] != 0 {
		t.Errorf("got %v want [-1 0]", vec)
	}
	if _, ok, _ := s.Vector("south"); ok {
		t.Error("expected miss for unknown token")
	}
}

func TestStorageReopenKeepsDimension(t *testing.T) {
	s, path := newTestStorage(t)
	if err := s.Init(3); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := s.Upsert([]string{"a"}, [][]float64{{1, 2, 3}}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	_ = s.Close()

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	if reopened.Dimension() != 3 {
		t.Errorf("got dimension %d want 3", reopened.Dimension())
	}
	n, err := reopened.Count()
	if err != nil || n != 1 {
		t.Errorf("got count %d (err %v) want 1", n, err)
	}
}
