package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"wordvec/internal/config"
	"wordvec/internal/domain"
	"wordvec/internal/metrics"
	"wordvec/internal/vectorstore/memory"
	"wordvec/internal/vectorstore/sqlite"
)

func testEnv(t *testing.T, modelPath string) *Env {
	t.Helper()
	cfg := &config.AppConfig{}
	cfg.ApplyDefaults()
	cfg.Trainer.ModelPath = modelPath
	reg := prometheus.NewRegistry()
	return &Env{Config: cfg, Log: zap.NewNop(), Registry: reg, Metrics: metrics.New(reg)}
}

func TestOpenStore(t *testing.T) {
	st, closeFn, err := OpenStore(config.VectorStoreConfig{Type: "memory"})
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := st.(*memory.Storage); !ok {
		t.Errorf("got %T want *memory.Storage", st)
	}
	_ = closeFn()

	path := filepath.Join(t.TempDir(), "vectors.db")
	st, closeFn, err = OpenStore(config.VectorStoreConfig{Type: "sqlite", SQLite: &config.SQLiteConfig{Path: path}})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	if _, ok := st.(*sqlite.Storage); !ok {
		t.Errorf("got %T want *sqlite.Storage", st)
	}
	if err := closeFn(); err != nil {
		t.Errorf("close: %v", err)
	}

	if _, _, err := OpenStore(config.VectorStoreConfig{Type: "qdrant"}); err == nil {
		t.Error("qdrant without config should fail")
	}
	if _, _, err := OpenStore(config.VectorStoreConfig{Type: "faiss"}); err == nil {
		t.Error("unknown store should fail")
	}
}

func TestLoadModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.txt")
	body := "3 2\nking 0.500000 1.000000\nqueen 0.400000 1.100000\napple -1.000000 0.000000\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	model, closeFn, err := testEnv(t, path).LoadModel(context.Background())
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	defer func() { _ = closeFn() }()

	vec, ok := model.Vector("king")
	if !ok {
		t.Fatal("king missing")
	}
	res, err := model.Nearest(vec, 2)
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	if len(res) != 2 || res[0].Token != "king" || res[1].Token != "queen" {
		t.Errorf("unexpected neighbors %+v", res)
	}
}

func TestLoadModelMissing(t *testing.T) {
	_, _, err := testEnv(t, filepath.Join(t.TempDir(), "absent.txt")).LoadModel(context.Background())
	if !errors.Is(err, domain.ErrModelNotFound) {
		t.Errorf("got %v want ErrModelNotFound", err)
	}
}
