package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Trainer.VectorSize != 100 || cfg.Trainer.Window != 5 || cfg.Trainer.MinCount != 5 || cfg.Trainer.Epochs != 10 {
		t.Errorf("unexpected trainer defaults: %+v", cfg.Trainer)
	}
	if cfg.Session.TopK != 5 || cfg.Showcase.Analogy.TopK != 3 || cfg.Showcase.SimilarTopK != 5 {
		t.Errorf("unexpected top-k defaults: session=%d analogy=%d similar=%d",
			cfg.Session.TopK, cfg.Showcase.Analogy.TopK, cfg.Showcase.SimilarTopK)
	}
	if len(cfg.Corpus.Sources) != len(DefaultSources) {
		t.Errorf("got %d sources want %d", len(cfg.Corpus.Sources), len(DefaultSources))
	}
	if cfg.Session.PlotPath != "word_plot.png" {
		t.Errorf("got plot path %q", cfg.Session.PlotPath)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("WORDVEC_MODEL", "/tmp/model.txt")
	path := writeConfig(t, `
trainer:
  model_path: ${WORDVEC_MODEL}
corpus:
  path: ${WORDVEC_CORPUS:-data/corpus.txt}
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Trainer.ModelPath != "/tmp/model.txt" {
		t.Errorf("got model path %q want %q", cfg.Trainer.ModelPath, "/tmp/model.txt")
	}
	if cfg.Corpus.Path != "data/corpus.txt" {
		t.Errorf("got corpus path %q want %q", cfg.Corpus.Path, "data/corpus.txt")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "min count below library floor", body: "trainer:\n  min_count: 2\n", wantErr: "trainer.min_count"},
		{name: "unknown store", body: "vector_store:\n  type: redis\n", wantErr: "vector_store.type"},
		{name: "qdrant without section", body: "vector_store:\n  type: qdrant\n", wantErr: "vector_store.qdrant"},
		{name: "bad ui", body: "session:\n  ui: web\n", wantErr: "session.ui"},
		{name: "negative workers", body: "trainer:\n  workers: -1\n", wantErr: "trainer.workers"},
		{name: "sqlite gets default path", body: "vector_store:\n  type: sqlite\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.body))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if cfg.VectorStore.SQLite == nil || cfg.VectorStore.SQLite.Path == "" {
					t.Errorf("expected default sqlite path")
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("got error %v want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Trainer.Epochs = 3
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Trainer.Epochs != 3 {
		t.Errorf("got epochs %d want 3", loaded.Trainer.Epochs)
	}
}

func TestEffectiveWorkers(t *testing.T) {
	if got := (TrainerConfig{Workers: 3}).EffectiveWorkers(); got != 3 {
		t.Errorf("got %d want 3", got)
	}
	if got := (TrainerConfig{}).EffectiveWorkers(); got < 1 {
		t.Errorf("got %d want at least 1", got)
	}
}
