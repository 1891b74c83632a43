package trainer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"wordvec/internal/config"
	"wordvec/internal/domain"
	"wordvec/internal/logger"
)

type fakeTrainer struct {
	params    domain.TrainParams
	sentences [][]string
	savedTo   string
	stateTo   string
	trainErr  error
}

func (f *fakeTrainer) Name() string { return "fake" }

func (f *fakeTrainer) Train(ctx context.Context, src domain.SentenceSource, params domain.TrainParams, obs domain.EpochObserver) error {
	f.params = params
	if f.trainErr != nil {
		return f.trainErr
	}
	err := src.Each(ctx, func(tokens []string) error {
		f.sentences = append(f.sentences, tokens)
		return nil
	})
	if err != nil {
		return err
	}
	for e := 1; e <= params.Epochs; e++ {
		obs.EpochStarted(e)
		obs.EpochFinished(e, float64(10-e))
	}
	return nil
}

func (f *fakeTrainer) Save(path string) error {
	f.savedTo = path
	return os.WriteFile(path, []byte("1 1\nx 1\n"), 0o644)
}

func (f *fakeTrainer) SaveState(path string) error {
	f.stateTo = path
	return nil
}

func trainerConfig(dir string) config.TrainerConfig {
	return config.TrainerConfig{
		ModelPath:  filepath.Join(dir, "model.txt"),
		VectorSize: 100,
		Window:     5,
		MinCount:   5,
		Epochs:     2,
		Workers:    3,
	}
}

func TestServiceRun(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "corpus.txt")
	if err := os.WriteFile(corpusPath, []byte("The king rules.\nok\nA queen reigns\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	core, logs := observer.New(zap.InfoLevel)
	cfg := trainerConfig(dir)
	cfg.StatePath = filepath.Join(dir, "state.gob")
	tr := &fakeTrainer{}

	if err := NewService(cfg, corpusPath, tr, nil).Run(logger.Into(context.Background(), zap.New(core))); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := domain.TrainParams{VectorSize: 100, Window: 5, MinCount: 5, Epochs: 2, Workers: 3}
	if tr.params != want {
		t.Errorf("got params %+v want %+v", tr.params, want)
	}
	wantSentences := [][]string{{"the", "king", "rules"}, {"a", "queen", "reigns"}}
	if !reflect.DeepEqual(tr.sentences, wantSentences) {
		t.Errorf("got sentences %q want %q", tr.sentences, wantSentences)
	}
	if tr.savedTo != cfg.ModelPath || tr.stateTo != cfg.StatePath {
		t.Errorf("saved to %q / %q", tr.savedTo, tr.stateTo)
	}
	if n := logs.FilterMessage("epoch finished").Len(); n != 2 {
		t.Errorf("got %d epoch logs want 2", n)
	}
	for _, e := range logs.All() {
		if e.LoggerName != "train" {
			t.Errorf("entry %q logged by %q want train", e.Message, e.LoggerName)
		}
	}
}

func TestServiceMissingCorpus(t *testing.T) {
	dir := t.TempDir()
	tr := &fakeTrainer{}
	err := NewService(trainerConfig(dir), filepath.Join(dir, "absent.txt"), tr, nil).Run(context.Background())
	if !errors.Is(err, domain.ErrCorpusNotFound) {
		t.Fatalf("got %v want ErrCorpusNotFound", err)
	}
	if tr.savedTo != "" {
		t.Error("model saved without a corpus")
	}
}

func TestServiceTrainFailure(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "corpus.txt")
	_ = os.WriteFile(corpusPath, []byte("a b\n"), 0o644)
	boom := errors.New("boom")
	tr := &fakeTrainer{trainErr: boom}
	err := NewService(trainerConfig(dir), corpusPath, tr, nil).Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("got %v want boom", err)
	}
	if tr.savedTo != "" {
		t.Error("model saved after a failed training")
	}
}
