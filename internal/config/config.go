package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/n0madic/go-glove"
	"gopkg.in/yaml.v3"
)

// CorpusConfig controls where the corpus comes from and where it is written.
type CorpusConfig struct {
	Path        string   `yaml:"path"`
	Sources     []string `yaml:"sources"`
	TimeoutSecs int      `yaml:"timeout_secs"`
	UserAgent   string   `yaml:"user_agent"`
}

// TrainerConfig holds the training hyperparameters and artifact paths.
type TrainerConfig struct {
	Type       string `yaml:"type"`
	ModelPath  string `yaml:"model_path"`
	StatePath  string `yaml:"state_path"`
	VectorSize int    `yaml:"vector_size"`
	Window     int    `yaml:"window"`
	MinCount   int    `yaml:"min_count"`
	Epochs     int    `yaml:"epochs"`
	Workers    int    `yaml:"workers"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	SQLite *SQLiteConfig `yaml:"sqlite,omitempty"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// SQLiteConfig points at a SQLite vector database.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// SessionConfig configures the interactive explorer.
type SessionConfig struct {
	UI            string `yaml:"ui"`
	TopK          int    `yaml:"top_k"`
	PlotPath      string `yaml:"plot_path"`
	PlotNeighbors int    `yaml:"plot_neighbors"`
}

// ShowcaseConfig lists the words exercised by the scripted showcase.
type ShowcaseConfig struct {
	SimilarWords []string   `yaml:"similar_words"`
	SimilarTopK  int        `yaml:"similar_top_k"`
	Analogy      Analogy    `yaml:"analogy"`
	OddOneOut    [][]string `yaml:"odd_one_out"`
}

// Analogy is a positive/negative word combination with an expected answer.
type Analogy struct {
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`
	Expect   string   `yaml:"expect"`
	TopK     int      `yaml:"top_k"`
}

// LoggingConfig selects the zap preset and level.
type LoggingConfig struct {
	Env   string `yaml:"env"`
	Level string `yaml:"level"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// ExportConfig configures the vector export.
type ExportConfig struct {
	BatchSize int `yaml:"batch_size"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Corpus      CorpusConfig      `yaml:"corpus"`
	Trainer     TrainerConfig     `yaml:"trainer"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Session     SessionConfig     `yaml:"session"`
	Showcase    ShowcaseConfig    `yaml:"showcase"`
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Export      ExportConfig      `yaml:"export"`
}

// DefaultSources is the built-in corpus: six Project Gutenberg books and
// the WikiText-2 training split.
var DefaultSources = []string{
	"https://www.gutenberg.org/files/1661/1661-0.txt",
	"https://www.gutenberg.org/files/1342/1342-0.txt",
	"https://www.gutenberg.org/files/84/84-0.txt",
	"https://www.gutenberg.org/files/11/11-0.txt",
	"https://www.gutenberg.org/files/2012/2012-0.txt",
	"https://www.gutenberg.org/cache/epub/1497/pg1497.txt",
	"https://raw.githubusercontent.com/pytorch/examples/master/word_language_model/data/wikitext-2/train.txt",
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(expandEnvVars(data), &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/wordvec/config.yaml.
// If neither exists, it writes defaults to ~/.config/wordvec/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// LoadFlag loads path when it is set and falls back to LoadDefault otherwise.
func LoadFlag(path string) (*AppConfig, error) {
	if path == "" {
		cfg, _, err := LoadDefault()
		return cfg, err
	}
	return Load(path)
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "wordvec", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-valued fields with their default values.
func (c *AppConfig) ApplyDefaults() {
	if c.Corpus.Path == "" {
		c.Corpus.Path = "datasets/corpus_simple.txt"
	}
	if len(c.Corpus.Sources) == 0 {
		c.Corpus.Sources = append([]string(nil), DefaultSources...)
	}
	if c.Corpus.UserAgent == "" {
		c.Corpus.UserAgent = "wordvec-corpus/1.0"
	}

	if c.Trainer.Type == "" {
		c.Trainer.Type = "glove"
	}
	if c.Trainer.ModelPath == "" {
		c.Trainer.ModelPath = "models/glove_simple.txt"
	}
	if c.Trainer.VectorSize == 0 {
		c.Trainer.VectorSize = 100
	}
	if c.Trainer.Window == 0 {
		c.Trainer.Window = 5
	}
	if c.Trainer.MinCount == 0 {
		c.Trainer.MinCount = glove.MIN_COUNT
	}
	if c.Trainer.Epochs == 0 {
		c.Trainer.Epochs = 10
	}

	if c.VectorStore.Type == "" {
		c.VectorStore.Type = "memory"
	}
	if c.VectorStore.Type == "sqlite" && c.VectorStore.SQLite == nil {
		c.VectorStore.SQLite = &SQLiteConfig{}
	}
	if c.VectorStore.SQLite != nil && c.VectorStore.SQLite.Path == "" {
		c.VectorStore.SQLite.Path = "models/vectors.db"
	}
	if q := c.VectorStore.Qdrant; q != nil {
		if q.URL == "" {
			q.URL = "http://localhost:6333"
		}
		if q.Collection == "" {
			q.Collection = "words"
		}
		if q.TimeoutSecs == 0 {
			q.TimeoutSecs = 15
		}
	}

	if c.Session.UI == "" {
		c.Session.UI = "auto"
	}
	if c.Session.TopK == 0 {
		c.Session.TopK = 5
	}
	if c.Session.PlotPath == "" {
		c.Session.PlotPath = "word_plot.png"
	}
	if c.Session.PlotNeighbors == 0 {
		c.Session.PlotNeighbors = 3
	}

	if len(c.Showcase.SimilarWords) == 0 {
		c.Showcase.SimilarWords = []string{"sherlock", "science", "king"}
	}
	if c.Showcase.SimilarTopK == 0 {
		c.Showcase.SimilarTopK = 5
	}
	if len(c.Showcase.Analogy.Positive) == 0 && len(c.Showcase.Analogy.Negative) == 0 {
		c.Showcase.Analogy = Analogy{
			Positive: []string{"king", "woman"},
			Negative: []string{"man"},
			Expect:   "queen",
		}
	}
	if c.Showcase.Analogy.TopK == 0 {
		c.Showcase.Analogy.TopK = 3
	}
	if len(c.Showcase.OddOneOut) == 0 {
		c.Showcase.OddOneOut = [][]string{
			{"apple", "banana", "car", "cherry"},
			{"sherlock", "watson", "holmes", "pizza"},
			{"biology", "physics", "chemistry", "london"},
		}
	}

	if c.Logging.Env == "" {
		c.Logging.Env = "local"
	}
	if c.Export.BatchSize == 0 {
		c.Export.BatchSize = 500
	}
}

// Validate checks the configuration for correctness.
func (c *AppConfig) Validate() error {
	if c.Trainer.VectorSize <= 0 {
		return fmt.Errorf("trainer.vector_size must be positive, got %d", c.Trainer.VectorSize)
	}
	if c.Trainer.Window <= 0 {
		return fmt.Errorf("trainer.window must be positive, got %d", c.Trainer.Window)
	}
	if c.Trainer.MinCount < glove.MIN_COUNT {
		return fmt.Errorf("trainer.min_count must be at least %d, got %d", glove.MIN_COUNT, c.Trainer.MinCount)
	}
	if c.Trainer.Epochs <= 0 {
		return fmt.Errorf("trainer.epochs must be positive, got %d", c.Trainer.Epochs)
	}
	if c.Trainer.Workers < 0 {
		return fmt.Errorf("trainer.workers must not be negative, got %d", c.Trainer.Workers)
	}
	switch c.Trainer.Type {
	case "glove":
	default:
		return fmt.Errorf("trainer.type must be \"glove\", got %q", c.Trainer.Type)
	}
	switch c.VectorStore.Type {
	case "memory", "sqlite":
	case "qdrant":
		if c.VectorStore.Qdrant == nil {
			return fmt.Errorf("vector_store.qdrant is required when vector_store.type is \"qdrant\"")
		}
	default:
		return fmt.Errorf("vector_store.type must be \"memory\", \"sqlite\" or \"qdrant\", got %q", c.VectorStore.Type)
	}
	switch c.Session.UI {
	case "auto", "tui", "line":
	default:
		return fmt.Errorf("session.ui must be \"auto\", \"tui\" or \"line\", got %q", c.Session.UI)
	}
	if c.Session.TopK <= 0 {
		return fmt.Errorf("session.top_k must be positive, got %d", c.Session.TopK)
	}
	if c.Corpus.TimeoutSecs < 0 {
		return fmt.Errorf("corpus.timeout_secs must not be negative, got %d", c.Corpus.TimeoutSecs)
	}
	return nil
}

// EffectiveWorkers resolves a zero worker count to the processor count.
func (t TrainerConfig) EffectiveWorkers() int {
	if t.Workers == 0 {
		return runtime.NumCPU()
	}
	return t.Workers
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
