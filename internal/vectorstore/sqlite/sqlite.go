package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"

	"wordvec/internal/domain"
	"wordvec/internal/vectorstore"
)

// Storage keeps token vectors in a SQLite database and answers searches by
// brute-force cosine similarity over the decoded rows.
type Storage struct {
	db        *sql.DB
	dimension int
}

// New opens (or creates) the database at path.
func New(path string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s := &Storage{db: db}
	if err := s.initTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to init tables: %w", err)
	}
	if err := s.loadDimension(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) initTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS embeddings (
			token TEXT PRIMARY KEY,
			vector BLOB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) loadDimension() error {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'dimension'`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read dimension: %w", err)
	}
	dim, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid stored dimension %q: %w", raw, err)
	}
	s.dimension = dim
	return nil
}

// Init records the vector dimension. Re-initializing with a different
// dimension drops the stored vectors.
func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	if s.dimension != 0 && s.dimension != dimension {
		if err := s.Clear(); err != nil {
			return err
		}
	}
	_, err := s.db.Exec(
		`INSERT INTO meta (key, value) VALUES ('dimension', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		strconv.Itoa(dimension),
	)
	if err != nil {
		return fmt.Errorf("failed to store dimension: %w", err)
	}
	s.dimension = dimension
	return nil
}

// Dimension returns the stored vector dimension, zero before Init.
func (s *Storage) Dimension() int { return s.dimension }

func (s *Storage) Upsert(tokens []string, vectors [][]float64) error {
	if len(tokens) != len(vectors) {
		return errors.New("tokens and vectors length mismatch")
	}
	for _, v := range vectors {
		if len(v) != s.dimension {
			return domain.ErrDimensionMismatch
		}
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(
		`INSERT INTO embeddings (token, vector) VALUES (?, ?)
		 ON CONFLICT(token) DO UPDATE SET vector = excluded.vector`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, tok := range tokens {
		if _, err := stmt.Exec(tok, encodeVector(vectors[i])); err != nil {
			return fmt.Errorf("failed to upsert %q: %w", tok, err)
		}
	}
	return tx.Commit()
}

func (s *Storage) Search(vector []float64, topK int) ([]domain.Neighbor, error) {
	if len(vector) != s.dimension {
		return nil, domain.ErrDimensionMismatch
	}
	if topK <= 0 {
		topK = 5
	}
	rows, err := s.db.Query(`SELECT token, vector FROM embeddings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	query := vectorstore.Normalize(vector)
	var (
		tokens []string
		scores []float64
	)
	for rows.Next() {
		var (
			tok  string
			blob []byte
		)
		if err := rows.Scan(&tok, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan embedding: %w", err)
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		scores = append(scores, vectorstore.Dot(vectorstore.Normalize(vec), query))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	idxs := vectorstore.ArgsortDesc(scores)
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.Neighbor, 0, topK)
	for _, j := range idxs[:topK] {
		results = append(results, domain.Neighbor{Token: tokens[j], Score: scores[j]})
	}
	return results, nil
}

// Vector returns the stored vector for token.
func (s *Storage) Vector(token string) ([]float64, bool, error) {
	var blob []byte
	err := s.db.QueryRow(`SELECT vector FROM embeddings WHERE token = ?`, token).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	vec, err := decodeVector(blob)
	if err != nil {
		return nil, false, err
	}
	return vec, true, nil
}

// Count returns the number of stored tokens.
func (s *Storage) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM embeddings`).Scan(&n)
	return n, err
}

func (s *Storage) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM embeddings`); err != nil {
		return fmt.Errorf("failed to clear embeddings: %w", err)
	}
	return nil
}
