package qdrant

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"wordvec/internal/domain"
)

// Storage is a minimal REST client to Qdrant.
// It assumes cosine distance and creates the collection if missing.
type Storage struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// pointNamespace scopes the name-based point IDs derived from tokens.
var pointNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("wordvec/qdrant"))

func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Storage{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// PointID returns the stable point ID used for token.
func PointID(token string) string {
	return uuid.NewSHA1(pointNamespace, []byte(token)).String()
}

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension
	exists, err := s.collectionExists()
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return s.putJSON(s.collectionURL(""), body)
}

func (s *Storage) Upsert(tokens []string, vectors [][]float64) error {
	if len(tokens) != len(vectors) {
		return errors.New("tokens and vectors length mismatch")
	}
	points := make([]map[string]any, len(tokens))
	for i, tok := range tokens {
		if len(vectors[i]) != s.dimension {
			return domain.ErrDimensionMismatch
		}
		points[i] = map[string]any{
			"id":      PointID(tok),
			"vector":  vectors[i],
			"payload": map[string]any{"token": tok},
		}
	}
	body := map[string]any{"points": points}
	return s.putJSON(s.collectionURL("/points?wait=true"), body)
}

func (s *Storage) Search(vector []float64, topK int) ([]domain.Neighbor, error) {
	if len(vector) != s.dimension {
		return nil, domain.ErrDimensionMismatch
	}
	if topK <= 0 {
		topK = 5
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64 `json:"score"`
			Payload struct {
				Token string `json:"token"`
			} `json:"payload"`
		} `json:"result"`
	}
	if err := s.postJSON(s.collectionURL("/points/search"), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.Neighbor, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, domain.Neighbor{Token: r.Payload.Token, Score: r.Score})
	}
	return results, nil
}

func (s *Storage) collectionExists() (bool, error) {
	req, err := http.NewRequest(http.MethodGet, s.collectionURL(""), nil)
	if err != nil {
		return false, err
	}
	resp, err := s.do(req)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 300:
		return false, fmt.Errorf("qdrant GET collection %s failed: %s", s.collection, resp.Status)
	}
	return true, nil
}

// Clear drops the collection.
func (s *Storage) Clear() error {
	req, err := http.NewRequest(http.MethodDelete, s.collectionURL(""), nil)
	if err != nil {
		return err
	}
	resp, err := s.do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("qdrant DELETE collection %s failed: %s", s.collection, resp.Status)
	}
	return nil
}

func (s *Storage) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", s.url, s.collection, suffix)
}

func (s *Storage) do(req *http.Request) (*http.Response, error) {
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	return s.client.Do(req)
}

func (s *Storage) putJSON(url string, body any) error {
	return s.sendJSON(http.MethodPut, url, body, nil)
}

func (s *Storage) postJSON(url string, body any, out any) error {
	return s.sendJSON(http.MethodPost, url, body, out)
}

func (s *Storage) sendJSON(method, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("qdrant %s %s failed: %s: %s", method, url, resp.Status, bytes.TrimSpace(msg))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
