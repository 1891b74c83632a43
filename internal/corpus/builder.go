package corpus

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-shiori/go-readability"
	"go.uber.org/zap"

	"wordvec/internal/domain"
	"wordvec/internal/logger"
	"wordvec/internal/metrics"
)

const (
	gutenbergStart = "*** START OF"
	gutenbergEnd   = "*** END OF"
)

// Builder downloads the configured sources into a single corpus file.
type Builder struct {
	path      string
	sources   []string
	client    *http.Client
	userAgent string
	metrics   *metrics.Metrics
}

// Option configures a Builder.
type Option func(*Builder)

// WithTimeout bounds each request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(b *Builder) { b.client.Timeout = d }
}

func WithHTTPClient(c *http.Client) Option {
	return func(b *Builder) { b.client = c }
}

func WithUserAgent(ua string) Option {
	return func(b *Builder) { b.userAgent = ua }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Builder) { b.metrics = m }
}

func NewBuilder(path string, sources []string, opts ...Option) *Builder {
	b := &Builder{
		path:    path,
		sources: sources,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build writes the corpus unless the output file already exists. Sources
// are fetched one after another; a failing source is logged and skipped.
// Logging goes to the logger carried by ctx.
func (b *Builder) Build(ctx context.Context) error {
	ctx, log := logger.Stage(ctx, "corpus", zap.String("path", b.path))
	if _, err := os.Stat(b.path); err == nil {
		log.Info("using existing corpus")
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat corpus: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("create corpus dir: %w", err)
	}
	tmp := b.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create corpus: %w", err)
	}
	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(tmp)
	}

	w := bufio.NewWriter(f)
	written := 0
	for _, src := range b.sources {
		log.Info("fetching source", zap.String("url", src))
		text, err := b.fetch(ctx, src)
		if err != nil {
			if ctx.Err() != nil {
				cleanup()
				return ctx.Err()
			}
			log.Warn("failed to download source", zap.String("url", src), zap.Error(err))
			b.metrics.SourceDone("failed", 0)
			continue
		}
		b.metrics.SourceDone("ok", len(text))
		text = StripGutenberg(text)
		if _, err := w.WriteString(text); err != nil {
			cleanup()
			return fmt.Errorf("write corpus: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			cleanup()
			return fmt.Errorf("write corpus: %w", err)
		}
		written++
	}

	if written == 0 {
		cleanup()
		return domain.ErrNoCorpusSources
	}
	if err := w.Flush(); err != nil {
		cleanup()
		return fmt.Errorf("flush corpus: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close corpus: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename corpus: %w", err)
	}

	size := int64(0)
	if st, err := os.Stat(b.path); err == nil {
		size = st.Size()
	}
	b.metrics.CorpusWritten(size)
	log.Info("saved corpus",
		zap.Int("sources", written),
		zap.Int("failed", len(b.sources)-written),
		zap.String("size", humanize.Bytes(uint64(size))),
	)
	return nil
}

func (b *Builder) fetch(ctx context.Context, rawURL string) (string, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	if b.userAgent != "" {
		req.Header.Set("User-Agent", b.userAgent)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	if isHTML(resp.Header.Get("Content-Type")) {
		article, err := readability.FromReader(resp.Body, pageURL)
		if err != nil {
			return "", fmt.Errorf("extract article: %w", err)
		}
		return article.TextContent, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return strings.ToValidUTF8(string(data), "\uFFFD"), nil
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// StripGutenberg keeps the text between the Project Gutenberg START and END
// markers. Text without both markers in that order is returned unchanged.
func StripGutenberg(text string) string {
	start := strings.Index(text, gutenbergStart)
	end := strings.Index(text, gutenbergEnd)
	if start >= 0 && end > start {
		return text[start:end]
	}
	return text
}
