// Package metrics holds the Prometheus collectors shared by the binaries.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "wordvec"

// Metrics groups every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	sourcesTotal  *prometheus.CounterVec
	downloadBytes prometheus.Counter
	corpusBytes   prometheus.Gauge

	epochsTotal   prometheus.Counter
	epochLoss     prometheus.Gauge
	epochDuration prometheus.Histogram
	vocabSize     prometheus.Gauge

	queriesTotal *prometheus.CounterVec
	exportedRows prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sourcesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "corpus_sources_total",
			Help:      "Corpus sources processed, by outcome",
		}, []string{"outcome"}),

		downloadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "corpus_download_bytes_total",
			Help:      "Bytes downloaded from corpus sources",
		}),

		corpusBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_size_bytes",
			Help:      "Size of the written corpus file",
		}),

		epochsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "train_epochs_total",
			Help:      "Completed training epochs",
		}),

		epochLoss: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "train_epoch_loss",
			Help:      "Loss reported at the end of the last epoch",
		}),

		epochDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "train_epoch_duration_seconds",
			Help:      "Wall time per training epoch",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),

		vocabSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vocabulary_size",
			Help:      "Number of tokens in the model vocabulary",
		}),

		queriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Queries executed, by kind and outcome",
		}, []string{"kind", "outcome"}),

		exportedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_rows_total",
			Help:      "Token vectors written by the exporter",
		}),
	}

	reg.MustRegister(
		m.sourcesTotal, m.downloadBytes, m.corpusBytes,
		m.epochsTotal, m.epochLoss, m.epochDuration, m.vocabSize,
		m.queriesTotal, m.exportedRows,
	)
	return m
}

func (m *Metrics) SourceDone(outcome string, bytes int) {
	if m == nil {
		return
	}
	m.sourcesTotal.WithLabelValues(outcome).Inc()
	m.downloadBytes.Add(float64(bytes))
}

func (m *Metrics) CorpusWritten(bytes int64) {
	if m == nil {
		return
	}
	m.corpusBytes.Set(float64(bytes))
}

func (m *Metrics) EpochFinished(loss float64, took time.Duration) {
	if m == nil {
		return
	}
	m.epochsTotal.Inc()
	m.epochLoss.Set(loss)
	m.epochDuration.Observe(took.Seconds())
}

func (m *Metrics) VocabularySize(n int) {
	if m == nil {
		return
	}
	m.vocabSize.Set(float64(n))
}

func (m *Metrics) Query(kind string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.queriesTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) RowsExported(n int) {
	if m == nil {
		return
	}
	m.exportedRows.Add(float64(n))
}

// Serve starts an HTTP server exposing reg on /metrics. It returns nil when
// addr is empty.
func Serve(addr string, reg prometheus.Gatherer, log *zap.Logger) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("metrics server started", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server error", zap.Error(err))
		}
	}()

	return srv
}
