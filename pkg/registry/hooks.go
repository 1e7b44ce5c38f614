package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

// Flush outcomes, used as the metric label.
const (
	OutcomeOK    = "ok"
	OutcomeQuota = "quota"
	OutcomeError = "error"
)

var (
	flushTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "board_registry_flushes_total",
		Help: "Registry flushes to the backing medium by outcome.",
	}, []string{"outcome"})

	flushBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "board_registry_flush_bytes",
		Help:    "Size of the flat string written per successful flush.",
		Buckets: prometheus.ExponentialBuckets(256, 4, 8),
	})
)

// FlushResult describes a successful flush.
type FlushResult struct {
	Keys  int
	Bytes int
}

// Hooks receive flush outcomes. Nil fields fall back to logging. Hooks run on
// the flushing goroutine, which for debounced flushes is a timer goroutine.
type Hooks struct {
	// OnFlushed is called after the flat string was written.
	OnFlushed func(FlushResult)

	// OnQuotaExceeded is called when the medium rejected the write for lack
	// of space. The in-memory state is kept; nothing is retried.
	OnQuotaExceeded func(error)

	// OnError is called for any other write failure.
	OnError func(error)
}

func (h Hooks) withDefaults(log logrus.FieldLogger) Hooks {
	if h.OnFlushed == nil {
		h.OnFlushed = func(res FlushResult) {
			log.WithFields(logrus.Fields{"keys": res.Keys, "bytes": res.Bytes}).Debug("flushed registry")
		}
	}
	if h.OnQuotaExceeded == nil {
		h.OnQuotaExceeded = func(err error) {
			log.WithError(err).Warn("registry flush exceeded storage quota")
		}
	}
	if h.OnError == nil {
		h.OnError = func(err error) {
			log.WithError(err).Error("registry flush failed")
		}
	}
	return h
}
