package sinks

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fundwatch/fundwatch/internal/event"
	"github.com/fundwatch/fundwatch/internal/eventlog"
)

// Metrics exports orchestration progress via Prometheus. It owns all
// collectors for session, batch, and navigation counters.
type Metrics struct {
	sessionsStarted   prometheus.Counter
	sessionsFinished  *prometheus.CounterVec
	batchLoads        *prometheus.CounterVec
	fundsLoaded       prometheus.Counter
	batchDelaySeconds prometheus.Histogram
	navigations       *prometheus.CounterVec
	aboutSessions     *prometheus.CounterVec
}

// NewMetrics registers the collectors against the provided registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fundwatch_crawl_sessions_started_total",
			Help: "Total crawl sessions started.",
		}),
		sessionsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fundwatch_crawl_sessions_finished_total",
			Help: "Total crawl sessions finished, partitioned by result.",
		}, []string{"result"}),
		batchLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fundwatch_batch_loads_total",
			Help: "Total batch loads, partitioned by result.",
		}, []string{"result"}),
		fundsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fundwatch_funds_loaded_total",
			Help: "Total funds discovered across completed batches.",
		}),
		batchDelaySeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fundwatch_batch_delay_seconds",
			Help:    "Randomized delay drawn before each batch load.",
			Buckets: []float64{5, 10, 20, 30, 40, 50, 60, 90},
		}),
		navigations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fundwatch_aboutfund_navigations_total",
			Help: "Total fund page navigations, partitioned by result.",
		}, []string{"result"}),
		aboutSessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fundwatch_aboutfund_sessions_total",
			Help: "Total about-fund sessions, partitioned by result.",
		}, []string{"result"}),
	}
	for _, collector := range []prometheus.Collector{
		m.sessionsStarted,
		m.sessionsFinished,
		m.batchLoads,
		m.fundsLoaded,
		m.batchDelaySeconds,
		m.navigations,
		m.aboutSessions,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return m, nil
}

// ObserveCrawl updates collectors from one appended crawl event. Safe for
// concurrent use.
func (m *Metrics) ObserveCrawl(entry eventlog.CrawlEntry) {
	switch ev := entry.Event.(type) {
	case event.CrawlSessionStarted:
		m.sessionsStarted.Inc()
	case event.CrawlSessionCompleted:
		m.sessionsFinished.WithLabelValues("completed").Inc()
	case event.CrawlSessionFailed:
		m.sessionsFinished.WithLabelValues("failed").Inc()
	case event.CrawlSessionCancelled:
		m.sessionsFinished.WithLabelValues("cancelled").Inc()
	case event.BatchLoadDelayStarted:
		m.batchDelaySeconds.Observe(ev.Delay.Seconds())
	case event.BatchLoadCompleted:
		m.batchLoads.WithLabelValues("completed").Inc()
		m.fundsLoaded.Add(float64(ev.FundsInBatch))
	case event.BatchLoadFailed:
		m.batchLoads.WithLabelValues("failed").Inc()
	}
}

// ObserveAboutFund updates collectors from one appended about-fund event.
func (m *Metrics) ObserveAboutFund(entry eventlog.AboutFundEntry) {
	switch entry.Event.(type) {
	case event.AboutFundSessionStarted:
		m.aboutSessions.WithLabelValues("started").Inc()
	case event.AboutFundSessionCompleted:
		m.aboutSessions.WithLabelValues("completed").Inc()
	case event.AboutFundSessionCancelled:
		m.aboutSessions.WithLabelValues("cancelled").Inc()
	case event.AboutFundNavigationCompleted:
		m.navigations.WithLabelValues("completed").Inc()
	case event.AboutFundNavigationFailed:
		m.navigations.WithLabelValues("failed").Inc()
	}
}
