package sinks

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/fundwatch/fundwatch/internal/event"
	"github.com/fundwatch/fundwatch/internal/eventlog"
)

// TestMetricsRecordCrawlEvents ensures counters and histograms are updated
// from appended crawl events.
func TestMetricsRecordCrawlEvents(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	id := event.NewCrawlSessionID()
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	entries := []eventlog.CrawlEntry{
		{Seq: 1, Event: event.NewCrawlSessionStarted(id, at)},
		{Seq: 2, Event: event.NewBatchLoadDelayStarted(id, at.Add(time.Second), 1, 35*time.Second)},
		{Seq: 3, Event: event.NewBatchLoadCompleted(id, at.Add(40*time.Second), 1, 20)},
		{Seq: 4, Event: event.NewBatchLoadFailed(id, at.Add(80*time.Second), 2, "http 500")},
		{Seq: 5, Event: event.NewCrawlSessionCompleted(id, at.Add(2*time.Minute))},
	}
	for _, entry := range entries {
		m.ObserveCrawl(entry)
	}

	require.Equal(t, 1.0, testutil.ToFloat64(m.sessionsStarted))
	require.Equal(t, 1.0, testutil.ToFloat64(m.sessionsFinished.WithLabelValues("completed")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.sessionsFinished.WithLabelValues("failed")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.batchLoads.WithLabelValues("completed")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.batchLoads.WithLabelValues("failed")))
	require.Equal(t, 20.0, testutil.ToFloat64(m.fundsLoaded))
	require.Equal(t, 1, testutil.CollectAndCount(m.batchDelaySeconds, "fundwatch_batch_delay_seconds"))
}

func TestMetricsRecordAboutFundEvents(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	id := event.NewAboutFundSessionID()
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	entries := []eventlog.AboutFundEntry{
		{Seq: 1, Event: event.NewAboutFundSessionStarted(id, at, 3, "155458")},
		{Seq: 2, Event: event.NewAboutFundNavigationStarted(id, at.Add(time.Minute), "SE0012193019", "155458", 0, "https://marketplace.example/funds/155458")},
		{Seq: 3, Event: event.NewAboutFundNavigationCompleted(id, at.Add(2*time.Minute))},
		{Seq: 4, Event: event.NewAboutFundNavigationFailed(id, at.Add(3*time.Minute), "timeout")},
		{Seq: 5, Event: event.NewAboutFundSessionCancelled(id, at.Add(4*time.Minute), 1, "shutdown")},
	}
	for _, entry := range entries {
		m.ObserveAboutFund(entry)
	}

	require.Equal(t, 1.0, testutil.ToFloat64(m.aboutSessions.WithLabelValues("started")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.aboutSessions.WithLabelValues("cancelled")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.navigations.WithLabelValues("completed")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.navigations.WithLabelValues("failed")))
}

// TestMetricsWiredThroughLogObservers registers the sink on a live log and
// appends through it.
func TestMetricsWiredThroughLogObservers(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	log := eventlog.NewCrawlLog()
	log.Observe(m.ObserveCrawl)

	id := event.NewCrawlSessionID()
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, log.Append(event.NewCrawlSessionStarted(id, at)))
	require.NoError(t, log.Append(event.NewBatchLoadCompleted(id, at.Add(time.Minute), 1, 12)))

	require.Equal(t, 1.0, testutil.ToFloat64(m.sessionsStarted))
	require.Equal(t, 12.0, testutil.ToFloat64(m.fundsLoaded))
}

func TestNewMetricsRejectsDoubleRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)
	_, err = NewMetrics(reg)
	require.Error(t, err)
}
