// Package sinks contains observers that fan appended events out to logging
// and Prometheus. Observers run synchronously on the appending goroutine and
// must stay cheap.
package sinks

import (
	"go.uber.org/zap"

	"github.com/fundwatch/fundwatch/internal/event"
	"github.com/fundwatch/fundwatch/internal/eventlog"
)

// CrawlLogSink returns an observer that writes each crawl event as a
// structured log line. Useful during development or audits.
func CrawlLogSink(logger *zap.Logger) func(eventlog.CrawlEntry) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(entry eventlog.CrawlEntry) {
		e := entry.Event
		fields := []zap.Field{
			zap.Uint64("seq", entry.Seq),
			zap.String("kind", string(e.Kind())),
			zap.String("session_id", e.CrawlSession().String()),
			zap.Time("occurred_at", e.OccurredAt()),
		}
		switch ev := e.(type) {
		case event.BatchLoadScheduled:
			fields = append(fields, zap.Int("batch", int(ev.Batch)), zap.Time("scheduled_at", ev.ScheduledAt))
		case event.BatchLoadDelayStarted:
			fields = append(fields, zap.Int("batch", int(ev.Batch)), zap.Duration("delay", ev.Delay))
		case event.BatchLoadCompleted:
			fields = append(fields, zap.Int("batch", int(ev.Batch)), zap.Int("funds_in_batch", ev.FundsInBatch))
		case event.BatchLoadFailed:
			fields = append(fields, zap.Int("batch", int(ev.Batch)), zap.String("reason", ev.Reason))
		case event.CrawlSessionFailed:
			fields = append(fields, zap.String("reason", ev.Reason))
		case event.CrawlSessionCancelled:
			fields = append(fields, zap.String("reason", ev.Reason))
		case event.DailyCrawlScheduled:
			fields = append(fields, zap.Time("scheduled_for", ev.ScheduledFor))
		}
		logger.Info("crawl event", fields...)
	}
}

// AboutFundLogSink returns an observer that writes each about-fund event as a
// structured log line.
func AboutFundLogSink(logger *zap.Logger) func(eventlog.AboutFundEntry) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(entry eventlog.AboutFundEntry) {
		e := entry.Event
		fields := []zap.Field{
			zap.Uint64("seq", entry.Seq),
			zap.String("kind", string(e.Kind())),
			zap.String("session_id", e.AboutFundSession().String()),
			zap.Time("occurred_at", e.OccurredAt()),
		}
		switch ev := e.(type) {
		case event.AboutFundSessionStarted:
			fields = append(fields, zap.Int("total_funds", ev.TotalFunds), zap.String("first_orderbook", string(ev.FirstOrderBook)))
		case event.AboutFundNavigationStarted:
			fields = append(fields,
				zap.String("isin", string(ev.ISIN)),
				zap.String("orderbook", string(ev.OrderBook)),
				zap.Int("index", ev.Index),
			)
		case event.AboutFundNavigationFailed:
			fields = append(fields, zap.String("reason", ev.Reason))
		case event.AboutFundSessionCancelled:
			fields = append(fields, zap.Int("funds_visited", ev.FundsVisited), zap.String("reason", ev.Reason))
		}
		logger.Info("about-fund event", fields...)
	}
}
