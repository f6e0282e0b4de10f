// Package postgres archives appended events into Postgres for audit and
// offline analysis. The in-memory log stays authoritative: the archive is
// write-only from the orchestrator's point of view and is never replayed into
// a running process.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/fundwatch/fundwatch/internal/eventlog"
)

// Taxonomy labels rows by event family.
const (
	TaxonomyCrawl     = "crawl"
	TaxonomyAboutFund = "about_fund"
)

const insertEventSQL = `
	INSERT INTO event_archive (taxonomy, kind, session_id, seq, occurred_at, payload)
	VALUES ($1, $2, $3, $4, $5, $6);
`

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// Config controls the archive connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

// Archive writes event rows into Postgres.
type Archive struct {
	pool   execCloser
	logger *zap.Logger
}

// New creates an Archive connected per cfg.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Archive, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("archive dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse archive dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect archive: %w", err)
	}
	return NewWithPool(pool, logger), nil
}

// NewWithPool creates an Archive over an existing pool (or a mock in tests).
func NewWithPool(pool execCloser, logger *zap.Logger) *Archive {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archive{pool: pool, logger: logger}
}

// Close closes the underlying pool.
func (a *Archive) Close() {
	a.pool.Close()
}

// RecordCrawl inserts one crawl event row.
func (a *Archive) RecordCrawl(ctx context.Context, entry eventlog.CrawlEntry) error {
	e := entry.Event
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal crawl event: %w", err)
	}
	_, err = a.pool.Exec(ctx, insertEventSQL,
		TaxonomyCrawl,
		string(e.Kind()),
		e.CrawlSession().String(),
		entry.Seq,
		e.OccurredAt(),
		payload,
	)
	if err != nil {
		return fmt.Errorf("insert crawl event: %w", err)
	}
	return nil
}

// RecordAboutFund inserts one about-fund event row.
func (a *Archive) RecordAboutFund(ctx context.Context, entry eventlog.AboutFundEntry) error {
	e := entry.Event
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal about-fund event: %w", err)
	}
	_, err = a.pool.Exec(ctx, insertEventSQL,
		TaxonomyAboutFund,
		string(e.Kind()),
		e.AboutFundSession().String(),
		entry.Seq,
		e.OccurredAt(),
		payload,
	)
	if err != nil {
		return fmt.Errorf("insert about-fund event: %w", err)
	}
	return nil
}

// CrawlObserver adapts the archive to the log's observer signature. Writes
// are best effort: a failed insert is logged and never blocks orchestration.
func (a *Archive) CrawlObserver(ctx context.Context, timeout time.Duration) func(eventlog.CrawlEntry) {
	return func(entry eventlog.CrawlEntry) {
		writeCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := a.RecordCrawl(writeCtx, entry); err != nil {
			a.logger.Warn("archive crawl event failed",
				zap.String("kind", string(entry.Event.Kind())),
				zap.Error(err),
			)
		}
	}
}

// AboutFundObserver is the about-fund counterpart of CrawlObserver.
func (a *Archive) AboutFundObserver(ctx context.Context, timeout time.Duration) func(eventlog.AboutFundEntry) {
	return func(entry eventlog.AboutFundEntry) {
		writeCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := a.RecordAboutFund(writeCtx, entry); err != nil {
			a.logger.Warn("archive about-fund event failed",
				zap.String("kind", string(entry.Event.Kind())),
				zap.Error(err),
			)
		}
	}
}
