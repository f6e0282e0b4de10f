package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fundwatch/fundwatch/internal/event"
	"github.com/fundwatch/fundwatch/internal/eventlog"
)

func TestRecordCrawlInsertsRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := event.NewCrawlSessionID()
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	entry := eventlog.CrawlEntry{Seq: 7, Event: event.NewBatchLoadCompleted(id, at, 3, 20)}

	mock.ExpectExec("INSERT INTO event_archive").
		WithArgs(TaxonomyCrawl, string(event.KindBatchLoadCompleted), id.String(), uint64(7), at, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	archive := NewWithPool(mock, zap.NewNop())
	require.NoError(t, archive.RecordCrawl(context.Background(), entry))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordAboutFundInsertsRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := event.NewAboutFundSessionID()
	at := time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC)
	entry := eventlog.AboutFundEntry{Seq: 2, Event: event.NewAboutFundNavigationFailed(id, at, "timeout")}

	mock.ExpectExec("INSERT INTO event_archive").
		WithArgs(TaxonomyAboutFund, string(event.KindAboutFundNavigationFailed), id.String(), uint64(2), at, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	archive := NewWithPool(mock, zap.NewNop())
	require.NoError(t, archive.RecordAboutFund(context.Background(), entry))
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestCrawlObserverSwallowsWriteErrors: a failing insert must not propagate
// to the appending goroutine.
func TestCrawlObserverSwallowsWriteErrors(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO event_archive").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(context.DeadlineExceeded)

	archive := NewWithPool(mock, zap.NewNop())
	observer := archive.CrawlObserver(context.Background(), time.Second)

	id := event.NewCrawlSessionID()
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NotPanics(t, func() {
		observer(eventlog.CrawlEntry{Seq: 1, Event: event.NewCrawlSessionStarted(id, at)})
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewRequiresDSN(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{}, zap.NewNop())
	require.Error(t, err)
}
