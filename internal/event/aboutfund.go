package event

import "time"

// AboutFundKind discriminates about-fund event variants.
type AboutFundKind string

// About-fund event kinds.
const (
	KindAboutFundSessionStarted      AboutFundKind = "ABOUT_FUND_SESSION_STARTED"
	KindAboutFundNavigationStarted   AboutFundKind = "ABOUT_FUND_NAVIGATION_STARTED"
	KindAboutFundNavigationCompleted AboutFundKind = "ABOUT_FUND_NAVIGATION_COMPLETED"
	KindAboutFundNavigationFailed    AboutFundKind = "ABOUT_FUND_NAVIGATION_FAILED"
	KindAboutFundSessionCompleted    AboutFundKind = "ABOUT_FUND_SESSION_COMPLETED"
	KindAboutFundSessionCancelled    AboutFundKind = "ABOUT_FUND_SESSION_CANCELLED"
)

// AboutFundEvent is the sealed contract for fund-detail browsing facts.
type AboutFundEvent interface {
	AboutFundSession() AboutFundSessionID
	OccurredAt() time.Time
	Kind() AboutFundKind

	isAboutFundEvent()
}

type aboutFundBase struct {
	SessionID AboutFundSessionID `json:"session_id"`
	At        time.Time          `json:"occurred_at"`
}

func (b aboutFundBase) AboutFundSession() AboutFundSessionID { return b.SessionID }
func (b aboutFundBase) OccurredAt() time.Time                { return b.At }
func (aboutFundBase) isAboutFundEvent()                      {}

// AboutFundSessionStarted records the start of a browsing session over a
// known number of funds.
type AboutFundSessionStarted struct {
	aboutFundBase
	TotalFunds     int         `json:"total_funds"`
	FirstOrderBook OrderBookID `json:"first_orderbook_id"`
}

// NewAboutFundSessionStarted builds an AboutFundSessionStarted fact.
func NewAboutFundSessionStarted(id AboutFundSessionID, at time.Time, totalFunds int, first OrderBookID) AboutFundSessionStarted {
	return AboutFundSessionStarted{
		aboutFundBase:  aboutFundBase{SessionID: id, At: at.UTC()},
		TotalFunds:     totalFunds,
		FirstOrderBook: first,
	}
}

// Kind implements AboutFundEvent.
func (AboutFundSessionStarted) Kind() AboutFundKind { return KindAboutFundSessionStarted }

// AboutFundNavigationStarted records navigation to one fund detail page.
type AboutFundNavigationStarted struct {
	aboutFundBase
	ISIN      ISIN        `json:"isin"`
	OrderBook OrderBookID `json:"orderbook_id"`
	Index     int         `json:"index"`
	URL       string      `json:"url"`
}

// NewAboutFundNavigationStarted builds an AboutFundNavigationStarted fact.
func NewAboutFundNavigationStarted(
	id AboutFundSessionID,
	at time.Time,
	isin ISIN,
	orderBook OrderBookID,
	index int,
	url string,
) AboutFundNavigationStarted {
	return AboutFundNavigationStarted{
		aboutFundBase: aboutFundBase{SessionID: id, At: at.UTC()},
		ISIN:          isin,
		OrderBook:     orderBook,
		Index:         index,
		URL:           url,
	}
}

// Kind implements AboutFundEvent.
func (AboutFundNavigationStarted) Kind() AboutFundKind { return KindAboutFundNavigationStarted }

// AboutFundNavigationCompleted records that the most recently started
// navigation finished and its chart data was captured.
type AboutFundNavigationCompleted struct {
	aboutFundBase
}

// NewAboutFundNavigationCompleted builds an AboutFundNavigationCompleted fact.
func NewAboutFundNavigationCompleted(id AboutFundSessionID, at time.Time) AboutFundNavigationCompleted {
	return AboutFundNavigationCompleted{aboutFundBase{SessionID: id, At: at.UTC()}}
}

// Kind implements AboutFundEvent.
func (AboutFundNavigationCompleted) Kind() AboutFundKind { return KindAboutFundNavigationCompleted }

// AboutFundNavigationFailed records that a navigation attempt failed. The
// session stays active; skipping or aborting is the orchestrator's call.
type AboutFundNavigationFailed struct {
	aboutFundBase
	Reason string `json:"reason"`
}

// NewAboutFundNavigationFailed builds an AboutFundNavigationFailed fact.
func NewAboutFundNavigationFailed(id AboutFundSessionID, at time.Time, reason string) AboutFundNavigationFailed {
	return AboutFundNavigationFailed{aboutFundBase: aboutFundBase{SessionID: id, At: at.UTC()}, Reason: reason}
}

// Kind implements AboutFundEvent.
func (AboutFundNavigationFailed) Kind() AboutFundKind { return KindAboutFundNavigationFailed }

// AboutFundSessionCompleted records that every planned fund was visited.
type AboutFundSessionCompleted struct {
	aboutFundBase
}

// NewAboutFundSessionCompleted builds an AboutFundSessionCompleted fact.
func NewAboutFundSessionCompleted(id AboutFundSessionID, at time.Time) AboutFundSessionCompleted {
	return AboutFundSessionCompleted{aboutFundBase{SessionID: id, At: at.UTC()}}
}

// Kind implements AboutFundEvent.
func (AboutFundSessionCompleted) Kind() AboutFundKind { return KindAboutFundSessionCompleted }

// AboutFundSessionCancelled records early termination of a browsing session.
type AboutFundSessionCancelled struct {
	aboutFundBase
	FundsVisited int    `json:"funds_visited"`
	Reason       string `json:"reason"`
}

// NewAboutFundSessionCancelled builds an AboutFundSessionCancelled fact.
func NewAboutFundSessionCancelled(id AboutFundSessionID, at time.Time, fundsVisited int, reason string) AboutFundSessionCancelled {
	return AboutFundSessionCancelled{
		aboutFundBase: aboutFundBase{SessionID: id, At: at.UTC()},
		FundsVisited:  fundsVisited,
		Reason:        reason,
	}
}

// Kind implements AboutFundEvent.
func (AboutFundSessionCancelled) Kind() AboutFundKind { return KindAboutFundSessionCancelled }
