package event

import "github.com/google/uuid"

// CrawlSessionID identifies one run of the bulk fund-list crawler.
type CrawlSessionID uuid.UUID

// NewCrawlSessionID returns a fresh random session id.
func NewCrawlSessionID() CrawlSessionID {
	return CrawlSessionID(uuid.New())
}

// ParseCrawlSessionID parses the canonical string form of a session id.
func ParseCrawlSessionID(s string) (CrawlSessionID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return CrawlSessionID{}, err
	}
	return CrawlSessionID(id), nil
}

// String returns the canonical UUID form.
func (id CrawlSessionID) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether the id is the zero value.
func (id CrawlSessionID) IsZero() bool {
	return id == CrawlSessionID{}
}

// MarshalText implements encoding.TextMarshaler.
func (id CrawlSessionID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *CrawlSessionID) UnmarshalText(text []byte) error {
	parsed, err := ParseCrawlSessionID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// AboutFundSessionID identifies one run of the fund-detail browsing flow.
type AboutFundSessionID uuid.UUID

// NewAboutFundSessionID returns a fresh random session id.
func NewAboutFundSessionID() AboutFundSessionID {
	return AboutFundSessionID(uuid.New())
}

// ParseAboutFundSessionID parses the canonical string form of a session id.
func ParseAboutFundSessionID(s string) (AboutFundSessionID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return AboutFundSessionID{}, err
	}
	return AboutFundSessionID(id), nil
}

// String returns the canonical UUID form.
func (id AboutFundSessionID) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether the id is the zero value.
func (id AboutFundSessionID) IsZero() bool {
	return id == AboutFundSessionID{}
}

// MarshalText implements encoding.TextMarshaler.
func (id AboutFundSessionID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *AboutFundSessionID) UnmarshalText(text []byte) error {
	parsed, err := ParseAboutFundSessionID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// BatchNumber identifies one "load more" page-fetch cycle within a crawl
// session. Numbers increase monotonically from 1.
type BatchNumber int

// OrderBookID is the marketplace identifier for a fund entry.
type OrderBookID string

// ISIN is the internationally standardized security code of a fund.
type ISIN string
