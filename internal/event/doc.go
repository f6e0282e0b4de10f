// Package event defines the immutable domain facts recorded by the crawl
// orchestration core. Events are partitioned into two closed taxonomies:
// crawl-session events (bulk fund-list crawling) and about-fund events
// (scripted browsing of individual fund detail pages). Both taxonomies are
// sealed interfaces; all session, batch, and navigation state is derived by
// replaying these facts, never stored as mutable fields.
package event
