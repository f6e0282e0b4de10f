// Package schedule computes when crawling work should run: randomized
// pre-batch delays that avoid a fingerprintable request cadence, fixed
// per-step fire times for fund-detail browsing, and the randomized daily
// re-crawl instant. The package only does the math; all waiting belongs to
// the caller's timer.
package schedule
