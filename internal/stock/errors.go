package stock

import "errors"

// Error taxonomy for the quote resolution pipeline.
//
// Each fallback tier catches and discards the prior tier's error before
// moving on; only the terminal tier's error propagates, wrapped in
// ErrQuoteUnavailable so callers can match the consolidated failure while
// errors.Unwrap still reaches the underlying cause.
var (
	// ErrUpstreamUnavailable marks a failed network call or a non-success
	// HTTP status from an upstream source. Recoverable via fallback or cache.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrInvalidQuoteData marks a successful upstream response whose payload
	// lacks a usable (positive) price. Not retried against the same source.
	ErrInvalidQuoteData = errors.New("invalid quote data")

	// ErrQuoteUnavailable is terminal: every configured fallback for a
	// symbol failed.
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrNoSearchResults is returned when the sole remote search source
	// for a query failed and the local fallback matched nothing.
	ErrNoSearchResults = errors.New("no search results")
)
