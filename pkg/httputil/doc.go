// Package httputil fetches remote datasets and geometry.
//
// [Client] wraps net/http with a response cache (any [cache.Cache] backend)
// and [Retry] with exponential backoff for transient failures: network
// errors, 5xx responses and 429 rate limiting. A 4xx response other than 429
// fails immediately.
//
//	c := httputil.NewClient(fileCache, logger)
//	data, err := c.Fetch(ctx, "https://example.org/refugees.csv")
//
// Cached bodies expire after [cache.TTLHTTP]. Clear them with
// `flowatlas cache clear`.
package httputil
