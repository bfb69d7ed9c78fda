// Package resilience provides retry policies for failing streams.
//
// A RetryConfig describes how many times a failed subscription is
// re-established and how long to wait between attempts. The waiting itself
// is done by the caller's scheduler; this package only computes delays and
// decides whether an error is worth another attempt.
//
//	cfg := resilience.DefaultRetryConfig()
//	cfg.MaxAttempts = 5
//	retried := stream.Retry(flaky, cfg)
package resilience
