// Package apify corroborates a RUT against the public registry by driving
// an Apify actor: start a lookup run, poll it to a terminal state under a
// bounded retry policy, then fetch the run's dataset.
package apify

import (
	"context"
	"time"
)

// Outcome classifies a corroboration attempt.
type Outcome string

const (
	// OutcomeFound means the registry returned a named person for the RUT.
	OutcomeFound Outcome = "found"
	// OutcomeNotFound means the lookup completed but no named person matched.
	OutcomeNotFound Outcome = "not_found"
	// OutcomeTimedOut means the run did not reach a terminal state within
	// the polling budget.
	OutcomeTimedOut Outcome = "timed_out"
	// OutcomeServiceFailed means the actor run itself reported FAILED.
	OutcomeServiceFailed Outcome = "service_failed"
	// OutcomeConfigError means the service credential is missing; no
	// network call was attempted.
	OutcomeConfigError Outcome = "config_error"
	// OutcomeTransportError covers network failures and malformed responses
	// at any step. A single transport failure aborts the attempt; only the
	// status poll itself is retried, per the policy.
	OutcomeTransportError Outcome = "transport_error"
)

// Result is the tagged outcome of one corroboration attempt. Err carries
// the underlying cause for server-side logging and is never shown to users.
type Result struct {
	Outcome  Outcome
	Name     string
	LastName string
	Err      error
}

// Found reports whether the attempt corroborated the RUT.
func (r Result) Found() bool { return r.Outcome == OutcomeFound }

// Corroborator looks up a canonical RUT in the public registry.
type Corroborator interface {
	Corroborate(ctx context.Context, canonicalRUT string) Result
}

// RetryPolicy bounds the status-polling loop: one status check per
// Interval, at most MaxAttempts checks.
type RetryPolicy struct {
	Interval    time.Duration
	MaxAttempts int
}

// DefaultRetryPolicy matches the upstream actor's expected completion time:
// 20 checks 3 seconds apart, roughly a one minute ceiling.
var DefaultRetryPolicy = RetryPolicy{Interval: 3 * time.Second, MaxAttempts: 20}
