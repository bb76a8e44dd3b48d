package domain

import "errors"

// Sentinel errors shared across the pipeline. Adapters wrap these with
// fmt.Errorf("%w: ...") so callers can classify failures with errors.Is
// while keeping the underlying detail.
var (
	// ErrUpstream marks a failed or non-success forecast provider call.
	ErrUpstream = errors.New("upstream request failed")

	// ErrTransport marks a network-level failure reaching a provider.
	ErrTransport = errors.New("cannot reach service")

	// ErrDataShape marks a response whose payload shape was not the
	// expected one (missing success flag, absent nested records).
	ErrDataShape = errors.New("unexpected response shape")

	// ErrIncompleteData marks conditions that lack a required field after
	// normalization; a half-filled report is never produced.
	ErrIncompleteData = errors.New("incomplete weather data")

	// ErrInvalidRecipient marks a recipient address that failed local
	// validation, before any network call.
	ErrInvalidRecipient = errors.New("invalid recipient address")
)
