package types

import "errors"

var (
	// ErrInvalidRequirements reports requirements the pipeline cannot run on.
	ErrInvalidRequirements = errors.New("invalid travel requirements")

	// ErrMissingAPIKey means no credential is available for a required remote
	// service, after checking per-call override, runtime config and env.
	ErrMissingAPIKey = errors.New("api key not configured")

	// ErrGenerationFailed means the language model could not be reached or
	// returned a non-success response.
	ErrGenerationFailed = errors.New("llm generation failed")

	// ErrMalformedResponse means the model ran but its response carried no
	// usable structured payload. Kept distinct from ErrGenerationFailed so
	// callers can tell "produced garbage" from "unreachable".
	ErrMalformedResponse = errors.New("llm response is not parseable")

	// ErrNoMatch means every lookup strategy was exhausted without finding
	// the place. A normal outcome at the pipeline level, not a failure.
	ErrNoMatch = errors.New("no matching place found")

	// ErrNotFound reports a missing persisted record.
	ErrNotFound = errors.New("record not found")
)
