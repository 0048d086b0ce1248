package search

import "github.com/rotisserie/eris"

// Typed search failures. Callers distinguish these from "zero results",
// which is a valid empty list, not an error.
var (
	// ErrMissingAPIKey means the places credential is absent; search
	// short-circuits before touching the network.
	ErrMissingAPIKey = eris.New("search: places api key not configured")

	// ErrUnauthorized means the provider rejected the credential.
	ErrUnauthorized = eris.New("search: provider rejected credentials")

	// ErrRateLimited means the provider quota is exceeded.
	ErrRateLimited = eris.New("search: provider quota exceeded")
)
