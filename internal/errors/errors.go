// Package errors defines domain-level errors used throughout the application.
// These errors represent business logic failures and are mapped to appropriate HTTP status codes at the API boundary.
//
// NOTE: Important for developers
// When adding a new error here, you MUST consider how it should be handled when returned from API endpoints.
//
// Unmapped errors will default to HTTP 500 Internal Server Error.
//
// Don't forget to:
// 1. Add your error to mapError (internal/daemon/api_server.go)
// 2. Add a test case to TestMapError (internal/daemon/api_server_test.go)
// 3. Consider if existing handler tests need updates
package errors

import (
	"errors"
)

var (
	// ErrBadRequest indicates that the client provided invalid input or made a malformed request.
	// This typically results from validation failures or incorrect request parameters.
	// Recommended to map to HTTP 400 Bad Request.
	ErrBadRequest = errors.New("bad request")

	// ErrInvalidDomain indicates that a registration named a domain that cannot be verified:
	// bad label syntax, a bare IP address, or a reserved/private suffix such as .local or .internal.
	// Validation errors never create state. Recommended to map to HTTP 400 Bad Request.
	ErrInvalidDomain = errors.New("invalid domain")

	// ErrInsecureEndpoint indicates that a registration endpoint was not an https URL,
	// or that its host is a loopback or private address literal.
	// Recommended to map to HTTP 400 Bad Request.
	ErrInsecureEndpoint = errors.New("insecure endpoint")

	// ErrInvalidQuery indicates a discovery query with no usable dimension or
	// out-of-range parameters. Recommended to map to HTTP 400 Bad Request.
	ErrInvalidQuery = errors.New("invalid discovery query")

	// ErrDomainAlreadyRegistered indicates that the domain already has a verified server record.
	// The caller must re-verify ownership or pick a different domain.
	// Recommended to map to HTTP 409 Conflict.
	ErrDomainAlreadyRegistered = errors.New("domain already registered")

	// ErrChallengeNotFound indicates that no verification challenge exists for the given ID.
	// Reported distinctly from validation errors so callers can branch ("register first" vs "fix your input").
	// Recommended to map to HTTP 404 Not Found.
	ErrChallengeNotFound = errors.New("challenge not found")

	// ErrServerNotFound indicates that the requested server record does not exist.
	// Recommended to map to HTTP 404 Not Found.
	ErrServerNotFound = errors.New("server not found")

	// ErrChallengeTerminal indicates an attempt to mutate a challenge that has already
	// reached a terminal state (verified, expired or failed). Terminal states are absorbing.
	// Recommended to map to HTTP 409 Conflict.
	ErrChallengeTerminal = errors.New("challenge already settled")
)
