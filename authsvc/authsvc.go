package authsvc

import "errors"

const (
	// CredentialHeader is the preferred channel for the caller identifier.
	CredentialHeader = "x-user-id"
	// CredentialQueryParam is consulted when the header is absent.
	CredentialQueryParam = "userId"
)

type contextKey string

// UserIDContextKey holds the resolved caller's uuid.UUID.
const UserIDContextKey contextKey = "UserID"

var (
	ErrCredentialMissing   = errors.New("user identifier is required")
	ErrCredentialMalformed = errors.New("user identifier is not a valid UUID")
	ErrUnknownUser         = errors.New("user identifier does not match any user")
)
