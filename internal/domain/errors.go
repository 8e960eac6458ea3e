package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound marks an absent domain, session article or focus group.
// Surfaced to the caller, never retried.
var ErrNotFound = errors.New("not found")

// ErrValidation marks a request missing a required field.
var ErrValidation = errors.New("validation failed")

// ErrCredentialMissing short-circuits analytics batches when no provider
// API key is configured.
var ErrCredentialMissing = errors.New("analytics API key not configured")

// ProviderQueryError is a non-success response from the external analytics
// provider. The caller decides whether it is fatal for one article or the
// whole batch continues.
type ProviderQueryError struct {
	Status int
	Body   string
}

func (e *ProviderQueryError) Error() string {
	return fmt.Sprintf("provider query failed: %d - %s", e.Status, e.Body)
}
