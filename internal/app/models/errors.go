package models

import "errors"

// Domain specific errors shared by the discovery and sync services.
var (
	ErrInvalidRequest   = errors.New("invalid request parameters")
	ErrTransport        = errors.New("network transport failed")
	ErrUpstream         = errors.New("upstream provider returned a non-success response")
	ErrDecode           = errors.New("response payload did not match expected schema")
	ErrNotFound         = errors.New("requested item not found")
	ErrNotAuthenticated = errors.New("authentication required")
	ErrPersistence      = errors.New("document store operation failed")
	ErrDiscoveryFailed  = errors.New("all category searches failed")
)
