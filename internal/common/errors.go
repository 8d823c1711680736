// Package common defines sentinel errors shared across client layers.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// Gating errors: the operation was declined, nothing failed.
	ErrNotLoggedIn         = errors.New("not logged in")
	ErrFeatureNotAvailable = errors.New("feature not available on this plan")
)
