package registry

import "errors"

// Error definitions for the registry package.
var (
	ErrNotFound = errors.New("descriptor not found")
)
