package backend

import "errors"

// Error definitions for the backend package.
var (
	ErrDatatypeMismatch = errors.New("tensor datatype mismatch")
	ErrMalformedTensor  = errors.New("malformed tensor contents")
	ErrBinaryNotFound   = errors.New("binary not found")
)
