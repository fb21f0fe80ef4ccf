// Package backend defines the tensor protocol spoken with the inference
// backend and the dispatcher that carries it.
package backend

import (
	"context"
)

// Dispatcher sends one inference request to a backend endpoint. It performs
// no retries and sets no timeout of its own; any transport or backend
// failure is returned as a server error of kind BACKEND_UNAVAILABLE.
type Dispatcher interface {
	// Dispatch executes inference and returns the complete result.
	Dispatch(ctx context.Context, req *Request) (*Response, error)

	// Close cleans up resources.
	Close() error
}

// Request encapsulates all parameters for an inference call.
type Request struct {
	// Endpoint is the backend address, e.g. https://nmt.example.org.
	Endpoint string

	// APIKey is sent as a bearer token. Empty means no authorization.
	APIKey string

	// Model is the backend model name, e.g. nmt or asr_am_ensemble.
	Model string

	// Version is the backend model version. Empty selects the latest.
	Version string

	// ID correlates the request in backend logs.
	ID string

	// Inputs are the request tensors.
	Inputs []Tensor

	// Outputs names the tensors the caller wants back.
	Outputs []string
}

// Response contains the result of an inference operation.
type Response struct {
	Model   string
	Version string
	ID      string
	Outputs []Tensor
}

// Output returns the output tensor with the given name.
func (r *Response) Output(name string) (Tensor, bool) {
	if r == nil {
		return Tensor{}, false
	}

	for _, t := range r.Outputs {
		if t.Name == name {
			return t, true
		}
	}

	return Tensor{}, false
}

// Strings decodes the named BYTES output. An absent tensor yields an empty
// result rather than an error.
func (r *Response) Strings(name string) ([]string, error) {
	t, ok := r.Output(name)
	if !ok {
		return nil, nil
	}

	return t.Strings()
}

// Float32s decodes the named FP32 output. An absent tensor yields an empty
// result rather than an error.
func (r *Response) Float32s(name string) ([]float32, error) {
	t, ok := r.Output(name)
	if !ok {
		return nil, nil
	}

	return t.Float32s()
}
