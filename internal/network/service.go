// Package network issues the HTTP requests behind each endpoint, validates
// and decodes the responses, classifies failures into the transport error
// taxonomy and retries a failed call once.
package network

import (
	"context"
	"net/http"

	"github.com/Iron-Ham/taskfetch/internal/api"
)

// Service performs one logical call against an endpoint and decodes the JSON
// response into out, which must be a non-nil pointer. Implementations return
// *errors.TransportError on failure.
type Service interface {
	Call(ctx context.Context, endpoint api.Endpoint, out any) error
}

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Get calls endpoint through s and returns the decoded response as a T.
func Get[T any](ctx context.Context, s Service, endpoint api.Endpoint) (T, error) {
	var out T
	if err := s.Call(ctx, endpoint, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
