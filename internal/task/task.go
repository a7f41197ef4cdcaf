// Package task chains the two calls that make up a fetch: resolve the next
// path from the API root, then fetch the response code stored at that path.
package task

import (
	"context"

	"github.com/Iron-Ham/taskfetch/internal/api"
	"github.com/Iron-Ham/taskfetch/internal/logging"
	"github.com/Iron-Ham/taskfetch/internal/network"
)

// NextPathResult is the body returned by the nextpath endpoint.
type NextPathResult struct {
	NextPath *string `json:"next_path"`
}

// ResponseCodeResult is the body returned by the URL that nextpath points at.
type ResponseCodeResult struct {
	Path         *string `json:"path"`
	ResponseCode *string `json:"response_code"`
}

// Code returns the response code, or "" when the server omitted it.
func (r ResponseCodeResult) Code() string {
	return deref(r.ResponseCode)
}

// Fetcher performs the two individual calls.
type Fetcher interface {
	FetchNextPath(ctx context.Context) (NextPathResult, error)
	FetchResponseCode(ctx context.Context, url string) (ResponseCodeResult, error)
}

// Executor runs the full two-step chain.
type Executor interface {
	ExecuteTask(ctx context.Context) (ResponseCodeResult, error)
}

// Repository is the full task data source.
type Repository interface {
	Fetcher
	Executor
}

// HTTPRepository implements Repository on top of a network.Service.
type HTTPRepository struct {
	service network.Service
	root    string
	logger  *logging.Logger
}

var _ Repository = (*HTTPRepository)(nil)

// NewRepository creates a repository that resolves the next path from root.
// An empty root falls back to api.DefaultRoot. logger may be nil.
func NewRepository(service network.Service, root string, logger *logging.Logger) *HTTPRepository {
	if root == "" {
		root = api.DefaultRoot
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &HTTPRepository{
		service: service,
		root:    root,
		logger:  logger.WithComponent("task"),
	}
}

// FetchNextPath calls the nextpath endpoint.
func (r *HTTPRepository) FetchNextPath(ctx context.Context) (NextPathResult, error) {
	return network.Get[NextPathResult](ctx, r.service, api.NextPath(r.root))
}

// FetchResponseCode calls url and returns the response code body.
func (r *HTTPRepository) FetchResponseCode(ctx context.Context, url string) (ResponseCodeResult, error) {
	return network.Get[ResponseCodeResult](ctx, r.service, api.ResponseCode(url))
}

// ExecuteTask fetches the next path and then the response code behind it.
// The second call is only made once the first has succeeded, and errors from
// either call are returned unchanged. An absent next_path is passed on as the
// empty string, which the transport rejects as an invalid URL.
func (r *HTTPRepository) ExecuteTask(ctx context.Context) (ResponseCodeResult, error) {
	next, err := r.FetchNextPath(ctx)
	if err != nil {
		return ResponseCodeResult{}, err
	}

	url := deref(next.NextPath)
	r.logger.Debug("resolved next path", "next_path", url)

	return r.FetchResponseCode(ctx, url)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
