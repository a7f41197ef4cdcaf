package network

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"reflect"
	"syscall"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"

	"github.com/Iron-Ham/taskfetch/internal/api"
	"github.com/Iron-Ham/taskfetch/internal/errors"
	"github.com/Iron-Ham/taskfetch/internal/logging"
	"github.com/Iron-Ham/taskfetch/internal/metrics"
)

const (
	// DefaultTimeout bounds a single attempt.
	DefaultTimeout = 10 * time.Second

	// maxAttempts is the first attempt plus exactly one retry.
	maxAttempts = 2

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 1 << 20
)

// Client is the HTTP implementation of Service.
type Client struct {
	doer    Doer
	timeout time.Duration
	limiter *rate.Limiter
	logger  *logging.Logger
	metrics *metrics.Recorder
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithDoer replaces the underlying HTTP client.
func WithDoer(d Doer) ClientOption {
	return func(c *Client) {
		c.doer = d
	}
}

// WithTimeout sets the per-attempt timeout. Non-positive values are ignored.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRateLimit limits outgoing attempts to rps per second with a burst of
// one. A non-positive rps leaves the client unlimited.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithLogger sets the logger. The client tags it with component=network.
func WithLogger(l *logging.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r *metrics.Recorder) ClientOption {
	return func(c *Client) {
		c.metrics = r
	}
}

// NewClient creates a Client with a 10 second per-attempt timeout.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		doer:    &http.Client{},
		timeout: DefaultTimeout,
		logger:  logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent("network")
	return c
}

// Call issues a GET to endpoint.URL and decodes the JSON body into out.
//
// A malformed URL fails immediately with KindInvalidURL. Any other failure
// (connectivity, timeout, non-2xx status, undecodable body) is retried once
// without delay before being returned.
func (c *Client) Call(ctx context.Context, endpoint api.Endpoint, out any) error {
	log := c.logger.WithEndpoint(endpoint.Name)

	target := reflect.ValueOf(out)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return errors.NewGeneric(fmt.Sprintf("decode target must be a non-nil pointer, got %T", out), nil).
			WithEndpoint(endpoint.Name)
	}

	u, err := parseURL(endpoint.URL)
	if err != nil {
		log.Warn("invalid endpoint url", "url", endpoint.URL, "error", err.Error())
		c.metrics.Failure(endpoint.Name, errors.KindInvalidURL.String())
		return errors.NewInvalidURL(err).WithEndpoint(endpoint.Name)
	}

	attempt := 0
	err = retry.Do(
		func() error {
			attempt++
			c.metrics.Attempt(endpoint.Name)
			if attempt > 1 {
				c.metrics.Retry(endpoint.Name)
			}

			aerr := c.attempt(ctx, u, target)
			if aerr != nil {
				log.Warn("attempt failed", "attempt", attempt, "kind", aerr.Kind.String(), "error", aerr.Error())
				return aerr
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(maxAttempts),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(errors.IsRetryable),
	)
	if err != nil {
		te := classify(err).WithEndpoint(endpoint.Name)
		c.metrics.Failure(endpoint.Name, te.Kind.String())
		log.Error("call failed", "attempts", attempt, "kind", te.Kind.String())
		return te
	}

	log.Debug("call succeeded", "attempts", attempt)
	return nil
}

// attempt performs one request. On success the decoded value is stored in
// target; a failed decode never leaves target partially written.
func (c *Client) attempt(ctx context.Context, u *url.URL, target reflect.Value) *errors.TransportError {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		// Wait fails without touching ctx when the next token would arrive
		// after the attempt deadline; that is a timeout, not a generic error.
		if err := c.limiter.Wait(ctx); err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				return classify(err)
			}
			return errors.NewTimeout(err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return errors.NewInvalidURL(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.doer.Do(req)
	if err != nil {
		return classify(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return errors.NewInvalidResponseCode(resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return classify(err)
	}

	fresh := reflect.New(target.Type().Elem())
	if err := decodeJSON(body, fresh.Interface()); err != nil {
		return errors.NewDecodingError(err)
	}
	target.Elem().Set(fresh.Elem())
	return nil
}

// parseURL accepts absolute http and https URLs only.
func parseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("missing host in %q", raw)
	}
	return u, nil
}

// classify maps a raw transport error onto the error taxonomy.
func classify(err error) *errors.TransportError {
	var te *errors.TransportError
	if errors.As(err, &te) {
		return te
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return errors.NewTimeout(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.NewTimeout(err)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return errors.NewNoInternetConnection(err)
	}
	for _, errno := range []syscall.Errno{syscall.ECONNREFUSED, syscall.ENETUNREACH, syscall.EHOSTUNREACH, syscall.ENETDOWN} {
		if errors.Is(err, errno) {
			return errors.NewNoInternetConnection(err)
		}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return errors.NewNoInternetConnection(err)
	}

	return errors.NewGeneric(err.Error(), err)
}
