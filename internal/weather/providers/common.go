package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
)

// BreakerConfig controls when the circuit breaker opens.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that trips the breaker.
	MaxFailures uint32
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
}

// HTTPClientConfig bundles HTTP client and breaker settings.
type HTTPClientConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Breaker   BreakerConfig
	Logger    *slog.Logger
}

var (
	// ErrUpstream wraps every transport, status or breaker failure.
	ErrUpstream = errors.New("upstream request failed")

	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
	errNoClient    = errors.New("http client not configured")
)

func newBreaker(name string, cfg BreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// newRestyClient builds the outbound client and logs each request at debug level.
func newRestyClient(cfg HTTPClientConfig, logger *slog.Logger) *resty.Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout)
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		logger.DebugContext(req.Context(), "start request", "method", req.Method, "url", req.URL)
		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		logger.DebugContext(res.Request.Context(), "request finished",
			"method", res.Request.Method,
			"url", res.Request.URL,
			"status", res.StatusCode(),
			"elapsed", res.Time(),
		)
		return nil
	})
	client.OnError(func(req *resty.Request, err error) {
		logger.ErrorContext(req.Context(), "request failed", "method", req.Method, "url", req.URL, "err", err)
	})

	return client
}

// doGet executes one GET through the circuit breaker. There is no retry: the
// first failure is returned to the caller.
func doGet(
	ctx context.Context,
	client *resty.Client,
	cb *gobreaker.CircuitBreaker,
	path string,
	query map[string]string,
) (*resty.Response, error) {
	if client == nil {
		return nil, errNoClient
	}

	result, err := cb.Execute(func() (interface{}, error) {
		res, execErr := client.R().
			SetContext(ctx).
			SetQueryParams(query).
			Get(path)
		if execErr != nil {
			return nil, execErr
		}

		if res.StatusCode() >= 500 {
			return nil, fmt.Errorf("%w: %d", errServerError, res.StatusCode())
		}
		if res.StatusCode() < 200 || res.StatusCode() >= 300 {
			return nil, fmt.Errorf("%w: %d", errUnexpected, res.StatusCode())
		}

		return res, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w: %v", ErrUpstream, errCircuitOpen, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	res, ok := result.(*resty.Response)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected result type from circuit breaker", ErrUpstream)
	}
	return res, nil
}
