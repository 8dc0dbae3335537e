package discovery

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/GriffinCanCode/AgentOS/media/internal/infrastructure/resilience"
	"github.com/elnormous/contenttype"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var ErrUnsupportedScheme = errors.New("discovery only supports http and https")

// Error reports a failed probe
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("discover %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Config configures the probe client
type Config struct {
	Timeout          time.Duration
	RetryMax         int
	RetryWaitMin     time.Duration
	RetryWaitMax     time.Duration
	RateLimit        float64       // requests per second, <= 0 means unlimited
	Burst            int
	UserAgent        string
	FailureThreshold int
	Cooldown         time.Duration
}

// DefaultConfig returns the settings used when none are configured
func DefaultConfig() Config {
	return Config{
		Timeout:          10 * time.Second,
		RetryMax:         1,
		RetryWaitMin:     200 * time.Millisecond,
		RetryWaitMax:     2 * time.Second,
		RateLimit:        20,
		Burst:            10,
		FailureThreshold: 3,
		Cooldown:         30 * time.Second,
	}
}

// Observer is told about every finished probe
type Observer interface {
	ObserveDiscovery(outcome string, elapsed time.Duration)
}

// Client probes URLs for their content type
type Client struct {
	resty    *resty.Client
	limiter  *rate.Limiter
	breakers *resilience.HostBreakers
	observer Observer
	agent    atomic.Pointer[string]
	logger   *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithObserver reports probe outcomes to o
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// New creates a probe client
func New(cfg Config, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = nil
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	restyClient := resty.NewWithClient(retryClient.StandardClient()).
		SetTimeout(cfg.Timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.Burst, 1))
	}

	c := &Client{
		resty:   restyClient,
		limiter: limiter,
		breakers: resilience.NewHostBreakers(resilience.Settings{
			FailureThreshold: cfg.FailureThreshold,
			Cooldown:         cfg.Cooldown,
			OnStateChange: func(host string, from, to resilience.State) {
				logger.Info("discovery breaker state changed",
					zap.String("host", host),
					zap.Stringer("from", from),
					zap.Stringer("to", to))
			},
		}),
		logger: logger,
	}
	c.SetUserAgent(cfg.UserAgent)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetUserAgent changes the User-Agent sent with later probes. It is safe
// to call while probes are in flight; an empty agent restores the
// transport default.
func (c *Client) SetUserAgent(agent string) {
	c.agent.Store(&agent)
}

// BreakerStates returns the breaker state of every host probed so far
func (c *Client) BreakerStates() map[string]resilience.State {
	return c.breakers.States()
}

// Discover returns the content type rawURL serves, without parameters.
// An empty result means the server sent no usable Content-Type.
func (c *Client) Discover(ctx context.Context, rawURL string) (string, error) {
	start := time.Now()
	resp, err := c.head(ctx, rawURL)
	if err != nil {
		c.observe("error", start)
		return "", err
	}

	mimeType := ParseContentType(resp.Header().Get("Content-Type"))
	c.logger.Debug("content type discovered",
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode()),
		zap.String("mime_type", mimeType))

	if mimeType == "" {
		c.observe("empty", start)
	} else {
		c.observe("ok", start)
	}
	return mimeType, nil
}

// FetchCookies returns the Set-Cookie headers rawURL answers with, joined
// by newlines.
func (c *Client) FetchCookies(ctx context.Context, rawURL string) (string, error) {
	resp, err := c.head(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return strings.Join(resp.Header().Values("Set-Cookie"), "\n"), nil
}

func (c *Client) head(ctx context.Context, rawURL string) (*resty.Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &Error{URL: rawURL, Err: ErrUnsupportedScheme}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &Error{URL: rawURL, Err: fmt.Errorf("rate limit: %w", err)}
	}

	var resp *resty.Response
	err = c.breakers.For(u.Host).Call(func() error {
		req := c.resty.R().
			SetContext(ctx).
			SetHeader("Accept", "*/*")
		if agent := *c.agent.Load(); agent != "" {
			req.SetHeader("User-Agent", agent)
		}
		r, err := req.Head(rawURL)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}
	return resp, nil
}

func (c *Client) observe(outcome string, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveDiscovery(outcome, time.Since(start))
	}
}

// ParseContentType reduces a Content-Type header to "type/subtype".
// Malformed headers yield "".
func ParseContentType(header string) string {
	if strings.TrimSpace(header) == "" {
		return ""
	}
	mt := contenttype.NewMediaType(header)
	if mt.Type == "" || mt.Subtype == "" {
		return ""
	}
	return strings.ToLower(mt.Type + "/" + mt.Subtype)
}
