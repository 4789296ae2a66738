package connectivity

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ProberConfig configures reachability probing of the remote application.
type ProberConfig struct {
	URL       string
	Interval  time.Duration
	Timeout   time.Duration
	Retries   int
	UserAgent string
}

// Prober checks whether the remote application answers at all. Any HTTP
// response counts as reachable; only transport errors do not.
type Prober struct {
	cfg     ProberConfig
	client  *resty.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewProber creates a prober with a retrying transport.
func NewProber(cfg ProberConfig, log *zap.Logger) *Prober {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "webshell-probe/1.0"
	}
	if log == nil {
		log = zap.NewNop()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.Retries
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.Logger = nil
	retryClient.CheckRetry = retryTransportErrors
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.HTTPClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	restyClient := resty.NewWithClient(retryClient.StandardClient()).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent)

	return &Prober{
		cfg:     cfg,
		client:  restyClient,
		limiter: rate.NewLimiter(rate.Every(cfg.Interval), 1),
		log:     log,
	}
}

// retryTransportErrors retries only when no response arrived at all.
func retryTransportErrors(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// Check issues a single HEAD request against the application URL.
func (p *Prober) Check(ctx context.Context) error {
	resp, err := p.client.R().SetContext(ctx).Head(p.cfg.URL)
	if err != nil {
		return fmt.Errorf("probe %s: %w", p.cfg.URL, err)
	}
	p.log.Debug("Probe answered", zap.Int("status", resp.StatusCode()))
	return nil
}

// Run probes until the application answers or ctx is done. onReachable is
// called at most once.
func (p *Prober) Run(ctx context.Context, onReachable func()) error {
	for {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
		err := p.Check(ctx)
		if err == nil {
			p.log.Info("Remote application reachable", zap.String("url", p.cfg.URL))
			onReachable()
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.log.Debug("Remote application unreachable", zap.Error(err))
	}
}
