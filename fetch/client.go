package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gnolang/tagscan/scrape"
)

var (
	// ErrStatus reports a response status other than 200 OK.
	ErrStatus = errors.New("unexpected response status")

	// ErrBodyTooLarge reports a response body above Config.MaxBody.
	ErrBodyTooLarge = errors.New("response body too large")
)

// Config defines client behavior.
type Config struct {
	Timeout   time.Duration
	Retries   int
	UserAgent string
	MaxBody   int64
	// RateLimit caps requests per second. Zero or less means unlimited.
	RateLimit float64
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		Timeout:   30 * time.Second,
		Retries:   3,
		UserAgent: "tagscan/1.0",
		MaxBody:   10 << 20,
	}
}

// Client retrieves documents over HTTP. Transport failures and 5xx
// responses are retried; any final status other than 200 is an error.
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
	maxBody int64
	logger  *zap.Logger
}

// Response is a fully read response body with the metadata needed to
// decode it.
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Text decodes the body to UTF-8, see Decode.
func (r *Response) Text() (string, string, error) {
	return Decode(r.Body, r.ContentType)
}

// New creates a client. A nil logger disables logging.
func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxBody <= 0 {
		cfg.MaxBody = def.MaxBody
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = max(cfg.Retries, 0)
	retryClient.RetryWaitMin = 200 * time.Millisecond
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = retryLogger{logger.Sugar()}
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	restyClient := resty.NewWithClient(retryClient.StandardClient())
	restyClient.
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetDoNotParseResponse(true)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(int(cfg.RateLimit), 1))
	}

	return &Client{
		resty:   restyClient,
		limiter: limiter,
		maxBody: cfg.MaxBody,
		logger:  logger,
	}
}

// Get retrieves url.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	return c.do(req, http.MethodGet, url)
}

// Post sends form, which must already be URL encoded, with the given
// Referer header. An empty referer is not sent.
func (c *Client) Post(ctx context.Context, url, form, referer string) (*Response, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	req.
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody(form)
	if referer != "" {
		req.SetHeader("Referer", referer)
	}
	return c.do(req, http.MethodPost, url)
}

// Scrape retrieves url and lexes the decoded body.
func (c *Client) Scrape(ctx context.Context, url string) (*scrape.Scraper, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	return c.scraper(resp)
}

// ScrapePost is Scrape for a form submission.
func (c *Client) ScrapePost(ctx context.Context, url, form, referer string) (*scrape.Scraper, error) {
	resp, err := c.Post(ctx, url, form, referer)
	if err != nil {
		return nil, err
	}
	return c.scraper(resp)
}

func (c *Client) scraper(resp *Response) (*scrape.Scraper, error) {
	text, name, err := resp.Text()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", resp.URL, err)
	}
	c.logger.Debug("decoded response",
		zap.String("url", resp.URL),
		zap.String("charset", name),
		zap.Int("bytes", len(resp.Body)))
	return scrape.FromString(text)
}

// request waits for the rate limiter and creates a request bound to ctx.
func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}
	return c.resty.R().SetContext(ctx), nil
}

func (c *Client) do(req *resty.Request, method, url string) (*Response, error) {
	start := time.Now()
	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	raw := resp.RawBody()
	defer raw.Close()

	c.logger.Debug("http request",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode() != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(raw, c.maxBody))
		return nil, fmt.Errorf("%w: %s %s: %s", ErrStatus, method, url, resp.Status())
	}

	body, err := io.ReadAll(io.LimitReader(raw, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, url, err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrBodyTooLarge, url, c.maxBody)
	}

	return &Response{
		URL:         url,
		StatusCode:  resp.StatusCode(),
		ContentType: resp.Header().Get("Content-Type"),
		Body:        body,
	}, nil
}

// retryLogger routes retryablehttp's leveled logging to zap.
type retryLogger struct {
	s *zap.SugaredLogger
}

func (l retryLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l retryLogger) Info(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l retryLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l retryLogger) Warn(msg string, kv ...interface{}) { l.s.Warnw(msg, kv...) }

var _ retryablehttp.LeveledLogger = retryLogger{}
