package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"SwingArrow/internal/domain/models"
	domrepo "SwingArrow/internal/domain/repository"
	icache "SwingArrow/internal/service/cache"
	xhttp "SwingArrow/pkg/http"
	applogger "SwingArrow/pkg/logger"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultCookieURL = "https://fc.yahoo.com"
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	fundamentalsModules = "financialData,defaultKeyStatistics,summaryDetail"
)

var (
	ErrNotFound  = fmt.Errorf("yahoo: %w", domrepo.ErrNotFound)
	ErrMalformed = errors.New("yahoo: malformed payload")
	ErrUpstream  = errors.New("yahoo: upstream error")
)

// Client is a QuoteSource backed by the public Yahoo Finance JSON endpoints.
type Client struct {
	baseURL   string
	cookieURL string
	userAgent string
	http      *xhttp.Client
	limiter   *rate.Limiter
	attempts  int
	backoff   time.Duration
	cache     icache.BytesCache
	cacheTTL  time.Duration
	useCrumb  bool
	logger    *applogger.Logger

	crumbMu sync.Mutex
	crumb   string
}

var _ domrepo.QuoteSource = (*Client)(nil)

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithCookieURL(u string) Option {
	return func(c *Client) { c.cookieURL = u }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = xhttp.NewClient(xhttp.WithTimeout(d), xhttp.WithCookieJar(nil))
		}
	}
}

// WithRateLimit caps upstream requests per second. Zero disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRetry sets the total number of attempts and the linear backoff step.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

// WithCache reuses raw responses for ttl.
func WithCache(cache icache.BytesCache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithCrumb enables the cookie+crumb handshake the quote and quoteSummary
// endpoints require from most networks.
func WithCrumb(enabled bool) Option {
	return func(c *Client) { c.useCrumb = enabled }
}

func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		cookieURL: DefaultCookieURL,
		userAgent: defaultUserAgent,
		http:      xhttp.NewClient(xhttp.WithTimeout(10*time.Second), xhttp.WithCookieJar(nil)),
		limiter:   rate.NewLimiter(rate.Limit(5), 5),
		attempts:  3,
		backoff:   200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Quote fetches the current quote snapshot.
func (c *Client) Quote(ctx context.Context, symbol string) (models.Quote, error) {
	var out models.Quote
	err := c.get(ctx, "/v7/finance/quote", url.Values{"symbols": {symbol}}, true, func(body []byte) (err error) {
		out, err = parseQuote(symbol, body)
		return err
	})
	if err != nil {
		return models.Quote{}, fmt.Errorf("quote %s: %w", symbol, err)
	}
	return out, nil
}

// Fundamentals fetches financialData, defaultKeyStatistics and summaryDetail.
func (c *Client) Fundamentals(ctx context.Context, symbol string) (models.Fundamentals, error) {
	var out models.Fundamentals
	path := "/v10/finance/quoteSummary/" + url.PathEscape(symbol)
	err := c.get(ctx, path, url.Values{"modules": {fundamentalsModules}}, true, func(body []byte) (err error) {
		out, err = parseFundamentals(symbol, body)
		return err
	})
	if err != nil {
		return models.Fundamentals{}, fmt.Errorf("fundamentals %s: %w", symbol, err)
	}
	return out, nil
}

// History fetches OHLCV bars in [from, to] at the given interval.
func (c *Client) History(ctx context.Context, symbol string, from, to time.Time, interval domrepo.Interval) ([]models.Bar, error) {
	var out []models.Bar
	path := "/v8/finance/chart/" + url.PathEscape(symbol)
	q := url.Values{
		"period1":  {strconv.FormatInt(from.Unix(), 10)},
		"period2":  {strconv.FormatInt(to.Unix(), 10)},
		"interval": {string(interval)},
		"events":   {"history"},
	}
	err := c.get(ctx, path, q, false, func(body []byte) (err error) {
		out, err = parseChart(symbol, body)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", symbol, err)
	}
	return out, nil
}

// News returns up to limit recent headlines for symbol.
func (c *Client) News(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error) {
	var out []models.NewsItem
	q := url.Values{
		"q":           {symbol},
		"newsCount":   {strconv.Itoa(limit)},
		"quotesCount": {"0"},
	}
	err := c.get(ctx, "/v1/finance/search", q, false, func(body []byte) (err error) {
		out, err = parseNews(body, limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("news %s: %w", symbol, err)
	}
	return out, nil
}

// get performs a GET with pacing and retry, then hands the body to decode.
// Only bodies that decode cleanly are cached, so an error envelope or a
// malformed payload is never replayed.
func (c *Client) get(ctx context.Context, path string, q url.Values, needsCrumb bool, decode func([]byte) error) error {
	key := "yahoo:" + path + "?" + q.Encode()
	if c.cache != nil {
		if b, ok, err := c.cache.GetBytes(key); err != nil {
			c.warn("yahoo cache_get_error", applogger.String("key", key), applogger.Error(err))
		} else if ok {
			if err := decode(b); err == nil {
				return nil
			}
			c.warn("yahoo cache_decode_error", applogger.String("key", key))
		}
	}

	var err error
	var body []byte
	for i := 1; i <= c.attempts; i++ {
		body, err = c.fetch(ctx, path, q, needsCrumb)
		if err == nil {
			break
		}
		if !retryable(err) || i == c.attempts {
			break
		}
		c.debug("yahoo retry", applogger.String("path", path), applogger.Int("attempt", i), applogger.Error(err))
		select {
		case <-time.After(retryDelay(err, time.Duration(i)*c.backoff)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err != nil {
		return err
	}
	if err := decode(body); err != nil {
		return err
	}

	if c.cache != nil && c.cacheTTL > 0 {
		if err := c.cache.SetBytes(key, body, c.cacheTTL); err != nil {
			c.warn("yahoo cache_set_error", applogger.String("key", key), applogger.Error(err))
		}
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, path string, q url.Values, needsCrumb bool) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	params := make(map[string][]string, len(q)+1)
	for k, v := range q {
		params[k] = v
	}
	if needsCrumb && c.useCrumb {
		crumb, err := c.ensureCrumb(ctx)
		if err != nil {
			return nil, fmt.Errorf("crumb: %w", err)
		}
		params["crumb"] = []string{crumb}
	}

	var body []byte
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + path,
		Headers:     map[string]string{"User-Agent": c.userAgent, "Accept": "application/json"},
		QueryParams: params,
	}, &body)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) {
			switch se.Code {
			case http.StatusNotFound:
				// Yahoo answers unknown symbols with 404 plus an error envelope.
				return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
			case http.StatusUnauthorized, http.StatusForbidden:
				c.resetCrumb()
			}
		}
		return nil, err
	}
	return body, nil
}

func (c *Client) ensureCrumb(ctx context.Context) (string, error) {
	c.crumbMu.Lock()
	defer c.crumbMu.Unlock()
	if c.crumb != "" {
		return c.crumb, nil
	}

	// fc.yahoo.com answers 404 but sets the session cookie.
	_ = c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     c.cookieURL,
		Headers: map[string]string{"User-Agent": c.userAgent},
	}, nil)

	var body []byte
	if err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     c.baseURL + "/v1/test/getcrumb",
		Headers: map[string]string{"User-Agent": c.userAgent},
	}, &body); err != nil {
		return "", err
	}
	crumb := strings.TrimSpace(string(body))
	if crumb == "" || strings.HasPrefix(crumb, "<") {
		return "", fmt.Errorf("%w: empty crumb", ErrMalformed)
	}
	c.crumb = crumb
	return crumb, nil
}

func (c *Client) resetCrumb() {
	c.crumbMu.Lock()
	c.crumb = ""
	c.crumbMu.Unlock()
}

// retryDelay honours a provider Retry-After when it asks for longer than the
// local backoff.
func retryDelay(err error, backoff time.Duration) time.Duration {
	var se *xhttp.StatusError
	if errors.As(err, &se) && se.RetryAfter > backoff {
		return se.RetryAfter
	}
	return backoff
}

func retryable(err error) bool {
	if errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Retryable() || se.Code == http.StatusUnauthorized
	}
	return true
}

func (c *Client) warn(msg string, fields ...applogger.Field) {
	if c.logger != nil {
		c.logger.Warn(msg, fields...)
	}
}

func (c *Client) debug(msg string, fields ...applogger.Field) {
	if c.logger != nil {
		c.logger.Debug(msg, fields...)
	}
}
