package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"polyalpha/internal/adapters/config"
	"polyalpha/internal/adapters/redis"
	"polyalpha/internal/metrics"
	"polyalpha/pkg/errors"
	"polyalpha/pkg/logger"
)

// upstream page size for the market list; filtering happens locally
const marketFetchLimit = 100

const maxUpstreamBody = 4 << 20

// Cache stores JSON-encodable values. *redis.Client implements it.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context, string, interface{}) error {
	return redis.ErrCacheMiss
}

func (NopCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }

// UpstreamError is a non-2xx answer from the gamma API.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Body       json.RawMessage
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("gamma API %s returned %d", e.Endpoint, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return errors.ErrNotFound
	}
	return errors.ErrExternal
}

// Client talks to the Polymarket gamma API.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	cache     Cache
	slugTTL   time.Duration
	marketTTL time.Duration
	minVolume decimal.Decimal
	now       func() time.Time
	log       *logger.Logger
}

// NewClient creates a gamma API client. cache may be nil.
func NewClient(cfg config.PolymarketConfig, cache Cache) *Client {
	if cache == nil {
		cache = NopCache{}
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: cfg.Timeout},
		cache:     cache,
		slugTTL:   cfg.SlugCacheTTL,
		marketTTL: cfg.MarketCacheTTL,
		minVolume: decimal.NewFromFloat(cfg.MinVolume),
		now:       time.Now,
		log:       logger.Get().With("component", "polymarket"),
	}
}

// IsConditionID reports whether id is already a hex condition id.
func IsConditionID(id string) bool {
	return strings.HasPrefix(id, "0x")
}

// ResolveConditionID turns a market slug into its condition id.
// Ids that already start with "0x" are returned unchanged.
func (c *Client) ResolveConditionID(ctx context.Context, marketID string) (string, error) {
	if IsConditionID(marketID) {
		return marketID, nil
	}

	key := redis.Key("slug", marketID)
	var cached string
	if err := c.cache.Get(ctx, key, &cached); err == nil && cached != "" {
		metrics.RecordUpstreamCacheHit("markets_by_slug")
		return cached, nil
	}

	var markets []Market
	q := url.Values{"slug": {marketID}}
	if err := c.getJSON(ctx, "markets_by_slug", "/markets", q, &markets); err != nil {
		return "", errors.Wrapf(err, "look up market %q", marketID)
	}

	c.log.Debugw("market slug lookup", "slug", marketID, "results", len(markets))
	if len(markets) == 0 || markets[0].ConditionID == "" {
		return "", errors.Wrapf(errors.ErrNotFound, "market %q", marketID)
	}

	conditionID := markets[0].ConditionID
	if err := c.cache.Set(ctx, key, conditionID, c.slugTTL); err != nil {
		c.log.Warnw("failed to cache slug", "slug", marketID, "error", err)
	}
	return conditionID, nil
}

// FetchComments returns one page of comments for a condition id, as the
// upstream JSON objects.
func (c *Client) FetchComments(ctx context.Context, conditionID string, limit, offset int) ([]json.RawMessage, error) {
	q := url.Values{
		"_market": {conditionID},
		"_limit":  {strconv.Itoa(limit)},
		"_offset": {strconv.Itoa(offset)},
	}

	var comments []json.RawMessage
	if err := c.getJSON(ctx, "comments", "/comments", q, &comments); err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []json.RawMessage{}
	}

	c.log.Infow("fetched comments", "market", conditionID, "count", len(comments))
	return comments, nil
}

// ListMarkets returns active markets worth browsing, most traded first.
func (c *Client) ListMarkets(ctx context.Context, limit, offset int) ([]Market, error) {
	key := redis.Key("markets", "active", strconv.Itoa(offset))

	var markets []Market
	if err := c.cache.Get(ctx, key, &markets); err == nil {
		metrics.RecordUpstreamCacheHit("markets")
	} else {
		q := url.Values{
			"limit":  {strconv.Itoa(marketFetchLimit)},
			"offset": {strconv.Itoa(offset)},
			"closed": {"false"},
			"active": {"true"},
		}
		if err := c.getJSON(ctx, "markets", "/markets", q, &markets); err != nil {
			return nil, err
		}
		if err := c.cache.Set(ctx, key, markets, c.marketTTL); err != nil {
			c.log.Warnw("failed to cache markets", "error", err)
		}
	}

	filtered := FilterActive(markets, c.now(), c.minVolume, limit)

	top := "n/a"
	if len(filtered) > 0 {
		top = "$" + humanize.CommafWithDigits(filtered[0].Volume.InexactFloat64(), 0)
	}
	c.log.Infow("filtered markets",
		"fetched", len(markets),
		"kept", len(filtered),
		"min_volume", "$"+humanize.Commaf(c.minVolume.InexactFloat64()),
		"top_volume", top,
	)
	return filtered, nil
}

// GetMarket returns the upstream market object for an id.
func (c *Client) GetMarket(ctx context.Context, marketID string) (json.RawMessage, error) {
	var market json.RawMessage
	if err := c.getJSON(ctx, "market", "/markets/"+url.PathEscape(marketID), nil, &market); err != nil {
		return nil, err
	}
	return market, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, path string, query url.Values, dest interface{}) (err error) {
	start := time.Now()
	defer func() { metrics.RecordUpstreamCall(endpoint, time.Since(start), err) }()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrap(err, "create gamma request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return errors.Wrapf(errors.ErrTimeout, "gamma %s: %v", endpoint, err)
		}
		return errors.Wrapf(errors.ErrUnavailable, "gamma %s: %v", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		return errors.Wrapf(errors.ErrUnavailable, "read gamma %s: %v", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		upstream := &UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode}
		if json.Valid(body) {
			upstream.Body = body
		}
		return upstream
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return errors.Wrapf(errors.ErrExternal, "decode gamma %s: %v", endpoint, err)
	}
	return nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout())
}
