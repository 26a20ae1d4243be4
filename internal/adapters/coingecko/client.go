package coingecko

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/maypok86/otter"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	errs "github.com/iamwavecut/powerbot/internal/errors"
	"github.com/iamwavecut/powerbot/internal/observability"
)

const (
	DefaultBaseURL = "https://api.coingecko.com/api/v3"

	endpointSimplePrice = "simple/price"
	endpointMarkets     = "coins/markets"

	quoteCacheCapacity = 1000
	limiterBurst       = 5
)

type (
	Options struct {
		BaseURL           string
		Timeout           time.Duration
		RequestsPerMinute int
		CacheTTL          time.Duration
	}

	// Quote is the USD price of one coin.
	Quote struct {
		USD       float64
		Change24h float64
		MarketCap float64
	}

	MarketCoin struct {
		ID                       string  `json:"id"`
		Symbol                   string  `json:"symbol"`
		Name                     string  `json:"name"`
		CurrentPrice             float64 `json:"current_price"`
		MarketCap                float64 `json:"market_cap"`
		PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
	}

	simplePrice struct {
		USD       *float64 `json:"usd"`
		Change24h float64  `json:"usd_24h_change"`
		MarketCap float64  `json:"usd_market_cap"`
	}

	Client struct {
		baseURL string
		http    *http.Client
		limiter *rate.Limiter
		quotes  *otter.Cache[string, Quote]
		group   singleflight.Group
	}
)

func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	limit := rate.Inf
	if opts.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(opts.RequestsPerMinute))
	}

	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(limit, limiterBurst),
	}

	if opts.CacheTTL > 0 {
		cache, err := otter.MustBuilder[string, Quote](quoteCacheCapacity).WithTTL(opts.CacheTTL).Build()
		if err != nil {
			return nil, errors.Wrap(err, "failed to create quote cache")
		}
		c.quotes = &cache
	}
	return c, nil
}

// Price returns the USD quote for a CoinGecko coin id. An id CoinGecko does
// not know yields errs.ErrNotFound.
func (c *Client) Price(ctx context.Context, coinID string) (Quote, error) {
	coinID = strings.ToLower(strings.TrimSpace(coinID))
	if coinID == "" {
		return Quote{}, errors.WithMessage(errs.ErrNotFound, "empty coin id")
	}
	if c.quotes != nil {
		if q, ok := c.quotes.Get(coinID); ok {
			return q, nil
		}
	}

	// Waiters share one fetch; it must outlive the caller that started it.
	shared := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do("price:"+coinID, func() (any, error) {
		var resp map[string]simplePrice
		params := url.Values{
			"ids":                 {coinID},
			"vs_currencies":       {"usd"},
			"include_24hr_change": {"true"},
			"include_market_cap":  {"true"},
		}
		if err := c.get(shared, endpointSimplePrice, params, &resp); err != nil {
			return Quote{}, err
		}

		data, ok := resp[coinID]
		if !ok || data.USD == nil {
			return Quote{}, errors.WithMessagef(errs.ErrNotFound, "coin %q", coinID)
		}
		q := Quote{USD: *data.USD, Change24h: data.Change24h, MarketCap: data.MarketCap}
		if c.quotes != nil {
			c.quotes.Set(coinID, q)
		}
		return q, nil
	})
	if err != nil {
		return Quote{}, err
	}
	return v.(Quote), nil
}

// TopCoins returns the first limit coins by market cap.
func (c *Client) TopCoins(ctx context.Context, limit int) ([]MarketCoin, error) {
	if limit <= 0 {
		limit = 10
	}
	key := "markets:" + strconv.Itoa(limit)
	shared := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(key, func() (any, error) {
		var coins []MarketCoin
		params := url.Values{
			"vs_currency": {"usd"},
			"order":       {"market_cap_desc"},
			"per_page":    {strconv.Itoa(limit)},
			"page":        {"1"},
			"sparkline":   {"false"},
		}
		if err := c.get(shared, endpointMarkets, params, &coins); err != nil {
			return nil, err
		}
		return coins, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]MarketCoin), nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) (err error) {
	ctx, span := observability.Tracer().Start(ctx, "coingecko."+endpoint, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	entry := log.WithFields(log.Fields{
		"object":   "CoinGecko",
		"endpoint": endpoint,
	})
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			entry.WithField("error", err.Error()).Warn("price api request failed")
		}
		observability.RecordPriceAPIRequest(endpoint, status)
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return errors.WithMessage(errs.ErrExternal, "rate limiter: "+err.Error())
	}

	u := c.baseURL + "/" + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return errors.WithMessage(errs.ErrExternal, err.Error())
	}
	defer res.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", res.StatusCode))

	if res.StatusCode != http.StatusOK {
		return errors.WithMessagef(errs.ErrExternal, "%s: unexpected status %d", endpoint, res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return errors.WithMessagef(errs.ErrExternal, "%s: decode: %v", endpoint, err)
	}
	entry.Trace("price api request done")
	return nil
}
