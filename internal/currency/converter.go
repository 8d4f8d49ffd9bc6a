package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/upstream"
)

var ErrInvalidRate = errors.New("exchange rate must be positive")

// RateCache stores the latest successful rate per currency code.
type RateCache interface {
	GetRate(ctx context.Context, code string) (float64, bool)
	SetRate(ctx context.Context, code string, rate float64, ttl time.Duration)
}

type Config struct {
	BaseURL       string
	APIKey        string
	LocalCurrency string
	Timeout       time.Duration
	CacheTTL      time.Duration
}

// Converter turns local-currency amounts into USD cents using a rate API
// that quotes currencies against USD.
type Converter struct {
	cfg        Config
	httpClient *http.Client
	cache      RateCache
}

type latestResponse struct {
	Data map[string]struct {
		Code  string  `json:"code"`
		Value float64 `json:"value"`
	} `json:"data"`
}

func NewConverter(cfg Config, cache RateCache) *Converter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.LocalCurrency == "" {
		cfg.LocalCurrency = "RUB"
	}
	return &Converter{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      cache,
	}
}

// ToUSDCents converts amount (local currency) to whole USD cents, truncating.
// Any failure is returned as an *upstream.Error.
func (c *Converter) ToUSDCents(ctx context.Context, amount float64) (int64, error) {
	rate, err := c.Rate(ctx)
	if err != nil {
		return 0, err
	}
	cents := int64(math.Floor(amount / rate * 100))
	return cents, nil
}

// Rate returns how many units of local currency one USD buys.
func (c *Converter) Rate(ctx context.Context) (float64, error) {
	code := c.cfg.LocalCurrency
	if c.cache != nil {
		if rate, ok := c.cache.GetRate(ctx, code); ok {
			return rate, nil
		}
	}

	rate, err := c.fetchRate(ctx, code)
	if err != nil {
		return 0, err
	}

	if c.cache != nil && c.cfg.CacheTTL > 0 {
		c.cache.SetRate(ctx, code, rate, c.cfg.CacheTTL)
	}
	return rate, nil
}

func (c *Converter) fetchRate(ctx context.Context, code string) (float64, error) {
	q := url.Values{}
	q.Set("apikey", c.cfg.APIKey)
	q.Set("currencies", code)
	endpoint := c.cfg.BaseURL + "v3/latest?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, upstream.New(upstream.ExchangeRate, "build request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, upstream.New(upstream.ExchangeRate, "fetch rate", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("exchange rate api returned non-200", "status", resp.StatusCode, "currency", code)
		return 0, &upstream.Error{Service: upstream.ExchangeRate, Op: "fetch rate", Status: resp.StatusCode}
	}

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, upstream.New(upstream.ExchangeRate, "decode rate", err)
	}

	entry, ok := body.Data[code]
	if !ok {
		return 0, upstream.New(upstream.ExchangeRate, "decode rate", fmt.Errorf("currency %s missing from response", code))
	}
	if entry.Value <= 0 {
		return 0, upstream.New(upstream.ExchangeRate, "decode rate", ErrInvalidRate)
	}
	return entry.Value, nil
}
