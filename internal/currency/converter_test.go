package currency

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/upstream"
)

type mapCache struct {
	rates map[string]float64
}

func (m *mapCache) GetRate(_ context.Context, code string) (float64, bool) {
	r, ok := m.rates[code]
	return r, ok
}

func (m *mapCache) SetRate(_ context.Context, code string, rate float64, _ time.Duration) {
	m.rates[code] = rate
}

func rateServer(t *testing.T, status int, body string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if r.URL.Path != "/v3/latest" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("currencies") != "RUB" {
			t.Errorf("unexpected currencies %q", r.URL.Query().Get("currencies"))
		}
		if r.URL.Query().Get("apikey") != "key" {
			t.Errorf("api key not forwarded")
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestToUSDCents(t *testing.T) {
	srv := rateServer(t, http.StatusOK, `{"data":{"RUB":{"code":"RUB","value":100}}}`, nil)
	c := NewConverter(Config{BaseURL: srv.URL + "/", APIKey: "key", LocalCurrency: "RUB"}, nil)

	cents, err := c.ToUSDCents(context.Background(), 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cents != 1000 {
		t.Fatalf("expected 1000 cents, got %d", cents)
	}
}

func TestToUSDCentsTruncates(t *testing.T) {
	srv := rateServer(t, http.StatusOK, `{"data":{"RUB":{"code":"RUB","value":92.5}}}`, nil)
	c := NewConverter(Config{BaseURL: srv.URL + "/", APIKey: "key"}, nil)

	cents, err := c.ToUSDCents(context.Background(), 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 1000 / 92.5 = 10.8108... USD
	if cents != 1081 {
		t.Fatalf("expected 1081 cents, got %d", cents)
	}
}

func TestRateFailuresAreUpstreamErrors(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
	}{
		"non-200":       {http.StatusTooManyRequests, `{"message":"limit"}`},
		"bad json":      {http.StatusOK, `not json`},
		"missing code":  {http.StatusOK, `{"data":{"EUR":{"value":0.9}}}`},
		"zero rate":     {http.StatusOK, `{"data":{"RUB":{"value":0}}}`},
		"negative rate": {http.StatusOK, `{"data":{"RUB":{"value":-3}}}`},
	}
	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			srv := rateServer(t, tc.status, tc.body, nil)
			c := NewConverter(Config{BaseURL: srv.URL + "/", APIKey: "key"}, nil)

			_, err := c.ToUSDCents(context.Background(), 1000)
			ue, ok := upstream.As(err)
			if !ok {
				t.Fatalf("expected upstream error, got %v", err)
			}
			if ue.Service != upstream.ExchangeRate {
				t.Fatalf("unexpected service %q", ue.Service)
			}
		})
	}
}

func TestRateUsesCache(t *testing.T) {
	var hits atomic.Int32
	srv := rateServer(t, http.StatusOK, `{"data":{"RUB":{"value":50}}}`, &hits)
	cache := &mapCache{rates: map[string]float64{}}
	c := NewConverter(Config{BaseURL: srv.URL + "/", APIKey: "key", CacheTTL: time.Minute}, cache)

	for i := 0; i < 3; i++ {
		rate, err := c.Rate(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rate != 50 {
			t.Fatalf("expected rate 50, got %v", rate)
		}
	}
	if hits.Load() != 1 {
		t.Fatalf("expected one upstream call, got %d", hits.Load())
	}
}

func TestUnreachableRateAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL + "/"
	srv.Close()

	c := NewConverter(Config{BaseURL: base, APIKey: "key", Timeout: time.Second}, nil)
	if _, err := c.Rate(context.Background()); err == nil {
		t.Fatal("expected error for unreachable api")
	} else if _, ok := upstream.As(err); !ok {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
