package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClientSendAndParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/quote":
			if r.URL.Query().Get("symbols") != "NVDA" || r.Header.Get("User-Agent") != "ua" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_, _ = w.Write([]byte(`{"symbol":"NVDA","price":120.5}`))
		case "/throttled":
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(http.StatusTooManyRequests)
		case "/big":
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		}
	}))
	defer srv.Close()

	c := NewClient(WithTimeout(time.Second), WithMaxBodyBytes(32))
	ctx := context.Background()

	var quote struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
	}
	err := c.SendAndParse(ctx, &RequestOptions{
		URL:         srv.URL + "/quote",
		Headers:     map[string]string{"User-Agent": "ua"},
		QueryParams: map[string][]string{"symbols": {"NVDA"}},
	}, &quote)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if quote.Symbol != "NVDA" || quote.Price != 120.5 {
		t.Fatalf("unexpected quote %+v", quote)
	}

	var raw []byte
	err = c.SendAndParse(ctx, &RequestOptions{URL: srv.URL + "/throttled"}, &raw)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != http.StatusTooManyRequests || !se.Retryable() || se.RetryAfter != 3*time.Second {
		t.Fatalf("unexpected status error %+v", se)
	}

	if err := c.SendAndParse(ctx, &RequestOptions{URL: srv.URL + "/big"}, &raw); err == nil {
		t.Fatal("expected body limit error")
	}
	if err := c.SendAndParse(ctx, &RequestOptions{URL: srv.URL + "/big"}, nil); err != nil {
		t.Fatalf("discard: %v", err)
	}
}

func TestParseRetryAfter(t *testing.T) {
	cases := map[string]time.Duration{
		"":                              0,
		"5":                             5 * time.Second,
		"-1":                            0,
		"Wed, 21 Oct 2015 07:28:00 GMT": 0,
	}
	for in, want := range cases {
		if got := parseRetryAfter(in); got != want {
			t.Fatalf("parseRetryAfter(%q) = %v, want %v", in, got, want)
		}
	}
}
