package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

type lookbackRequest struct {
	Symbol string `param:"symbol" validate:"required,ticker"`
	Days   int    `query:"days" default:"5" validate:"gte=1,lte=30"`
}

func bindLookback(symbol, query string) (*lookbackRequest, []ValidationError) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/lookback"+query, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("symbol")
	c.SetParamValues(symbol)
	out := &lookbackRequest{}
	return out, ReadAndValidateRequest(c, out)
}

func TestReadAndValidateRequest(t *testing.T) {
	for _, sym := range []string{"NVDA", "brk-b", "BF.B", "^GSPC", "EURUSD=X"} {
		req, errs := bindLookback(sym, "")
		if errs != nil {
			t.Fatalf("%s: unexpected errors %+v", sym, errs)
		}
		if req.Days != 5 {
			t.Fatalf("%s: default days not applied, got %d", sym, req.Days)
		}
	}

	_, errs := bindLookback("NV$DA", "")
	if len(errs) != 1 || errs[0].Code != "ERR_TICKER" || errs[0].Field != "symbol" {
		t.Fatalf("unexpected ticker errors %+v", errs)
	}

	_, errs = bindLookback("NVDA", "?days=40")
	if len(errs) != 1 || errs[0].Code != "ERR_LTE" || errs[0].Field != "days" {
		t.Fatalf("unexpected range errors %+v", errs)
	}
	if errs[0].Params["max"] != "30" {
		t.Fatalf("missing max param %+v", errs[0].Params)
	}

	_, errs = bindLookback("NVDA", "?days=many")
	if len(errs) != 1 || errs[0].Code != "ERR_BIND" {
		t.Fatalf("unexpected bind errors %+v", errs)
	}
}

func TestAppErrorResponse(t *testing.T) {
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	if err := AppErrorResponse(c, RateLimitedError(1500*time.Millisecond)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected code %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("unexpected Retry-After %q", got)
	}
	var resp struct {
		Status int        `json:"status"`
		Data   []AppError `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != http.StatusTooManyRequests || len(resp.Data) != 1 || resp.Data[0].Code != CodeRateLimited {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	if err := AppErrorResponse(c, errors.New("boom")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != http.StatusInternalServerError || resp.Data[0].Code != CodeInternal {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
	if rec.Header().Get("Retry-After") != "" {
		t.Fatal("Retry-After set on internal error")
	}
}
