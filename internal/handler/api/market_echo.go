package api

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/singleflight"

	"SwingArrow/internal/domain/models"
	domrepo "SwingArrow/internal/domain/repository"
	"SwingArrow/internal/domain/service"
	icache "SwingArrow/internal/service/cache"
	"SwingArrow/internal/service/metrics"
	"SwingArrow/internal/service/ratelimit"
	"SwingArrow/internal/services/analytics"
	"SwingArrow/internal/services/features"
	"SwingArrow/internal/usecase"
	xhttp "SwingArrow/pkg/http"
	xlogger "SwingArrow/pkg/logger"
	"SwingArrow/pkg/util"
)

// MarketEchoHandler serves the scanner and single-instrument endpoints.
type MarketEchoHandler struct {
	logger   *xlogger.Logger
	scanner  service.Scanner
	analyzer service.MarketAnalyzer
	cache    icache.BytesCache
	rl       *ratelimit.Limiter
	scans    singleflight.Group

	scannerTTL  time.Duration
	responseTTL time.Duration
	rlCapacity  float64
	rlRefill    float64
	now         func() time.Time
}

type HandlerOption func(*MarketEchoHandler)

// WithCacheTTL sets how long the scanner batch and the per-symbol responses
// are reused.
func WithCacheTTL(scanner, response time.Duration) HandlerOption {
	return func(h *MarketEchoHandler) {
		if scanner > 0 {
			h.scannerTTL = scanner
		}
		if response > 0 {
			h.responseTTL = response
		}
	}
}

// WithScannerRateLimit sets the per-client token bucket on the scanner.
func WithScannerRateLimit(capacity, refillPerSec float64) HandlerOption {
	return func(h *MarketEchoHandler) {
		if capacity > 0 {
			h.rlCapacity = capacity
		}
		if refillPerSec > 0 {
			h.rlRefill = refillPerSec
		}
	}
}

func WithHandlerClock(now func() time.Time) HandlerOption {
	return func(h *MarketEchoHandler) { h.now = now }
}

func NewMarketEchoHandler(logger *xlogger.Logger, scanner service.Scanner, analyzer service.MarketAnalyzer, cache icache.BytesCache, opts ...HandlerOption) *MarketEchoHandler {
	metrics.Register()
	h := &MarketEchoHandler{
		logger:      logger,
		scanner:     scanner,
		analyzer:    analyzer,
		cache:       cache,
		rl:          ratelimit.New(),
		scannerTTL:  60 * time.Second,
		responseTTL: 30 * time.Second,
		rlCapacity:  10,
		rlRefill:    1,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = xlogger.Nop()
	}
	return h
}

func (h *MarketEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/scanner", h.Scanner)
	g.GET("/rs/:symbol", h.RelativeStrength)
	g.GET("/market-condition", h.MarketCondition)
	g.GET("/checklist/:symbol", h.Checklist)
	g.GET("/history/:symbol", h.History)
	g.POST("/position-size", h.PositionSize)
	g.GET("/quote/:symbol", h.Quote)
	g.GET("/news/:symbol", h.News)
	g.GET("/market-status", h.MarketStatus)
}

func (h *MarketEchoHandler) Scanner(c echo.Context) error {
	defer h.observe("scanner", time.Now())
	req := &models.ScannerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":scanner", h.rlCapacity, h.rlRefill) {
		h.logger.Warn("market.scanner rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.AppErrorResponse(c, xhttp.RateLimitedError(time.Duration(float64(time.Second)/h.rlRefill)))
	}

	batch := h.loadBatch(c.Request().Context())

	filter := analytics.ScanFilter{
		MinRS:    req.MinRS,
		MinEPS:   req.MinEPS,
		MinScore: req.MinScore,
		Stage:    req.Stage,
		VolSurge: req.VolSurge,
		SortKey:  req.Sort,
		Desc:     req.Dir == "desc",
	}
	return xhttp.SuccessResponse(c, models.ScanView{
		ID:          batch.ID,
		GeneratedAt: batch.GeneratedAt,
		Summary:     analytics.Summarize(batch.Rows),
		Rows:        filter.Apply(batch.Rows),
	})
}

// loadBatch reuses the cached batch written by the refresher or a previous
// request. On a miss one universe scan runs for all concurrent callers. The
// scan is detached from the request so a client hanging up cannot poison the
// cached batch; per-symbol task timeouts still bound it.
func (h *MarketEchoHandler) loadBatch(ctx context.Context) models.ScanBatch {
	var batch models.ScanBatch
	if h.cached("scanner", usecase.ScannerCacheKey, &batch) {
		return batch
	}
	scanCtx := context.WithoutCancel(ctx)
	ch := h.scans.DoChan(usecase.ScannerCacheKey, func() (interface{}, error) {
		var b models.ScanBatch
		if h.cached("scanner", usecase.ScannerCacheKey, &b) {
			return b, nil
		}
		b = h.scanner.RunBatch(scanCtx)
		h.store("scanner", usecase.ScannerCacheKey, b, h.scannerTTL)
		return b, nil
	})
	select {
	case res := <-ch:
		return res.Val.(models.ScanBatch)
	case <-ctx.Done():
		return batch
	}
}

func (h *MarketEchoHandler) RelativeStrength(c echo.Context) error {
	defer h.observe("rs", time.Now())
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	var res models.RSResult
	key := "rs:" + util.NormalizeSymbol(req.Symbol)
	if h.cached("rs", key, &res) {
		return xhttp.SuccessResponse(c, res)
	}
	res, err := h.analyzer.RelativeStrength(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fail(c, "rs", err)
	}
	h.store("rs", key, res, h.responseTTL)
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) MarketCondition(c echo.Context) error {
	defer h.observe("market_condition", time.Now())
	var res models.TrendState
	const key = "market-condition"
	if h.cached("market_condition", key, &res) {
		return xhttp.SuccessResponse(c, res)
	}
	res, err := h.analyzer.MarketCondition(c.Request().Context())
	if err != nil {
		return h.fail(c, "market_condition", err)
	}
	h.store("market_condition", key, res, h.responseTTL)
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) Checklist(c echo.Context) error {
	defer h.observe("checklist", time.Now())
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	row, err := h.scanner.ScanSymbol(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fail(c, "checklist", err)
	}
	return xhttp.SuccessResponse(c, row)
}

func (h *MarketEchoHandler) History(c echo.Context) error {
	defer h.observe("history", time.Now())
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	iv := domrepo.NormalizeInterval(req.Interval)
	rng := domrepo.NormalizeRange(req.Range)

	var res models.HistoryResult
	key := "history:" + util.NormalizeSymbol(req.Symbol) + ":" + string(iv) + ":" + string(rng)
	if h.cached("history", key, &res) {
		return xhttp.SuccessResponse(c, res)
	}
	res, err := h.analyzer.History(c.Request().Context(), req.Symbol, iv, rng)
	if err != nil {
		return h.fail(c, "history", err)
	}
	h.store("history", key, res, h.responseTTL)
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) PositionSize(c echo.Context) error {
	defer h.observe("position_size", time.Now())
	req := &models.PositionSizeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	stop := analytics.StopLoss(req.Entry, req.StopPct)
	if req.Stop != nil {
		stop = *req.Stop
	}
	res := analytics.PositionSize(req.AccountSize, req.RiskPct, req.Entry, stop)
	if req.Target != nil {
		ratio, reward := analytics.RiskReward(req.Entry, stop, *req.Target)
		res.RiskReward = &ratio
		res.RewardAmount = &reward
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) Quote(c echo.Context) error {
	defer h.observe("quote", time.Now())
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.analyzer.Snapshot(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fail(c, "quote", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) News(c echo.Context) error {
	defer h.observe("news", time.Now())
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	var res []models.NewsItem
	key := "news:" + util.NormalizeSymbol(req.Symbol)
	if h.cached("news", key, &res) {
		return xhttp.SuccessResponse(c, res)
	}
	res, err := h.analyzer.News(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fail(c, "news", err)
	}
	h.store("news", key, res, h.responseTTL)
	return xhttp.SuccessResponse(c, res)
}

type marketStatus struct {
	Status    models.MarketSession `json:"status"`
	Timestamp time.Time            `json:"timestamp"`
}

func (h *MarketEchoHandler) MarketStatus(c echo.Context) error {
	now := h.now().UTC()
	return xhttp.SuccessResponse(c, marketStatus{Status: features.SessionAt(now), Timestamp: now})
}

// fail maps use case errors onto the response envelope.
func (h *MarketEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
	h.logger.Error("market."+endpoint+" error", xlogger.Error(err))

	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
	case errors.Is(err, domrepo.ErrNotFound):
		appErr = xhttp.NotFoundError("symbol not found").WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		appErr = xhttp.UpstreamTimeoutError(err)
	default:
		appErr = xhttp.UpstreamError(err)
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func (h *MarketEchoHandler) observe(endpoint string, start time.Time) {
	metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

func (h *MarketEchoHandler) cached(endpoint, key string, dst interface{}) bool {
	if h.cache == nil {
		return false
	}
	b, ok, err := h.cache.GetBytes(key)
	if err != nil {
		h.logger.Warn("market."+endpoint+" cache_get_error", xlogger.String("key", key), xlogger.Error(err))
		return false
	}
	if !ok {
		metrics.CacheLookups.WithLabelValues(endpoint, "miss").Inc()
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		h.logger.Warn("market."+endpoint+" cache_decode_error", xlogger.String("key", key), xlogger.Error(err))
		return false
	}
	metrics.CacheLookups.WithLabelValues(endpoint, "hit").Inc()
	h.logger.Debug("market."+endpoint+" cache_hit", xlogger.String("key", key))
	return true
}

func (h *MarketEchoHandler) store(endpoint, key string, v interface{}, ttl time.Duration) {
	if h.cache == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("market."+endpoint+" marshal_error", xlogger.Error(err))
		return
	}
	if err := h.cache.SetBytes(key, b, ttl); err != nil {
		h.logger.Warn("market."+endpoint+" cache_set_error", xlogger.String("key", key), xlogger.Error(err))
	}
}
