package server

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	domrepo "SwingArrow/internal/domain/repository"
	icache "SwingArrow/internal/service/cache"
	"SwingArrow/internal/usecase"
	"SwingArrow/pkg/config"
	xhttp "SwingArrow/pkg/http"
	applogger "SwingArrow/pkg/logger"
	"SwingArrow/pkg/tracing"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	refresher   *usecase.Refresher
	publisher   domrepo.ScanPublisher
	cache       icache.BytesCache
	tracer      *tracing.Provider
}

// New creates a new App instance with all dependencies. refresher and
// publisher may be nil.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	handler xhttp.Handler,
	refresher *usecase.Refresher,
	publisher domrepo.ScanPublisher,
	cache icache.BytesCache,
	tracer *tracing.Provider,
) *App {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &App{
		cfg:         cfg,
		logger:      logger,
		httpHandler: handler,
		refresher:   refresher,
		publisher:   publisher,
		cache:       cache,
		tracer:      tracer,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts the services and blocks until ctx is done.
func (a *App) RunContext(ctx context.Context) error {
	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	a.httpServer = xhttp.NewServer(a.httpHandler, a.logger,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	)

	if a.refresher != nil {
		if err := a.refresher.Start(); err != nil {
			a.logger.Error("refresher start error", applogger.Error(err))
			return err
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("app started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("benchmark", a.cfg.Market.Benchmark),
		applogger.Int("universe", len(a.cfg.Market.Universe)),
		applogger.String("cache", a.cfg.Cache.Backend),
		applogger.Bool("kafka", a.publisher != nil),
		applogger.Bool("tracing", a.tracer.Enabled()),
	)

	<-ctx.Done()
	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services. Errors are logged and joined.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if a.refresher != nil {
		if err := a.refresher.Stop(ctx); err != nil {
			a.logger.Warn("refresher stop error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.logger.Error("http shutdown error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("publisher close error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	if c, ok := a.cache.(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.logger.Warn("cache close error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	if err := a.tracer.Shutdown(ctx); err != nil {
		a.logger.Warn("tracer shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}

	a.logger.Info("shutdown complete")
	return errors.Join(errs...)
}
