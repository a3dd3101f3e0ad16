package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/order-ingest/internal/domain/order"
	"github.com/xenking/order-ingest/internal/downstream"
	"github.com/xenking/order-ingest/internal/handler"
	"github.com/xenking/order-ingest/pkg/health"
	"github.com/xenking/order-ingest/pkg/httpmiddleware"
)

// Components are the long-lived objects shared by every request. The HTTP
// server and the Lambda entrypoint build them the same way.
type Components struct {
	Downstream *downstream.Client
	Orders     *order.Service
	Handler    *handler.Handler
}

// NewComponents builds the downstream client, the order pipeline and the
// request handler. One *http.Client is created here and reused for every
// outbound call.
func NewComponents(cfg *Config, tp trace.TracerProvider, mp metric.MeterProvider) (*Components, error) {
	hc := &http.Client{
		Timeout: cfg.Downstream.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithTracerProvider(tp),
			otelhttp.WithMeterProvider(mp),
		),
	}
	client, err := downstream.New(cfg.DownstreamURL, downstream.WithHTTPClient(hc))
	if err != nil {
		return nil, errors.Wrap(err, "create downstream client")
	}

	svc, err := order.NewService(client, client,
		order.WithLookupConcurrency(cfg.Downstream.LookupConcurrency),
		order.WithTracerProvider(tp),
		order.WithMeterProvider(mp),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create order service")
	}

	return &Components{
		Downstream: client,
		Orders:     svc,
		Handler:    handler.NewHandler(svc, client),
	}, nil
}

// newRouter mounts the health endpoints and the order API on one mux and
// wraps it with the middleware stack.
func newRouter(lg *zap.Logger, c *Components, hs *health.Health, tp trace.TracerProvider, mp metric.MeterProvider) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", hs.LiveEndpoint)
	mux.HandleFunc("/readyz", hs.ReadyEndpoint)
	mux.Handle("/api/", c.Handler)

	return httpmiddleware.Wrap(mux,
		httpmiddleware.Recovery(),
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(lg),
		httpmiddleware.Instrument("order-ingest", tp, mp),
		httpmiddleware.LogRequests(),
	)
}

// newHTTPServer builds the listening server. Responses have no write
// deadline; every downstream call in the pipeline is bounded by the client
// timeout instead.
func newHTTPServer(cfg *Config, h http.Handler) *http.Server {
	return &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           h,
	}
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the server.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("downstream", cfg.DownstreamURL),
		zap.Int("lookup_concurrency", cfg.Downstream.LookupConcurrency),
	)

	tp, mp := m.TracerProvider(), m.MeterProvider()
	c, err := NewComponents(cfg, tp, mp)
	if err != nil {
		return err
	}

	healthSvc := health.New()
	healthSvc.Add(health.Check{
		Name:    "downstream",
		Kind:    health.Readiness,
		Timeout: 5 * time.Second,
		Func:    health.PingCheck(c.Downstream),
	})
	healthSvc.Add(health.Check{
		Name:    "goroutines",
		Kind:    health.Liveness,
		Timeout: time.Second,
		Func:    health.GoroutineCountCheck(10000),
	})
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	server := newHTTPServer(cfg, newRouter(zctx.From(ctx), c, healthSvc, tp, mp))

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
