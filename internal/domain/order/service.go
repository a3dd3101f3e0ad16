package order

import (
	"context"
	"sync/atomic"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// UnknownSupplier is the supplier name used when the supplier lookup fails.
const UnknownSupplier = "Unknown Supplier"

const instrumentationName = "github.com/xenking/order-ingest/internal/domain/order"

// Lookup resolves enrichment values against the downstream API. Every method
// absorbs its own failures: SupplierName falls back to UnknownSupplier and
// the id lookups report not found.
type Lookup interface {
	SupplierName(ctx context.Context, supplierID int64) string
	CustomerID(ctx context.Context, email string) (int64, bool)
	ProductID(ctx context.Context, code string) (int64, bool)
}

// Gateway submits canonical orders to the downstream order API. Errors are
// one of *UpstreamRejectedError, *TransportError or *DecodeError.
type Gateway interface {
	Submit(ctx context.Context, o *Order) (*Order, error)
}

// Created is the result of a successful pipeline run.
type Created struct {
	// Order is the order echoed back by the downstream API, including its
	// server-assigned ID.
	Order *Order
	// SupplierName is the enrichment value resolved for Speedy orders.
	// Empty for other formats.
	SupplierName string
}

// Option configures a Service.
type Option func(*Service)

// WithLookupConcurrency sets how many Vault product codes are resolved at
// once. Values below 2 keep lookups sequential.
func WithLookupConcurrency(n int) Option {
	return func(s *Service) {
		s.concurrency = n
	}
}

// WithTracerProvider sets the tracer provider used for pipeline spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		s.tracerProvider = tp
	}
}

// WithMeterProvider sets the meter provider used for pipeline metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Service) {
		s.meterProvider = mp
	}
}

// Service runs the ingestion pipeline: validate, enrich, normalize, submit.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	lookup  Lookup
	gateway Gateway

	concurrency    int
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider

	tracer  trace.Tracer
	orders  metric.Int64Counter
	lookups metric.Int64Counter
}

// NewService creates a Service with the required downstream dependencies.
func NewService(lookup Lookup, gateway Gateway, opts ...Option) (*Service, error) {
	s := &Service{
		lookup:         lookup,
		gateway:        gateway,
		concurrency:    1,
		tracerProvider: tracenoop.NewTracerProvider(),
		meterProvider:  metricnoop.NewMeterProvider(),
	}
	for _, o := range opts {
		o(s)
	}

	s.tracer = s.tracerProvider.Tracer(instrumentationName)
	meter := s.meterProvider.Meter(instrumentationName)

	var err error
	if s.orders, err = meter.Int64Counter("ingest.orders",
		metric.WithDescription("Inbound orders by format and outcome"),
	); err != nil {
		return nil, errors.Wrap(err, "create orders counter")
	}
	if s.lookups, err = meter.Int64Counter("ingest.lookups",
		metric.WithDescription("Enrichment lookups by kind and result"),
	); err != nil {
		return nil, errors.Wrap(err, "create lookups counter")
	}

	return s, nil
}

// Create runs one inbound payload through the pipeline. A nil payload (or a
// typed nil) fails validation with "body required". Every failure is
// terminal; nothing is retried.
func (s *Service) Create(ctx context.Context, p Payload) (_ *Created, rerr error) {
	format := Format("unknown")
	if p != nil {
		format = p.Format()
	}

	ctx, span := s.tracer.Start(ctx, "order.Create",
		trace.WithAttributes(attribute.String("order.format", string(format))),
	)
	defer func() {
		outcome := Classify(rerr)
		s.orders.Add(ctx, 1, metric.WithAttributes(
			attribute.String("format", string(format)),
			attribute.String("outcome", string(outcome)),
		))
		span.SetAttributes(attribute.String("order.outcome", string(outcome)))
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, string(outcome))
		}
		span.End()
	}()

	switch p := p.(type) {
	case *SpeedyOrder:
		if p != nil {
			return s.createSpeedy(ctx, p)
		}
	case *VaultOrder:
		if p != nil {
			return s.createVault(ctx, p)
		}
	case *Order:
		if p != nil {
			return s.createCanonical(ctx, p)
		}
	}
	return nil, invalid("", "body required")
}

func (s *Service) createSpeedy(ctx context.Context, p *SpeedyOrder) (*Created, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	name := s.lookup.SupplierName(ctx, SupplierSpeedy)
	s.recordLookup(ctx, "supplier", name != UnknownSupplier)

	return s.submit(ctx, FromSpeedy(p), name)
}

func (s *Service) createVault(ctx context.Context, p *VaultOrder) (*Created, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	customerID, ok := s.lookup.CustomerID(ctx, p.CustomerEmail)
	s.recordLookup(ctx, "customer", ok)
	if !ok {
		return nil, invalidf("CustomerEmail", "no customer found for email %s", p.CustomerEmail)
	}

	items, err := s.resolveItems(ctx, p.Items)
	if err != nil {
		return nil, err
	}

	return s.submit(ctx, FromVault(p, customerID, items), "")
}

func (s *Service) createCanonical(ctx context.Context, p *Order) (*Created, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.submit(ctx, FromCanonical(p), "")
}

func (s *Service) submit(ctx context.Context, o *Order, supplierName string) (*Created, error) {
	lg := zctx.From(ctx)

	created, err := s.gateway.Submit(ctx, o)
	if err != nil {
		lg.Warn("Order submission failed",
			zap.Int64("supplier_id", o.SupplierID),
			zap.Error(err),
		)
		return nil, err
	}

	lg.Info("Order submitted",
		zap.Int64("order_id", created.ID),
		zap.Int64("supplier_id", o.SupplierID),
		zap.Int("items", len(o.Items)),
	)
	return &Created{Order: created, SupplierName: supplierName}, nil
}

// resolveItems maps Vault line items to canonical ones, looking up each
// product code. It fails on the first unresolved item in input order and
// never looks up items after a known failure.
func (s *Service) resolveItems(ctx context.Context, items []VaultLineItem) ([]LineItem, error) {
	if s.concurrency < 2 {
		out := make([]LineItem, len(items))
		for i, item := range items {
			id, ok := s.lookup.ProductID(ctx, item.ProductCode)
			s.recordLookup(ctx, "product", ok)
			if !ok {
				return nil, unresolvedProduct(i, item.ProductCode)
			}
			out[i] = vaultLine(id, item)
		}
		return out, nil
	}

	// Items below the lowest failed index always complete, so the first
	// unresolved index found afterwards is the first in input order.
	var (
		ids       = make([]int64, len(items))
		found     = make([]bool, len(items))
		firstMiss atomic.Int64
		g         errgroup.Group
	)
	firstMiss.Store(int64(len(items)))
	g.SetLimit(s.concurrency)

	for i, item := range items {
		if int64(i) > firstMiss.Load() {
			break
		}
		g.Go(func() error {
			if int64(i) > firstMiss.Load() {
				return nil
			}
			id, ok := s.lookup.ProductID(ctx, item.ProductCode)
			s.recordLookup(ctx, "product", ok)
			if !ok {
				for {
					cur := firstMiss.Load()
					if int64(i) >= cur || firstMiss.CompareAndSwap(cur, int64(i)) {
						break
					}
				}
				return nil
			}
			ids[i], found[i] = id, true
			return nil
		})
	}
	_ = g.Wait()

	out := make([]LineItem, len(items))
	for i, item := range items {
		if !found[i] {
			return nil, unresolvedProduct(i, item.ProductCode)
		}
		out[i] = vaultLine(ids[i], item)
	}
	return out, nil
}

func vaultLine(productID int64, item VaultLineItem) LineItem {
	return LineItem{
		ProductID: productID,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
	}
}

func unresolvedProduct(idx int, code string) *ValidationError {
	return invalidf(itemField("Items", idx, "ProductCode"), "no product found for code %s", code)
}

func (s *Service) recordLookup(ctx context.Context, kind string, found bool) {
	s.lookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.Bool("found", found),
	))
}
