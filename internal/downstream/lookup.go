package downstream

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/order-ingest/internal/domain/order"
	"github.com/xenking/order-ingest/internal/wire"
)

var _ order.Lookup = (*Client)(nil)

// SupplierName resolves a supplier's display name. Any failure yields
// order.UnknownSupplier.
func (c *Client) SupplierName(ctx context.Context, supplierID int64) string {
	lg := zctx.From(ctx).With(zap.Int64("supplier_id", supplierID))

	resp, err := c.do(ctx, http.MethodGet, "/suppliers/"+strconv.FormatInt(supplierID, 10), nil)
	if err != nil {
		lg.Warn("Supplier lookup failed", zap.Error(err))
		return order.UnknownSupplier
	}
	if !resp.ok() {
		lg.Warn("Supplier lookup rejected", zap.Int("status", resp.status))
		return order.UnknownSupplier
	}

	s, err := wire.DecodeSupplier(resp.body)
	if err != nil {
		lg.Warn("Supplier lookup returned bad body", zap.Error(err))
		return order.UnknownSupplier
	}
	if s.Name == "" {
		return order.UnknownSupplier
	}
	return s.Name
}

// CustomerID resolves a customer id by email. Failures of any kind are
// reported as not found.
func (c *Client) CustomerID(ctx context.Context, email string) (int64, bool) {
	return c.lookupID(ctx, "customer", "/customers/by-email/"+url.PathEscape(email))
}

// ProductID resolves an internal product id from an external product code.
// Failures of any kind are reported as not found.
func (c *Client) ProductID(ctx context.Context, code string) (int64, bool) {
	return c.lookupID(ctx, "product", "/products/by-code/"+url.PathEscape(code))
}

func (c *Client) lookupID(ctx context.Context, kind, path string) (int64, bool) {
	lg := zctx.From(ctx).With(zap.String("lookup", kind), zap.String("path", path))

	id, err := c.fetchID(ctx, path)
	if err != nil {
		lg.Warn("Lookup failed", zap.Error(err))
		return 0, false
	}
	return id, true
}

func (c *Client) fetchID(ctx context.Context, path string) (int64, error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return 0, err
	}
	if !resp.ok() {
		return 0, errors.Errorf("status %d", resp.status)
	}
	return wire.DecodeID(resp.body)
}
