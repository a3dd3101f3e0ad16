package downstream

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/xenking/order-ingest/internal/domain/order"
	"github.com/xenking/order-ingest/internal/wire"
)

var _ order.Gateway = (*Client)(nil)

// Submit posts o to the order API and returns the created order. Errors are
// *order.TransportError, *order.UpstreamRejectedError or *order.DecodeError.
// Nothing is retried.
func (c *Client) Submit(ctx context.Context, o *order.Order) (*order.Order, error) {
	return c.orderCall(ctx, "submit order", http.MethodPost, "/orders", wire.MarshalOrder(o))
}

// Get fetches an order by id, with the same error classes as Submit.
func (c *Client) Get(ctx context.Context, id int64) (*order.Order, error) {
	return c.orderCall(ctx, "get order", http.MethodGet, "/orders/"+strconv.FormatInt(id, 10), nil)
}

func (c *Client) orderCall(ctx context.Context, op, method, path string, body []byte) (*order.Order, error) {
	resp, err := c.do(ctx, method, path, body)
	if errors.Is(err, errResponseTooLarge) {
		return nil, &order.DecodeError{Op: op, Err: err}
	}
	if err != nil {
		return nil, &order.TransportError{Op: op, Err: err}
	}
	if !resp.ok() {
		return nil, &order.UpstreamRejectedError{
			StatusCode:  resp.status,
			ContentType: resp.contentType,
			Body:        resp.body,
		}
	}

	o, err := wire.DecodeOrder(resp.body)
	if err != nil {
		return nil, &order.DecodeError{Op: op, Err: err}
	}
	if o == nil {
		return nil, &order.DecodeError{Op: op, Err: errors.New("empty body")}
	}
	return o, nil
}
