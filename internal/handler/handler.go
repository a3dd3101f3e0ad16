// Package handler is the inbound trigger layer: it routes order requests,
// decodes their bodies, runs them through the order pipeline and turns the
// outcome into a transport-level response.
//
// Routing and response building are transport-neutral (Dispatch), so the
// same code serves both the HTTP server and the Lambda entrypoint.
package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/go-faster/jx"

	"github.com/xenking/order-ingest/internal/domain/order"
)

// maxBodyBytes bounds inbound request bodies.
const maxBodyBytes = 1 << 20

// Creator runs a payload through the ingestion pipeline.
type Creator interface {
	Create(ctx context.Context, p order.Payload) (*order.Created, error)
}

// Fetcher reads an existing order from the downstream API.
type Fetcher interface {
	Get(ctx context.Context, id int64) (*order.Order, error)
}

// Response is a transport-neutral reply.
type Response struct {
	Status      int
	ContentType string
	Header      map[string]string
	Body        []byte
}

// Handler serves the order ingestion routes.
type Handler struct {
	orders  Creator
	fetcher Fetcher
}

// NewHandler constructs a Handler with the pipeline and the read-through
// order fetcher.
func NewHandler(orders Creator, fetcher Fetcher) *Handler {
	return &Handler{
		orders:  orders,
		fetcher: fetcher,
	}
}

// Route paths.
const (
	PathOrders       = "/api/orders"
	PathSpeedyOrders = "/api/orders/speedy"
	PathVaultOrders  = "/api/orders/vault"
)

// Dispatch routes one request by method and path.
func (h *Handler) Dispatch(ctx context.Context, method, path string, body []byte) Response {
	path = strings.TrimSuffix(path, "/")

	var format order.Format
	switch path {
	case PathOrders:
		format = order.FormatCanonical
	case PathSpeedyOrders:
		format = order.FormatSpeedy
	case PathVaultOrders:
		format = order.FormatVault
	default:
		id, ok := strings.CutPrefix(path, PathOrders+"/")
		if !ok || id == "" || strings.Contains(id, "/") {
			return errorResponse(http.StatusNotFound, "route not found")
		}
		if method != http.MethodGet {
			return methodNotAllowed(http.MethodGet)
		}
		return h.GetOrder(ctx, id)
	}

	if method != http.MethodPost {
		return methodNotAllowed(http.MethodPost)
	}
	return h.CreateOrder(ctx, format, body)
}

// ServeHTTP adapts Dispatch to net/http.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body []byte
	if r.Body != nil {
		b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeResponse(w, errorResponse(http.StatusRequestEntityTooLarge, "request body too large"))
			return
		}
		body = b
	}
	writeResponse(w, h.Dispatch(r.Context(), r.Method, r.URL.Path, body))
}

func writeResponse(w http.ResponseWriter, resp Response) {
	for k, v := range resp.Header {
		w.Header().Set(k, v)
	}
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

func errorResponse(status int, message string) Response {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Int(status) })
		e.Field("message", func(e *jx.Encoder) { e.Str(message) })
	})
	return Response{
		Status:      status,
		ContentType: "application/json",
		Body:        e.Bytes(),
	}
}

func methodNotAllowed(allow string) Response {
	resp := errorResponse(http.StatusMethodNotAllowed, "method not allowed")
	resp.Header = map[string]string{"Allow": allow}
	return resp
}
