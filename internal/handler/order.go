package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/order-ingest/internal/domain/order"
	"github.com/xenking/order-ingest/internal/wire"
)

// SupplierNameHeader carries the resolved supplier name on Speedy responses.
const SupplierNameHeader = "X-Supplier-Name"

// CreateOrder decodes body as the given format, runs the pipeline and maps
// the result. Created orders are answered with 201 and the downstream echo.
func (h *Handler) CreateOrder(ctx context.Context, format order.Format, body []byte) Response {
	payload, err := decodePayload(format, body)
	if err != nil {
		return errorResponse(http.StatusBadRequest, "malformed request body: "+err.Error())
	}

	created, err := h.orders.Create(ctx, payload)
	if err != nil {
		return mapOrderError(ctx, err)
	}

	resp := Response{
		Status:      http.StatusCreated,
		ContentType: "application/json",
		Body:        wire.MarshalOrder(created.Order),
		Header: map[string]string{
			"Location": PathOrders + "/" + strconv.FormatInt(created.Order.ID, 10),
		},
	}
	if created.SupplierName != "" {
		resp.Header[SupplierNameHeader] = created.SupplierName
	}
	return resp
}

// GetOrder proxies a read of an existing order.
func (h *Handler) GetOrder(ctx context.Context, rawID string) Response {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return errorResponse(http.StatusBadRequest, "order id must be a positive integer")
	}

	o, err := h.fetcher.Get(ctx, id)
	if err != nil {
		return mapOrderError(ctx, err)
	}
	return Response{
		Status:      http.StatusOK,
		ContentType: "application/json",
		Body:        wire.MarshalOrder(o),
	}
}

// decodePayload parses body into the Payload for format. Empty bodies decode
// to a nil Payload, which the pipeline rejects as "body required".
func decodePayload(format order.Format, body []byte) (order.Payload, error) {
	switch format {
	case order.FormatSpeedy:
		o, err := wire.DecodeSpeedy(body)
		if err != nil || o == nil {
			return nil, err
		}
		return o, nil
	case order.FormatVault:
		o, err := wire.DecodeVault(body)
		if err != nil || o == nil {
			return nil, err
		}
		return o, nil
	case order.FormatCanonical:
		o, err := wire.DecodeOrder(body)
		if err != nil || o == nil {
			return nil, err
		}
		return o, nil
	default:
		return nil, errors.Errorf("unsupported format %q", format)
	}
}

// mapOrderError converts pipeline errors to responses. Downstream rejections
// are passed through with their original status and body.
func mapOrderError(ctx context.Context, err error) Response {
	var vErr *order.ValidationError
	if errors.As(err, &vErr) {
		return errorResponse(http.StatusBadRequest, vErr.Error())
	}

	var rejected *order.UpstreamRejectedError
	if errors.As(err, &rejected) {
		contentType := rejected.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		return Response{
			Status:      rejected.StatusCode,
			ContentType: contentType,
			Body:        rejected.Body,
		}
	}

	lg := zctx.From(ctx)

	var transportErr *order.TransportError
	if errors.As(err, &transportErr) {
		lg.Error("Downstream unavailable", zap.Error(err))
		return errorResponse(http.StatusServiceUnavailable, "order service unavailable")
	}

	var decodeErr *order.DecodeError
	if errors.As(err, &decodeErr) {
		lg.Error("Downstream response unreadable", zap.Error(err))
		return errorResponse(http.StatusInternalServerError, "unexpected response from order service")
	}

	lg.Error("Order request failed", zap.Error(err))
	return errorResponse(http.StatusInternalServerError, "internal server error")
}
