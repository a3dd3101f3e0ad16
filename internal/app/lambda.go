package app

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xenking/order-ingest/internal/handler"
	"github.com/xenking/order-ingest/pkg/httpmiddleware"
)

// LambdaHandler serves API Gateway HTTP API (payload v2) events with the same
// routing as the HTTP server.
func LambdaHandler(lg *zap.Logger, h *handler.Handler) func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		id := req.RequestContext.RequestID
		if !httpmiddleware.ValidRequestID(id) {
			id = uuid.NewString()
		}
		ctx = httpmiddleware.ContextWithRequestID(ctx, id)
		ctx = zctx.Base(ctx, lg.With(zap.String("request_id", id)))

		body := []byte(req.Body)
		if req.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(req.Body)
			if err != nil {
				return toLambdaResponse(id, handler.Response{
					Status:      http.StatusBadRequest,
					ContentType: "application/json",
					Body:        []byte(`{"code":400,"message":"body is not valid base64"}`),
				}), nil
			}
			body = decoded
		}

		path := routePath(req)
		resp := h.Dispatch(ctx, req.RequestContext.HTTP.Method, path, body)
		zctx.From(ctx).Info("Request",
			zap.String("method", req.RequestContext.HTTP.Method),
			zap.String("path", path),
			zap.Int("status", resp.Status),
		)
		return toLambdaResponse(id, resp), nil
	}
}

// routePath returns the request path without the stage segment that API
// Gateway prepends on named stages. The default stage adds none.
func routePath(req events.APIGatewayV2HTTPRequest) string {
	path := req.RawPath
	if path == "" {
		path = req.RequestContext.HTTP.Path
	}
	stage := req.RequestContext.Stage
	if stage == "" || stage == "$default" {
		return path
	}
	if rest, ok := strings.CutPrefix(path, "/"+stage); ok && (rest == "" || strings.HasPrefix(rest, "/")) {
		return rest
	}
	return path
}

func toLambdaResponse(requestID string, resp handler.Response) events.APIGatewayV2HTTPResponse {
	headers := make(map[string]string, len(resp.Header)+2)
	for k, v := range resp.Header {
		headers[k] = v
	}
	if resp.ContentType != "" {
		headers["Content-Type"] = resp.ContentType
	}
	headers[httpmiddleware.RequestIDHeader] = requestID
	return events.APIGatewayV2HTTPResponse{
		StatusCode: resp.Status,
		Headers:    headers,
		Body:       string(resp.Body),
	}
}
