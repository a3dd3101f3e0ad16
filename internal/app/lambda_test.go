package app

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap/zaptest"

	"github.com/xenking/order-ingest/internal/handler"
	"github.com/xenking/order-ingest/pkg/httpmiddleware"
)

func newLambda(t *testing.T, api *stubAPI) func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	t.Helper()
	downstreamSrv := httptest.NewServer(api.handler(t))
	t.Cleanup(downstreamSrv.Close)

	cfg := &Config{
		DownstreamURL: downstreamSrv.URL,
		Downstream:    DownstreamConfig{Timeout: 5 * time.Second, LookupConcurrency: 1},
	}
	c, err := NewComponents(cfg, tracenoop.NewTracerProvider(), metricnoop.NewMeterProvider())
	require.NoError(t, err)
	return LambdaHandler(zaptest.NewLogger(t), c.Handler)
}

func lambdaRequest(method, path, body string) events.APIGatewayV2HTTPRequest {
	req := events.APIGatewayV2HTTPRequest{
		RawPath: path,
		Body:    body,
	}
	req.RequestContext.RequestID = "lambda-req-1"
	req.RequestContext.HTTP.Method = method
	return req
}

func TestLambdaHandler_SpeedyOrder(t *testing.T) {
	api := &stubAPI{supplierUp: true}
	fn := newLambda(t, api)

	body := `{"customerId": 5, "orderTimestamp": "2024-01-15T10:00:00Z", "lineItems": [{"productId": 7, "qty": 2, "unitPrice": 9.5}]}`
	req := lambdaRequest(http.MethodPost, handler.PathSpeedyOrders, base64.StdEncoding.EncodeToString([]byte(body)))
	req.IsBase64Encoded = true

	resp, err := fn(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.Equal(t, "lambda-req-1", resp.Headers[httpmiddleware.RequestIDHeader])
	assert.Equal(t, "Speedy", resp.Headers[handler.SupplierNameHeader])

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &doc))
	assert.Equal(t, float64(300), doc["id"])
	assert.Equal(t, int32(1), api.orderPosts.Load())
}

func TestLambdaHandler_Errors(t *testing.T) {
	fn := newLambda(t, &stubAPI{})
	ctx := context.Background()

	resp, err := fn(ctx, lambdaRequest(http.MethodPost, handler.PathVaultOrders, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, resp.Body, "body required")

	bad := lambdaRequest(http.MethodPost, handler.PathOrders, "%%%")
	bad.IsBase64Encoded = true
	resp, err = fn(ctx, bad)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = fn(ctx, lambdaRequest(http.MethodGet, "/api/unknown", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLambdaHandler_NamedStage(t *testing.T) {
	api := &stubAPI{supplierUp: true}
	fn := newLambda(t, api)

	req := lambdaRequest(http.MethodPost, "/prod"+handler.PathSpeedyOrders,
		`{"customerId": 5, "orderTimestamp": "2024-01-15T10:00:00Z", "lineItems": [{"productId": 7, "qty": 2, "unitPrice": 9.5}]}`)
	req.RequestContext.Stage = "prod"

	resp, err := fn(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, int32(1), api.orderPosts.Load())
}

func TestRoutePath(t *testing.T) {
	tests := []struct {
		name  string
		stage string
		raw   string
		want  string
	}{
		{"default stage", "$default", "/api/orders", "/api/orders"},
		{"no stage", "", "/api/orders", "/api/orders"},
		{"named stage", "prod", "/prod/api/orders/vault", "/api/orders/vault"},
		{"stage is a path prefix only", "api", "/apix/orders", "/apix/orders"},
		{"custom domain mapping without stage", "prod", "/api/orders", "/api/orders"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := events.APIGatewayV2HTTPRequest{RawPath: tt.raw}
			req.RequestContext.Stage = tt.stage
			assert.Equal(t, tt.want, routePath(req))
		})
	}
}
